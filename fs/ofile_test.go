package fs

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/util"
)

func mkOpenFile(t *testing.T, fs *FS, p string) common.Fd {
	require.NoError(t, fs.Create(p))
	fd, err := fs.Open(p)
	require.NoError(t, err)
	return fd
}

func readAll(t *testing.T, fs *FS, fd common.Fd) string {
	require.NoError(t, fs.Seek(fd, 0))
	of := fs.ofiles[fd]
	s, err := fs.Read(fd, fs.itab.Get(of.inum).Size)
	require.NoError(t, err)
	return s
}

func TestWriteAtOffset(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Write(fd, 6, []byte("abcdef")))
	require.NoError(t, fs.Seek(fd, 2))
	require.NoError(t, fs.Write(fd, 5, []byte("XYZ12-ignored")))
	assert.Equal("abXYZ12", readAll(t, fs, fd))

	_, d, _ := fs.Stat("f")
	assert.Equal(uint64(7), d.Size)
	assert.Len(d.Blocks, 2)
}

func TestWriteArgs(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	assert.True(errors.Is(fs.Write(fd, 4, []byte("abc")), ErrInvalidArgument))
	assert.NoError(fs.Write(fd, 0, nil))
	_, d, _ := fs.Stat("f")
	assert.Equal(uint64(0), d.Size)
	assert.True(errors.Is(fs.Write(fd+1, 1, []byte("a")), ErrNotOpen))
	_, err := fs.Read(fd+1, 1)
	assert.True(errors.Is(err, ErrNotOpen))
}

func TestWriteExhaustion(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 2)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Write(fd, 4, []byte("abcd")))

	err := fs.Write(fd, 8, []byte("efghijkl"))
	assert.True(errors.Is(err, ErrNoFreeBlock))
	assert.True(errors.Is(err, ErrResourceExhausted))
	assert.Equal(uint64(1), fs.Statfs().FreeBlocks, "no blocks taken")
	_, d, _ := fs.Stat("f")
	assert.Equal(uint64(4), d.Size)
	assert.Len(d.Blocks, 1)
	assert.Equal(uint64(4), fs.ofiles[fd].off, "offset unchanged")

	require.NoError(t, fs.Write(fd, 4, []byte("efgh")))
	assert.Equal("abcdefgh", readAll(t, fs, fd))
	assert.Equal(uint64(0), fs.Statfs().FreeBlocks)
}

func TestWriteIntoHole(t *testing.T) {
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Truncate("f", 6))
	require.NoError(t, fs.Seek(fd, 5))
	require.NoError(t, fs.Write(fd, 1, []byte("z")))
	assert.Equal(t, "00000z", readAll(t, fs, fd))
	_, d, _ := fs.Stat("f")
	assert.Len(t, d.Blocks, 2, "blocks before the write position are filled in")
}

func TestReadPastEnd(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Write(fd, 3, []byte("abc")))
	require.NoError(t, fs.Seek(fd, 1))
	s, err := fs.Read(fd, 6)
	require.NoError(t, err)
	assert.Equal("bc0000", s)
	assert.Equal(uint64(7), fs.ofiles[fd].off, "offset advances by n")
}

func TestReadOverflow(t *testing.T) {
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Write(fd, 1, []byte("a")))
	// offset is now 1
	_, err := fs.Read(fd, 1<<64-1)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestReadLongerThanFilesystem(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	assert.NotPanics(func() {
		_, err := fs.Read(fd, 1<<60)
		assert.True(errors.Is(err, ErrInvalidArgument))
	})
	assert.Equal(uint64(0), fs.ofiles[fd].off)

	s, err := fs.Read(fd, 32)
	require.NoError(t, err)
	assert.Len(s, 32, "a read as long as the filesystem is allowed")
	require.NoError(t, fs.Seek(fd, 0))
	_, err = fs.Read(fd, 33)
	assert.True(errors.Is(err, ErrInvalidArgument))
}

func TestWriteFarPastEnd(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	for _, size := range []uint64{1 << 30, 1 << 60, 1<<64 - 2} {
		require.NoError(t, fs.Truncate("f", size))
		require.NoError(t, fs.Seek(fd, int64(util.Min(size, 1<<63-1))))
		assert.NotPanics(func() {
			err := fs.Write(fd, 1, []byte("x"))
			assert.True(errors.Is(err, ErrNoFreeBlock), "size %d: %v", size, err)
		})
	}
	_, d, _ := fs.Stat("f")
	assert.Empty(d.Blocks)
	assert.Equal(uint64(8), fs.Statfs().FreeBlocks)
}

func TestSeek(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Write(fd, 3, []byte("abc")))
	assert.NoError(fs.Seek(fd, 3))
	assert.NoError(fs.Seek(fd, 0))
	assert.True(errors.Is(fs.Seek(fd, 4), ErrInvalidArgument))
	assert.True(errors.Is(fs.Seek(fd, -1), ErrInvalidArgument))
	assert.True(errors.Is(fs.Seek(fd+1, 0), ErrNotOpen))
}

func TestTruncate(t *testing.T) {
	assert := assert.New(t)
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Write(fd, 8, []byte("abcdefgh")))
	assert.Equal(uint64(6), fs.Statfs().FreeBlocks)

	require.NoError(t, fs.Truncate("f", 2))
	_, d, _ := fs.Stat("f")
	assert.Equal(uint64(2), d.Size)
	assert.Len(d.Blocks, 1)
	assert.Equal(uint64(7), fs.Statfs().FreeBlocks, "shrinking frees at once, even while open")

	require.NoError(t, fs.Truncate("f", 8))
	assert.Equal("ab000000", readAll(t, fs, fd))
	_, d, _ = fs.Stat("f")
	assert.Len(d.Blocks, 1)

	require.NoError(t, fs.Truncate("f", 0))
	_, d, _ = fs.Stat("f")
	assert.Empty(d.Blocks)
	assert.Equal(uint64(8), fs.Statfs().FreeBlocks)
}

func TestTruncateErrors(t *testing.T) {
	fs := mkTestFS(t, 4, 8)
	require.NoError(t, fs.Mkdir("d"))
	assert.True(t, errors.Is(fs.Truncate("d", 0), ErrNotAFile))
	assert.True(t, errors.Is(fs.Truncate("nope", 0), ErrNotFound))
}

func TestTruncateThroughSymlink(t *testing.T) {
	fs := mkTestFS(t, 4, 8)
	fd := mkOpenFile(t, fs, "f")
	require.NoError(t, fs.Symlink("/f", "l"))
	require.NoError(t, fs.Truncate("l", 3))
	_, d, _ := fs.Stat("f")
	assert.Equal(t, uint64(3), d.Size)
	assert.Equal(t, "000", readAll(t, fs, fd))
}

func TestOpenErrors(t *testing.T) {
	fs := mkTestFS(t, 4, 8)
	require.NoError(t, fs.Mkdir("d"))
	_, err := fs.Open("d")
	assert.True(t, errors.Is(err, ErrNotAFile))
	_, err = fs.Open("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, uint64(0), fs.Statfs().OpenFiles)
}

func TestConcurrentWriters(t *testing.T) {
	fs := mkTestFS(t, 4, 64)
	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := fmt.Sprintf("/f%d", i)
			if err := fs.Create(p); err != nil {
				t.Error(err)
				return
			}
			fd, err := fs.Open(p)
			if err != nil {
				t.Error(err)
				return
			}
			data := []byte(fmt.Sprintf("data-%d", i))
			if err := fs.Write(fd, uint64(len(data)), data); err != nil {
				t.Error(err)
			}
			if err := fs.Close(fd); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	ents, err := fs.Ls("/")
	require.NoError(t, err)
	assert.Len(t, ents, n+2)
	for i := 0; i < n; i++ {
		fd, err := fs.Open(fmt.Sprintf("/f%d", i))
		require.NoError(t, err)
		s, err := fs.Read(fd, 6)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("data-%d", i), s)
		require.NoError(t, fs.Close(fd))
	}
	assert.Equal(t, uint64(64-2*n), fs.Statfs().FreeBlocks)
}
