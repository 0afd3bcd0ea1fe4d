package fs

import (
	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/inode"
	"github.com/mit-pdos/go-memfs/util"
)

// Open opens the regular file at p, following symlinks, and returns the
// lowest free descriptor number. The file offset starts at 0.
func (fs *FS) Open(p string) (common.Fd, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	full, err := fs.resolve(p)
	if err != nil {
		return 0, toPathError("open", p, err)
	}
	inum, d, _ := fs.lookup(full)
	if d.Kind != common.NF_REG {
		return 0, toPathError("open", p, ErrNotAFile)
	}
	fd := fs.allocFd()
	fs.ofiles[fd] = &ofile{inum: inum, off: 0}
	util.DPrintf(2, "open: %s inum %d fd %d\n", full, inum, fd)
	return fd, nil
}

func (fs *FS) allocFd() common.Fd {
	for i, used := range fs.fdUsed {
		if !used {
			fs.fdUsed[i] = true
			return common.Fd(i)
		}
	}
	fs.fdUsed = append(fs.fdUsed, true)
	return common.Fd(len(fs.fdUsed) - 1)
}

func (fs *FS) getOfile(fd common.Fd) (*ofile, *inode.Descriptor, error) {
	of, ok := fs.ofiles[fd]
	if !ok {
		return nil, nil, ErrNotOpen
	}
	return of, fs.itab.Get(of.inum), nil
}

// Close releases fd. If the file lost its last name while open and this
// was its last open descriptor, its storage is released now. Closing the
// last open descriptor of all restarts numbering at 0.
func (fs *FS) Close(fd common.Fd) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	of, d, err := fs.getOfile(fd)
	if err != nil {
		return toFdError("close", fd, err)
	}
	delete(fs.ofiles, fd)
	fs.fdUsed[fd] = false
	if d.Nlink == 0 && !fs.isOpen(of.inum) {
		fs.reclaim(of.inum, d)
	}
	if len(fs.ofiles) == 0 {
		fs.fdUsed = nil
	}
	return nil
}

// Seek moves the offset of fd. The offset must lie within the file:
// seeking past the end is not allowed.
func (fs *FS) Seek(fd common.Fd, off int64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	of, d, err := fs.getOfile(fd)
	if err != nil {
		return toFdError("seek", fd, err)
	}
	if off < 0 || uint64(off) > d.Size {
		return toFdError("seek", fd, ErrInvalidArgument)
	}
	of.off = uint64(off)
	return nil
}

// Read returns exactly n bytes starting at the offset of fd and advances
// the offset by n. Zero bytes, holes, and everything past the last block
// read as the character '0'. A read may not be longer than the whole
// filesystem (BlockCount*BlockSize bytes).
func (fs *FS) Read(fd common.Fd, n uint64) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	of, d, err := fs.getOfile(fd)
	if err != nil {
		return "", toFdError("read", fd, err)
	}
	if n > fs.p.BlockCount*fs.bsz() || util.SumOverflows(of.off, n) {
		return "", toFdError("read", fd, ErrInvalidArgument)
	}
	data := make([]byte, n)
	var done uint64 = 0
	for done < n {
		pos := of.off + done
		k := pos / fs.bsz()
		boff := pos % fs.bsz()
		cnt := util.Min(n-done, fs.bsz()-boff)
		if k < d.NBlocks() {
			fs.store.ReadAt(d.Blocks[k], data[done:done+cnt], boff)
		}
		done += cnt
	}
	for i, b := range data {
		if b == 0 {
			data[i] = '0'
		}
	}
	of.off += n
	return string(data), nil
}

// Write writes the first n bytes of data at the offset of fd and advances
// the offset by n, adding zeroed blocks to the file as needed. If there
// are not enough free blocks nothing is written.
func (fs *FS) Write(fd common.Fd, n uint64, data []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return toFdError("write", fd, fs.write(fd, n, data))
}

func (fs *FS) write(fd common.Fd, n uint64, data []byte) error {
	of, d, err := fs.getOfile(fd)
	if err != nil {
		return err
	}
	if n > uint64(len(data)) || util.SumOverflows(of.off, n) {
		return ErrInvalidArgument
	}
	if n == 0 {
		return nil
	}
	end := of.off + n
	nblks := util.RoundUp(end, fs.bsz())
	if nblks > d.NBlocks() && nblks-d.NBlocks() > fs.balloc.NumFree() {
		return ErrNoFreeBlock
	}

	op := fs.begin()
	blocks := make([]common.Bnum, d.NBlocks(), util.Max(nblks, d.NBlocks()))
	copy(blocks, d.Blocks)
	for uint64(len(blocks)) < nblks {
		bn, ok := op.AllocBlock()
		if !ok {
			op.Abort()
			return ErrNoFreeBlock
		}
		blocks = append(blocks, bn)
	}

	var done uint64 = 0
	for done < n {
		pos := of.off + done
		boff := pos % fs.bsz()
		cnt := util.Min(n-done, fs.bsz()-boff)
		op.OverWrite(blocks[pos/fs.bsz()], boff, data[done:done+cnt])
		done += cnt
	}
	util.DPrintf(3, "write: fd %d, %d bytes in %d pieces\n", fd, n, op.NDirty())
	op.Commit()

	d.Blocks = blocks
	d.Size = util.Max(d.Size, end)
	of.off = end
	return nil
}
