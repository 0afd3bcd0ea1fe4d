package fs

import (
	"path"

	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/inode"
	"github.com/mit-pdos/go-memfs/util"
)

func (fs *FS) Create(p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, err := fs.mknod(p, common.NF_REG, 1)
	return toPathError("create", p, err)
}

func (fs *FS) Mkdir(p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	parent, err := fs.mknod(p, common.NF_DIR, common.DIRLINKS)
	if err != nil {
		return toPathError("mkdir", p, err)
	}
	// the new directory's ".." links to the parent
	_, pd, _ := fs.lookup(parent)
	pd.Nlink++
	return nil
}

// mknod adds a new, empty descriptor at the literal path p and returns
// the canonical parent directory.
func (fs *FS) mknod(p string, kind common.Kind, nlink uint64) (string, error) {
	parent, name, full, err := fs.resolveParent(p)
	if err != nil {
		return "", err
	}
	if err := fs.checkNewName(name, full); err != nil {
		return "", err
	}
	inum, _, ok := fs.itab.Alloc(kind, nlink)
	if !ok {
		return "", ErrNoFreeDescriptor
	}
	fs.names[full] = inum
	util.DPrintf(2, "mknod: %s inum %d %v\n", full, inum, kind)
	return parent, nil
}

func (fs *FS) Rmdir(p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return toPathError("rmdir", p, fs.rmdir(p))
}

func (fs *FS) rmdir(p string) error {
	full, err := fs.resolve(p)
	if err != nil {
		return err
	}
	if full == common.ROOTPATH || full == fs.cwd {
		return ErrInvalidOperation
	}
	inum, d, _ := fs.lookup(full)
	if !d.IsDir() {
		return ErrNotADirectory
	}
	if d.Nlink != common.DIRLINKS || fs.hasChildren(full) {
		return ErrNotEmpty
	}
	fs.itab.Free(inum)
	delete(fs.names, full)
	_, pd, _ := fs.lookup(path.Dir(full))
	pd.Nlink--
	return nil
}

// hasChildren reports whether any name lives directly in dir. Only
// subdirectories show up in a directory's link count, so files and
// symlinks are found by looking at the namespace.
func (fs *FS) hasChildren(dir string) bool {
	for name := range fs.names {
		if name != common.ROOTPATH && path.Dir(name) == dir {
			return true
		}
	}
	return false
}

func (fs *FS) Cd(p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	full, err := fs.resolve(p)
	if err != nil {
		return toPathError("cd", p, err)
	}
	_, d, _ := fs.lookup(full)
	if !d.IsDir() {
		return toPathError("cd", p, ErrNotADirectory)
	}
	fs.cwd = full
	return nil
}

func (fs *FS) Pwd() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.cwd
}

// Symlink creates p as a symbolic link to target. The target is stored,
// not checked: it need not exist.
func (fs *FS) Symlink(target string, p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return toLinkError("symlink", target, p, fs.symlink(target, p))
}

func (fs *FS) symlink(target string, p string) error {
	_, name, full, err := fs.resolveParent(p)
	if err != nil {
		return err
	}
	if err := fs.checkNewName(name, full); err != nil {
		return err
	}
	if target == "" {
		return ErrInvalidArgument
	}
	if uint64(len(target)) > fs.bsz() {
		return ErrTargetTooLong
	}
	op := fs.begin()
	bn, ok := op.AllocBlock()
	if !ok {
		op.Abort()
		return ErrNoFreeBlock
	}
	inum, d, ok := fs.itab.Alloc(common.NF_LNK, 1)
	if !ok {
		op.Abort()
		return ErrNoFreeDescriptor
	}
	op.OverWrite(bn, 0, inode.EncodeTarget(target, fs.bsz()))
	op.Commit()
	d.Size = uint64(len(target))
	d.Blocks = append(d.Blocks, bn)
	fs.names[full] = inum
	return nil
}

// Stat describes the entry at p. A symlink in the final position is
// described itself, not followed.
func (fs *FS) Stat(p string) (common.Inum, inode.Descriptor, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, _, full, err := fs.resolveParent(p)
	if err != nil {
		return 0, inode.Descriptor{}, toPathError("stat", p, err)
	}
	inum, d, ok := fs.lookup(full)
	if !ok {
		return 0, inode.Descriptor{}, toPathError("stat", p, ErrNotFound)
	}
	return inum, d.Snapshot(), nil
}

// DirEntry describes one name in a directory listing.
type DirEntry struct {
	Inum    common.Inum
	Kind    common.Kind
	Nlink   uint64
	Size    uint64
	NBlocks uint64
}

func mkDirEntry(inum common.Inum, d *inode.Descriptor) DirEntry {
	return DirEntry{
		Inum:    inum,
		Kind:    d.Kind,
		Nlink:   d.Nlink,
		Size:    d.Size,
		NBlocks: d.NBlocks(),
	}
}

// Ls lists the directory at p, or the working directory if p is empty.
// The listing has an entry for every name directly inside the directory,
// plus "." and "..".
func (fs *FS) Ls(p string) (map[string]DirEntry, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if p == "" {
		p = fs.cwd
	}
	full, err := fs.resolve(p)
	if err != nil {
		return nil, toPathError("ls", p, err)
	}
	inum, d, _ := fs.lookup(full)
	if !d.IsDir() {
		return nil, toPathError("ls", p, ErrNotADirectory)
	}
	ents := make(map[string]DirEntry)
	ents["."] = mkDirEntry(inum, d)
	pinum, pd, _ := fs.lookup(path.Dir(full))
	ents[".."] = mkDirEntry(pinum, pd)
	for name, cinum := range fs.names {
		if name == common.ROOTPATH || path.Dir(name) != full {
			continue
		}
		ents[path.Base(name)] = mkDirEntry(cinum, fs.itab.Get(cinum))
	}
	return ents, nil
}

// Link adds newp as another name for the entry at existing. A symlink at
// existing is linked itself, not followed. Directories cannot be linked.
func (fs *FS) Link(existing string, newp string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return toLinkError("link", existing, newp, fs.link(existing, newp))
}

func (fs *FS) link(existing string, newp string) error {
	_, _, src, err := fs.resolveParent(existing)
	if err != nil {
		return err
	}
	inum, d, ok := fs.lookup(src)
	if !ok {
		return ErrNotFound
	}
	if d.IsDir() {
		return ErrNotAFile
	}
	_, name, full, err := fs.resolveParent(newp)
	if err != nil {
		return err
	}
	if err := fs.checkNewName(name, full); err != nil {
		return err
	}
	fs.names[full] = inum
	d.Nlink++
	return nil
}

// Unlink removes the name p. A symlink at p is removed itself. Once a
// descriptor has no names left its storage is released, as soon as no
// open file refers to it.
func (fs *FS) Unlink(p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return toPathError("unlink", p, fs.unlink(p))
}

func (fs *FS) unlink(p string) error {
	_, _, full, err := fs.resolveParent(p)
	if err != nil {
		return err
	}
	inum, d, ok := fs.lookup(full)
	if !ok {
		return ErrNotFound
	}
	if d.IsDir() {
		return ErrNotAFile
	}
	delete(fs.names, full)
	d.Nlink--
	if d.Nlink == 0 && !fs.isOpen(inum) {
		fs.reclaim(inum, d)
	}
	return nil
}

// Truncate sets the size of the file at p. Shrinking releases the blocks
// past the new end at once, even if the file is open; growing allocates
// nothing, and the new range reads as zeros.
func (fs *FS) Truncate(p string, size uint64) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return toPathError("truncate", p, fs.truncate(p, size))
}

func (fs *FS) truncate(p string, size uint64) error {
	full, err := fs.resolve(p)
	if err != nil {
		return err
	}
	_, d, _ := fs.lookup(full)
	if d.Kind != common.NF_REG {
		return ErrNotAFile
	}
	if size < d.Size {
		keep := util.Min(util.RoundUp(size, fs.bsz()), d.NBlocks())
		op := fs.begin()
		for _, bn := range d.Blocks[keep:] {
			op.FreeBlock(bn)
		}
		// clear the tail of the new last block so growing again reads zeros
		tail := size % fs.bsz()
		if tail != 0 && keep == util.RoundUp(size, fs.bsz()) {
			op.OverWrite(d.Blocks[keep-1], tail, make([]byte, fs.bsz()-tail))
		}
		op.Commit()
		d.Blocks = d.Blocks[:keep]
	}
	d.Size = size
	return nil
}
