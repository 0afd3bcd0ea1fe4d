// Package fs is an in-memory Unix-like filesystem: a block store with an
// allocation bitmap, a descriptor (inode) table, a flat namespace mapping
// absolute paths to descriptors, and an open file table.
//
// An *FS is safe for use by multiple goroutines: every exported method
// holds one filesystem-wide lock for its whole duration, so operations
// never observe each other's partial effects. Failed operations leave the
// filesystem unchanged.
package fs

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mit-pdos/go-memfs/alloc"
	"github.com/mit-pdos/go-memfs/blkstore"
	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/inode"
	"github.com/mit-pdos/go-memfs/jrnl"
	"github.com/mit-pdos/go-memfs/util"
)

// Params fix the geometry of a filesystem at initialization.
type Params struct {
	BlockSize     uint64
	BlockCount    uint64
	Descriptors   uint64
	MaxNameLength uint64
}

func (p Params) validate() error {
	if p.BlockSize == 0 || p.BlockCount == 0 || p.Descriptors == 0 || p.MaxNameLength == 0 {
		return ErrInvalidArgument
	}
	// the store holds BlockCount*BlockSize bytes
	if util.MulOverflows(p.BlockSize, p.BlockCount) {
		return ErrInvalidArgument
	}
	return nil
}

type ofile struct {
	inum common.Inum
	off  uint64
}

type FS struct {
	mu     *sync.Mutex
	id     uuid.UUID
	p      Params
	store  *blkstore.Store
	balloc *alloc.Alloc
	itab   *inode.Table
	names  map[string]common.Inum
	ofiles map[common.Fd]*ofile
	fdUsed []bool
	cwd    string
}

// MkFS creates a fresh filesystem holding only the root directory.
func MkFS(p Params) (*FS, error) {
	fs := &FS{mu: new(sync.Mutex)}
	if err := fs.init(p); err != nil {
		return nil, toPathError("mkfs", common.ROOTPATH, err)
	}
	return fs, nil
}

// Init discards all state, including open files, and rebuilds the
// filesystem with new parameters.
func (fs *FS) Init(p Params) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return toPathError("mkfs", common.ROOTPATH, fs.init(p))
}

func (fs *FS) init(p Params) error {
	if err := p.validate(); err != nil {
		return err
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}
	fs.id = id
	fs.p = p
	if fs.store != nil {
		fs.store.Close()
	}
	fs.store = blkstore.MkStore(p.BlockSize, p.BlockCount)
	fs.balloc = alloc.MkAlloc(p.BlockCount)
	fs.itab = inode.MkTable(p.Descriptors)
	fs.names = make(map[string]common.Inum)
	fs.ofiles = make(map[common.Fd]*ofile)
	fs.fdUsed = nil
	fs.cwd = common.ROOTPATH

	root, _, ok := fs.itab.Alloc(common.NF_DIR, common.ROOTLINKS)
	if !ok || root != common.ROOTINUM {
		panic("init: root descriptor")
	}
	fs.names[common.ROOTPATH] = root
	util.DPrintf(1, "init %v: %+v\n", fs.id, p)
	return nil
}

// UUID identifies this initialization of the filesystem; Init assigns a
// new one.
func (fs *FS) UUID() uuid.UUID {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.id
}

func (fs *FS) Params() Params {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.p
}

// FsStat summarizes how much of the filesystem is in use.
type FsStat struct {
	ID              uuid.UUID
	BlockSize       uint64
	Blocks          uint64
	FreeBlocks      uint64
	Descriptors     uint64
	FreeDescriptors uint64
	OpenFiles       uint64
}

func (fs *FS) Statfs() FsStat {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return FsStat{
		ID:              fs.id,
		BlockSize:       fs.store.BlockSize(),
		Blocks:          fs.store.NumBlocks(),
		FreeBlocks:      fs.balloc.NumFree(),
		Descriptors:     fs.itab.Len(),
		FreeDescriptors: fs.itab.NumFree(),
		OpenFiles:       uint64(len(fs.ofiles)),
	}
}

func (fs *FS) bsz() uint64 {
	return fs.p.BlockSize
}

func (fs *FS) begin() *jrnl.Op {
	return jrnl.Begin(fs.store, fs.balloc)
}

// isOpen reports whether any open file refers to inum.
func (fs *FS) isOpen(inum common.Inum) bool {
	for _, of := range fs.ofiles {
		if of.inum == inum {
			return true
		}
	}
	return false
}

// reclaim releases the blocks and the slot of a descriptor that has no
// names and no open files left.
func (fs *FS) reclaim(inum common.Inum, d *inode.Descriptor) {
	util.DPrintf(2, "reclaim: inum %d %v\n", inum, d)
	op := fs.begin()
	for _, bn := range d.Blocks {
		op.FreeBlock(bn)
	}
	op.Commit()
	d.Blocks = nil
	fs.itab.Free(inum)
}
