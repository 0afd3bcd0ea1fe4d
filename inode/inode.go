// Package inode holds the descriptor table: a fixed number of slots, each
// either free or holding one descriptor.
package inode

import (
	"fmt"

	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/util"
)

// A Descriptor describes one file, directory or symlink.
//
// Blocks lists the logical blocks holding the contents, in file order:
// Blocks[k] holds bytes [k*bsz, (k+1)*bsz). Size is unused for
// directories.
type Descriptor struct {
	Kind   common.Kind
	Nlink  uint64
	Size   uint64
	Blocks []common.Bnum
}

func (d *Descriptor) IsDir() bool {
	return d.Kind == common.NF_DIR
}

func (d *Descriptor) NBlocks() uint64 {
	return uint64(len(d.Blocks))
}

// Snapshot returns a copy that shares no memory with d.
func (d *Descriptor) Snapshot() Descriptor {
	s := *d
	s.Blocks = make([]common.Bnum, len(d.Blocks))
	copy(s.Blocks, d.Blocks)
	return s
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("{%v nlink %d size %d blocks %v}", d.Kind, d.Nlink, d.Size, d.Blocks)
}

type Table struct {
	slots []*Descriptor
}

func MkTable(n uint64) *Table {
	t := &Table{
		slots: make([]*Descriptor, n),
	}
	return t
}

func (t *Table) Len() uint64 {
	return uint64(len(t.slots))
}

// Alloc places a new descriptor of the given kind in the lowest free slot.
func (t *Table) Alloc(kind common.Kind, nlink uint64) (common.Inum, *Descriptor, bool) {
	if kind == common.NF_FREE {
		panic("Alloc: free kind")
	}
	for i, d := range t.slots {
		if d == nil {
			nd := &Descriptor{
				Kind:   kind,
				Nlink:  nlink,
				Size:   0,
				Blocks: []common.Bnum{},
			}
			t.slots[i] = nd
			util.DPrintf(5, "Alloc: inum %d %v\n", i, kind)
			return common.Inum(i), nd, true
		}
	}
	return 0, nil, false
}

// Get returns the descriptor in slot inum, or nil if the slot is free.
func (t *Table) Get(inum common.Inum) *Descriptor {
	if uint64(inum) >= t.Len() {
		return nil
	}
	return t.slots[inum]
}

func (t *Table) Free(inum common.Inum) {
	if t.Get(inum) == nil {
		panic(fmt.Errorf("Free: inum %d not allocated", inum))
	}
	util.DPrintf(5, "Free: inum %d\n", inum)
	t.slots[inum] = nil
}

func (t *Table) NumFree() uint64 {
	var n uint64
	for _, d := range t.slots {
		if d == nil {
			n++
		}
	}
	return n
}
