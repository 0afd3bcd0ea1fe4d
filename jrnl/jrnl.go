// Package jrnl groups the block-level effects of one filesystem operation
// so they apply all together or not at all.
//
// The caller uses this interface by beginning an operation Op, allocating
// blocks and staging writes and frees within it, and finally either
// committing or aborting. Staged writes are buffered in the Op and reach
// the block store only at Commit; block allocations take effect in the
// allocation bitmap immediately, so that later allocations in the same Op
// see them, and are rolled back by Abort.
//
// There is no log and nothing survives the process: an Op only makes a
// multi-block update atomic with respect to failures detected part way
// through, such as running out of free blocks in the middle of a write.
package jrnl

import (
	"github.com/mit-pdos/go-memfs/alloc"
	"github.com/mit-pdos/go-memfs/blkstore"
	"github.com/mit-pdos/go-memfs/buf"
	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/util"
)

// Op is an in-progress operation.
//
// Call Commit to apply the operation's writes and frees, or Abort to undo
// its allocations.
type Op struct {
	store     *blkstore.Store
	balloc    *alloc.Alloc
	bufs      *buf.BufMap // map of bufs written by this operation
	allocated []common.Bnum
	freed     []common.Bnum
	done      bool
}

// Begin starts an operation against a block store and its bitmap.
func Begin(store *blkstore.Store, balloc *alloc.Alloc) *Op {
	if store.NumBlocks() != balloc.Max() {
		panic("Begin: bitmap does not cover the store")
	}
	op := &Op{
		store:     store,
		balloc:    balloc,
		bufs:      buf.MkBufMap(),
		allocated: make([]common.Bnum, 0),
		freed:     make([]common.Bnum, 0),
	}
	return op
}

func (op *Op) checkOpen() {
	if op.done {
		panic("jrnl: operation already finished")
	}
}

// AllocBlock takes the lowest free block. Free blocks always read as
// zero, so the new block starts out zeroed.
func (op *Op) AllocBlock() (common.Bnum, bool) {
	op.checkOpen()
	bn, ok := op.balloc.AllocNum()
	if !ok {
		util.DPrintf(1, "AllocBlock: out of blocks after %d\n", len(op.allocated))
		return 0, false
	}
	op.allocated = append(op.allocated, bn)
	return bn, true
}

// OverWrite stages data to land at byte off of block bn.
func (op *Op) OverWrite(bn common.Bnum, off uint64, data []byte) {
	op.checkOpen()
	b := buf.MkBuf(bn, off, util.CloneByteSlice(data))
	b.SetDirty()
	op.bufs.Insert(b)
}

// FreeBlock stages the release of bn: at Commit its content is dropped
// and its bitmap bit cleared.
func (op *Op) FreeBlock(bn common.Bnum) {
	op.checkOpen()
	op.freed = append(op.freed, bn)
}

// NDirty reports the number of staged writes.
func (op *Op) NDirty() uint64 {
	return op.bufs.Ndirty()
}

// Commit installs the staged writes, then releases the staged frees.
func (op *Op) Commit() {
	op.checkOpen()
	op.done = true
	bufs := op.bufs.DirtyBufs()
	util.DPrintf(3, "Commit: %d writes, %d allocs, %d frees\n",
		len(bufs), len(op.allocated), len(op.freed))
	for _, b := range bufs {
		op.store.Install(b)
	}
	for _, bn := range op.freed {
		op.store.Zero(bn)
		op.balloc.FreeNum(bn)
	}
}

// Abort drops the staged writes and frees and returns every block the
// operation allocated.
func (op *Op) Abort() {
	op.checkOpen()
	op.done = true
	util.DPrintf(3, "Abort: returning %d blocks\n", len(op.allocated))
	for _, bn := range op.allocated {
		op.balloc.FreeNum(bn)
	}
}
