package buf

import (
	"sort"

	"github.com/mit-pdos/go-memfs/common"
)

//
// A map from logical block numbers to the bufs written to them, in the
// order they were inserted.
//

type BufMap struct {
	bufs map[common.Bnum][]*Buf
}

func MkBufMap() *BufMap {
	a := &BufMap{
		bufs: make(map[common.Bnum][]*Buf),
	}
	return a
}

func (bmap *BufMap) Insert(buf *Buf) {
	bmap.bufs[buf.Bn] = append(bmap.bufs[buf.Bn], buf)
}

func (bmap *BufMap) Ndirty() uint64 {
	n := uint64(0)
	for _, bufs := range bmap.bufs {
		for _, b := range bufs {
			if b.IsDirty() {
				n += 1
			}
		}
	}
	return n
}

// Blocks returns the block numbers that have bufs, in increasing order.
func (bmap *BufMap) Blocks() []common.Bnum {
	bns := make([]common.Bnum, 0, len(bmap.bufs))
	for bn := range bmap.bufs {
		bns = append(bns, bn)
	}
	sort.Slice(bns, func(i, j int) bool { return bns[i] < bns[j] })
	return bns
}

// DirtyBufs returns dirty bufs grouped by increasing block number, each
// group in insertion order so later writes install over earlier ones.
func (bmap *BufMap) DirtyBufs() []*Buf {
	bufs := make([]*Buf, 0)
	for _, bn := range bmap.Blocks() {
		for _, b := range bmap.bufs[bn] {
			if b.IsDirty() {
				bufs = append(bufs, b)
			}
		}
	}
	return bufs
}
