// buf manages sub-block writes, to be installed into whole blocks
package buf

import (
	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/util"
)

// A Buf is a write to part of one logical block: Data lands at byte Off
// of block Bn.
type Buf struct {
	Bn    common.Bnum
	Off   uint64
	Data  []byte
	dirty bool // has this buf been written to?
}

func MkBuf(bn common.Bnum, off uint64, data []byte) *Buf {
	b := &Buf{
		Bn:    bn,
		Off:   off,
		Data:  data,
		dirty: false,
	}
	return b
}

// Install the bytes from buf into blk, which must be the whole block Bn.
func (buf *Buf) Install(blk []byte) {
	util.DPrintf(5, "%d: install %d bytes at %d\n", buf.Bn, len(buf.Data), buf.Off)
	if buf.Off+uint64(len(buf.Data)) > uint64(len(blk)) {
		panic("Install past end of block")
	}
	copy(blk[buf.Off:], buf.Data)
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}
