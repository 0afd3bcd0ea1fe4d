package addr

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-memfs/common"
)

// Addr identifies a byte on the backing disk.
//
// Blkno is the disk block containing the byte, and Off is the location of
// the byte within that block. Logical filesystem blocks need not line up
// with disk blocks, so a logical block may start at any Off and span
// several disk blocks.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bytes
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// MkFlatAddr splits a flat byte position into disk block and offset.
func MkFlatAddr(flat uint64) Addr {
	return MkAddr(common.Bnum(flat/disk.BlockSize), flat%disk.BlockSize)
}

// MkBlockAddr returns the address of byte off of logical block bn, where
// logical blocks are bsz bytes each.
func MkBlockAddr(bn common.Bnum, bsz uint64, off uint64) Addr {
	return MkFlatAddr(uint64(bn)*bsz + off)
}
