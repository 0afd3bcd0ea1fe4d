package inode

import (
	"github.com/tchajed/marshal"
)

// EncodeTarget lays out a symlink target as the content of its single
// block, zero-padded to bsz bytes. The caller checks len(target) <= bsz.
func EncodeTarget(target string, bsz uint64) []byte {
	enc := marshal.NewEnc(bsz)
	enc.PutBytes([]byte(target))
	return enc.Finish()
}

// DecodeTarget recovers a target of size bytes from a symlink block.
func DecodeTarget(blk []byte, size uint64) string {
	dec := marshal.NewDec(blk)
	return string(dec.GetBytes(size))
}
