// Package blkstore is the block store: a fixed number of fixed-size
// logical blocks, addressed by index.
//
// Logical blocks are packed back to back onto a disk.Disk. The logical
// block size is chosen at format time and need not divide the disk block
// size, so a logical block may straddle disk blocks; every access is a
// read-modify-write of the disk blocks it touches.
package blkstore

import (
	"fmt"

	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-memfs/addr"
	"github.com/mit-pdos/go-memfs/buf"
	"github.com/mit-pdos/go-memfs/common"
	"github.com/mit-pdos/go-memfs/util"
)

type Store struct {
	d     disk.Disk
	bsz   uint64
	nblks uint64
}

// MkStore formats a fresh in-memory disk holding nblks blocks of bsz
// bytes each. All blocks read as zero.
func MkStore(bsz uint64, nblks uint64) *Store {
	if bsz == 0 {
		panic("MkStore: zero block size")
	}
	ndisk := util.RoundUp(bsz*nblks, disk.BlockSize)
	s := &Store{
		d:     disk.NewMemDisk(ndisk),
		bsz:   bsz,
		nblks: nblks,
	}
	util.DPrintf(1, "MkStore: %d blocks of %d bytes on %d disk blocks\n",
		nblks, bsz, ndisk)
	return s
}

func (s *Store) BlockSize() uint64 {
	return s.bsz
}

func (s *Store) NumBlocks() uint64 {
	return s.nblks
}

func (s *Store) check(bn common.Bnum, off uint64, sz uint64) {
	if bn >= s.nblks {
		panic(fmt.Errorf("out-of-bounds block %d", bn))
	}
	if off+sz > s.bsz {
		panic(fmt.Errorf("access [%d, %d) past end of block %d", off, off+sz, bn))
	}
}

// access copies between p and bytes [off, off+len(p)) of block bn,
// one disk block at a time.
func (s *Store) access(bn common.Bnum, off uint64, p []byte, write bool) {
	s.check(bn, off, uint64(len(p)))
	var done uint64 = 0
	for done < uint64(len(p)) {
		a := addr.MkBlockAddr(bn, s.bsz, off+done)
		n := util.Min(uint64(len(p))-done, disk.BlockSize-a.Off)
		blk := s.d.Read(a.Blkno)
		if write {
			copy(blk[a.Off:a.Off+n], p[done:done+n])
			s.d.Write(a.Blkno, blk)
		} else {
			copy(p[done:done+n], blk[a.Off:a.Off+n])
		}
		done += n
	}
}

// Read returns a copy of block bn.
func (s *Store) Read(bn common.Bnum) []byte {
	blk := make([]byte, s.bsz)
	s.access(bn, 0, blk, false)
	return blk
}

// ReadAt fills p from block bn starting at byte off.
func (s *Store) ReadAt(bn common.Bnum, p []byte, off uint64) {
	s.access(bn, off, p, false)
}

// Write overwrites block bn with v, which must be exactly one block.
func (s *Store) Write(bn common.Bnum, v []byte) {
	if uint64(len(v)) != s.bsz {
		panic(fmt.Errorf("v is not block-sized (%d bytes)", len(v)))
	}
	s.access(bn, 0, v, true)
}

// Install writes a buf's bytes into its block, leaving the rest of the
// block untouched.
func (s *Store) Install(b *buf.Buf) {
	blk := s.Read(b.Bn)
	b.Install(blk)
	s.Write(b.Bn, blk)
}

// Zero drops the content of block bn.
func (s *Store) Zero(bn common.Bnum) {
	s.Write(bn, make([]byte, s.bsz))
}

func (s *Store) Close() {
	s.d.Close()
}
