package alloc

import (
	"fmt"

	"github.com/mit-pdos/go-memfs/util"
)

// Alloc uses a bit map to allocate and free numbers in [0, max). Bit 0 of
// byte 0 corresponds to number 0, bit 1 to number 1, and so on.
//
// Allocation is first-fit: AllocNum always returns the lowest free number.
type Alloc struct {
	max    uint64
	bitmap []byte
	nfree  uint64
}

func MkAlloc(max uint64) *Alloc {
	a := &Alloc{
		max:    max,
		bitmap: make([]byte, util.RoundUp(max, 8)),
		nfree:  max,
	}
	return a
}

func (a *Alloc) check(num uint64) {
	if num >= a.max {
		panic(fmt.Errorf("alloc: %d out of range [0, %d)", num, a.max))
	}
}

func (a *Alloc) IsUsed(num uint64) bool {
	a.check(num)
	return a.bitmap[num/8]&(1<<(num%8)) != 0
}

func (a *Alloc) MarkUsed(num uint64) {
	if a.IsUsed(num) {
		panic(fmt.Errorf("alloc: %d already in use", num))
	}
	a.bitmap[num/8] |= 1 << (num % 8)
	a.nfree -= 1
}

// AllocNum returns the lowest free number and marks it used. It returns
// false if every number is in use.
func (a *Alloc) AllocNum() (uint64, bool) {
	if a.nfree == 0 {
		return 0, false
	}
	for i, b := range a.bitmap {
		if b == 0xFF {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			num := uint64(i)*8 + bit
			if num >= a.max {
				break
			}
			if b&(1<<bit) == 0 {
				a.MarkUsed(num)
				util.DPrintf(10, "AllocNum: %d\n", num)
				return num, true
			}
		}
	}
	return 0, false
}

func (a *Alloc) FreeNum(num uint64) {
	if !a.IsUsed(num) {
		panic(fmt.Errorf("alloc: double free of %d", num))
	}
	a.bitmap[num/8] &= ^(1 << (num % 8))
	a.nfree += 1
	util.DPrintf(10, "FreeNum: %d\n", num)
}

func popCnt(b byte) uint64 {
	var count uint64
	var x = b
	for i := uint64(0); i < 8; i++ {
		count += uint64(x & 1)
		x = x >> 1
	}
	return count
}

// NumFree counts the free numbers by scanning the bitmap.
func (a *Alloc) NumFree() uint64 {
	var used uint64
	for _, b := range a.bitmap {
		used += popCnt(b)
	}
	if a.max-used != a.nfree {
		panic("alloc: free count out of sync with bitmap")
	}
	return a.nfree
}

func (a *Alloc) Max() uint64 {
	return a.max
}
