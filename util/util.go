package util

import "log"

// Debug is the highest trace level DPrintf emits. The engine traces at
// level 1 and above.
var Debug uint64 = 0

func DPrintf(level uint64, format string, a ...interface{}) {
	if level <= Debug {
		log.Printf(format, a...)
	}
}

// RoundUp returns ceil(n/sz) without overflowing for n near 2^64.
func RoundUp(n uint64, sz uint64) uint64 {
	r := n / sz
	if n%sz != 0 {
		r++
	}
	return r
}

func Min(n uint64, m uint64) uint64 {
	if n < m {
		return n
	} else {
		return m
	}
}

func Max(n uint64, m uint64) uint64 {
	if n > m {
		return n
	} else {
		return m
	}
}

// returns n+m>=2^64 (if it were computed at infinite precision)
func SumOverflows(n uint64, m uint64) bool {
	return n+m < n
}

// returns n*m>=2^64 (if it were computed at infinite precision)
func MulOverflows(n uint64, m uint64) bool {
	if n == 0 {
		return false
	}
	return m > (1<<64-1)/n
}

func CloneByteSlice(s []byte) []byte {
	s2 := make([]byte, len(s))
	copy(s2, s)
	return s2
}
