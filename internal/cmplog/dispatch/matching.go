package dispatch

import "math/bits"

// matchingBytes returns the number of leading (least-significant-first)
// bytes in which x and y agree, up to argLength bytes. This is the
// "matching-byte routine" shared by every integer comparison hook: byte
// 0 is the least significant byte, matching the little-endian notion of
// "leading bytes" the trace format encodes.
func matchingBytes(x, y uint64, argLength int) int {
	i := 0
	for i < argLength {
		if byte(x>>(8*i)) != byte(y>>(8*i)) {
			break
		}
		i++
	}
	return i
}

// byteSpan returns the narrowed arg_length used for const-compare of
// width 4 and 8, and for switch-case constants regardless of the
// switch's declared bit width: the leading-zero count of v within a
// bitwidth-bit representation, rounded DOWN to a multiple of 8 and
// subtracted from bitwidth, then converted to bytes.
//
// This is a direct translation of the clz-based width formula
// (`(width - (clz(x) & ~7)) / 8`) used by sanitizer coverage's
// comparison instrumentation. For a bitwidth that is a multiple of 8
// (every caller here) the result equals ceil(bitlen(v)/8).
func byteSpan(v uint64, bitwidth int) int {
	lz := bitwidth - bits.Len64(v)
	lz &^= 7
	if lz < 0 {
		lz = 0
	}
	return (bitwidth - lz) / 8
}
