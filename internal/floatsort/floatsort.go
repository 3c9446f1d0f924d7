// Package floatsort implements a stable LSD radix sort over float32 keys
// with an arbitrary parallel payload. It is used for back-to-front depth
// ordering of transparent geometry, where per-frame recomputation over
// thousands of keys must stay linear rather than O(n log n).
package floatsort

import "math"

const signBit = uint32(1) << 31

// SortWithPayload sorts keys in ascending order and applies the same
// permutation to payload. The sort is stable: equal keys preserve their
// original relative order. Keys must be finite (no NaN); IEEE-754 total
// order including sign and zero is preserved. Empty and single-element
// inputs are returned unchanged.
func SortWithPayload[P any](keys []float32, payload []P) {
	if len(keys) != len(payload) {
		panic("floatsort: keys and payload must have equal length")
	}
	n := len(keys)
	if n < 2 {
		return
	}

	// Bias-encode floats into order-preserving unsigned keys: negative
	// floats get all bits inverted, non-negative floats get the sign bit
	// flipped. Unsigned comparison of the encoded values then matches
	// float comparison of the originals.
	enc := make([]uint32, n)
	for i, k := range keys {
		enc[i] = encode(k)
	}

	tmpEnc := make([]uint32, n)
	tmpPay := make([]P, n)
	src, dst := enc, tmpEnc
	srcPay, dstPay := payload, tmpPay

	// Four stable counting-sort passes over 8-bit digits. Always running
	// all four passes keeps the data landing back in the caller's slices.
	var count [256]int
	for pass := 0; pass < 4; pass++ {
		shift := uint(pass * 8)
		for i := range count {
			count[i] = 0
		}
		for _, k := range src {
			count[(k>>shift)&0xff]++
		}
		total := 0
		for i := range count {
			c := count[i]
			count[i] = total
			total += c
		}
		for i := 0; i < n; i++ {
			d := (src[i] >> shift) & 0xff
			pos := count[d]
			count[d]++
			dst[pos] = src[i]
			dstPay[pos] = srcPay[i]
		}
		src, dst = dst, src
		srcPay, dstPay = dstPay, srcPay
	}

	for i, e := range src {
		keys[i] = decode(e)
	}
}

// Sort sorts keys in ascending order with no payload.
func Sort(keys []float32) {
	if len(keys) < 2 {
		return
	}
	payload := make([]struct{}, len(keys))
	SortWithPayload(keys, payload)
}

func encode(f float32) uint32 {
	bits := math.Float32bits(f)
	if bits&signBit != 0 {
		return ^bits
	}
	return bits | signBit
}

func decode(e uint32) float32 {
	if e&signBit != 0 {
		return math.Float32frombits(e &^ signBit)
	}
	return math.Float32frombits(^e)
}
