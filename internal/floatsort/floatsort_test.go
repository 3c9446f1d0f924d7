package floatsort

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func TestSortWithPayloadOrdersKeys(t *testing.T) {
	keys := []float32{3.5, -2.25, 0, 100, -0.5, 7}
	payload := []string{"a", "b", "c", "d", "e", "f"}

	SortWithPayload(keys, payload)

	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not ascending at %d: %v", i, keys)
		}
	}
	want := []string{"b", "e", "c", "a", "f", "d"}
	for i, p := range payload {
		if p != want[i] {
			t.Fatalf("payload[%d]: got %q, want %q (payload %v)", i, p, want[i], payload)
		}
	}
}

func TestSortWithPayloadKeepsPairing(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 1000
	keys := make([]float32, n)
	payload := make([]float32, n)
	for i := range keys {
		keys[i] = float32(rng.NormFloat64() * 100)
		payload[i] = keys[i]
	}

	SortWithPayload(keys, payload)

	for i := range keys {
		if keys[i] != payload[i] {
			t.Fatalf("pairing broken at %d: key %v, payload %v", i, keys[i], payload[i])
		}
	}
	if !sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }) {
		t.Fatal("keys not sorted")
	}
}

func TestSortWithPayloadIsStable(t *testing.T) {
	keys := []float32{1, 0, 1, 0, 1, 0}
	payload := []int{0, 1, 2, 3, 4, 5}

	SortWithPayload(keys, payload)

	want := []int{1, 3, 5, 0, 2, 4}
	for i, p := range payload {
		if p != want[i] {
			t.Fatalf("equal keys reordered: got %v, want %v", payload, want)
		}
	}
}

func TestSortWithPayloadSignsAndZeros(t *testing.T) {
	negZero := float32(math.Copysign(0, -1))
	keys := []float32{0, negZero, -1, 1, float32(math.Inf(1)), float32(math.Inf(-1))}
	payload := make([]int, len(keys))
	for i := range payload {
		payload[i] = i
	}

	SortWithPayload(keys, payload)

	if !math.IsInf(float64(keys[0]), -1) {
		t.Fatalf("keys[0]: got %v, want -Inf", keys[0])
	}
	if keys[1] != -1 {
		t.Fatalf("keys[1]: got %v, want -1", keys[1])
	}
	// -0 sorts before +0 under the bit encoding.
	if keys[2] != 0 || !math.Signbit(float64(keys[2])) {
		t.Fatalf("keys[2]: got %v, want -0", keys[2])
	}
	if keys[3] != 0 || math.Signbit(float64(keys[3])) {
		t.Fatalf("keys[3]: got %v, want +0", keys[3])
	}
	if keys[4] != 1 {
		t.Fatalf("keys[4]: got %v, want 1", keys[4])
	}
	if !math.IsInf(float64(keys[5]), 1) {
		t.Fatalf("keys[5]: got %v, want +Inf", keys[5])
	}
}

func TestSortWithPayloadSmallInputs(t *testing.T) {
	SortWithPayload(nil, []int(nil))

	keys := []float32{5}
	payload := []int{7}
	SortWithPayload(keys, payload)
	if keys[0] != 5 || payload[0] != 7 {
		t.Fatalf("single element changed: %v %v", keys, payload)
	}
}

func TestSortWithPayloadLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on length mismatch")
		}
	}()
	SortWithPayload([]float32{1, 2}, []int{1})
}

func BenchmarkSortWithPayload(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	const n = 4096
	src := make([]float32, n)
	for i := range src {
		src[i] = float32(rng.NormFloat64())
	}
	keys := make([]float32, n)
	payload := make([]int, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(keys, src)
		SortWithPayload(keys, payload)
	}
}
