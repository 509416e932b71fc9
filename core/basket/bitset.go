package basket

import "math/bits"

// Bitset is a fixed-size set of row indices.
type Bitset []uint64

// NewBitset creates a bitset able to hold n rows.
func NewBitset(n int) Bitset {
	return make(Bitset, (n+63)/64)
}

// Set marks row i.
func (b Bitset) Set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

// Has reports whether row i is marked.
func (b Bitset) Has(i int) bool {
	if i < 0 || i/64 >= len(b) {
		return false
	}
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

// Count returns the number of marked rows.
func (b Bitset) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

// And returns the rows marked in both sets.
func (b Bitset) And(other Bitset) Bitset {
	out := make(Bitset, len(b))
	for i := range b {
		if i < len(other) {
			out[i] = b[i] & other[i]
		}
	}
	return out
}
