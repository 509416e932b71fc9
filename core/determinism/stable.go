// Package determinism provides primitives for guaranteeing deterministic output.
// Map iteration, metric rounding and content fingerprints go through here so
// two runs over the same input print the same bytes.
package determinism

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"math"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RangeMapSorted iterates over a map in sorted key order
func RangeMapSorted[K cmp.Ordered, V any](m map[K]V, fn func(K, V) bool) {
	for _, k := range SortedKeys(m) {
		if !fn(k, m[k]) {
			break
		}
	}
}

// SortSlice sorts a slice in a stable, deterministic manner
func SortSlice[T any](slice []T, less func(a, b T) bool) {
	sort.SliceStable(slice, func(i, j int) bool {
		return less(slice[i], slice[j])
	})
}

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// ComputeHash computes a content hash from bytes
func ComputeHash(data []byte) ContentHash {
	return sha256.Sum256(data)
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// HashingReader hashes everything read through it.
type HashingReader struct {
	r io.Reader
	h hash.Hash
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	h := sha256.New()
	return &HashingReader{r: io.TeeReader(r, h), h: h}
}

// Read implements io.Reader
func (hr *HashingReader) Read(p []byte) (int, error) {
	return hr.r.Read(p)
}

// Sum returns the hash of the bytes read so far.
func (hr *HashingReader) Sum() ContentHash {
	var out ContentHash
	copy(out[:], hr.h.Sum(nil))
	return out
}

// Round rounds f half away from zero to places decimal places.
// Infinities and NaN are returned unchanged.
func Round(f float64, places int32) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

// FormatFixed renders f with exactly places decimal places; +Inf renders as "inf".
func FormatFixed(f float64, places int32) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return decimal.NewFromFloat(f).StringFixed(places)
}
