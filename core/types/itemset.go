package types

import (
	"sort"
	"strings"
)

// ItemSeparator joins the members of an itemset in its canonical key.
const ItemSeparator = ","

// Itemset is a set of services held sorted and without duplicates.
// Always build one with NewItemset or ParseItemset.
type Itemset []ServiceCategory

// NewItemset creates an itemset from items, sorting and removing duplicates.
func NewItemset(items ...ServiceCategory) Itemset {
	if len(items) == 0 {
		return Itemset{}
	}
	out := make(Itemset, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}

// ParseItemset reverses Key.
func ParseItemset(key string) Itemset {
	if key == "" {
		return Itemset{}
	}
	parts := strings.Split(key, ItemSeparator)
	items := make([]ServiceCategory, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, ServiceCategory(p))
		}
	}
	return NewItemset(items...)
}

// Key returns the canonical string form, usable as a map key.
func (s Itemset) Key() string {
	parts := make([]string, len(s))
	for i, item := range s {
		parts[i] = string(item)
	}
	return strings.Join(parts, ItemSeparator)
}

// String renders the itemset as {a, b}.
func (s Itemset) String() string {
	parts := make([]string, len(s))
	for i, item := range s {
		parts[i] = string(item)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Len returns the number of members
func (s Itemset) Len() int {
	return len(s)
}

// Contains reports whether item is a member.
func (s Itemset) Contains(item ServiceCategory) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= item })
	return i < len(s) && s[i] == item
}

// Equal reports whether both itemsets hold the same members.
func (s Itemset) Equal(other Itemset) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Minus returns the members of s that are not in other.
func (s Itemset) Minus(other Itemset) Itemset {
	out := make(Itemset, 0, len(s))
	for _, item := range s {
		if !other.Contains(item) {
			out = append(out, item)
		}
	}
	return out
}

// Union returns the members of either itemset.
func (s Itemset) Union(other Itemset) Itemset {
	merged := make([]ServiceCategory, 0, len(s)+len(other))
	merged = append(merged, s...)
	merged = append(merged, other...)
	return NewItemset(merged...)
}

// FrequentItemset is an itemset whose support met the mining threshold.
type FrequentItemset struct {
	Items Itemset `json:"items"`

	// Support is the fraction of baskets containing every member
	Support float64 `json:"support"`

	// Count is the number of baskets containing every member
	Count int `json:"count"`
}
