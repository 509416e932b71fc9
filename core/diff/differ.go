// Package diff provides rule-level diffing.
// Compares two rule sets, matching rules by antecedents and consequents.
package diff

import (
	"math"
	"sort"

	"basket-rules/core/types"
)

// Result is the complete diff between two rule sets
type Result struct {
	// Rule-level changes, each sorted by rule key
	Added     []*RuleDiff `json:"added"`
	Removed   []*RuleDiff `json:"removed"`
	Changed   []*RuleDiff `json:"changed"`
	Unchanged int         `json:"unchanged"`

	// Totals
	RulesBefore int `json:"rules_before"`
	RulesAfter  int `json:"rules_after"`
}

// HasChanges reports whether any rule was added, removed or changed
func (r *Result) HasChanges() bool {
	return len(r.Added)+len(r.Removed)+len(r.Changed) > 0
}

// RuleDiff describes changes to a single rule
type RuleDiff struct {
	// Key is "antecedents=>consequents" with canonical itemset keys
	Key string `json:"key"`

	// Change type
	ChangeType ChangeType `json:"change"`

	// Before is nil for added rules, After for removed ones
	Before *types.Rule `json:"before,omitempty"`
	After  *types.Rule `json:"after,omitempty"`

	// Deltas are After minus Before, zero unless modified
	LiftDelta       float64 `json:"lift_delta"`
	ConfidenceDelta float64 `json:"confidence_delta"`
	SupportDelta    float64 `json:"support_delta"`
}

// ChangeType indicates the type of change
type ChangeType int

const (
	ChangeAdded     ChangeType = iota // New rule
	ChangeRemoved                     // Rule no longer mined
	ChangeModified                    // Metrics moved beyond the threshold
	ChangeUnchanged                   // Metrics within the threshold
)

// String returns the change type name
func (c ChangeType) String() string {
	switch c {
	case ChangeAdded:
		return "added"
	case ChangeRemoved:
		return "removed"
	case ChangeModified:
		return "modified"
	case ChangeUnchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// MarshalText encodes the change type name
func (c ChangeType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Differ computes diffs between rule sets
type Differ struct {
	// Tolerance is the absolute metric difference treated as unchanged
	Tolerance float64
}

// NewDiffer creates a new differ
func NewDiffer(tolerance float64) *Differ {
	if tolerance <= 0 {
		tolerance = 1e-9
	}
	return &Differ{Tolerance: tolerance}
}

// RuleKey identifies a rule independently of its metrics.
func RuleKey(r types.Rule) string {
	return r.Antecedents.Key() + "=>" + r.Consequents.Key()
}

// Compare diffs before against after.
func (d *Differ) Compare(before, after []types.Rule) *Result {
	result := &Result{
		RulesBefore: len(before),
		RulesAfter:  len(after),
	}

	old := index(before)
	cur := index(after)

	for key, b := range old {
		a, ok := cur[key]
		if !ok {
			result.Removed = append(result.Removed, &RuleDiff{Key: key, ChangeType: ChangeRemoved, Before: b})
			continue
		}

		rd := &RuleDiff{
			Key:             key,
			Before:          b,
			After:           a,
			LiftDelta:       a.Lift - b.Lift,
			ConfidenceDelta: a.Confidence - b.Confidence,
			SupportDelta:    a.Support - b.Support,
		}
		if d.changed(rd) {
			rd.ChangeType = ChangeModified
			result.Changed = append(result.Changed, rd)
		} else {
			result.Unchanged++
		}
	}

	for key, a := range cur {
		if _, ok := old[key]; !ok {
			result.Added = append(result.Added, &RuleDiff{Key: key, ChangeType: ChangeAdded, After: a})
		}
	}

	sortByKey(result.Added)
	sortByKey(result.Removed)
	sortByKey(result.Changed)
	return result
}

func (d *Differ) changed(rd *RuleDiff) bool {
	return math.Abs(rd.LiftDelta) > d.Tolerance ||
		math.Abs(rd.ConfidenceDelta) > d.Tolerance ||
		math.Abs(rd.SupportDelta) > d.Tolerance
}

func index(rules []types.Rule) map[string]*types.Rule {
	out := make(map[string]*types.Rule, len(rules))
	for i := range rules {
		out[RuleKey(rules[i])] = &rules[i]
	}
	return out
}

func sortByKey(diffs []*RuleDiff) {
	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Key < diffs[j].Key
	})
}
