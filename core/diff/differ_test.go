package diff

import (
	"testing"

	"basket-rules/core/types"
)

func rule(ante, cons string, lift float64) types.Rule {
	return types.Rule{
		Antecedents: types.ParseItemset(ante),
		Consequents: types.ParseItemset(cons),
		Support:     0.1,
		Confidence:  0.5,
		Lift:        lift,
	}
}

func TestCompare(t *testing.T) {
	before := []types.Rule{
		rule("2_0", "22_0", 1.5),
		rule("22_0", "2_0", 1.5),
		rule("9_4", "38_4", 1.2),
	}
	after := []types.Rule{
		rule("2_0", "22_0", 1.5),
		rule("22_0", "2_0", 1.8),
		rule("2_0,9_4", "46_4", 2.0),
	}

	res := NewDiffer(0).Compare(before, after)

	if res.RulesBefore != 3 || res.RulesAfter != 3 {
		t.Errorf("totals = %d/%d", res.RulesBefore, res.RulesAfter)
	}
	if res.Unchanged != 1 {
		t.Errorf("Unchanged = %d, want 1", res.Unchanged)
	}
	if len(res.Added) != 1 || res.Added[0].Key != "2_0,9_4=>46_4" || res.Added[0].Before != nil {
		t.Errorf("Added = %+v", res.Added)
	}
	if len(res.Removed) != 1 || res.Removed[0].Key != "9_4=>38_4" || res.Removed[0].After != nil {
		t.Errorf("Removed = %+v", res.Removed)
	}
	if len(res.Changed) != 1 || res.Changed[0].ChangeType != ChangeModified {
		t.Fatalf("Changed = %+v", res.Changed)
	}
	if d := res.Changed[0].LiftDelta; d < 0.2999 || d > 0.3001 {
		t.Errorf("LiftDelta = %v, want 0.3", d)
	}
	if !res.HasChanges() {
		t.Error("HasChanges() = false")
	}
}

func TestCompareTolerance(t *testing.T) {
	before := []types.Rule{rule("2_0", "22_0", 1.5)}
	after := []types.Rule{rule("2_0", "22_0", 1.5004)}

	if res := NewDiffer(0.001).Compare(before, after); res.HasChanges() {
		t.Errorf("change within tolerance reported: %+v", res.Changed)
	}
	if res := NewDiffer(0).Compare(before, after); len(res.Changed) != 1 {
		t.Errorf("change above default tolerance missed")
	}
}

func TestChangeTypeString(t *testing.T) {
	tests := map[ChangeType]string{
		ChangeAdded:     "added",
		ChangeRemoved:   "removed",
		ChangeModified:  "modified",
		ChangeUnchanged: "unchanged",
		ChangeType(9):   "unknown",
	}
	for c, want := range tests {
		if got := c.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", c, got, want)
		}
	}
}
