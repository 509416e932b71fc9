package recommend

import (
	"testing"

	"basket-rules/core/types"
	"basket-rules/internal/errors"
)

func rule(ante, cons string, lift float64) types.Rule {
	return types.Rule{
		Antecedents: types.ParseItemset(ante),
		Consequents: types.ParseItemset(cons),
		Lift:        lift,
	}
}

func table() []types.Rule {
	return []types.Rule{
		rule("2_0", "22_0", 2.1),
		rule("15_1", "2_0", 2.4),
		rule("2_0", "25_0", 2.5),
		rule("2_0,25_0", "15_1", 3.9),
		rule("2_0", "15_1", 2.1),
		rule("38_4", "9_4", 1.2),
		rule("2_0", "38_4,9_4", 1.0),
	}
}

func TestRecommendTopN(t *testing.T) {
	rec := New(table())

	got, err := rec.Recommend("2_0", 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []string{"15_1", "25_0", "22_0"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i].Key() != want[i] {
			t.Errorf("recommendation %d = %s, want %s", i, got[i].Key(), want[i])
		}
	}
}

func TestRecommendRulesProperties(t *testing.T) {
	rec := New(table())

	for _, n := range []int{1, 2, 3, 5, 10} {
		rules, err := rec.RecommendRules("2_0", n)
		if err != nil {
			t.Fatalf("RecommendRules(%d) error = %v", n, err)
		}
		if len(rules) > n {
			t.Errorf("n=%d: got %d rules", n, len(rules))
		}
		for i, r := range rules {
			if !r.Antecedents.Contains("2_0") {
				t.Errorf("n=%d: rule %s does not have 2_0 in its antecedents", n, r)
			}
			if i > 0 && rules[i-1].Lift < r.Lift {
				t.Errorf("n=%d: lift not descending at %d", n, i)
			}
		}
	}

	all, _ := rec.RecommendRules("2_0", 10)
	if len(all) != 5 {
		t.Errorf("got %d matching rules, want 5", len(all))
	}
}

func TestRecommendTiesKeepTableOrder(t *testing.T) {
	rules, err := New(table()).RecommendRules("2_0", 5)
	if err != nil {
		t.Fatal(err)
	}
	// 22_0 and 15_1 share lift 2.1; 22_0 comes first in the table
	if rules[2].Consequents.Key() != "22_0" || rules[3].Consequents.Key() != "15_1" {
		t.Errorf("tie order = %s, %s", rules[2].Consequents, rules[3].Consequents)
	}
}

func TestRecommendUnknownServiceIsEmpty(t *testing.T) {
	got, err := New(table()).Recommend("999_9", 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no recommendations", got)
	}

	matched, err := New(table()).RecommendRules("999_9", 3)
	if err != nil {
		t.Fatalf("RecommendRules() error = %v", err)
	}
	if matched == nil || len(matched) != 0 {
		t.Errorf("RecommendRules() = %#v, want an empty non-nil slice", matched)
	}
}

func TestRecommendInvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New(table()).Recommend("2_0", n); !errors.IsType(err, errors.TypeInput) {
			t.Errorf("count %d: expected input error, got %v", n, err)
		}
	}
}

func TestRecommendServices(t *testing.T) {
	got, err := New(table()).RecommendServices("2_0", 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []types.ServiceCategory{"15_1", "25_0", "22_0", "38_4", "9_4"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("service %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRulesSortedCopy(t *testing.T) {
	input := table()
	rec := New(input)
	input[0].Lift = 100

	sorted := rec.Rules()
	if sorted[0].Lift != 3.9 {
		t.Errorf("first rule lift = %v, want 3.9", sorted[0].Lift)
	}
	if rec.Len() != len(input) {
		t.Errorf("Len() = %d, want %d", rec.Len(), len(input))
	}
}
