// Package recommend answers "given service S, what next?" from a rule table.
package recommend

import (
	"sort"

	"go.uber.org/zap"

	"basket-rules/core/types"
	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// DefaultCount is the number of recommendations returned when none is asked for.
const DefaultCount = 1

// Recommender ranks rules by lift. It never modifies its rule table and is
// safe for concurrent use.
type Recommender struct {
	rules []types.Rule
}

// New creates a recommender over rules. The slice is copied.
func New(rules []types.Rule) *Recommender {
	own := make([]types.Rule, len(rules))
	copy(own, rules)
	return &Recommender{rules: own}
}

// Rules returns the rule table sorted by lift descending, ties in table order.
func (r *Recommender) Rules() []types.Rule {
	out := make([]types.Rule, len(r.rules))
	copy(out, r.rules)
	sortByLift(out)
	return out
}

// Len returns the number of rules.
func (r *Recommender) Len() int {
	return len(r.rules)
}

// RecommendRules returns up to count rules whose antecedents contain service,
// sorted by lift descending. Ties keep rule-table order. An unknown service
// yields an empty result.
func (r *Recommender) RecommendRules(service types.ServiceCategory, count int) ([]types.Rule, error) {
	if count < 1 {
		return nil, errors.Newf(errors.TypeInput, "recommendation count must be at least 1, got %d", count)
	}

	matched := []types.Rule{}
	for _, rule := range r.rules {
		if rule.Antecedents.Contains(service) {
			matched = append(matched, rule)
		}
	}
	sortByLift(matched)
	if len(matched) > count {
		matched = matched[:count]
	}

	logging.Debug("Recommendation lookup",
		zap.String("service", service.String()),
		zap.Int("count", count),
		zap.Int("returned", len(matched)))
	return matched, nil
}

// Recommend returns the consequent sets of the top count rules for service.
func (r *Recommender) Recommend(service types.ServiceCategory, count int) ([]types.Itemset, error) {
	matched, err := r.RecommendRules(service, count)
	if err != nil {
		return nil, err
	}
	out := make([]types.Itemset, len(matched))
	for i, rule := range matched {
		out[i] = rule.Consequents
	}
	return out, nil
}

// RecommendServices flattens the top count consequent sets into distinct
// services in rank order, never including service itself.
func (r *Recommender) RecommendServices(service types.ServiceCategory, count int) ([]types.ServiceCategory, error) {
	sets, err := r.Recommend(service, count)
	if err != nil {
		return nil, err
	}
	seen := map[types.ServiceCategory]struct{}{service: {}}
	var out []types.ServiceCategory
	for _, set := range sets {
		for _, s := range set {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out, nil
}

func sortByLift(rules []types.Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Lift > rules[j].Lift
	})
}
