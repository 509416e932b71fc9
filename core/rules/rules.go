// Package rules derives association rules from frequent itemsets.
package rules

import (
	"math"
	"time"

	"go.uber.org/zap"

	"basket-rules/core/types"
	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// Options selects which derived rules are kept.
type Options struct {
	// Metric is compared against MinThreshold
	Metric types.Metric

	// MinThreshold is the inclusive lower bound for Metric
	MinThreshold float64
}

// DefaultOptions keeps rules with lift >= 1.
func DefaultOptions() Options {
	return Options{Metric: types.MetricLift, MinThreshold: 1.0}
}

// Validate checks the options
func (o Options) Validate() error {
	if !o.Metric.IsValid() {
		return errors.Newf(errors.TypeInput, "unknown rule metric %q", o.Metric)
	}
	if math.IsNaN(o.MinThreshold) {
		return errors.Input("rule threshold must be a number")
	}
	return nil
}

// Generate derives every rule A => C where A ∪ C is a frequent itemset and A,
// C are non-empty and disjoint, keeping those whose selected metric meets the
// threshold. The supports of all subsets must be present in itemsets, which
// Apriori output guarantees.
func Generate(itemsets []types.FrequentItemset, opts Options) ([]types.Rule, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	support := make(map[string]float64, len(itemsets))
	for _, fi := range itemsets {
		support[fi.Items.Key()] = fi.Support
	}

	var rules []types.Rule
	considered := 0
	for _, fi := range itemsets {
		k := fi.Items.Len()
		if k < 2 {
			continue
		}
		for size := k - 1; size >= 1; size-- {
			var genErr error
			combinations(fi.Items, size, func(antecedents types.Itemset) bool {
				consequents := fi.Items.Minus(antecedents)
				sA, okA := support[antecedents.Key()]
				sC, okC := support[consequents.Key()]
				if !okA || !okC {
					genErr = errors.Newf(errors.TypeMining,
						"support missing for subset of %s; itemsets are not downward closed", fi.Items)
					return false
				}
				considered++

				r := Score(antecedents, consequents, sA, sC, fi.Support)
				if r.Value(opts.Metric) >= opts.MinThreshold {
					rules = append(rules, r)
				}
				return true
			})
			if genErr != nil {
				return nil, genErr
			}
		}
	}

	logging.Stage("rules").Info("Derived association rules",
		zap.Int("rules", len(rules)),
		zap.Int("considered", considered),
		zap.String("metric", opts.Metric.String()),
		zap.Float64("min_threshold", opts.MinThreshold),
		logging.Elapsed(start))
	return rules, nil
}

// Score computes the rule metrics from the antecedent, consequent and joint
// supports.
func Score(antecedents, consequents types.Itemset, sA, sC, sAC float64) types.Rule {
	r := types.Rule{
		Antecedents:       antecedents,
		Consequents:       consequents,
		AntecedentSupport: sA,
		ConsequentSupport: sC,
		Support:           sAC,
	}
	if sA > 0 {
		r.Confidence = sAC / sA
	}
	if sC > 0 {
		r.Lift = r.Confidence / sC
	}
	r.Leverage = sAC - sA*sC

	if r.Confidence >= 1 {
		r.Conviction = math.Inf(1)
	} else {
		r.Conviction = (1 - sC) / (1 - r.Confidence)
	}

	denom := math.Max(sAC*(1-sA), sA*(sC-sAC))
	if denom > 0 {
		r.ZhangsMetric = r.Leverage / denom
	}
	return r
}

// combinations calls fn with every size-r subset of items in lexicographic
// order until fn returns false.
func combinations(items types.Itemset, r int, fn func(types.Itemset) bool) {
	n := len(items)
	if r <= 0 || r > n {
		return
	}
	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	for {
		subset := make(types.Itemset, r)
		for i, j := range idx {
			subset[i] = items[j]
		}
		if !fn(subset) {
			return
		}

		i := r - 1
		for i >= 0 && idx[i] == n-r+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < r; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
