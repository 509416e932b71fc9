// Package apriori mines frequent itemsets from an incidence matrix with the
// level-wise Apriori algorithm.
package apriori

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"basket-rules/core/basket"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// DefaultMinSupport is the support threshold used when none is configured.
const DefaultMinSupport = 0.01

// Options controls mining.
type Options struct {
	// MinSupport is the minimum fraction of baskets, in (0, 1].
	MinSupport float64

	// MaxLen caps itemset size; 0 means unbounded.
	MaxLen int
}

// DefaultOptions returns MinSupport 0.01 and no length cap.
func DefaultOptions() Options {
	return Options{MinSupport: DefaultMinSupport}
}

// Validate checks the options
func (o Options) Validate() error {
	if !(o.MinSupport > 0 && o.MinSupport <= 1) {
		return errors.Newf(errors.TypeInput, "min support must be in (0, 1], got %v", o.MinSupport)
	}
	if o.MaxLen < 0 {
		return errors.Newf(errors.TypeInput, "max length must not be negative, got %d", o.MaxLen)
	}
	return nil
}

// candidate is an itemset with the rows that contain it.
type candidate struct {
	items types.Itemset
	cover basket.Bitset
	count int
}

// FrequentItemsets returns every itemset whose support is at least
// opts.MinSupport, ordered by size and then lexicographically.
func FrequentItemsets(ctx context.Context, m *basket.Matrix, opts Options) ([]types.FrequentItemset, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := m.Len()
	if n == 0 {
		return nil, nil
	}

	log := logging.Stage("apriori")
	start := time.Now()

	var level []candidate
	for _, s := range m.Services() {
		col := m.Column(s)
		count := col.Count()
		if frequent(count, n, opts.MinSupport) {
			level = append(level, candidate{items: types.NewItemset(s), cover: col, count: count})
		}
	}

	var result []types.FrequentItemset
	for k := 1; len(level) > 0; k++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.Mining(fmt.Sprintf("cancelled at level %d", k), err)
		}
		for _, c := range level {
			result = append(result, types.FrequentItemset{
				Items:   c.items,
				Support: float64(c.count) / float64(n),
				Count:   c.count,
			})
		}
		log.Debug("Level complete", zap.Int("level", k), zap.Int("frequent", len(level)))

		if opts.MaxLen > 0 && k >= opts.MaxLen {
			break
		}
		level = nextLevel(level, n, opts.MinSupport)
	}

	log.Info("Mined frequent itemsets",
		zap.Int("itemsets", len(result)),
		zap.Float64("min_support", opts.MinSupport),
		zap.Int("baskets", n),
		logging.Elapsed(start))
	return result, nil
}

// nextLevel joins frequent k-itemsets sharing their first k-1 members, prunes
// candidates with an infrequent k-subset and keeps those meeting min support.
// level must be in lexicographic order, which keeps the output ordered too.
func nextLevel(level []candidate, n int, minSupport float64) []candidate {
	known := make(map[string]struct{}, len(level))
	for _, c := range level {
		known[c.items.Key()] = struct{}{}
	}

	var next []candidate
	for i := 0; i < len(level); i++ {
		a := level[i].items
		for j := i + 1; j < len(level); j++ {
			b := level[j].items
			if !samePrefix(a, b) {
				break
			}
			items := make(types.Itemset, 0, len(a)+1)
			items = append(items, a...)
			items = append(items, b[len(b)-1])

			if !allSubsetsFrequent(items, known) {
				continue
			}
			cover := level[i].cover.And(level[j].cover)
			count := cover.Count()
			if frequent(count, n, minSupport) {
				next = append(next, candidate{items: items, cover: cover, count: count})
			}
		}
	}
	return next
}

// samePrefix reports whether a and b agree on all but their last member.
func samePrefix(a, b types.Itemset) bool {
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// allSubsetsFrequent checks the subsets formed by dropping one member. The two
// that drop one of the last two members are the join parents and are skipped.
func allSubsetsFrequent(items types.Itemset, known map[string]struct{}) bool {
	if len(items) <= 2 {
		return true
	}
	sub := make(types.Itemset, len(items)-1)
	for drop := 0; drop < len(items)-2; drop++ {
		copy(sub, items[:drop])
		copy(sub[drop:], items[drop+1:])
		if _, ok := known[sub.Key()]; !ok {
			return false
		}
	}
	return true
}

func frequent(count, n int, minSupport float64) bool {
	return float64(count)/float64(n) >= minSupport
}
