package config

import (
	"basket-rules/adapters/csv"
	"basket-rules/core/apriori"
	"basket-rules/core/engine"
	"basket-rules/core/rules"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
)

// EngineConfig translates the mining section into engine options.
func (c *Config) EngineConfig() (engine.Config, error) {
	metric, err := types.ParseMetric(c.Mining.Metric)
	if err != nil {
		return engine.Config{}, errors.Wrap(errors.TypeInput, "invalid mining metric", err)
	}
	return engine.Config{
		Mining: apriori.Options{
			MinSupport: c.Mining.MinSupport,
			MaxLen:     c.Mining.MaxLen,
		},
		Rules: rules.Options{
			Metric:       metric,
			MinThreshold: c.Mining.MinThreshold,
		},
	}, nil
}

// CSVOptions translates the input section into loader options.
func (c *Config) CSVOptions() csv.Options {
	opts := csv.DefaultOptions()
	opts.DateLayout = c.Input.DateLayout
	opts.SkipInvalid = c.Input.SkipInvalid
	if d := []rune(c.Input.Delimiter); len(d) == 1 {
		opts.Delimiter = d[0]
	}
	return opts
}
