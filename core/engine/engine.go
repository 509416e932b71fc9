// Package engine runs the mining pipeline: load, basket matrix, frequent
// itemsets, rules. The CLI and the HTTP server are thin wrappers around it.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"basket-rules/core/apriori"
	"basket-rules/core/basket"
	"basket-rules/core/recommend"
	"basket-rules/core/rules"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// Source yields the transaction table.
type Source interface {
	// Name identifies the source in logs and metadata
	Name() string

	// Transactions returns the rows and a hex fingerprint of the raw input
	Transactions(ctx context.Context) ([]types.Transaction, string, error)
}

// Config configures the mining stages
type Config struct {
	Mining apriori.Options
	Rules  rules.Options
}

// DefaultConfig returns min support 0.01 and lift >= 1.
func DefaultConfig() Config {
	return Config{
		Mining: apriori.DefaultOptions(),
		Rules:  rules.DefaultOptions(),
	}
}

// Engine is the primary API for rule mining.
type Engine struct {
	config Config
}

// New creates an engine
func New(config Config) *Engine {
	return &Engine{config: config}
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Metadata describes one pipeline run
type Metadata struct {
	RunID        string        `json:"run_id"`
	Source       string        `json:"source,omitempty"`
	InputHash    string        `json:"input_hash,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
	MinSupport   float64       `json:"min_support"`
	MaxLen       int           `json:"max_len,omitempty"`
	Metric       types.Metric  `json:"metric"`
	MinThreshold float64       `json:"min_threshold"`
}

// Result holds everything a run produced.
type Result struct {
	Matrix   *basket.Matrix          `json:"-"`
	Stats    basket.Stats            `json:"stats"`
	Itemsets []types.FrequentItemset `json:"itemsets"`
	Rules    []types.Rule            `json:"rules"`
	Metadata Metadata                `json:"metadata"`
}

// Recommender returns a recommender over the mined rules.
func (r *Result) Recommender() *recommend.Recommender {
	return recommend.New(r.Rules)
}

// Run loads src and mines it.
func (e *Engine) Run(ctx context.Context, src Source) (*Result, error) {
	if src == nil {
		return nil, errors.Input("no transaction source")
	}
	start := time.Now()

	txs, hash, err := src.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	result, err := e.mine(ctx, txs, start)
	if err != nil {
		return nil, err
	}
	result.Metadata.Source = src.Name()
	result.Metadata.InputHash = hash
	return result, nil
}

// Mine runs the pipeline over transactions already in memory.
func (e *Engine) Mine(ctx context.Context, txs []types.Transaction) (*Result, error) {
	return e.mine(ctx, txs, time.Now())
}

func (e *Engine) mine(ctx context.Context, txs []types.Transaction, start time.Time) (*Result, error) {
	if err := e.config.Mining.Validate(); err != nil {
		return nil, err
	}
	if err := e.config.Rules.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := logging.With(zap.String("run_id", runID))
	log.Info("Starting rule mining", zap.Int("transactions", len(txs)))

	matrix := basket.Build(txs)
	stats := matrix.Stats()
	log.Info("Built baskets",
		zap.Int("baskets", stats.Baskets),
		zap.Int("services", stats.Services),
		zap.Int("users", stats.Users))

	itemsets, err := apriori.FrequentItemsets(ctx, matrix, e.config.Mining)
	if err != nil {
		return nil, err
	}

	ruleset, err := rules.Generate(itemsets, e.config.Rules)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Matrix:   matrix,
		Stats:    stats,
		Itemsets: itemsets,
		Rules:    ruleset,
		Metadata: Metadata{
			RunID:        runID,
			StartedAt:    start.UTC(),
			Duration:     time.Since(start),
			MinSupport:   e.config.Mining.MinSupport,
			MaxLen:       e.config.Mining.MaxLen,
			Metric:       e.config.Rules.Metric,
			MinThreshold: e.config.Rules.MinThreshold,
		},
	}

	log.Info("Rule mining complete",
		zap.Int("itemsets", len(itemsets)),
		zap.Int("rules", len(ruleset)),
		zap.Duration("duration", result.Metadata.Duration))
	return result, nil
}
