// Package output renders mined rules, recommendations and basket matrices.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"strings"

	"basket-rules/core/basket"
	"basket-rules/core/determinism"
	"basket-rules/core/engine"
	"basket-rules/core/recommend"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"

	// FormatCSV is comma separated values
	FormatCSV Format = "csv"
)

// ParseFormat converts a format name, accepting "md" for markdown.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCLI, FormatJSON, FormatMarkdown, FormatCSV:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatCLI, nil
	default:
		return "", errors.Newf(errors.TypeInput, "unknown output format %q", name)
	}
}

// DefaultPrecision is the number of decimals printed for metrics.
const DefaultPrecision = 4

// Options controls rendering
type Options struct {
	// Precision is the number of decimals for metrics
	Precision int32

	// Limit caps the number of rules printed, 0 for all
	Limit int

	// Rows caps the number of matrix rows printed, 0 for all
	Rows int

	// NoColor disables terminal colors
	NoColor bool
}

// DefaultOptions returns precision 4 and no limits.
func DefaultOptions() Options {
	return Options{Precision: DefaultPrecision}
}

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// RenderRules writes a rule table
	RenderRules(w io.Writer, report *RulesReport) error

	// RenderRecommendations writes a recommendation list
	RenderRecommendations(w io.Writer, report *RecommendationReport) error

	// RenderMatrix writes the basket incidence matrix
	RenderMatrix(w io.Writer, m *basket.Matrix) error
}

// RulesReport is the rule table payload
type RulesReport struct {
	// Metadata describes the run, when rules came from one
	Metadata *engine.Metadata `json:"metadata,omitempty"`

	// Stats summarizes the basket matrix
	Stats *basket.Stats `json:"stats,omitempty"`

	// Itemsets is the number of frequent itemsets
	Itemsets int `json:"itemsets"`

	// Rules are in display order
	Rules []types.Rule `json:"rules"`

	// Total is the rule count before any limit
	Total int `json:"total"`
}

// NewRulesReport builds a report from a run, rules sorted by lift.
func NewRulesReport(result *engine.Result) *RulesReport {
	stats := result.Stats
	meta := result.Metadata
	ruleset := recommend.New(result.Rules).Rules()
	return &RulesReport{
		Metadata: &meta,
		Stats:    &stats,
		Itemsets: len(result.Itemsets),
		Rules:    ruleset,
		Total:    len(ruleset),
	}
}

// RecommendationReport is the recommendation payload
type RecommendationReport struct {
	// Service is the query service
	Service types.ServiceCategory `json:"service"`

	// Count is the number of results requested
	Count int `json:"count"`

	// Rules are the matched rules, best first
	Rules []types.Rule `json:"recommendations"`
}

// Consequents returns the recommended consequent sets in order.
func (r *RecommendationReport) Consequents() []types.Itemset {
	out := make([]types.Itemset, len(r.Rules))
	for i, rule := range r.Rules {
		out[i] = rule.Consequents
	}
	return out
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry creates a registry holding the built-in formatters
func NewRegistry(opts Options) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	r.Register(NewCLIFormatter(opts))
	r.Register(NewJSONFormatter(opts))
	r.Register(NewMarkdownFormatter(opts))
	r.Register(NewCSVFormatter(opts))
	return r
}

// Register adds a formatter, replacing any for the same format
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for format
func (r *Registry) Get(format Format) (Formatter, bool) {
	f, ok := r.formatters[format]
	return f, ok
}

// All returns the registered formatters ordered by format name
func (r *Registry) All() []Formatter {
	out := make([]Formatter, 0, len(r.formatters))
	for _, k := range determinism.SortedKeys(r.formatters) {
		out = append(out, r.formatters[k])
	}
	return out
}

// New returns the built-in formatter for a format name.
func New(name string, opts Options) (Formatter, error) {
	format, err := ParseFormat(name)
	if err != nil {
		return nil, err
	}
	f, _ := NewRegistry(opts).Get(format)
	return f, nil
}

// limitRules applies opts.Limit.
func limitRules(rules []types.Rule, limit int) []types.Rule {
	if limit > 0 && len(rules) > limit {
		return rules[:limit]
	}
	return rules
}

// matrixRows returns the basket keys to print under opts.Rows.
func matrixRows(m *basket.Matrix, rows int) []types.BasketID {
	baskets := m.Baskets()
	if rows > 0 && len(baskets) > rows {
		return baskets[:rows]
	}
	return baskets
}

// metricColumns are the rule columns after the itemsets.
var metricColumns = []string{
	"antecedent support", "consequent support",
	"support", "confidence", "lift", "leverage", "conviction", "zhangs metric",
}

func metricCells(r types.Rule, places int32) []string {
	return []string{
		determinism.FormatFixed(r.AntecedentSupport, places),
		determinism.FormatFixed(r.ConsequentSupport, places),
		determinism.FormatFixed(r.Support, places),
		determinism.FormatFixed(r.Confidence, places),
		determinism.FormatFixed(r.Lift, places),
		determinism.FormatFixed(r.Leverage, places),
		determinism.FormatFixed(r.Conviction, places),
		determinism.FormatFixed(r.ZhangsMetric, places),
	}
}

// roundRule rounds every metric to places decimals.
func roundRule(r types.Rule, places int32) types.Rule {
	r.AntecedentSupport = determinism.Round(r.AntecedentSupport, places)
	r.ConsequentSupport = determinism.Round(r.ConsequentSupport, places)
	r.Support = determinism.Round(r.Support, places)
	r.Confidence = determinism.Round(r.Confidence, places)
	r.Lift = determinism.Round(r.Lift, places)
	r.Leverage = determinism.Round(r.Leverage, places)
	r.Conviction = determinism.Round(r.Conviction, places)
	r.ZhangsMetric = determinism.Round(r.ZhangsMetric, places)
	return r
}

func thresholdLabel(meta *engine.Metadata, places int32) string {
	if meta == nil {
		return ""
	}
	return fmt.Sprintf("%s >= %s", meta.Metric, determinism.FormatFixed(meta.MinThreshold, places))
}
