package output

import (
	"io"

	"github.com/goccy/go-json"

	"basket-rules/core/basket"
	"basket-rules/core/types"
)

// JSONFormatter renders indented JSON
type JSONFormatter struct {
	opts Options
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(opts Options) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

func (f *JSONFormatter) encode(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *JSONFormatter) round(rules []types.Rule) []types.Rule {
	out := make([]types.Rule, len(rules))
	for i, r := range rules {
		out[i] = roundRule(r, f.opts.Precision)
	}
	return out
}

// RenderRules writes the report with rounded metrics
func (f *JSONFormatter) RenderRules(w io.Writer, report *RulesReport) error {
	r := *report
	r.Rules = f.round(limitRules(report.Rules, f.opts.Limit))
	return f.encode(w, &r)
}

// RenderRecommendations writes the recommendation payload
func (f *JSONFormatter) RenderRecommendations(w io.Writer, report *RecommendationReport) error {
	r := *report
	r.Rules = f.round(report.Rules)
	return f.encode(w, &r)
}

// matrixJSON is the wire shape of a basket matrix
type matrixJSON struct {
	Baskets  []types.BasketID       `json:"baskets"`
	Services []types.ServiceCategory `json:"services"`
	Rows     [][]int                 `json:"rows"`
	Total    int                     `json:"total"`
}

// RenderMatrix writes baskets, services and a dense 0/1 row array
func (f *JSONFormatter) RenderMatrix(w io.Writer, m *basket.Matrix) error {
	services := m.Services()
	baskets := matrixRows(m, f.opts.Rows)

	payload := matrixJSON{
		Baskets:  baskets,
		Services: services,
		Rows:     make([][]int, len(baskets)),
		Total:    m.Len(),
	}
	for i, b := range baskets {
		row := make([]int, len(services))
		for j, s := range services {
			row[j] = int(m.Cell(b, s))
		}
		payload.Rows[i] = row
	}
	return f.encode(w, &payload)
}
