package output

import (
	"fmt"
	"io"
	"strings"

	"basket-rules/core/basket"
	"basket-rules/core/determinism"
)

// MarkdownFormatter renders GitHub-flavored markdown tables
type MarkdownFormatter struct {
	opts Options
}

// NewMarkdownFormatter creates a markdown formatter
func NewMarkdownFormatter(opts Options) *MarkdownFormatter {
	return &MarkdownFormatter{opts: opts}
}

// Format returns FormatMarkdown
func (f *MarkdownFormatter) Format() Format {
	return FormatMarkdown
}

type mdWriter struct {
	w   io.Writer
	err error
}

func (m *mdWriter) printf(format string, args ...interface{}) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintf(m.w, format, args...)
}

func (m *mdWriter) row(cells ...string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	m.printf("| %s |\n", strings.Join(escaped, " | "))
}

func (m *mdWriter) header(cells ...string) {
	m.row(cells...)
	dashes := make([]string, len(cells))
	for i := range dashes {
		dashes[i] = "---"
	}
	m.printf("|%s|\n", strings.Join(dashes, "|"))
}

// RenderRules writes a summary list and the rule table
func (f *MarkdownFormatter) RenderRules(w io.Writer, report *RulesReport) error {
	md := &mdWriter{w: w}
	md.printf("## Association Rules\n\n")

	if s := report.Stats; s != nil {
		md.printf("- **Baskets:** %d\n", s.Baskets)
		md.printf("- **Services:** %d\n", s.Services)
		md.printf("- **Frequent itemsets:** %d\n", report.Itemsets)
	}
	md.printf("- **Rules:** %d\n", report.Total)
	if m := report.Metadata; m != nil {
		md.printf("- **Min support:** %s\n", determinism.FormatFixed(m.MinSupport, f.opts.Precision))
		md.printf("- **Filter:** `%s`\n", thresholdLabel(m, f.opts.Precision))
		md.printf("- **Run:** `%s`\n", m.RunID)
	}
	md.printf("\n")

	rules := limitRules(report.Rules, f.opts.Limit)
	if len(rules) == 0 {
		md.printf("_No rules._\n")
		return md.err
	}

	md.header(append([]string{"antecedents", "consequents"}, metricColumns...)...)
	for _, r := range rules {
		md.row(append([]string{r.Antecedents.String(), r.Consequents.String()}, metricCells(r, f.opts.Precision)...)...)
	}
	if len(rules) < report.Total {
		md.printf("\n_Showing %d of %d rules._\n", len(rules), report.Total)
	}
	return md.err
}

// RenderRecommendations writes a ranked table
func (f *MarkdownFormatter) RenderRecommendations(w io.Writer, report *RecommendationReport) error {
	md := &mdWriter{w: w}
	md.printf("## Recommendations for `%s`\n\n", report.Service)

	if len(report.Rules) == 0 {
		md.printf("_No rule has `%s` in its antecedents._\n", report.Service)
		return md.err
	}

	md.header("#", "consequents", "lift", "confidence", "support")
	for i, r := range report.Rules {
		md.row(
			fmt.Sprintf("%d", i+1),
			r.Consequents.String(),
			determinism.FormatFixed(r.Lift, f.opts.Precision),
			determinism.FormatFixed(r.Confidence, f.opts.Precision),
			determinism.FormatFixed(r.Support, f.opts.Precision),
		)
	}
	return md.err
}

// RenderMatrix writes the incidence matrix as a table
func (f *MarkdownFormatter) RenderMatrix(w io.Writer, m *basket.Matrix) error {
	md := &mdWriter{w: w}
	services := m.Services()

	headers := []string{"basket"}
	for _, s := range services {
		headers = append(headers, string(s))
	}
	md.header(headers...)

	rows := matrixRows(m, f.opts.Rows)
	for _, b := range rows {
		cells := []string{string(b)}
		for _, s := range services {
			cells = append(cells, fmt.Sprintf("%d", m.Cell(b, s)))
		}
		md.row(cells...)
	}
	if len(rows) < m.Len() {
		md.printf("\n_Showing %d of %d baskets._\n", len(rows), m.Len())
	}
	return md.err
}
