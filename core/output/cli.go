package output

import (
	"fmt"
	"io"
	"strconv"

	"basket-rules/core/basket"
	"basket-rules/core/determinism"
	"basket-rules/core/ui"
)

// CLIFormatter renders aligned terminal tables
type CLIFormatter struct {
	opts Options
}

// NewCLIFormatter creates a CLI formatter
func NewCLIFormatter(opts Options) *CLIFormatter {
	return &CLIFormatter{opts: opts}
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// RenderRules writes the run summary and the rule table
func (f *CLIFormatter) RenderRules(w io.Writer, report *RulesReport) error {
	out := ui.NewWriter(w, f.opts.NoColor)

	if report.Stats != nil {
		summary := out.NewRunSummary()
		summary.Baskets = report.Stats.Baskets
		summary.Services = report.Stats.Services
		summary.Users = report.Stats.Users
		summary.Transactions = report.Stats.Transactions
		summary.Itemsets = report.Itemsets
		summary.Rules = report.Total
		if m := report.Metadata; m != nil {
			summary.Source = m.Source
			summary.MinSupport = determinism.FormatFixed(m.MinSupport, f.opts.Precision)
			summary.Filter = thresholdLabel(m, f.opts.Precision)
			summary.Duration = m.Duration.String()
		}
		summary.Render()
	}

	if len(report.Rules) == 0 {
		return nil
	}

	headers := append([]string{"antecedents", "consequents"}, metricColumns...)
	table := out.NewTable(headers...).AlignRight(2, 3, 4, 5, 6, 7, 8, 9)
	for _, r := range limitRules(report.Rules, f.opts.Limit) {
		cells := append([]string{r.Antecedents.String(), r.Consequents.String()}, metricCells(r, f.opts.Precision)...)
		table.AddRow(cells...)
	}
	table.Render()

	if shown := table.Len(); shown < report.Total {
		out.Println("")
		out.Info("showing %d of %d rules", shown, report.Total)
	}
	return nil
}

// RenderRecommendations writes one row per recommended consequent set
func (f *CLIFormatter) RenderRecommendations(w io.Writer, report *RecommendationReport) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	out.SubHeader(fmt.Sprintf("Recommendations for %s", report.Service))

	if len(report.Rules) == 0 {
		out.Warning("no rule has %s in its antecedents", report.Service)
		return nil
	}

	table := out.NewTable("#", "consequents", "lift", "confidence", "support", "antecedents").AlignRight(0, 2, 3, 4)
	for i, r := range report.Rules {
		table.AddRow(
			strconv.Itoa(i+1),
			r.Consequents.String(),
			determinism.FormatFixed(r.Lift, f.opts.Precision),
			determinism.FormatFixed(r.Confidence, f.opts.Precision),
			determinism.FormatFixed(r.Support, f.opts.Precision),
			r.Antecedents.String(),
		)
	}
	table.Render()
	return nil
}

// RenderMatrix writes one row per basket with a 0/1 cell per service
func (f *CLIFormatter) RenderMatrix(w io.Writer, m *basket.Matrix) error {
	out := ui.NewWriter(w, f.opts.NoColor)
	services := m.Services()

	headers := make([]string, 0, len(services)+1)
	headers = append(headers, "basket")
	for _, s := range services {
		headers = append(headers, string(s))
	}
	table := out.NewTable(headers...)

	rows := matrixRows(m, f.opts.Rows)
	for _, b := range rows {
		cells := make([]string, 0, len(services)+1)
		cells = append(cells, string(b))
		for _, s := range services {
			cells = append(cells, strconv.Itoa(int(m.Cell(b, s))))
		}
		table.AddRow(cells...)
	}
	table.Render()

	if len(rows) < m.Len() {
		out.Println("")
		out.Info("showing %d of %d baskets", len(rows), m.Len())
	}
	return nil
}
