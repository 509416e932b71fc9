package output

import (
	enccsv "encoding/csv"
	"io"
	"strconv"

	"basket-rules/core/basket"
	"basket-rules/core/determinism"
	"basket-rules/core/types"
)

// CSVFormatter renders comma separated values. Itemsets are written as
// their comma-joined key inside one quoted cell.
type CSVFormatter struct {
	opts Options
}

// NewCSVFormatter creates a CSV formatter
func NewCSVFormatter(opts Options) *CSVFormatter {
	return &CSVFormatter{opts: opts}
}

// Format returns FormatCSV
func (f *CSVFormatter) Format() Format {
	return FormatCSV
}

func writeAll(w io.Writer, records [][]string) error {
	cw := enccsv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

var csvRuleHeader = []string{
	"antecedents", "consequents",
	"antecedent_support", "consequent_support",
	"support", "confidence", "lift", "leverage", "conviction", "zhangs_metric",
}

func (f *CSVFormatter) ruleRecord(r types.Rule) []string {
	return append([]string{r.Antecedents.Key(), r.Consequents.Key()}, metricCells(r, f.opts.Precision)...)
}

// RenderRules writes one record per rule
func (f *CSVFormatter) RenderRules(w io.Writer, report *RulesReport) error {
	rules := limitRules(report.Rules, f.opts.Limit)
	records := make([][]string, 0, len(rules)+1)
	records = append(records, csvRuleHeader)
	for _, r := range rules {
		records = append(records, f.ruleRecord(r))
	}
	return writeAll(w, records)
}

// RenderRecommendations writes one record per recommendation
func (f *CSVFormatter) RenderRecommendations(w io.Writer, report *RecommendationReport) error {
	records := [][]string{{"rank", "service", "consequents", "lift", "confidence", "support"}}
	for i, r := range report.Rules {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			string(report.Service),
			r.Consequents.Key(),
			determinism.FormatFixed(r.Lift, f.opts.Precision),
			determinism.FormatFixed(r.Confidence, f.opts.Precision),
			determinism.FormatFixed(r.Support, f.opts.Precision),
		})
	}
	return writeAll(w, records)
}

// RenderMatrix writes the incidence matrix with a basket column
func (f *CSVFormatter) RenderMatrix(w io.Writer, m *basket.Matrix) error {
	services := m.Services()
	header := make([]string, 0, len(services)+1)
	header = append(header, "basket")
	for _, s := range services {
		header = append(header, string(s))
	}

	rows := matrixRows(m, f.opts.Rows)
	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for _, b := range rows {
		rec := make([]string, 0, len(services)+1)
		rec = append(rec, string(b))
		for _, s := range services {
			rec = append(rec, strconv.Itoa(int(m.Cell(b, s))))
		}
		records = append(records, rec)
	}
	return writeAll(w, records)
}
