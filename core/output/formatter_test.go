package output

import (
	"bytes"
	enccsv "encoding/csv"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"basket-rules/core/basket"
	"basket-rules/core/engine"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
)

func sampleRules() []types.Rule {
	return []types.Rule{
		{
			Antecedents:       types.NewItemset("2_0"),
			Consequents:       types.NewItemset("22_0"),
			AntecedentSupport: 0.75,
			ConsequentSupport: 0.75,
			Support:           0.75,
			Confidence:        1,
			Lift:              1.3333333333,
			Leverage:          0.1875,
			Conviction:        math.Inf(1),
			ZhangsMetric:      1,
		},
		{
			Antecedents:       types.NewItemset("22_0"),
			Consequents:       types.NewItemset("2_0", "38_4"),
			AntecedentSupport: 0.75,
			ConsequentSupport: 0.25,
			Support:           0.25,
			Confidence:        0.3333333333,
			Lift:              1.3333333333,
			Leverage:          0.0625,
			Conviction:        1.125,
			ZhangsMetric:      1,
		},
	}
}

func sampleReport() *RulesReport {
	return &RulesReport{
		Metadata: &engine.Metadata{RunID: "run-1", MinSupport: 0.01, Metric: types.MetricLift, MinThreshold: 1},
		Stats:    &basket.Stats{Baskets: 4, Services: 3, Users: 3, Transactions: 8},
		Itemsets: 5,
		Rules:    sampleRules(),
		Total:    2,
	}
}

func sampleMatrix() *basket.Matrix {
	aug := time.Date(2017, 8, 1, 0, 0, 0, 0, time.UTC)
	oct := time.Date(2017, 10, 1, 0, 0, 0, 0, time.UTC)
	return basket.Build([]types.Transaction{
		{UserID: 7256, ServiceID: 9, CategoryID: 4, CreateDate: aug},
		{UserID: 7256, ServiceID: 46, CategoryID: 4, CreateDate: aug},
		{UserID: 7256, ServiceID: 9, CategoryID: 4, CreateDate: oct},
		{UserID: 7256, ServiceID: 38, CategoryID: 4, CreateDate: oct},
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"cli", FormatCLI, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{" csv ", FormatCSV, false},
		{"", FormatCLI, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if tt.wantErr && !errors.IsType(err, errors.TypeInput) {
				t.Errorf("expected input error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(DefaultOptions())
	all := r.All()
	if len(all) != 4 {
		t.Fatalf("All() returned %d formatters, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Format() >= all[i].Format() {
			t.Errorf("All() not ordered: %s before %s", all[i-1].Format(), all[i].Format())
		}
	}
	if _, ok := r.Get(FormatMarkdown); !ok {
		t.Error("markdown formatter missing")
	}
}

func TestCLIRules(t *testing.T) {
	var buf bytes.Buffer
	f := NewCLIFormatter(Options{Precision: 4, NoColor: true})
	if err := f.RenderRules(&buf, sampleReport()); err != nil {
		t.Fatalf("RenderRules() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Association Rules", "{2_0}", "{22_0}", "{2_0, 38_4}", "1.3333", "inf", "lift >= 1.0000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("NoColor output contains escape codes")
	}
}

func TestCLILimit(t *testing.T) {
	var buf bytes.Buffer
	f := NewCLIFormatter(Options{Precision: 2, Limit: 1, NoColor: true})
	if err := f.RenderRules(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "{2_0, 38_4}") {
		t.Error("limit 1 still printed the second rule")
	}
	if !strings.Contains(buf.String(), "showing 1 of 2 rules") {
		t.Errorf("missing truncation note:\n%s", buf.String())
	}
}

func TestJSONRules(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(DefaultOptions()).RenderRules(&buf, sampleReport()); err != nil {
		t.Fatalf("RenderRules() error = %v", err)
	}

	var decoded struct {
		Total int `json:"total"`
		Rules []struct {
			Antecedents []string `json:"antecedents"`
			Lift        float64  `json:"lift"`
			Conviction  *float64 `json:"conviction"`
		} `json:"rules"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Total != 2 || len(decoded.Rules) != 2 {
		t.Fatalf("decoded %+v", decoded)
	}
	if decoded.Rules[0].Lift != 1.3333 {
		t.Errorf("lift = %v, want 1.3333", decoded.Rules[0].Lift)
	}
	if decoded.Rules[0].Conviction != nil {
		t.Errorf("infinite conviction = %v, want null", *decoded.Rules[0].Conviction)
	}
	if decoded.Rules[1].Conviction == nil || *decoded.Rules[1].Conviction != 1.125 {
		t.Errorf("finite conviction lost: %v", decoded.Rules[1].Conviction)
	}
}

func TestCSVRules(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVFormatter(DefaultOptions()).RenderRules(&buf, sampleReport()); err != nil {
		t.Fatal(err)
	}
	records, err := enccsv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2", len(records))
	}
	if records[0][0] != "antecedents" || records[0][8] != "conviction" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][1] != "2_0,38_4" {
		t.Errorf("consequents cell = %q", records[2][1])
	}
	if records[1][8] != "inf" {
		t.Errorf("conviction cell = %q, want inf", records[1][8])
	}
}

func TestRecommendations(t *testing.T) {
	report := &RecommendationReport{Service: "2_0", Count: 3, Rules: sampleRules()[:1]}
	if got := report.Consequents(); len(got) != 1 || got[0].Key() != "22_0" {
		t.Errorf("Consequents() = %v", got)
	}

	for _, f := range NewRegistry(Options{Precision: 4, NoColor: true}).All() {
		t.Run(string(f.Format()), func(t *testing.T) {
			var buf bytes.Buffer
			if err := f.RenderRecommendations(&buf, report); err != nil {
				t.Fatalf("RenderRecommendations() error = %v", err)
			}
			if !strings.Contains(buf.String(), "22_0") {
				t.Errorf("output missing consequent:\n%s", buf.String())
			}
		})
	}

	var buf bytes.Buffer
	empty := &RecommendationReport{Service: "99_9", Count: 1}
	if err := NewCLIFormatter(Options{NoColor: true}).RenderRecommendations(&buf, empty); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "no rule has 99_9") {
		t.Errorf("unexpected empty output:\n%s", buf.String())
	}

	buf.Reset()
	if err := NewJSONFormatter(Options{Precision: 4}).RenderRecommendations(&buf, empty); err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if recs, ok := payload["recommendations"].([]any); !ok || len(recs) != 0 {
		t.Errorf("recommendations = %v, want []", payload["recommendations"])
	}
}

func TestMatrix(t *testing.T) {
	m := sampleMatrix()

	var buf bytes.Buffer
	if err := NewCSVFormatter(DefaultOptions()).RenderMatrix(&buf, m); err != nil {
		t.Fatal(err)
	}
	records, err := enccsv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"basket", "38_4", "46_4", "9_4"},
		{"2017-08_7256", "0", "1", "1"},
		{"2017-10_7256", "1", "0", "1"},
	}
	if len(records) != len(want) {
		t.Fatalf("got %d records, want %d", len(records), len(want))
	}
	for i := range want {
		if strings.Join(records[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("record %d = %v, want %v", i, records[i], want[i])
		}
	}

	buf.Reset()
	if err := NewJSONFormatter(Options{Rows: 1}).RenderMatrix(&buf, m); err != nil {
		t.Fatal(err)
	}
	var decoded matrixJSON
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Rows) != 1 || decoded.Total != 2 {
		t.Errorf("rows limit not applied: %+v", decoded)
	}

	buf.Reset()
	if err := NewMarkdownFormatter(DefaultOptions()).RenderMatrix(&buf, m); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "| 2017-08_7256 | 0 | 1 | 1 |") {
		t.Errorf("markdown matrix:\n%s", buf.String())
	}
}
