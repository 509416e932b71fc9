package types

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestTransactionKeys(t *testing.T) {
	tests := []struct {
		name        string
		tx          Transaction
		wantService ServiceCategory
		wantBasket  BasketID
	}{
		{
			name:        "august purchase",
			tx:          Transaction{UserID: 7256, ServiceID: 9, CategoryID: 4, CreateDate: time.Date(2017, 8, 6, 16, 11, 0, 0, time.UTC)},
			wantService: "9_4",
			wantBasket:  "2017-08_7256",
		},
		{
			name:        "zero category",
			tx:          Transaction{UserID: 25446, ServiceID: 2, CategoryID: 0, CreateDate: time.Date(2018, 1, 31, 23, 59, 59, 0, time.UTC)},
			wantService: "2_0",
			wantBasket:  "2018-01_25446",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tx.ServiceCategory(); got != tt.wantService {
				t.Errorf("ServiceCategory() = %s, want %s", got, tt.wantService)
			}
			if got := tt.tx.Basket(); got != tt.wantBasket {
				t.Errorf("Basket() = %s, want %s", got, tt.wantBasket)
			}
		})
	}
}

func TestNewItemsetSortsAndDeduplicates(t *testing.T) {
	s := NewItemset("9_4", "38_4", "9_4", "2_0")

	if got := s.Key(); got != "2_0,38_4,9_4" {
		t.Fatalf("Key() = %q, want %q", got, "2_0,38_4,9_4")
	}
	if !s.Contains("38_4") || s.Contains("46_4") {
		t.Error("Contains() gave wrong membership")
	}
	if !ParseItemset(s.Key()).Equal(s) {
		t.Error("ParseItemset(Key()) did not round trip")
	}
	if got := s.String(); got != "{2_0, 38_4, 9_4}" {
		t.Errorf("String() = %q", got)
	}
}

func TestItemsetSetOperations(t *testing.T) {
	a := NewItemset("1_1", "2_2", "3_3")
	b := NewItemset("2_2", "4_4")

	if got := a.Minus(b).Key(); got != "1_1,3_3" {
		t.Errorf("Minus() = %q", got)
	}
	if got := a.Union(b).Key(); got != "1_1,2_2,3_3,4_4" {
		t.Errorf("Union() = %q", got)
	}
	if got := ParseItemset("").Len(); got != 0 {
		t.Errorf("ParseItemset(\"\").Len() = %d, want 0", got)
	}
}

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics {
		got, err := ParseMetric(strings.ToUpper(string(m)))
		if err != nil || got != m {
			t.Errorf("ParseMetric(%q) = %q, %v", m, got, err)
		}
	}
	if _, err := ParseMetric("support_count"); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestRuleJSONInfiniteConviction(t *testing.T) {
	r := Rule{
		Antecedents: NewItemset("2_0"),
		Consequents: NewItemset("22_0"),
		Support:     0.02,
		Confidence:  1,
		Lift:        3.5,
		Conviction:  math.Inf(1),
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"conviction":null`) {
		t.Errorf("expected null conviction, got %s", data)
	}

	var back Rule
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !math.IsInf(back.Conviction, 1) {
		t.Errorf("Conviction = %v, want +Inf", back.Conviction)
	}
	if back.Lift != 3.5 || !back.Consequents.Equal(r.Consequents) {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if back.Value(MetricLift) != 3.5 {
		t.Errorf("Value(lift) = %v", back.Value(MetricLift))
	}
}

func TestRuleSliceJSONRoundTrip(t *testing.T) {
	in := []Rule{
		{Antecedents: NewItemset("2_0"), Consequents: NewItemset("22_0"), Support: 0.5, Confidence: 0.75, Lift: 1.5, Conviction: 2},
		{Antecedents: NewItemset("22_0", "38_4"), Consequents: NewItemset("2_0"), Support: 0.1, Confidence: 1, Lift: 1.5, Conviction: math.Inf(1)},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out []Rule
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rules, want 2", len(out))
	}
	if out[0].Conviction != 2 || out[0].Confidence != 0.75 || !out[0].Antecedents.Equal(in[0].Antecedents) {
		t.Errorf("first rule = %+v", out[0])
	}
	if !math.IsInf(out[1].Conviction, 1) || !out[1].Antecedents.Equal(in[1].Antecedents) {
		t.Errorf("second rule = %+v", out[1])
	}
}
