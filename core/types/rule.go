package types

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// Metric names a rule interestingness measure.
type Metric string

const (
	MetricSupport      Metric = "support"
	MetricConfidence   Metric = "confidence"
	MetricLift         Metric = "lift"
	MetricLeverage     Metric = "leverage"
	MetricConviction   Metric = "conviction"
	MetricZhangsMetric Metric = "zhangs_metric"
)

// Metrics lists every supported metric in display order.
var Metrics = []Metric{
	MetricSupport,
	MetricConfidence,
	MetricLift,
	MetricLeverage,
	MetricConviction,
	MetricZhangsMetric,
}

// String returns the string representation
func (m Metric) String() string {
	return string(m)
}

// IsValid checks if the metric is a known metric
func (m Metric) IsValid() bool {
	for _, known := range Metrics {
		if m == known {
			return true
		}
	}
	return false
}

// ParseMetric parses a metric name case-insensitively.
func ParseMetric(name string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(name)))
	if !m.IsValid() {
		return "", fmt.Errorf("unknown metric %q", name)
	}
	return m, nil
}

// Rule is an association rule Antecedents => Consequents.
// The two sides are disjoint and non-empty.
type Rule struct {
	Antecedents Itemset `json:"antecedents"`
	Consequents Itemset `json:"consequents"`

	AntecedentSupport float64 `json:"antecedent_support"`
	ConsequentSupport float64 `json:"consequent_support"`
	Support           float64 `json:"support"`
	Confidence        float64 `json:"confidence"`
	Lift              float64 `json:"lift"`
	Leverage          float64 `json:"leverage"`

	// Conviction is +Inf when Confidence is 1
	Conviction   float64 `json:"conviction"`
	ZhangsMetric float64 `json:"zhangs_metric"`
}

// Value returns the rule's value for metric m.
func (r Rule) Value(m Metric) float64 {
	switch m {
	case MetricSupport:
		return r.Support
	case MetricConfidence:
		return r.Confidence
	case MetricLift:
		return r.Lift
	case MetricLeverage:
		return r.Leverage
	case MetricConviction:
		return r.Conviction
	case MetricZhangsMetric:
		return r.ZhangsMetric
	default:
		return math.NaN()
	}
}

// String renders the rule as {a} => {b}.
func (r Rule) String() string {
	return r.Antecedents.String() + " => " + r.Consequents.String()
}

// MarshalJSON encodes an infinite conviction as null.
func (r Rule) MarshalJSON() ([]byte, error) {
	type plain Rule
	var conviction *float64
	if !math.IsInf(r.Conviction, 0) && !math.IsNaN(r.Conviction) {
		c := r.Conviction
		conviction = &c
	}
	return json.Marshal(struct {
		plain
		Conviction *float64 `json:"conviction"`
	}{plain: plain(r), Conviction: conviction})
}

// UnmarshalJSON decodes a null conviction as +Inf.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	var aux struct {
		plain
		Conviction *float64 `json:"conviction"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Rule(aux.plain)
	if aux.Conviction == nil {
		r.Conviction = math.Inf(1)
	} else {
		r.Conviction = *aux.Conviction
	}
	return nil
}
