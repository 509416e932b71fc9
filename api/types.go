// Package api - API types for the rule service
// These types define the contract for the read-only HTTP endpoints.
package api

import (
	"time"

	"basket-rules/core/types"
)

// RuleSet is the immutable rule set a server answers from
type RuleSet struct {
	// ID identifies the snapshot or run the rules came from
	ID string `json:"id,omitempty"`

	// Source is the input the rules were mined from
	Source string `json:"source,omitempty"`

	// CreatedAt is when the rules were mined
	CreatedAt time.Time `json:"created_at"`

	// Rules in any order; the server sorts by lift
	Rules []types.Rule `json:"-"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Rules   int    `json:"rules"`
	RuleSet string `json:"rule_set,omitempty"`
	Time    string `json:"time"`
}

// VersionResponse is returned by GET /version
type VersionResponse struct {
	Version    string `json:"version"`
	Engine     string `json:"engine"`
	APIVersion string `json:"api_version"`
}

// RulesResponse is returned by GET /rules
type RulesResponse struct {
	RuleSet *RuleSet     `json:"rule_set"`
	Total   int          `json:"total"`
	Count   int          `json:"count"`
	Rules   []types.Rule `json:"rules"`
}

// RecommendResponse is returned by GET /recommend
type RecommendResponse struct {
	Service         types.ServiceCategory `json:"service"`
	Count           int                   `json:"count"`
	Recommendations []Recommendation      `json:"recommendations"`
}

// Recommendation is one recommended consequent set
type Recommendation struct {
	Consequents types.Itemset `json:"consequents"`
	Antecedents types.Itemset `json:"antecedents"`
	Lift        float64       `json:"lift"`
	Confidence  float64       `json:"confidence"`
	Support     float64       `json:"support"`
}

// ErrorResponse wraps an ErrorBody
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
