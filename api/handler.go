// Package api - HTTP handlers for the rule service
// Handlers only parse queries and serialize results. Ranking lives in
// core/recommend.
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"basket-rules/core/recommend"
	"basket-rules/core/types"
	"basket-rules/internal/errors"
	"basket-rules/internal/logging"
)

// Handler serves queries against one rule set
type Handler struct {
	version      string
	ruleSet      *RuleSet
	recommender  *recommend.Recommender
	defaultCount int
}

// NewHandler creates a handler. A nil rule set serves no rules.
func NewHandler(version string, ruleSet *RuleSet, defaultCount int) *Handler {
	if ruleSet == nil {
		ruleSet = &RuleSet{}
	}
	if defaultCount < 1 {
		defaultCount = recommend.DefaultCount
	}
	return &Handler{
		version:      version,
		ruleSet:      ruleSet,
		recommender:  recommend.New(ruleSet.Rules),
		defaultCount: defaultCount,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &HealthResponse{
		Status:  "healthy",
		Version: h.version,
		Rules:   h.recommender.Len(),
		RuleSet: h.ruleSet.ID,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Version handles GET /version
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &VersionResponse{
		Version:    h.version,
		Engine:     "basket-rules",
		APIVersion: "v1",
	})
}

// Rules handles GET /rules?limit=N
func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", 0)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
		return
	}

	rules := h.recommender.Rules()
	total := len(rules)
	if limit > 0 && limit < total {
		rules = rules[:limit]
	}

	writeJSON(w, http.StatusOK, &RulesResponse{
		RuleSet: h.ruleSet,
		Total:   total,
		Count:   len(rules),
		Rules:   rules,
	})
}

// Recommend handles GET /recommend?service=S&count=N
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	service := strings.TrimSpace(r.URL.Query().Get("service"))
	if service == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SERVICE", "query parameter service is required")
		return
	}

	count, err := intParam(r, "count", h.defaultCount)
	if err != nil || count < 1 {
		writeError(w, http.StatusBadRequest, "INVALID_COUNT", "count must be a positive integer")
		return
	}

	matched, err := h.recommender.RecommendRules(types.ServiceCategory(service), count)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	recs := make([]Recommendation, len(matched))
	for i, rule := range matched {
		recs[i] = Recommendation{
			Consequents: rule.Consequents,
			Antecedents: rule.Antecedents,
			Lift:        rule.Lift,
			Confidence:  rule.Confidence,
			Support:     rule.Support,
		}
	}

	writeJSON(w, http.StatusOK, &RecommendResponse{
		Service:         types.ServiceCategory(service),
		Count:           count,
		Recommendations: recs,
	})
}

// NotFound handles unknown routes
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Warn("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, &ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// writeDomainError maps an error type to a status code.
func writeDomainError(w http.ResponseWriter, err error) {
	t := errors.TypeOf(err)
	status := http.StatusInternalServerError
	switch t {
	case errors.TypeInput, errors.TypeParsing:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	}
	msg := err.Error()
	var e *errors.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	writeError(w, status, string(t), msg)
}
