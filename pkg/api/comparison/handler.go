// Package comparison exposes the metrics pipeline over HTTP for the
// dashboard frontend. Handlers are thin: decode, run, encode.
package comparison

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"findash/pkg/core/health"
	"findash/pkg/core/metrics"
	"findash/pkg/core/pipeline"
	"findash/pkg/core/statement"
	"findash/pkg/core/utils"
	"findash/pkg/report"
)

// Handler serves comparison and per-company metric requests.
type Handler struct {
	orchestrator *pipeline.Orchestrator
}

// NewHandler wires the handler to a pipeline orchestrator.
func NewHandler(o *pipeline.Orchestrator) *Handler {
	return &Handler{orchestrator: o}
}

// ComparisonRequest selects the company set and period granularity.
type ComparisonRequest struct {
	Companies  []string `json:"companies"`
	PeriodType string   `json:"period_type"` // "annual" (default) or "quarterly"
}

// MetricsRequest asks for one company's metric series.
type MetricsRequest struct {
	Company    string `json:"company"`
	PeriodType string `json:"period_type"`
}

// MetricsResponse is the single-company payload.
type MetricsResponse struct {
	Company string           `json:"company"`
	Records []metrics.Record `json:"records"`
	Scores  []health.Score   `json:"scores"`
}

// HandleComparison runs the pipeline and returns the full result as JSON.
// POST /api/comparison
func (h *Handler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComparison(w, r)
	if !ok {
		return
	}
	pt, err := periodType(req.PeriodType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.orchestrator.Run(r.Context(), req.Companies, pt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleComparisonReport runs the pipeline and returns a markdown report,
// or rendered HTML with ?format=html.
// POST /api/comparison/report
func (h *Handler) HandleComparisonReport(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeComparison(w, r)
	if !ok {
		return
	}
	pt, err := periodType(req.PeriodType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.orchestrator.Run(r.Context(), req.Companies, pt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	md := report.RenderComparison(result.Table, result.Commentary)
	if r.URL.Query().Get("format") == "html" {
		html, err := utils.RenderMarkdownHTML(md)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, md)
}

// HandleCompanyMetrics computes metrics and health scores for one company.
// POST /api/metrics
func (h *Handler) HandleCompanyMetrics(w http.ResponseWriter, r *http.Request) {
	if !cors(w, r) {
		return
	}

	var req MetricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	company := strings.ToUpper(strings.TrimSpace(req.Company))
	if company == "" {
		http.Error(w, "company is required", http.StatusBadRequest)
		return
	}
	pt, err := periodType(req.PeriodType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.orchestrator.Run(r.Context(), []string{company}, pt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	res := result.PerCompany[company]

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MetricsResponse{
		Company: company,
		Records: res.Metrics,
		Scores:  res.Scores,
	})
}

func (h *Handler) decodeComparison(w http.ResponseWriter, r *http.Request) (ComparisonRequest, bool) {
	if !cors(w, r) {
		return ComparisonRequest{}, false
	}

	var req ComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return ComparisonRequest{}, false
	}
	if len(req.Companies) == 0 {
		http.Error(w, "companies is required", http.StatusBadRequest)
		return ComparisonRequest{}, false
	}
	for i, c := range req.Companies {
		req.Companies[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	return req, true
}

// cors writes the permissive headers the dashboard frontend needs and
// answers preflight. Returns false when the request is already handled.
func cors(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return false
	}
	return true
}

// periodType defaults empty input to Annual; anything else must parse, so a
// typo like "quartely" is rejected instead of silently served as annual data.
func periodType(s string) (statement.PeriodType, error) {
	if s == "" {
		return statement.Annual, nil
	}
	return statement.ParsePeriodType(s)
}
