package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aakulov/divcast/internal/contracts"
	"github.com/aakulov/divcast/internal/forecast"
	"github.com/aakulov/divcast/internal/pipeline"
	"github.com/aakulov/divcast/pkg/database"
	"github.com/aakulov/divcast/pkg/logger"
)

// ForecastHandler handles forecast-related API endpoints.
type ForecastHandler struct {
	repo   *forecast.Repository
	runner *pipeline.Runner
	db     *database.DB
	logger *logger.Logger
}

// NewForecastHandler creates a new forecast handler.
func NewForecastHandler(repo *forecast.Repository, runner *pipeline.Runner, db *database.DB, log *logger.Logger) *ForecastHandler {
	return &ForecastHandler{
		repo:   repo,
		runner: runner,
		db:     db,
		logger: log,
	}
}

// Health returns server and database health status.
// GET /health
func (h *ForecastHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, err := h.db.HealthCheck(r.Context())

	code := http.StatusOK
	label := "ok"
	if err != nil || !status.Healthy {
		code = http.StatusServiceUnavailable
		label = "degraded"
	}

	respondJSON(w, code, map[string]interface{}{
		"status":   label,
		"service":  "divcast-api",
		"database": status,
	})
}

// ListTickers returns all tickers with stored records.
// GET /api/tickers
func (h *ForecastHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.repo.ListTickers(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list tickers")
		respondError(w, http.StatusInternalServerError, "Failed to list tickers")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tickers": tickers,
		"count":   len(tickers),
	})
}

// GetForecasts returns stored records for one ticker. The optional
// ?source= filter accepts actual, site or derived.
// GET /api/forecasts/{ticker}
func (h *ForecastHandler) GetForecasts(w http.ResponseWriter, r *http.Request) {
	ticker := mux.Vars(r)["ticker"]

	records, err := h.repo.GetByTicker(r.Context(), ticker)
	if err != nil {
		h.logger.WithError(err).WithField("ticker", ticker).Error("Failed to get forecasts")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve forecasts")
		return
	}

	if filter := r.URL.Query().Get("source"); filter != "" {
		kind, ok := sourceFilter(filter)
		if !ok {
			respondError(w, http.StatusBadRequest, "Invalid source filter (valid: actual, site, derived)")
			return
		}
		filtered := records[:0]
		for _, rec := range records {
			if rec.Source == kind {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		respondError(w, http.StatusNotFound, "No records for ticker")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticker":  ticker,
		"records": records,
		"count":   len(records),
	})
}

// RunResponse represents a pipeline run response.
type RunResponse struct {
	Status    string `json:"status"`
	Stocks    int    `json:"stocks"`
	Records   int    `json:"records"`
	Forecasts int    `json:"forecasts"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Duration  string `json:"duration"`
}

// Run triggers a full pipeline run synchronously.
// POST /api/run
func (h *ForecastHandler) Run(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Pipeline run triggered via API")

	res, err := h.runner.Run(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Pipeline run failed")
		respondError(w, http.StatusInternalServerError, "Pipeline run failed")
		return
	}

	respondJSON(w, http.StatusOK, RunResponse{
		Status:    "success",
		Stocks:    res.Stocks,
		Records:   res.Records,
		Forecasts: res.Forecasts,
		Skipped:   res.Skipped,
		Failed:    res.Failed,
		Duration:  res.Duration.String(),
	})
}

func sourceFilter(s string) (contracts.SourceKind, bool) {
	switch s {
	case "actual":
		return contracts.SourceActual, true
	case "site":
		return contracts.SourceSiteForecast, true
	case "derived":
		return contracts.SourceDerivedForecast, true
	default:
		return 0, false
	}
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
