// Package api exposes the journal over HTTP. Handlers are a thin layer:
// decode, call the service, encode; all trade semantics live below.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"optionsjournal/internal/app"
	"optionsjournal/internal/domain"
	"optionsjournal/internal/filters"
	"optionsjournal/internal/pnl"
	"optionsjournal/internal/ports"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	service   *app.JournalService
	logger    ports.Logger
	uploadDir string
}

// NewHandler creates a new Handler.
func NewHandler(service *app.JournalService, logger ports.Logger, uploadDir string) *Handler {
	return &Handler{service: service, logger: logger, uploadDir: uploadDir}
}

// GetAllTrades handles GET /trades.
func (h *Handler) GetAllTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.service.Trades(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, trades)
}

// CreateTrade handles POST /trades.
func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	var trade domain.Trade
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.service.CreateTrade(r.Context(), &trade)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateTrade handles PUT /trades/{id}.
func (h *Handler) UpdateTrade(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var patch domain.TradePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	updated, err := h.service.UpdateTrade(r.Context(), id, &patch)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if updated == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Trade not found"})
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteTrade handles DELETE /trades/{id}.
func (h *Handler) DeleteTrade(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, err := h.service.DeleteTrade(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if deleted == nil {
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Trade not found"})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Trade deleted", "id": deleted.ID})
}

// RecordHigh handles POST /trades/{id}/highs.
func (h *Handler) RecordHigh(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req struct {
		Price      *float64   `json:"price"`
		ObservedAt *time.Time `json:"observedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Price == nil || req.ObservedAt == nil {
		http.Error(w, "missing or invalid observedAt or price", http.StatusBadRequest)
		return
	}
	high, err := h.service.RecordHigh(r.Context(), id, *req.Price, *req.ObservedAt)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, high)
}

// FilteredTrades handles POST /trades/filtered.
func (h *Handler) FilteredTrades(w http.ResponseWriter, r *http.Request) {
	var q filters.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	trades, available, err := h.service.FilteredTrades(r.Context(), q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"trades":           trades,
		"availableFilters": available,
	})
}

// Summary handles POST /trades/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var opts pnl.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result, err := h.service.Summary(r.Context(), opts)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrInvalidRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ports.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": "Trade not found"})
	default:
		h.logger.Error(r.Context(), err, "request failed", map[string]interface{}{"path": r.URL.Path})
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
