package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/factorlab/internal/classifier"
	"github.com/wonny/factorlab/internal/contracts"
	"github.com/wonny/factorlab/pkg/logger"
)

// ResultStore reads persisted evaluation results.
type ResultStore interface {
	LatestRanking(ctx context.Context) ([]contracts.RankedFactor, error)
	LatestEvaluation(ctx context.Context, factorName string) (contracts.FactorEvaluation, error)
	LastBatchTime(ctx context.Context) (time.Time, error)
}

// FactorHandler serves factor evaluation results.
type FactorHandler struct {
	results    ResultStore
	provider   contracts.DataProvider
	classifier *classifier.Classifier
	logger     *logger.Logger
}

// NewFactorHandler creates a factor handler.
func NewFactorHandler(results ResultStore, provider contracts.DataProvider,
	cls *classifier.Classifier, log *logger.Logger) *FactorHandler {
	return &FactorHandler{
		results:    results,
		provider:   provider,
		classifier: cls,
		logger:     log,
	}
}

// ListFactors returns every factor name known to the data layer.
// GET /api/factors
func (h *FactorHandler) ListFactors(w http.ResponseWriter, r *http.Request) {
	names, err := h.provider.ListFactors(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list factors")
		respondError(w, http.StatusInternalServerError, "Failed to list factors")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":   len(names),
			"factors": names,
		},
	})
}

// GetRanking returns the ranking table of the most recent batch.
// GET /api/ranking?limit=N
func (h *FactorHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.results.LatestRanking(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to load ranking")
		respondError(w, http.StatusInternalServerError, "Failed to load ranking")
		return
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit < len(ranking) {
			ranking = ranking[:limit]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":   len(ranking),
			"ranking": ranking,
		},
	})
}

// GetFactor returns the most recent full evaluation of one factor.
// GET /api/factors/{name}
func (h *FactorHandler) GetFactor(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	evaluation, err := h.results.LatestEvaluation(r.Context(), name)
	if err != nil {
		if errors.Is(err, contracts.ErrFactorNotFound) {
			respondError(w, http.StatusNotFound, "Factor not evaluated: "+name)
			return
		}
		h.logger.WithError(err).WithField("factor", name).Error("Failed to load evaluation")
		respondError(w, http.StatusInternalServerError, "Failed to load evaluation")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    evaluation,
	})
}

// ClassifyFactor returns the category and adaptive horizons of a
// factor name. Works for names that have never been evaluated.
// GET /api/factors/{name}/classification
func (h *FactorHandler) ClassifyFactor(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	validation := h.classifier.Validate(name)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    validation,
	})
}
