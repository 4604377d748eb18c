package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/skincare-api/internal/api/shared"
	"github.com/phrazzld/skincare-api/internal/platform/logger"
	"github.com/phrazzld/skincare-api/internal/recommend"
)

// Recommender produces recommendations for a condition.
type Recommender interface {
	Recommend(ctx context.Context, condition string, allergies []string) recommend.Result
}

// RecommendHandler handles POST /recommend.
type RecommendHandler struct {
	recommender Recommender
	logger      *slog.Logger
}

// NewRecommendHandler creates a RecommendHandler.
func NewRecommendHandler(recommender Recommender, logger *slog.Logger) *RecommendHandler {
	return &RecommendHandler{
		recommender: recommender,
		logger:      logger.With("handler", "recommend"),
	}
}

// Recommend validates the body and returns the recommendation payload.
// Generation and parse failures are reported in the payload's error field
// with status 200.
func (h *RecommendHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var body recommendBody
	if err := shared.DecodeJSON(r, &body); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, MsgMissingFields, err)
		return
	}

	if err := shared.ValidateRequest(&body); err != nil {
		var reqErr *requestError
		if errors.As(err, &reqErr) {
			shared.RespondWithError(w, r, http.StatusBadRequest, reqErr.message)
			return
		}
		shared.RespondWithInternalError(w, r, err)
		return
	}
	req := body.request

	result := h.recommender.Recommend(r.Context(), req.Condition, req.Allergies)
	if result.Failed() {
		log.Warn("recommendation returned an error", "error", result.Error)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
