package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/service/review"
)

type reviewService interface {
	Review(ctx context.Context, key string, remembered bool) (*domain.WordRecord, error)
	DueWords(ctx context.Context, now time.Time) ([]domain.WordRecord, error)
	NextDue(ctx context.Context, now time.Time) (*time.Time, error)
	Stats(ctx context.Context, now time.Time) (review.Stats, error)
}

// ReviewHandler serves the spaced-repetition endpoints.
type ReviewHandler struct {
	review reviewService
	now    func() time.Time
	log    *slog.Logger
}

// NewReviewHandler creates a ReviewHandler. nowFn may be nil; time.Now is
// used then.
func NewReviewHandler(review reviewService, nowFn func() time.Time, logger *slog.Logger) *ReviewHandler {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &ReviewHandler{
		review: review,
		now:    nowFn,
		log:    logger.With("handler", "review"),
	}
}

type reviewRequest struct {
	Remembered *bool `json:"remembered"`
}

// Review handles POST /api/words/{key}/review.
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Remembered == nil {
		writeError(w, http.StatusBadRequest, "remembered is required")
		return
	}

	rec, err := h.review.Review(r.Context(), r.PathValue("key"), *req.Remembered)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Due handles GET /api/review/due.
func (h *ReviewHandler) Due(w http.ResponseWriter, r *http.Request) {
	due, err := h.review.DueWords(r.Context(), h.now().UTC())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, due)
}

type nextDueResponse struct {
	NextReviewAt *time.Time `json:"nextReviewAt"`
}

// Next handles GET /api/review/next.
func (h *ReviewHandler) Next(w http.ResponseWriter, r *http.Request) {
	next, err := h.review.NextDue(r.Context(), h.now().UTC())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, nextDueResponse{NextReviewAt: next})
}

// Stats handles GET /api/review/stats.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.review.Stats(r.Context(), h.now().UTC())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
