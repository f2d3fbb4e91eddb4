package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wordfall/wordfall/internal/domain"
)

type lookupService interface {
	Resolve(ctx context.Context, text string) domain.LookupResult
}

// LookupHandler serves dictionary lookups.
type LookupHandler struct {
	lookup lookupService
	log    *slog.Logger
}

// NewLookupHandler creates a LookupHandler.
func NewLookupHandler(lookup lookupService, logger *slog.Logger) *LookupHandler {
	return &LookupHandler{
		lookup: lookup,
		log:    logger.With("handler", "lookup"),
	}
}

type lookupRequest struct {
	Text string `json:"text"`
}

// Resolve handles POST /api/lookup. A fully exhausted waterfall is not an
// HTTP error: the result simply carries no record.
func (h *LookupHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	res := h.lookup.Resolve(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, res)
}
