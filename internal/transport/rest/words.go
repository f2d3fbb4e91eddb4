package rest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/service/vocab"
	"github.com/wordfall/wordfall/internal/store"
)

// maxImportBytes bounds import payloads.
const maxImportBytes = 32 << 20

type vocabService interface {
	SaveWord(ctx context.Context, rec domain.WordRecord) (*domain.WordRecord, error)
	Get(ctx context.Context, key string) (*domain.WordRecord, error)
	List(ctx context.Context) ([]domain.WordRecord, error)
	UpdateWord(ctx context.Context, key string, patch domain.WordPatch) (*domain.WordRecord, error)
	DeleteWord(ctx context.Context, key string) error
	FillExtras(ctx context.Context, key string, kind domain.ExtrasKind) (json.RawMessage, error)
	Export(ctx context.Context) (store.Snapshot, error)
	Import(ctx context.Context, data []byte) (vocab.ImportResult, error)
	Pronunciation(ctx context.Context, key string) (vocab.Pronunciation, error)
}

// WordsHandler serves the word-list endpoints.
type WordsHandler struct {
	vocab vocabService
	log   *slog.Logger
}

// NewWordsHandler creates a WordsHandler.
func NewWordsHandler(vocab vocabService, logger *slog.Logger) *WordsHandler {
	return &WordsHandler{
		vocab: vocab,
		log:   logger.With("handler", "words"),
	}
}

// List handles GET /api/words.
func (h *WordsHandler) List(w http.ResponseWriter, r *http.Request) {
	recs, err := h.vocab.List(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// Save handles POST /api/words.
func (h *WordsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var rec domain.WordRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	saved, err := h.vocab.SaveWord(r.Context(), rec)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// Get handles GET /api/words/{key}.
func (h *WordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.vocab.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// wordPatchRequest is the wire shape of a partial update. Absent fields stay
// untouched.
type wordPatchRequest struct {
	DisplayWord    *string                               `json:"displayWord"`
	Phonetic       *string                               `json:"phonetic"`
	AudioURL       *string                               `json:"audioUrl"`
	Meanings       []domain.Meaning                      `json:"meanings"`
	Translation    *string                               `json:"translation"`
	Extras         map[domain.ExtrasKind]json.RawMessage `json:"extras"`
	Level          *int                                  `json:"level"`
	ReviewCount    *int                                  `json:"reviewCount"`
	LastReviewedAt *time.Time                            `json:"lastReviewedAt"`
	NextReviewAt   *time.Time                            `json:"nextReviewAt"`
}

func (p wordPatchRequest) toPatch() domain.WordPatch {
	return domain.WordPatch{
		DisplayWord:    p.DisplayWord,
		Phonetic:       p.Phonetic,
		AudioURL:       p.AudioURL,
		Meanings:       p.Meanings,
		Translation:    p.Translation,
		Extras:         p.Extras,
		Level:          p.Level,
		ReviewCount:    p.ReviewCount,
		LastReviewedAt: p.LastReviewedAt,
		NextReviewAt:   p.NextReviewAt,
	}
}

// Update handles PATCH /api/words/{key}.
func (h *WordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req wordPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	rec, err := h.vocab.UpdateWord(r.Context(), r.PathValue("key"), req.toPatch())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/words/{key}.
func (h *WordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.vocab.DeleteWord(r.Context(), r.PathValue("key")); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Extras handles GET /api/words/{key}/extras/{kind}.
func (h *WordsHandler) Extras(w http.ResponseWriter, r *http.Request) {
	kind := domain.ExtrasKind(r.PathValue("kind"))

	payload, err := h.vocab.FillExtras(r.Context(), r.PathValue("key"), kind)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	if payload == nil {
		writeError(w, http.StatusNotFound, "no data available")
		return
	}

	writeJSON(w, http.StatusOK, map[string]json.RawMessage{string(kind): payload})
}

// Pronunciation handles GET /api/words/{key}/pronunciation.
func (h *WordsHandler) Pronunciation(w http.ResponseWriter, r *http.Request) {
	p, err := h.vocab.Pronunciation(r.Context(), r.PathValue("key"))
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Export handles GET /api/export.
func (h *WordsHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.vocab.Export(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="words-export.json"`)
	writeJSON(w, http.StatusOK, snap)
}

// Import handles POST /api/import.
func (h *WordsHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body")
		return
	}

	res, err := h.vocab.Import(r.Context(), data)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
