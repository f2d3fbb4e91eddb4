// Package vocab implements the word-list operations: saving lookups,
// editing and deleting records, on-demand extras, export/import, and the
// pronunciation source policy.
package vocab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/service/review"
	"github.com/wordfall/wordfall/internal/store"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type wordStore interface {
	Upsert(ctx context.Context, rec domain.WordRecord) error
	Get(ctx context.Context, key string) (*domain.WordRecord, error)
	GetAll(ctx context.Context) ([]domain.WordRecord, error)
	Update(ctx context.Context, key string, patch domain.WordPatch) error
	Delete(ctx context.Context, key string) error
}

type extrasFetcher interface {
	Extras(ctx context.Context, word string, kind domain.ExtrasKind) (json.RawMessage, error)
}

// Service owns the persisted word list.
type Service struct {
	store    wordStore
	extras   extrasFetcher
	schedule review.Schedule
	ttsBase  string
	now      func() time.Time
	log      *slog.Logger
}

// New creates the vocab Service. ttsBase is the speech-synthesis endpoint the
// pronunciation policy falls back to when a record carries no audio URL; empty
// disables that fallback. now defaults to time.Now when nil.
func New(st wordStore, extras extrasFetcher, schedule review.Schedule, ttsBase string, now func() time.Time, logger *slog.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    st,
		extras:   extras,
		schedule: schedule,
		ttsBase:  ttsBase,
		now:      now,
		log:      logger.With("service", "vocab"),
	}
}

// SaveWord persists a looked-up record. A new word starts at level 0 with its
// first review one interval away; saving a word that already exists refreshes
// the dictionary content but never touches its review progress.
func (s *Service) SaveWord(ctx context.Context, rec domain.WordRecord) (*domain.WordRecord, error) {
	rec.Key = domain.NormalizeKey(rec.Key)
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if rec.Meanings == nil {
		rec.Meanings = []domain.Meaning{}
	}

	existing, err := s.store.Get(ctx, rec.Key)
	if err == nil {
		patch := domain.WordPatch{
			DisplayWord: &rec.DisplayWord,
			Phonetic:    &rec.Phonetic,
			AudioURL:    &rec.AudioURL,
			Meanings:    rec.Meanings,
			Translation: &rec.Translation,
		}
		if err := s.store.Update(ctx, rec.Key, patch); err != nil {
			return nil, fmt.Errorf("refresh word %q: %w", rec.Key, err)
		}
		existing.Apply(patch)
		s.log.DebugContext(ctx, "word refreshed", slog.String("key", rec.Key))
		return existing, nil
	}

	now := s.now().UTC()
	rec.AddedAt = now
	rec.LastReviewedAt = nil
	rec.ReviewCount = 0
	rec.Level = 0
	rec.NextReviewAt = now.Add(s.schedule.IntervalFor(0))

	if err := s.store.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("save word %q: %w", rec.Key, err)
	}

	s.log.InfoContext(ctx, "word saved", slog.String("key", rec.Key))
	return &rec, nil
}

// Get returns one record by key.
func (s *Service) Get(ctx context.Context, key string) (*domain.WordRecord, error) {
	return s.store.Get(ctx, domain.NormalizeKey(key))
}

// List returns all records, newest first.
func (s *Service) List(ctx context.Context) ([]domain.WordRecord, error) {
	recs, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].AddedAt.Equal(recs[j].AddedAt) {
			return recs[i].Key < recs[j].Key
		}
		return recs[i].AddedAt.After(recs[j].AddedAt)
	})
	return recs, nil
}

// UpdateWord applies a partial update and returns the updated record.
func (s *Service) UpdateWord(ctx context.Context, key string, patch domain.WordPatch) (*domain.WordRecord, error) {
	key = domain.NormalizeKey(key)

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, key, patch); err != nil {
		return nil, fmt.Errorf("update word %q: %w", key, err)
	}

	rec.Apply(patch)
	return rec, nil
}

// DeleteWord removes a record. Deleting an unknown key reports
// domain.ErrNotFound.
func (s *Service) DeleteWord(ctx context.Context, key string) error {
	key = domain.NormalizeKey(key)

	if _, err := s.store.Get(ctx, key); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete word %q: %w", key, err)
	}

	s.log.InfoContext(ctx, "word deleted", slog.String("key", key))
	return nil
}

// FillExtras returns enrichment data of the given kind for a saved word,
// serving from the per-kind cache when possible and caching fresh fetches.
// A nil payload with nil error means the source produced nothing usable.
func (s *Service) FillExtras(ctx context.Context, key string, kind domain.ExtrasKind) (json.RawMessage, error) {
	if !domain.ValidExtrasKind(kind) {
		return nil, domain.NewValidationError("kind", "unknown extras kind")
	}
	key = domain.NormalizeKey(key)

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if cached, ok := rec.ExtrasCache[kind]; ok {
		return cached, nil
	}

	payload, err := s.extras.Extras(ctx, rec.DisplayWord, kind)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}

	patch := domain.WordPatch{
		Extras: map[domain.ExtrasKind]json.RawMessage{kind: payload},
	}
	if err := s.store.Update(ctx, key, patch); err != nil {
		// The data is already in hand; a failed cache write only costs a
		// refetch next time.
		s.log.WarnContext(ctx, "extras cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	return payload, nil
}

// Export returns the full word list wrapped in the versioned snapshot shape.
func (s *Service) Export(ctx context.Context) (store.Snapshot, error) {
	recs, err := s.store.GetAll(ctx)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("export: %w", err)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return store.NewSnapshot(recs, s.now().UTC()), nil
}

// ImportResult reports the outcome of an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Import merges an exported payload into the store. Words already present
// locally are skipped untouched (local data wins); new words land with their
// scheduler fields exactly as given. The payload may be a full snapshot or a
// bare record array. Validation runs over the whole payload before the first
// write, so a malformed entry aborts the import with nothing changed. An
// empty record set is rejected the same way an unparsable one is.
func (s *Service) Import(ctx context.Context, data []byte) (ImportResult, error) {
	recs, err := parseImport(data)
	if err != nil {
		return ImportResult{}, err
	}
	if len(recs) == 0 {
		return ImportResult{}, domain.NewValidationError("words", "empty record set")
	}

	// Phase one: validate everything up front.
	now := s.now().UTC()
	for i := range recs {
		recs[i].Key = domain.NormalizeKey(recs[i].Key)
		if err := recs[i].Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("import entry %d: %w", i, err)
		}
		if recs[i].Meanings == nil {
			recs[i].Meanings = []domain.Meaning{}
		}
		if recs[i].AddedAt.IsZero() {
			recs[i].AddedAt = now
		}
		if recs[i].NextReviewAt.IsZero() {
			recs[i].NextReviewAt = now.Add(s.schedule.IntervalFor(recs[i].Level))
		}
	}

	// Phase two: commit.
	var res ImportResult
	for _, rec := range recs {
		if _, err := s.store.Get(ctx, rec.Key); err == nil {
			res.Skipped++
			continue
		}
		if err := s.store.Upsert(ctx, rec); err != nil {
			return res, fmt.Errorf("import %q: %w", rec.Key, err)
		}
		res.Imported++
	}

	s.log.InfoContext(ctx, "import finished",
		slog.Int("imported", res.Imported),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

// parseImport accepts either the wrapped snapshot shape or a bare array of
// records.
func parseImport(data []byte) ([]domain.WordRecord, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var recs []domain.WordRecord
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, domain.NewValidationError("payload", "not a valid word array")
		}
		return recs, nil
	}

	var snap store.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, domain.NewValidationError("payload", "not a valid export payload")
	}
	if snap.Words == nil {
		return nil, domain.NewValidationError("words", "missing words array")
	}
	return snap.Words, nil
}

// Pronunciation describes how a word should be spoken, in preference order:
// the provider's recorded audio, then the speech-synthesis endpoint, then the
// client's local voice engine.
type Pronunciation struct {
	Source string `json:"source"` // audio | tts | local
	URL    string `json:"url,omitempty"`
	Text   string `json:"text"`
	Lang   string `json:"lang"`
}

// Pronunciation resolves the pronunciation source for a saved word.
func (s *Service) Pronunciation(ctx context.Context, key string) (Pronunciation, error) {
	rec, err := s.store.Get(ctx, domain.NormalizeKey(key))
	if err != nil {
		return Pronunciation{}, err
	}

	// Chinese display words are spoken by their English key.
	text := rec.DisplayWord
	if domain.Classify(text) == domain.InputChinese {
		text = rec.Key
	}

	p := Pronunciation{Text: text, Lang: "en-US"}
	switch {
	case rec.AudioURL != "":
		p.Source = "audio"
		p.URL = rec.AudioURL
	case s.ttsBase != "":
		p.Source = "tts"
		p.URL = s.ttsBase + url.QueryEscape(text)
	default:
		p.Source = "local"
	}
	return p, nil
}
