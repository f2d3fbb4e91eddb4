// Package review advances vocabulary records through the forgetting-curve
// schedule and answers due-set queries. The state machine itself lives in
// srs.go as a pure function; this service only applies its transitions to
// the store.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/wordfall/wordfall/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type wordStore interface {
	Get(ctx context.Context, key string) (*domain.WordRecord, error)
	GetAll(ctx context.Context) ([]domain.WordRecord, error)
	Update(ctx context.Context, key string, patch domain.WordPatch) error
}

// Service applies review transitions to stored records.
type Service struct {
	store    wordStore
	schedule Schedule
	now      func() time.Time
	log      *slog.Logger
}

// New creates a review Service. nowFn may be nil; time.Now is used then.
func New(store wordStore, schedule Schedule, nowFn func() time.Time, logger *slog.Logger) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		store:    store,
		schedule: schedule,
		now:      nowFn,
		log:      logger.With("service", "review"),
	}
}

// Schedule returns the interval table in use.
func (s *Service) Schedule() Schedule { return s.schedule }

// Review records one review outcome for the given key and returns the
// updated record. Exactly one transition: level, nextReviewAt, reviewCount,
// and lastReviewedAt all move together.
func (s *Service) Review(ctx context.Context, key string, remembered bool) (*domain.WordRecord, error) {
	key = domain.NormalizeKey(key)

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("review %q: %w", key, err)
	}

	now := s.now().UTC()
	tr := Advance(s.schedule, rec.Level, remembered, now)
	count := rec.ReviewCount + 1

	patch := domain.WordPatch{
		Level:          &tr.Level,
		NextReviewAt:   &tr.NextReviewAt,
		ReviewCount:    &count,
		LastReviewedAt: &now,
	}
	if err := s.store.Update(ctx, key, patch); err != nil {
		return nil, fmt.Errorf("review %q: %w", key, err)
	}

	s.log.InfoContext(ctx, "review recorded",
		slog.String("key", key),
		slog.Bool("remembered", remembered),
		slog.Int("level", tr.Level),
		slog.Time("next_review_at", tr.NextReviewAt),
	)

	rec.Apply(patch)
	return rec, nil
}

// DueWords returns the records due for review at the given time, oldest due
// first. Mastered records are excluded regardless of their timestamps.
func (s *Service) DueWords(ctx context.Context, now time.Time) ([]domain.WordRecord, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("due words: %w", err)
	}

	due := make([]domain.WordRecord, 0)
	for _, rec := range all {
		if rec.Level >= s.schedule.MaxLevel() {
			continue
		}
		if !rec.NextReviewAt.After(now) {
			due = append(due, rec)
		}
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].NextReviewAt.Before(due[j].NextReviewAt)
	})
	return due, nil
}

// NextDue returns the earliest upcoming review time strictly after now,
// ignoring mastered records. Nil when nothing is scheduled.
func (s *Service) NextDue(ctx context.Context, now time.Time) (*time.Time, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("next due: %w", err)
	}

	var next *time.Time
	for _, rec := range all {
		if rec.Level >= s.schedule.MaxLevel() || !rec.NextReviewAt.After(now) {
			continue
		}
		if next == nil || rec.NextReviewAt.Before(*next) {
			t := rec.NextReviewAt
			next = &t
		}
	}
	return next, nil
}

// Stats summarizes the store by learning stage for the dashboard collaborator.
type Stats struct {
	Total    int `json:"total"`
	New      int `json:"new"`      // level 0, never reviewed
	Learning int `json:"learning"` // below mastered, at least one review or level > 0
	Mastered int `json:"mastered"`
	Due      int `json:"due"`
}

// Stats counts records per learning stage at the given time.
func (s *Service) Stats(ctx context.Context, now time.Time) (Stats, error) {
	all, err := s.store.GetAll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}

	st := Stats{Total: len(all)}
	for _, rec := range all {
		switch {
		case rec.Level >= s.schedule.MaxLevel():
			st.Mastered++
		case rec.Level == 0 && rec.ReviewCount == 0:
			st.New++
		default:
			st.Learning++
		}
		if rec.Level < s.schedule.MaxLevel() && !rec.NextReviewAt.After(now) {
			st.Due++
		}
	}
	return st, nil
}
