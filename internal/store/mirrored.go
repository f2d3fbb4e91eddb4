package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wordfall/wordfall/internal/domain"
)

// Mirrored composes a primary Store with a secondary mirror location.
// Reads are served by the primary; every successful primary write is
// followed by a best-effort whole-snapshot push to the mirror. Replication
// is snapshot overwrite, not per-record merge: if both locations are
// modified independently between syncs, the mirror's own additions are lost
// on the next push.
type Mirrored struct {
	primary     Store
	mirror      Store
	syncTimeout time.Duration
	log         *slog.Logger
}

// NewMirrored creates the composition. syncTimeout bounds each mirror push;
// zero means 15 seconds.
func NewMirrored(primary, mirror Store, syncTimeout time.Duration, logger *slog.Logger) *Mirrored {
	if syncTimeout <= 0 {
		syncTimeout = 15 * time.Second
	}
	return &Mirrored{
		primary:     primary,
		mirror:      mirror,
		syncTimeout: syncTimeout,
		log:         logger.With("store", "mirrored"),
	}
}

// Init applies the startup load order: the primary location wins when it
// holds data; otherwise the mirror's snapshot is pulled and written back to
// the primary immediately.
func (m *Mirrored) Init(ctx context.Context) error {
	ok, err := m.primary.Initialized(ctx)
	if err != nil {
		return fmt.Errorf("mirrored init: %w", err)
	}
	if ok {
		return nil
	}

	mirrorOK, err := m.mirror.Initialized(ctx)
	if err != nil {
		m.log.WarnContext(ctx, "mirror unavailable at startup", slog.String("error", err.Error()))
		return nil
	}
	if !mirrorOK {
		return nil
	}

	recs, err := m.mirror.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("mirrored init: pull snapshot: %w", err)
	}
	if err := m.primary.ReplaceAll(ctx, recs); err != nil {
		return fmt.Errorf("mirrored init: restore local: %w", err)
	}

	m.log.InfoContext(ctx, "restored local store from mirror", slog.Int("words", len(recs)))
	return nil
}

// push replicates the primary's full snapshot to the mirror. Failures are
// logged, never propagated: the local write already succeeded.
func (m *Mirrored) push(ctx context.Context) {
	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.syncTimeout)
	defer cancel()

	recs, err := m.primary.GetAll(pushCtx)
	if err != nil {
		m.log.WarnContext(pushCtx, "mirror push: read primary", slog.String("error", err.Error()))
		return
	}
	if err := m.mirror.ReplaceAll(pushCtx, recs); err != nil {
		m.log.WarnContext(pushCtx, "mirror push failed", slog.String("error", err.Error()))
		return
	}
}

func (m *Mirrored) Upsert(ctx context.Context, rec domain.WordRecord) error {
	if err := m.primary.Upsert(ctx, rec); err != nil {
		return err
	}
	m.push(ctx)
	return nil
}

func (m *Mirrored) Get(ctx context.Context, key string) (*domain.WordRecord, error) {
	return m.primary.Get(ctx, key)
}

func (m *Mirrored) GetAll(ctx context.Context) ([]domain.WordRecord, error) {
	return m.primary.GetAll(ctx)
}

func (m *Mirrored) Update(ctx context.Context, key string, patch domain.WordPatch) error {
	if err := m.primary.Update(ctx, key, patch); err != nil {
		return err
	}
	m.push(ctx)
	return nil
}

func (m *Mirrored) Delete(ctx context.Context, key string) error {
	if err := m.primary.Delete(ctx, key); err != nil {
		return err
	}
	m.push(ctx)
	return nil
}

func (m *Mirrored) ReplaceAll(ctx context.Context, recs []domain.WordRecord) error {
	if err := m.primary.ReplaceAll(ctx, recs); err != nil {
		return err
	}
	m.push(ctx)
	return nil
}

func (m *Mirrored) Initialized(ctx context.Context) (bool, error) {
	return m.primary.Initialized(ctx)
}

var _ Store = (*Mirrored)(nil)
