package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wordfall/wordfall/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory Store with injectable failures.
type memStore struct {
	words       map[string]domain.WordRecord
	initialized bool
	failAll     error

	replaceCalls int
}

func newMemStore(recs ...domain.WordRecord) *memStore {
	m := &memStore{words: make(map[string]domain.WordRecord), initialized: len(recs) > 0}
	for _, r := range recs {
		m.words[r.Key] = r
	}
	return m
}

func (m *memStore) Upsert(_ context.Context, rec domain.WordRecord) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.words[rec.Key] = rec
	m.initialized = true
	return nil
}

func (m *memStore) Get(_ context.Context, key string) (*domain.WordRecord, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	rec, ok := m.words[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := rec.Clone()
	return &c, nil
}

func (m *memStore) GetAll(_ context.Context) ([]domain.WordRecord, error) {
	if m.failAll != nil {
		return nil, m.failAll
	}
	out := make([]domain.WordRecord, 0, len(m.words))
	for _, rec := range m.words {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, key string, patch domain.WordPatch) error {
	if m.failAll != nil {
		return m.failAll
	}
	rec, ok := m.words[key]
	if !ok {
		return nil
	}
	rec.Apply(patch)
	m.words[key] = rec
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	if m.failAll != nil {
		return m.failAll
	}
	delete(m.words, key)
	return nil
}

func (m *memStore) ReplaceAll(_ context.Context, recs []domain.WordRecord) error {
	if m.failAll != nil {
		return m.failAll
	}
	m.replaceCalls++
	m.words = make(map[string]domain.WordRecord, len(recs))
	for _, rec := range recs {
		m.words[rec.Key] = rec
	}
	m.initialized = true
	return nil
}

func (m *memStore) Initialized(_ context.Context) (bool, error) {
	if m.failAll != nil {
		return false, m.failAll
	}
	return m.initialized, nil
}

func rec(key string) domain.WordRecord {
	return domain.WordRecord{
		Key:         key,
		DisplayWord: key,
		Meanings:    []domain.Meaning{},
		AddedAt:     time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestInitPrimaryWins(t *testing.T) {
	primary := newMemStore(rec("local"))
	mirror := newMemStore(rec("remote"))
	m := NewMirrored(primary, mirror, 0, testLogger())

	require.NoError(t, m.Init(context.Background()))

	_, err := primary.Get(context.Background(), "remote")
	require.ErrorIs(t, err, domain.ErrNotFound, "primary data must not be overwritten")
}

func TestInitRestoresFromMirror(t *testing.T) {
	primary := newMemStore()
	mirror := newMemStore(rec("remote"))
	m := NewMirrored(primary, mirror, 0, testLogger())

	require.NoError(t, m.Init(context.Background()))

	got, err := m.Get(context.Background(), "remote")
	require.NoError(t, err)
	require.Equal(t, "remote", got.Key)
	require.Equal(t, 1, primary.replaceCalls, "restored snapshot written back to primary")
}

func TestInitBothEmpty(t *testing.T) {
	m := NewMirrored(newMemStore(), newMemStore(), 0, testLogger())
	require.NoError(t, m.Init(context.Background()))
}

func TestInitMirrorUnavailable(t *testing.T) {
	mirror := newMemStore()
	mirror.failAll = errors.New("connection refused")
	m := NewMirrored(newMemStore(), mirror, 0, testLogger())

	require.NoError(t, m.Init(context.Background()), "an unreachable mirror must not block startup")
}

func TestWritesPushSnapshotToMirror(t *testing.T) {
	ctx := context.Background()
	primary := newMemStore()
	mirror := newMemStore()
	m := NewMirrored(primary, mirror, 0, testLogger())

	require.NoError(t, m.Upsert(ctx, rec("apple")))
	require.NoError(t, m.Upsert(ctx, rec("banana")))
	require.NoError(t, m.Delete(ctx, "banana"))

	recs, err := mirror.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "apple", recs[0].Key)
}

func TestUpdatePushes(t *testing.T) {
	ctx := context.Background()
	primary := newMemStore(rec("apple"))
	mirror := newMemStore()
	m := NewMirrored(primary, mirror, 0, testLogger())

	lvl := 2
	require.NoError(t, m.Update(ctx, "apple", domain.WordPatch{Level: &lvl}))

	got, err := mirror.Get(ctx, "apple")
	require.NoError(t, err)
	require.Equal(t, 2, got.Level)
}

func TestMirrorFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	primary := newMemStore()
	mirror := newMemStore()
	mirror.failAll = errors.New("timeout")
	m := NewMirrored(primary, mirror, time.Second, testLogger())

	require.NoError(t, m.Upsert(ctx, rec("apple")))

	got, err := primary.Get(ctx, "apple")
	require.NoError(t, err)
	require.Equal(t, "apple", got.Key)
}

func TestPrimaryFailureSkipsPush(t *testing.T) {
	ctx := context.Background()
	primary := newMemStore()
	primary.failAll = errors.New("disk full")
	mirror := newMemStore()
	m := NewMirrored(primary, mirror, 0, testLogger())

	require.Error(t, m.Upsert(ctx, rec("apple")))
	require.Zero(t, mirror.replaceCalls)
}

func TestPushSurvivesCanceledRequestContext(t *testing.T) {
	primary := newMemStore()
	mirror := newMemStore()
	m := NewMirrored(primary, mirror, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, m.Upsert(ctx, rec("apple")))
	cancel()

	// The push uses a detached context, so the record reached the mirror
	// even though the request context is now canceled.
	got, err := mirror.Get(context.Background(), "apple")
	require.NoError(t, err)
	require.Equal(t, "apple", got.Key)
}
