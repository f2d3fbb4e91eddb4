// Package words implements the word-record store on PostgreSQL. It is the
// mirror location: a full replica of the local file store, replaced snapshot
// by snapshot and readable on its own when the local copy is gone.
package words

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/store"
)

const table = "word_records"

var columns = []string{
	"key", "display_word", "phonetic", "audio_url", "meanings", "translation",
	"extras_cache", "added_at", "last_reviewed_at", "review_count", "level",
	"next_review_at",
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repo provides word-record persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new word-record repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Upsert creates or replaces the record stored under rec.Key.
func (r *Repo) Upsert(ctx context.Context, rec domain.WordRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	vals, err := rowValues(rec)
	if err != nil {
		return err
	}

	sql, args, err := psql.Insert(table).
		Columns(columns...).
		Values(vals...).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
			display_word = EXCLUDED.display_word,
			phonetic = EXCLUDED.phonetic,
			audio_url = EXCLUDED.audio_url,
			meanings = EXCLUDED.meanings,
			translation = EXCLUDED.translation,
			extras_cache = EXCLUDED.extras_cache,
			added_at = EXCLUDED.added_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			review_count = EXCLUDED.review_count,
			level = EXCLUDED.level,
			next_review_at = EXCLUDED.next_review_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return mapError(err, rec.Key)
	}
	return nil
}

// Get returns the record for key, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, key string) (*domain.WordRecord, error) {
	sql, args, err := psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rec, err := scanRecord(r.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, mapError(err, key)
	}
	return rec, nil
}

// GetAll returns every record.
func (r *Repo) GetAll(ctx context.Context) ([]domain.WordRecord, error) {
	sql, args, err := psql.Select(columns...).
		From(table).
		OrderBy("key ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select all: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query word records: %w", err)
	}
	defer rows.Close()

	recs := []domain.WordRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan word record: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate word records: %w", err)
	}

	return recs, nil
}

// Update merges patch into the existing record inside a transaction holding a
// row lock, so concurrent patches to the same key cannot lose fields. A
// missing key is a no-op.
func (r *Repo) Update(ctx context.Context, key string, patch domain.WordPatch) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql, args, err := psql.Select(columns...).
		From(table).
		Where(squirrel.Eq{"key": key}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("build select for update: %w", err)
	}

	rec, err := scanRecord(tx.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return mapError(err, key)
	}

	rec.Apply(patch)

	vals, err := rowValues(*rec)
	if err != nil {
		return err
	}

	update := psql.Update(table).Where(squirrel.Eq{"key": key})
	for i, col := range columns {
		if col == "key" {
			continue
		}
		update = update.Set(col, vals[i])
	}

	sql, args, err = update.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return mapError(err, key)
	}

	return tx.Commit(ctx)
}

// Delete removes the record for key. A missing key is a no-op.
func (r *Repo) Delete(ctx context.Context, key string) error {
	sql, args, err := psql.Delete(table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return mapError(err, key)
	}
	return nil
}

// ReplaceAll swaps the full table contents for recs in one transaction.
func (r *Repo) ReplaceAll(ctx context.Context, recs []domain.WordRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear word records: %w", err)
	}

	if len(recs) > 0 {
		insert := psql.Insert(table).Columns(columns...)
		for _, rec := range recs {
			vals, err := rowValues(rec)
			if err != nil {
				return err
			}
			insert = insert.Values(vals...)
		}

		sql, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build replace insert: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Initialized reports whether the table holds any records.
func (r *Repo) Initialized(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM "+table+")").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check word records: %w", err)
	}
	return exists, nil
}

// rowValues serializes a record into column order. Meanings and the extras
// cache go to JSONB.
func rowValues(rec domain.WordRecord) ([]any, error) {
	meanings := rec.Meanings
	if meanings == nil {
		meanings = []domain.Meaning{}
	}
	meaningsJSON, err := json.Marshal(meanings)
	if err != nil {
		return nil, fmt.Errorf("marshal meanings for %q: %w", rec.Key, err)
	}

	var extrasJSON []byte
	if len(rec.ExtrasCache) > 0 {
		extrasJSON, err = json.Marshal(rec.ExtrasCache)
		if err != nil {
			return nil, fmt.Errorf("marshal extras for %q: %w", rec.Key, err)
		}
	}

	return []any{
		rec.Key,
		rec.DisplayWord,
		rec.Phonetic,
		rec.AudioURL,
		meaningsJSON,
		rec.Translation,
		extrasJSON,
		rec.AddedAt,
		rec.LastReviewedAt,
		rec.ReviewCount,
		rec.Level,
		rec.NextReviewAt,
	}, nil
}

// scanRecord reads one row in column order.
func scanRecord(row pgx.Row) (*domain.WordRecord, error) {
	var (
		rec          domain.WordRecord
		meaningsJSON []byte
		extrasJSON   []byte
		lastReviewed *time.Time
	)

	if err := row.Scan(
		&rec.Key,
		&rec.DisplayWord,
		&rec.Phonetic,
		&rec.AudioURL,
		&meaningsJSON,
		&rec.Translation,
		&extrasJSON,
		&rec.AddedAt,
		&lastReviewed,
		&rec.ReviewCount,
		&rec.Level,
		&rec.NextReviewAt,
	); err != nil {
		return nil, err
	}

	if len(meaningsJSON) > 0 {
		if err := json.Unmarshal(meaningsJSON, &rec.Meanings); err != nil {
			return nil, fmt.Errorf("unmarshal meanings for %q: %w", rec.Key, err)
		}
	}
	if rec.Meanings == nil {
		rec.Meanings = []domain.Meaning{}
	}
	if len(extrasJSON) > 0 {
		if err := json.Unmarshal(extrasJSON, &rec.ExtrasCache); err != nil {
			return nil, fmt.Errorf("unmarshal extras for %q: %w", rec.Key, err)
		}
	}
	rec.LastReviewedAt = lastReviewed

	return &rec, nil
}

var _ store.Store = (*Repo)(nil)
