package words

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/wordfall/wordfall/internal/adapter/postgres/testhelper"
	"github.com/wordfall/wordfall/internal/domain"
)

func setupRepo(t *testing.T) (*Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)

	_, err := pool.Exec(context.Background(), "TRUNCATE word_records")
	require.NoError(t, err)

	return New(pool), pool
}

var addedAt = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func record(key string) domain.WordRecord {
	return domain.WordRecord{
		Key:         key,
		DisplayWord: key,
		Phonetic:    "/" + key + "/",
		Meanings: []domain.Meaning{
			{PartOfSpeech: "noun", Definitions: []domain.Definition{
				{Text: "a " + key, Example: "the " + key, Synonyms: []string{"thing"}},
			}},
		},
		Translation:  "词",
		AddedAt:      addedAt,
		NextReviewAt: addedAt.Add(24 * time.Hour),
	}
}

func TestUpsertGetRoundTrip(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	want := record("apple")
	want.ExtrasCache = map[domain.ExtrasKind]json.RawMessage{
		domain.ExtrasSynonyms: json.RawMessage(`["fruit"]`),
	}
	require.NoError(t, repo.Upsert(ctx, want))

	got, err := repo.Get(ctx, "apple")
	require.NoError(t, err)

	require.Equal(t, want.DisplayWord, got.DisplayWord)
	require.Equal(t, want.Phonetic, got.Phonetic)
	require.Equal(t, want.Translation, got.Translation)
	require.Equal(t, want.Meanings, got.Meanings)
	require.JSONEq(t, `["fruit"]`, string(got.ExtrasCache[domain.ExtrasSynonyms]))
	require.True(t, got.AddedAt.Equal(want.AddedAt))
	require.True(t, got.NextReviewAt.Equal(want.NextReviewAt))
	require.Nil(t, got.LastReviewedAt)
}

func TestUpsertReplacesExisting(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, record("run")))

	updated := record("run")
	updated.Translation = "跑"
	updated.Phonetic = ""
	require.NoError(t, repo.Upsert(ctx, updated))

	got, err := repo.Get(ctx, "run")
	require.NoError(t, err)
	require.Equal(t, "跑", got.Translation)
	require.Empty(t, got.Phonetic)
}

func TestGetMissing(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateMergesFields(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, record("run")))

	lvl := 3
	count := 5
	reviewed := addedAt.Add(48 * time.Hour)
	next := addedAt.Add(7 * 24 * time.Hour)
	require.NoError(t, repo.Update(ctx, "run", domain.WordPatch{
		Level:          &lvl,
		ReviewCount:    &count,
		LastReviewedAt: &reviewed,
		NextReviewAt:   &next,
	}))

	got, err := repo.Get(ctx, "run")
	require.NoError(t, err)
	require.Equal(t, 3, got.Level)
	require.Equal(t, 5, got.ReviewCount)
	require.NotNil(t, got.LastReviewedAt)
	require.True(t, got.LastReviewedAt.Equal(reviewed))
	require.True(t, got.NextReviewAt.Equal(next))
	require.Equal(t, "词", got.Translation, "unpatched fields untouched")
}

func TestUpdateAccumulatesExtras(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, record("run")))

	require.NoError(t, repo.Update(ctx, "run", domain.WordPatch{
		Extras: map[domain.ExtrasKind]json.RawMessage{
			domain.ExtrasSynonyms: json.RawMessage(`["sprint"]`),
		},
	}))
	require.NoError(t, repo.Update(ctx, "run", domain.WordPatch{
		Extras: map[domain.ExtrasKind]json.RawMessage{
			domain.ExtrasAntonyms: json.RawMessage(`["walk"]`),
		},
	}))

	got, err := repo.Get(ctx, "run")
	require.NoError(t, err)
	require.Len(t, got.ExtrasCache, 2)
}

func TestUpdateMissingKeyIsNoop(t *testing.T) {
	repo, _ := setupRepo(t)

	lvl := 1
	err := repo.Update(context.Background(), "ghost", domain.WordPatch{Level: &lvl})
	require.NoError(t, err)
}

func TestDelete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, record("apple")))
	require.NoError(t, repo.Delete(ctx, "apple"))
	require.NoError(t, repo.Delete(ctx, "apple"), "deleting twice is a no-op")

	_, err := repo.Get(ctx, "apple")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReplaceAll(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, record("old-1")))
	require.NoError(t, repo.Upsert(ctx, record("old-2")))

	require.NoError(t, repo.ReplaceAll(ctx, []domain.WordRecord{record("new")}))

	recs, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "new", recs[0].Key)
}

func TestReplaceAllEmpty(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, record("old")))
	require.NoError(t, repo.ReplaceAll(ctx, nil))

	recs, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestInitialized(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	ok, err := repo.Initialized(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Upsert(ctx, record("apple")))

	ok, err = repo.Initialized(ctx)
	require.NoError(t, err)
	require.True(t, ok)
}
