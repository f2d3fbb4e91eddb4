package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestWordRecordApply(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := WordRecord{
		Key:         "run",
		DisplayWord: "run",
		Translation: "跑",
		Meanings:    []Meaning{{PartOfSpeech: "verb", Definitions: []Definition{{Text: "to move fast"}}}},
		AddedAt:     now,
		Level:       2,
	}

	tr := "奔跑"
	lvl := 3
	rc := 5
	next := now.Add(7 * 24 * time.Hour)
	rec.Apply(WordPatch{
		Translation:  &tr,
		Level:        &lvl,
		ReviewCount:  &rc,
		NextReviewAt: &next,
	})

	if rec.Translation != "奔跑" {
		t.Errorf("Translation = %q, want %q", rec.Translation, "奔跑")
	}
	if rec.Level != 3 || rec.ReviewCount != 5 {
		t.Errorf("Level/ReviewCount = %d/%d, want 3/5", rec.Level, rec.ReviewCount)
	}
	if !rec.NextReviewAt.Equal(next) {
		t.Errorf("NextReviewAt = %v, want %v", rec.NextReviewAt, next)
	}
	// Untouched fields stay.
	if rec.DisplayWord != "run" || len(rec.Meanings) != 1 {
		t.Error("untouched fields were modified")
	}
}

func TestWordRecordApplyExtrasMerge(t *testing.T) {
	rec := WordRecord{
		Key: "run",
		ExtrasCache: map[ExtrasKind]json.RawMessage{
			ExtrasSynonyms: json.RawMessage(`["sprint"]`),
		},
	}

	rec.Apply(WordPatch{
		Extras: map[ExtrasKind]json.RawMessage{
			ExtrasAntonyms: json.RawMessage(`["walk"]`),
		},
	})

	if string(rec.ExtrasCache[ExtrasSynonyms]) != `["sprint"]` {
		t.Error("existing extras kind was overwritten")
	}
	if string(rec.ExtrasCache[ExtrasAntonyms]) != `["walk"]` {
		t.Error("new extras kind was not merged")
	}
}

func TestWordRecordCloneIsDeep(t *testing.T) {
	rec := WordRecord{
		Key:      "run",
		Meanings: []Meaning{{PartOfSpeech: "verb", Definitions: []Definition{{Text: "a", Synonyms: []string{"b"}}}}},
		ExtrasCache: map[ExtrasKind]json.RawMessage{
			ExtrasSynonyms: json.RawMessage(`[]`),
		},
	}

	clone := rec.Clone()
	clone.Meanings[0].Definitions[0].Text = "changed"
	clone.Meanings[0].Definitions[0].Synonyms[0] = "changed"
	clone.ExtrasCache[ExtrasSynonyms] = json.RawMessage(`["x"]`)

	if rec.Meanings[0].Definitions[0].Text != "a" {
		t.Error("clone shares definition slice with original")
	}
	if rec.Meanings[0].Definitions[0].Synonyms[0] != "b" {
		t.Error("clone shares synonyms slice with original")
	}
	if string(rec.ExtrasCache[ExtrasSynonyms]) != `[]` {
		t.Error("clone shares extras map with original")
	}
}

func TestWordRecordValidate(t *testing.T) {
	ok := WordRecord{Key: "run"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}

	bad := []WordRecord{
		{Key: ""},
		{Key: "run", Level: -1},
		{Key: "run", ReviewCount: -1},
	}
	for i, rec := range bad {
		if err := rec.Validate(); err == nil {
			t.Errorf("record %d should be invalid", i)
		}
	}
}

func TestWordRecordValidateCollectsAllErrors(t *testing.T) {
	rec := WordRecord{Key: "", Level: -1, ReviewCount: -1}

	err := rec.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("got %d field errors, want all 3 reported at once", len(verr.Errors))
	}
}
