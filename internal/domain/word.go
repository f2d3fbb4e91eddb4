package domain

import (
	"encoding/json"
	"time"
)

// ExtrasKind identifies one kind of on-demand enrichment data.
type ExtrasKind string

const (
	ExtrasConjugations ExtrasKind = "conjugations"
	ExtrasSynonyms     ExtrasKind = "synonyms"
	ExtrasAntonyms     ExtrasKind = "antonyms"
)

// ValidExtrasKind reports whether k is one of the known extras kinds.
func ValidExtrasKind(k ExtrasKind) bool {
	switch k {
	case ExtrasConjugations, ExtrasSynonyms, ExtrasAntonyms:
		return true
	}
	return false
}

// SourceTag identifies which lookup tier produced a record.
type SourceTag string

const (
	SourcePrimary     SourceTag = "primary"
	SourceSecondary   SourceTag = "secondary"
	SourceTranslation SourceTag = "translation"
	SourceLLM         SourceTag = "llm"
)

// InputType is the query class assigned by Classify.
type InputType string

const (
	InputWord    InputType = "word"
	InputPhrase  InputType = "phrase"
	InputChinese InputType = "chinese"
)

// WordRecord is the persisted unit of the vocabulary store.
// Key is the case-normalized identity; DisplayWord keeps the surface form the
// user actually typed (the original Chinese text when Key is a resolved
// English lemma).
type WordRecord struct {
	Key            string                         `json:"key"`
	DisplayWord    string                         `json:"displayWord"`
	Phonetic       string                         `json:"phonetic,omitempty"`
	AudioURL       string                         `json:"audioUrl,omitempty"`
	Meanings       []Meaning                      `json:"meanings"`
	Translation    string                         `json:"translation,omitempty"`
	ExtrasCache    map[ExtrasKind]json.RawMessage `json:"extrasCache,omitempty"`
	AddedAt        time.Time                      `json:"addedAt"`
	LastReviewedAt *time.Time                     `json:"lastReviewedAt,omitempty"`
	ReviewCount    int                            `json:"reviewCount"`
	Level          int                            `json:"level"`
	NextReviewAt   time.Time                      `json:"nextReviewAt"`
}

// Meaning groups definitions under one part of speech.
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition is a single dictionary definition with optional aids.
type Definition struct {
	Text     string   `json:"text"`
	Example  string   `json:"example,omitempty"`
	Synonyms []string `json:"synonyms,omitempty"`
}

// Validate checks the structural invariants of a record. All failing fields
// are reported at once.
func (r *WordRecord) Validate() error {
	var errs []FieldError
	if r.Key == "" {
		errs = append(errs, FieldError{Field: "key", Message: "must not be empty"})
	}
	if r.Level < 0 {
		errs = append(errs, FieldError{Field: "level", Message: "must not be negative"})
	}
	if r.ReviewCount < 0 {
		errs = append(errs, FieldError{Field: "reviewCount", Message: "must not be negative"})
	}
	if len(errs) > 0 {
		return NewValidationErrors(errs)
	}
	return nil
}

// Clone returns a deep copy of the record. Store implementations hand out
// clones so callers can never mutate shared state.
func (r WordRecord) Clone() WordRecord {
	c := r
	if r.Meanings != nil {
		c.Meanings = make([]Meaning, len(r.Meanings))
		for i, m := range r.Meanings {
			c.Meanings[i] = m
			if m.Definitions != nil {
				c.Meanings[i].Definitions = make([]Definition, len(m.Definitions))
				for j, d := range m.Definitions {
					c.Meanings[i].Definitions[j] = d
					if d.Synonyms != nil {
						c.Meanings[i].Definitions[j].Synonyms = append([]string(nil), d.Synonyms...)
					}
				}
			}
		}
	}
	if r.ExtrasCache != nil {
		c.ExtrasCache = make(map[ExtrasKind]json.RawMessage, len(r.ExtrasCache))
		for k, v := range r.ExtrasCache {
			c.ExtrasCache[k] = append(json.RawMessage(nil), v...)
		}
	}
	if r.LastReviewedAt != nil {
		t := *r.LastReviewedAt
		c.LastReviewedAt = &t
	}
	return c
}

// WordPatch is a partial update of a WordRecord. Nil fields are left
// untouched; Extras entries are merged per kind into the existing cache.
type WordPatch struct {
	DisplayWord    *string
	Phonetic       *string
	AudioURL       *string
	Meanings       []Meaning
	Translation    *string
	Extras         map[ExtrasKind]json.RawMessage
	Level          *int
	ReviewCount    *int
	LastReviewedAt *time.Time
	NextReviewAt   *time.Time
}

// Apply merges the patch into the record. Only set fields are written.
func (r *WordRecord) Apply(p WordPatch) {
	if p.DisplayWord != nil {
		r.DisplayWord = *p.DisplayWord
	}
	if p.Phonetic != nil {
		r.Phonetic = *p.Phonetic
	}
	if p.AudioURL != nil {
		r.AudioURL = *p.AudioURL
	}
	if p.Meanings != nil {
		r.Meanings = p.Meanings
	}
	if p.Translation != nil {
		r.Translation = *p.Translation
	}
	if p.Extras != nil {
		if r.ExtrasCache == nil {
			r.ExtrasCache = make(map[ExtrasKind]json.RawMessage, len(p.Extras))
		}
		for k, v := range p.Extras {
			r.ExtrasCache[k] = v
		}
	}
	if p.Level != nil {
		r.Level = *p.Level
	}
	if p.ReviewCount != nil {
		r.ReviewCount = *p.ReviewCount
	}
	if p.LastReviewedAt != nil {
		t := *p.LastReviewedAt
		r.LastReviewedAt = &t
	}
	if p.NextReviewAt != nil {
		r.NextReviewAt = *p.NextReviewAt
	}
}

// LookupResult is the transient outcome of one lookup. Record is nil when
// every tier missed; TranslationText may be set even then. Seq is the
// monotonically increasing token assigned by the resolver: callers compare it
// against the resolver's latest token to discard stale UI effects.
type LookupResult struct {
	Record          *WordRecord `json:"record"`
	TranslationText string      `json:"translationText,omitempty"`
	InputType       InputType   `json:"inputType"`
	Source          SourceTag   `json:"sourceTag,omitempty"`
	Seq             uint64      `json:"seq"`
	// Message is the user-facing notice set only when Record is nil:
	// total exhaustion surfaces exactly one message, worded by input class.
	Message string `json:"message,omitempty"`
	// CredentialsHint is set when the last exhausted tier was the LLM
	// fallback and it could not run for lack of credentials.
	CredentialsHint bool `json:"credentialsHint,omitempty"`
}
