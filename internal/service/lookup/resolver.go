// Package lookup implements the multi-tier lookup waterfall. Tiers are
// tried strictly in order per input class; the first tier returning a
// non-empty record wins and later tiers are never consulted (no cross-tier
// merging). A tier miss (not found, transport error, timeout, or an
// unparsable payload) falls through silently.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wordfall/wordfall/internal/domain"
	"github.com/wordfall/wordfall/internal/provider"
	"github.com/wordfall/wordfall/internal/service/translate"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type dictionaryProvider interface {
	FetchEntry(ctx context.Context, term string) (*provider.DictionaryResult, error)
}

type translator interface {
	Translate(ctx context.Context, text string, dir translate.Direction) (string, domain.SourceTag, error)
}

// tier is one ordered provider attempt in the waterfall.
type tier struct {
	tag   domain.SourceTag
	fetch dictionaryProvider
}

// Resolver routes lookups through the per-class tier lists:
//
//	word:    primary → secondary → translation-only → LLM
//	phrase:  secondary → primary → translation-only → LLM
//	chinese: translate to English, then re-enter the word list on the
//	         translated lemma with display substitution
//
// The translation-only and LLM tiers are served by the translate service,
// which runs concurrently with the dictionary tiers and is joined before the
// result is produced.
type Resolver struct {
	wordTiers   []tier
	phraseTiers []tier
	translator  translator
	log         *slog.Logger
	seq         atomic.Uint64
}

// NewResolver creates a Resolver over the two dictionary providers and the
// translation service.
func NewResolver(primary, secondary dictionaryProvider, tr translator, logger *slog.Logger) *Resolver {
	return &Resolver{
		wordTiers: []tier{
			{tag: domain.SourcePrimary, fetch: primary},
			{tag: domain.SourceSecondary, fetch: secondary},
		},
		phraseTiers: []tier{
			{tag: domain.SourceSecondary, fetch: secondary},
			{tag: domain.SourcePrimary, fetch: primary},
		},
		translator: tr,
		log:        logger.With("service", "lookup"),
	}
}

// Latest returns the sequence token of the most recently issued lookup.
// Callers compare it against LookupResult.Seq to discard stale UI effects;
// store writes stay idempotent either way.
func (r *Resolver) Latest() uint64 {
	return r.seq.Load()
}

// Resolve runs the waterfall for text. It never returns an error: every
// intra-waterfall failure is absorbed as a tier miss, and total exhaustion
// yields a result with a nil record.
func (r *Resolver) Resolve(ctx context.Context, text string) domain.LookupResult {
	seq := r.seq.Add(1)
	inputType := domain.Classify(text)

	var res domain.LookupResult
	if inputType == domain.InputChinese {
		res = r.resolveChinese(ctx, text)
	} else {
		res = r.resolveEnglish(ctx, text, inputType)
	}

	res.InputType = inputType
	res.Seq = seq
	if res.Record == nil {
		res.Message = exhaustionMessage(inputType)
	}
	return res
}

// exhaustionMessage is the single user-facing notice for a lookup where no
// tier produced a record. Chinese queries fail at the bridging step, so
// their wording differs from a plain dictionary miss.
func exhaustionMessage(t domain.InputType) string {
	if t == domain.InputChinese {
		return "could not find an English match for this Chinese text"
	}
	return "no definition or translation found"
}

// resolveEnglish handles word and phrase lookups. The dictionary waterfall
// and the translation fetch run independently and are joined; either branch
// may come back empty without blocking the other.
func (r *Resolver) resolveEnglish(ctx context.Context, text string, inputType domain.InputType) domain.LookupResult {
	display := strings.TrimSpace(text)
	key := domain.NormalizeKey(text)

	tiers := r.wordTiers
	if inputType == domain.InputPhrase {
		tiers = r.phraseTiers
	}

	var (
		rec   *domain.WordRecord
		tag   domain.SourceTag
		trNew string
		trTag domain.SourceTag
		trErr error
	)

	// Branch failures surface as nil values, never as group errors:
	// the join always waits for both sides.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, tag = r.runTiers(gctx, tiers, key, display)
		return nil
	})
	g.Go(func() error {
		trNew, trTag, trErr = r.translator.Translate(gctx, display, translate.ToChinese)
		return nil
	})
	_ = g.Wait()

	if rec != nil {
		rec.Translation = trNew
		return domain.LookupResult{Record: rec, TranslationText: trNew, Source: tag}
	}

	if trNew != "" {
		return domain.LookupResult{
			Record:          translationOnlyRecord(key, display, trNew),
			TranslationText: trNew,
			Source:          trTag,
		}
	}

	return domain.LookupResult{
		CredentialsHint: errors.Is(trErr, domain.ErrAuthMissing),
	}
}

// resolveChinese bridges a Chinese query into the English word tiers:
// translate zh→en, lowercase and trim, strip trailing sentence punctuation,
// then look the lemma up. The record keeps the original Chinese text as its
// display word and the unstripped translation as its translation.
func (r *Resolver) resolveChinese(ctx context.Context, text string) domain.LookupResult {
	display := strings.TrimSpace(text)

	english, trTag, trErr := r.translator.Translate(ctx, display, translate.ToEnglish)
	if english == "" {
		return domain.LookupResult{
			CredentialsHint: errors.Is(trErr, domain.ErrAuthMissing),
		}
	}

	key := domain.StripTrailingPunct(domain.NormalizeKey(english))
	if key == "" {
		return domain.LookupResult{TranslationText: english, Source: trTag}
	}

	rec, tag := r.runTiers(ctx, r.wordTiers, key, display)
	if rec != nil {
		rec.Translation = english
		return domain.LookupResult{Record: rec, TranslationText: english, Source: tag}
	}

	return domain.LookupResult{
		Record:          translationOnlyRecord(key, display, english),
		TranslationText: english,
		Source:          trTag,
	}
}

// runTiers walks the tier list in order and returns the first non-empty
// record. Each tier is attempted exactly once; any failure is a miss.
func (r *Resolver) runTiers(ctx context.Context, tiers []tier, key, display string) (*domain.WordRecord, domain.SourceTag) {
	for _, t := range tiers {
		result, err := t.fetch.FetchEntry(ctx, key)
		if err != nil {
			r.log.DebugContext(ctx, "tier miss",
				slog.String("tier", string(t.tag)),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		if result.Empty() {
			continue
		}
		return recordFromResult(key, display, result), t.tag
	}
	return nil, ""
}

// recordFromResult maps a provider result onto a transient WordRecord.
// Scheduler fields are left zero; the vocab service sets defaults on save.
func recordFromResult(key, display string, res *provider.DictionaryResult) *domain.WordRecord {
	rec := &domain.WordRecord{
		Key:         key,
		DisplayWord: display,
		Phonetic:    res.Phonetic,
		AudioURL:    res.AudioURL,
		Meanings:    make([]domain.Meaning, 0, len(res.Meanings)),
	}
	for _, m := range res.Meanings {
		meaning := domain.Meaning{
			PartOfSpeech: m.PartOfSpeech,
			Definitions:  make([]domain.Definition, 0, len(m.Definitions)),
		}
		for _, d := range m.Definitions {
			meaning.Definitions = append(meaning.Definitions, domain.Definition{
				Text:     d.Text,
				Example:  d.Example,
				Synonyms: d.Synonyms,
			})
		}
		rec.Meanings = append(rec.Meanings, meaning)
	}
	return rec
}

// translationOnlyRecord builds a record carrying only a translation.
// Meanings is empty but never nil.
func translationOnlyRecord(key, display, translation string) *domain.WordRecord {
	return &domain.WordRecord{
		Key:         key,
		DisplayWord: display,
		Meanings:    []domain.Meaning{},
		Translation: translation,
	}
}
