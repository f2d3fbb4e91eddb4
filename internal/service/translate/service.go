// Package translate wraps the bilingual translation provider with an
// optional LLM fallback, and serves structured extras (conjugations,
// synonyms, antonyms) through the same LLM client.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/wordfall/wordfall/internal/domain"
)

// Direction is the language pair passed to the bilingual provider.
type Direction string

const (
	ToEnglish Direction = "zh-CN|en"
	ToChinese Direction = "en|zh-CN"
)

// translateSystem is the fixed instruction for the LLM translation fallback.
// Direction is auto-detected from the input script.
const translateSystem = "You are a translation engine. " +
	"If the user text is Chinese, translate it to English; otherwise translate it to Chinese. " +
	"Reply with the translation text only, no explanations, no quotes."

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type bilingualProvider interface {
	Translate(ctx context.Context, text, langPair string) (string, error)
}

type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Service resolves translations through the provider-then-LLM chain.
type Service struct {
	provider bilingualProvider
	llm      completer // nil when no credentials are configured
	log      *slog.Logger
}

// New creates a translation Service. llm may be nil; the fallback tier then
// reports domain.ErrAuthMissing instead of running.
func New(provider bilingualProvider, llm completer, logger *slog.Logger) *Service {
	return &Service{
		provider: provider,
		llm:      llm,
		log:      logger.With("service", "translate"),
	}
}

// Translate returns the best-known translation of text and the source tag of
// the tier that produced it. A provider failure or echo falls through to the
// LLM. Returns "" with domain.ErrAuthMissing when the provider produced
// nothing and the LLM tier cannot run.
func (s *Service) Translate(ctx context.Context, text string, dir Direction) (string, domain.SourceTag, error) {
	translated, err := s.provider.Translate(ctx, text, string(dir))
	if err != nil {
		s.log.WarnContext(ctx, "translation provider miss", slog.String("error", err.Error()))
	}
	if translated != "" {
		return translated, domain.SourceTranslation, nil
	}

	if s.llm == nil {
		return "", "", domain.ErrAuthMissing
	}

	reply, err := s.llm.Complete(ctx, translateSystem, text)
	if err != nil {
		if errors.Is(err, domain.ErrAuthMissing) {
			return "", "", domain.ErrAuthMissing
		}
		s.log.WarnContext(ctx, "llm translation miss", slog.String("error", err.Error()))
		return "", "", nil
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", "", nil
	}
	return reply, domain.SourceLLM, nil
}

// Extras fetches structured enrichment data of the given kind for a word.
// The reply must be valid JSON matching the kind's schema, tolerant of
// surrounding code-fence markers. A parse failure yields nil with no retry.
func (s *Service) Extras(ctx context.Context, word string, kind domain.ExtrasKind) (json.RawMessage, error) {
	if !domain.ValidExtrasKind(kind) {
		return nil, domain.NewValidationError("kind", "unknown extras kind")
	}
	if s.llm == nil {
		return nil, domain.ErrAuthMissing
	}

	reply, err := s.llm.Complete(ctx, extrasSystem(kind), word)
	if err != nil {
		return nil, err
	}

	raw := StripCodeFence(reply)
	if !validExtrasPayload(kind, raw) {
		s.log.WarnContext(ctx, "extras parse failure",
			slog.String("word", word),
			slog.String("kind", string(kind)),
		)
		return nil, nil
	}

	return json.RawMessage(raw), nil
}

// extrasSystem returns the kind-specific structured-output instruction.
func extrasSystem(kind domain.ExtrasKind) string {
	switch kind {
	case domain.ExtrasConjugations:
		return "You are an English grammar reference. For the given word, output ONLY a JSON object " +
			`mapping form names to forms, e.g. {"base":"run","thirdPerson":"runs","gerund":"running","past":"ran","pastParticiple":"run"}. ` +
			"No markdown, no explanations."
	case domain.ExtrasSynonyms:
		return "You are an English thesaurus. For the given word or phrase, output ONLY a JSON array " +
			`of synonym strings, e.g. ["quick","rapid"]. No markdown, no explanations.`
	default: // antonyms
		return "You are an English thesaurus. For the given word or phrase, output ONLY a JSON array " +
			`of antonym strings, e.g. ["slow","sluggish"]. No markdown, no explanations.`
	}
}

// validExtrasPayload checks the reply against the kind's fixed schema.
func validExtrasPayload(kind domain.ExtrasKind, raw string) bool {
	switch kind {
	case domain.ExtrasConjugations:
		var forms map[string]string
		return json.Unmarshal([]byte(raw), &forms) == nil && len(forms) > 0
	default:
		var items []string
		return json.Unmarshal([]byte(raw), &items) == nil && len(items) > 0
	}
}

// StripCodeFence removes optional surrounding Markdown code-fence markers
// (``` or ```json) from an LLM reply.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language hint on the opening fence line.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if first == "" || isFenceLang(first) {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func isFenceLang(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
