package wiktionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wordfall/wordfall/internal/provider"
)

const defaultBaseURL = "https://en.wiktionary.org/api/rest_v1/page/definition"

// langKey selects which language section of the response is used.
const langKey = "en"

// Provider fetches definitions from the Wiktionary REST API.
// Unlike the primary dictionary it accepts multi-word phrases, looked up
// by slug (spaces replaced with underscores). Definition text arrives with
// HTML/wiki markup which is stripped to plain text.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider with the default Wiktionary REST URL.
func NewProvider(timeout time.Duration, logger *slog.Logger) *Provider {
	return NewProviderWithURL(defaultBaseURL, timeout, logger)
}

// NewProviderWithURL creates a Provider with a custom base URL (for testing).
func NewProviderWithURL(baseURL string, timeout time.Duration, logger *slog.Logger) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "wiktionary"),
	}
}

// Slug converts a word or phrase into the URL slug the API expects.
func Slug(term string) string {
	return strings.ReplaceAll(strings.TrimSpace(term), " ", "_")
}

// FetchEntry fetches definitions for the given word or phrase.
// Returns nil, nil if the term is not found (HTTP 404).
func (p *Provider) FetchEntry(ctx context.Context, term string) (*provider.DictionaryResult, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(Slug(term))

	p.log.DebugContext(ctx, "wiktionary request", slog.String("term", term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("wiktionary: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WarnContext(ctx, "wiktionary request failed", slog.String("term", term), slog.String("error", err.Error()))
		return nil, fmt.Errorf("wiktionary: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiktionary: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("wiktionary: read body: %w", err)
	}

	// Response is keyed by language code; sections other than langKey
	// (usages of the same spelling in other languages) are ignored.
	var byLang map[string][]apiUsage
	if err := json.Unmarshal(body, &byLang); err != nil {
		return nil, fmt.Errorf("wiktionary: decode json: %w", err)
	}

	result := mapUsages(term, byLang[langKey])

	p.log.DebugContext(ctx, "wiktionary response",
		slog.String("term", term),
		slog.Int("meanings", len(result.Meanings)),
	)

	return result, nil
}

// mapUsages converts API usages into a provider.DictionaryResult,
// stripping markup from definitions and examples.
func mapUsages(term string, usages []apiUsage) *provider.DictionaryResult {
	result := &provider.DictionaryResult{
		Word:     strings.TrimSpace(term),
		Meanings: []provider.MeaningResult{},
	}

	for _, usage := range usages {
		mr := provider.MeaningResult{
			PartOfSpeech: strings.ToLower(usage.PartOfSpeech),
		}
		for _, def := range usage.Definitions {
			text := StripMarkup(def.Definition)
			if text == "" {
				continue
			}
			dr := provider.DefinitionResult{Text: text}
			for _, ex := range def.Examples {
				if cleaned := StripMarkup(ex); cleaned != "" {
					dr.Example = cleaned
					break
				}
			}
			mr.Definitions = append(mr.Definitions, dr)
		}
		if len(mr.Definitions) > 0 {
			result.Meanings = append(result.Meanings, mr)
		}
	}

	return result
}

// apiUsage mirrors one part-of-speech section of the Wiktionary response.
type apiUsage struct {
	PartOfSpeech string          `json:"partOfSpeech"`
	Language     string          `json:"language"`
	Definitions  []apiDefinition `json:"definitions"`
}

type apiDefinition struct {
	Definition string   `json:"definition"`
	Examples   []string `json:"examples"`
}
