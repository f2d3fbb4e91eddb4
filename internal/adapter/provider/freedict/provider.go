package freedict

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/wordfall/wordfall/internal/provider"
)

const defaultBaseURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

// Provider fetches dictionary data from the FreeDictionary API.
// It is the primary tier for single-word lookups.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider with the default FreeDictionary API URL.
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
		log:        logger.With("adapter", "freedict"),
	}
}

// FetchEntry fetches a dictionary entry for the given word.
// Returns nil, nil if the word is not found (HTTP 404).
func (p *Provider) FetchEntry(ctx context.Context, word string) (*provider.DictionaryResult, error) {
	reqURL := p.baseURL + "/" + url.PathEscape(word)

	p.log.DebugContext(ctx, "freedict request", slog.String("word", word))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("freedict: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WarnContext(ctx, "freedict request failed", slog.String("word", word), slog.String("error", err.Error()))
		return nil, fmt.Errorf("freedict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("freedict: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freedict: read body: %w", err)
	}

	var entries []apiEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("freedict: decode json: %w", err)
	}

	result := mapAPIResponse(entries)

	p.log.DebugContext(ctx, "freedict response",
		slog.String("word", word),
		slog.Int("status", resp.StatusCode),
		slog.Int("meanings", len(result.Meanings)),
	)

	return result, nil
}

// mapAPIResponse converts the API entries into a provider.DictionaryResult.
// Multiple entries (different etymologies) are merged: meanings concatenated,
// the first non-empty phonetic text and audio URL win.
func mapAPIResponse(entries []apiEntry) *provider.DictionaryResult {
	result := &provider.DictionaryResult{
		Meanings: []provider.MeaningResult{},
	}

	if len(entries) == 0 {
		return result
	}

	result.Word = entries[0].Word

	for _, entry := range entries {
		for _, meaning := range entry.Meanings {
			mr := provider.MeaningResult{
				PartOfSpeech: meaning.PartOfSpeech,
				Definitions:  make([]provider.DefinitionResult, 0, len(meaning.Definitions)),
			}
			for _, def := range meaning.Definitions {
				mr.Definitions = append(mr.Definitions, provider.DefinitionResult{
					Text:     def.Definition,
					Example:  def.Example,
					Synonyms: def.Synonyms,
				})
			}
			if len(mr.Definitions) > 0 {
				result.Meanings = append(result.Meanings, mr)
			}
		}

		for _, ph := range entry.Phonetics {
			if result.Phonetic == "" && ph.Text != "" {
				result.Phonetic = ph.Text
			}
			if result.AudioURL == "" && ph.Audio != "" {
				result.AudioURL = ph.Audio
			}
		}
	}

	return result
}
