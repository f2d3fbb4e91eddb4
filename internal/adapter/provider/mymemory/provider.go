package mymemory

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
)

const defaultBaseURL = "https://api.mymemory.translated.net"

// Provider translates text through the MyMemory API.
// An echoed result (output equal to input, case-insensitive) means the
// service had no translation; it is reported as an empty string, not an
// error, so the caller can fall through to the next tier.
type Provider struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider with the default MyMemory API URL.
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
		log:        logger.With("adapter", "mymemory"),
	}
}

// Translate translates text using the given language pair (e.g. "zh-CN|en").
// Returns "" with a nil error when no translation is available.
func (p *Provider) Translate(ctx context.Context, text, langPair string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", langPair)
	reqURL := p.baseURL + "/get?" + q.Encode()

	p.log.DebugContext(ctx, "mymemory request",
		slog.String("text", text),
		slog.String("langpair", langPair),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("mymemory: create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.log.WarnContext(ctx, "mymemory request failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("mymemory: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("mymemory: read body: %w", err)
	}

	var payload apiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("mymemory: decode json: %w", err)
	}

	translated := strings.TrimSpace(payload.ResponseData.TranslatedText)
	if translated == "" {
		return "", nil
	}

	// Echo means "no translation available".
	if strings.EqualFold(translated, strings.TrimSpace(text)) {
		p.log.DebugContext(ctx, "mymemory echo", slog.String("text", text))
		return "", nil
	}

	return translated, nil
}

type apiResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus any `json:"responseStatus"`
}
