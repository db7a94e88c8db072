package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leadforge/leadforge/internal/domain"
)

const (
	defaultFirecrawlBaseURL = "https://api.firecrawl.dev"
	firecrawlMaxRetries     = 2
	firecrawlRetryDelay     = 2 * time.Second
)

// FirecrawlFetcher retrieves page content through the Firecrawl scrape API.
type FirecrawlFetcher struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

// FirecrawlOption customizes the fetcher.
type FirecrawlOption func(*FirecrawlFetcher)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(baseURL string) FirecrawlOption {
	return func(f *FirecrawlFetcher) { f.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) FirecrawlOption {
	return func(f *FirecrawlFetcher) { f.httpClient = c }
}

// WithTimeout bounds each scrape attempt. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) FirecrawlOption {
	return func(f *FirecrawlFetcher) {
		if d > 0 {
			f.httpClient.Timeout = d
		}
	}
}

// WithRetryDelay overrides the delay between retries, used by tests.
func WithRetryDelay(d time.Duration) FirecrawlOption {
	return func(f *FirecrawlFetcher) { f.retryDelay = d }
}

// NewFirecrawlFetcher creates a fetcher using the given API key.
func NewFirecrawlFetcher(apiKey string, opts ...FirecrawlOption) *FirecrawlFetcher {
	f := &FirecrawlFetcher{
		apiKey:     apiKey,
		baseURL:    defaultFirecrawlBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retryDelay: firecrawlRetryDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type firecrawlRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type firecrawlResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string         `json:"markdown"`
		Metadata map[string]any `json:"metadata"`
	} `json:"data"`
}

// TestConnection verifies the API key by scraping a known-good page.
func (f *FirecrawlFetcher) TestConnection(ctx context.Context) error {
	if _, err := f.Scrape(ctx, "https://example.com"); err != nil {
		return fmt.Errorf("firecrawl connection check failed: %w", err)
	}
	return nil
}

// Scrape fetches the URL, retrying on rate limits and server errors.
func (f *FirecrawlFetcher) Scrape(ctx context.Context, url string) (*Page, error) {
	var lastErr error
	for attempt := 0; attempt <= firecrawlMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.retryDelay):
			}
		}

		page, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func (f *FirecrawlFetcher) fetchOnce(ctx context.Context, url string) (*Page, bool, error) {
	body, err := json.Marshal(firecrawlRequest{URL: url, Formats: []string{"markdown"}})
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, true, domain.NewDomainErrorWithCause(domain.ErrCodeExternalCall, "scrape request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, true, domain.NewDomainErrorWithCause(domain.ErrCodeExternalCall, "failed to read scrape response", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, domain.NewDomainError(domain.ErrCodeExternalCall, "scrape rate limited")
	case resp.StatusCode >= 500:
		return nil, true, domain.NewDomainError(domain.ErrCodeExternalCall,
			fmt.Sprintf("scrape service error (status %d)", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, false, domain.NewDomainError(domain.ErrCodeExternalCall,
			fmt.Sprintf("scrape failed (status %d)", resp.StatusCode))
	}

	var parsed firecrawlResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false, domain.NewDomainErrorWithCause(domain.ErrCodeExternalCall, "malformed scrape response", err)
	}
	if !parsed.Success {
		msg := parsed.Error
		if msg == "" {
			msg = "scrape reported failure"
		}
		return nil, false, domain.NewDomainError(domain.ErrCodeExternalCall, msg)
	}
	if parsed.Data.Markdown == "" {
		return nil, false, domain.ErrScrapeFailed
	}

	metadata := make(map[string]string, len(parsed.Data.Metadata))
	for k, v := range parsed.Data.Metadata {
		if s, ok := v.(string); ok {
			metadata[k] = s
		}
	}

	return &Page{Markdown: parsed.Data.Markdown, Metadata: metadata}, false, nil
}
