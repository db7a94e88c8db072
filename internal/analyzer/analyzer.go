// Package analyzer orchestrates the lead pipeline: scrape, retrieve
// knowledge base context, score, persist.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/score"
	"github.com/leadforge/leadforge/internal/scrape"
	"github.com/leadforge/leadforge/internal/telemetry"
)

const (
	// DefaultMaxBulkURLs bounds one bulk analysis request.
	DefaultMaxBulkURLs = 50
	// DefaultBulkDelay spaces out consecutive bulk analyses.
	DefaultBulkDelay = 1 * time.Second
	// ragQuerySnippet is how much scraped content joins the URL in the
	// knowledge base query.
	ragQuerySnippet = 500
	// ragMaxChunks limits context retrieval per analysis.
	ragMaxChunks = 3
)

// ContextRetriever supplies knowledge base context for scoring prompts.
type ContextRetriever interface {
	ContextForPrompt(ctx context.Context, query string, maxChunks int) (string, error)
}

// LeadSaver persists finished leads.
type LeadSaver interface {
	Add(lead *domain.Lead) (int, error)
}

// Analyzer runs the analysis pipeline. All collaborators are injected;
// retriever may be nil when no knowledge base is configured.
type Analyzer struct {
	fetcher   scrape.Fetcher
	scorer    score.Scorer
	retriever ContextRetriever
	store     LeadSaver
	profile   domain.AnalysisProfile

	maxBulkURLs int
	bulkDelay   time.Duration
}

// Option customizes the analyzer.
type Option func(*Analyzer)

// WithMaxBulkURLs overrides the bulk request cap.
func WithMaxBulkURLs(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxBulkURLs = n
		}
	}
}

// WithBulkDelay overrides the pause between bulk analyses.
func WithBulkDelay(d time.Duration) Option {
	return func(a *Analyzer) {
		if d >= 0 {
			a.bulkDelay = d
		}
	}
}

// New creates an analyzer.
func New(fetcher scrape.Fetcher, scorer score.Scorer, retriever ContextRetriever, store LeadSaver, profile domain.AnalysisProfile, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:     fetcher,
		scorer:      scorer,
		retriever:   retriever,
		store:       store,
		profile:     profile,
		maxBulkURLs: DefaultMaxBulkURLs,
		bulkDelay:   DefaultBulkDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeURL runs the pipeline for one URL and returns the unsaved lead.
// Knowledge base retrieval failure degrades to scoring without context.
func (a *Analyzer) AnalyzeURL(ctx context.Context, rawURL string) (*domain.Lead, error) {
	url, err := scrape.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "analyzer.analyze", telemetry.SpanAttributes{URL: url, Operation: "analyze"})
	defer span.End()

	page, err := a.fetcher.Scrape(ctx, url)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	telemetry.AddBreadcrumb(ctx, "analyzer", fmt.Sprintf("scraped %d characters", len(page.Markdown)))

	ragContext := ""
	if a.retriever != nil {
		query := url + " " + headRunes(page.Markdown, ragQuerySnippet)
		ragContext, err = a.retriever.ContextForPrompt(ctx, query, ragMaxChunks)
		if err != nil {
			log.Printf("analyzer: knowledge base retrieval failed for %s: %v", url, err)
			ragContext = ""
		}
	}

	result, err := a.scorer.Score(ctx, score.Input{
		URL:        url,
		Content:    page.Markdown,
		Profile:    a.profile,
		RAGContext: ragContext,
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return domain.NewLeadFromScore(url, result, page.Markdown, page.Metadata), nil
}

// AnalyzeAndSave runs the pipeline and persists the resulting lead.
func (a *Analyzer) AnalyzeAndSave(ctx context.Context, rawURL string) (*domain.Lead, error) {
	lead, err := a.AnalyzeURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	id, err := a.store.Add(lead)
	if err != nil {
		return nil, err
	}
	lead.ID = id

	log.Printf("analyzer: lead created: %s (score: %d)", lead.CompanyName, lead.Score)
	return lead, nil
}

// BulkOutcome records the result of one URL within a bulk run.
type BulkOutcome struct {
	URL   string       `json:"url"`
	Lead  *domain.Lead `json:"lead,omitempty"`
	Error string       `json:"error,omitempty"`
}

// AnalyzeBulk analyzes each URL in order, saving successes and recording
// failures without aborting the run. A fixed delay separates consecutive
// analyses; cancellation stops before the next URL starts.
func (a *Analyzer) AnalyzeBulk(ctx context.Context, urls []string) ([]BulkOutcome, error) {
	if len(urls) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "no urls to analyze")
	}
	if len(urls) > a.maxBulkURLs {
		return nil, domain.NewDomainError(domain.ErrCodeValidation,
			fmt.Sprintf("too many urls: %d exceeds limit of %d", len(urls), a.maxBulkURLs))
	}

	outcomes := make([]BulkOutcome, 0, len(urls))
	for i, rawURL := range urls {
		if i > 0 && a.bulkDelay > 0 {
			select {
			case <-ctx.Done():
				return outcomes, ctx.Err()
			case <-time.After(a.bulkDelay):
			}
		}
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		lead, err := a.AnalyzeAndSave(ctx, rawURL)
		if err != nil {
			outcomes = append(outcomes, BulkOutcome{URL: rawURL, Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, BulkOutcome{URL: rawURL, Lead: lead})
	}

	return outcomes, nil
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
