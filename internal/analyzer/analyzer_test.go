package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/score"
	"github.com/leadforge/leadforge/internal/scrape"
)

type memorySaver struct {
	mu    sync.Mutex
	leads []domain.Lead
	err   error
}

func (m *memorySaver) Add(lead *domain.Lead) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.leads = append(m.leads, *lead)
	return len(m.leads), nil
}

type failingFetcher struct {
	failOn string
	inner  scrape.Fetcher
}

func (f *failingFetcher) Scrape(ctx context.Context, url string) (*scrape.Page, error) {
	if url == f.failOn {
		return nil, domain.ErrScrapeFailed
	}
	return f.inner.Scrape(ctx, url)
}

type recordingRetriever struct {
	query   string
	context string
	err     error
}

func (r *recordingRetriever) ContextForPrompt(_ context.Context, query string, _ int) (string, error) {
	r.query = query
	return r.context, r.err
}

type recordingScorer struct {
	lastInput score.Input
	inner     score.Scorer
}

func (s *recordingScorer) Score(ctx context.Context, in score.Input) (*domain.ScoreResult, error) {
	s.lastInput = in
	return s.inner.Score(ctx, in)
}

func testProfile() domain.AnalysisProfile {
	return domain.AnalysisProfile{
		Website:          "https://us.example.com",
		ValueProposition: "Faster onboarding",
		ICP:              "Mid-size SaaS companies",
	}
}

func newMockAnalyzer(store LeadSaver, retriever ContextRetriever, opts ...Option) *Analyzer {
	return New(scrape.NewMockFetcher(), score.NewMockScorer(), retriever, store, testProfile(), opts...)
}

func TestAnalyzeURL(t *testing.T) {
	ctx := context.Background()

	t.Run("produces a valid lead", func(t *testing.T) {
		a := newMockAnalyzer(&memorySaver{}, nil)

		lead, err := a.AnalyzeURL(ctx, "example.com")
		require.NoError(t, err)

		assert.Equal(t, "https://example.com", lead.URL)
		assert.NotEmpty(t, lead.CompanyName)
		assert.NotEqual(t, "Unknown", lead.CompanyName)
		require.NoError(t, domain.ValidateLead(lead))
		assert.LessOrEqual(t, len(lead.ScrapedContent), domain.MaxScrapedSnapshot)
		assert.Zero(t, lead.ID)
	})

	t.Run("deterministic with mocks", func(t *testing.T) {
		a := newMockAnalyzer(&memorySaver{}, nil)

		first, err := a.AnalyzeURL(ctx, "https://example.com")
		require.NoError(t, err)
		second, err := a.AnalyzeURL(ctx, "https://example.com")
		require.NoError(t, err)

		assert.Equal(t, first.Score, second.Score)
		assert.Equal(t, first.CompanyName, second.CompanyName)
		assert.Equal(t, first.RecommendedAction, second.RecommendedAction)
	})

	t.Run("invalid url", func(t *testing.T) {
		a := newMockAnalyzer(&memorySaver{}, nil)
		_, err := a.AnalyzeURL(ctx, "javascript:alert(1)")
		assert.ErrorIs(t, err, domain.ErrInvalidURL)
	})

	t.Run("queries knowledge base with url and content head", func(t *testing.T) {
		retriever := &recordingRetriever{context: "[Source 1: icp.txt]\nWe target SaaS."}
		scorer := &recordingScorer{inner: score.NewMockScorer()}
		a := New(scrape.NewMockFetcher(), scorer, retriever, &memorySaver{}, testProfile())

		_, err := a.AnalyzeURL(ctx, "https://example.com")
		require.NoError(t, err)

		assert.Contains(t, retriever.query, "https://example.com")
		assert.Greater(t, len(retriever.query), len("https://example.com"))
		assert.Equal(t, retriever.context, scorer.lastInput.RAGContext)
	})

	t.Run("retrieval failure is non-fatal", func(t *testing.T) {
		retriever := &recordingRetriever{err: errors.New("index unavailable")}
		scorer := &recordingScorer{inner: score.NewMockScorer()}
		a := New(scrape.NewMockFetcher(), scorer, retriever, &memorySaver{}, testProfile())

		lead, err := a.AnalyzeURL(ctx, "https://example.com")
		require.NoError(t, err)
		assert.NotNil(t, lead)
		assert.Empty(t, scorer.lastInput.RAGContext)
	})

	t.Run("scrape failure propagates", func(t *testing.T) {
		fetcher := &failingFetcher{failOn: "https://broken.com", inner: scrape.NewMockFetcher()}
		a := New(fetcher, score.NewMockScorer(), nil, &memorySaver{}, testProfile())

		_, err := a.AnalyzeURL(ctx, "https://broken.com")
		assert.ErrorIs(t, err, domain.ErrScrapeFailed)
	})
}

func TestAnalyzeAndSave(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and assigns id", func(t *testing.T) {
		store := &memorySaver{}
		a := newMockAnalyzer(store, nil)

		lead, err := a.AnalyzeAndSave(ctx, "https://example.com")
		require.NoError(t, err)

		assert.Equal(t, 1, lead.ID)
		require.Len(t, store.leads, 1)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		store := &memorySaver{err: errors.New("disk full")}
		a := newMockAnalyzer(store, nil)

		_, err := a.AnalyzeAndSave(ctx, "https://example.com")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestAnalyzeBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("continues past failures", func(t *testing.T) {
		store := &memorySaver{}
		fetcher := &failingFetcher{failOn: "https://broken.com", inner: scrape.NewMockFetcher()}
		a := New(fetcher, score.NewMockScorer(), nil, store, testProfile(), WithBulkDelay(0))

		outcomes, err := a.AnalyzeBulk(ctx, []string{"https://a.com", "https://broken.com", "https://c.com"})
		require.NoError(t, err)
		require.Len(t, outcomes, 3)

		assert.NotNil(t, outcomes[0].Lead)
		assert.Empty(t, outcomes[0].Error)

		assert.Nil(t, outcomes[1].Lead)
		assert.NotEmpty(t, outcomes[1].Error)

		assert.NotNil(t, outcomes[2].Lead)
		assert.Len(t, store.leads, 2)
	})

	t.Run("empty input rejected", func(t *testing.T) {
		a := newMockAnalyzer(&memorySaver{}, nil)
		_, err := a.AnalyzeBulk(ctx, nil)
		require.Error(t, err)
	})

	t.Run("cap enforced", func(t *testing.T) {
		a := newMockAnalyzer(&memorySaver{}, nil, WithMaxBulkURLs(2))
		_, err := a.AnalyzeBulk(ctx, []string{"https://a.com", "https://b.com", "https://c.com"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds limit")
	})

	t.Run("cancellation stops between urls", func(t *testing.T) {
		store := &memorySaver{}
		a := newMockAnalyzer(store, nil, WithBulkDelay(50*time.Millisecond))

		cancelCtx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		outcomes, err := a.AnalyzeBulk(cancelCtx, []string{"https://a.com", "https://b.com", "https://c.com"})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, len(outcomes), 3)
	})
}

func TestDemoDataProvider(t *testing.T) {
	ctx := context.Background()
	store := &memorySaver{}

	provider := NewDemoDataProvider(store, testProfile())
	leads, err := provider.Seed(ctx)
	require.NoError(t, err)

	assert.Len(t, leads, 5)
	assert.Len(t, store.leads, 5)
	for _, lead := range leads {
		require.NoError(t, domain.ValidateLead(lead))
		assert.NotZero(t, lead.ID)
	}

	t.Run("deterministic", func(t *testing.T) {
		again := NewDemoDataProvider(&memorySaver{}, testProfile())
		leads2, err := again.Seed(ctx)
		require.NoError(t, err)
		for i := range leads {
			assert.Equal(t, leads[i].Score, leads2[i].Score)
			assert.Equal(t, leads[i].CompanyName, leads2[i].CompanyName)
		}
	})
}
