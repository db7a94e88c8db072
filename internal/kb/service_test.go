package kb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/embedding"
	"github.com/leadforge/leadforge/internal/vectorindex"
)

type fakeObjectStore struct {
	files  map[string][]byte
	putErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{files: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, key string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.files[key] = data
	return key, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	delete(f.files, key)
	return nil
}

func newTestService(t *testing.T, objects ObjectStore) *Service {
	t.Helper()
	dir := t.TempDir()

	index, err := vectorindex.NewFlatIndex(filepath.Join(dir, "index.json"))
	require.NoError(t, err)
	catalog, err := NewCatalog(filepath.Join(dir, "catalog.json"))
	require.NoError(t, err)

	embedder := embedding.NewLocalProvider(64)
	return NewService(DefaultChunkConfig(), embedder, index, catalog, objects)
}

func TestServiceIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes and catalogs a txt document", func(t *testing.T) {
		svc := newTestService(t, nil)

		text := strings.Repeat("Our ideal customers are mid-size SaaS companies. ", 70)
		doc, err := svc.Ingest(ctx, "icp.txt", []byte(text))
		require.NoError(t, err)

		assert.NotEmpty(t, doc.ID)
		assert.Equal(t, "icp.txt", doc.Filename)
		assert.Equal(t, domain.DocumentTypeTXT, doc.Type)
		assert.Greater(t, doc.NumChunks, 1)
		assert.Equal(t, len(strings.TrimSpace(text)), doc.CharCount)
		assert.Equal(t, doc.CharCount/4, doc.TokenCount)
		assert.Greater(t, doc.EmbeddingCostEstimate, 0.0)
		assert.True(t, strings.HasSuffix(doc.Summary, "..."))
		assert.LessOrEqual(t, len(doc.Summary), domain.SummaryMaxChars+3)

		listed := svc.List()
		require.Len(t, listed, 1)
		assert.Equal(t, doc.ID, listed[0].ID)

		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalDocuments)
		assert.Equal(t, doc.NumChunks, stats.TotalChunks)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		svc := newTestService(t, nil)
		_, err := svc.Ingest(ctx, "data.csv", []byte("a,b,c"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedDocumentType)
	})

	t.Run("too short", func(t *testing.T) {
		svc := newTestService(t, nil)
		_, err := svc.Ingest(ctx, "tiny.txt", []byte("too short"))
		assert.ErrorIs(t, err, domain.ErrDocumentTooShort)
	})

	t.Run("stores backing file when object store present", func(t *testing.T) {
		objects := newFakeObjectStore()
		svc := newTestService(t, objects)

		text := strings.Repeat("We sell developer tooling to platform teams. ", 30)
		doc, err := svc.Ingest(ctx, "pitch.txt", []byte(text))
		require.NoError(t, err)

		assert.NotEmpty(t, doc.StoragePath)
		assert.Contains(t, objects.files, doc.StoragePath)
	})

	t.Run("file store failure aborts ingest", func(t *testing.T) {
		objects := newFakeObjectStore()
		objects.putErr = errors.New("bucket unavailable")
		svc := newTestService(t, objects)

		text := strings.Repeat("We sell developer tooling to platform teams. ", 30)
		_, err := svc.Ingest(ctx, "pitch.txt", []byte(text))
		require.Error(t, err)

		assert.Empty(t, svc.List())
		stats, err := svc.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalChunks)
	})
}

func TestServiceSearch(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	salesText := strings.Repeat("Our sales process targets enterprise accounts with long procurement cycles. ", 20)
	bakeryText := strings.Repeat("The bakery produces sourdough bread and seasonal pastries every morning. ", 20)

	_, err := svc.Ingest(ctx, "sales.txt", []byte(salesText))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, "bakery.txt", []byte(bakeryText))
	require.NoError(t, err)

	t.Run("returns relevant chunks first", func(t *testing.T) {
		results, err := svc.Search(ctx, "enterprise sales procurement", 3)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "sales.txt", results[0].Metadata.Source)
	})

	t.Run("empty query rejected", func(t *testing.T) {
		_, err := svc.Search(ctx, "   ", 3)
		require.Error(t, err)
		var derr *domain.DomainError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, domain.ErrCodeValidation, derr.Code)
	})
}

func TestServiceContextForPrompt(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	t.Run("empty knowledge base yields empty context", func(t *testing.T) {
		out, err := svc.ContextForPrompt(ctx, "anything", 3)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("formats numbered sources", func(t *testing.T) {
		text := strings.Repeat("Our value proposition is faster onboarding for fintech startups. ", 20)
		_, err := svc.Ingest(ctx, "value.txt", []byte(text))
		require.NoError(t, err)

		out, err := svc.ContextForPrompt(ctx, "fintech onboarding", 2)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(out, "[Source 1: value.txt]\n"))
		if strings.Contains(out, "[Source 2:") {
			assert.Contains(t, out, "\n\n[Source 2: value.txt]\n")
		}
	})
}

func TestServiceDelete(t *testing.T) {
	ctx := context.Background()
	objects := newFakeObjectStore()
	svc := newTestService(t, objects)

	text := strings.Repeat("Case study: reduced churn by double digits in two quarters. ", 30)
	doc, err := svc.Ingest(ctx, "case.txt", []byte(text))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, doc.ID))

	assert.Empty(t, svc.List())
	assert.NotContains(t, objects.files, doc.StoragePath)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalChunks)

	err = svc.Delete(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestServiceDeleteUnknown(t *testing.T) {
	svc := newTestService(t, nil)
	err := svc.Delete(context.Background(), "missing-id")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestServiceConcurrentIngest(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := strings.Repeat(fmt.Sprintf("Playbook %d for outbound sequencing. ", i), 20)
			_, err := svc.Ingest(ctx, fmt.Sprintf("playbook-%d.txt", i), []byte(text))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	docs := svc.List()
	assert.Len(t, docs, n)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, stats.TotalDocuments)

	// every catalog entry must have its chunks in the index
	total := 0
	for _, d := range docs {
		total += d.NumChunks
	}
	assert.Equal(t, total, stats.TotalChunks)
}
