package embedding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadforge/leadforge/internal/domain"
)

type stubAPI struct {
	resp openai.EmbeddingResponse
	err  error
}

func (s *stubAPI) CreateEmbeddings(_ context.Context, _ openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	return s.resp, s.err
}

func vectorOf(dim int, fill float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestOpenAIProviderEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		p := &OpenAIProvider{
			api: &stubAPI{resp: openai.EmbeddingResponse{
				Data: []openai.Embedding{{Index: 0, Embedding: vectorOf(1536, 0.5)}},
			}},
			model:      DefaultModel,
			dimensions: 1536,
		}

		v, err := p.Embed(ctx, "some text")
		require.NoError(t, err)
		assert.Len(t, v, 1536)
	})

	t.Run("empty text", func(t *testing.T) {
		p := NewOpenAIProvider("test-key")
		_, err := p.Embed(ctx, "")
		assert.ErrorIs(t, err, ErrEmptyText)
	})

	t.Run("api error", func(t *testing.T) {
		p := &OpenAIProvider{
			api:        &stubAPI{err: errors.New("rate limited")},
			model:      DefaultModel,
			dimensions: 1536,
		}

		_, err := p.Embed(ctx, "some text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding request failed")
	})

	t.Run("wrong dimensions", func(t *testing.T) {
		p := &OpenAIProvider{
			api: &stubAPI{resp: openai.EmbeddingResponse{
				Data: []openai.Embedding{{Index: 0, Embedding: vectorOf(10, 0.1)}},
			}},
			model:      DefaultModel,
			dimensions: 1536,
		}

		_, err := p.Embed(ctx, "some text")
		assert.ErrorIs(t, err, ErrWrongDimensions)
	})
}

func TestOpenAIProviderEmbedBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves input order by index", func(t *testing.T) {
		p := &OpenAIProvider{
			api: &stubAPI{resp: openai.EmbeddingResponse{
				Data: []openai.Embedding{
					{Index: 1, Embedding: vectorOf(4, 2)},
					{Index: 0, Embedding: vectorOf(4, 1)},
				},
			}},
			model:      DefaultModel,
			dimensions: 4,
		}

		vectors, err := p.EmbedBatch(ctx, []string{"a", "b"})
		require.NoError(t, err)
		require.Len(t, vectors, 2)
		assert.Equal(t, float32(1), vectors[0][0])
		assert.Equal(t, float32(2), vectors[1][0])
	})

	t.Run("count mismatch", func(t *testing.T) {
		p := &OpenAIProvider{
			api: &stubAPI{resp: openai.EmbeddingResponse{
				Data: []openai.Embedding{{Index: 0, Embedding: vectorOf(4, 1)}},
			}},
			model:      DefaultModel,
			dimensions: 4,
		}

		_, err := p.EmbedBatch(ctx, []string{"a", "b"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 2 embeddings")
	})
}

func TestNewOpenAIProviderWithConfig(t *testing.T) {
	p := NewOpenAIProviderWithConfig(Config{APIKey: "test-key"})
	assert.Equal(t, DefaultDimensions, p.Dimensions())

	p = NewOpenAIProviderWithConfig(Config{APIKey: "test-key", Dimensions: 3072, Model: openai.LargeEmbedding3})
	assert.Equal(t, 3072, p.Dimensions())
}

func TestOpenAIProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewOpenAIProviderWithConfig(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL + "/v1",
		Timeout: 20 * time.Millisecond,
	})

	// A stalled server surfaces as an external-call error instead of a hang.
	_, err := p.Embed(context.Background(), "hello")
	require.Error(t, err)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeExternalCall, derr.Code)
}
