package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/leadforge/leadforge/internal/domain"
)

const (
	// DefaultModel is the OpenAI model used for generating embeddings.
	DefaultModel = openai.AdaEmbeddingV2
	// DefaultDimensions is the expected dimension of embeddings from ada-002.
	DefaultDimensions = 1536
)

var (
	// ErrEmptyText is returned when text is empty.
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions.
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
)

// embeddingAPI is the subset of the OpenAI client used here.
type embeddingAPI interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIProvider generates embeddings via the OpenAI embeddings API.
type OpenAIProvider struct {
	api        embeddingAPI
	model      openai.EmbeddingModel
	dimensions int
}

// Config holds optional overrides for the OpenAI provider.
type Config struct {
	APIKey     string
	Model      openai.EmbeddingModel
	Dimensions int

	// BaseURL overrides the API endpoint, used by tests.
	BaseURL string
	// Timeout bounds each embeddings request. Zero leaves the client
	// without a deadline.
	Timeout time.Duration
}

// NewOpenAIProvider creates a provider using defaults.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(Config{APIKey: apiKey})
}

// NewOpenAIProviderWithConfig creates a provider with explicit configuration.
func NewOpenAIProviderWithConfig(cfg Config) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIProvider{
		api:        openai.NewClientWithConfig(cc),
		model:      model,
		dimensions: dimensions,
	}
}

// Dimensions returns the vector dimensionality of the configured model.
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

// Embed generates an embedding for a single text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in a single API call.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}

	resp, err := p.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: p.model,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExternalCall, "embedding request failed", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, domain.NewDomainError(domain.ErrCodeExternalCall,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if len(d.Embedding) != p.dimensions {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, p.dimensions, len(d.Embedding))
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}
