package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// LocalProvider generates deterministic embeddings without external calls.
// Each word is hashed into a bucket of the vector, which is then L2
// normalized so cosine similarity behaves sensibly. Texts sharing words
// score higher than unrelated texts, which is enough for offline use.
type LocalProvider struct {
	dimensions int
}

// NewLocalProvider creates a local provider with the given dimensionality.
func NewLocalProvider(dimensions int) *LocalProvider {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &LocalProvider{dimensions: dimensions}
}

// Dimensions returns the vector dimensionality.
func (p *LocalProvider) Dimensions() int {
	return p.dimensions
}

// Embed generates a deterministic embedding for the text.
func (p *LocalProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	return p.featureHash(text), nil
}

// EmbedBatch generates deterministic embeddings for multiple texts.
func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := p.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (p *LocalProvider) featureHash(text string) []float32 {
	vec := make([]float32, p.dimensions)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		sum := h.Sum32()
		bucket := int(sum % uint32(p.dimensions))
		// Alternate sign based on a high bit to spread mass around zero.
		if sum&0x80000000 != 0 {
			vec[bucket] -= 1
		} else {
			vec[bucket] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
