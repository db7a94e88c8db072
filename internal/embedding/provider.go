// Package embedding generates vector embeddings for text.
package embedding

import "context"

// Provider defines the interface for embedding generation.
type Provider interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embedding vectors for multiple texts in one call.
	// The result has one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the dimensionality of vectors produced by this provider.
	Dimensions() int
}
