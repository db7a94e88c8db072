// Package vectorindex stores chunk embeddings and answers similarity queries.
package vectorindex

import (
	"context"

	"github.com/leadforge/leadforge/internal/domain"
)

// Index stores embedded chunks and retrieves the most similar ones.
// Both backends rank by cosine distance d, reported as score = 1/(1+d)
// so that results are comparable regardless of backend.
type Index interface {
	// Add appends chunks to the index.
	Add(ctx context.Context, chunks []domain.Chunk) error
	// DeleteByDocument removes every chunk belonging to a document.
	// Returns the number of chunks removed.
	DeleteByDocument(ctx context.Context, docID string) (int, error)
	// Search returns up to topK chunks ranked by similarity to the query vector.
	Search(ctx context.Context, vector []float32, topK int) ([]domain.RetrievedChunk, error)
	// Count returns the number of chunks currently indexed.
	Count(ctx context.Context) (int, error)
}
