package vectorindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/leadforge/leadforge/internal/domain"
)

// PgVectorIndex stores chunk embeddings in Postgres using pgvector.
type PgVectorIndex struct {
	pool *pgxpool.Pool
}

// NewPgVectorIndex creates a Postgres-backed index on an existing pool.
// The kb_chunks table must already exist (see migrations).
func NewPgVectorIndex(pool *pgxpool.Pool) *PgVectorIndex {
	return &PgVectorIndex{pool: pool}
}

// Add inserts chunks inside a single transaction.
func (idx *PgVectorIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := idx.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range chunks {
		_, err := tx.Exec(ctx,
			`INSERT INTO kb_chunks (doc_id, source, chunk_index, doc_type, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.Metadata.DocumentID,
			c.Metadata.Source,
			c.Metadata.ChunkIndex,
			string(c.Metadata.DocType),
			c.Text,
			pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteByDocument removes every chunk belonging to a document.
func (idx *PgVectorIndex) DeleteByDocument(ctx context.Context, docID string) (int, error) {
	tag, err := idx.pool.Exec(ctx, `DELETE FROM kb_chunks WHERE doc_id = $1`, docID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete chunks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// Search returns up to topK chunks ranked by cosine distance to the vector.
func (idx *PgVectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := idx.pool.Query(ctx,
		`SELECT doc_id, source, chunk_index, doc_type, content,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM kb_chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	results := make([]domain.RetrievedChunk, 0, topK)
	for rows.Next() {
		var rc domain.RetrievedChunk
		var docType string
		if err := rows.Scan(&rc.Metadata.DocumentID, &rc.Metadata.Source, &rc.Metadata.ChunkIndex,
			&docType, &rc.Text, &rc.Score); err != nil {
			return nil, err
		}
		rc.Metadata.DocType = domain.DocumentType(docType)
		results = append(results, rc)
	}

	return results, rows.Err()
}

// Count returns the number of indexed chunks.
func (idx *PgVectorIndex) Count(ctx context.Context) (int, error) {
	var count int
	if err := idx.pool.QueryRow(ctx, `SELECT COUNT(*) FROM kb_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}
