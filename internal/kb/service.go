package kb

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/embedding"
	"github.com/leadforge/leadforge/internal/telemetry"
	"github.com/leadforge/leadforge/internal/textextract"
	"github.com/leadforge/leadforge/internal/vectorindex"
)

// ObjectStore persists raw document files. Implementations live in
// internal/storage; a nil store disables file retention.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service coordinates document ingestion and retrieval for the knowledge base.
type Service struct {
	ingestMu  sync.Mutex
	chunkCfg  ChunkConfig
	extractor *textextract.Registry
	embedder  embedding.Provider
	index     vectorindex.Index
	catalog   *Catalog
	objects   ObjectStore
}

// NewService creates a knowledge base service. objects may be nil.
func NewService(cfg ChunkConfig, embedder embedding.Provider, index vectorindex.Index, catalog *Catalog, objects ObjectStore) *Service {
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	return &Service{
		chunkCfg:  cfg,
		extractor: textextract.NewRegistry(),
		embedder:  embedder,
		index:     index,
		catalog:   catalog,
		objects:   objects,
	}
}

// Ingest extracts, chunks, embeds and indexes one document.
// Either the document is fully indexed and cataloged, or nothing is kept.
// Ingests are serialized so index and catalog writes stay paired.
func (s *Service) Ingest(ctx context.Context, filename string, data []byte) (*domain.Document, error) {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	ctx, span := telemetry.StartSpan(ctx, "kb.ingest", telemetry.SpanAttributes{Operation: "ingest"})
	defer span.End()

	docType, err := domain.DocumentTypeFromFilename(filename)
	if err != nil {
		return nil, err
	}

	text, err := s.extractor.Extract(ctx, docType, data)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < s.chunkCfg.MinChars {
		return nil, domain.ErrDocumentTooShort
	}

	pieces := SplitText(text, s.chunkCfg)
	if len(pieces) == 0 {
		return nil, domain.ErrDocumentTooShort
	}

	vectors, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	docID := uuid.New().String()
	chunks := make([]domain.Chunk, len(pieces))
	totalChunkChars := 0
	for i, p := range pieces {
		totalChunkChars += len(p)
		chunks[i] = domain.Chunk{
			Text:      p,
			Embedding: vectors[i],
			Metadata: domain.ChunkMetadata{
				DocumentID: docID,
				Source:     filename,
				ChunkIndex: i,
				DocType:    docType,
			},
		}
	}

	storagePath := ""
	if s.objects != nil {
		storagePath, err = s.objects.Put(ctx, docID+"/"+filename, data)
		if err != nil {
			span.SetError(err)
			return nil, fmt.Errorf("failed to store document file: %w", err)
		}
	}

	if err := s.index.Add(ctx, chunks); err != nil {
		span.SetError(err)
		s.discardFile(ctx, storagePath)
		return nil, err
	}

	tokens := domain.EstimateTokens(text)
	doc := domain.Document{
		ID:                    docID,
		Filename:              filename,
		Type:                  docType,
		SizeBytes:             int64(len(data)),
		NumChunks:             len(chunks),
		CharCount:             len(text),
		TokenCount:            tokens,
		AvgChunkSize:          float64(totalChunkChars) / float64(len(chunks)),
		Summary:               domain.Summarize(text),
		ContentPreview:        domain.Preview(text),
		EmbeddingCostEstimate: domain.EstimateEmbeddingCost(tokens),
		StoragePath:           storagePath,
		UploadedAt:            time.Now().UTC(),
	}

	if err := s.catalog.Add(doc); err != nil {
		span.SetError(err)
		if _, derr := s.index.DeleteByDocument(ctx, docID); derr != nil {
			log.Printf("kb: failed to roll back chunks for %s: %v", docID, derr)
		}
		s.discardFile(ctx, storagePath)
		return nil, err
	}

	telemetry.AddBreadcrumb(ctx, "kb", fmt.Sprintf("ingested %s (%d chunks)", filename, len(chunks)))
	return &doc, nil
}

// Search embeds the query and returns the most relevant chunks.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	ctx, span := telemetry.StartSpan(ctx, "kb.search", telemetry.SpanAttributes{Operation: "search"})
	defer span.End()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "search query cannot be empty")
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return s.index.Search(ctx, vector, topK)
}

// ContextForPrompt retrieves relevant chunks and formats them as a context
// block for an LLM prompt. Returns an empty string when nothing is indexed.
func (s *Service) ContextForPrompt(ctx context.Context, query string, maxChunks int) (string, error) {
	results, err := s.Search(ctx, query, maxChunks)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[Source %d: %s]\n%s", i+1, r.Metadata.Source, r.Text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Get returns the cataloged document with the given id.
func (s *Service) Get(id string) (*domain.Document, error) {
	return s.catalog.Get(id)
}

// List returns all cataloged documents.
func (s *Service) List() []domain.Document {
	return s.catalog.List()
}

// Delete removes a document from the catalog and its chunks from the index.
// Backing file removal is best effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	doc, err := s.catalog.Remove(id)
	if err != nil {
		return err
	}

	if _, err := s.index.DeleteByDocument(ctx, id); err != nil {
		return err
	}

	s.discardFile(ctx, doc.StoragePath)
	return nil
}

// Stats summarizes the knowledge base. The index is the source of truth
// for the chunk count.
type Stats struct {
	TotalDocuments      int                         `json:"total_documents"`
	TotalChunks         int                         `json:"total_chunks"`
	TotalCharacters     int                         `json:"total_characters"`
	TotalTokens         int                         `json:"total_tokens"`
	EstimatedCost       float64                     `json:"estimated_cost"`
	DocumentsByType     map[domain.DocumentType]int `json:"documents_by_type"`
	AverageChunksPerDoc float64                     `json:"avg_chunks_per_doc"`
}

// Stats computes aggregate statistics over the knowledge base.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	chunkCount, err := s.index.Count(ctx)
	if err != nil {
		return nil, err
	}

	docs := s.catalog.List()
	stats := &Stats{
		TotalDocuments:  len(docs),
		TotalChunks:     chunkCount,
		DocumentsByType: make(map[domain.DocumentType]int),
	}
	for _, d := range docs {
		stats.TotalCharacters += d.CharCount
		stats.TotalTokens += d.TokenCount
		stats.EstimatedCost += d.EmbeddingCostEstimate
		stats.DocumentsByType[d.Type]++
	}
	if len(docs) > 0 {
		stats.AverageChunksPerDoc = float64(chunkCount) / float64(len(docs))
	}
	return stats, nil
}

func (s *Service) discardFile(ctx context.Context, storagePath string) {
	if s.objects == nil || storagePath == "" {
		return
	}
	if err := s.objects.Delete(ctx, storagePath); err != nil {
		log.Printf("kb: failed to remove stored file %s: %v", storagePath, err)
	}
}
