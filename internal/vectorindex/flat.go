package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/leadforge/leadforge/internal/domain"
)

// storedChunk is the on-disk representation of an indexed chunk.
type storedChunk struct {
	Text      string               `json:"text"`
	Embedding []float32            `json:"embedding"`
	Metadata  domain.ChunkMetadata `json:"metadata"`
}

// FlatIndex is an exact-search in-process index backed by a JSON file.
// Every mutation rewrites the file via a temp file and atomic rename,
// so a crash mid-write leaves the previous state intact.
type FlatIndex struct {
	mu     sync.RWMutex
	path   string
	chunks []storedChunk
}

// NewFlatIndex loads (or initializes) a flat index at the given file path.
// A missing or corrupted file yields an empty index; corruption is logged
// and the file survives on disk until the next successful write.
func NewFlatIndex(path string) (*FlatIndex, error) {
	idx := &FlatIndex{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vector index: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &idx.chunks); err != nil {
			log.Printf("vectorindex: %v at %s, starting empty: %v", domain.ErrCorruptStore, path, err)
			idx.chunks = nil
		}
	}
	return idx, nil
}

// Add appends chunks and persists the index.
func (idx *FlatIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	before := len(idx.chunks)
	for _, c := range chunks {
		idx.chunks = append(idx.chunks, storedChunk{
			Text:      c.Text,
			Embedding: c.Embedding,
			Metadata:  c.Metadata,
		})
	}

	if err := idx.persist(); err != nil {
		idx.chunks = idx.chunks[:before]
		return err
	}
	return nil
}

// DeleteByDocument removes all chunks whose metadata matches the document id.
func (idx *FlatIndex) DeleteByDocument(_ context.Context, docID string) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	kept := idx.chunks[:0:0]
	removed := 0
	for _, c := range idx.chunks {
		if c.Metadata.DocumentID == docID {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	if removed == 0 {
		return 0, nil
	}

	previous := idx.chunks
	idx.chunks = kept
	if err := idx.persist(); err != nil {
		idx.chunks = previous
		return 0, err
	}
	return removed, nil
}

// Search returns up to topK chunks ranked by cosine similarity to the vector.
func (idx *FlatIndex) Search(_ context.Context, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = 5
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	results := make([]domain.RetrievedChunk, 0, len(idx.chunks))
	for _, c := range idx.chunks {
		if len(c.Embedding) != len(vector) {
			continue
		}
		distance := 1 - cosineSimilarity(vector, c.Embedding)
		results = append(results, domain.RetrievedChunk{
			Text:     c.Text,
			Score:    float32(1.0 / (1.0 + distance)),
			Metadata: c.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of indexed chunks.
func (idx *FlatIndex) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks), nil
}

// persist writes the index to disk atomically. Caller must hold the lock.
func (idx *FlatIndex) persist() error {
	data, err := json.Marshal(idx.chunks)
	if err != nil {
		return fmt.Errorf("failed to encode vector index: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(idx.path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp index file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write vector index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp index file: %w", err)
	}

	if err := os.Rename(tmpName, idx.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace vector index: %w", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
