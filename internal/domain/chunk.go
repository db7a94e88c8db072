package domain

// ChunkMetadata identifies where a chunk came from inside the vector index
type ChunkMetadata struct {
	DocumentID string       `json:"doc_id"`
	Source     string       `json:"source"`
	ChunkIndex int          `json:"chunk_index"`
	DocType    DocumentType `json:"doc_type"`
}

// Chunk is a bounded text segment, the unit of embedding and retrieval.
// Chunks live only inside the vector index and are never shared across
// documents; ChunkIndex defines reconstruction order.
type Chunk struct {
	Text      string
	Embedding []float32
	Metadata  ChunkMetadata
}

// RetrievedChunk is a chunk returned from semantic search together with
// its relevance score. The score scale is owned by the index that produced
// it; callers must only rely on the documented ordering.
type RetrievedChunk struct {
	Text     string        `json:"content"`
	Score    float32       `json:"score"`
	Metadata ChunkMetadata `json:"metadata"`
}
