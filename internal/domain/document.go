package domain

import (
	"fmt"
	"strings"
	"time"
)

// DocumentType represents the format of an ingested knowledge document
type DocumentType string

const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeTXT  DocumentType = "txt"
	DocumentTypeDOCX DocumentType = "docx"
)

const (
	// SummaryMaxChars bounds the stored document summary
	SummaryMaxChars = 200
	// PreviewMaxChars bounds the stored content preview
	PreviewMaxChars = 1000
	// embeddingCostPer1KTokens is the naive ada-002 style cost estimate
	embeddingCostPer1KTokens = 0.0001
)

// Document represents one ingested knowledge base source file
type Document struct {
	ID                    string       `json:"id"`
	Filename              string       `json:"filename"`
	Type                  DocumentType `json:"doc_type"`
	SizeBytes             int64        `json:"file_size"`
	NumChunks             int          `json:"num_chunks"`
	CharCount             int          `json:"char_count"`
	TokenCount            int          `json:"token_count"`
	AvgChunkSize          float64      `json:"avg_chunk_size"`
	Summary               string       `json:"summary"`
	ContentPreview        string       `json:"content_preview"`
	EmbeddingCostEstimate float64      `json:"embedding_cost_estimate"`
	StoragePath           string       `json:"storage_path,omitempty"`
	UploadedAt            time.Time    `json:"uploaded_at"`
}

// DocumentTypeFromFilename maps a filename extension to a DocumentType.
// Returns ErrUnsupportedDocumentType for anything but pdf/txt/docx.
func DocumentTypeFromFilename(filename string) (DocumentType, error) {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return "", ErrUnsupportedDocumentType
	}
	switch strings.ToLower(filename[idx+1:]) {
	case "pdf":
		return DocumentTypePDF, nil
	case "txt":
		return DocumentTypeTXT, nil
	case "docx":
		return DocumentTypeDOCX, nil
	}
	return "", ErrUnsupportedDocumentType
}

// EstimateTokens approximates the token count of text as chars/4
func EstimateTokens(text string) int {
	return len(text) / 4
}

// EstimateEmbeddingCost estimates the USD cost of embedding tokenCount tokens
func EstimateEmbeddingCost(tokenCount int) float64 {
	return float64(tokenCount) / 1000 * embeddingCostPer1KTokens
}

// Summarize produces the bounded, whitespace-flattened document summary
func Summarize(text string) string {
	clean := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= SummaryMaxChars {
		return clean
	}
	return strings.TrimSpace(string(runes[:SummaryMaxChars])) + "..."
}

// Preview produces the bounded content preview kept in the catalog
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewMaxChars {
		return text
	}
	return string(runes[:PreviewMaxChars]) + "..."
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if !isValidDocumentType(d.Type) {
		return fmt.Errorf("document Type is invalid: %s", d.Type)
	}

	return nil
}

// isValidDocumentType checks if a DocumentType is valid
func isValidDocumentType(t DocumentType) bool {
	switch t {
	case DocumentTypePDF, DocumentTypeTXT, DocumentTypeDOCX:
		return true
	}
	return false
}
