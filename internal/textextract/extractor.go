// Package textextract converts uploaded document bytes into plain text.
package textextract

import (
	"context"

	"github.com/leadforge/leadforge/internal/domain"
)

// TextExtractor converts raw document bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Registry maps document types to their extractors.
type Registry struct {
	extractors map[domain.DocumentType]TextExtractor
}

// NewRegistry creates a registry with the default extractors wired in.
func NewRegistry() *Registry {
	return &Registry{
		extractors: map[domain.DocumentType]TextExtractor{
			domain.DocumentTypePDF:  &PDFExtractor{},
			domain.DocumentTypeTXT:  &TXTExtractor{},
			domain.DocumentTypeDOCX: &DOCXExtractor{},
		},
	}
}

// Extract routes the bytes to the extractor registered for the document type.
func (r *Registry) Extract(ctx context.Context, docType domain.DocumentType, data []byte) (string, error) {
	ex, ok := r.extractors[docType]
	if !ok {
		return "", domain.ErrUnsupportedDocumentType
	}
	return ex.Extract(ctx, data)
}
