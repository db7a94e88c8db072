package textextract

import (
	"bytes"
	"context"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/leadforge/leadforge/internal/domain"
)

// PDFExtractor extracts plain text from PDF bytes.
type PDFExtractor struct{}

// Extract reads all text content from the PDF.
func (PDFExtractor) Extract(_ context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to open pdf", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to extract pdf text", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to read pdf text", err)
	}

	return buf.String(), nil
}
