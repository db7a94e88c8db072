package textextract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/leadforge/leadforge/internal/domain"
)

// DOCXExtractor extracts text from docx bytes.
// A docx file is a zip archive; the document body lives in word/document.xml
// with paragraphs as <w:p> and text runs as <w:t>.
type DOCXExtractor struct{}

// Extract reads the document body and returns paragraphs joined by newlines.
func (DOCXExtractor) Extract(_ context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to open docx archive", err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to open docx body", err)
			}
			docXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to read docx body", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "docx archive has no document body")
	}

	return extractDocxText(docXML)
}

func extractDocxText(docXML []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(docXML))

	var sb strings.Builder
	var inText bool
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "malformed docx xml", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
