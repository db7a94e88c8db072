package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentTypeFromFilename(t *testing.T) {
	cases := []struct {
		filename string
		want     DocumentType
		wantErr  bool
	}{
		{"playbook.pdf", DocumentTypePDF, false},
		{"notes.TXT", DocumentTypeTXT, false},
		{"brief.docx", DocumentTypeDOCX, false},
		{"archive.tar.txt", DocumentTypeTXT, false},
		{"image.png", "", true},
		{"noextension", "", true},
		{"", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			got, err := DocumentTypeFromFilename(tc.filename)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedDocumentType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 750, EstimateTokens(strings.Repeat("x", 3000)))
}

func TestSummarize(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello world", Summarize("hello\nworld"))
	})

	t.Run("long text truncated with ellipsis", func(t *testing.T) {
		got := Summarize(strings.Repeat("a", 500))
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.LessOrEqual(t, len(got), SummaryMaxChars+3)
	})

	t.Run("multibyte text truncates on rune boundaries", func(t *testing.T) {
		got := Summarize(strings.Repeat("é", SummaryMaxChars+50))
		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}

func TestPreview(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "hello", Preview("hello"))
	})

	t.Run("multibyte text truncates on rune boundaries", func(t *testing.T) {
		got := Preview(strings.Repeat("û", PreviewMaxChars+10))
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, PreviewMaxChars+3, utf8.RuneCountInString(got))
	})
}

func TestValidateDocument(t *testing.T) {
	valid := &Document{ID: "doc-1", Filename: "a.txt", Type: DocumentTypeTXT}
	assert.NoError(t, ValidateDocument(valid))
	assert.Error(t, ValidateDocument(nil))
	assert.Error(t, ValidateDocument(&Document{Filename: "a.txt", Type: DocumentTypeTXT}))
	assert.Error(t, ValidateDocument(&Document{ID: "doc-1", Type: DocumentTypeTXT}))
	assert.Error(t, ValidateDocument(&Document{ID: "doc-1", Filename: "a.csv", Type: "csv"}))
}

func TestDocumentJSONRoundTrip(t *testing.T) {
	doc := &Document{
		ID:                    "abc-123",
		Filename:              "strategy.pdf",
		Type:                  DocumentTypePDF,
		SizeBytes:             2048,
		NumChunks:             4,
		CharCount:             3000,
		TokenCount:            750,
		AvgChunkSize:          750.0,
		Summary:               "summary",
		ContentPreview:        "preview",
		EmbeddingCostEstimate: 0.000075,
		StoragePath:           "documents/abc-123_strategy.pdf",
		UploadedAt:            time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC),
	}

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded Document
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *doc, decoded)
}
