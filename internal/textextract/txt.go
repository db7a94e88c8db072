package textextract

import (
	"context"
	"unicode/utf8"
)

// TXTExtractor extracts text from plain-text bytes.
// Invalid UTF-8 input is reinterpreted as Latin-1 rather than rejected.
type TXTExtractor struct{}

// Extract returns the bytes as a string, fixing up non-UTF-8 input.
func (TXTExtractor) Extract(_ context.Context, data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	runes := make([]rune, 0, len(data))
	for _, b := range data {
		runes = append(runes, rune(b))
	}
	return string(runes), nil
}
