// Package kb implements the knowledge base: document ingestion, chunking,
// embedding, semantic search and context assembly.
package kb

import (
	"strings"
)

// ChunkConfig controls how documents are split before embedding.
type ChunkConfig struct {
	// Size is the maximum chunk length in runes.
	Size int
	// Overlap is how many runes of the end of one chunk reappear at the
	// start of the next, preserving context across boundaries.
	Overlap int
	// MinChars drops trailing fragments shorter than this.
	MinChars int
}

// DefaultChunkConfig provides the standard chunking parameters.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Size:     1000,
		Overlap:  200,
		MinChars: 50,
	}
}

// SplitText splits text into overlapping chunks, preferring to cut at
// paragraph breaks, then line breaks, then word boundaries, then hard cuts.
// Boundaries are rune positions, never byte offsets.
func SplitText(text string, cfg ChunkConfig) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}
	if cfg.Size <= 0 {
		cfg = DefaultChunkConfig()
	}
	if cfg.Overlap >= cfg.Size {
		cfg.Overlap = cfg.Size / 2
	}

	runes := []rune(clean)
	if len(runes) <= cfg.Size {
		return []string{clean}
	}

	chunks := make([]string, 0, len(runes)/cfg.Size+1)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = cutPoint(runes, start, end)
		}

		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			isLast := end >= len(runes)
			if !isLast || len([]rune(chunk)) >= cfg.MinChars || len(chunks) == 0 {
				chunks = append(chunks, chunk)
			}
		}

		if end >= len(runes) {
			break
		}

		nextStart := end - cfg.Overlap
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return chunks
}

// cutPoint finds the best boundary at or before end, preferring paragraph
// breaks, then newlines, then spaces. Falls back to a hard cut at end.
// A boundary only counts if it keeps the chunk at least half full, so a
// stray early newline does not produce a tiny chunk.
func cutPoint(runes []rune, start, end int) int {
	minCut := start + (end-start)/2

	if cut := lastBoundary(runes, minCut, end, "\n\n"); cut > 0 {
		return cut
	}
	if cut := lastBoundary(runes, minCut, end, "\n"); cut > 0 {
		return cut
	}
	if cut := lastBoundary(runes, minCut, end, " "); cut > 0 {
		return cut
	}
	return end
}

// lastBoundary returns the position just past the last occurrence of sep
// in runes[minCut:end], or 0 if none is found.
func lastBoundary(runes []rune, minCut, end int, sep string) int {
	sepRunes := []rune(sep)
	for i := end - len(sepRunes); i >= minCut; i-- {
		if matchAt(runes, i, sepRunes) {
			return i + len(sepRunes)
		}
	}
	return 0
}

func matchAt(runes []rune, pos int, sep []rune) bool {
	for j, r := range sep {
		if runes[pos+j] != r {
			return false
		}
	}
	return true
}
