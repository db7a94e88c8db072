// Package score qualifies scraped company content into a structured
// lead assessment, via an LLM or a deterministic offline scorer.
package score

import (
	"context"

	"github.com/leadforge/leadforge/internal/domain"
)

// MaxContentLength bounds how much scraped content is sent for scoring.
// Longer content is truncated head-first, keeping the start of the page.
const MaxContentLength = 8000

// Input carries everything the scorer needs for one assessment.
type Input struct {
	// URL is the normalized URL being analyzed.
	URL string
	// Content is the scraped page content in markdown.
	Content string
	// Profile describes the selling company.
	Profile domain.AnalysisProfile
	// RAGContext is optional knowledge base context, already formatted.
	RAGContext string
}

// Scorer produces a validated lead assessment for scraped content.
type Scorer interface {
	Score(ctx context.Context, in Input) (*domain.ScoreResult, error)
}

// truncateContent bounds content to MaxContentLength runes, keeping the head.
func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxContentLength {
		return content
	}
	return string(runes[:MaxContentLength])
}
