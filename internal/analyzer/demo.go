package analyzer

import (
	"context"
	"fmt"

	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/score"
	"github.com/leadforge/leadforge/internal/scrape"
)

// demoURLs are the sites seeded by the demo provider. They cover the
// mock fixture companies and several score bands.
var demoURLs = []string{
	"https://techflow-solutions.example.com",
	"https://datasync-pro.example.com",
	"https://customerfirst-ai.example.com",
	"https://securevault-systems.example.com",
	"https://growthmetrics.example.com",
}

// DemoDataProvider seeds a lead store with deterministic sample leads.
// It always runs the mock pipeline, regardless of which fetcher and
// scorer the rest of the application uses.
type DemoDataProvider struct {
	analyzer *Analyzer
}

// NewDemoDataProvider creates a provider writing to the given store.
func NewDemoDataProvider(store LeadSaver, profile domain.AnalysisProfile) *DemoDataProvider {
	return &DemoDataProvider{
		analyzer: New(scrape.NewMockFetcher(), score.NewMockScorer(), nil, store, profile, WithBulkDelay(0)),
	}
}

// Seed analyzes the demo URLs and persists the resulting leads.
// Returns the leads created.
func (p *DemoDataProvider) Seed(ctx context.Context) ([]*domain.Lead, error) {
	leads := make([]*domain.Lead, 0, len(demoURLs))
	for _, u := range demoURLs {
		lead, err := p.analyzer.AnalyzeAndSave(ctx, u)
		if err != nil {
			return leads, fmt.Errorf("failed to seed demo lead for %s: %w", u, err)
		}
		leads = append(leads, lead)
	}
	return leads, nil
}
