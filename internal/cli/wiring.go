// Package cli implements the leadforged commands.
package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leadforge/leadforge/internal/analyzer"
	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/domain"
	"github.com/leadforge/leadforge/internal/embedding"
	"github.com/leadforge/leadforge/internal/kb"
	"github.com/leadforge/leadforge/internal/leadstore"
	"github.com/leadforge/leadforge/internal/score"
	"github.com/leadforge/leadforge/internal/scrape"
	"github.com/leadforge/leadforge/internal/storage"
	"github.com/leadforge/leadforge/internal/vectorindex"
)

func profileFromConfig(cfg *config.Config) domain.AnalysisProfile {
	return domain.AnalysisProfile{
		Website:          cfg.ProfileWebsite,
		ValueProposition: cfg.ProfileValueProposition,
		ICP:              cfg.ProfileICP,
	}
}

func openLeadStore(cfg *config.Config) (*leadstore.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return leadstore.New(filepath.Join(cfg.DataDir, "leads.json"),
		leadstore.WithThreshold(cfg.QualifiedThreshold))
}

// newFetcher picks the real Firecrawl client when credentials are present
// and falls back to the deterministic mock otherwise.
func newFetcher(cfg *config.Config) scrape.Fetcher {
	if cfg.HasFirecrawl() {
		return scrape.NewFirecrawlFetcher(cfg.FirecrawlAPIKey,
			scrape.WithTimeout(cfg.ScrapeTimeout))
	}
	log.Println("no Firecrawl API key configured, using mock fetcher")
	return scrape.NewMockFetcher()
}

func newScorer(cfg *config.Config) score.Scorer {
	if cfg.HasOpenAI() {
		return score.NewOpenAIScorer(cfg.OpenAIAPIKey,
			score.WithTimeout(cfg.ScoreTimeout))
	}
	log.Println("no OpenAI API key configured, using mock scorer")
	return score.NewMockScorer()
}

func newEmbedder(cfg *config.Config) embedding.Provider {
	if cfg.HasOpenAI() {
		return embedding.NewOpenAIProviderWithConfig(embedding.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Timeout: cfg.EmbedTimeout,
		})
	}
	return embedding.NewLocalProvider(embedding.DefaultDimensions)
}

// newKnowledgeBase assembles the knowledge base on local components. The
// serve command wires its own instance so it can swap in pgvector and S3.
func newKnowledgeBase(cfg *config.Config) (*kb.Service, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	index, err := vectorindex.NewFlatIndex(filepath.Join(cfg.DataDir, "chunks.json"))
	if err != nil {
		return nil, err
	}
	catalog, err := kb.NewCatalog(filepath.Join(cfg.DataDir, "catalog.json"))
	if err != nil {
		return nil, err
	}
	objects, err := storage.NewFSStore(filepath.Join(cfg.DataDir, "documents"))
	if err != nil {
		return nil, err
	}

	chunkCfg := kb.ChunkConfig{
		Size:     cfg.ChunkSize,
		Overlap:  cfg.ChunkOverlap,
		MinChars: kb.DefaultChunkConfig().MinChars,
	}
	return kb.NewService(chunkCfg, newEmbedder(cfg), index, catalog, objects), nil
}

func newAnalyzer(cfg *config.Config, store *leadstore.Store) (*analyzer.Analyzer, error) {
	kbSvc, err := newKnowledgeBase(cfg)
	if err != nil {
		return nil, err
	}
	return analyzer.New(newFetcher(cfg), newScorer(cfg), kbSvc, store, profileFromConfig(cfg),
		analyzer.WithMaxBulkURLs(cfg.MaxBulkURLs),
		analyzer.WithBulkDelay(cfg.BulkDelay),
	), nil
}
