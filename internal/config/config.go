package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// DataDir holds the lead store, document catalog, backing files and
	// the flat vector index.
	DataDir string `envconfig:"DATA_DIR" default:"data"`

	// DatabaseURL switches the vector index to pgvector when set.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	APIToken string `envconfig:"API_TOKEN"`

	FirecrawlAPIKey string `envconfig:"FIRECRAWL_API_KEY"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"leadforge-documents"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Operator profile used for every analysis
	ProfileWebsite          string `envconfig:"PROFILE_WEBSITE"`
	ProfileValueProposition string `envconfig:"PROFILE_VALUE_PROPOSITION"`
	ProfileICP              string `envconfig:"PROFILE_ICP"`

	ScrapeTimeout time.Duration `envconfig:"SCRAPE_TIMEOUT" default:"60s"`
	ScoreTimeout  time.Duration `envconfig:"SCORE_TIMEOUT" default:"60s"`
	EmbedTimeout  time.Duration `envconfig:"EMBED_TIMEOUT" default:"30s"`

	// Fixed delay applied between consecutive bulk analyses
	BulkDelay   time.Duration `envconfig:"BULK_DELAY" default:"1s"`
	MaxBulkURLs int           `envconfig:"MAX_BULK_URLS" default:"50"`

	QualifiedThreshold int `envconfig:"QUALIFIED_THRESHOLD" default:"70"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("LEADFORGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// HasFirecrawl reports whether real scraping credentials are configured.
// Keys shorter than a plausible token length are treated as absent.
func (c *Config) HasFirecrawl() bool {
	return len(c.FirecrawlAPIKey) > 10
}

func (c *Config) HasOpenAI() bool {
	return len(c.OpenAIAPIKey) > 10
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
