package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/leadforge/leadforge/internal/analyzer"
	"github.com/leadforge/leadforge/internal/api/handlers"
	"github.com/leadforge/leadforge/internal/config"
	"github.com/leadforge/leadforge/internal/jobs"
	"github.com/leadforge/leadforge/internal/kb"
	"github.com/leadforge/leadforge/internal/server"
	"github.com/leadforge/leadforge/internal/storage"
	"github.com/leadforge/leadforge/internal/telemetry"
	"github.com/leadforge/leadforge/internal/vectorindex"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the leadforge API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	store, err := openLeadStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open lead store: %w", err)
	}

	// Vector index: pgvector when a database is configured, flat file
	// index otherwise.
	var index vectorindex.Index
	if cfg.HasDatabase() {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		log.Println("connected to database")

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		index = vectorindex.NewPgVectorIndex(pool)
	} else {
		log.Println("no DATABASE_URL configured, using flat file vector index")
		flat, err := vectorindex.NewFlatIndex(filepath.Join(cfg.DataDir, "chunks.json"))
		if err != nil {
			return fmt.Errorf("failed to open vector index: %w", err)
		}
		index = flat
	}

	// Backing files: S3-compatible store when configured, local
	// filesystem otherwise.
	var objects kb.ObjectStore
	if cfg.HasS3() {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 store: %w", err)
		}
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		objects = s3Store
	} else {
		fsStore, err := storage.NewFSStore(filepath.Join(cfg.DataDir, "documents"))
		if err != nil {
			return fmt.Errorf("failed to create document store: %w", err)
		}
		objects = fsStore
	}

	catalog, err := kb.NewCatalog(filepath.Join(cfg.DataDir, "catalog.json"))
	if err != nil {
		return fmt.Errorf("failed to open document catalog: %w", err)
	}

	chunkCfg := kb.ChunkConfig{
		Size:     cfg.ChunkSize,
		Overlap:  cfg.ChunkOverlap,
		MinChars: kb.DefaultChunkConfig().MinChars,
	}
	kbSvc := kb.NewService(chunkCfg, newEmbedder(cfg), index, catalog, objects)

	a := analyzer.New(newFetcher(cfg), newScorer(cfg), kbSvc, store, profileFromConfig(cfg),
		analyzer.WithMaxBulkURLs(cfg.MaxBulkURLs),
		analyzer.WithBulkDelay(cfg.BulkDelay),
	)

	queue := jobs.NewBulkQueue()
	bulkWorker := jobs.NewWorker(jobs.NewBulkProcessor(queue, a), 2*time.Second)
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go bulkWorker.Start(workerCtx)
	log.Println("bulk analysis worker started")

	if cfg.APIToken == "" {
		log.Println("warning: API_TOKEN not set, authenticated routes are open")
	}

	router := server.NewRouter(server.RouterConfig{
		APIToken:         cfg.APIToken,
		LeadHandler:      handlers.NewLeadHandler(a, store, queue),
		KnowledgeHandler: handlers.NewKnowledgeHandler(kbSvc),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	bulkWorker.Stop()
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	// golang-migrate needs a database/sql handle
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
