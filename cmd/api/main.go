package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dvloznov/finora/internal/advisor"
	"github.com/dvloznov/finora/internal/api/handlers"
	"github.com/dvloznov/finora/internal/api/middleware"
	"github.com/dvloznov/finora/internal/config"
	"github.com/dvloznov/finora/internal/gcs"
	"github.com/dvloznov/finora/internal/jobs"
	"github.com/dvloznov/finora/internal/jobs/inmemory"
	"github.com/dvloznov/finora/internal/logger"
	"github.com/dvloznov/finora/internal/pdftext"
	"github.com/dvloznov/finora/internal/pipeline"
)

func main() {
	// Parse command-line flags
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		envFile    = flag.String("env-file", ".env", "Path to a .env file (ignored if missing)")
		port       = flag.Int("port", 0, "HTTP server port (overrides config and PORT)")
		bucket     = flag.String("bucket", "", "GCS bucket holding statements (overrides config and GCS_BUCKET)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Failed to load config")
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = *port
		case "bucket":
			cfg.Storage.Bucket = *bucket
		}
	})

	// Initialize logger
	log, err := logger.NewWithLevel(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		boot := logger.New()
		boot.Fatal().Err(err).Msg("Invalid log settings")
	}

	ctx := logger.WithContext(context.Background(), log)

	ingestor := pipeline.NewIngestor(pdftext.NewExtractor(cfg.PDF.Concurrency))

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs.QueueSize, jobStore)
	jobQueue.SetWorkerCount(cfg.Jobs.Workers)
	jobQueue.SetMaxRetries(cfg.Jobs.MaxRetries)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	var jobsHandler *handlers.JobsHandler
	if cfg.Storage.Bucket == "" {
		log.Warn().Msg("No GCS bucket configured - asynchronous ingestion will be disabled")
	} else {
		source, err := gcs.NewClient(ctx, cfg.MaxUploadBytes(), gcs.CredentialsOptions(cfg.Storage.CredentialsFile)...)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer source.Close()

		// Start job consumer in background
		log.Info().Str("bucket", cfg.Storage.Bucket).Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobs.NewIngestHandler(source, ingestor)); err != nil {
			log.Fatal().Err(err).Msg("Failed to start job worker")
		}
		jobsHandler = handlers.NewJobsHandler(jobQueue, jobStore, cfg.Storage.Bucket, log)
	}

	var advisorHandler *handlers.AdvisorHandler
	gen, err := advisor.NewGenAIGenerator(ctx, cfg.Advisor.Model)
	if err != nil {
		log.Warn().Err(err).Msg("Gen AI client unavailable - advisor endpoints will be disabled")
	} else {
		advisorHandler = handlers.NewAdvisorHandler(advisor.New(gen), log)
	}

	mux := handlers.NewRouter(handlers.Handlers{
		Statements: handlers.NewStatementsHandler(ingestor, cfg.MaxUploadBytes(), log),
		Jobs:       jobsHandler,
		Advisor:    advisorHandler,
	})

	// Apply middleware
	handler := middleware.Chain(mux,
		middleware.Recovery(log),
		middleware.RequestID(log),
		middleware.Logger(log),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", strconv.Itoa(cfg.Server.Port)).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
