package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/finora/internal/config"
	"github.com/dvloznov/finora/internal/gcs"
	"github.com/dvloznov/finora/internal/logger"
	"github.com/dvloznov/finora/internal/pdftext"
	"github.com/dvloznov/finora/internal/pipeline"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	source := flag.String("source", "", "Statement to ingest: local path or gs://bucket/object")
	password := flag.String("password", "", "Password for a protected PDF")
	flag.Parse()

	if *source == "" {
		log.Fatal().Msg("Error: --source is required")
	}

	cfg, err := config.Load("", ".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	log.Info().Str("source", *source).Msg("Starting ingestion")

	name := filepath.Base(*source)
	var data []byte
	if strings.HasPrefix(*source, "gs://") {
		client, err := gcs.NewClient(ctx, cfg.MaxUploadBytes(), gcs.CredentialsOptions(cfg.Storage.CredentialsFile)...)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer client.Close()
		data, err = client.Fetch(ctx, *source)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to fetch statement")
		}
		name = gcs.FilenameFromURI(*source)
	} else {
		data, err = os.ReadFile(*source)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read statement")
		}
	}

	fileType, err := pipeline.DetectFileType(name, "")
	if err != nil {
		log.Fatal().Err(err).Msg("Unsupported statement")
	}

	ingestor := pipeline.NewIngestor(pdftext.NewExtractor(cfg.PDF.Concurrency))
	res, err := ingestor.Ingest(ctx, pipeline.Request{Data: data, FileType: fileType, Password: *password})
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatal().Err(err).Msg("Failed to write result")
	}
}
