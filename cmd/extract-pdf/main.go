package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/finora/internal/logger"
	"github.com/dvloznov/finora/internal/pdftext"
	"github.com/dvloznov/finora/internal/pipeline"
)

func main() {
	log := logger.New()

	pdfPath := flag.String("file", "", "Path to a local PDF statement")
	password := flag.String("password", "", "Password for a protected PDF")
	showPages := flag.Bool("pages", false, "Print the extracted page text before the CSV")
	flag.Parse()

	if *pdfPath == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	if err := run(context.Background(), *pdfPath, *password, *showPages); err != nil {
		log.Fatal().Err(err).Msg("Extraction failed")
	}
}

func run(ctx context.Context, path, password string, showPages bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read PDF at %q: %w", path, err)
	}

	pages, err := pdftext.NewExtractor(pdftext.DefaultConcurrency).ExtractPages(ctx, data, password)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	if showPages {
		for i, p := range pages {
			fmt.Fprintf(os.Stderr, "----- page %d -----\n%s\n", i+1, p)
		}
	}

	rows := pipeline.ExtractTransactions(strings.Join(pages, "\n"))
	if len(rows) == 0 {
		return pipeline.ErrNoTransactionsDetected
	}

	// Canonical CSV on stdout so it can be piped back into the CSV path.
	return pipeline.WriteCanonicalCSV(os.Stdout, rows)
}
