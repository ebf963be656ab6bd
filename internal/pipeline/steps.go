package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/dvloznov/finora/internal/logger"
	"github.com/dvloznov/finora/internal/pdftext"
)

// PipelineStep represents a single step in the ingestion pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *IngestState) error
}

// IngestState holds the shared state across all pipeline steps of one
// ingestion. It is never reused between calls.
type IngestState struct {
	Request      Request
	PageTexts    []string
	Text         string
	Transactions []domain.RawTransactionRow
	Table        Table
	Schema       SchemaKind
	Summary      domain.FinancialSummary
}

// ParseCSVStep decodes the uploaded bytes into a table.
type ParseCSVStep struct{}

func (s *ParseCSVStep) Execute(ctx context.Context, state *IngestState) error {
	if len(state.Request.Data) == 0 {
		return newIngestionError(KindMalformedTabularData, "file is empty", nil)
	}
	table, err := ParseCSV(state.Request.Data)
	if err != nil {
		return err
	}
	if len(table.Rows) == 0 {
		return newIngestionError(KindNoTransactionsDetected, "csv has a header but no rows", nil)
	}
	state.Table = table
	log := logger.FromContext(ctx)
	log.Debug().Int("rows", len(table.Rows)).Msg("CSV decoded")
	return nil
}

// DetectSchemaStep picks the reducer branch from the header row.
type DetectSchemaStep struct{}

func (s *DetectSchemaStep) Execute(ctx context.Context, state *IngestState) error {
	state.Schema = DetectSchema(state.Table.Header)
	log := logger.FromContext(ctx)
	log.Debug().Stringer("schema", state.Schema).Msg("Schema detected")
	return nil
}

// ExtractPDFTextStep runs the PDF text collaborator and joins its pages.
type ExtractPDFTextStep struct {
	Extractor TextExtractor
}

func (s *ExtractPDFTextStep) Execute(ctx context.Context, state *IngestState) error {
	if s.Extractor == nil {
		return newIngestionError(KindPdfOpenFailed, "no PDF text extractor configured", nil)
	}

	pages, err := s.Extractor.ExtractPages(ctx, state.Request.Data, state.Request.Password)
	if err != nil {
		return classifyExtractError(err, state.Request.Password != "")
	}

	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page)
		b.WriteString("\n")
	}

	state.PageTexts = pages
	state.Text = b.String()
	log := logger.FromContext(ctx)
	log.Debug().Int("pages", len(pages)).Int("chars", len(state.Text)).Msg("PDF text extracted")
	return nil
}

// classifyExtractError maps collaborator failures onto ingestion kinds.
func classifyExtractError(err error, passwordSupplied bool) error {
	switch {
	case errors.Is(err, pdftext.ErrPasswordIncorrect):
		return newIngestionError(KindPdfPasswordIncorrect, "", err)
	case errors.Is(err, pdftext.ErrPasswordRequired) && passwordSupplied:
		return newIngestionError(KindPdfPasswordIncorrect, "", err)
	case errors.Is(err, pdftext.ErrPasswordRequired):
		return newIngestionError(KindPdfPasswordRequired, "", err)
	default:
		return newIngestionError(KindPdfOpenFailed, err.Error(), nil)
	}
}

// ExtractTransactionsStep finds transactions in the PDF text and renders
// them in the canonical bank statement layout.
type ExtractTransactionsStep struct{}

func (s *ExtractTransactionsStep) Execute(ctx context.Context, state *IngestState) error {
	txs := ExtractTransactions(state.Text)
	if len(txs) == 0 {
		return newIngestionError(KindNoTransactionsDetected, "no dated transactions found in PDF text", nil)
	}
	state.Transactions = txs
	state.Table = CanonicalTable(txs)
	state.Schema = SchemaBankStatement
	log := logger.FromContext(ctx)
	log.Debug().Int("transactions", len(txs)).Msg("Transactions extracted")
	return nil
}

// ReduceStep folds the table into the summary.
type ReduceStep struct{}

func (s *ReduceStep) Execute(ctx context.Context, state *IngestState) error {
	state.Summary = Reduce(state.Schema, state.Table)
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially, stopping at the
// first failure.
func (p *Pipeline) Execute(ctx context.Context, state *IngestState) error {
	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("pipeline step %d: %w", i+1, err)
		}
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewCSVIngestionPipeline creates the decode, detect, reduce pipeline.
func NewCSVIngestionPipeline() *Pipeline {
	return NewPipeline(
		&ParseCSVStep{},
		&DetectSchemaStep{},
		&ReduceStep{},
	)
}

// NewPDFIngestionPipeline creates the extract, segment, reduce pipeline.
func NewPDFIngestionPipeline(extractor TextExtractor) *Pipeline {
	return NewPipeline(
		&ExtractPDFTextStep{Extractor: extractor},
		&ExtractTransactionsStep{},
		&ReduceStep{},
	)
}
