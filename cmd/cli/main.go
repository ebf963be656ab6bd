package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dvloznov/finora/internal/advisor"
	"github.com/dvloznov/finora/internal/config"
	"github.com/dvloznov/finora/internal/domain"
	"github.com/dvloznov/finora/internal/gcs"
	"github.com/dvloznov/finora/internal/insights"
	"github.com/dvloznov/finora/internal/logger"
	"github.com/dvloznov/finora/internal/pdftext"
	"github.com/dvloznov/finora/internal/pipeline"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv("FINORA_CONFIG"), ".env")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	switch os.Args[1] {
	case "ingest":
		runIngest(log, cfg)
	case "analyze":
		runAnalyze(log, cfg)
	case "chat":
		runChat(log, cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Finora CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  ingest    Summarize a CSV or PDF statement (local path or gs:// URI)")
	fmt.Println("  analyze   Summarize a statement and print burn-risk insights and advice")
	fmt.Println("  chat      Ask the assistant a question about a statement")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// statementFlags are shared by every command that reads a statement.
type statementFlags struct {
	file     *string
	password *string
}

func addStatementFlags(fs *flag.FlagSet) statementFlags {
	return statementFlags{
		file:     fs.String("file", "", "Statement path or gs://bucket/object URI"),
		password: fs.String("password", "", "Password for a protected PDF"),
	}
}

func runIngest(log zerolog.Logger, cfg config.Config) {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	sf := addStatementFlags(fs)
	asJSON := fs.Bool("json", false, "Print the result as JSON")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	res := ingest(ctx, log, cfg, sf)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode result")
		}
		return
	}
	printSummary(os.Stdout, res)
}

func runAnalyze(log zerolog.Logger, cfg config.Config) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	sf := addStatementFlags(fs)
	fund := fs.String("emergency-fund", "0", "Emergency fund balance")
	emi := fs.String("emi", "0", "Monthly loan repayments")
	months := fs.Int("months", 6, "Forecast horizon in months")
	offline := fs.Bool("offline", false, "Skip the AI narrative")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	res := ingest(ctx, log, cfg, sf)
	profile := buildProfile(log, res.Summary, *fund, *emi)

	printSummary(os.Stdout, res)
	printInsights(os.Stdout, profile, *months)

	if *offline {
		return
	}

	a := newAdvisor(ctx, log, cfg)
	analysis, err := a.Analyze(ctx, profile)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	color.New(color.FgCyan, color.Bold).Println("\n=== Analysis ===")
	if analysis.Persona != "" {
		color.New(color.BgBlue, color.FgWhite).Printf(" %s ", analysis.Persona)
		fmt.Println()
	}
	fmt.Println(analysis.Text)
}

func runChat(log zerolog.Logger, cfg config.Config) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	sf := addStatementFlags(fs)
	question := fs.String("question", "", "Question to ask (reads stdin lines when empty)")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var messages []advisor.Message
	if *sf.file != "" {
		res := ingest(ctx, log, cfg, sf)
		messages = advisor.InitialChatContext(domain.NewFinancialProfile(res.Summary), "")
	}

	a := newAdvisor(ctx, log, cfg)

	ask := func(q string) {
		messages = append(messages, advisor.Message{Role: advisor.RoleUser, Content: q})
		reply, err := a.Chat(ctx, messages)
		if err != nil {
			log.Error().Err(err).Msg("Chat failed")
			messages = messages[:len(messages)-1]
			return
		}
		messages = append(messages, advisor.Message{Role: advisor.RoleAssistant, Content: reply})
		color.New(color.FgGreen).Print("finora> ")
		fmt.Println(reply)
	}

	if *question != "" {
		ask(*question)
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		color.New(color.FgYellow).Print("you> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			ask(q)
		}
	}
}

// ingest reads and ingests the statement named by sf, exiting on failure.
func ingest(ctx context.Context, log zerolog.Logger, cfg config.Config, sf statementFlags) *pipeline.Result {
	if *sf.file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	data, err := readStatement(ctx, *sf.file, cfg.MaxUploadBytes(), cfg.Storage.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", *sf.file).Msg("Failed to read statement")
	}

	fileType, err := pipeline.DetectFileType(statementName(*sf.file), "")
	if err != nil {
		log.Fatal().Err(err).Msg("Unsupported statement")
	}

	ingestor := pipeline.NewIngestor(pdftext.NewExtractor(cfg.PDF.Concurrency))
	res, err := ingestor.Ingest(ctx, pipeline.Request{
		Data:     data,
		FileType: fileType,
		Password: *sf.password,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrPdfPasswordRequired) {
			log.Fatal().Msg("The PDF is password-protected; pass --password")
		}
		log.Fatal().Err(err).Msg("Ingestion failed")
	}
	return res
}

// readStatement loads a local file or a gs:// object.
func readStatement(ctx context.Context, location string, maxBytes int64, credentialsFile string) ([]byte, error) {
	if strings.HasPrefix(location, "gs://") {
		client, err := gcs.NewClient(ctx, maxBytes, gcs.CredentialsOptions(credentialsFile)...)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		return client.Fetch(ctx, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if maxBytes <= 0 {
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s is larger than %d bytes", location, maxBytes)
	}
	return data, nil
}

func statementName(location string) string {
	if strings.HasPrefix(location, "gs://") {
		return gcs.FilenameFromURI(location)
	}
	return filepath.Base(location)
}

func buildProfile(log zerolog.Logger, s domain.FinancialSummary, fund, emi string) domain.FinancialProfile {
	p := domain.NewFinancialProfile(s)
	var err error
	if p.EmergencyFund, err = decimal.NewFromString(fund); err != nil {
		log.Fatal().Err(err).Msg("Invalid --emergency-fund")
	}
	if p.MonthlyEMI, err = decimal.NewFromString(emi); err != nil {
		log.Fatal().Err(err).Msg("Invalid --emi")
	}
	return p
}

func newAdvisor(ctx context.Context, log zerolog.Logger, cfg config.Config) *advisor.Advisor {
	gen, err := advisor.NewGenAIGenerator(ctx, cfg.Advisor.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gen AI client")
	}
	return advisor.New(gen)
}

func printSummary(w io.Writer, res *pipeline.Result) {
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(w, "\n=== Statement ===")
	fmt.Fprintf(w, "Schema:       %s\n", res.Schema)
	fmt.Fprintf(w, "Transactions: %d\n", res.TransactionCount)
	if res.PageCount > 0 {
		fmt.Fprintf(w, "Pages:        %d\n", res.PageCount)
	}
	fmt.Fprintf(w, "Income:       %s\n", bold(res.Summary.Income.StringFixed(2)))
	fmt.Fprintf(w, "Expenses:     %s\n", bold(res.Summary.TotalExpenses.StringFixed(2)))
	for _, c := range domain.Categories {
		fmt.Fprintf(w, "  %-14s %12s\n", c, res.Summary.Total(c).StringFixed(2))
	}
}

func printInsights(w io.Writer, p domain.FinancialProfile, months int) {
	fmt.Fprintln(w, "\n=== Burn Risk ===")

	burn, ok := insights.BurnRate(p.FinancialSummary)
	if !ok {
		fmt.Fprintln(w, "No income recorded; burn rate is undefined.")
		return
	}
	fmt.Fprintf(w, "Burn rate:    %s\n", zoneColor(burn.Zone).Sprintf("%s%% (%s)", burn.Rate, burn.Zone))

	if health, ok := insights.HealthScore(p); ok {
		fmt.Fprintf(w, "Health score: %s\n", statusColor(health.Status).Sprintf("%d/100 %s", health.Score, health.Status))
		if health.RunwayMonths.Valid {
			fmt.Fprintf(w, "Runway:       %s months\n", health.RunwayMonths.Decimal)
		}
	}

	fmt.Fprintln(w, "\nSavings forecast:")
	for _, pt := range insights.Forecast(p, months) {
		fmt.Fprintf(w, "  month %2d  %12s\n", pt.Month, pt.Savings)
	}

	if peers := insights.PeerComparison(p.FinancialSummary); len(peers) > 0 {
		fmt.Fprintln(w, "\nCompared with peers:")
		for _, d := range peers {
			c, pct := color.New(color.FgGreen), d.DifferencePct.String()
			if d.DifferencePct.IsPositive() {
				c, pct = color.New(color.FgRed), "+"+pct
			}
			fmt.Fprintf(w, "  %-14s %s vs %s (%s)\n", d.Category, d.Amount, d.PeerAmount, c.Sprintf("%s%%", pct))
		}
	}
}

func zoneColor(z insights.Zone) *color.Color {
	switch z {
	case insights.ZoneDanger:
		return color.New(color.FgRed, color.Bold)
	case insights.ZoneWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func statusColor(s insights.Status) *color.Color {
	switch s {
	case insights.StatusRisk:
		return color.New(color.FgRed, color.Bold)
	case insights.StatusModerate:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}
