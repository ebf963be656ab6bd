package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/shopspring/decimal"
)

// CanonicalHeader is the column layout ExtractTransactions output is
// rendered into before reduction.
var CanonicalHeader = []string{"Date", "Description", "Debit", "Credit", "Total"}

var (
	// statementPreamblePattern matches the column header block printed above
	// the transaction list.
	statementPreamblePattern = regexp.MustCompile(`Date\s+Particulars[\s\S]*?Total Amount\s+`)

	// transactionDatePattern anchors the start of every transaction.
	transactionDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} 00:00:00`)

	amountTokenPattern = regexp.MustCompile(`[\d,]+\.\d{2}`)

	// balanceTokenPattern is the running balance, suffixed CR.
	balanceTokenPattern = regexp.MustCompile(`([\d,]+\.\d{2})\s*CR`)
)

// ExtractTransactions recovers transactions from text extracted from a PDF
// bank statement. Only statements that print dates as "YYYY-MM-DD 00:00:00"
// are understood; anything else yields no rows.
//
// Debit and credit are told apart by how many amounts a transaction carries
// once the CR balance is set aside: one amount is a debit, two or more are
// debit then credit, extras are ignored.
func ExtractTransactions(text string) []domain.RawTransactionRow {
	cleaned := statementPreamblePattern.ReplaceAllString(text, "")

	anchors := transactionDatePattern.FindAllStringIndex(cleaned, -1)
	rows := make([]domain.RawTransactionRow, 0, len(anchors))

	for i, anchor := range anchors {
		end := len(cleaned)
		if i+1 < len(anchors) {
			end = anchors[i+1][0]
		}
		date := strings.TrimSpace(cleaned[anchor[0]:anchor[1]])
		body := collapseWhitespace(cleaned[anchor[1]:end])

		row, ok := parseTransactionChunk(date, body)
		if ok {
			rows = append(rows, row)
		}
	}

	return rows
}

func parseTransactionChunk(date, body string) (domain.RawTransactionRow, bool) {
	row := domain.RawTransactionRow{
		Date:        date,
		Description: chunkDescription(body),
	}

	tokens := amountTokenPattern.FindAllStringIndex(body, -1)

	balanceStart := -1
	if m := balanceTokenPattern.FindStringSubmatchIndex(body); m != nil {
		balanceStart = m[2]
		row.RunningBalance = decimal.NewNullDecimal(parseAmount(body[m[2]:m[3]]))
	}

	amounts := make([]decimal.Decimal, 0, len(tokens))
	for _, tok := range tokens {
		if tok[0] == balanceStart {
			continue
		}
		amounts = append(amounts, parseAmount(body[tok[0]:tok[1]]))
	}

	switch {
	case len(amounts) == 1:
		row.Debit = decimal.NewNullDecimal(amounts[0])
	case len(amounts) >= 2:
		row.Debit = decimal.NewNullDecimal(amounts[0])
		row.Credit = decimal.NewNullDecimal(amounts[1])
	}

	if row.Date == "" || !(nonZero(row.Debit) || nonZero(row.Credit)) {
		return domain.RawTransactionRow{}, false
	}
	return row, true
}

// chunkDescription is the text before the first amount, commas blanked.
func chunkDescription(body string) string {
	loc := amountTokenPattern.FindStringIndex(body)
	if loc == nil {
		return strings.TrimSpace(body)
	}
	desc := strings.ReplaceAll(body[:loc[0]], ",", " ")
	return collapseWhitespace(desc)
}

func nonZero(d decimal.NullDecimal) bool {
	return d.Valid && !d.Decimal.IsZero()
}

// CanonicalTable renders rows in the CanonicalHeader layout so the
// BankStatement reducer can consume them.
func CanonicalTable(rows []domain.RawTransactionRow) Table {
	table := Table{
		Header: append([]string(nil), CanonicalHeader...),
		Rows:   make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Date,
			r.Description,
			formatAmount(r.Debit),
			formatAmount(r.Credit),
			formatAmount(r.RunningBalance),
		})
	}
	return table
}

// WriteCanonicalCSV writes rows, header first, as CSV.
func WriteCanonicalCSV(w io.Writer, rows []domain.RawTransactionRow) error {
	table := CanonicalTable(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Header); err != nil {
		return fmt.Errorf("write canonical header: %w", err)
	}
	if err := cw.WriteAll(table.Rows); err != nil {
		return fmt.Errorf("write canonical rows: %w", err)
	}
	return nil
}

// formatAmount prints a plain two-decimal number, or "" when unset.
func formatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
