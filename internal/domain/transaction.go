package domain

import (
	"github.com/shopspring/decimal"
)

// RawTransactionRow is one transaction as recovered from a statement, before
// reduction. It lives only for the duration of a single ingestion.
type RawTransactionRow struct {
	Date           string              // as printed on the statement, empty if unknown
	Description    string              // collapsed free text
	Debit          decimal.NullDecimal // money out
	Credit         decimal.NullDecimal // money in
	RunningBalance decimal.NullDecimal // balance after the transaction, if printed
}
