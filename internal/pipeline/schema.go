package pipeline

import (
	"fmt"
)

// SchemaKind identifies the column layout of a tabular statement.
type SchemaKind int

const (
	// SchemaUnknown is the positional fallback: column 1 description,
	// column 2 signed amount.
	SchemaUnknown SchemaKind = iota
	// SchemaBankStatement has separate debit and credit columns.
	SchemaBankStatement
	// SchemaUpiStatement has a credit/debit type column and one amount column.
	SchemaUpiStatement
	// SchemaPersonalFormat has explicit category and type columns.
	SchemaPersonalFormat
)

var schemaNames = map[SchemaKind]string{
	SchemaUnknown:        "unknown",
	SchemaBankStatement:  "bank_statement",
	SchemaUpiStatement:   "upi_statement",
	SchemaPersonalFormat: "personal_format",
}

func (k SchemaKind) String() string {
	if name, ok := schemaNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SchemaKind(%d)", int(k))
}

// MarshalText renders the schema by name.
func (k SchemaKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a schema name produced by MarshalText.
func (k *SchemaKind) UnmarshalText(text []byte) error {
	for kind, name := range schemaNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown schema kind %q", text)
}

// Header vocabularies, matched exactly after normalizeHeader.
var (
	debitColumns       = []string{"debit (inr)", "debit amount", "debit"}
	creditColumns      = []string{"credit (inr)", "credit amount", "credit"}
	typeColumns        = []string{"type"}
	upiAmountColumns   = []string{"amount (inr)"}
	amountColumns      = []string{"amount"}
	categoryColumns    = []string{"category"}
	descriptionColumns = []string{"description", "particulars"}
)

// DetectSchema identifies the layout of a statement from its header row.
// Column order is irrelevant. Anything unrecognised is SchemaUnknown.
func DetectSchema(header []string) SchemaKind {
	cols := headerIndex(header)

	hasDebit := cols.find(debitColumns) >= 0
	hasCredit := cols.find(creditColumns) >= 0
	hasType := cols.find(typeColumns) >= 0

	switch {
	case hasDebit && hasCredit:
		return SchemaBankStatement
	case hasType && cols.find(upiAmountColumns) >= 0:
		return SchemaUpiStatement
	case hasType && cols.find(categoryColumns) >= 0:
		return SchemaPersonalFormat
	default:
		return SchemaUnknown
	}
}

// columns maps normalized header names to their first position.
type columns map[string]int

func headerIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

// find returns the index of the first vocabulary entry present, or -1.
func (c columns) find(vocabulary []string) int {
	for _, name := range vocabulary {
		if i, ok := c[name]; ok {
			return i
		}
	}
	return -1
}
