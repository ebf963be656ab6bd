package pipeline

import (
	"strings"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/shopspring/decimal"
)

// Reduce folds the rows of a statement into a FinancialSummary according to
// schema. Unparseable cells count as zero; Reduce never fails.
func Reduce(schema SchemaKind, table Table) domain.FinancialSummary {
	summary := domain.NewFinancialSummary()
	cols := headerIndex(table.Header)

	switch schema {
	case SchemaBankStatement:
		reduceBankStatement(&summary, cols, table.Rows)
	case SchemaUpiStatement:
		reduceTyped(&summary, table.Rows, cols.find(typeColumns), cols.find(upiAmountColumns), func(row []string) domain.Category {
			return Classify(cell(row, cols.find(descriptionColumns)))
		})
	case SchemaPersonalFormat:
		idxCategory := cols.find(categoryColumns)
		reduceTyped(&summary, table.Rows, cols.find(typeColumns), cols.find(amountColumns), func(row []string) domain.Category {
			if c, ok := domain.ParseCategory(cell(row, idxCategory)); ok {
				return c
			}
			return domain.CategoryOther
		})
	default:
		reducePositional(&summary, table.Rows)
	}

	return summary
}

// reduceBankStatement counts only salary credits as income.
func reduceBankStatement(summary *domain.FinancialSummary, cols columns, rows [][]string) {
	idxDesc := cols.find(descriptionColumns)
	idxDebit := cols.find(debitColumns)
	idxCredit := cols.find(creditColumns)

	for _, row := range rows {
		desc := cell(row, idxDesc)
		debit := parseAmount(cell(row, idxDebit))
		credit := parseAmount(cell(row, idxCredit))

		if credit.IsPositive() && strings.Contains(foldCase(desc), salaryMarker) {
			summary.AddIncome(credit)
		}
		if debit.IsPositive() {
			summary.AddExpense(Classify(desc), debit)
		}
	}
}

// reduceTyped handles layouts where a type column says credit or debit.
func reduceTyped(summary *domain.FinancialSummary, rows [][]string, idxType, idxAmount int, categorize func([]string) domain.Category) {
	for _, row := range rows {
		amount := parseAmount(cell(row, idxAmount))
		if !amount.IsPositive() {
			continue
		}
		switch foldCase(strings.TrimSpace(cell(row, idxType))) {
		case "credit":
			summary.AddIncome(amount)
		case "debit":
			summary.AddExpense(categorize(row), amount)
		}
	}
}

// reducePositional treats column 1 as description and column 2 as a signed
// amount: negative is spend, positive is income.
func reducePositional(summary *domain.FinancialSummary, rows [][]string) {
	for _, row := range rows {
		amount := parseAmount(cell(row, 2))
		switch {
		case amount.IsNegative():
			summary.AddExpense(Classify(cell(row, 1)), amount.Abs())
		case amount.IsPositive():
			summary.AddIncome(amount)
		}
	}
}

// maxAmountLen bounds a money cell after cleanup. Longer cells are zero.
const maxAmountLen = 32

// parseAmount reads a money cell. Thousands separators and a rupee sign are
// tolerated; anything else that does not parse is zero, as is exponent
// notation, which no statement prints.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxAmountLen || strings.ContainsAny(s, "eE") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
