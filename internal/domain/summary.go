package domain

import (
	"github.com/shopspring/decimal"
)

// FinancialSummary is the canonical result of ingesting one statement.
// CategoryTotals always carries every entry of Categories.
type FinancialSummary struct {
	Income         decimal.Decimal              `json:"income"`
	TotalExpenses  decimal.Decimal              `json:"totalExpenses"`
	CategoryTotals map[Category]decimal.Decimal `json:"categoryTotals"`
}

// NewFinancialSummary returns a summary with every category seeded at zero.
func NewFinancialSummary() FinancialSummary {
	totals := make(map[Category]decimal.Decimal, len(Categories))
	for _, c := range Categories {
		totals[c] = decimal.Zero
	}
	return FinancialSummary{
		Income:         decimal.Zero,
		TotalExpenses:  decimal.Zero,
		CategoryTotals: totals,
	}
}

// AddIncome adds amount to Income.
func (s *FinancialSummary) AddIncome(amount decimal.Decimal) {
	s.Income = s.Income.Add(amount)
}

// AddExpense adds amount to TotalExpenses and to the bucket for c.
// Unknown categories land in CategoryOther.
func (s *FinancialSummary) AddExpense(c Category, amount decimal.Decimal) {
	if _, ok := s.CategoryTotals[c]; !ok {
		c = CategoryOther
	}
	s.TotalExpenses = s.TotalExpenses.Add(amount)
	s.CategoryTotals[c] = s.CategoryTotals[c].Add(amount)
}

// Total returns the amount recorded for c, zero if absent.
func (s FinancialSummary) Total(c Category) decimal.Decimal {
	if v, ok := s.CategoryTotals[c]; ok {
		return v
	}
	return decimal.Zero
}

// IsZero reports whether no income and no expense was recorded.
func (s FinancialSummary) IsZero() bool {
	if !s.Income.IsZero() || !s.TotalExpenses.IsZero() {
		return false
	}
	for _, v := range s.CategoryTotals {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// ReconcileTotal books any part of declared not covered by the category
// totals under CategoryOther. A declared total below the category sum is
// ignored, so TotalExpenses always equals the sum of CategoryTotals.
func (s *FinancialSummary) ReconcileTotal(declared decimal.Decimal) {
	if rest := declared.Sub(s.TotalExpenses); rest.IsPositive() {
		s.AddExpense(CategoryOther, rest)
	}
}
