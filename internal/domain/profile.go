package domain

import (
	"github.com/shopspring/decimal"
)

// FinancialProfile combines an ingested summary with the figures a user
// enters by hand.
type FinancialProfile struct {
	FinancialSummary
	EmergencyFund decimal.Decimal `json:"emergencyFund"`
	MonthlyEMI    decimal.Decimal `json:"monthlyEmi"`
}

// NewFinancialProfile wraps summary with zero fund and EMI.
func NewFinancialProfile(summary FinancialSummary) FinancialProfile {
	return FinancialProfile{
		FinancialSummary: summary,
		EmergencyFund:    decimal.Zero,
		MonthlyEMI:       decimal.Zero,
	}
}
