// Package handlers serves the Finora JSON API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dvloznov/finora/internal/advisor"
	"github.com/dvloznov/finora/internal/domain"
	"github.com/dvloznov/finora/internal/pipeline"
	"github.com/shopspring/decimal"
)

// maxJSONBody caps request bodies that are not file uploads.
const maxJSONBody = 1 << 20

// StatementIngestor turns an uploaded statement into a summary.
type StatementIngestor interface {
	Ingest(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Advisor produces narrative output for a profile.
type Advisor interface {
	Analyze(ctx context.Context, profile domain.FinancialProfile) (*advisor.Analysis, error)
	Chat(ctx context.Context, messages []advisor.Message) (string, error)
	ParseDescription(ctx context.Context, description string) (domain.FinancialProfile, error)
}

// profileRequest is the profile shape sent by the dashboard. Categories are
// keyed by category name; anything unrecognised is booked to "other", as is
// any part of Expenses the categories do not cover.
type profileRequest struct {
	Income        decimal.Decimal            `json:"income"`
	Expenses      decimal.Decimal            `json:"expenses"`
	EmergencyFund decimal.Decimal            `json:"emergencyFund"`
	MonthlyEMI    decimal.Decimal            `json:"monthlyEmi"`
	Categories    map[string]decimal.Decimal `json:"categories"`
}

// maxAmountExponent bounds the decimal exponent of a submitted amount.
const maxAmountExponent = 15

var (
	errNegativeAmount   = errors.New("amounts must not be negative")
	errAmountOutOfRange = errors.New("amount out of range")
)

func checkAmount(v decimal.Decimal) error {
	if v.IsNegative() {
		return errNegativeAmount
	}
	if exp := v.Exponent(); exp > maxAmountExponent || exp < -maxAmountExponent {
		return errAmountOutOfRange
	}
	return nil
}

func (p profileRequest) toProfile() (domain.FinancialProfile, error) {
	for _, v := range []decimal.Decimal{p.Income, p.Expenses, p.EmergencyFund, p.MonthlyEMI} {
		if err := checkAmount(v); err != nil {
			return domain.FinancialProfile{}, err
		}
	}

	summary := domain.NewFinancialSummary()
	summary.AddIncome(p.Income)
	for name, amount := range p.Categories {
		if err := checkAmount(amount); err != nil {
			return domain.FinancialProfile{}, fmt.Errorf("category %q: %w", name, err)
		}
		if amount.IsZero() {
			continue
		}
		c, ok := domain.ParseCategory(name)
		if !ok {
			c = domain.CategoryOther
		}
		summary.AddExpense(c, amount)
	}
	summary.ReconcileTotal(p.Expenses)

	profile := domain.NewFinancialProfile(summary)
	profile.EmergencyFund = p.EmergencyFund
	profile.MonthlyEMI = p.MonthlyEMI
	return profile, nil
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
