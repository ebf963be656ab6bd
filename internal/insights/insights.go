// Package insights derives deterministic indicators from a financial profile:
// burn rate, a health score, a savings forecast and a peer comparison.
package insights

import (
	"sort"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Zone buckets a burn rate.
type Zone string

const (
	ZoneSafe    Zone = "safe"
	ZoneWarning Zone = "warning"
	ZoneDanger  Zone = "danger"
)

// Burn is expenses as a percentage of income.
type Burn struct {
	Rate      decimal.Decimal `json:"rate"`
	Remaining decimal.Decimal `json:"remaining"`
	Zone      Zone            `json:"zone"`
}

// BurnRate computes the burn of s. It reports false when income is zero.
func BurnRate(s domain.FinancialSummary) (Burn, bool) {
	rate, ok := percentOf(s.TotalExpenses, s.Income)
	if !ok {
		return Burn{}, false
	}
	return Burn{
		Rate:      rate.Round(1),
		Remaining: hundred.Sub(rate).Round(1),
		Zone:      zoneFor(rate),
	}, true
}

func zoneFor(rate decimal.Decimal) Zone {
	switch {
	case rate.GreaterThan(decimal.NewFromInt(80)):
		return ZoneDanger
	case rate.GreaterThan(decimal.NewFromInt(60)):
		return ZoneWarning
	default:
		return ZoneSafe
	}
}

// percentOf returns part/whole*100, or false when whole is not positive.
func percentOf(part, whole decimal.Decimal) (decimal.Decimal, bool) {
	if !whole.IsPositive() {
		return decimal.Zero, false
	}
	return part.Mul(hundred).Div(whole), true
}

// Status summarises a health score.
type Status string

const (
	StatusStable   Status = "Stable"
	StatusModerate Status = "Moderate"
	StatusRisk     Status = "Risk Zone"
)

// Health is a 0 to 100 score with the ratios that produced it.
// RunwayMonths is unset when there are no expenses.
type Health struct {
	Score        int                 `json:"score"`
	Status       Status              `json:"status"`
	BurnRate     decimal.Decimal     `json:"burnRate"`
	RunwayMonths decimal.NullDecimal `json:"runwayMonths"`
	EMIRatio     decimal.Decimal     `json:"emiRatio"`
}

type threshold struct {
	limit   int64
	penalty int
}

var (
	burnPenalties = []threshold{{80, 40}, {60, 20}, {40, 10}}
	emiPenalties  = []threshold{{50, 30}, {30, 15}}
	// runway in months of expenses; fewer than limit costs penalty.
	runwayPenalties = []threshold{{3, 30}, {6, 15}}
)

// HealthScore scores p. It reports false when income is zero.
func HealthScore(p domain.FinancialProfile) (Health, bool) {
	burn, ok := percentOf(p.TotalExpenses, p.Income)
	if !ok {
		return Health{}, false
	}
	emi, _ := percentOf(p.MonthlyEMI, p.Income)

	score := 100
	score -= penaltyAbove(burn, burnPenalties)
	score -= penaltyAbove(emi, emiPenalties)

	var runway decimal.NullDecimal
	if p.TotalExpenses.IsPositive() {
		months := p.EmergencyFund.Div(p.TotalExpenses)
		runway = decimal.NewNullDecimal(months.Round(1))
		for _, t := range runwayPenalties {
			if months.LessThan(decimal.NewFromInt(t.limit)) {
				score -= t.penalty
				break
			}
		}
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Health{
		Score:        score,
		Status:       statusFor(score),
		BurnRate:     burn.Round(1),
		RunwayMonths: runway,
		EMIRatio:     emi.Round(1),
	}, true
}

func penaltyAbove(v decimal.Decimal, ts []threshold) int {
	for _, t := range ts {
		if v.GreaterThan(decimal.NewFromInt(t.limit)) {
			return t.penalty
		}
	}
	return 0
}

func statusFor(score int) Status {
	switch {
	case score >= 80:
		return StatusStable
	case score >= 50:
		return StatusModerate
	default:
		return StatusRisk
	}
}

// Forecast horizon bounds, in months.
const (
	MinForecastMonths = 1
	MaxForecastMonths = 24
)

// ForecastPoint is projected savings at the end of Month.
type ForecastPoint struct {
	Month   int             `json:"month"`
	Savings decimal.Decimal `json:"savings"`
}

// Forecast projects savings from the emergency fund plus monthly surplus
// (income less expenses and EMIs) for months 0 through months. months is
// clamped to [MinForecastMonths, MaxForecastMonths].
func Forecast(p domain.FinancialProfile, months int) []ForecastPoint {
	if months < MinForecastMonths {
		months = MinForecastMonths
	}
	if months > MaxForecastMonths {
		months = MaxForecastMonths
	}

	surplus := p.Income.Sub(p.TotalExpenses).Sub(p.MonthlyEMI)
	points := make([]ForecastPoint, 0, months+1)
	for i := 0; i <= months; i++ {
		savings := p.EmergencyFund.Add(surplus.Mul(decimal.NewFromInt(int64(i))))
		points = append(points, ForecastPoint{Month: i, Savings: savings.Round(0)})
	}
	return points
}

// peerBracket is typical monthly spend for incomes up to maxIncome.
type peerBracket struct {
	maxIncome int64
	spend     map[domain.Category]int64
}

// peerBrackets is ordered by maxIncome; the last bracket is open-ended.
var peerBrackets = []peerBracket{
	{30000, map[domain.Category]int64{
		domain.CategoryDining: 3000, domain.CategorySubscriptions: 1000,
		domain.CategoryGroceries: 4000, domain.CategoryTransport: 3000,
	}},
	{60000, map[domain.Category]int64{
		domain.CategoryDining: 5000, domain.CategorySubscriptions: 2000,
		domain.CategoryGroceries: 6000, domain.CategoryTransport: 5000,
	}},
	{-1, map[domain.Category]int64{
		domain.CategoryDining: 8000, domain.CategorySubscriptions: 3000,
		domain.CategoryGroceries: 8000, domain.CategoryTransport: 7000,
	}},
}

// Peer comparison tuning.
const (
	peerSignificantPct = 10
	peerMaxResults     = 2
)

// PeerDiff compares one category against peers in the same income bracket.
// DifferencePct is positive when the user spends more than peers.
type PeerDiff struct {
	Category      domain.Category `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	PeerAmount    decimal.Decimal `json:"peerAmount"`
	DifferencePct decimal.Decimal `json:"differencePct"`
}

// PeerComparison returns the categories where s differs most from peers,
// at most two, largest difference first. It is empty when income is zero.
func PeerComparison(s domain.FinancialSummary) []PeerDiff {
	if !s.Income.IsPositive() {
		return nil
	}

	bracket := peerBrackets[len(peerBrackets)-1]
	for _, b := range peerBrackets {
		if b.maxIncome >= 0 && s.Income.LessThanOrEqual(decimal.NewFromInt(b.maxIncome)) {
			bracket = b
			break
		}
	}

	var diffs []PeerDiff
	for _, c := range domain.Categories {
		peer, ok := bracket.spend[c]
		if !ok {
			continue
		}
		peerAmount := decimal.NewFromInt(peer)
		pct, _ := percentOf(s.Total(c).Sub(peerAmount), peerAmount)
		if pct.Abs().LessThanOrEqual(decimal.NewFromInt(peerSignificantPct)) {
			continue
		}
		diffs = append(diffs, PeerDiff{
			Category:      c,
			Amount:        s.Total(c),
			PeerAmount:    peerAmount,
			DifferencePct: pct.Round(1),
		})
	}

	sort.SliceStable(diffs, func(i, j int) bool {
		return diffs[i].DifferencePct.Abs().GreaterThan(diffs[j].DifferencePct.Abs())
	})
	if len(diffs) > peerMaxResults {
		diffs = diffs[:peerMaxResults]
	}
	return diffs
}
