package insights

import (
	"testing"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func profile(income, expenses, fund, emi int64) domain.FinancialProfile {
	s := domain.NewFinancialSummary()
	s.AddIncome(decimal.NewFromInt(income))
	if expenses > 0 {
		s.AddExpense(domain.CategoryOther, decimal.NewFromInt(expenses))
	}
	p := domain.NewFinancialProfile(s)
	p.EmergencyFund = decimal.NewFromInt(fund)
	p.MonthlyEMI = decimal.NewFromInt(emi)
	return p
}

func TestBurnRate(t *testing.T) {
	tests := []struct {
		name     string
		income   int64
		expenses int64
		wantRate string
		wantZone Zone
		wantOK   bool
	}{
		{"safe", 50000, 20000, "40", ZoneSafe, true},
		{"boundary safe", 100, 60, "60", ZoneSafe, true},
		{"warning", 100, 75, "75", ZoneWarning, true},
		{"boundary warning", 100, 80, "80", ZoneWarning, true},
		{"danger", 30000, 45000, "150", ZoneDanger, true},
		{"repeating fraction", 3, 1, "33.3", ZoneSafe, true},
		{"no income", 0, 500, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BurnRate(profile(tt.income, tt.expenses, 0, 0).FinancialSummary)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if !got.Rate.Equal(decimal.RequireFromString(tt.wantRate)) {
				t.Errorf("Rate = %s, want %s", got.Rate, tt.wantRate)
			}
			if got.Zone != tt.wantZone {
				t.Errorf("Zone = %s, want %s", got.Zone, tt.wantZone)
			}
		})
	}
}

func TestHealthScore(t *testing.T) {
	tests := []struct {
		name       string
		p          domain.FinancialProfile
		wantScore  int
		wantStatus Status
	}{
		{"healthy", profile(100000, 30000, 300000, 0), 100, StatusStable},
		{"burn over 40", profile(100000, 45000, 450000, 0), 90, StatusStable},
		{"burn over 60, thin runway", profile(100000, 65000, 260000, 0), 65, StatusModerate},
		{"everything bad", profile(50000, 45000, 0, 30000), 0, StatusRisk},
		{"heavy emi", profile(100000, 30000, 300000, 40000), 85, StatusStable},
		{"no expenses", profile(100000, 0, 0, 0), 100, StatusStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HealthScore(tt.p)
			if !ok {
				t.Fatal("HealthScore reported no result")
			}
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
		})
	}

	if _, ok := HealthScore(profile(0, 100, 0, 0)); ok {
		t.Error("expected no score without income")
	}
}

func TestForecast(t *testing.T) {
	p := profile(50000, 30000, 10000, 5000)

	got := Forecast(p, 3)
	want := []ForecastPoint{
		{Month: 0, Savings: decimal.NewFromInt(10000)},
		{Month: 1, Savings: decimal.NewFromInt(25000)},
		{Month: 2, Savings: decimal.NewFromInt(40000)},
		{Month: 3, Savings: decimal.NewFromInt(55000)},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("Forecast mismatch (-want +got):\n%s", diff)
	}

	if n := len(Forecast(p, 0)); n != MinForecastMonths+1 {
		t.Errorf("Forecast(0) has %d points, want %d", n, MinForecastMonths+1)
	}
	if n := len(Forecast(p, 100)); n != MaxForecastMonths+1 {
		t.Errorf("Forecast(100) has %d points, want %d", n, MaxForecastMonths+1)
	}
}

func TestPeerComparison(t *testing.T) {
	s := domain.NewFinancialSummary()
	s.AddIncome(decimal.NewFromInt(50000))
	s.AddExpense(domain.CategoryDining, decimal.NewFromInt(10000))       // +100%
	s.AddExpense(domain.CategorySubscriptions, decimal.NewFromInt(2100)) // +5%
	s.AddExpense(domain.CategoryGroceries, decimal.NewFromInt(3000))     // -50%
	s.AddExpense(domain.CategoryTransport, decimal.NewFromInt(6000))     // +20%

	got := PeerComparison(s)
	want := []PeerDiff{
		{Category: domain.CategoryDining, Amount: decimal.NewFromInt(10000), PeerAmount: decimal.NewFromInt(5000), DifferencePct: decimal.NewFromInt(100)},
		{Category: domain.CategoryGroceries, Amount: decimal.NewFromInt(3000), PeerAmount: decimal.NewFromInt(6000), DifferencePct: decimal.NewFromInt(-50)},
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("PeerComparison mismatch (-want +got):\n%s", diff)
	}

	if got := PeerComparison(domain.NewFinancialSummary()); got != nil {
		t.Errorf("expected nil without income, got %v", got)
	}
}

func TestPeerComparison_Brackets(t *testing.T) {
	tests := []struct {
		income   int64
		wantPeer int64
	}{
		{30000, 3000},
		{30001, 5000},
		{60000, 5000},
		{250000, 8000},
	}
	for _, tt := range tests {
		s := domain.NewFinancialSummary()
		s.AddIncome(decimal.NewFromInt(tt.income))

		// No spend at all is -100% everywhere; ties keep category order.
		got := PeerComparison(s)
		if len(got) != peerMaxResults || got[0].Category != domain.CategoryDining {
			t.Fatalf("income %d: got %+v", tt.income, got)
		}
		if !got[0].PeerAmount.Equal(decimal.NewFromInt(tt.wantPeer)) {
			t.Errorf("income %d: dining peer = %s, want %d", tt.income, got[0].PeerAmount, tt.wantPeer)
		}
	}
}
