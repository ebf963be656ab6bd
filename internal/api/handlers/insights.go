package handlers

import (
	"net/http"

	"github.com/dvloznov/finora/internal/api/middleware"
	"github.com/dvloznov/finora/internal/insights"
)

// defaultForecastMonths is used when a request names no horizon.
const defaultForecastMonths = 6

type insightsResponse struct {
	Burn     *insights.Burn           `json:"burn"`
	Health   *insights.Health         `json:"health"`
	Forecast []insights.ForecastPoint `json:"forecast"`
	Peers    []insights.PeerDiff      `json:"peers"`
}

// Insights handles POST /api/insights
// Burn and health are null when the profile has no income.
func Insights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		profileRequest
		Months int `json:"months"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	profile, err := req.toProfile()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	months := req.Months
	if months == 0 {
		months = defaultForecastMonths
	}

	resp := insightsResponse{
		Forecast: insights.Forecast(profile, months),
		Peers:    insights.PeerComparison(profile.FinancialSummary),
	}
	if burn, ok := insights.BurnRate(profile.FinancialSummary); ok {
		resp.Burn = &burn
	}
	if health, ok := insights.HealthScore(profile); ok {
		resp.Health = &health
	}
	if resp.Peers == nil {
		resp.Peers = []insights.PeerDiff{}
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
