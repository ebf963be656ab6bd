package advisor

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/shopspring/decimal"
)

// profileFromModelJSON converts the model's JSON object into a profile.
// Category amounts missing from the total are booked under other; a total
// below the category sum is raised to it.
func profileFromModelJSON(raw string) (domain.FinancialProfile, error) {
	clean := cleanModelJSON(raw)

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &obj); err != nil {
		return domain.FinancialProfile{}, fmt.Errorf("unmarshal JSON: %w\nraw response: %s", err, raw)
	}

	income, err := getFloat64Field(obj, "income", true)
	if err != nil {
		return domain.FinancialProfile{}, err
	}
	expenses, err := getFloat64Field(obj, "expenses", false)
	if err != nil {
		return domain.FinancialProfile{}, err
	}
	fund, err := getFloat64Field(obj, "emergencyFund", false)
	if err != nil {
		return domain.FinancialProfile{}, err
	}
	emi, err := getFloat64Field(obj, "monthlyEmi", false)
	if err != nil {
		return domain.FinancialProfile{}, err
	}
	categories, err := getObjectField(obj, "categories")
	if err != nil {
		return domain.FinancialProfile{}, err
	}

	profile := domain.NewFinancialProfile(domain.NewFinancialSummary())
	profile.AddIncome(nonNegative(income))
	profile.EmergencyFund = nonNegative(fund)
	profile.MonthlyEMI = nonNegative(emi)

	for key := range categories {
		amount, err := getFloat64Field(categories, key, false)
		if err != nil {
			return domain.FinancialProfile{}, fmt.Errorf("categories: %w", err)
		}
		c, ok := domain.ParseCategory(key)
		if !ok {
			c = domain.CategoryOther
		}
		if v := nonNegative(amount); v.IsPositive() {
			profile.AddExpense(c, v)
		}
	}

	profile.ReconcileTotal(nonNegative(expenses))

	return profile, nil
}

func nonNegative(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// cleanModelJSON strips Markdown fences and surrounding prose from a JSON
// object reply.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

func getFloat64Field(m map[string]interface{}, key string, required bool) (float64, error) {
	v, ok := m[key]
	if !ok || v == nil {
		if required {
			return 0, fmt.Errorf("missing required field %q", key)
		}
		return 0, nil
	}
	switch val := v.(type) {
	case float64:
		return val, nil
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(val), ",", ""))
		if err != nil {
			return 0, fmt.Errorf("field %q is %q, want number", key, val)
		}
		return d.InexactFloat64(), nil
	default:
		return 0, fmt.Errorf("field %q has type %T, want number", key, v)
	}
}

func getObjectField(m map[string]interface{}, key string) (map[string]interface{}, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %q has type %T, want object", key, v)
	}
	return obj, nil
}
