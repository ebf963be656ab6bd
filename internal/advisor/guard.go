package advisor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	incomeFigurePattern   = regexp.MustCompile(`(?i)income:\s*₹?\s*([\d,]+(?:\.\d+)?)`)
	expensesFigurePattern = regexp.MustCompile(`(?i)expenses:\s*₹?\s*([\d,]+(?:\.\d+)?)`)
)

// personalKeywords mark a question about the user's own finances.
var personalKeywords = []string{
	"my", "burn rate", "savings", "should i", "how much", "can i",
	"what is my", "personal", "recommend", "advice",
}

// hasFinancialData reports whether system carries a non-zero income figure
// and an expenses figure.
func hasFinancialData(system string) bool {
	income := incomeFigurePattern.FindStringSubmatch(system)
	if income == nil || !expensesFigurePattern.MatchString(system) {
		return false
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(income[1], ",", ""))
	return err == nil && v.IsPositive()
}

func isPersonalQuestion(question string) bool {
	q := strings.ToLower(question)
	for _, k := range personalKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}
