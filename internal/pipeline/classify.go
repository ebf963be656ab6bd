package pipeline

import (
	"strings"

	"github.com/dvloznov/finora/internal/domain"
)

// classifierRule maps a set of keywords to a category. A description matches
// when it contains any keyword.
type classifierRule struct {
	keywords []string
	category domain.Category
}

// classifierRules are evaluated top to bottom; the first hit wins.
var classifierRules = []classifierRule{
	{keywords: []string{"swiggy", "zomato", "food"}, category: domain.CategoryDining},
	{keywords: []string{"uber", "ola", "transport"}, category: domain.CategoryTransport},
	{keywords: []string{"grocery", "d-mart", "groceries"}, category: domain.CategoryGroceries},
	{keywords: []string{"subscription", "netflix", "prime"}, category: domain.CategorySubscriptions},
	{keywords: []string{"electricity", "bill"}, category: domain.CategoryUtilities},
}

// Classify infers a category from a free-text transaction description.
// It never fails: anything unrecognised is CategoryOther.
func Classify(description string) domain.Category {
	if description == "" {
		return domain.CategoryOther
	}
	desc := foldCase(description)
	for _, rule := range classifierRules {
		for _, kw := range rule.keywords {
			if strings.Contains(desc, kw) {
				return rule.category
			}
		}
	}
	return domain.CategoryOther
}
