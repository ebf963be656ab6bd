package advisor

import (
	"fmt"
	"strings"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/shopspring/decimal"
)

// Personas the analysis prompt classifies into.
var Personas = []string{"YOLO Earner", "Calculated Climber", "Cautious Saver", "Balanced Builder"}

// NoDataReply answers personal questions asked before any data was provided.
const NoDataReply = "I don't have your data. Upload a CSV or manually enter your financial information and I'll be able to guide you with personalized advice."

const chatSystemPrompt = "You're Finora, an AI financial assistant."

func rupees(d decimal.Decimal) string {
	return "₹" + d.String()
}

func buildAnalyzePrompt(p domain.FinancialProfile) string {
	var b strings.Builder
	b.WriteString("You are Finora, a financial burn risk coach. Based on this data:\n")
	fmt.Fprintf(&b, "- Monthly income: %s\n", rupees(p.Income))
	fmt.Fprintf(&b, "- Expenses: %s\n", rupees(p.TotalExpenses))
	fmt.Fprintf(&b, "- Emergency fund: %s\n", rupees(p.EmergencyFund))
	fmt.Fprintf(&b, "- Fixed EMIs: %s\n", rupees(p.MonthlyEMI))
	b.WriteString("- Category-wise expenses:\n")
	for _, c := range domain.Categories {
		fmt.Fprintf(&b, "  - %s: %s\n", c, rupees(p.Total(c)))
	}

	b.WriteString("\nGenerate a comprehensive financial analysis with:\n" +
		"1. A 4-line summary of the current burn risk situation\n" +
		"2. Classification into one of these personas: " + quotedList(Personas) + "\n" +
		"3. Three specific, actionable recommendations to improve financial health\n" +
		"4. A brief explanation of lifestyle inflation risk (if any)\n\n" +
		"Tone: Friendly and professional, like a CFO helping a peer.")
	return b.String()
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	last := len(quoted) - 1
	return strings.Join(quoted[:last], ", ") + ", or " + quoted[last]
}

func buildParsePrompt(description string) string {
	return "Parse this financial description into structured data:\n" +
		fmt.Sprintf("%q\n\n", description) +
		"Extract and return a JSON object with these fields:\n" +
		"- income (number)\n" +
		"- expenses (total number)\n" +
		"- categories (object with keys: dining, subscriptions, groceries, transport, utilities, other)\n" +
		"- emergencyFund (number, default to 0 if not mentioned)\n" +
		"- monthlyEmi (number, default to 0 if not mentioned)\n\n" +
		"Example response format:\n" +
		"{\n" +
		"  \"income\": 50000,\n" +
		"  \"expenses\": 17000,\n" +
		"  \"categories\": {\"dining\": 5000, \"subscriptions\": 2000, \"groceries\": 5000, \"transport\": 5000},\n" +
		"  \"emergencyFund\": 0,\n" +
		"  \"monthlyEmi\": 0\n" +
		"}\n\n" +
		"Only return the JSON object, no other text."
}

// InitialChatContext seeds a conversation with the user's figures and the
// analysis they were already shown. The figures go into the system message
// so Chat can tell the conversation has data.
func InitialChatContext(p domain.FinancialProfile, analysisText string) []Message {
	var system strings.Builder
	system.WriteString(chatSystemPrompt)
	fmt.Fprintf(&system, "\nIncome: %s\nExpenses: %s", rupees(p.Income), rupees(p.TotalExpenses))

	var user strings.Builder
	fmt.Fprintf(&user, "My monthly income is %s and here are my expenses:", rupees(p.Income))
	for _, c := range domain.Categories {
		fmt.Fprintf(&user, "\n%s: %s", c, rupees(p.Total(c)))
	}

	msgs := []Message{
		{Role: RoleSystem, Content: system.String()},
		{Role: RoleUser, Content: user.String()},
	}
	if analysisText != "" {
		msgs = append(msgs, Message{Role: RoleAssistant, Content: analysisText})
	}
	return msgs
}
