// Package advisor produces narrative coaching from a financial profile using
// a generative text model.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/finora/internal/domain"
	"github.com/dvloznov/finora/internal/logger"
)

// Message roles accepted by Chat.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Sampling temperatures per operation.
const (
	analyzeTemperature = 0.7
	chatTemperature    = 0.5
	parseTemperature   = 0.3
)

var (
	ErrEmptyResponse = errors.New("advisor: empty response from model")
	ErrNoMessages    = errors.New("advisor: conversation has no user message")
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is a single call to a text model.
type GenerateRequest struct {
	System      string
	Messages    []Message
	Temperature float32
	JSON        bool
}

// TextGenerator abstracts the model client for testing.
type TextGenerator interface {
	GenerateText(ctx context.Context, req GenerateRequest) (string, error)
}

// Analysis is a burn-risk narrative. Text is always the full model reply;
// the other fields are scraped from it and may be empty.
type Analysis struct {
	Text            string   `json:"analysis"`
	Persona         string   `json:"persona,omitempty"`
	Overview        []string `json:"overview,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Advisor talks to a TextGenerator on behalf of one user.
type Advisor struct {
	gen TextGenerator
}

// New creates an Advisor backed by gen.
func New(gen TextGenerator) *Advisor {
	return &Advisor{gen: gen}
}

// Analyze asks the model for a burn-risk analysis of profile.
func (a *Advisor) Analyze(ctx context.Context, profile domain.FinancialProfile) (*Analysis, error) {
	log := logger.FromContext(ctx)

	text, err := a.generate(ctx, GenerateRequest{
		Messages:    []Message{{Role: RoleUser, Content: buildAnalyzePrompt(profile)}},
		Temperature: analyzeTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("Analyze: %w", err)
	}

	analysis := scrapeAnalysis(text)
	log.Debug().
		Str("persona", analysis.Persona).
		Int("recommendations", len(analysis.Recommendations)).
		Msg("Analysis generated")
	return analysis, nil
}

// Chat continues a conversation. When the conversation carries no financial
// figures and the latest question is about the user's own money, Chat
// answers with NoDataReply without calling the model.
func (a *Advisor) Chat(ctx context.Context, messages []Message) (string, error) {
	log := logger.FromContext(ctx)

	var system []string
	var turns []Message
	lastUser := ""
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleUser:
			lastUser = m.Content
			turns = append(turns, m)
		default:
			turns = append(turns, m)
		}
	}
	if len(turns) == 0 || lastUser == "" {
		return "", ErrNoMessages
	}

	systemText := strings.Join(system, "\n")
	if !hasFinancialData(systemText) && isPersonalQuestion(lastUser) {
		log.Debug().Msg("Personal question without financial data, skipping model")
		return NoDataReply, nil
	}

	reply, err := a.generate(ctx, GenerateRequest{
		System:      systemText,
		Messages:    turns,
		Temperature: chatTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("Chat: %w", err)
	}
	return reply, nil
}

// ParseDescription turns a free-text description of someone's finances into
// a profile.
func (a *Advisor) ParseDescription(ctx context.Context, description string) (domain.FinancialProfile, error) {
	text, err := a.generate(ctx, GenerateRequest{
		Messages:    []Message{{Role: RoleUser, Content: buildParsePrompt(description)}},
		Temperature: parseTemperature,
		JSON:        true,
	})
	if err != nil {
		return domain.FinancialProfile{}, fmt.Errorf("ParseDescription: %w", err)
	}

	profile, err := profileFromModelJSON(text)
	if err != nil {
		return domain.FinancialProfile{}, fmt.Errorf("ParseDescription: %w", err)
	}
	return profile, nil
}

func (a *Advisor) generate(ctx context.Context, req GenerateRequest) (string, error) {
	text, err := a.gen.GenerateText(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
