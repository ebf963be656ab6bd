package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dvloznov/finora/internal/advisor"
	"github.com/dvloznov/finora/internal/api/middleware"
	"github.com/rs/zerolog"
)

// chatFailureReply keeps the chat window readable when the model fails.
const chatFailureReply = "Sorry, something went wrong."

// AdvisorHandler handles narrative endpoints.
type AdvisorHandler struct {
	advisor Advisor
	log     zerolog.Logger
}

// NewAdvisorHandler creates a new advisor handler.
func NewAdvisorHandler(a Advisor, log zerolog.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		advisor: a,
		log:     log,
	}
}

// Analyze handles POST /api/analyze
func (h *AdvisorHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	profile, err := req.toProfile()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	analysis, err := h.advisor.Analyze(r.Context(), profile)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("Analysis failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to generate analysis")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analysis)
}

// Chat handles POST /api/financial-chat
func (h *AdvisorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Messages []advisor.Message `json:"messages"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	reply, err := h.advisor.Chat(r.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, advisor.ErrNoMessages) {
			middleware.WriteError(w, http.StatusBadRequest, "messages must include a user message")
			return
		}
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("Chat failed")
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]string{"reply": chatFailureReply})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// ParseExpenses handles POST /api/parse-expenses
func (h *AdvisorHandler) ParseExpenses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	profile, err := h.advisor.ParseDescription(r.Context(), req.Text)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", middleware.GetRequestID(r.Context())).Msg("Expense parsing failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse expenses")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, profile)
}
