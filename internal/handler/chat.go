// Package handler provides HTTP handlers for the chat API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/retailcx/support-chatbot/internal/middleware"
	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/internal/pipeline"
	"github.com/retailcx/support-chatbot/pkg/logger"
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message    string `json:"message"`
	SessionID  string `json:"session_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
}

// ChatResponse is the reply for one handled message.
type ChatResponse struct {
	Response         string            `json:"response"`
	Intent           model.Intent      `json:"intent"`
	Confidence       float64           `json:"confidence"`
	Entities         []model.Entity    `json:"entities"`
	Candidates       []model.Candidate `json:"candidates,omitempty"`
	Escalate         bool              `json:"escalate"`
	SuggestedActions []string          `json:"suggested_actions,omitempty"`
	SessionID        string            `json:"session_id"`
	Timestamp        time.Time         `json:"timestamp"`
}

// ChatHandler handles chat message requests.
type ChatHandler struct {
	pipeline *pipeline.Pipeline
	maxLen   int
	logger   *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(p *pipeline.Pipeline, maxMessageLength int, log *logger.Logger) *ChatHandler {
	return &ChatHandler{pipeline: p, maxLen: maxMessageLength, logger: log}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessage(req.Message, h.maxLen); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID != "" {
		if err := middleware.ValidateSessionID(req.SessionID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := middleware.ValidateCustomerID(req.CustomerID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customerID := req.CustomerID
	if customerID == "" {
		customerID = middleware.GetCustomerID(r.Context())
	}

	result, err := h.pipeline.Handle(r.Context(), model.Message{
		Text:       req.Message,
		SessionID:  req.SessionID,
		CustomerID: customerID,
	})
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrInvalidMessage):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, pipeline.ErrStoreUnavailable):
			writeRetryable(w, http.StatusServiceUnavailable, "context store unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	entities := result.Class.Entities
	if entities == nil {
		entities = []model.Entity{}
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:         result.Resp.Text,
		Intent:           result.Class.Intent,
		Confidence:       result.Class.Confidence,
		Entities:         entities,
		Candidates:       result.Class.Candidates,
		Escalate:         result.Resp.Escalate,
		SuggestedActions: result.Resp.SuggestedActions,
		SessionID:        result.SessionID,
		Timestamp:        time.Now().UTC(),
	})
}
