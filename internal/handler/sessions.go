package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/retailcx/support-chatbot/internal/middleware"
	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/internal/pipeline"
)

// SessionHandler handles session inspection and reset requests.
type SessionHandler struct {
	pipeline *pipeline.Pipeline
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(p *pipeline.Pipeline) *SessionHandler {
	return &SessionHandler{pipeline: p}
}

// History handles GET /api/v1/sessions/{sessionID}/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	turns, err := h.pipeline.History(sessionID)
	if err != nil {
		if errors.Is(err, pipeline.ErrStoreUnavailable) {
			writeRetryable(w, http.StatusServiceUnavailable, "context store unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if turns == nil {
		turns = []model.Turn{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"turns":      turns,
	})
}

// Reset handles DELETE /api/v1/sessions/{sessionID}
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.pipeline.Reset(sessionID); err != nil {
		if errors.Is(err, pipeline.ErrStoreUnavailable) {
			writeRetryable(w, http.StatusServiceUnavailable, "context store unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Intents handles GET /api/v1/intents
func (h *SessionHandler) Intents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"intents": model.SupportedIntents,
	})
}
