package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcx/support-chatbot/internal/analytics"
	"github.com/retailcx/support-chatbot/internal/backend"
	"github.com/retailcx/support-chatbot/internal/config"
	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/internal/nlu"
	"github.com/retailcx/support-chatbot/internal/pipeline"
	"github.com/retailcx/support-chatbot/internal/respond"
	"github.com/retailcx/support-chatbot/internal/session"
	"github.com/retailcx/support-chatbot/pkg/logger"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	log := logger.NewNop()
	store := session.NewMemoryStore(30*time.Minute, 10)
	selector := respond.NewSelector(respond.Options{
		EscalationThreshold: 0.7,
		LowConfidenceRepeat: 2,
		MaxTurnsBeforeAgent: 8,
		RotationScope:       config.RotationPerSession,
		CompanyName:         "RetailCX",
		LookupTimeout:       time.Second,
	}, backend.NewMockLookup(), log)
	pipe := pipeline.New(nlu.NewClassifier(0.2, 1.5), selector, store, analytics.NewLogSink(log), log, 1000)

	chatHandler := NewChatHandler(pipe, 1000, log)
	sessionHandler := NewSessionHandler(pipe)

	r := chi.NewRouter()
	r.Post("/api/v1/chat", chatHandler.Chat)
	r.Get("/api/v1/intents", sessionHandler.Intents)
	r.Route("/api/v1/sessions/{sessionID}", func(r chi.Router) {
		r.Get("/history", sessionHandler.History)
		r.Delete("/", sessionHandler.Reset)
	})
	return r
}

func postChat(t *testing.T, r http.Handler, body ChatRequest) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestChatHappyPath(t *testing.T) {
	r := newTestRouter(t)

	rec := postChat(t, r, ChatRequest{
		Message:   "Where is my order AB12345678?",
		SessionID: "s1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.IntentTrackOrder, resp.Intent)
	assert.Greater(t, resp.Confidence, 0.7)
	assert.False(t, resp.Escalate)
	assert.Contains(t, resp.Response, "shipped")
	assert.Equal(t, "s1", resp.SessionID)
	require.Len(t, resp.Entities, 1)
	assert.Equal(t, model.EntityOrderNumber, resp.Entities[0].Kind)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestChatGeneratesSessionID(t *testing.T) {
	r := newTestRouter(t)

	rec := postChat(t, r, ChatRequest{Message: "hello, quick question"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
}

func TestChatRejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		req  ChatRequest
	}{
		{"empty message", ChatRequest{Message: ""}},
		{"oversized message", ChatRequest{Message: string(bytes.Repeat([]byte("a"), 1001))}},
		{"oversized session id", ChatRequest{Message: "hi", SessionID: string(bytes.Repeat([]byte("s"), 129))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, r, tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestChatRejectsMalformedBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionHistoryAndReset(t *testing.T) {
	r := newTestRouter(t)

	rec := postChat(t, r, ChatRequest{Message: "Where is my order AB12345678?", SessionID: "s1"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1/history", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		SessionID string       `json:"session_id"`
		Turns     []model.Turn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Equal(t, "s1", history.SessionID)
	require.Len(t, history.Turns, 1)
	assert.Equal(t, model.IntentTrackOrder, history.Turns[0].Result.Intent)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/sessions/s1", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sessions/s1/history", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Empty(t, history.Turns)
}

func TestHistoryUnknownSessionIsEmpty(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/never-seen/history", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		Turns []model.Turn `json:"turns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	assert.Empty(t, history.Turns)
}

func TestIntentsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/intents", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Intents []model.Intent `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Intents, model.IntentTrackOrder)
	assert.Contains(t, body.Intents, model.IntentGeneralInquiry)
	assert.NotContains(t, body.Intents, model.IntentUnknown)
}
