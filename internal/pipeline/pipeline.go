// Package pipeline orchestrates one message through the understanding
// stages: validate, load context, extract entities, classify intent, select
// a response, persist the turn, and emit analytics.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcx/support-chatbot/internal/analytics"
	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/internal/nlu"
	"github.com/retailcx/support-chatbot/internal/respond"
	"github.com/retailcx/support-chatbot/internal/session"
	"github.com/retailcx/support-chatbot/pkg/logger"
	"github.com/retailcx/support-chatbot/pkg/metrics"
)

var (
	// ErrInvalidMessage rejects empty or oversized input before any stage
	// runs. It maps to a 400 at the transport layer.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrStoreUnavailable signals a context store outage. Retryable; maps
	// to a 503.
	ErrStoreUnavailable = errors.New("context store unavailable")
)

// Result is what one handled message produces: the decision to return to the
// caller plus the classification it was based on.
type Result struct {
	SessionID string
	Resp      model.ResponseDecision
	Class     model.ClassificationResult
}

// Pipeline wires the stages together. It is stateless apart from its
// collaborators and safe for concurrent use.
type Pipeline struct {
	classifier *nlu.Classifier
	selector   *respond.Selector
	store      session.Store
	sink       analytics.Sink
	logger     *logger.Logger
	maxLen     int
	now        func() time.Time
}

func New(classifier *nlu.Classifier, selector *respond.Selector, store session.Store, sink analytics.Sink, log *logger.Logger, maxMessageLength int) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		selector:   selector,
		store:      store,
		sink:       sink,
		logger:     log,
		maxLen:     maxMessageLength,
		now:        time.Now,
	}
}

// Handle processes a single message. The session's context is updated
// exactly once, after the decision is final; on any error before that point
// the context is untouched and the caller may retry.
func (p *Pipeline) Handle(ctx context.Context, msg model.Message) (*Result, error) {
	start := p.now()

	if err := validate(msg, p.maxLen); err != nil {
		return nil, err
	}
	if msg.SessionID == "" {
		msg.SessionID = uuid.New().String()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = start
	}

	conv, err := p.store.GetOrCreate(msg.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	entities := nlu.Extract(msg.Text)
	result := p.classifier.Classify(msg.Text, entities, conv.LastIntent())
	decision := p.selector.Select(ctx, msg, result, conv)

	if err := p.store.AppendTurn(msg.SessionID, result, decision); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	elapsed := p.now().Sub(start)
	metrics.RecordHandled(string(result.Intent), result.Confidence, elapsed.Seconds())
	p.logger.Info("message handled",
		zap.String("session_id", msg.SessionID),
		zap.String("intent", string(result.Intent)),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("escalated", decision.Escalate),
		zap.String("template_id", decision.TemplateID),
		zap.Duration("latency", elapsed),
	)

	p.sink.Record(ctx, &model.InteractionEvent{
		ID:         uuid.New().String(),
		SessionID:  msg.SessionID,
		CustomerID: msg.CustomerID,
		Intent:     result.Intent,
		Confidence: result.Confidence,
		Escalated:  decision.Escalate,
		TemplateID: decision.TemplateID,
		LatencyMs:  elapsed.Milliseconds(),
		CreatedAt:  p.now(),
	})

	return &Result{SessionID: msg.SessionID, Resp: decision, Class: result}, nil
}

// History returns the recorded turns for a session.
func (p *Pipeline) History(sessionID string) ([]model.Turn, error) {
	turns, err := p.store.History(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return turns, nil
}

// Reset clears a session's context.
func (p *Pipeline) Reset(sessionID string) error {
	if err := p.store.Clear(sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func validate(msg model.Message, maxLen int) error {
	if msg.Text == "" {
		return fmt.Errorf("%w: message text is empty", ErrInvalidMessage)
	}
	if utf8.RuneCountInString(msg.Text) > maxLen {
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidMessage, maxLen)
	}
	if !utf8.ValidString(msg.Text) {
		return fmt.Errorf("%w: message is not valid UTF-8", ErrInvalidMessage)
	}
	if len(msg.SessionID) > 128 {
		return fmt.Errorf("%w: session id exceeds 128 characters", ErrInvalidMessage)
	}
	return nil
}
