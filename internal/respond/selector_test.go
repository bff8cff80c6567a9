package respond

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/retailcx/support-chatbot/internal/backend"
	"github.com/retailcx/support-chatbot/internal/config"
	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/pkg/logger"
)

func testOptions() Options {
	return Options{
		EscalationThreshold: 0.7,
		LowConfidenceRepeat: 2,
		MaxTurnsBeforeAgent: 8,
		RotationScope:       config.RotationPerSession,
		CompanyName:         "RetailCX",
		LookupTimeout:       time.Second,
	}
}

func newTestSelector(lookup backend.Lookup) *Selector {
	if lookup == nil {
		lookup = backend.NewMockLookup()
	}
	return NewSelector(testOptions(), lookup, logger.NewNop())
}

func newConv(turnCount int) *model.ConversationContext {
	conv := model.NewConversationContext("s1", time.Now(), 30*time.Minute)
	conv.TurnCount = turnCount
	return conv
}

func msg(text string) model.Message {
	return model.Message{Text: text, SessionID: "s1"}
}

func resultFor(intent model.Intent, confidence float64, entities ...model.Entity) model.ClassificationResult {
	return model.ClassificationResult{Intent: intent, Confidence: confidence, Entities: entities}
}

func TestSelectTrackOrderWithLookup(t *testing.T) {
	s := newTestSelector(nil)
	conv := newConv(1)

	d := s.Select(context.Background(), msg("where is my order AB12345678"),
		resultFor(model.IntentTrackOrder, 0.8,
			model.Entity{Kind: model.EntityOrderNumber, Value: "AB12345678"}),
		conv)

	assert.False(t, d.Escalate)
	assert.Equal(t, "track_order/status", d.TemplateID)
	assert.Equal(t, "Good news! Order AB12345678 is currently shipped.", d.Text)
	assert.Contains(t, d.SuggestedActions, model.ActionTrackPackage)
}

func TestSelectGreetingOnFirstTurnOnly(t *testing.T) {
	s := newTestSelector(nil)

	first := s.Select(context.Background(), msg("hello"),
		resultFor(model.IntentGeneralInquiry, 0.9), newConv(0))
	assert.Contains(t, first.Text, "RetailCX")

	later := s.Select(context.Background(), msg("hello"),
		resultFor(model.IntentGeneralInquiry, 0.9), newConv(3))
	assert.NotContains(t, later.Text, "RetailCX")
}

func TestSelectAsksForMissingEntity(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("I want to track my order"),
		resultFor(model.IntentTrackOrder, 0.8), newConv(1))

	assert.False(t, d.Escalate)
	assert.Equal(t, "track_order/ask_number", d.TemplateID)
	assert.Contains(t, d.Text, "order number")
}

func TestSelectUsesCarriedEntity(t *testing.T) {
	s := newTestSelector(nil)
	conv := newConv(2)
	conv.CarriedEntities[model.EntityOrderNumber] = "AB12345678"

	d := s.Select(context.Background(), msg("any update on it?"),
		resultFor(model.IntentTrackOrder, 0.75), conv)

	assert.Equal(t, "track_order/status", d.TemplateID)
	assert.Contains(t, d.Text, "AB12345678")
}

func TestSelectMessageEntityBeatsCarried(t *testing.T) {
	s := newTestSelector(nil)
	conv := newConv(2)
	conv.CarriedEntities[model.EntityOrderNumber] = "AB99999999"

	d := s.Select(context.Background(), msg("check AB12345678 instead"),
		resultFor(model.IntentTrackOrder, 0.8,
			model.Entity{Kind: model.EntityOrderNumber, Value: "AB12345678"}),
		conv)

	assert.Contains(t, d.Text, "AB12345678")
	assert.NotContains(t, d.Text, "AB99999999")
}

func TestSelectLookupNotFound(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("track ZZ00000000"),
		resultFor(model.IntentTrackOrder, 0.8,
			model.Entity{Kind: model.EntityOrderNumber, Value: "ZZ00000000"}),
		newConv(1))

	assert.False(t, d.Escalate)
	assert.Equal(t, "track_order/not_found", d.TemplateID)
	assert.Contains(t, d.Text, "ZZ00000000")
}

func TestSelectLookupFailureDegrades(t *testing.T) {
	failing := backend.LookupFunc(func(context.Context, backend.Domain, string) (map[string]string, error) {
		return nil, errors.New("connection refused")
	})
	s := newTestSelector(failing)

	d := s.Select(context.Background(), msg("track AB12345678"),
		resultFor(model.IntentTrackOrder, 0.8,
			model.Entity{Kind: model.EntityOrderNumber, Value: "AB12345678"}),
		newConv(1))

	assert.False(t, d.Escalate)
	assert.Equal(t, "lookup_degraded", d.TemplateID)
}

func TestSelectRotationVariesPhrasing(t *testing.T) {
	s := newTestSelector(nil)

	conv := newConv(1)
	first := s.Select(context.Background(), msg("help"),
		resultFor(model.IntentGeneralInquiry, 0.9), conv)

	conv.Rotation[model.IntentGeneralInquiry] = 1
	second := s.Select(context.Background(), msg("help"),
		resultFor(model.IntentGeneralInquiry, 0.9), conv)

	assert.NotEqual(t, first.Text, second.Text)
	assert.Equal(t, first.TemplateID, second.TemplateID)

	// Same context snapshot, same decision.
	again := s.Select(context.Background(), msg("help"),
		resultFor(model.IntentGeneralInquiry, 0.9), conv)
	assert.Equal(t, second.Text, again.Text)
}

func TestSelectGlobalRotationAdvancesAcrossSessions(t *testing.T) {
	opts := testOptions()
	opts.RotationScope = config.RotationGlobal
	s := NewSelector(opts, backend.NewMockLookup(), logger.NewNop())

	first := s.Select(context.Background(), msg("help"),
		resultFor(model.IntentGeneralInquiry, 0.9), newConv(1))
	second := s.Select(context.Background(), msg("help"),
		resultFor(model.IntentGeneralInquiry, 0.9), newConv(1))

	assert.NotEqual(t, first.Text, second.Text)
}

func TestEscalateOnAgentRequest(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("let me speak to a human"),
		resultFor(model.IntentGeneralInquiry, 0.9), newConv(1))

	assert.True(t, d.Escalate)
	assert.Equal(t, "escalation/agent_requested", d.TemplateID)
	assert.Equal(t, []string{model.ActionHumanHandoff}, d.SuggestedActions)
}

func TestEscalateOnUnknownIntent(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("asdf qwerty"),
		resultFor(model.IntentUnknown, 0.0), newConv(1))

	assert.True(t, d.Escalate)
	assert.Equal(t, "escalation/unknown_intent", d.TemplateID)
}

func TestEscalateOnLowConfidence(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("something about products maybe"),
		resultFor(model.IntentProductInfo, 0.3), newConv(1))

	assert.True(t, d.Escalate)
	assert.Equal(t, "escalation/low_confidence", d.TemplateID)
}

func TestEscalateOnRepeatedLowConfidence(t *testing.T) {
	s := newTestSelector(nil)
	conv := newConv(2)
	for i := 0; i < 2; i++ {
		conv.Turns = append(conv.Turns, model.Turn{
			Result: resultFor(model.IntentProductInfo, 0.4),
		})
	}

	d := s.Select(context.Background(), msg("still about that product"),
		resultFor(model.IntentProductInfo, 0.4), conv)

	assert.True(t, d.Escalate)
	assert.Equal(t, "escalation/repeated_low_confidence", d.TemplateID)
}

func TestEscalateOnAccountHelp(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("I need to reset my password"),
		resultFor(model.IntentAccountHelp, 0.9), newConv(1))

	assert.True(t, d.Escalate)
	assert.Equal(t, "escalation/sensitive_intent", d.TemplateID)
}

func TestEscalateOnAngryComplaint(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("this is unacceptable, my item arrived broken"),
		resultFor(model.IntentComplaint, 0.9), newConv(1))

	assert.True(t, d.Escalate)
	assert.Equal(t, "escalation/sensitive_intent", d.TemplateID)
}

func TestCalmComplaintIsHandled(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("my item has a small problem"),
		resultFor(model.IntentComplaint, 0.9), newConv(1))

	assert.False(t, d.Escalate)
	assert.Equal(t, "complaint/ack", d.TemplateID)
	assert.Contains(t, d.SuggestedActions, model.ActionHumanHandoff)
}

func TestEscalateOnConversationLength(t *testing.T) {
	s := newTestSelector(nil)

	d := s.Select(context.Background(), msg("and one more thing about pricing"),
		resultFor(model.IntentPricing, 0.9), newConv(8))

	assert.True(t, d.Escalate)
	assert.Equal(t, "escalation/conversation_length", d.TemplateID)
}
