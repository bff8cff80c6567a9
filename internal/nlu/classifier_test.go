package nlu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailcx/support-chatbot/internal/model"
)

const (
	testFloor = 0.2
	testBonus = 1.5
)

func classify(t *testing.T, text string, prior model.Intent) model.ClassificationResult {
	t.Helper()
	c := NewClassifier(testFloor, testBonus)
	return c.Classify(text, Extract(text), prior)
}

func TestClassifyTrackOrderWithEntity(t *testing.T) {
	result := classify(t, "Where is my order AB12345678?", model.IntentUnknown)

	assert.Equal(t, model.IntentTrackOrder, result.Intent)
	// Two trigger phrases plus the order number boost.
	assert.InDelta(t, 3.5/4.5, result.Confidence, 1e-9)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, model.EntityOrderNumber, result.Entities[0].Kind)
}

func TestClassifyInventoryCheck(t *testing.T) {
	result := classify(t, "Is the iPhone 13 in stock?", model.IntentUnknown)

	assert.Equal(t, model.IntentInventoryCheck, result.Intent)
	assert.Greater(t, result.Confidence, 0.7)
}

func TestClassifyGibberishIsUnknown(t *testing.T) {
	result := classify(t, "asdf qwerty zxcvb", model.IntentUnknown)

	assert.Equal(t, model.IntentUnknown, result.Intent)
	assert.Zero(t, result.Confidence)
	assert.Empty(t, result.Candidates)
}

func TestClassifyBelowFloorIsUnknown(t *testing.T) {
	// One weak trigger scores under a floor raised above it.
	c := NewClassifier(0.5, testBonus)
	result := c.Classify("hello", nil, model.IntentUnknown)

	assert.Equal(t, model.IntentUnknown, result.Intent)
	assert.Zero(t, result.Confidence)
	// The runner-up list still records what almost won.
	require.NotEmpty(t, result.Candidates)
	assert.Equal(t, model.IntentGeneralInquiry, result.Candidates[0].Intent)
}

func TestClassifyContinuityInheritsPriorIntent(t *testing.T) {
	// No trigger for any intent: the entity-only follow-up stays on topic.
	result := classify(t, "what about AB12345679 then", model.IntentTrackOrder)

	assert.Equal(t, model.IntentTrackOrder, result.Intent)
	// Continuity bonus plus the prior intent's entity boost.
	assert.InDelta(t, 3.0/4.5, result.Confidence, 1e-9)
}

func TestClassifyContinuityBrokenByOtherIntentTrigger(t *testing.T) {
	result := classify(t, "actually, is it in stock?", model.IntentTrackOrder)

	assert.Equal(t, model.IntentInventoryCheck, result.Intent)
}

func TestClassifyNoContinuityWithoutPrior(t *testing.T) {
	result := classify(t, "what about AB12345679 then", model.IntentUnknown)

	assert.Equal(t, model.IntentUnknown, result.Intent)
}

func TestClassifyTieBreaksByPriorityOrder(t *testing.T) {
	// "return" hits complaint and nothing else; "package" hits track_order
	// and nothing else; together each scores one hit and the fixed
	// priority order decides.
	result := classify(t, "return the package", model.IntentUnknown)

	assert.Equal(t, model.IntentTrackOrder, result.Intent)
	require.NotEmpty(t, result.Candidates)
	assert.Equal(t, model.IntentComplaint, result.Candidates[0].Intent)
	assert.Equal(t, result.Confidence, result.Candidates[0].Score)
}

func TestClassifyConfidenceCappedAtOne(t *testing.T) {
	result := classify(t,
		"track my order AB12345678, what is the order status, where is my order, is it shipped?",
		model.IntentUnknown)

	assert.Equal(t, model.IntentTrackOrder, result.Intent)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestClassifyEntityAloneDoesNotNominate(t *testing.T) {
	// A bare order number with no trigger phrase must not classify as
	// track_order out of nowhere.
	result := classify(t, "AB12345678", model.IntentUnknown)

	assert.Equal(t, model.IntentUnknown, result.Intent)
}

func TestClassifyCandidatesBounded(t *testing.T) {
	result := classify(t,
		"help with the price and stock of my order at the store",
		model.IntentUnknown)

	assert.LessOrEqual(t, len(result.Candidates), 3)
	assert.NotEqual(t, model.IntentUnknown, result.Intent)
}

func TestClassifyIsDeterministic(t *testing.T) {
	text := "is the iphone 13 in stock at the downtown store?"
	first := classify(t, text, model.IntentUnknown)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classify(t, text, model.IntentUnknown))
	}
}
