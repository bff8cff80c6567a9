package model

import (
	"time"
)

// Intent is the closed-set category describing what the customer wants.
type Intent string

const (
	IntentTrackOrder     Intent = "track_order"
	IntentProductInfo    Intent = "product_info"
	IntentInventoryCheck Intent = "inventory_check"
	IntentStoreLocator   Intent = "store_locator"
	IntentPricing        Intent = "pricing"
	IntentComplaint      Intent = "complaint"
	IntentShippingInfo   Intent = "shipping_info"
	IntentAccountHelp    Intent = "account_help"
	IntentGeneralInquiry Intent = "general_inquiry"

	// IntentUnknown is the terminal classification when no intent clears
	// the floor score. It is a normal outcome, not an error.
	IntentUnknown Intent = "unknown"
)

// SupportedIntents lists every classifiable intent in priority order:
// ties between equal scores resolve to the earlier entry, so more specific
// intents outrank general_inquiry.
var SupportedIntents = []Intent{
	IntentTrackOrder,
	IntentComplaint,
	IntentAccountHelp,
	IntentInventoryCheck,
	IntentShippingInfo,
	IntentStoreLocator,
	IntentPricing,
	IntentProductInfo,
	IntentGeneralInquiry,
}

// Message is the input unit supplied by the calling layer. Immutable once
// created and consumed exactly once by the pipeline.
type Message struct {
	Text       string    `json:"text"`
	SessionID  string    `json:"session_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Candidate is a runner-up intent with its normalized score, kept for
// diagnostics.
type Candidate struct {
	Intent Intent  `json:"intent"`
	Score  float64 `json:"score"`
}

// ClassificationResult is the classifier's immutable verdict for one message.
type ClassificationResult struct {
	Intent     Intent      `json:"intent"`
	Confidence float64     `json:"confidence"`
	Entities   []Entity    `json:"entities,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}
