package model

// Action tags suggested alongside a response.
const (
	ActionHumanHandoff      = "speak_with_agent"
	ActionRetry             = "try_again"
	ActionTrackPackage      = "track_package"
	ActionContactCarrier    = "contact_shipping_carrier"
	ActionViewSimilar       = "view_similar_products"
	ActionReadReviews       = "read_reviews"
	ActionCheckAvailability = "check_availability"
	ActionNotifyRestock     = "notify_when_available"
	ActionGetDirections     = "get_directions"
	ActionCallStore         = "call_store"
	ActionViewPromotions    = "view_promotions"
	ActionAddToCart         = "add_to_cart"
	ActionFileComplaint     = "file_formal_complaint"
	ActionResetPassword     = "reset_password"
)

// ResponseDecision is the selector's immutable output for one message:
// whether to hand off to a human, which template produced the reply, and the
// fully resolved text.
type ResponseDecision struct {
	Escalate         bool     `json:"escalate"`
	TemplateID       string   `json:"template_id"`
	Text             string   `json:"resolved_text"`
	SuggestedActions []string `json:"suggested_actions,omitempty"`
}
