package model

import (
	"time"
)

// InteractionEvent is the immutable analytics record emitted after each
// handled message. Emission is fire-and-forget: pipeline correctness never
// depends on the sink.
type InteractionEvent struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	CustomerID string    `json:"customer_id,omitempty"`
	Intent     Intent    `json:"intent"`
	Confidence float64   `json:"confidence"`
	Escalated  bool      `json:"escalated"`
	TemplateID string    `json:"template_id"`
	LatencyMs  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
