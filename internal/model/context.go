package model

import (
	"time"
)

// Turn records one request/response pair in a session's history.
type Turn struct {
	Result   ClassificationResult `json:"result"`
	Decision ResponseDecision     `json:"decision"`
	At       time.Time            `json:"at"`
}

// ConversationContext is the per-session mutable state. It is owned
// exclusively by the session store; the pipeline receives snapshot copies and
// mutates only through the store's append contract.
//
// Invariant: ExpiresAt == LastActiveAt + TTL. An expired context is logically
// absent and is recreated empty on next access.
type ConversationContext struct {
	SessionID string `json:"session_id"`

	// Turns holds past turns, newest last, bounded by the store's capacity.
	Turns []Turn `json:"turns"`

	// CarriedEntities maps each entity kind to its most recent value, used
	// to resolve references like "that order" on later turns.
	CarriedEntities map[EntityKind]string `json:"carried_entities"`

	// Rotation tracks the per-intent template rotation cursor.
	Rotation map[Intent]int `json:"rotation"`

	TurnCount    int       `json:"turn_count"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// NewConversationContext returns an empty context for a session.
func NewConversationContext(sessionID string, now time.Time, ttl time.Duration) *ConversationContext {
	return &ConversationContext{
		SessionID:       sessionID,
		CarriedEntities: make(map[EntityKind]string),
		Rotation:        make(map[Intent]int),
		CreatedAt:       now,
		LastActiveAt:    now,
		ExpiresAt:       now.Add(ttl),
	}
}

// LastIntent returns the intent of the most recent turn, or IntentUnknown
// for a fresh session.
func (c *ConversationContext) LastIntent() Intent {
	if len(c.Turns) == 0 {
		return IntentUnknown
	}
	return c.Turns[len(c.Turns)-1].Result.Intent
}

// LowConfidenceStreak counts how many of the newest turns classified the
// given intent with confidence strictly below threshold, stopping at the
// first turn that breaks the run.
func (c *ConversationContext) LowConfidenceStreak(intent Intent, threshold float64) int {
	streak := 0
	for i := len(c.Turns) - 1; i >= 0; i-- {
		r := c.Turns[i].Result
		if r.Intent != intent || r.Confidence >= threshold {
			break
		}
		streak++
	}
	return streak
}

// Clone returns a deep copy safe to read after the store releases its lock.
func (c *ConversationContext) Clone() *ConversationContext {
	cp := *c
	cp.Turns = make([]Turn, len(c.Turns))
	copy(cp.Turns, c.Turns)
	cp.CarriedEntities = make(map[EntityKind]string, len(c.CarriedEntities))
	for k, v := range c.CarriedEntities {
		cp.CarriedEntities[k] = v
	}
	cp.Rotation = make(map[Intent]int, len(c.Rotation))
	for k, v := range c.Rotation {
		cp.Rotation[k] = v
	}
	return &cp
}
