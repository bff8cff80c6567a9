// Package session owns per-session conversation state: bounded turn history,
// carried entities, and TTL-based expiry.
package session

import (
	"github.com/retailcx/support-chatbot/internal/model"
)

// Store is the context store contract. Operations on an unknown or expired
// session never fail; they transparently create a fresh context, because a
// cold-started session must not break the conversation, only reset its
// memory. Implementations backed by external storage surface availability
// errors, which callers must treat as retryable and fatal for the request.
type Store interface {
	// GetOrCreate returns a snapshot of the session's non-expired context,
	// creating an empty one when absent or expired.
	GetOrCreate(sessionID string) (*model.ConversationContext, error)

	// AppendTurn records one turn: evicts the oldest at capacity,
	// refreshes the activity clock, and overwrites carried entities for
	// each kind present in the result (last write wins per kind).
	AppendTurn(sessionID string, result model.ClassificationResult, decision model.ResponseDecision) error

	// History returns a copy of the session's recorded turns.
	History(sessionID string) ([]model.Turn, error)

	// Clear removes the session's context entirely.
	Clear(sessionID string) error

	// SweepExpired removes every context whose expiry has passed and
	// returns how many were removed. Safe to run concurrently with live
	// traffic; a concurrently renewed context is never removed.
	SweepExpired() int
}
