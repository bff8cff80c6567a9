package session

import (
	"sync"
	"time"

	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/pkg/metrics"
)

// MemoryStore is the in-memory Store. The outer lock guards the session map;
// each entry carries its own mutex so sessions never block each other and a
// second request for the same session waits for the first's read-modify-write
// instead of observing half-updated state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ttl      time.Duration
	maxTurns int

	// now is replaceable in tests to drive expiry.
	now func() time.Time
}

type entry struct {
	mu  sync.Mutex
	ctx *model.ConversationContext
}

// NewMemoryStore creates a store with the given context TTL and turn-history
// capacity.
func NewMemoryStore(ttl time.Duration, maxTurns int) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

// GetOrCreate implements Store. The returned context is a snapshot; callers
// mutate only through AppendTurn.
func (s *MemoryStore) GetOrCreate(sessionID string) (*model.ConversationContext, error) {
	e := s.entryFor(sessionID)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.now()
	if now.After(e.ctx.ExpiresAt) {
		// Expired contexts are logically absent: reset in place rather
		// than reuse stale memory.
		e.ctx = model.NewConversationContext(sessionID, now, s.ttl)
	}
	return e.ctx.Clone(), nil
}

// AppendTurn implements Store.
func (s *MemoryStore) AppendTurn(sessionID string, result model.ClassificationResult, decision model.ResponseDecision) error {
	e := s.entryFor(sessionID)

	e.mu.Lock()
	defer e.mu.Unlock()

	now := s.now()
	if now.After(e.ctx.ExpiresAt) {
		e.ctx = model.NewConversationContext(sessionID, now, s.ttl)
	}

	ctx := e.ctx
	ctx.Turns = append(ctx.Turns, model.Turn{Result: result, Decision: decision, At: now})
	if len(ctx.Turns) > s.maxTurns {
		ctx.Turns = ctx.Turns[len(ctx.Turns)-s.maxTurns:]
	}
	ctx.TurnCount++

	for _, ent := range result.Entities {
		ctx.CarriedEntities[ent.Kind] = ent.Value
	}
	ctx.Rotation[result.Intent]++

	ctx.LastActiveAt = now
	ctx.ExpiresAt = now.Add(s.ttl)
	return nil
}

// History implements Store.
func (s *MemoryStore) History(sessionID string) ([]model.Turn, error) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s.now().After(e.ctx.ExpiresAt) {
		return nil, nil
	}
	turns := make([]model.Turn, len(e.ctx.Turns))
	copy(turns, e.ctx.Turns)
	return turns, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(sessionID string) error {
	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; ok {
		delete(s.sessions, sessionID)
		metrics.ActiveSessions.Dec()
	}
	s.mu.Unlock()
	return nil
}

// SweepExpired implements Store. It never holds the map lock across more
// than a single session's removal, and re-checks expiry under the entry lock
// so a context renewed by a live request is left alone.
func (s *MemoryStore) SweepExpired() int {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range ids {
		s.mu.RLock()
		e, ok := s.sessions[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}

		e.mu.Lock()
		expired := s.now().After(e.ctx.ExpiresAt)
		e.mu.Unlock()
		if !expired {
			continue
		}

		s.mu.Lock()
		if cur, ok := s.sessions[id]; ok && cur == e {
			cur.mu.Lock()
			// A live request may have renewed the context between the
			// check above and taking the map lock; the renewal wins.
			if s.now().After(cur.ctx.ExpiresAt) {
				delete(s.sessions, id)
				removed++
			}
			cur.mu.Unlock()
		}
		s.mu.Unlock()
	}

	if removed > 0 {
		metrics.SessionsSweptTotal.Add(float64(removed))
		metrics.ActiveSessions.Sub(float64(removed))
	}
	return removed
}

// Len reports how many contexts are currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) entryFor(sessionID string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[sessionID]; ok {
		return e
	}
	e = &entry{ctx: model.NewConversationContext(sessionID, s.now(), s.ttl)}
	s.sessions[sessionID] = e
	metrics.ActiveSessions.Inc()
	return e
}
