package respond

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/retailcx/support-chatbot/internal/backend"
	"github.com/retailcx/support-chatbot/internal/config"
	"github.com/retailcx/support-chatbot/internal/model"
	"github.com/retailcx/support-chatbot/pkg/logger"
	"github.com/retailcx/support-chatbot/pkg/metrics"
)

// Escalation rule names, used as the template id suffix and metric label.
const (
	ruleLowConfidence      = "low_confidence"
	ruleUnknownIntent      = "unknown_intent"
	ruleRepeatedConfusion  = "repeated_low_confidence"
	ruleSensitiveIntent    = "sensitive_intent"
	ruleAgentRequested     = "agent_requested"
	ruleConversationLength = "conversation_length"
)

// agentRequestPhrases trigger an immediate handoff regardless of intent.
var agentRequestPhrases = []string{
	"speak to a human",
	"talk to a human",
	"real person",
	"human agent",
	"speak to someone",
	"talk to someone",
	"supervisor",
	"manager",
}

// negativeMarkers upgrade a complaint to an immediate handoff.
var negativeMarkers = []string{
	"angry", "furious", "frustrated", "unacceptable", "terrible",
	"awful", "horrible", "worst", "ridiculous", "lawsuit", "legal action",
	"refund", "never again",
}

// Options configures a Selector from the loaded application config.
type Options struct {
	EscalationThreshold float64
	LowConfidenceRepeat int
	MaxTurnsBeforeAgent int
	RotationScope       config.RotationScope
	CompanyName         string
	LookupTimeout       time.Duration
}

// Selector turns a classification result plus conversation context into a
// ResponseDecision. Selection is deterministic for per-session rotation:
// the same message against the same context snapshot yields the same
// decision. Global rotation trades that for cross-session variety.
type Selector struct {
	opts   Options
	lookup backend.Lookup
	logger *logger.Logger

	mu        sync.Mutex
	globalRot map[model.Intent]int
}

func NewSelector(opts Options, lookup backend.Lookup, log *logger.Logger) *Selector {
	return &Selector{
		opts:      opts,
		lookup:    lookup,
		logger:    log,
		globalRot: make(map[model.Intent]int),
	}
}

// Select chooses a response for one classified message. conv is a read-only
// snapshot of the pre-message context; Select never mutates it.
func (s *Selector) Select(ctx context.Context, msg model.Message, result model.ClassificationResult, conv *model.ConversationContext) model.ResponseDecision {
	if rule, ok := s.escalationRule(msg, result, conv); ok {
		metrics.EscalationsTotal.WithLabelValues(rule).Inc()
		s.logger.Info("escalating to human agent",
			zap.String("session_id", msg.SessionID),
			zap.String("rule", rule),
			zap.String("intent", string(result.Intent)),
			zap.Float64("confidence", result.Confidence),
		)
		idx := s.rotationIndex(conv, result.Intent)
		return model.ResponseDecision{
			Escalate:         true,
			TemplateID:       escalationSet.ID + "/" + rule,
			Text:             s.prefixGreeting(conv, idx, pick(escalationSet.Variants, idx)),
			SuggestedActions: []string{model.ActionHumanHandoff},
		}
	}

	fam, ok := families[result.Intent]
	if !ok {
		fam = families[model.IntentGeneralInquiry]
	}

	slots := s.collectSlots(result, conv)
	set := s.chooseTier(ctx, msg, fam, slots)

	idx := s.rotationIndex(conv, result.Intent)
	text := s.resolve(pick(set.Variants, idx), slots)
	return model.ResponseDecision{
		TemplateID:       set.ID,
		Text:             s.prefixGreeting(conv, idx, text),
		SuggestedActions: fam.Actions,
	}
}

// escalationRule returns the first handoff rule that fires, checked in a
// fixed order so overlapping conditions report a stable cause.
func (s *Selector) escalationRule(msg model.Message, result model.ClassificationResult, conv *model.ConversationContext) (string, bool) {
	text := strings.ToLower(msg.Text)

	for _, p := range agentRequestPhrases {
		if strings.Contains(text, p) {
			return ruleAgentRequested, true
		}
	}
	if result.Intent == model.IntentAccountHelp {
		return ruleSensitiveIntent, true
	}
	if result.Intent == model.IntentComplaint {
		for _, m := range negativeMarkers {
			if strings.Contains(text, m) {
				return ruleSensitiveIntent, true
			}
		}
	}
	if result.Intent == model.IntentUnknown {
		return ruleUnknownIntent, true
	}
	if result.Confidence < s.opts.EscalationThreshold {
		// The streak includes the current turn. A single low-confidence
		// turn escalates on its own; the repeat rule names the
		// frustration signal for analytics.
		if conv.LowConfidenceStreak(result.Intent, s.opts.EscalationThreshold)+1 >= s.opts.LowConfidenceRepeat {
			return ruleRepeatedConfusion, true
		}
		return ruleLowConfidence, true
	}
	if s.opts.MaxTurnsBeforeAgent > 0 && conv.TurnCount >= s.opts.MaxTurnsBeforeAgent {
		return ruleConversationLength, true
	}
	return "", false
}

// collectSlots merges entity values into a slot map with message entities
// taking precedence over values carried from earlier turns.
func (s *Selector) collectSlots(result model.ClassificationResult, conv *model.ConversationContext) map[string]string {
	slots := make(map[string]string, len(conv.CarriedEntities)+len(result.Entities))
	for kind, v := range conv.CarriedEntities {
		slots[string(kind)] = v
	}
	seen := make(map[model.EntityKind]bool, len(result.Entities))
	for _, e := range result.Entities {
		if seen[e.Kind] {
			continue
		}
		seen[e.Kind] = true
		slots[string(e.Kind)] = e.Value
	}
	return slots
}

// chooseTier runs the family's backend lookup when the key entity is
// available, merges the results into missing slots only, and returns the
// most specific tier whose slots are all filled.
func (s *Selector) chooseTier(ctx context.Context, msg model.Message, fam family, slots map[string]string) variantSet {
	if fam.Lookup != nil {
		if key, ok := slots[string(fam.Lookup.KeyKind)]; ok {
			lctx, cancel := context.WithTimeout(ctx, s.opts.LookupTimeout)
			defer cancel()
			rec, err := s.lookup.Lookup(lctx, fam.Lookup.Domain, key)
			switch {
			case errors.Is(err, backend.ErrNotFound):
				if fam.NotFound != nil {
					return *fam.NotFound
				}
			case err != nil:
				s.logger.Warn("backend lookup failed, degrading response",
					zap.String("session_id", msg.SessionID),
					zap.String("domain", string(fam.Lookup.Domain)),
					zap.Error(err),
				)
				if fam.Degraded != nil {
					return *fam.Degraded
				}
			default:
				for k, v := range rec {
					if _, exists := slots[k]; !exists {
						slots[k] = v
					}
				}
			}
		}
	}

	for _, tier := range fam.Tiers {
		if hasAll(slots, tier.Slots) {
			return tier
		}
	}
	// The last tier of every family has no required slots, so this is
	// unreachable unless a family table is malformed.
	return fam.Tiers[len(fam.Tiers)-1]
}

// rotationIndex returns the variant cursor for an intent. Session scope
// reads the snapshot's counter; global scope advances a process-wide one.
func (s *Selector) rotationIndex(conv *model.ConversationContext, intent model.Intent) int {
	if s.opts.RotationScope == config.RotationGlobal {
		s.mu.Lock()
		defer s.mu.Unlock()
		idx := s.globalRot[intent]
		s.globalRot[intent]++
		return idx
	}
	return conv.Rotation[intent]
}

func (s *Selector) prefixGreeting(conv *model.ConversationContext, idx int, text string) string {
	if conv.TurnCount > 0 {
		return text
	}
	return s.resolve(pick(greetings, idx), nil) + text
}

// resolve substitutes {slot} placeholders, then the {company} token.
func (s *Selector) resolve(template string, slots map[string]string) string {
	out := template
	for name, v := range slots {
		out = strings.ReplaceAll(out, "{"+name+"}", v)
	}
	return strings.ReplaceAll(out, "{company}", s.opts.CompanyName)
}

func hasAll(slots map[string]string, required []string) bool {
	for _, name := range required {
		if slots[name] == "" {
			return false
		}
	}
	return true
}

func pick(variants []string, idx int) string {
	return variants[idx%len(variants)]
}
