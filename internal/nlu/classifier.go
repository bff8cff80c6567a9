package nlu

import (
	"sort"
	"strings"

	"github.com/retailcx/support-chatbot/internal/model"
)

const (
	// phraseCap bounds how many distinct trigger phrases count toward a
	// score, so long keyword lists do not inflate one intent over another.
	phraseCap = 3

	// entityBoost is added when the message carries an entity kind
	// strongly associated with the intent.
	entityBoost = 1.5

	// maxCandidates bounds runner-up intents kept for diagnostics.
	maxCandidates = 3
)

// intentSpec holds the trigger table for one intent. Triggers are matched as
// whole words/phrases, case-insensitive, against the normalized message.
type intentSpec struct {
	intent   model.Intent
	triggers []string
	boosts   []model.EntityKind
}

var intentSpecs = []intentSpec{
	{
		intent: model.IntentTrackOrder,
		triggers: []string{
			"track my order", "order status", "where is my order", "track",
			"tracking", "shipped", "shipment", "package", "delivered",
			"arrived", "my order",
		},
		boosts: []model.EntityKind{model.EntityOrderNumber},
	},
	{
		intent: model.IntentComplaint,
		triggers: []string{
			"complaint", "problem", "issue", "broken", "damaged",
			"defective", "wrong item", "refund", "return", "unhappy",
			"disappointed",
		},
	},
	{
		intent: model.IntentAccountHelp,
		triggers: []string{
			"account", "login", "log in", "password", "profile",
			"sign up", "username", "reset my password",
		},
		boosts: []model.EntityKind{model.EntityEmail},
	},
	{
		intent: model.IntentInventoryCheck,
		triggers: []string{
			"in stock", "out of stock", "stock", "available",
			"availability", "inventory", "restock", "when available",
		},
		boosts: []model.EntityKind{model.EntityProduct, model.EntityQuantity},
	},
	{
		intent: model.IntentShippingInfo,
		triggers: []string{
			"shipping", "delivery time", "shipping cost", "overnight",
			"express", "freight", "delivery options",
		},
	},
	{
		intent: model.IntentStoreLocator,
		triggers: []string{
			"store", "nearest store", "store hours", "store address",
			"location", "closest", "find a store", "directions",
		},
		boosts: []model.EntityKind{model.EntityLocation},
	},
	{
		intent: model.IntentPricing,
		triggers: []string{
			"price", "cost", "how much", "pricing", "discount", "sale",
			"promotion", "deal", "cheaper", "expensive",
		},
		boosts: []model.EntityKind{model.EntityPrice},
	},
	{
		intent: model.IntentProductInfo,
		triggers: []string{
			"tell me about", "product information", "product details",
			"specifications", "specs", "ingredients", "nutrition",
			"features", "what is", "describe",
		},
		boosts: []model.EntityKind{model.EntityProduct},
	},
	{
		intent: model.IntentGeneralInquiry,
		triggers: []string{
			"help", "support", "question", "hello", "hi there", "contact",
			"information",
		},
	},
}

// Classifier scores candidate intents against a message. It is stateless and
// deterministic: identical inputs always produce identical results.
type Classifier struct {
	floor           float64
	continuityBonus float64
}

// NewClassifier builds a classifier with the given floor score and
// continuity bonus (both tunable configuration, see config.Config).
func NewClassifier(floor, continuityBonus float64) *Classifier {
	return &Classifier{floor: floor, continuityBonus: continuityBonus}
}

// Classify scores every supported intent against the message and returns the
// winner with a [0,1] confidence, the message's entities, and up to three
// runner-up candidates. priorIntent enables continuity scoring for
// follow-ups like "what about that one"; pass model.IntentUnknown when the
// session has no history.
func (c *Classifier) Classify(text string, entities []model.Entity, priorIntent model.Intent) model.ClassificationResult {
	norm := normalizeText(text)

	raw := make(map[model.Intent]float64, len(intentSpecs))
	matched := make(map[model.Intent]bool, len(intentSpecs))
	boosts := make(map[model.Intent]float64, len(intentSpecs))
	for _, spec := range intentSpecs {
		hits := countTriggers(norm, spec.triggers)
		if hits > 0 {
			matched[spec.intent] = true
		}
		score := float64(hits)
		if hasAnyKind(entities, spec.boosts) {
			boosts[spec.intent] = entityBoost
			// The boost amplifies a triggered intent; an entity alone
			// never nominates one.
			if hits > 0 {
				score += entityBoost
			}
		}
		raw[spec.intent] = score
	}

	// Continuity: a follow-up that adds only entities or pronouns, with no
	// trigger for a different intent, inherits a bonus on the prior intent
	// plus any entity boost the prior intent would have earned.
	if priorIntent != model.IntentUnknown && !hasOtherMarkers(matched, priorIntent) {
		raw[priorIntent] += c.continuityBonus
		if !matched[priorIntent] {
			raw[priorIntent] += boosts[priorIntent]
		}
	}

	scored := make([]model.Candidate, 0, len(intentSpecs))
	for _, intent := range model.SupportedIntents {
		if raw[intent] <= 0 {
			continue
		}
		n := raw[intent] / (phraseCap + entityBoost)
		if n > 1.0 {
			n = 1.0
		}
		scored = append(scored, model.Candidate{Intent: intent, Score: n})
	}

	// Stable sort preserves the fixed priority order for equal scores.
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	if len(scored) == 0 || scored[0].Score < c.floor {
		return model.ClassificationResult{
			Intent:     model.IntentUnknown,
			Confidence: 0.0,
			Entities:   entities,
			Candidates: topCandidates(scored),
		}
	}

	return model.ClassificationResult{
		Intent:     scored[0].Intent,
		Confidence: scored[0].Score,
		Entities:   entities,
		Candidates: topCandidates(scored[1:]),
	}
}

// Floor returns the configured minimum score below which classification
// yields unknown.
func (c *Classifier) Floor() float64 { return c.floor }

func topCandidates(scored []model.Candidate) []model.Candidate {
	if len(scored) == 0 {
		return nil
	}
	if len(scored) > maxCandidates {
		scored = scored[:maxCandidates]
	}
	out := make([]model.Candidate, len(scored))
	copy(out, scored)
	return out
}

// normalizeText lowercases and strips punctuation so trigger phrases match
// on word boundaries.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte(' ')
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}

func countTriggers(norm string, triggers []string) int {
	hits := 0
	for _, t := range triggers {
		if strings.Contains(norm, " "+t+" ") {
			hits++
			if hits == phraseCap {
				break
			}
		}
	}
	return hits
}

func hasAnyKind(entities []model.Entity, kinds []model.EntityKind) bool {
	for _, kind := range kinds {
		if _, ok := model.FirstOfKind(entities, kind); ok {
			return true
		}
	}
	return false
}

// hasOtherMarkers reports whether any intent other than prior matched a
// trigger phrase, which breaks continuity.
func hasOtherMarkers(matched map[model.Intent]bool, prior model.Intent) bool {
	for intent, hit := range matched {
		if hit && intent != prior {
			return true
		}
	}
	return false
}
