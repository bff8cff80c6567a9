// Package nlu implements pattern-based understanding of customer messages:
// rule-driven entity extraction and keyword-scored intent classification.
package nlu

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/retailcx/support-chatbot/internal/model"
)

// extractionRule pairs a recognizer with a normalizer for one entity kind.
// Rules run independently over the same text; several kinds may match the
// same span.
type extractionRule struct {
	kind model.EntityKind
	re   *regexp.Regexp
	// group is the submatch index holding the entity span; 0 uses the
	// whole match.
	group     int
	normalize func(raw string) (string, bool)
}

var extractionRules = []extractionRule{
	{
		kind:      model.EntityOrderNumber,
		re:        regexp.MustCompile(`\b[A-Za-z]{1,2}[0-9]{6,11}\b`),
		normalize: normalizeOrderNumber,
	},
	{
		kind:      model.EntityPrice,
		re:        regexp.MustCompile(`\$\s?([0-9]+(?:\.[0-9]{1,2})?)`),
		group:     1,
		normalize: normalizePrice,
	},
	{
		kind:      model.EntityPrice,
		re:        regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]{1,2})?)\s?(?:dollars|usd|bucks)\b`),
		group:     1,
		normalize: normalizePrice,
	},
	{
		kind:      model.EntityQuantity,
		re:        regexp.MustCompile(`(?i)\b([0-9]+)\s*(?:pcs?|pieces?|items?|units?|boxes?|cases?)\b`),
		group:     1,
		normalize: normalizeNumber,
	},
	{
		kind:      model.EntityQuantity,
		re:        regexp.MustCompile(`(?i)\b(?:quantity|qty)\s*[:\-]?\s*([0-9]+)\b`),
		group:     1,
		normalize: normalizeNumber,
	},
	{
		kind:      model.EntityLocation,
		re:        regexp.MustCompile(`\b[A-Z]{2}\s[0-9]{5}(?:-[0-9]{4})?\b`),
		normalize: normalizeVerbatim,
	},
	{
		kind:      model.EntityLocation,
		re:        regexp.MustCompile(`\b[0-9]{5}(?:-[0-9]{4})?\b`),
		normalize: normalizeVerbatim,
	},
	{
		kind:      model.EntityLocation,
		re:        regexp.MustCompile(`(?i)\b(downtown|mall|center|plaza|outlet|airport)\b`),
		normalize: normalizeLower,
	},
	{
		kind:      model.EntityProduct,
		re:        regexp.MustCompile(`"([^"]{2,60})"`),
		group:     1,
		normalize: normalizeProduct,
	},
	{
		kind:      model.EntityProduct,
		re:        regexp.MustCompile(`'([^']{2,60})'`),
		group:     1,
		normalize: normalizeProduct,
	},
	{
		kind:      model.EntityEmail,
		re:        regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
		normalize: normalizeLower,
	},
	{
		kind:      model.EntityPhone,
		re:        regexp.MustCompile(`\(?[0-9]{3}\)?[-. ][0-9]{3}[-. ][0-9]{4}\b`),
		normalize: normalizePhone,
	},
}

// catalogGazetteer lists known product names matched case-insensitively when
// not quoted. Kept small on purpose; the product catalog backend is the
// authority for anything beyond recognition.
var catalogGazetteer = []string{
	"iphone 13",
	"galaxy s24",
	"organic bananas",
	"espresso machine",
	"air fryer",
	"protein powder",
	"laundry detergent",
}

var gazetteerRule = buildGazetteerRule()

func buildGazetteerRule() extractionRule {
	escaped := make([]string, len(catalogGazetteer))
	for i, name := range catalogGazetteer {
		escaped[i] = regexp.QuoteMeta(name)
	}
	return extractionRule{
		kind:      model.EntityProduct,
		re:        regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`),
		group:     1,
		normalize: normalizeLower,
	}
}

// Extract scans text for domain entities. It is a pure function: no side
// effects, no failure mode beyond an empty result. Entities are returned in
// order of first-character offset; overlapping matches of the same kind keep
// the longest span (ties keep the earliest start).
func Extract(text string) []model.Entity {
	if text == "" {
		return nil
	}

	byKind := make(map[model.EntityKind][]model.Entity)
	rules := append(extractionRules[:len(extractionRules):len(extractionRules)], gazetteerRule)
	for _, rule := range rules {
		for _, idx := range rule.re.FindAllStringSubmatchIndex(text, -1) {
			start, end := idx[2*rule.group], idx[2*rule.group+1]
			if start < 0 {
				continue
			}
			raw := text[start:end]
			value, ok := rule.normalize(raw)
			if !ok {
				continue
			}
			byKind[rule.kind] = append(byKind[rule.kind], model.Entity{
				Kind:  rule.kind,
				Value: value,
				Raw:   raw,
				Start: start,
				End:   end,
			})
		}
	}

	var out []model.Entity
	for _, kind := range entityKindOrder {
		out = append(out, resolveOverlaps(byKind[kind])...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// entityKindOrder fixes iteration order so extraction is deterministic.
var entityKindOrder = []model.EntityKind{
	model.EntityOrderNumber,
	model.EntityProduct,
	model.EntityLocation,
	model.EntityPrice,
	model.EntityQuantity,
	model.EntityEmail,
	model.EntityPhone,
}

// resolveOverlaps keeps, among overlapping same-kind matches, the longest
// span; ties keep the earliest-starting match.
func resolveOverlaps(entities []model.Entity) []model.Entity {
	if len(entities) < 2 {
		return entities
	}

	sorted := make([]model.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := sorted[i].End-sorted[i].Start, sorted[j].End-sorted[j].Start
		if li != lj {
			return li > lj
		}
		return sorted[i].Start < sorted[j].Start
	})

	var kept []model.Entity
	for _, cand := range sorted {
		overlaps := false
		for _, k := range kept {
			if cand.Start < k.End && k.Start < cand.End {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, cand)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}

func normalizeOrderNumber(raw string) (string, bool) {
	if len(raw) < 8 || len(raw) > 12 {
		return "", false
	}
	return strings.ToUpper(raw), true
}

func normalizePrice(raw string) (string, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%.2f", f), true
}

func normalizeNumber(raw string) (string, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return "", false
	}
	return strconv.Itoa(n), true
}

func normalizeProduct(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	return strings.ToLower(v), true
}

func normalizeVerbatim(raw string) (string, bool) { return raw, true }

func normalizeLower(raw string) (string, bool) { return strings.ToLower(raw), true }

func normalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() != 10 {
		return "", false
	}
	return digits.String(), true
}
