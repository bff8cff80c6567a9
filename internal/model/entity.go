// Package model defines data structures for the support chatbot pipeline.
package model

// EntityKind identifies the domain type of an extracted entity.
type EntityKind string

const (
	EntityOrderNumber EntityKind = "order_number"
	EntityProduct     EntityKind = "product"
	EntityLocation    EntityKind = "location"
	EntityPrice       EntityKind = "price"
	EntityQuantity    EntityKind = "quantity"
	EntityEmail       EntityKind = "email"
	EntityPhone       EntityKind = "phone"
)

// Entity is a typed, normalized span extracted from a message. Entities are
// value objects: created once by the extractor and never mutated.
type Entity struct {
	Kind  EntityKind `json:"kind"`
	Value string     `json:"value"`
	Raw   string     `json:"raw_span"`
	Start int        `json:"start"`
	End   int        `json:"end"`
}

// FirstOfKind returns the earliest entity of the given kind, if any.
func FirstOfKind(entities []Entity, kind EntityKind) (Entity, bool) {
	for _, e := range entities {
		if e.Kind == kind {
			return e, true
		}
	}
	return Entity{}, false
}
