// Package backend integrates the external systems the chatbot answers from:
// order management, inventory, the product catalog, and the store directory.
// Every lookup is treated as fallible and latent; callers degrade gracefully
// instead of assuming success.
package backend

import (
	"context"
	"errors"
)

// Domain names a backend lookup namespace.
type Domain string

const (
	DomainOrders    Domain = "orders"
	DomainInventory Domain = "inventory"
	DomainProducts  Domain = "products"
	DomainStores    Domain = "stores"
)

// ErrNotFound reports that the key has no record in the domain. It is a
// normal outcome, distinct from transport failure.
var ErrNotFound = errors.New("backend: not found")

// Lookup is the injected capability the response selector uses to fill
// template slots that are not present as extracted entities. The returned
// map holds flattened string values keyed by slot name.
type Lookup interface {
	Lookup(ctx context.Context, domain Domain, key string) (map[string]string, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, domain Domain, key string) (map[string]string, error)

// Lookup implements Lookup.
func (f LookupFunc) Lookup(ctx context.Context, domain Domain, key string) (map[string]string, error) {
	return f(ctx, domain, key)
}
