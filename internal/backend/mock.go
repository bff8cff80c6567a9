package backend

import (
	"context"
	"strings"
)

// MockLookup serves canned records for development and tests when no backend
// base URL is configured.
type MockLookup struct {
	data map[Domain]map[string]map[string]string
}

// NewMockLookup seeds the mock with a small fixture set.
func NewMockLookup() *MockLookup {
	return &MockLookup{
		data: map[Domain]map[string]map[string]string{
			DomainOrders: {
				"AB12345678": {
					"order_number": "AB12345678",
					"status":       "shipped",
					"eta":          "tomorrow",
					"tracking":     "TRK123456789",
				},
			},
			DomainProducts: {
				"iphone 13": {
					"product": "iPhone 13",
					"details": "6.1-inch display, A15 Bionic chip, 128GB storage",
					"price":   "799.99",
				},
				"organic bananas": {
					"product": "Organic Bananas",
					"details": "Certified organic, sold per bunch",
					"price":   "1.99",
				},
			},
			DomainInventory: {
				"iphone 13": {
					"product":  "iPhone 13",
					"stock":    "in stock",
					"available": "15",
				},
				"organic bananas": {
					"product":  "Organic Bananas",
					"stock":    "in stock",
					"available": "240",
				},
			},
			DomainStores: {
				"10001": {
					"store_name":    "Downtown Store",
					"store_address": "123 Main Street, Downtown",
					"store_hours":   "Mon-Sat 9AM-9PM, Sun 10AM-6PM",
				},
				"downtown": {
					"store_name":    "Downtown Store",
					"store_address": "123 Main Street, Downtown",
					"store_hours":   "Mon-Sat 9AM-9PM, Sun 10AM-6PM",
				},
			},
		},
	}
}

// Lookup implements Lookup. Keys match case-insensitively except order
// numbers, which are already normalized uppercase.
func (m *MockLookup) Lookup(_ context.Context, domain Domain, key string) (map[string]string, error) {
	records, ok := m.data[domain]
	if !ok {
		return nil, ErrNotFound
	}
	rec, ok := records[key]
	if !ok {
		rec, ok = records[strings.ToLower(key)]
	}
	if !ok {
		return nil, ErrNotFound
	}
	out := make(map[string]string, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, nil
}
