// Package respond decides how the chatbot answers a classified message:
// escalation policy first, then template selection with structured
// placeholder resolution.
package respond

import (
	"github.com/retailcx/support-chatbot/internal/backend"
	"github.com/retailcx/support-chatbot/internal/model"
)

// variantSet is one tier of a template family: equally valid phrasings of
// the same reply, sharing an id and a required slot list. The selector
// rotates through variants deterministically to avoid repetitive phrasing.
type variantSet struct {
	ID       string
	Slots    []string
	Variants []string
}

// lookupSpec declares the backend call a family makes when its most specific
// tier needs data that is not present as an extracted or carried entity.
type lookupSpec struct {
	Domain  backend.Domain
	KeyKind model.EntityKind
}

// family is the ordered template set for one intent, most specific tier
// first. NotFound answers a lookup that found no record; Degraded answers a
// lookup that failed or timed out.
type family struct {
	Tiers    []variantSet
	Lookup   *lookupSpec
	NotFound *variantSet
	Degraded *variantSet
	Actions  []string
}

var escalationSet = variantSet{
	ID: "escalation",
	Variants: []string{
		"I'd like to connect you with one of our customer service specialists who can help with this. Please hold while I transfer you.",
		"Let me get you connected with a human agent who can better assist with your situation.",
		"I think our support team is better equipped to handle this. Transferring you now.",
	},
}

var greetings = []string{
	"Hello! I'm the {company} virtual assistant. ",
	"Hi there! Welcome to {company}. ",
	"Good day! You've reached {company} support. ",
}

var degradedSet = variantSet{
	ID: "lookup_degraded",
	Variants: []string{
		"I'm having trouble reaching that information right now. Please try again in a moment, or I can connect you with an agent.",
		"That system is not responding at the moment. Could you try again shortly, or would you like to speak with an agent?",
	},
}

var families = map[model.Intent]family{
	model.IntentTrackOrder: {
		Tiers: []variantSet{
			{
				ID:    "track_order/status",
				Slots: []string{"order_number", "status"},
				Variants: []string{
					"Good news! Order {order_number} is currently {status}.",
					"Your order {order_number} is {status}.",
					"Order {order_number} status: {status}.",
				},
			},
			{
				ID:    "track_order/ack",
				Slots: []string{"order_number"},
				Variants: []string{
					"I'm looking up order {order_number} for you.",
					"Let me pull up the details for order {order_number}.",
				},
			},
			{
				ID: "track_order/ask_number",
				Variants: []string{
					"I'd be happy to help you track your order. Could you share your order number?",
					"Sure, I can track that for you. What's the order number?",
				},
			},
		},
		Lookup: &lookupSpec{Domain: backend.DomainOrders, KeyKind: model.EntityOrderNumber},
		NotFound: &variantSet{
			ID:    "track_order/not_found",
			Slots: []string{"order_number"},
			Variants: []string{
				"I couldn't find an order matching {order_number}. Could you double-check the number?",
				"Order {order_number} doesn't appear in our records. Please verify the number and try again.",
			},
		},
		Degraded: &degradedSet,
		Actions:  []string{model.ActionTrackPackage, model.ActionContactCarrier},
	},
	model.IntentProductInfo: {
		Tiers: []variantSet{
			{
				ID:    "product_info/details",
				Slots: []string{"product", "details"},
				Variants: []string{
					"Here's what I can tell you about {product}: {details}",
					"About {product}: {details}",
				},
			},
			{
				ID:    "product_info/ack",
				Slots: []string{"product"},
				Variants: []string{
					"Let me gather the details on {product} for you.",
					"One moment while I look up {product}.",
				},
			},
			{
				ID: "product_info/ask_product",
				Variants: []string{
					"I'd be happy to help with product information. Which product are you interested in?",
					"Sure! Which product would you like to know more about?",
				},
			},
		},
		Lookup: &lookupSpec{Domain: backend.DomainProducts, KeyKind: model.EntityProduct},
		NotFound: &variantSet{
			ID:    "product_info/not_found",
			Slots: []string{"product"},
			Variants: []string{
				"I couldn't find {product} in our catalog. Could you check the spelling or describe it differently?",
				"{product} doesn't appear in our current catalog. Would you like me to suggest similar items?",
			},
		},
		Degraded: &degradedSet,
		Actions:  []string{model.ActionViewSimilar, model.ActionReadReviews, model.ActionCheckAvailability},
	},
	model.IntentInventoryCheck: {
		Tiers: []variantSet{
			{
				ID:    "inventory_check/stock",
				Slots: []string{"product", "stock", "available"},
				Variants: []string{
					"{product} is {stock} right now — we have {available} units available.",
					"Good news: {product} is {stock}, with {available} units on hand.",
				},
			},
			{
				ID:    "inventory_check/ack",
				Slots: []string{"product"},
				Variants: []string{
					"Let me check our current inventory for {product}.",
					"Checking availability for {product} now.",
				},
			},
			{
				ID: "inventory_check/ask_product",
				Variants: []string{
					"I can check availability for you. Which product would you like me to look up?",
				},
			},
		},
		Lookup: &lookupSpec{Domain: backend.DomainInventory, KeyKind: model.EntityProduct},
		NotFound: &variantSet{
			ID:    "inventory_check/not_found",
			Slots: []string{"product"},
			Variants: []string{
				"I don't see {product} in our inventory system. Could you check the name?",
			},
		},
		Degraded: &degradedSet,
		Actions:  []string{model.ActionNotifyRestock, model.ActionViewSimilar},
	},
	model.IntentStoreLocator: {
		Tiers: []variantSet{
			{
				ID:    "store_locator/found",
				Slots: []string{"store_name", "store_address", "store_hours"},
				Variants: []string{
					"The closest store is {store_name} at {store_address}. Hours: {store_hours}.",
					"I found {store_name} near you — {store_address}, open {store_hours}.",
				},
			},
			{
				ID:    "store_locator/ack",
				Slots: []string{"location"},
				Variants: []string{
					"Let me find stores near {location}.",
					"Searching for stores around {location}.",
				},
			},
			{
				ID: "store_locator/ask_location",
				Variants: []string{
					"I'd be happy to help you find a store. What area are you looking in?",
					"Sure — what city or ZIP code should I search near?",
				},
			},
		},
		Lookup: &lookupSpec{Domain: backend.DomainStores, KeyKind: model.EntityLocation},
		NotFound: &variantSet{
			ID:    "store_locator/not_found",
			Slots: []string{"location"},
			Variants: []string{
				"I couldn't find any stores near {location}. Could you try a different area?",
			},
		},
		Degraded: &degradedSet,
		Actions:  []string{model.ActionGetDirections, model.ActionCallStore},
	},
	model.IntentPricing: {
		Tiers: []variantSet{
			{
				ID:    "pricing/price",
				Slots: []string{"product", "price"},
				Variants: []string{
					"The current price for {product} is ${price}.",
					"{product} is priced at ${price} right now.",
				},
			},
			{
				ID:    "pricing/ack",
				Slots: []string{"product"},
				Variants: []string{
					"Let me get the current pricing for {product}.",
				},
			},
			{
				ID: "pricing/ask_product",
				Variants: []string{
					"I can help with pricing. Which product are you interested in?",
					"Happy to check prices for you — which product?",
				},
			},
		},
		Lookup: &lookupSpec{Domain: backend.DomainProducts, KeyKind: model.EntityProduct},
		NotFound: &variantSet{
			ID:    "pricing/not_found",
			Slots: []string{"product"},
			Variants: []string{
				"I couldn't find pricing for {product}. Could you check the product name?",
			},
		},
		Degraded: &degradedSet,
		Actions:  []string{model.ActionViewPromotions, model.ActionAddToCart},
	},
	model.IntentComplaint: {
		Tiers: []variantSet{
			{
				ID: "complaint/ack",
				Variants: []string{
					"I'm sorry you're experiencing this issue, and I want to help make it right. Could you tell me a bit more about what happened?",
					"I apologize for the inconvenience. Let me help you resolve this — what exactly went wrong?",
					"Thank you for bringing this to my attention. I want to make sure we address it properly.",
				},
			},
		},
		Actions: []string{model.ActionHumanHandoff, model.ActionFileComplaint},
	},
	model.IntentShippingInfo: {
		Tiers: []variantSet{
			{
				ID: "shipping_info/overview",
				Variants: []string{
					"Standard shipping takes 3-5 business days; express arrives in 1-2. Are you asking about costs, delivery times, or an existing shipment?",
					"We offer standard (3-5 days) and express (1-2 days) delivery. What would you like to know — costs, timing, or a shipment you're waiting on?",
				},
			},
		},
		Actions: []string{model.ActionTrackPackage},
	},
	model.IntentGeneralInquiry: {
		Tiers: []variantSet{
			{
				ID: "general_inquiry/help",
				Variants: []string{
					"I can help with orders, products, stores, and pricing. What would you like to know?",
					"I'm here to help with your questions about orders, products, and stores. What can I do for you?",
				},
			},
		},
		Actions: []string{model.ActionHumanHandoff},
	},
}
