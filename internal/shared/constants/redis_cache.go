package constants

import (
	"time"
)

// Redis Key Configuration
// This file centralizes all Redis keys and TTL values for the Tikiti storefront
// Pattern: tikiti:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

// Semi-Static Data (catalog changes only on reseed)
const (
	TTL_SEMI_STATIC_SHORT = 1 * time.Hour    // 1 hour - for event detail
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute // 15 minutes - for event listings
)

// Session Data (owned by one buyer)
const (
	TTL_SESSION_DEFAULT = 30 * time.Minute // selection and checkout sessions
	TTL_SUBMIT_LOCK     = 2 * time.Minute  // upper bound on one submit attempt
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "tikiti"
)

// ================== CATALOG MODULE ==================

// Catalog Cache Keys
const (
	CACHE_KEY_EVENTS_LIST  = CACHE_PREFIX + ":catalog:events:list"
	CACHE_KEY_EVENT_DETAIL = CACHE_PREFIX + ":catalog:events:detail:" // + event-id
)

// Catalog Cache TTLs
const (
	TTL_EVENT_LIST   = TTL_SEMI_STATIC_QUICK // 15 minutes
	TTL_EVENT_DETAIL = TTL_SEMI_STATIC_SHORT // 1 hour
)

// ================== SELECTION MODULE ==================

const (
	KEY_SELECTION_SESSION = CACHE_PREFIX + ":selection:session:" // + selection-id
)

// ================== CHECKOUT MODULE ==================

const (
	KEY_CHECKOUT_SESSION = CACHE_PREFIX + ":checkout:session:" // + checkout-id
	KEY_CHECKOUT_SUBMIT  = CACHE_PREFIX + ":checkout:submit:"  // + checkout-id
)

// ================== INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_CATALOG_ALL = CACHE_PREFIX + ":catalog:*"
)

// ================== HELPER FUNCTIONS ==================

// BuildEventDetailKey -> "tikiti:catalog:events:detail:1"
func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildSelectionKey(selectionID string) string {
	return KEY_SELECTION_SESSION + selectionID
}

func BuildCheckoutKey(checkoutID string) string {
	return KEY_CHECKOUT_SESSION + checkoutID
}

// BuildSubmitLockKey is held for the duration of one submit attempt
func BuildSubmitLockKey(checkoutID string) string {
	return KEY_CHECKOUT_SUBMIT + checkoutID
}
