package constants

import (
	"fmt"
	"time"
)

// Redis key and TTL conventions for the Ingrezzi application.
// Pattern: ingrezzi:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Static data (long TTL: rarely changes)
const (
	TTL_STATIC_LONG  = 24 * time.Hour
	TTL_STATIC_SHORT = 6 * time.Hour // user profiles
)

// Semi-static data (medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // event details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // event listings
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // upcoming events
)

// Dynamic data (short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // ticket listings, sales counts
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // grant listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "ingrezzi"
)

// ================== EVENTS MODULE ==================

const (
	CACHE_KEY_EVENTS_LIST     = CACHE_PREFIX + ":events:list"     // + :page:X:limit:Y:status:Z
	CACHE_KEY_EVENTS_UPCOMING = CACHE_PREFIX + ":events:upcoming" // + :limit:X
	CACHE_KEY_EVENT_DETAIL    = CACHE_PREFIX + ":events:detail:uuid:" // + event-id
)

const (
	TTL_EVENT_LIST     = TTL_SEMI_STATIC_SHORT
	TTL_EVENT_UPCOMING = TTL_SEMI_STATIC_QUICK
	TTL_EVENT_DETAIL   = TTL_SEMI_STATIC_MEDIUM
)

// ================== TICKETS MODULE ==================

const (
	CACHE_KEY_EVENT_TICKETS     = CACHE_PREFIX + ":tickets:event:uuid:" // + event-id:page:X
	CACHE_KEY_EVENT_TICKET_STATS = CACHE_PREFIX + ":tickets:stats:event:uuid:" // + event-id
)

const (
	TTL_EVENT_TICKETS      = TTL_DYNAMIC_MEDIUM
	TTL_EVENT_TICKET_STATS = TTL_DYNAMIC_MEDIUM
)

// ================== AUTH MODULE ==================

const (
	CACHE_KEY_USER_PROFILE = CACHE_PREFIX + ":auth:user:profile:uuid:" // + user-id
)

const (
	TTL_USER_PROFILE = TTL_STATIC_SHORT
)

// ================== CHECK-IN MODULE ==================

// Scan cooldown keys are not cache entries: they debounce rapid duplicate
// submissions of the same physical scan (SETNX with a short TTL).
const (
	SCAN_COOLDOWN_KEY = CACHE_PREFIX + ":checkin:cooldown:code:" // + code
)

// ================== CACHE INVALIDATION PATTERNS ==================

const (
	PATTERN_INVALIDATE_EVENTS_ALL  = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_TICKETS_ALL = CACHE_PREFIX + ":tickets:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildEventListKey(page, limit int, status string) string {
	if status != "" {
		return fmt.Sprintf("%s:page:%d:limit:%d:status:%s", CACHE_KEY_EVENTS_LIST, page, limit, status)
	}
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_EVENTS_LIST, page, limit)
}

func BuildEventDetailKey(eventID string) string {
	return CACHE_KEY_EVENT_DETAIL + eventID
}

func BuildUpcomingEventsKey(limit int) string {
	return fmt.Sprintf("%s:limit:%d", CACHE_KEY_EVENTS_UPCOMING, limit)
}

func BuildEventTicketsKey(eventID string, page int) string {
	return fmt.Sprintf("%s%s:page:%d", CACHE_KEY_EVENT_TICKETS, eventID, page)
}

func BuildEventTicketStatsKey(eventID string) string {
	return CACHE_KEY_EVENT_TICKET_STATS + eventID
}

func BuildScanCooldownKey(code string) string {
	return SCAN_COOLDOWN_KEY + code
}
