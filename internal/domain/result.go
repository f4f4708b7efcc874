package domain

import "time"

// CacheTier classifies a query's cost for cache TTL selection.
type CacheTier string

const (
	// TierLightweight results are always computed, never cached.
	TierLightweight   CacheTier = "lightweight"
	TierModerate      CacheTier = "moderate"
	TierHeavy         CacheTier = "heavy"
	TierComprehensive CacheTier = "comprehensive"
)

// Cacheable reports whether results of this tier may be stored.
func (t CacheTier) Cacheable() bool { return t != TierLightweight }

// Diagnostics is the observability contract a query execution exposes
// upward: timings, store round trips, cache outcome and complexity.
type Diagnostics struct {
	Complexity int
	Depth      int
	Tier       CacheTier
	CacheHit   bool
	DBQueries  int
	Duration   time.Duration
}

// CardConnection is the paginated result of a card query.
type CardConnection struct {
	Nodes       []Card `json:"nodes"`
	TotalCount  int    `json:"totalCount"`
	HasNextPage bool   `json:"hasNextPage"`
}
