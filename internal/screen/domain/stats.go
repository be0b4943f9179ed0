package domain

// CallStats is the aggregated view of blocking activity derived from rule
// records and block events. Pure value type; computed on demand.
type CallStats struct {
	TotalBlocked uint64 // lifetime, from per-record counters
	BlockedToday uint64 // events since local midnight
	BlockedWeek  uint64 // events since Monday local midnight

	// TopCountry is the blocked country with the highest block count, ties
	// broken by most recent BlockedAt. HasTopCountry is false when no
	// country rules exist.
	TopCountry    BlockedCountry
	HasTopCountry bool
}
