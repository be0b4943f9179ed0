package rules

import (
	"time"

	"github.com/google/uuid"

	"github.com/haukened/callgate/internal/screen/domain"
)

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the rule store needs from Bloom
// filters. It guards blocked-number lookups: a definite negative skips the
// persistent store entirely.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
	Clear()
}

// BloomFactory builds BloomFilters sized for a dataset.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches admission decisions by normalized digit sequence
// with basic metrics. Purged on every rule mutation.
type DecisionCache interface {
	Get(digits string) (domain.Decision, bool)
	Put(digits string, d domain.Decision)
	Len() int
	Purge()
	Stats() (hits, misses, evictions uint64)
}

// StoreStats captures high-level counts and metadata for the durable store.
type StoreStats struct {
	Numbers     uint64
	Patterns    uint64
	Countries   uint64
	Contacts    uint64
	Events      uint64
	Version     uint64
	UpdatedUnix int64 // seconds since epoch
}

// Store abstracts the durable record store over the four rule categories
// plus the block-event log. It is the source of truth on cold start; the
// rule store writes through to it before touching in-memory state.
type Store interface {
	PutNumber(n domain.BlockedNumber) error
	DeleteNumber(digits string) error
	GetNumber(digits string) (domain.BlockedNumber, bool, error)
	ListNumbers() ([]domain.BlockedNumber, error)

	PutPattern(p domain.BlockPattern) error
	DeletePattern(id uuid.UUID) error
	ListPatterns() ([]domain.BlockPattern, error)

	PutCountry(c domain.BlockedCountry) error
	DeleteCountry(prefix string) error
	ListCountries() ([]domain.BlockedCountry, error)

	PutContact(c domain.WhitelistContact) error
	DeleteContact(digits string) error
	ListContacts() ([]domain.WhitelistContact, error)

	AppendEvent(ev domain.BlockEvent) error
	// VisitEvents iterates block events with At >= since in chronological
	// order. If visit returns false, iteration stops.
	VisitEvents(since time.Time, visit func(domain.BlockEvent) bool) error

	SetMeta(version uint64, updatedUnix int64) error
	Stats() StoreStats
	Close() error
}

// RepoStats exposes rule-store counters and underlying store stats.
type RepoStats struct {
	CacheHits      uint64
	CacheMisses    uint64
	CacheEvictions uint64
	Store          StoreStats
}
