package rules

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haukened/callgate/internal/screen/common/clock"
	"github.com/haukened/callgate/internal/screen/common/log"
	"github.com/haukened/callgate/internal/screen/common/phone"
	"github.com/haukened/callgate/internal/screen/domain"
)

// RuleStore owns the four rule categories. It writes through to the
// durable store before touching in-memory state, so a failed persist
// leaves memory unchanged, and it serializes mutations against snapshot
// builds: a snapshot never observes a half-applied mutation.
//
// Blocked numbers are the one unbounded category: a bloom filter guards
// the durable lookup and an LRU cache holds settled decisions. Patterns,
// countries, and whitelist contacts stay small and are mirrored as
// in-memory indices rebuilt on load.
type RuleStore struct {
	mu      sync.RWMutex
	store   Store
	cache   DecisionCache
	bloom   BloomFilter
	factory BloomFactory
	fpRate  float64
	clk     clock.Clock
	logger  log.Logger

	patterns  []domain.BlockPattern              // sorted by CreatedAt, then Raw
	countries map[string]domain.BlockedCountry   // by calling-code prefix
	contacts  map[string]domain.WhitelistContact // by digits
	version   uint64
}

// Options configures a RuleStore.
type Options struct {
	Store   Store
	Cache   DecisionCache
	Factory BloomFactory
	FPRate  float64
	Clock   clock.Clock
	Logger  log.Logger
}

// New constructs a RuleStore and rebuilds every in-memory index from the
// durable store.
func New(opts Options) (*RuleStore, error) {
	r := &RuleStore{
		store:     opts.Store,
		cache:     opts.Cache,
		factory:   opts.Factory,
		fpRate:    opts.FPRate,
		clk:       opts.Clock,
		logger:    opts.Logger,
		countries: make(map[string]domain.BlockedCountry),
		contacts:  make(map[string]domain.WhitelistContact),
	}
	if r.clk == nil {
		r.clk = clock.RealClock{}
	}
	if r.logger == nil {
		r.logger = log.NewNoopLogger()
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// load rebuilds indices and the bloom filter from the durable store.
func (r *RuleStore) load() error {
	patterns, err := r.store.ListPatterns()
	if err != nil {
		return fmt.Errorf("load patterns: %w", err)
	}
	r.patterns = patterns
	sortPatterns(r.patterns)

	countries, err := r.store.ListCountries()
	if err != nil {
		return fmt.Errorf("load countries: %w", err)
	}
	for _, c := range countries {
		r.countries[c.Prefix] = c
	}

	contacts, err := r.store.ListContacts()
	if err != nil {
		return fmt.Errorf("load contacts: %w", err)
	}
	for _, c := range contacts {
		r.contacts[c.Digits] = c
	}

	numbers, err := r.store.ListNumbers()
	if err != nil {
		return fmt.Errorf("load numbers: %w", err)
	}
	bf := r.factory.New(uint64(len(numbers)), r.fpRate)
	for _, n := range numbers {
		bf.Add([]byte(n.Digits))
	}
	r.bloom = bf

	r.version = r.store.Stats().Version
	return nil
}

func sortPatterns(ps []domain.BlockPattern) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.Before(ps[j].CreatedAt)
		}
		return ps[i].Raw < ps[j].Raw
	})
}

// persistErr wraps a failed durable write into the PersistenceFailure kind
// with the offending operation attached.
func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistenceFailure, op, err)
}

// commit finalizes a successful mutation while the write lock is held:
// bump the rule-set version, stamp store metadata, and drop every cached
// decision.
func (r *RuleStore) commit() {
	r.version++
	if err := r.store.SetMeta(r.version, r.clk.Now().Unix()); err != nil {
		// The record itself is already durable; stale metadata only skews
		// reported stats, so log and carry on.
		r.logger.Warn(map[string]any{"error": err, "version": r.version}, "failed to stamp store metadata")
	}
	r.cache.Purge()
}

// BlockNumber creates a blocked-number rule for a normalized identifier.
// Blocking an already-blocked number returns the existing record.
func (r *RuleStore) BlockNumber(id phone.NormalizedID) (domain.BlockedNumber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok, err := r.store.GetNumber(id.Digits)
	if err != nil {
		return domain.BlockedNumber{}, persistErr("get number "+id.Digits, err)
	}
	if ok {
		return existing, nil
	}

	n, err := domain.NewBlockedNumber(id, r.clk.Now())
	if err != nil {
		return domain.BlockedNumber{}, err
	}
	if err := r.store.PutNumber(n); err != nil {
		return domain.BlockedNumber{}, persistErr("put number "+n.Digits, err)
	}
	r.bloom.Add([]byte(n.Digits))
	r.commit()
	return n, nil
}

// UnblockNumber deletes a blocked-number rule. Unblocking a number that is
// not blocked is a no-op.
func (r *RuleStore) UnblockNumber(digits string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok, err := r.store.GetNumber(digits)
	if err != nil {
		return persistErr("get number "+digits, err)
	}
	if !ok {
		return nil
	}
	if err := r.store.DeleteNumber(digits); err != nil {
		return persistErr("delete number "+digits, err)
	}
	// The bloom filter cannot forget a key; the stale positive just falls
	// through to an authoritative store miss.
	r.commit()
	return nil
}

// AddPattern compiles raw and stores a new enabled block pattern.
func (r *RuleStore) AddPattern(raw string) (domain.BlockPattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := domain.NewBlockPattern(raw, r.clk.Now())
	if err != nil {
		return domain.BlockPattern{}, err
	}
	if err := r.store.PutPattern(p); err != nil {
		return domain.BlockPattern{}, persistErr("put pattern "+p.Raw, err)
	}
	r.patterns = append(r.patterns, p)
	sortPatterns(r.patterns)
	r.commit()
	return p, nil
}

// SetPatternEnabled toggles a pattern. Disabled patterns are retained but
// excluded from matching and export.
func (r *RuleStore) SetPatternEnabled(id uuid.UUID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.patterns {
		if p.ID != id {
			continue
		}
		if p.Enabled == enabled {
			return nil
		}
		p.Enabled = enabled
		if err := r.store.PutPattern(p); err != nil {
			return persistErr("put pattern "+p.Raw, err)
		}
		r.patterns[i] = p
		r.commit()
		return nil
	}
	return fmt.Errorf("pattern %s not found", id)
}

// RemovePattern deletes a pattern by id.
func (r *RuleStore) RemovePattern(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.patterns {
		if p.ID != id {
			continue
		}
		if err := r.store.DeletePattern(id); err != nil {
			return persistErr("delete pattern "+p.Raw, err)
		}
		r.patterns = append(r.patterns[:i], r.patterns[i+1:]...)
		r.commit()
		return nil
	}
	return fmt.Errorf("pattern %s not found", id)
}

// Patterns returns a copy of all patterns, including disabled ones.
func (r *RuleStore) Patterns() []domain.BlockPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.BlockPattern, len(r.patterns))
	copy(out, r.patterns)
	return out
}

// BlockCountry creates a blocked-country rule for a calling-code prefix.
// Blocking an already-blocked prefix returns the existing record.
func (r *RuleStore) BlockCountry(prefix string) (domain.BlockedCountry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.countries[prefix]; ok {
		return existing, nil
	}
	c, err := domain.NewBlockedCountry(prefix, r.clk.Now())
	if err != nil {
		return domain.BlockedCountry{}, err
	}
	if err := r.store.PutCountry(c); err != nil {
		return domain.BlockedCountry{}, persistErr("put country "+prefix, err)
	}
	r.countries[c.Prefix] = c
	r.commit()
	return c, nil
}

// UnblockCountry deletes a blocked-country rule. No-op when absent.
func (r *RuleStore) UnblockCountry(prefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.countries[prefix]; !ok {
		return nil
	}
	if err := r.store.DeleteCountry(prefix); err != nil {
		return persistErr("delete country "+prefix, err)
	}
	delete(r.countries, prefix)
	r.commit()
	return nil
}

// AddContact whitelists a normalized identifier or prefix. Adding an
// already-trusted digit sequence returns the existing record.
func (r *RuleStore) AddContact(name string, id phone.NormalizedID) (domain.WhitelistContact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.contacts[id.Digits]; ok {
		return existing, nil
	}
	c, err := domain.NewWhitelistContact(name, id, r.clk.Now())
	if err != nil {
		return domain.WhitelistContact{}, err
	}
	if err := r.store.PutContact(c); err != nil {
		return domain.WhitelistContact{}, persistErr("put contact "+c.Digits, err)
	}
	r.contacts[c.Digits] = c
	r.commit()
	return c, nil
}

// RemoveContact deletes a whitelist entry. No-op when absent.
func (r *RuleStore) RemoveContact(digits string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contacts[digits]; !ok {
		return nil
	}
	if err := r.store.DeleteContact(digits); err != nil {
		return persistErr("delete contact "+digits, err)
	}
	delete(r.contacts, digits)
	r.commit()
	return nil
}

// Decide returns the admission decision for a normalized digit sequence.
// First match wins, in fixed order: whitelist, exact number, enabled
// pattern, country prefix. Policy: on internal errors, prefer Allow.
func (r *RuleStore) Decide(digits string) domain.Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, ok := r.cache.Get(digits); ok {
		return d
	}
	dec := r.decide(digits)
	r.cache.Put(digits, dec)
	return dec
}

func (r *RuleStore) decide(digits string) domain.Decision {
	if w, ok := r.trusted(digits); ok {
		return domain.TrustedDecision(w.Digits)
	}
	if r.bloom.MightContain([]byte(digits)) {
		_, ok, err := r.store.GetNumber(digits)
		if err != nil {
			r.logger.Warn(map[string]any{"error": err, "digits": digits}, "number lookup failed, skipping exact-number rule")
		} else if ok {
			return domain.BlockDecision(domain.ReasonNumber, digits)
		}
	}
	for _, p := range r.patterns {
		if p.Matches(digits) {
			return domain.BlockDecision(domain.ReasonPattern, p.Raw)
		}
	}
	if c, ok := r.matchCountry(digits); ok {
		return domain.BlockDecision(domain.ReasonCountry, c.Prefix)
	}
	return domain.AllowDecision()
}

// trusted returns the longest whitelist entry covering digits, if any.
func (r *RuleStore) trusted(digits string) (domain.WhitelistContact, bool) {
	var best domain.WhitelistContact
	found := false
	for _, w := range r.contacts {
		if w.Covers(digits) && (!found || len(w.Digits) > len(best.Digits)) {
			best = w
			found = true
		}
	}
	return best, found
}

// matchCountry returns the longest blocked country prefix matching digits.
func (r *RuleStore) matchCountry(digits string) (domain.BlockedCountry, bool) {
	var best domain.BlockedCountry
	found := false
	for _, c := range r.countries {
		if c.MatchesPrefix(digits) && (!found || len(c.Prefix) > len(best.Prefix)) {
			best = c
			found = true
		}
	}
	return best, found
}

// RecordBlocked bumps the matched rule's block counter and appends a
// timestamped block event for the stats windows. Counters are activity,
// not rule data: the enforcement list is unaffected, so no version bump
// and no cache purge.
func (r *RuleStore) RecordBlocked(digits string, d domain.Decision) error {
	if !d.Blocked {
		return fmt.Errorf("decision for %s is not a block", digits)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch d.Reason {
	case domain.ReasonNumber:
		n, ok, err := r.store.GetNumber(d.MatchedRule)
		if err != nil {
			return persistErr("get number "+d.MatchedRule, err)
		}
		if ok {
			n.BlockCount++
			if err := r.store.PutNumber(n); err != nil {
				return persistErr("put number "+n.Digits, err)
			}
		}
	case domain.ReasonPattern:
		for i, p := range r.patterns {
			if p.Raw != d.MatchedRule {
				continue
			}
			p.MatchCount++
			if err := r.store.PutPattern(p); err != nil {
				return persistErr("put pattern "+p.Raw, err)
			}
			r.patterns[i] = p
			break
		}
	case domain.ReasonCountry:
		if c, ok := r.countries[d.MatchedRule]; ok {
			c.BlockCount++
			if err := r.store.PutCountry(c); err != nil {
				return persistErr("put country "+c.Prefix, err)
			}
			r.countries[c.Prefix] = c
		}
	default:
		return fmt.Errorf("unsupported block reason: %s", d.Reason)
	}

	ev := domain.BlockEvent{At: r.clk.Now(), Reason: d.Reason, Digits: digits}
	if err := r.store.AppendEvent(ev); err != nil {
		return persistErr("append event", err)
	}
	return nil
}

// RecordAllowed bumps the allowed-call counter of the whitelist entry
// covering digits, if one does.
func (r *RuleStore) RecordAllowed(digits string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.trusted(digits)
	if !ok {
		return nil
	}
	w.AllowCount++
	if err := r.store.PutContact(w); err != nil {
		return persistErr("put contact "+w.Digits, err)
	}
	r.contacts[w.Digits] = w
	return nil
}

// Snapshot materializes the current enforcement list. The build itself is
// serialized against mutations; the returned list is immutable.
func (r *RuleStore) Snapshot() (domain.EnforcementList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	numbers, err := r.store.ListNumbers()
	if err != nil {
		return domain.EnforcementList{}, fmt.Errorf("list numbers: %w", err)
	}
	countries := make([]domain.BlockedCountry, 0, len(r.countries))
	for _, c := range r.countries {
		countries = append(countries, c)
	}
	contacts := make([]domain.WhitelistContact, 0, len(r.contacts))
	for _, w := range r.contacts {
		contacts = append(contacts, w)
	}
	return domain.BuildEnforcementList(numbers, r.patterns, countries, contacts, r.version, r.clk.Now()), nil
}

// Records returns copies of all rule records for stats aggregation.
func (r *RuleStore) Records() ([]domain.BlockedNumber, []domain.BlockPattern, []domain.BlockedCountry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	numbers, err := r.store.ListNumbers()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list numbers: %w", err)
	}
	patterns := make([]domain.BlockPattern, len(r.patterns))
	copy(patterns, r.patterns)
	countries := make([]domain.BlockedCountry, 0, len(r.countries))
	for _, c := range r.countries {
		countries = append(countries, c)
	}
	return numbers, patterns, countries, nil
}

// VisitEvents iterates block events with At >= since in chronological order.
func (r *RuleStore) VisitEvents(since time.Time, visit func(domain.BlockEvent) bool) error {
	return r.store.VisitEvents(since, visit)
}

// Version returns the current rule-set version. It increments on every
// rule mutation.
func (r *RuleStore) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Stats reports cache counters and store stats.
func (r *RuleStore) Stats() RepoStats {
	hits, misses, evictions := r.cache.Stats()
	return RepoStats{
		CacheHits:      hits,
		CacheMisses:    misses,
		CacheEvictions: evictions,
		Store:          r.store.Stats(),
	}
}

// Close releases the durable store.
func (r *RuleStore) Close() error { return r.store.Close() }
