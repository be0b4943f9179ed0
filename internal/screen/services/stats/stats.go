// Package stats summarizes blocking activity from the rule records and the
// block event log. Concurrent snapshot requests within the same second share
// one computation.
package stats

import (
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/haukened/callgate/internal/screen/common/clock"
	"github.com/haukened/callgate/internal/screen/domain"
)

// RuleSource exposes the records and events a snapshot is computed from.
type RuleSource interface {
	Records() ([]domain.BlockedNumber, []domain.BlockPattern, []domain.BlockedCountry, error)
	VisitEvents(since time.Time, visit func(domain.BlockEvent) bool) error
}

// Options configures an Aggregator.
type Options struct {
	Rules RuleSource
	Clock clock.Clock
}

// Aggregator computes call statistics on demand.
type Aggregator struct {
	rules RuleSource
	clk   clock.Clock
	sf    singleflight.Group
}

// New builds an Aggregator.
func New(opts Options) *Aggregator {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Aggregator{rules: opts.Rules, clk: clk}
}

// Snapshot computes the current statistics. Calls landing within the same
// second coalesce onto a single pass over the records and event log.
func (a *Aggregator) Snapshot() (domain.CallStats, error) {
	now := a.clk.Now()
	key := now.Truncate(time.Second).Format(time.RFC3339)
	v, err, _ := a.sf.Do(key, func() (any, error) {
		return a.compute(now)
	})
	if err != nil {
		return domain.CallStats{}, err
	}
	return v.(domain.CallStats), nil
}

func (a *Aggregator) compute(now time.Time) (domain.CallStats, error) {
	numbers, patterns, countries, err := a.rules.Records()
	if err != nil {
		return domain.CallStats{}, err
	}

	var stats domain.CallStats
	for _, n := range numbers {
		stats.TotalBlocked += n.BlockCount
	}
	for _, p := range patterns {
		stats.TotalBlocked += p.MatchCount
	}
	for _, c := range countries {
		stats.TotalBlocked += c.BlockCount
		if !stats.HasTopCountry || moreBlocked(c, stats.TopCountry) {
			stats.TopCountry = c
			stats.HasTopCountry = true
		}
	}

	dayStart := startOfDay(now)
	weekStart := startOfWeek(now)
	err = a.rules.VisitEvents(weekStart, func(ev domain.BlockEvent) bool {
		stats.BlockedWeek++
		if !ev.At.Before(dayStart) {
			stats.BlockedToday++
		}
		return true
	})
	if err != nil {
		return domain.CallStats{}, err
	}
	return stats, nil
}

// moreBlocked ranks candidate top countries. Ties go to the more recently
// blocked country.
func moreBlocked(c, best domain.BlockedCountry) bool {
	if c.BlockCount != best.BlockCount {
		return c.BlockCount > best.BlockCount
	}
	return c.BlockedAt.After(best.BlockedAt)
}

// startOfDay returns local midnight of the day containing t.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns local midnight of the Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
