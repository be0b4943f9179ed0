package domain

import (
	"sort"
	"strings"
	"time"
)

// EntryKind distinguishes the two kinds of enforcement entries the
// provider understands.
//
// number - blocks exactly one digit sequence
// prefix - blocks every digit sequence starting with the entry
type EntryKind uint8

const (
	// EntryNumber blocks only the exact digit sequence.
	EntryNumber EntryKind = iota
	// EntryPrefix blocks every identifier whose digits start with the entry.
	EntryPrefix
)

// String returns a stable string representation of the entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryNumber:
		return "number"
	case EntryPrefix:
		return "prefix"
	default:
		return "EntryKind(?)"
	}
}

// EnforcementEntry is one line of the provider-facing enforcement list.
type EnforcementEntry struct {
	Digits string
	Kind   EntryKind
}

// String renders the entry in the provider's line format: bare digits for
// a number, digits with a trailing wildcard for a prefix.
func (e EnforcementEntry) String() string {
	if e.Kind == EntryPrefix {
		return e.Digits + Wildcard
	}
	return e.Digits
}

// EnforcementList is the immutable materialized view pushed to the
// external provider: the sorted, deduplicated set of enforceable entries
// with every whitelist overlap removed. It is never edited in place; a
// rule mutation always produces a new list.
type EnforcementList struct {
	Entries []EnforcementEntry
	Version uint64
	BuiltAt time.Time
}

// Len returns the number of entries.
func (l EnforcementList) Len() int { return len(l.Entries) }

// BuildEnforcementList materializes the enforcement list from the current
// rule records.
//
// Blocked numbers become number entries. Enabled wildcard patterns become
// prefix entries (patterns are never enumerated; the enforceable space is
// unbounded), exact patterns become number entries. Country prefixes become
// prefix entries. Disabled patterns contribute nothing.
//
// The whitelist always wins. An entry is excluded when:
//   - it equals a whitelisted sequence,
//   - a whitelisted sequence is a prefix of it (the trust covers it), or
//   - it is a prefix entry that is itself a prefix of a whitelisted
//     sequence (the rule would catch the trusted number).
//
// Entries are sorted ascending by digit sequence, then kind, and
// deduplicated by exact value, so identical rule state always yields a
// byte-identical payload.
func BuildEnforcementList(
	numbers []BlockedNumber,
	patterns []BlockPattern,
	countries []BlockedCountry,
	whitelist []WhitelistContact,
	version uint64,
	builtAt time.Time,
) EnforcementList {
	entries := make([]EnforcementEntry, 0, len(numbers)+len(patterns)+len(countries))

	for _, n := range numbers {
		entries = append(entries, EnforcementEntry{Digits: n.Digits, Kind: EntryNumber})
	}
	for _, p := range patterns {
		if !p.Enabled {
			continue
		}
		kind := EntryNumber
		if p.HasWildcard {
			kind = EntryPrefix
		}
		entries = append(entries, EnforcementEntry{Digits: p.Prefix, Kind: kind})
	}
	for _, c := range countries {
		entries = append(entries, EnforcementEntry{Digits: c.Prefix, Kind: EntryPrefix})
	}

	kept := entries[:0]
	for _, e := range entries {
		if !trustedOverlap(e, whitelist) {
			kept = append(kept, e)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Digits != kept[j].Digits {
			return kept[i].Digits < kept[j].Digits
		}
		return kept[i].Kind < kept[j].Kind
	})

	deduped := kept[:0]
	for i, e := range kept {
		if i > 0 && e == kept[i-1] {
			continue
		}
		deduped = append(deduped, e)
	}

	return EnforcementList{Entries: deduped, Version: version, BuiltAt: builtAt}
}

// trustedOverlap reports whether exporting e could block a whitelisted
// identifier.
func trustedOverlap(e EnforcementEntry, whitelist []WhitelistContact) bool {
	for _, w := range whitelist {
		if e.Digits == w.Digits {
			return true
		}
		if strings.HasPrefix(e.Digits, w.Digits) {
			return true
		}
		if e.Kind == EntryPrefix && strings.HasPrefix(w.Digits, e.Digits) {
			return true
		}
	}
	return false
}
