// Package phone canonicalizes raw caller identifiers into a comparable
// digit-sequence form. All rule matching and export logic operates on
// normalized identifiers, never on raw input.
package phone

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidIdentifier reports raw input that contains no digit characters
// and therefore cannot be normalized.
var ErrInvalidIdentifier = errors.New("invalid caller identifier")

// DefaultExitCodes are the international dialing exit codes recognized when
// no explicit set is configured: ITU "00" and NANP "011".
var DefaultExitCodes = []string{"011", "00"}

// NormalizedID is the canonical form of a caller identifier.
//
// Digits holds the bare digit sequence with every separator and any leading
// exit code removed. International is set when the raw input carried an
// explicit country-prefix marker (a leading plus sign or a recognized exit
// code).
type NormalizedID struct {
	Digits        string
	International bool
}

// String renders the identifier so that normalizing the result again yields
// an identical NormalizedID.
func (id NormalizedID) String() string {
	if id.International {
		return "+" + id.Digits
	}
	return id.Digits
}

// IsZero reports whether the identifier is empty.
func (id NormalizedID) IsZero() bool { return id.Digits == "" }

// Normalizer converts raw caller-identifier strings into NormalizedIDs.
// It is constructed once with the set of recognized exit codes and is
// immutable afterwards, so it is safe for concurrent use.
type Normalizer struct {
	exitCodes []string // sorted longest-first so "011" wins over "0"-ish overlaps
}

// NewNormalizer returns a Normalizer recognizing the given exit codes.
// When none are supplied, DefaultExitCodes are used.
func NewNormalizer(exitCodes ...string) *Normalizer {
	codes := exitCodes
	if len(codes) == 0 {
		codes = DefaultExitCodes
	}
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return &Normalizer{exitCodes: sorted}
}

// Normalize canonicalizes raw into a NormalizedID. It strips separator
// characters, keeps only digits, and records an international marker when
// the input begins with '+' or a recognized exit code. It fails with
// ErrInvalidIdentifier when the input contains no digits.
//
// Normalize is idempotent: Normalize(id.String()) round-trips.
func (n *Normalizer) Normalize(raw string) (NormalizedID, error) {
	trimmed := strings.TrimSpace(raw)
	international := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return NormalizedID{}, ErrInvalidIdentifier
	}

	// An exit code is only meaningful when the number was not already
	// marked international with a plus sign.
	if !international {
		for _, code := range n.exitCodes {
			if len(digits) > len(code) && strings.HasPrefix(digits, code) {
				digits = digits[len(code):]
				international = true
				break
			}
		}
	}

	return NormalizedID{Digits: digits, International: international}, nil
}

// IsDigits reports whether s is a non-empty string of ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
