package domain

import (
	"fmt"
	"time"

	"github.com/haukened/callgate/internal/screen/common/phone"
)

// BlockedCountry represents a blocked country calling-code prefix.
//
// Prefix is the calling code as a bare digit string and is the record's
// unique key. Region and Name come from the static country table when the
// prefix is recognized; both may be empty for unlisted codes.
type BlockedCountry struct {
	Prefix     string
	Region     string // ISO 3166-1 alpha-2
	Name       string
	BlockedAt  time.Time
	BlockCount uint64
}

// NewBlockedCountry constructs a BlockedCountry, resolving region and
// display name from the static country table when available.
func NewBlockedCountry(prefix string, blockedAt time.Time) (BlockedCountry, error) {
	c := BlockedCountry{Prefix: prefix, BlockedAt: blockedAt}
	if info, ok := LookupCallingCode(prefix); ok {
		c.Region = info.Region
		c.Name = info.Name
	}
	if err := c.Validate(); err != nil {
		return BlockedCountry{}, err
	}
	return c, nil
}

// Validate checks the BlockedCountry for required fields.
func (c BlockedCountry) Validate() error {
	if !phone.IsDigits(c.Prefix) {
		return fmt.Errorf("country prefix must be a non-empty digit string, got %q", c.Prefix)
	}
	if c.BlockedAt.IsZero() {
		return fmt.Errorf("country blockedAt must be set")
	}
	return nil
}

// MatchesPrefix reports whether the country's calling code is a prefix of
// the given normalized digit sequence.
func (c BlockedCountry) MatchesPrefix(digits string) bool {
	return len(digits) >= len(c.Prefix) && digits[:len(c.Prefix)] == c.Prefix
}
