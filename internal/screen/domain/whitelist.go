package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haukened/callgate/internal/screen/common/phone"
)

// WhitelistContact represents a trusted identifier or prefix. Presence on
// the whitelist unconditionally overrides every block category for the
// identifier itself and for any identifier the entry is a prefix of.
type WhitelistContact struct {
	ID         uuid.UUID
	Digits     string // normalized digit sequence, unique key
	Name       string
	AddedAt    time.Time
	AllowCount uint64
}

// NewWhitelistContact constructs a WhitelistContact from a normalized
// identifier and validates its fields.
func NewWhitelistContact(name string, id phone.NormalizedID, addedAt time.Time) (WhitelistContact, error) {
	c := WhitelistContact{
		ID:      uuid.New(),
		Digits:  id.Digits,
		Name:    strings.TrimSpace(name),
		AddedAt: addedAt,
	}
	if err := c.Validate(); err != nil {
		return WhitelistContact{}, err
	}
	return c, nil
}

// Validate checks the WhitelistContact for required fields.
func (c WhitelistContact) Validate() error {
	if !phone.IsDigits(c.Digits) {
		return fmt.Errorf("whitelist contact must be a digit sequence, got %q", c.Digits)
	}
	if c.AddedAt.IsZero() {
		return fmt.Errorf("whitelist contact addedAt must be set")
	}
	if c.ID == uuid.Nil {
		return fmt.Errorf("whitelist contact id must be set")
	}
	return nil
}

// Covers reports whether this contact trusts the given digit sequence:
// either the entry equals the sequence or is a prefix of it.
func (c WhitelistContact) Covers(digits string) bool {
	return strings.HasPrefix(digits, c.Digits)
}
