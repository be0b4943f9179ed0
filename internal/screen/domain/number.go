package domain

import (
	"fmt"
	"time"

	"github.com/haukened/callgate/internal/screen/common/phone"
)

// BlockedNumber represents a single explicitly blocked caller identifier.
//
// Digits is the normalized digit sequence and is the record's unique key.
// BlockCount tracks how many calls this rule has blocked.
type BlockedNumber struct {
	Digits        string
	International bool
	CreatedAt     time.Time
	BlockCount    uint64
}

// NewBlockedNumber constructs a BlockedNumber from a normalized identifier
// and validates its fields.
func NewBlockedNumber(id phone.NormalizedID, createdAt time.Time) (BlockedNumber, error) {
	n := BlockedNumber{
		Digits:        id.Digits,
		International: id.International,
		CreatedAt:     createdAt,
	}
	if err := n.Validate(); err != nil {
		return BlockedNumber{}, err
	}
	return n, nil
}

// Validate checks the BlockedNumber for required fields.
func (n BlockedNumber) Validate() error {
	if !phone.IsDigits(n.Digits) {
		return fmt.Errorf("blocked number must be a digit sequence, got %q", n.Digits)
	}
	if n.CreatedAt.IsZero() {
		return fmt.Errorf("blocked number createdAt must be set")
	}
	return nil
}

// ID returns the normalized identifier the record was created from.
func (n BlockedNumber) ID() phone.NormalizedID {
	return phone.NormalizedID{Digits: n.Digits, International: n.International}
}
