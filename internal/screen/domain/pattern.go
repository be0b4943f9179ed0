package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haukened/callgate/internal/screen/common/phone"
)

// Wildcard is the trailing marker meaning "any suffix of zero or more digits".
const Wildcard = "*"

// BlockPattern represents a user-authored wildcard blocking rule.
//
// Raw is the pattern as entered, e.g. "1800*" or "18005551234". Prefix and
// HasWildcard are its compiled form. Disabled patterns are retained but are
// excluded from matching and from export.
type BlockPattern struct {
	ID          uuid.UUID
	Raw         string
	Prefix      string // digits portion of the pattern
	HasWildcard bool
	Enabled     bool
	CreatedAt   time.Time
	MatchCount  uint64
}

// CompilePattern parses raw pattern text into its digit prefix and wildcard
// flag. A pattern is a digit sequence optionally terminated by a single
// trailing wildcard; a wildcard anywhere else fails with ErrInvalidPattern.
func CompilePattern(raw string) (prefix string, hasWildcard bool, err error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", false, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	if strings.HasSuffix(p, Wildcard) {
		hasWildcard = true
		p = strings.TrimSuffix(p, Wildcard)
	}
	if strings.Contains(p, Wildcard) {
		return "", false, fmt.Errorf("%w: wildcard only allowed in trailing position: %q", ErrInvalidPattern, raw)
	}
	if !phone.IsDigits(p) {
		return "", false, fmt.Errorf("%w: pattern must be digits with an optional trailing wildcard: %q", ErrInvalidPattern, raw)
	}
	return p, hasWildcard, nil
}

// NewBlockPattern compiles raw and constructs an enabled BlockPattern.
func NewBlockPattern(raw string, createdAt time.Time) (BlockPattern, error) {
	prefix, wild, err := CompilePattern(raw)
	if err != nil {
		return BlockPattern{}, err
	}
	if createdAt.IsZero() {
		return BlockPattern{}, fmt.Errorf("pattern createdAt must be set")
	}
	return BlockPattern{
		ID:          uuid.New(),
		Raw:         strings.TrimSpace(raw),
		Prefix:      prefix,
		HasWildcard: wild,
		Enabled:     true,
		CreatedAt:   createdAt,
	}, nil
}

// Matches reports whether the pattern matches the given normalized digit
// sequence. Disabled patterns never match. A wildcard pattern matches any
// sequence starting with its prefix; an exact pattern matches only the
// identical sequence.
func (p BlockPattern) Matches(digits string) bool {
	if !p.Enabled {
		return false
	}
	if p.HasWildcard {
		return strings.HasPrefix(digits, p.Prefix)
	}
	return digits == p.Prefix
}

// Validate checks the BlockPattern's compiled form against its raw text.
func (p BlockPattern) Validate() error {
	prefix, wild, err := CompilePattern(p.Raw)
	if err != nil {
		return err
	}
	if prefix != p.Prefix || wild != p.HasWildcard {
		return fmt.Errorf("%w: compiled form does not match raw pattern %q", ErrInvalidPattern, p.Raw)
	}
	if p.ID == uuid.Nil {
		return fmt.Errorf("pattern id must be set")
	}
	return nil
}
