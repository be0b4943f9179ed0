package domain

import "fmt"

// BlockReason identifies which rule category produced a block decision.
type BlockReason uint8

const (
	// ReasonNone means the call was not blocked.
	ReasonNone BlockReason = iota
	// ReasonNumber means an exact blocked-number rule matched.
	ReasonNumber
	// ReasonPattern means an enabled wildcard pattern matched.
	ReasonPattern
	// ReasonCountry means a blocked country prefix matched.
	ReasonCountry
)

// String returns a stable string representation of the reason.
func (r BlockReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonNumber:
		return "number"
	case ReasonPattern:
		return "pattern"
	case ReasonCountry:
		return "country"
	default:
		return fmt.Sprintf("BlockReason(%d)", r)
	}
}

// Decision represents the outcome of evaluating a caller identifier.
// Pure value type, no external dependencies.
type Decision struct {
	Blocked     bool
	Reason      BlockReason
	MatchedRule string // rule value that matched: digits, raw pattern, or country prefix
	Trusted     bool   // allowed because a whitelist entry covered the identifier
}

// IsBlocked is a convenience accessor.
func (d Decision) IsBlocked() bool { return d.Blocked }

// AllowDecision returns a not-blocked decision.
func AllowDecision() Decision { return Decision{} }

// TrustedDecision returns an allow decision attributed to a whitelist entry.
func TrustedDecision(rule string) Decision {
	return Decision{Trusted: true, MatchedRule: rule}
}

// BlockDecision returns a block decision for the given reason and rule.
func BlockDecision(reason BlockReason, rule string) Decision {
	return Decision{Blocked: true, Reason: reason, MatchedRule: rule}
}
