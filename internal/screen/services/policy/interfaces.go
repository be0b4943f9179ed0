package policy

import "github.com/haukened/callgate/internal/screen/domain"

// Rules is what the evaluator needs from the rule store: a settled
// admission decision for a normalized digit sequence, plus the activity
// counters behind the stats views.
type Rules interface {
	Decide(digits string) domain.Decision
	RecordBlocked(digits string, d domain.Decision) error
	RecordAllowed(digits string) error
}
