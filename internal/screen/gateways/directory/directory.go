// Package directory adapts the external call-screening provider: the
// out-of-process extension host that enforces the exported list against
// live calls. The core never evaluates calls at the provider; it only
// pushes full-replacement enforcement lists and probes provider status.
package directory

import (
	"context"

	"github.com/haukened/callgate/internal/screen/domain"
)

// Directory is the provider port. Reload is always a full replacement;
// the provider has no partial-update API.
type Directory interface {
	// Status reports the provider's current state.
	Status(ctx context.Context) (domain.ExtensionStatus, error)

	// Reload replaces the provider's enforcement list with the given one.
	Reload(ctx context.Context, list domain.EnforcementList) error
}
