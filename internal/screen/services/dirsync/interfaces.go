package dirsync

import (
	"context"

	"github.com/haukened/callgate/internal/screen/domain"
)

// SnapshotSource yields the current enforcement list. Each flight takes a
// fresh snapshot so rule changes landing mid-sync are picked up by the
// follow-up flight rather than silently lost.
type SnapshotSource interface {
	Snapshot() (domain.EnforcementList, error)
}

// Directory is the external call-screening provider the enforcement list is
// pushed to.
type Directory interface {
	Status(ctx context.Context) (domain.ExtensionStatus, error)
	Reload(ctx context.Context, list domain.EnforcementList) error
}
