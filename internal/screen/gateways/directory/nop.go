package directory

import (
	"context"

	"github.com/haukened/callgate/internal/screen/domain"
)

// NopDirectory is a Directory that accepts everything and enforces
// nothing. Used when no enforcement destination is configured.
type NopDirectory struct{}

func (n *NopDirectory) Status(context.Context) (domain.ExtensionStatus, error) {
	return domain.ExtensionEnabled, nil
}

func (n *NopDirectory) Reload(context.Context, domain.EnforcementList) error {
	return nil
}

var _ Directory = (*NopDirectory)(nil)
