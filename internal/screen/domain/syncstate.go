package domain

import "fmt"

// SyncState tracks the directory synchronizer's state machine.
type SyncState uint8

const (
	// SyncIdle means no export is in flight and none is owed.
	SyncIdle SyncState = iota
	// SyncInFlight means exactly one export is running.
	SyncInFlight
	// SyncPendingRetry means the last export failed; the next requested
	// sync starts fresh, there is no automatic retry.
	SyncPendingRetry
)

// String returns a stable string representation of the sync state.
func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncInFlight:
		return "syncing"
	case SyncPendingRetry:
		return "pending_retry"
	default:
		return fmt.Sprintf("SyncState(%d)", s)
	}
}

// ExtensionStatus is the external call-screening provider's reported state.
type ExtensionStatus uint8

const (
	// ExtensionUnknown means the provider's state could not be determined.
	ExtensionUnknown ExtensionStatus = iota
	// ExtensionEnabled means the provider accepts enforcement lists.
	ExtensionEnabled
	// ExtensionDisabled means the user disabled the provider; exports are
	// not attempted while it reports disabled.
	ExtensionDisabled
	// ExtensionError means the provider reports an internal error.
	ExtensionError
)

// String returns a stable string representation of the extension status.
func (s ExtensionStatus) String() string {
	switch s {
	case ExtensionUnknown:
		return "unknown"
	case ExtensionEnabled:
		return "enabled"
	case ExtensionDisabled:
		return "disabled"
	case ExtensionError:
		return "error"
	default:
		return fmt.Sprintf("ExtensionStatus(%d)", s)
	}
}
