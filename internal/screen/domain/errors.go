package domain

import "errors"

// Error taxonomy for rule mutation and directory synchronization. Callers
// classify failures with errors.Is; every error wraps enough context (the
// offending value or cause) to render an actionable message.
var (
	// ErrInvalidPattern reports a malformed wildcard pattern. Rejected at
	// creation time; malformed patterns are never stored.
	ErrInvalidPattern = errors.New("invalid block pattern")

	// ErrPersistenceFailure reports a failed durable write. The mutation is
	// aborted and in-memory state is left unchanged.
	ErrPersistenceFailure = errors.New("persistence failure")

	// ErrExtensionDisabled reports that the call-screening provider is
	// disabled by the user; no export is attempted while it is.
	ErrExtensionDisabled = errors.New("call directory extension disabled")

	// ErrQuotaExceeded reports an enforcement list larger than the provider's
	// maximum entry count. The whole sync fails; nothing is truncated.
	ErrQuotaExceeded = errors.New("enforcement list quota exceeded")

	// ErrSyncFailed reports a transient provider failure. The rule data
	// remains correct; the next requested sync reconciles.
	ErrSyncFailed = errors.New("directory sync failed")
)
