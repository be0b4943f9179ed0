package domain

import (
	"fmt"
	"time"
)

// BlockEvent records one blocked call: when it happened, which rule
// category blocked it, and the normalized digits that were blocked.
// Events feed the stats aggregator's time windows.
type BlockEvent struct {
	At     time.Time
	Reason BlockReason
	Digits string
}

// Validate checks the BlockEvent for required fields.
func (e BlockEvent) Validate() error {
	if e.At.IsZero() {
		return fmt.Errorf("block event timestamp must be set")
	}
	if e.Reason == ReasonNone {
		return fmt.Errorf("block event must carry a block reason")
	}
	if e.Digits == "" {
		return fmt.Errorf("block event digits must not be empty")
	}
	return nil
}
