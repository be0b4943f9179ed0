// Package dirsync pushes the current enforcement list to the external call
// screening directory. Syncs are single-flight: at most one export runs at a
// time, and requests arriving while a flight is in progress collapse into a
// single follow-up flight that starts from a fresh snapshot.
package dirsync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haukened/callgate/internal/screen/common/clock"
	"github.com/haukened/callgate/internal/screen/common/log"
	"github.com/haukened/callgate/internal/screen/domain"
)

// Options configures a Synchronizer.
type Options struct {
	Rules     SnapshotSource
	Directory Directory
	// MaxEntries caps the exported list size. Zero means unlimited.
	MaxEntries int
	Clock      clock.Clock
	Logger     log.Logger
}

// Synchronizer serializes enforcement-list exports to the directory.
type Synchronizer struct {
	rules      SnapshotSource
	directory  Directory
	maxEntries int
	clk        clock.Clock
	logger     log.Logger

	mu             sync.Mutex
	state          domain.SyncState
	pending        bool
	flightWaiters  []chan error
	pendingWaiters []chan error
	lastErr        error
	lastSynced     time.Time
}

// New builds a Synchronizer in the Idle state.
func New(opts Options) *Synchronizer {
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Synchronizer{
		rules:      opts.Rules,
		directory:  opts.Directory,
		maxEntries: opts.MaxEntries,
		clk:        clk,
		logger:     logger,
		state:      domain.SyncIdle,
	}
}

// State reports the current sync state.
func (s *Synchronizer) State() domain.SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResult reports the outcome of the most recent completed flight: the
// error it ended with (nil on success) and, on success, when it finished.
func (s *Synchronizer) LastResult() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSynced, s.lastErr
}

// RequestSync schedules a sync without waiting for it. If a flight is already
// running the request coalesces into the single pending follow-up.
func (s *Synchronizer) RequestSync(ctx context.Context) {
	s.start(ctx, nil)
}

// SyncNow schedules a sync and blocks until the flight covering this request
// resolves, or until ctx is done. A request that coalesces behind an
// in-progress flight waits for the follow-up flight, not the current one.
func (s *Synchronizer) SyncNow(ctx context.Context) error {
	done := make(chan error, 1)
	s.start(ctx, done)
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// start registers the request under the lock and launches a flight goroutine
// if none is running.
func (s *Synchronizer) start(ctx context.Context, waiter chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.SyncInFlight {
		s.pending = true
		if waiter != nil {
			s.pendingWaiters = append(s.pendingWaiters, waiter)
		}
		return
	}

	s.state = domain.SyncInFlight
	if waiter != nil {
		s.flightWaiters = append(s.flightWaiters, waiter)
	}
	go s.run(ctx)
}

// run drives flights until there is no pending follow-up or a flight fails.
func (s *Synchronizer) run(ctx context.Context) {
	for {
		err := s.export(ctx)

		s.mu.Lock()
		s.lastErr = err
		if err == nil {
			s.lastSynced = s.clk.Now()
		}
		notify(s.flightWaiters, err)
		s.flightWaiters = nil

		if err != nil {
			// A failed flight fails every coalesced request behind it too.
			// Callers decide whether to retry.
			notify(s.pendingWaiters, err)
			s.pendingWaiters = nil
			s.pending = false
			s.state = domain.SyncPendingRetry
			s.mu.Unlock()
			s.logger.Warn(map[string]any{"error": err.Error()}, "directory sync failed")
			return
		}

		if !s.pending {
			s.state = domain.SyncIdle
			s.mu.Unlock()
			return
		}

		// Promote the coalesced follow-up into the next flight.
		s.pending = false
		s.flightWaiters = s.pendingWaiters
		s.pendingWaiters = nil
		s.mu.Unlock()
	}
}

func notify(waiters []chan error, err error) {
	for _, w := range waiters {
		w <- err
	}
}

// export performs one flight: status probe, fresh snapshot, quota check,
// reload.
func (s *Synchronizer) export(ctx context.Context) error {
	status, err := s.directory.Status(ctx)
	if err != nil {
		return fmt.Errorf("%w: status probe: %w", domain.ErrSyncFailed, err)
	}
	if status == domain.ExtensionDisabled {
		return domain.ErrExtensionDisabled
	}

	list, err := s.rules.Snapshot()
	if err != nil {
		return fmt.Errorf("%w: snapshot: %w", domain.ErrSyncFailed, err)
	}

	if s.maxEntries > 0 && list.Len() > s.maxEntries {
		return fmt.Errorf("%w: %d entries exceeds limit of %d", domain.ErrQuotaExceeded, list.Len(), s.maxEntries)
	}

	if err := s.directory.Reload(ctx, list); err != nil {
		return fmt.Errorf("%w: reload: %w", domain.ErrSyncFailed, err)
	}

	s.logger.Debug(map[string]any{
		"entries": list.Len(),
		"version": list.Version,
	}, "directory sync complete")
	return nil
}
