package dirsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/callgate/internal/screen/common/clock"
	"github.com/haukened/callgate/internal/screen/domain"
)

// fakeRules serves enforcement lists in sequence, repeating the last one.
type fakeRules struct {
	mu    sync.Mutex
	lists []domain.EnforcementList
	calls int
	err   error
}

func (f *fakeRules) Snapshot() (domain.EnforcementList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return domain.EnforcementList{}, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.lists) {
		idx = len(f.lists) - 1
	}
	return f.lists[idx], nil
}

func (f *fakeRules) snapshots() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeDirectory records reloads. When gated, each Reload signals entry and
// blocks until the test sends its result on release.
type fakeDirectory struct {
	mu        sync.Mutex
	status    domain.ExtensionStatus
	statusErr error
	reloadErr error
	reloads   []domain.EnforcementList

	entered chan struct{}
	release chan error
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{status: domain.ExtensionEnabled}
}

func (f *fakeDirectory) gate() {
	f.entered = make(chan struct{})
	f.release = make(chan error)
}

func (f *fakeDirectory) setStatus(s domain.ExtensionStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakeDirectory) Status(_ context.Context) (domain.ExtensionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.statusErr
}

func (f *fakeDirectory) Reload(_ context.Context, list domain.EnforcementList) error {
	f.mu.Lock()
	f.reloads = append(f.reloads, list)
	err := f.reloadErr
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
		return <-f.release
	}
	return err
}

func (f *fakeDirectory) reloadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reloads)
}

func listOf(version uint64, digits ...string) domain.EnforcementList {
	l := domain.EnforcementList{Version: version, BuiltAt: time.Unix(0, 0)}
	for _, d := range digits {
		l.Entries = append(l.Entries, domain.EnforcementEntry{Digits: d, Kind: domain.EntryNumber})
	}
	return l
}

func newSynchronizer(rules SnapshotSource, dir Directory, max int) *Synchronizer {
	return New(Options{
		Rules:      rules,
		Directory:  dir,
		MaxEntries: max,
		Clock:      &clock.MockClock{CurrentTime: time.Unix(1700000000, 0)},
	})
}

func TestSyncNow_ExportsSnapshot(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "18005551234")}}
	dir := newFakeDirectory()
	s := newSynchronizer(rules, dir, 0)

	require.NoError(t, s.SyncNow(context.Background()))
	assert.Equal(t, domain.SyncIdle, s.State())
	require.Equal(t, 1, dir.reloadCount())
	assert.Equal(t, uint64(1), dir.reloads[0].Version)

	synced, err := s.LastResult()
	assert.NoError(t, err)
	assert.False(t, synced.IsZero())
}

func TestSyncNow_DisabledExtensionSkipsExport(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "18005551234")}}
	dir := newFakeDirectory()
	dir.setStatus(domain.ExtensionDisabled)
	s := newSynchronizer(rules, dir, 0)

	err := s.SyncNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrExtensionDisabled)
	assert.Equal(t, 0, dir.reloadCount(), "no export attempt while the extension is disabled")
	assert.Equal(t, 0, rules.snapshots(), "no snapshot taken while the extension is disabled")
	assert.Equal(t, domain.SyncPendingRetry, s.State())

	// A later request starts a fresh flight once the extension comes back.
	dir.setStatus(domain.ExtensionEnabled)
	require.NoError(t, s.SyncNow(context.Background()))
	assert.Equal(t, domain.SyncIdle, s.State())
	assert.Equal(t, 1, dir.reloadCount())
}

func TestSyncNow_ReloadFailure(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "18005551234")}}
	dir := newFakeDirectory()
	dir.reloadErr = errors.New("connection refused")
	s := newSynchronizer(rules, dir, 0)

	err := s.SyncNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncFailed)
	assert.Equal(t, domain.SyncPendingRetry, s.State())

	_, last := s.LastResult()
	assert.ErrorIs(t, last, domain.ErrSyncFailed)
}

func TestSyncNow_StatusProbeFailure(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1)}}
	dir := newFakeDirectory()
	dir.statusErr = errors.New("timeout")
	s := newSynchronizer(rules, dir, 0)

	err := s.SyncNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrSyncFailed)
	assert.Equal(t, 0, dir.reloadCount())
}

func TestSyncNow_QuotaExceeded(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "1", "2", "3")}}
	dir := newFakeDirectory()
	s := newSynchronizer(rules, dir, 2)

	err := s.SyncNow(context.Background())
	assert.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Equal(t, 0, dir.reloadCount(), "oversized lists are rejected whole")
	assert.Equal(t, domain.SyncPendingRetry, s.State())
}

func TestConcurrentRequestsCoalesce(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "1"), listOf(2, "1", "2")}}
	dir := newFakeDirectory()
	dir.gate()
	s := newSynchronizer(rules, dir, 0)

	first := make(chan error, 1)
	go func() { first <- s.SyncNow(context.Background()) }()
	<-dir.entered

	// Everything arriving mid-flight collapses into one follow-up.
	for i := 0; i < 5; i++ {
		s.RequestSync(context.Background())
	}
	var wg sync.WaitGroup
	results := make([]error, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.SyncNow(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)

	dir.release <- nil
	require.NoError(t, <-first)

	// The follow-up flight takes a fresh snapshot.
	<-dir.entered
	dir.release <- nil
	wg.Wait()

	assert.Equal(t, domain.SyncIdle, s.State())
	require.Equal(t, 2, dir.reloadCount(), "all mid-flight requests share one follow-up")
	assert.Equal(t, uint64(1), dir.reloads[0].Version)
	assert.Equal(t, uint64(2), dir.reloads[1].Version)
	for _, err := range results {
		assert.NoError(t, err)
	}
}

func TestCoalescedWaitersFailWithFlight(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "1")}}
	dir := newFakeDirectory()
	dir.gate()
	s := newSynchronizer(rules, dir, 0)

	first := make(chan error, 1)
	go func() { first <- s.SyncNow(context.Background()) }()
	<-dir.entered

	second := make(chan error, 1)
	go func() { second <- s.SyncNow(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	boom := errors.New("half-synced")
	dir.release <- boom

	err := <-first
	assert.ErrorIs(t, err, domain.ErrSyncFailed)
	err = <-second
	assert.ErrorIs(t, err, domain.ErrSyncFailed, "a failed flight fails the coalesced requests behind it")

	assert.Equal(t, domain.SyncPendingRetry, s.State())
	assert.Equal(t, 1, dir.reloadCount(), "no automatic retry after a failed flight")
}

func TestSyncNow_ContextCancelledWhileWaiting(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "1")}}
	dir := newFakeDirectory()
	dir.gate()
	s := newSynchronizer(rules, dir, 0)

	first := make(chan error, 1)
	go func() { first <- s.SyncNow(context.Background()) }()
	<-dir.entered

	ctx, cancel := context.WithCancel(context.Background())
	second := make(chan error, 1)
	go func() { second <- s.SyncNow(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-second, context.Canceled)

	dir.release <- nil
	require.NoError(t, <-first)

	// Cancelled waiters abandon the wait, not the flight itself.
	<-dir.entered
	dir.release <- nil
	assert.Eventually(t, func() bool { return s.State() == domain.SyncIdle }, time.Second, 10*time.Millisecond)
}

func TestRequestSync_FireAndForget(t *testing.T) {
	rules := &fakeRules{lists: []domain.EnforcementList{listOf(1, "1")}}
	dir := newFakeDirectory()
	s := newSynchronizer(rules, dir, 0)

	s.RequestSync(context.Background())
	assert.Eventually(t, func() bool { return dir.reloadCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return s.State() == domain.SyncIdle }, time.Second, 10*time.Millisecond)
}
