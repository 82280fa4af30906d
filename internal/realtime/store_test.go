package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvfacade/internal/models"
)

// manualScheduler records registered schedules and fires ticks on demand.
type manualScheduler struct {
	mu    sync.Mutex
	fns   []func()
	stops int
}

func (m *manualScheduler) Every(_ time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fns = append(m.fns, fn)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.stops++
	}
}

func (m *manualScheduler) scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fns)
}

type fetchResult struct {
	snap models.FacadeSnapshot
	err  error
}

// fetchCall is one in-flight fake fetch the test can resolve at will.
type fetchCall struct {
	facadeID string
	result   chan fetchResult
}

// blockingFetcher hands every call to the test through a channel.
type blockingFetcher struct {
	calls chan *fetchCall
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{calls: make(chan *fetchCall, 16)}
}

func (f *blockingFetcher) FetchSnapshot(ctx context.Context, facadeID string) (models.FacadeSnapshot, error) {
	call := &fetchCall{facadeID: facadeID, result: make(chan fetchResult)}
	f.calls <- call
	select {
	case r := <-call.result:
		return r.snap, r.err
	case <-ctx.Done():
		return models.FacadeSnapshot{}, ctx.Err()
	}
}

func (f *blockingFetcher) next(t *testing.T) *fetchCall {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a fetch to start")
		return nil
	}
}

func snapWith(facadeID string, value float64) models.FacadeSnapshot {
	return models.FacadeSnapshot{
		FacadeID:   facadeID,
		FacadeType: models.FacadeRefrigerated,
		Readings: map[string]models.SensorReading{
			"T_M1": {ChannelKey: "T_M1", Value: value, Timestamp: time.Now().UTC()},
		},
	}
}

func waitForValue(t *testing.T, s *Store, facadeID string, want float64) {
	t.Helper()
	require.Eventually(t, func() bool {
		st, ok := s.State(facadeID)
		return ok && st.Snapshot != nil && st.Snapshot.Readings["T_M1"].Value == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStore_SuccessfulPollUpdatesState(t *testing.T) {
	f := newBlockingFetcher()
	sched := &manualScheduler{}
	s := NewStore(f, sched, time.Second, nil)

	s.StartPolling("refrigerada", 15*time.Second)
	call := f.next(t)
	assert.Equal(t, "refrigerada", call.facadeID)

	call.result <- fetchResult{snap: snapWith("refrigerada", 24.1)}
	waitForValue(t, s, "refrigerada", 24.1)

	st, ok := s.State("refrigerada")
	require.True(t, ok)
	assert.True(t, st.Polling)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.False(t, st.LastUpdate.IsZero())
}

func TestStore_FailureKeepsStaleSnapshot(t *testing.T) {
	f := newBlockingFetcher()
	s := NewStore(f, &manualScheduler{}, time.Second, nil)

	s.StartPolling("refrigerada", 15*time.Second)
	f.next(t).result <- fetchResult{snap: snapWith("refrigerada", 24.1)}
	waitForValue(t, s, "refrigerada", 24.1)

	// Next tick fails (backend 404).
	require.True(t, s.Refresh("refrigerada"))
	f.next(t).result <- fetchResult{err: errors.New("not_found: backend returned 404")}

	require.Eventually(t, func() bool {
		st, _ := s.State("refrigerada")
		return st.Error != ""
	}, 2*time.Second, 5*time.Millisecond)

	st, _ := s.State("refrigerada")
	require.NotNil(t, st.Snapshot, "failed poll must not clear the prior snapshot")
	assert.Equal(t, 24.1, st.Snapshot.Readings["T_M1"].Value)
	assert.NotEmpty(t, st.Error)
	assert.False(t, st.Loading)
}

func TestStore_StartPollingIdempotent(t *testing.T) {
	f := newBlockingFetcher()
	sched := &manualScheduler{}
	s := NewStore(f, sched, time.Second, nil)

	s.StartPolling("refrigerada", 15*time.Second)
	s.StartPolling("refrigerada", 15*time.Second)

	assert.Equal(t, 1, sched.scheduled(), "re-start for the same facade must be a no-op")
	// Only the first start triggers an immediate fetch.
	f.next(t).result <- fetchResult{snap: snapWith("refrigerada", 24.1)}
	waitForValue(t, s, "refrigerada", 24.1)
	select {
	case <-f.calls:
		t.Fatal("second StartPolling must not start another fetch")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStore_RefreshDroppedWhileInFlight(t *testing.T) {
	f := newBlockingFetcher()
	s := NewStore(f, &manualScheduler{}, time.Second, nil)

	s.StartPolling("refrigerada", 15*time.Second)
	call := f.next(t)

	// A scheduled tick and a manual refresh overlapping: the second is dropped.
	assert.False(t, s.Refresh("refrigerada"))

	call.result <- fetchResult{snap: snapWith("refrigerada", 24.1)}
	waitForValue(t, s, "refrigerada", 24.1)
	assert.True(t, s.Refresh("refrigerada"))
	f.next(t).result <- fetchResult{snap: snapWith("refrigerada", 25.0)}
	waitForValue(t, s, "refrigerada", 25.0)
}

// Fetch A starts first and completes second: its result must not overwrite
// the already-applied result of the newer fetch B (start-order wins).
func TestStore_OutOfOrderCompletionDiscarded(t *testing.T) {
	f := newBlockingFetcher()
	s := NewStore(f, &manualScheduler{}, time.Second, nil)

	s.StartPolling("refrigerada", 15*time.Second)
	callA := f.next(t)

	// Restarting polling orphans A and starts the newer fetch B.
	s.StopPolling("refrigerada")
	s.StartPolling("refrigerada", 15*time.Second)
	callB := f.next(t)

	callB.result <- fetchResult{snap: snapWith("refrigerada", 27.3)}
	waitForValue(t, s, "refrigerada", 27.3)

	// A resolves late; its value must never appear.
	callA.result <- fetchResult{snap: snapWith("refrigerada", 99.9)}
	assert.Never(t, func() bool {
		st, _ := s.State("refrigerada")
		return st.Snapshot != nil && st.Snapshot.Readings["T_M1"].Value == 99.9
	}, 150*time.Millisecond, 10*time.Millisecond)
}

// Stopping polling (view unmount) followed by the in-flight fetch resolving
// must not mutate store state.
func TestStore_NoUpdateAfterStop(t *testing.T) {
	f := newBlockingFetcher()
	sched := &manualScheduler{}
	s := NewStore(f, sched, time.Second, nil)

	s.StartPolling("refrigerada", 15*time.Second)
	call := f.next(t)

	s.StopPolling("refrigerada")
	assert.Equal(t, 1, sched.stops, "stop must cancel the schedule")

	call.result <- fetchResult{snap: snapWith("refrigerada", 31.4)}
	assert.Never(t, func() bool {
		st, _ := s.State("refrigerada")
		return st.Snapshot != nil
	}, 150*time.Millisecond, 10*time.Millisecond)

	st, ok := s.State("refrigerada")
	require.True(t, ok)
	assert.False(t, st.Polling)
	assert.False(t, st.Loading)
	assert.True(t, st.LastUpdate.IsZero())
}

// StopPolling on a facade that never polled is safe.
func TestStore_StopPollingUnknownFacade(t *testing.T) {
	s := NewStore(newBlockingFetcher(), &manualScheduler{}, time.Second, nil)
	s.StopPolling("nope")

	_, ok := s.State("nope")
	assert.False(t, ok)
}

// Schedules are independent per facade.
func TestStore_IndependentFacades(t *testing.T) {
	f := newBlockingFetcher()
	sched := &manualScheduler{}
	s := NewStore(f, sched, time.Second, nil)

	s.StartPolling("refrigerada", 15*time.Second)
	s.StartPolling("no_refrigerada", 30*time.Second)
	assert.Equal(t, 2, sched.scheduled())

	first := f.next(t)
	second := f.next(t)
	ids := map[string]bool{first.facadeID: true, second.facadeID: true}
	assert.True(t, ids["refrigerada"] && ids["no_refrigerada"])

	first.result <- fetchResult{snap: snapWith(first.facadeID, 20)}
	second.result <- fetchResult{snap: snapWith(second.facadeID, 21)}
	waitForValue(t, s, first.facadeID, 20)
	waitForValue(t, s, second.facadeID, 21)

	assert.Len(t, s.States(), 2)
}
