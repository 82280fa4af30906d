package realtime

import (
	"context"
	"sync"
	"time"

	"pvfacade/internal/backend"
	"pvfacade/internal/logger"
	"pvfacade/internal/models"
)

// Fetcher retrieves the latest snapshot for one facade.
// Satisfied by *backend.Client.
type Fetcher interface {
	FetchSnapshot(ctx context.Context, facadeID string) (models.FacadeSnapshot, error)
}

// facadeState is the per-facade slice of store state. The generation counter
// tags every started fetch; a result whose generation no longer matches is
// discarded, which enforces start-order precedence and drops results arriving
// after StopPolling.
type facadeState struct {
	snapshot   *models.FacadeSnapshot
	loading    bool
	errMsg     string
	lastUpdate time.Time

	gen      uint64
	inflight bool
	polling  bool
	stop     func()
}

// Store holds the latest snapshot per facade plus loading/error/staleness
// state. It is the only shared mutable state of the realtime layer; all
// mutation goes through fetch-completion callbacks under the mutex.
type Store struct {
	mu      sync.Mutex
	fetcher Fetcher
	sched   Scheduler
	timeout time.Duration
	log     *logger.Logger

	facades map[string]*facadeState
}

// NewStore builds a Store. A zero timeout falls back to the backend default.
func NewStore(fetcher Fetcher, sched Scheduler, timeout time.Duration, log *logger.Logger) *Store {
	if timeout <= 0 {
		timeout = backend.DefaultTimeout
	}
	return &Store{
		fetcher: fetcher,
		sched:   sched,
		timeout: timeout,
		log:     log,
		facades: make(map[string]*facadeState),
	}
}

// StartPolling begins periodic fetching for a facade and triggers an
// immediate first fetch. Schedules are independent per facade; calling again
// for a facade already polling is a no-op.
func (s *Store) StartPolling(facadeID string, interval time.Duration) {
	s.mu.Lock()
	st := s.ensure(facadeID)
	if st.polling {
		s.mu.Unlock()
		return
	}
	st.polling = true
	st.stop = s.sched.Every(interval, func() { s.poll(facadeID) })
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infow("polling_started", "facade_id", facadeID, "interval", interval)
	}
	s.poll(facadeID)
}

// StopPolling cancels the facade's schedule and invalidates any in-flight
// fetch so its result is ignored on arrival. Safe to call when not polling.
func (s *Store) StopPolling(facadeID string) {
	s.mu.Lock()
	st, ok := s.facades[facadeID]
	if !ok || !st.polling {
		s.mu.Unlock()
		return
	}
	stop := st.stop
	st.stop = nil
	st.polling = false
	st.inflight = false
	st.gen++ // orphan any fetch still in flight
	st.loading = false
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
	if s.log != nil {
		s.log.Infow("polling_stopped", "facade_id", facadeID)
	}
}

// Refresh triggers one immediate fetch outside the regular cadence without
// resetting the next scheduled tick. Returns false when a fetch for the
// facade is already in flight; the overlapping request is dropped rather
// than applied out of order.
func (s *Store) Refresh(facadeID string) bool {
	return s.poll(facadeID)
}

// State returns the facade's realtime view; ok=false for untracked facades.
func (s *Store) State(facadeID string) (models.FacadeRealtime, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.facades[facadeID]
	if !ok {
		return models.FacadeRealtime{FacadeID: facadeID}, false
	}
	return s.view(facadeID, st), true
}

// States returns the realtime view of every tracked facade.
func (s *Store) States() []models.FacadeRealtime {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.FacadeRealtime, 0, len(s.facades))
	for id, st := range s.facades {
		out = append(out, s.view(id, st))
	}
	return out
}

// view builds a FacadeRealtime under the lock, copying the snapshot so
// callers never alias store-internal maps.
func (s *Store) view(facadeID string, st *facadeState) models.FacadeRealtime {
	v := models.FacadeRealtime{
		FacadeID:   facadeID,
		Loading:    st.loading,
		Error:      st.errMsg,
		LastUpdate: st.lastUpdate,
		Polling:    st.polling,
	}
	if st.snapshot != nil {
		snap := models.FacadeSnapshot{
			FacadeID:   st.snapshot.FacadeID,
			FacadeType: st.snapshot.FacadeType,
			Readings:   make(map[string]models.SensorReading, len(st.snapshot.Readings)),
		}
		for k, r := range st.snapshot.Readings {
			snap.Readings[k] = r
		}
		v.Snapshot = &snap
	}
	return v
}

func (s *Store) ensure(facadeID string) *facadeState {
	st, ok := s.facades[facadeID]
	if !ok {
		st = &facadeState{}
		s.facades[facadeID] = st
	}
	return st
}

// poll starts one fetch unless a previous one for the facade is unresolved.
// At most one fetch is in flight per facade at a time.
func (s *Store) poll(facadeID string) bool {
	s.mu.Lock()
	st := s.ensure(facadeID)
	if st.inflight {
		s.mu.Unlock()
		return false
	}
	st.inflight = true
	st.loading = true
	st.gen++
	gen := st.gen
	s.mu.Unlock()

	go s.run(facadeID, gen)
	return true
}

// run performs the network fetch and applies its result.
func (s *Store) run(facadeID string, gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	snap, err := s.fetcher.FetchSnapshot(ctx, facadeID)
	s.apply(facadeID, gen, snap, err)
}

// apply is the single fetch-completion callback. Results carrying a stale
// generation are discarded: a fetch started before, but completing after, a
// newer one must not clobber the newer result, and nothing mutates state
// after StopPolling.
func (s *Store) apply(facadeID string, gen uint64, snap models.FacadeSnapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.facades[facadeID]
	if !ok || gen != st.gen {
		if s.log != nil {
			s.log.Debugw("fetch_result_discarded", "facade_id", facadeID, "gen", gen)
		}
		return
	}

	st.inflight = false
	st.loading = false

	if err != nil {
		// Keep the prior snapshot: stale-but-available beats a blank view.
		st.errMsg = userMessage(err)
		if s.log != nil {
			s.log.Errorw("fetch_failed", "facade_id", facadeID, "err", err)
		}
		return
	}

	st.snapshot = &snap
	st.errMsg = ""
	st.lastUpdate = time.Now().UTC()
}

func userMessage(err error) string {
	if fe, ok := backend.AsFetchError(err); ok {
		return fe.UserMessage()
	}
	return err.Error()
}
