package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pvfacade/internal/aggregate"
	"pvfacade/internal/logger"
	"pvfacade/internal/models"
	"pvfacade/internal/repository"
)

// RecorderService persists the latest successful snapshots into the history
// table and appends alert events when panel temperatures drop below the
// threshold. It only reads the realtime store; the store's own callbacks
// remain the single writer of live state.
type RecorderService struct {
	store       Realtime
	readingRepo repository.ReadingRepo
	alertRepo   repository.AlertRepo
	threshold   float64
	log         *logger.Logger

	// lastPersisted tracks the newest reading timestamp written per facade,
	// so an unchanged snapshot is not re-inserted every tick.
	lastPersisted map[string]time.Time
	// lastAlerted dedupes alert events per facade/channel timestamp.
	lastAlerted map[string]time.Time
}

func NewRecorderService(store Realtime, readingRepo repository.ReadingRepo, alertRepo repository.AlertRepo, threshold float64, log *logger.Logger) *RecorderService {
	if threshold == 0 {
		threshold = defaultPanelTempLowC
	}
	return &RecorderService{
		store:         store,
		readingRepo:   readingRepo,
		alertRepo:     alertRepo,
		threshold:     threshold,
		log:           log,
		lastPersisted: make(map[string]time.Time),
		lastAlerted:   make(map[string]time.Time),
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *RecorderService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.recordOnce(ctx)
		}
	}
}

// recordOnce persists every facade whose snapshot advanced since the last tick.
func (s *RecorderService) recordOnce(ctx context.Context) {
	for _, st := range s.store.States() {
		if st.Snapshot == nil {
			continue
		}
		snap := *st.Snapshot

		latest := snap.LatestTimestamp()
		if !latest.After(s.lastPersisted[st.FacadeID]) {
			continue
		}

		readings := make([]models.SensorReading, 0, len(snap.Readings))
		for _, r := range snap.Readings {
			readings = append(readings, r)
		}
		if err := s.readingRepo.AppendBatch(ctx, st.FacadeID, readings); err != nil {
			if s.log != nil {
				s.log.Errorw("record_snapshot_failed", "facade_id", st.FacadeID, "err", err)
			}
			continue
		}
		s.lastPersisted[st.FacadeID] = latest

		s.recordAlerts(ctx, st.FacadeID, snap)
	}
}

// recordAlerts appends one alert event per panel reading below threshold,
// at most once per reading timestamp.
func (s *RecorderService) recordAlerts(ctx context.Context, facadeID string, snap models.FacadeSnapshot) {
	for _, r := range snap.Readings {
		if r.Channel.Type != models.ChannelTemperaturePanel {
			continue
		}
		if !aggregate.FlagAlert(r, s.threshold) {
			continue
		}
		key := facadeID + "/" + r.ChannelKey
		if !r.Timestamp.After(s.lastAlerted[key]) {
			continue
		}

		ev := models.AlertEvent{
			ID:         uuid.NewString(),
			OccurredAt: r.Timestamp,
			FacadeID:   facadeID,
			ChannelKey: r.ChannelKey,
			Value:      r.Value,
			Threshold:  s.threshold,
			Message:    fmt.Sprintf("%s at %.1f °C, below %.1f °C", r.ChannelKey, r.Value, s.threshold),
		}
		if err := s.alertRepo.Append(ctx, ev); err != nil {
			if s.log != nil {
				s.log.Errorw("record_alert_failed", "facade_id", facadeID, "channel", r.ChannelKey, "err", err)
			}
			continue
		}
		s.lastAlerted[key] = r.Timestamp
	}
}
