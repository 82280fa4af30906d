package service

import (
	"context"
	"fmt"
	"sort"

	"pvfacade/internal/aggregate"
	"pvfacade/internal/models"
	"pvfacade/internal/repository"
)

const defaultPanelTempLowC = 25.0

type AlertsService struct {
	store     Realtime
	alertRepo repository.AlertRepo
	anomalies AnomalySource
	threshold float64
}

func NewAlertsService(store Realtime, alertRepo repository.AlertRepo, anomalies AnomalySource, threshold float64) *AlertsService {
	if threshold == 0 {
		threshold = defaultPanelTempLowC
	}
	return &AlertsService{store: store, alertRepo: alertRepo, anomalies: anomalies, threshold: threshold}
}

// Current computes live threshold flags over the facade's latest snapshot.
// Only panel-temperature channels participate in the fixed low-temperature rule.
func (s *AlertsService) Current(facadeID string) ([]models.CurrentAlert, error) {
	st, ok := s.store.State(facadeID)
	if !ok {
		return nil, ErrUnknownFacade
	}
	if st.Snapshot == nil {
		return []models.CurrentAlert{}, nil
	}

	out := make([]models.CurrentAlert, 0, 4)
	for _, r := range st.Snapshot.Readings {
		if r.Channel.Type != models.ChannelTemperaturePanel {
			continue
		}
		if aggregate.FlagAlert(r, s.threshold) {
			out = append(out, models.CurrentAlert{
				FacadeID:   facadeID,
				ChannelKey: r.ChannelKey,
				Value:      r.Value,
				Threshold:  s.threshold,
				Timestamp:  r.Timestamp,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelKey < out[j].ChannelKey })
	return out, nil
}

// Events lists persisted threshold alerts, newest first.
func (s *AlertsService) Events(ctx context.Context, f AlertFilter) ([]models.AlertEvent, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, ErrInvalidTimeRange
	}
	return s.alertRepo.List(ctx, f.Limit, from, to)
}

// Anomalies relays the backend's statistical anomaly report. The analysis
// itself (percentiles, COP, detection) runs server-side.
func (s *AlertsService) Anomalies(ctx context.Context, q AnomalyQuery) (models.AnomalyReport, error) {
	report, err := s.anomalies.FetchAnomalies(ctx, q.Limit, q.FacadeType, q.Hours)
	if err != nil {
		return models.AnomalyReport{}, fmt.Errorf("fetch anomalies: %w", err)
	}
	return report, nil
}
