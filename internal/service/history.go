package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pvfacade/internal/models"
	"pvfacade/internal/repository"
)

type HistoryService struct {
	readings repository.ReadingRepo
}

func NewHistoryService(readings repository.ReadingRepo) *HistoryService {
	return &HistoryService{readings: readings}
}

var (
	ErrInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	ErrMissingFacadeID  = errors.New("facade_id is required")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f HistoryFilter) (HistoryFilter, error) {
	f.FacadeID = strings.TrimSpace(f.FacadeID)
	if f.FacadeID == "" {
		return HistoryFilter{}, ErrMissingFacadeID
	}

	f.From = normalizeToUTC(f.From)
	f.To = normalizeToUTC(f.To)
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return HistoryFilter{}, ErrInvalidTimeRange
	}

	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	return f, nil
}

func (s *HistoryService) List(ctx context.Context, f HistoryFilter) ([]models.StoredReading, error) {
	f, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.readings.ListRange(ctx, f.FacadeID, f.From, f.To, f.Type)
}
