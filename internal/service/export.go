package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"pvfacade/internal/repository"
)

type ExportService struct {
	readings repository.ReadingRepo
}

func NewExportService(readings repository.ReadingRepo) *ExportService {
	return &ExportService{readings: readings}
}

var csvHeader = []string{"facade_id", "channel_key", "semantic_type", "value", "unit", "timestamp"}

// WriteReadingsCSV streams the filtered history as CSV rows and returns the
// number of data rows written. Values keep full float precision; the one
// place rounding happens is the consumer's display layer.
func (s *ExportService) WriteReadingsCSV(ctx context.Context, w io.Writer, f HistoryFilter) (int, error) {
	f, err := normalizeAndValidateFilter(f)
	if err != nil {
		return 0, err
	}

	rows, err := s.readings.ListRange(ctx, f.FacadeID, f.From, f.To, f.Type)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, r := range rows {
		record := []string{
			r.FacadeID,
			r.ChannelKey,
			string(r.Type),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Unit,
			r.Timestamp.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	return len(rows), cw.Error()
}
