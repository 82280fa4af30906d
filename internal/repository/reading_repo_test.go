package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"pvfacade/internal/models"
	"pvfacade/internal/repository"
)

func panelReading(key string, value float64, ts time.Time) models.SensorReading {
	return models.SensorReading{
		ChannelKey: key,
		Channel: models.ClassifiedChannel{
			ChannelKey: key,
			Type:       models.ChannelTemperaturePanel,
			Unit:       "°C",
		},
		Value:      value,
		Timestamp:  ts,
		DeviceID:   "dev-1",
		FacadeType: models.FacadeRefrigerated,
	}
}

func TestReadingSQLite_AppendBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := repository.NewReadingSQLite(db)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	insertRe := regexp.QuoteMeta(`
	INSERT OR IGNORE INTO readings (facade_id, channel_key, semantic_type, value, unit, ts)
	VALUES (?, ?, ?, ?, ?, ?)
`)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(insertRe)
	prep.ExpectExec().
		WithArgs("refrigerada", "T_M1", "temperature_panel", 24.1, "°C", "2025-06-01 12:00:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs("refrigerada", "T_M2", "temperature_panel", 27.3, "°C", "2025-06-01 12:00:00").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err = repo.AppendBatch(context.Background(), "refrigerada", []models.SensorReading{
		panelReading("T_M1", 24.1, ts),
		panelReading("T_M2", 27.3, ts),
	})
	if err != nil {
		t.Fatalf("AppendBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReadingSQLite_AppendBatch_EmptyIsNoop(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := repository.NewReadingSQLite(db)
	if err := repo.AppendBatch(context.Background(), "refrigerada", nil); err != nil {
		t.Fatalf("AppendBatch(nil): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no SQL should run for an empty batch: %v", err)
	}
}

func TestReadingSQLite_AppendBatch_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := repository.NewReadingSQLite(db)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT OR IGNORE INTO readings")
	prep.ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err = repo.AppendBatch(context.Background(), "refrigerada", []models.SensorReading{
		panelReading("T_M1", 24.1, ts),
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReadingSQLite_ListRange_Filters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := repository.NewReadingSQLite(db)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	queryRe := regexp.QuoteMeta(
		`SELECT facade_id, channel_key, semantic_type, value, unit, ts FROM readings ` +
			`WHERE facade_id = ? AND ts >= ? AND ts <= ? AND semantic_type = ? ORDER BY ts ASC`)

	rows := sqlmock.NewRows([]string{"facade_id", "channel_key", "semantic_type", "value", "unit", "ts"}).
		AddRow("refrigerada", "T_M1", "temperature_panel", 24.1, "°C", ts).
		AddRow("refrigerada", "T_M2", "temperature_panel", 27.3, "°C", ts)

	mock.ExpectQuery(queryRe).
		WithArgs("refrigerada", "2025-06-01 00:00:00", "2025-06-02 00:00:00", "temperature_panel").
		WillReturnRows(rows)

	got, err := repo.ListRange(context.Background(), "refrigerada", from, to, "temperature_panel")
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows: want 2, got %d", len(got))
	}
	if got[0].ChannelKey != "T_M1" || got[0].Value != 24.1 {
		t.Errorf("unexpected first row: %+v", got[0])
	}
	if got[0].Type != models.ChannelTemperaturePanel {
		t.Errorf("semantic type: want temperature_panel, got %s", got[0].Type)
	}
	if got[0].Timestamp.Location() != time.UTC {
		t.Errorf("timestamp must be UTC, got %v", got[0].Timestamp.Location())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReadingSQLite_ListRange_NoOptionalFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := repository.NewReadingSQLite(db)

	queryRe := regexp.QuoteMeta(
		`SELECT facade_id, channel_key, semantic_type, value, unit, ts FROM readings ` +
			`WHERE facade_id = ? ORDER BY ts ASC`)

	mock.ExpectQuery(queryRe).
		WithArgs("no_refrigerada").
		WillReturnRows(sqlmock.NewRows([]string{"facade_id", "channel_key", "semantic_type", "value", "unit", "ts"}))

	got, err := repo.ListRange(context.Background(), "no_refrigerada", time.Time{}, time.Time{}, "")
	if err != nil {
		t.Fatalf("ListRange: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("rows: want 0, got %d", len(got))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
