package repository

import (
	"context"
	"database/sql"
	"time"

	"pvfacade/internal/models"
	repodb "pvfacade/internal/repository/db"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type ReadingRepo interface {
	AppendBatch(ctx context.Context, facadeID string, readings []models.SensorReading) error
	ListRange(ctx context.Context, facadeID string, from, to time.Time, semanticType string) ([]models.StoredReading, error)
}

type AlertRepo interface {
	Append(ctx context.Context, e models.AlertEvent) error
	List(ctx context.Context, limit int, from, to time.Time) ([]models.AlertEvent, error)
}

type Repository struct {
	Readings ReadingRepo
	Alerts   AlertRepo
	Auth     Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Readings: NewReadingSQLite(db),
		Alerts:   NewAlertSQLite(db),
		Auth:     NewUserRepository(db),
	}
}

// InitDB re-exports the connection bootstrap for callers wiring the layer.
func InitDB(path string) (*sql.DB, error) {
	return repodb.InitDB(path)
}
