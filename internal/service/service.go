package service

import (
	"context"
	"io"
	"time"

	"pvfacade/internal/logger"
	"pvfacade/internal/models"
	"pvfacade/internal/realtime"
	"pvfacade/internal/repository"
)

// Realtime exposes the polling lifecycle and the latest per-facade state.
// Implemented by the realtime store.
type Realtime interface {
	StartPolling(facadeID string, interval time.Duration)
	StopPolling(facadeID string)
	Refresh(facadeID string) bool
	State(facadeID string) (models.FacadeRealtime, bool)
	States() []models.FacadeRealtime
}

// Facades exposes dashboard overviews built from the live snapshots.
type Facades interface {
	List() []FacadeOverview
	Overview(facadeID string) (FacadeOverview, error)
}

// History exposes the locally persisted reading history with filtering.
type History interface {
	List(ctx context.Context, f HistoryFilter) ([]models.StoredReading, error)
}

// Alerts exposes live threshold flags, persisted alert events, and the
// backend's statistical anomaly report.
type Alerts interface {
	Current(facadeID string) ([]models.CurrentAlert, error)
	Events(ctx context.Context, f AlertFilter) ([]models.AlertEvent, error)
	Anomalies(ctx context.Context, q AnomalyQuery) (models.AnomalyReport, error)
}

// Export streams history rows as CSV.
type Export interface {
	WriteReadingsCSV(ctx context.Context, w io.Writer, f HistoryFilter) (int, error)
}

// Recorder runs the background loop persisting snapshots and alert events.
// Stop via context cancellation in main() for graceful shutdown.
type Recorder interface {
	Run(ctx context.Context, tick time.Duration)
}

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// AnomalySource relays the backend's anomaly endpoint. Implemented by the
// backend client.
type AnomalySource interface {
	FetchAnomalies(ctx context.Context, limit int, facadeType string, hours int) (models.AnomalyReport, error)
}

// FacadeConfig is one configured facade installation.
type FacadeConfig struct {
	ID   string
	Type models.FacadeType
}

// Config carries the domain knobs the services need.
type Config struct {
	Facades         []FacadeConfig
	ModuleGroupSize int
	PanelTempLowC   float64
	SigningKey      string
	TokenTTL        time.Duration
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Realtime
	Facades
	History
	Alerts
	Export
	Recorder
	Authorization
}

// NewService wires the realtime store, the repositories, and the backend
// client into concrete services.
func NewService(store *realtime.Store, repos *repository.Repository, anomalies AnomalySource, cfg Config, log *logger.Logger) *Service {
	return &Service{
		Realtime:      store,
		Facades:       NewFacadesService(store, cfg),
		History:       NewHistoryService(repos.Readings),
		Alerts:        NewAlertsService(store, repos.Alerts, anomalies, cfg.PanelTempLowC),
		Export:        NewExportService(repos.Readings),
		Recorder:      NewRecorderService(store, repos.Readings, repos.Alerts, cfg.PanelTempLowC, log),
		Authorization: NewAuthService(repos.Auth, cfg.SigningKey, cfg.TokenTTL),
	}
}
