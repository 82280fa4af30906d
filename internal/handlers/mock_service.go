package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"pvfacade/internal/models"
	"pvfacade/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockRealtime struct {
	states map[string]models.FacadeRealtime

	refreshAccepted bool
	refreshCalls    int
	lastRefreshed   string
	started         []string
	stopped         []string
}

func (m *mockRealtime) StartPolling(facadeID string, interval time.Duration) {
	m.started = append(m.started, facadeID)
}
func (m *mockRealtime) StopPolling(facadeID string) {
	m.stopped = append(m.stopped, facadeID)
}
func (m *mockRealtime) Refresh(facadeID string) bool {
	m.refreshCalls++
	m.lastRefreshed = facadeID
	return m.refreshAccepted
}
func (m *mockRealtime) State(facadeID string) (models.FacadeRealtime, bool) {
	st, ok := m.states[facadeID]
	return st, ok
}
func (m *mockRealtime) States() []models.FacadeRealtime {
	out := make([]models.FacadeRealtime, 0, len(m.states))
	for _, st := range m.states {
		out = append(out, st)
	}
	return out
}

type mockFacades struct {
	list        []service.FacadeOverview
	overview    service.FacadeOverview
	overviewErr error
	lastID      string
}

func (m *mockFacades) List() []service.FacadeOverview { return m.list }
func (m *mockFacades) Overview(facadeID string) (service.FacadeOverview, error) {
	m.lastID = facadeID
	return m.overview, m.overviewErr
}

type mockHistory struct {
	resp       []models.StoredReading
	err        error
	lastFilter service.HistoryFilter
}

func (m *mockHistory) List(ctx context.Context, f service.HistoryFilter) ([]models.StoredReading, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockAlerts struct {
	current    []models.CurrentAlert
	currentErr error
	events     []models.AlertEvent
	eventsErr  error
	report     models.AnomalyReport
	reportErr  error

	lastCurrentID string
	lastFilter    service.AlertFilter
	lastQuery     service.AnomalyQuery
}

func (m *mockAlerts) Current(facadeID string) ([]models.CurrentAlert, error) {
	m.lastCurrentID = facadeID
	return m.current, m.currentErr
}
func (m *mockAlerts) Events(ctx context.Context, f service.AlertFilter) ([]models.AlertEvent, error) {
	m.lastFilter = f
	return m.events, m.eventsErr
}
func (m *mockAlerts) Anomalies(ctx context.Context, q service.AnomalyQuery) (models.AnomalyReport, error) {
	m.lastQuery = q
	return m.report, m.reportErr
}

type mockExport struct {
	body       string
	rows       int
	err        error
	lastFilter service.HistoryFilter
}

func (m *mockExport) WriteReadingsCSV(ctx context.Context, w io.Writer, f service.HistoryFilter) (int, error) {
	m.lastFilter = f
	if m.err != nil {
		return 0, m.err
	}
	if _, err := io.WriteString(w, m.body); err != nil {
		return 0, err
	}
	return m.rows, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

// allowAllAuth parses every token to the same user.
func allowAllAuth() *mockAuth {
	return &mockAuth{parseID: 1}
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
