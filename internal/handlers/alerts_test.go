package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pvfacade/internal/backend"
	"pvfacade/internal/models"
	"pvfacade/internal/service"
)

func TestGetCurrentAlerts(t *testing.T) {
	t.Run("flags below threshold", func(t *testing.T) {
		alerts := &mockAlerts{current: []models.CurrentAlert{
			{FacadeID: "refrigerada", ChannelKey: "T_M3", Value: 23.4, Threshold: 25.0},
		}}
		r := newTestRouter(&service.Service{Authorization: allowAllAuth(), Alerts: alerts})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/current?facade_id=refrigerada", nil)
		req.Header = authHeader("token")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d, body=%s", w.Code, w.Body.String())
		}
		var resp struct {
			Count  int                   `json:"count"`
			Alerts []models.CurrentAlert `json:"alerts"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Count != 1 || resp.Alerts[0].ChannelKey != "T_M3" {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if alerts.lastCurrentID != "refrigerada" {
			t.Fatalf("facade id passthrough: %q", alerts.lastCurrentID)
		}
	})

	t.Run("unknown facade", func(t *testing.T) {
		alerts := &mockAlerts{currentErr: service.ErrUnknownFacade}
		r := newTestRouter(&service.Service{Authorization: allowAllAuth(), Alerts: alerts})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/current?facade_id=ghost", nil)
		req.Header = authHeader("token")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("status: got %d, want 404", w.Code)
		}
	})
}

func TestGetAlertEvents(t *testing.T) {
	alerts := &mockAlerts{events: []models.AlertEvent{
		{ID: "e1", FacadeID: "refrigerada", ChannelKey: "T_M3"},
	}}
	r := newTestRouter(&service.Service{Authorization: allowAllAuth(), Alerts: alerts})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/events?limit=50&from=2025-06-01", nil)
	req.Header = authHeader("token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Count  int                 `json:"count"`
		Events []models.AlertEvent `json:"events"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || resp.Events[0].ID != "e1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if alerts.lastFilter.Limit != 50 {
		t.Fatalf("limit passthrough: %d", alerts.lastFilter.Limit)
	}
	if alerts.lastFilter.From.IsZero() {
		t.Fatal("from not parsed")
	}
}

func TestGetAnomalies(t *testing.T) {
	t.Run("relays report", func(t *testing.T) {
		alerts := &mockAlerts{report: models.AnomalyReport{
			Count:     1,
			Anomalies: []any{map[string]any{"sensor": "T_M3"}},
		}}
		r := newTestRouter(&service.Service{Authorization: allowAllAuth(), Alerts: alerts})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet,
			"/api/v1/alerts/anomalies?limit=20&facade_type=refrigerada&hours=24", nil)
		req.Header = authHeader("token")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status: got %d, body=%s", w.Code, w.Body.String())
		}
		q := alerts.lastQuery
		if q.Limit != 20 || q.FacadeType != "refrigerada" || q.Hours != 24 {
			t.Fatalf("query passthrough: %+v", q)
		}
		var report models.AnomalyReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if report.Count != 1 {
			t.Fatalf("unexpected report: %+v", report)
		}
	})

	t.Run("backend failure maps to 502 with user message", func(t *testing.T) {
		fetchErr := backend.NewFetchError(backend.KindNetwork, 0, "dial tcp: connection refused", nil)
		alerts := &mockAlerts{reportErr: fetchErr}
		r := newTestRouter(&service.Service{Authorization: allowAllAuth(), Alerts: alerts})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts/anomalies", nil)
		req.Header = authHeader("token")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Fatalf("status: got %d, want 502", w.Code)
		}
		var out struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(w.Body.Bytes(), &out)
		if out.Error != "measurement backend unreachable" {
			t.Fatalf("error message: got %q", out.Error)
		}
	})
}
