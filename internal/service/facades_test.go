package service

import (
	"errors"
	"testing"
	"time"

	"pvfacade/internal/models"
)

func facadesTestConfig() Config {
	return Config{
		Facades: []FacadeConfig{
			{ID: "refrigerada", Type: models.FacadeRefrigerated},
			{ID: "no_refrigerada", Type: models.FacadeNonRefrigerated},
		},
		ModuleGroupSize: 3,
	}
}

func mixedSnapshot(facadeID string) *models.FacadeSnapshot {
	snap := &models.FacadeSnapshot{
		FacadeID:   facadeID,
		FacadeType: models.FacadeRefrigerated,
		Readings:   make(map[string]models.SensorReading),
	}
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	add := func(key string, typ models.SemanticType, unit string, v float64) {
		snap.Readings[key] = models.SensorReading{
			ChannelKey: key,
			Channel:    models.ClassifiedChannel{ChannelKey: key, Type: typ, Unit: unit},
			Value:      v,
			Timestamp:  ts,
		}
	}
	add("T_M1", models.ChannelTemperaturePanel, "°C", 26.0)
	add("T_M2", models.ChannelTemperaturePanel, "°C", 28.0)
	add("T_M3", models.ChannelTemperaturePanel, "°C", 30.0)
	add("Irradiancia", models.ChannelIrradiance, "W/m²", 812.5)
	add("Estado_Sistema", models.ChannelSystemStatus, "", 1)
	return snap
}

func TestFacadesService_Overview(t *testing.T) {
	t.Parallel()

	store := &alertsRealtimeStub{states: map[string]models.FacadeRealtime{
		"refrigerada": {
			FacadeID:   "refrigerada",
			Snapshot:   mixedSnapshot("refrigerada"),
			Polling:    true,
			LastUpdate: time.Date(2025, 6, 1, 12, 0, 5, 0, time.UTC),
		},
	}}
	svc := NewFacadesService(store, facadesTestConfig())

	ov, err := svc.Overview("refrigerada")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if !ov.Polling {
		t.Error("expected polling=true")
	}
	if len(ov.CurrentReadings) != 5 {
		t.Fatalf("readings: want 5, got %d", len(ov.CurrentReadings))
	}
	// Sorted by sensor name: Estado_Sistema first.
	if ov.CurrentReadings[0].SensorName != "Estado_Sistema" {
		t.Errorf("unexpected first reading: %+v", ov.CurrentReadings[0])
	}

	if ov.Summary.PanelTempAvg == nil || *ov.Summary.PanelTempAvg != 28.0 {
		t.Errorf("panel avg: want 28.0, got %v", ov.Summary.PanelTempAvg)
	}
	if ov.Summary.PanelTempMin == nil || *ov.Summary.PanelTempMin != 26.0 {
		t.Errorf("panel min: want 26.0, got %v", ov.Summary.PanelTempMin)
	}
	if ov.Summary.PanelTempMax == nil || *ov.Summary.PanelTempMax != 30.0 {
		t.Errorf("panel max: want 30.0, got %v", ov.Summary.PanelTempMax)
	}
	if ov.Summary.Irradiance == nil || *ov.Summary.Irradiance != 812.5 {
		t.Errorf("irradiance: want 812.5, got %v", ov.Summary.Irradiance)
	}
	// No humidity channel in the snapshot: nil, rendered as "--" by views.
	if ov.Summary.Humidity != nil {
		t.Errorf("humidity: want nil, got %v", *ov.Summary.Humidity)
	}
	if len(ov.Summary.Modules) != 1 {
		t.Fatalf("modules: want 1, got %d", len(ov.Summary.Modules))
	}
	if ov.Summary.Modules[0].Mean != 28.0 {
		t.Errorf("module mean: want 28.0, got %v", ov.Summary.Modules[0].Mean)
	}
}

func TestFacadesService_Overview_UnknownFacade(t *testing.T) {
	t.Parallel()

	svc := NewFacadesService(&alertsRealtimeStub{}, facadesTestConfig())
	if _, err := svc.Overview("ghost"); !errors.Is(err, ErrUnknownFacade) {
		t.Fatalf("want ErrUnknownFacade, got %v", err)
	}
}

func TestFacadesService_List_CoversConfiguredFacades(t *testing.T) {
	t.Parallel()

	// Store tracks nothing yet: overviews still list every configured facade.
	svc := NewFacadesService(&alertsRealtimeStub{}, facadesTestConfig())

	list := svc.List()
	if len(list) != 2 {
		t.Fatalf("want 2 facades, got %d", len(list))
	}
	if list[0].FacadeID != "refrigerada" || list[1].FacadeID != "no_refrigerada" {
		t.Errorf("unexpected order: %+v", list)
	}
	if list[0].FacadeType != models.FacadeRefrigerated {
		t.Errorf("facade type from config: got %s", list[0].FacadeType)
	}
	if list[0].CurrentReadings == nil || len(list[0].CurrentReadings) != 0 {
		t.Errorf("readings must be an empty list, got %#v", list[0].CurrentReadings)
	}
}

func TestFacadesService_StaleSnapshotWithError(t *testing.T) {
	t.Parallel()

	store := &alertsRealtimeStub{states: map[string]models.FacadeRealtime{
		"refrigerada": {
			FacadeID: "refrigerada",
			Snapshot: mixedSnapshot("refrigerada"),
			Error:    "measurement backend unreachable",
		},
	}}
	svc := NewFacadesService(store, facadesTestConfig())

	ov, err := svc.Overview("refrigerada")
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	// Error banner and stale data coexist.
	if ov.Error == "" {
		t.Error("expected error message")
	}
	if len(ov.CurrentReadings) == 0 {
		t.Error("stale readings must still be served")
	}
}
