package service

import (
	"errors"
	"sort"
	"time"

	"pvfacade/internal/aggregate"
	"pvfacade/internal/models"
)

// ErrUnknownFacade is returned for ids outside the configured set.
var ErrUnknownFacade = errors.New("unknown facade id")

const defaultModuleGroupSize = 3

// ReadingView is one current reading as the dashboard lists it.
type ReadingView struct {
	SensorName string              `json:"sensor_name"`
	Type       models.SemanticType `json:"type"`
	Value      float64             `json:"value"`
	Unit       string              `json:"unit"`
}

// FacadeSummary carries the derived aggregates for one facade. Averages are
// pointers: nil means "no data", which views render as "--" rather than 0.
type FacadeSummary struct {
	PanelTempAvg *float64                `json:"panel_temp_avg"`
	PanelTempMin *float64                `json:"panel_temp_min"`
	PanelTempMax *float64                `json:"panel_temp_max"`
	Irradiance   *float64                `json:"irradiance"`
	WindSpeed    *float64                `json:"wind_speed"`
	Humidity     *float64                `json:"humidity"`
	AmbientTemp  *float64                `json:"ambient_temp"`
	Modules      []aggregate.ModuleStats `json:"modules,omitempty"`
}

// FacadeOverview is the per-facade dashboard view: polling state, the current
// readings, and the aggregate summary.
type FacadeOverview struct {
	FacadeID        string            `json:"facade_id"`
	FacadeType      models.FacadeType `json:"facade_type"`
	Polling         bool              `json:"polling"`
	Loading         bool              `json:"loading"`
	Error           string            `json:"error,omitempty"`
	LastUpdate      time.Time         `json:"last_update,omitempty"`
	CurrentReadings []ReadingView     `json:"current_readings"`
	Summary         FacadeSummary     `json:"summary"`
}

type FacadesService struct {
	store     Realtime
	facades   []FacadeConfig
	groupSize int
}

func NewFacadesService(store Realtime, cfg Config) *FacadesService {
	groupSize := cfg.ModuleGroupSize
	if groupSize <= 0 {
		groupSize = defaultModuleGroupSize
	}
	return &FacadesService{store: store, facades: cfg.Facades, groupSize: groupSize}
}

// List returns an overview for every configured facade, in configured order.
func (s *FacadesService) List() []FacadeOverview {
	out := make([]FacadeOverview, 0, len(s.facades))
	for _, fc := range s.facades {
		out = append(out, s.overview(fc))
	}
	return out
}

// Overview returns the dashboard view of one configured facade.
func (s *FacadesService) Overview(facadeID string) (FacadeOverview, error) {
	for _, fc := range s.facades {
		if fc.ID == facadeID {
			return s.overview(fc), nil
		}
	}
	return FacadeOverview{}, ErrUnknownFacade
}

func (s *FacadesService) overview(fc FacadeConfig) FacadeOverview {
	ov := FacadeOverview{
		FacadeID:        fc.ID,
		FacadeType:      fc.Type,
		CurrentReadings: []ReadingView{},
	}

	st, ok := s.store.State(fc.ID)
	if !ok {
		return ov
	}
	ov.Polling = st.Polling
	ov.Loading = st.Loading
	ov.Error = st.Error
	ov.LastUpdate = st.LastUpdate

	if st.Snapshot == nil {
		return ov
	}
	snap := *st.Snapshot
	if snap.FacadeType != "" {
		ov.FacadeType = snap.FacadeType
	}

	for _, r := range snap.Readings {
		ov.CurrentReadings = append(ov.CurrentReadings, ReadingView{
			SensorName: r.ChannelKey,
			Type:       r.Channel.Type,
			Value:      r.Value,
			Unit:       r.Channel.Unit,
		})
	}
	sort.Slice(ov.CurrentReadings, func(i, j int) bool {
		return ov.CurrentReadings[i].SensorName < ov.CurrentReadings[j].SensorName
	})

	ov.Summary = summarize(snap, s.groupSize)
	return ov
}

// summarize computes the derived aggregates over one snapshot.
func summarize(snap models.FacadeSnapshot, groupSize int) FacadeSummary {
	var sum FacadeSummary

	if avg, ok := aggregate.Average(snap, aggregate.IsType(models.ChannelTemperaturePanel)); ok {
		sum.PanelTempAvg = &avg
	}
	if min, max, ok := aggregate.MinMax(snap, aggregate.IsType(models.ChannelTemperaturePanel)); ok {
		sum.PanelTempMin = &min
		sum.PanelTempMax = &max
	}
	if avg, ok := aggregate.Average(snap, aggregate.IsType(models.ChannelIrradiance)); ok {
		sum.Irradiance = &avg
	}
	if avg, ok := aggregate.Average(snap, aggregate.IsType(models.ChannelWindSpeed)); ok {
		sum.WindSpeed = &avg
	}
	if avg, ok := aggregate.Average(snap, aggregate.IsType(models.ChannelHumidity)); ok {
		sum.Humidity = &avg
	}
	if avg, ok := aggregate.Average(snap, aggregate.IsType(models.ChannelAmbientTemperature)); ok {
		sum.AmbientTemp = &avg
	}
	sum.Modules = aggregate.GroupByModule(snap, groupSize)
	return sum
}
