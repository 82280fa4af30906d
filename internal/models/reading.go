package models

import "time"

// FacadeType distinguishes the two test installations.
type FacadeType string

const (
	FacadeRefrigerated    FacadeType = "refrigerada"
	FacadeNonRefrigerated FacadeType = "no_refrigerada"
)

// SemanticType is the typed channel a raw sensor key resolves to.
type SemanticType string

const (
	ChannelTemperaturePanel   SemanticType = "temperature_panel"
	ChannelIrradiance         SemanticType = "irradiance"
	ChannelWindSpeed          SemanticType = "wind_speed"
	ChannelHumidity           SemanticType = "humidity"
	ChannelAmbientTemperature SemanticType = "ambient_temperature"
	ChannelPressure           SemanticType = "pressure"
	ChannelFlow               SemanticType = "flow"
	ChannelRefrigerantTemp    SemanticType = "refrigerant_temperature"
	ChannelSystemStatus       SemanticType = "system_status"
	ChannelOther              SemanticType = "other"
)

// ClassifiedChannel carries the semantic type and display unit of a raw sensor key.
type ClassifiedChannel struct {
	ChannelKey string       `json:"channel_key"`
	Type       SemanticType `json:"type"`
	Unit       string       `json:"unit"`
}

// SensorReading is one measured value, immutable once received.
type SensorReading struct {
	ChannelKey string            `json:"channel_key"`
	Channel    ClassifiedChannel `json:"channel"`
	Value      float64           `json:"value"`
	Timestamp  time.Time         `json:"timestamp"`
	DeviceID   string            `json:"device_id"`
	FacadeType FacadeType        `json:"facade_type"`
}

// FacadeSnapshot is the latest set of readings for one facade.
// It is replaced wholesale on each successful poll; never merged partially.
type FacadeSnapshot struct {
	FacadeID   string                   `json:"facade_id"`
	FacadeType FacadeType               `json:"facade_type"`
	Readings   map[string]SensorReading `json:"readings"`
}

// LatestTimestamp returns the newest reading timestamp in the snapshot,
// or the zero time when the snapshot is empty.
func (s FacadeSnapshot) LatestTimestamp() time.Time {
	var latest time.Time
	for _, r := range s.Readings {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	return latest
}

// FacadeRealtime is the per-facade view exposed by the realtime store.
// A failed poll keeps the previous Snapshot; Error and stale data coexist.
type FacadeRealtime struct {
	FacadeID   string          `json:"facade_id"`
	Snapshot   *FacadeSnapshot `json:"snapshot,omitempty"`
	Loading    bool            `json:"loading"`
	Error      string          `json:"error,omitempty"`
	LastUpdate time.Time       `json:"last_update,omitempty"`
	Polling    bool            `json:"polling"`
}

// StoredReading is one row of the persisted reading history.
type StoredReading struct {
	FacadeID   string       `json:"facade_id"`
	ChannelKey string       `json:"channel_key"`
	Type       SemanticType `json:"type"`
	Value      float64      `json:"value"`
	Unit       string       `json:"unit"`
	Timestamp  time.Time    `json:"timestamp"`
}
