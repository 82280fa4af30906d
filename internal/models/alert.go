package models

import "time"

// AlertEvent is a persisted threshold alert, appended by the recorder.
type AlertEvent struct {
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	FacadeID   string    `json:"facade_id"`
	ChannelKey string    `json:"channel_key"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Message    string    `json:"message"`
}

// CurrentAlert is a live threshold flag computed from the latest snapshot.
type CurrentAlert struct {
	FacadeID   string    `json:"facade_id"`
	ChannelKey string    `json:"channel_key"`
	Value      float64   `json:"value"`
	Threshold  float64   `json:"threshold"`
	Timestamp  time.Time `json:"timestamp"`
}

// AnomalyReport mirrors the backend's statistical anomaly response.
// The analysis itself runs server-side; this service only relays it.
type AnomalyReport struct {
	Count     int   `json:"count"`
	Anomalies []any `json:"anomalies"`
}
