package service

import "time"

// HistoryFilter selects persisted readings by facade, time range, and type.
type HistoryFilter struct {
	FacadeID string
	From     time.Time // inclusive; zero means no lower bound
	To       time.Time // inclusive; zero means no upper bound
	Type     string    // semantic type filter; "" means all channels
}

// AlertFilter selects persisted alert events.
type AlertFilter struct {
	Limit int // 0 means no cap
	From  time.Time
	To    time.Time
}

// AnomalyQuery is relayed to the backend's anomaly endpoint; range bounds
// are validated server-side.
type AnomalyQuery struct {
	Limit      int
	FacadeType string // "refrigerada" | "no_refrigerada" | ""
	Hours      int
}
