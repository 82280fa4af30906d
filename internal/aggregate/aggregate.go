package aggregate

import (
	"sort"

	"pvfacade/internal/classifier"
	"pvfacade/internal/models"
)

// ChannelPredicate selects readings by their classified channel.
type ChannelPredicate func(models.ClassifiedChannel) bool

// IsType builds a predicate matching one semantic type.
func IsType(t models.SemanticType) ChannelPredicate {
	return func(ch models.ClassifiedChannel) bool { return ch.Type == t }
}

// Average computes the mean of all readings whose channel matches pred.
// The second return is false when no reading matches; callers render a
// fallback ("--") instead of 0 or NaN. No rounding happens here: display
// layers own fixed-decimal formatting.
func Average(snap models.FacadeSnapshot, pred ChannelPredicate) (float64, bool) {
	var sum float64
	var n int
	for _, r := range snap.Readings {
		if pred(r.Channel) {
			sum += r.Value
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// MinMax returns the extremes over matching readings; ok=false when none match.
func MinMax(snap models.FacadeSnapshot, pred ChannelPredicate) (min, max float64, ok bool) {
	for _, r := range snap.Readings {
		if !pred(r.Channel) {
			continue
		}
		if !ok {
			min, max, ok = r.Value, r.Value, true
			continue
		}
		if r.Value < min {
			min = r.Value
		}
		if r.Value > max {
			max = r.Value
		}
	}
	return min, max, ok
}

// ModuleStats aggregates one fixed-size group of adjacent panel sensors.
type ModuleStats struct {
	Module  int      `json:"module"`
	Sensors []string `json:"sensors"`
	Mean    float64  `json:"mean"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
}

// GroupByModule partitions the panel-temperature channels into consecutive
// groups of groupSize sensors, ordered by panel index, and computes per-group
// mean/min/max. Module boundaries are static configuration: with 15 panel
// sensors and groupSize 3 this yields 5 modules. A trailing partial group is
// kept. Returns nil when the snapshot has no indexed panel channels.
func GroupByModule(snap models.FacadeSnapshot, groupSize int) []ModuleStats {
	if groupSize <= 0 {
		return nil
	}

	type indexed struct {
		key   string
		index int
		value float64
	}
	var panels []indexed
	for key, r := range snap.Readings {
		if r.Channel.Type != models.ChannelTemperaturePanel {
			continue
		}
		idx, ok := classifier.PanelIndex(key)
		if !ok {
			continue
		}
		panels = append(panels, indexed{key: key, index: idx, value: r.Value})
	}
	if len(panels) == 0 {
		return nil
	}
	sort.Slice(panels, func(i, j int) bool { return panels[i].index < panels[j].index })

	var modules []ModuleStats
	for start := 0; start < len(panels); start += groupSize {
		end := start + groupSize
		if end > len(panels) {
			end = len(panels)
		}
		group := panels[start:end]

		m := ModuleStats{
			Module: len(modules) + 1,
			Min:    group[0].value,
			Max:    group[0].value,
		}
		var sum float64
		for _, p := range group {
			m.Sensors = append(m.Sensors, p.key)
			sum += p.value
			if p.value < m.Min {
				m.Min = p.value
			}
			if p.value > m.Max {
				m.Max = p.value
			}
		}
		m.Mean = sum / float64(len(group))
		modules = append(modules, m)
	}
	return modules
}

// FlagAlert reports whether a reading sits below the given threshold.
// This is the deterministic dashboard rule; statistical anomaly detection
// lives in the backend.
func FlagAlert(r models.SensorReading, lowThreshold float64) bool {
	return r.Value < lowThreshold
}
