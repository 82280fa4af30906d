package classifier

import (
	"strings"

	"pvfacade/internal/models"
)

// rule maps a raw key pattern to a semantic channel. Rules are evaluated in
// order; the first match wins, so more specific patterns must come first
// (a key containing both "Temperatura" and "Entrada" is refrigerant, not ambient).
type rule struct {
	prefix   string
	contains string
	typ      models.SemanticType
	unit     string
}

var rules = []rule{
	{prefix: "T_M", typ: models.ChannelTemperaturePanel, unit: "°C"},
	{contains: "Temperatura_Entrada", typ: models.ChannelRefrigerantTemp, unit: "°C"},
	{contains: "Temperatura_Salida", typ: models.ChannelRefrigerantTemp, unit: "°C"},
	{contains: "Refrigerante", typ: models.ChannelRefrigerantTemp, unit: "°C"},
	{prefix: "Temperatura_Ambiente", typ: models.ChannelAmbientTemperature, unit: "°C"},
	{prefix: "Irradiancia", typ: models.ChannelIrradiance, unit: "W/m²"},
	{prefix: "Velocidad_Viento", typ: models.ChannelWindSpeed, unit: "m/s"},
	{prefix: "Humedad", typ: models.ChannelHumidity, unit: "%"},
	{contains: "Presion", typ: models.ChannelPressure, unit: "bar"},
	{contains: "Caudal", typ: models.ChannelFlow, unit: "l/min"},
	{contains: "Flujo", typ: models.ChannelFlow, unit: "l/min"},
	{contains: "Estado", typ: models.ChannelSystemStatus, unit: ""},
}

// Classify maps a raw sensor key to its semantic channel. It is pure and
// total: unmatched keys classify as "other" with an empty unit, never an error.
func Classify(channelKey string) models.ClassifiedChannel {
	for _, r := range rules {
		if r.prefix != "" && strings.HasPrefix(channelKey, r.prefix) {
			return models.ClassifiedChannel{ChannelKey: channelKey, Type: r.typ, Unit: r.unit}
		}
		if r.contains != "" && strings.Contains(channelKey, r.contains) {
			return models.ClassifiedChannel{ChannelKey: channelKey, Type: r.typ, Unit: r.unit}
		}
	}
	return models.ClassifiedChannel{ChannelKey: channelKey, Type: models.ChannelOther, Unit: ""}
}

// PanelIndex extracts the numeric suffix of a panel-temperature key
// ("T_M7" -> 7). Returns false for non-panel keys or keys without an index.
func PanelIndex(channelKey string) (int, bool) {
	if !strings.HasPrefix(channelKey, "T_M") {
		return 0, false
	}
	digits := channelKey[len("T_M"):]
	if digits == "" {
		return 0, false
	}
	n := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
