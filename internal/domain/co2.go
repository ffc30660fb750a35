package domain

// Trend is the direction of the CO2 concentration relative to an earlier reading.
type Trend string

// Trend values.
const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendStable  Trend = "stable"
	TrendUnknown Trend = "unknown"
)

// CompareTrend returns the direction from previous to current.
func CompareTrend(current, previous float64) Trend {
	switch {
	case current > previous:
		return TrendUp
	case current < previous:
		return TrendDown
	default:
		return TrendStable
	}
}

// FallbackCO2Level is the estimate reported when no source is reachable.
const FallbackCO2Level = 420.0

// CO2Reading is the latest known global atmospheric CO2 concentration.
//
// A reading is always well formed. IsFallback marks the hardcoded estimate.
// Success is false only when fetching failed abnormally, in which case Error
// carries the reason.
type CO2Reading struct {
	CO2Level   float64 `json:"co2_level" msgpack:"co2_level"`
	Date       string  `json:"date" msgpack:"date"`
	Trend      Trend   `json:"trend" msgpack:"trend"`
	Source     string  `json:"source" msgpack:"source"`
	IsFallback bool    `json:"is_fallback" msgpack:"is_fallback"`
	Success    bool    `json:"success" msgpack:"success"`
	Error      string  `json:"error,omitempty" msgpack:"error,omitempty"`
}
