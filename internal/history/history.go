package history

import (
	"math"
	"math/rand"
	"time"
)

// Range is a named historical window.
type Range string

const (
	Range24h Range = "24h"
	Range7d  Range = "7d"
	Range3m  Range = "3m"
)

const (
	temperatureFloor   = 15.0
	temperatureCeiling = 30.0
	humidityFloor      = 30.0
	humidityCeiling    = 75.0
)

// Point is one sample of a historical series.
type Point struct {
	TimestampMs  int64   `json:"timestampMs"`
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
}

// window returns the point count and step for a range. Unknown ranges
// behave like 24h.
func window(r Range) (count int, step time.Duration) {
	switch r {
	case Range7d:
		return 168, time.Hour
	case Range3m:
		return 90, 24 * time.Hour
	default:
		return 24, time.Hour
	}
}

// Generate produces a synthetic series for the requested range, ending
// one step before now and strictly increasing. Values are drawn uniformly
// and independently per point; regenerating the same range yields a
// different series each call.
func Generate(r Range) []Point {
	return generateAt(r, time.Now())
}

func generateAt(r Range, now time.Time) []Point {
	count, step := window(r)
	nowMs := now.UnixMilli()
	stepMs := step.Milliseconds()

	points := make([]Point, count)
	for i := 0; i < count; i++ {
		points[i] = Point{
			TimestampMs:  nowMs - int64(count-i)*stepMs,
			TemperatureC: roundTenth(uniform(temperatureFloor, temperatureCeiling)),
			HumidityPct:  roundTenth(uniform(humidityFloor, humidityCeiling)),
		}
	}

	return points
}

func uniform(low, high float64) float64 {
	return low + rand.Float64()*(high-low)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
