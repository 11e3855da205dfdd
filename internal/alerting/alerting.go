package alerting

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"sensordash/internal/threshold"
)

// State holds the derived alert flags for one reading. It is recomputed
// on every read and never cached.
type State struct {
	TemperatureAlert bool `json:"temperatureAlert"`
	HumidityAlert    bool `json:"humidityAlert"`
}

// Evaluate compares a reading against the thresholds. A value exactly at
// min or max is safe; the alert fires strictly outside [min, max].
func Evaluate(temperatureC, humidityPct float64, set threshold.Set) State {
	return State{
		TemperatureAlert: !set.Temperature.Contains(temperatureC),
		HumidityAlert:    !set.Humidity.Contains(humidityPct),
	}
}

// Event is one out-of-range observation, published to stream subscribers.
type Event struct {
	ID          string    `json:"id"`
	DeviceID    string    `json:"device_id"`
	Metric      string    `json:"metric"`
	Value       float64   `json:"value"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// Events returns the alert events for one device reading, empty when the
// reading is in range.
func Events(deviceID string, temperatureC, humidityPct float64, set threshold.Set, now time.Time) []Event {
	state := Evaluate(temperatureC, humidityPct, set)

	var events []Event
	if state.TemperatureAlert {
		events = append(events, Event{
			ID:        uuid.NewString(),
			DeviceID:  deviceID,
			Metric:    "temperature",
			Value:     temperatureC,
			Min:       set.Temperature.Min,
			Max:       set.Temperature.Max,
			Timestamp: now,
			Description: fmt.Sprintf("Temperature %.1f°C outside safe range %.1f–%.1f°C",
				temperatureC, set.Temperature.Min, set.Temperature.Max),
		})
	}
	if state.HumidityAlert {
		events = append(events, Event{
			ID:        uuid.NewString(),
			DeviceID:  deviceID,
			Metric:    "humidity",
			Value:     humidityPct,
			Min:       set.Humidity.Min,
			Max:       set.Humidity.Max,
			Timestamp: now,
			Description: fmt.Sprintf("Humidity %.1f%% outside safe range %.1f–%.1f%%",
				humidityPct, set.Humidity.Min, set.Humidity.Max),
		})
	}

	return events
}
