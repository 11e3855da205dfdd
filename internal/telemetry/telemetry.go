package telemetry

import (
	"time"

	"sensordash/internal/alerting"
	"sensordash/internal/device"
)

// Reading is the raw simulated value pair for one device. Values are
// always rounded to one decimal; the rounded value feeds the next tick.
type Reading struct {
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
}

// DeviceReading is the assembled answer for one device: current values,
// power state and derived alert flags. A device without a reading yields
// the zero value (neutral state, never an error).
type DeviceReading struct {
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
	Powered      bool    `json:"powered"`
	alerting.State
}

// DeviceStatus is one device's row in a fleet snapshot.
type DeviceStatus struct {
	device.Device
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
	alerting.State
}

// Snapshot is the full fleet state published after each tick.
type Snapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Devices   []DeviceStatus `json:"devices"`
}

// TrendPoint is one entry of the live trend buffer for the selected
// device.
type TrendPoint struct {
	TimeLabel    string  `json:"timeLabel"`
	TemperatureC float64 `json:"temperatureC"`
	HumidityPct  float64 `json:"humidityPct"`
}
