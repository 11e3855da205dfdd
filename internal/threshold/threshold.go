package threshold

// Range is the inclusive safe band for one metric.
type Range struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Contains reports whether v lies inside the safe band. Values exactly at
// Min or Max are safe.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Set is the process-wide threshold configuration shared by all devices.
type Set struct {
	Temperature Range `json:"temperature" mapstructure:"temperature"`
	Humidity    Range `json:"humidity" mapstructure:"humidity"`
}

// DefaultSet returns the hardcoded thresholds used when no persisted set
// exists yet.
func DefaultSet() Set {
	return Set{
		Temperature: Range{Min: 18.0, Max: 30.0},
		Humidity:    Range{Min: 30.0, Max: 70.0},
	}
}
