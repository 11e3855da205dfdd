package telemetry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"sensordash/internal/alerting"
	"sensordash/internal/device"
	"sensordash/internal/logger"
	"sensordash/internal/threshold"
)

const (
	temperatureStep   = 0.5
	temperatureMargin = 5.0
	humidityStep      = 1.0
	humidityMargin    = 10.0

	temperatureBaseline   = 22.5
	humidityBaseline      = 50.0
	temperatureSeedJitter = 2.0
	humiditySeedJitter    = 5.0

	trendCapacity   = 10
	trendTimeLayout = "15:04:05"
)

// Engine owns the simulated readings and the live trend buffer. All
// mutation goes through Tick, Select and the registry/threshold setters;
// readers only ever see a complete snapshot.
type Engine struct {
	mu         sync.RWMutex
	registry   *device.Registry
	thresholds *threshold.Store
	readings   map[string]Reading
	trend      []TrendPoint
	selected   string
	rng        *rand.Rand
	interval   time.Duration
	notify     func(Snapshot, []alerting.Event)
	cancel     context.CancelFunc
	done       chan struct{}
}

// New seeds one reading per registered device around the baselines,
// independent of the configured thresholds. The first device of the fleet
// starts selected for the trend buffer.
func New(registry *device.Registry, thresholds *threshold.Store, interval time.Duration) *Engine {
	e := &Engine{
		registry:   registry,
		thresholds: thresholds,
		readings:   make(map[string]Reading),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		interval:   interval,
	}

	devices := registry.List()
	for _, d := range devices {
		e.readings[d.ID] = e.seedReading()
	}
	if len(devices) > 0 {
		e.selected = devices[0].ID
	}

	return e
}

func (e *Engine) seedReading() Reading {
	return Reading{
		TemperatureC: roundTenth(temperatureBaseline + e.uniform(temperatureSeedJitter)),
		HumidityPct:  roundTenth(humidityBaseline + e.uniform(humiditySeedJitter)),
	}
}

// OnTick registers the subscriber called after every tick with the fleet
// snapshot and any alert events. Must be set before Start.
func (e *Engine) OnTick(fn func(Snapshot, []alerting.Event)) {
	e.notify = fn
}

// Start launches the tick loop. Stop (or ctx cancellation) tears it down
// and releases the timer.
func (e *Engine) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.done = make(chan struct{})

	go e.loop(ctx)

	logger.Info().
		Dur("interval", e.interval).
		Int("devices", len(e.registry.List())).
		Msg("Simulation started")
}

func (e *Engine) loop(ctx context.Context) {
	defer close(e.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

// Stop cancels the tick loop and waits for it to exit.
func (e *Engine) Stop() {
	if e.cancel == nil {
		return
	}
	e.cancel()
	<-e.done
	logger.Info().Msg("Simulation stopped")
}

// Tick advances every powered device by one bounded random-walk step and
// replaces the readings map as one unit. Unpowered devices keep their
// last reading, frozen. The trend buffer receives the selected device's
// new reading.
func (e *Engine) Tick() {
	set := e.thresholds.Current()
	now := time.Now()

	e.mu.Lock()

	devices := e.registry.List()
	next := make(map[string]Reading, len(devices))
	for _, d := range devices {
		prev, ok := e.readings[d.ID]
		if !ok {
			prev = e.seedReading()
		}
		if !d.Powered {
			next[d.ID] = prev
			continue
		}
		next[d.ID] = Reading{
			TemperatureC: e.walk(prev.TemperatureC, temperatureStep, temperatureMargin, set.Temperature),
			HumidityPct:  e.walk(prev.HumidityPct, humidityStep, humidityMargin, set.Humidity),
		}
	}
	e.readings = next

	if r, ok := next[e.selected]; ok {
		e.trend = append(e.trend, TrendPoint{
			TimeLabel:    now.Format(trendTimeLayout),
			TemperatureC: r.TemperatureC,
			HumidityPct:  r.HumidityPct,
		})
		if len(e.trend) > trendCapacity {
			e.trend = e.trend[1:]
		}
	}

	snapshot := e.snapshotLocked(devices, set, now)
	e.mu.Unlock()

	e.publish(snapshot, set, now)
}

// walk takes one random step of at most ±step and clamps the result to
// the safety band around the thresholds.
func (e *Engine) walk(prev, step, margin float64, r threshold.Range) float64 {
	return roundTenth(clamp(prev+e.uniform(step), r.Min-margin, r.Max+margin))
}

func (e *Engine) uniform(magnitude float64) float64 {
	return (e.rng.Float64()*2 - 1) * magnitude
}

// CurrentReading assembles values, power state and alert flags for one
// device. Unknown ids get the neutral zero state.
func (e *Engine) CurrentReading(id string) DeviceReading {
	e.mu.RLock()
	r, ok := e.readings[id]
	e.mu.RUnlock()

	if !ok {
		return DeviceReading{}
	}

	d, _ := e.registry.Get(id)

	return DeviceReading{
		TemperatureC: r.TemperatureC,
		HumidityPct:  r.HumidityPct,
		Powered:      d.Powered,
		State:        alerting.Evaluate(r.TemperatureC, r.HumidityPct, e.thresholds.Current()),
	}
}

// Snapshot returns the current fleet state in registration order.
func (e *Engine) Snapshot() Snapshot {
	set := e.thresholds.Current()

	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.snapshotLocked(e.registry.List(), set, time.Now())
}

func (e *Engine) snapshotLocked(devices []device.Device, set threshold.Set, now time.Time) Snapshot {
	statuses := make([]DeviceStatus, 0, len(devices))
	for _, d := range devices {
		r := e.readings[d.ID]
		statuses = append(statuses, DeviceStatus{
			Device:       d,
			TemperatureC: r.TemperatureC,
			HumidityPct:  r.HumidityPct,
			State:        alerting.Evaluate(r.TemperatureC, r.HumidityPct, set),
		})
	}

	return Snapshot{Timestamp: now, Devices: statuses}
}

func (e *Engine) publish(snapshot Snapshot, set threshold.Set, now time.Time) {
	if e.notify == nil {
		return
	}

	var events []alerting.Event
	for _, d := range snapshot.Devices {
		if !d.Powered {
			continue
		}
		events = append(events, alerting.Events(d.ID, d.TemperatureC, d.HumidityPct, set, now)...)
	}

	e.notify(snapshot, events)
}

// Select picks the device feeding the trend buffer and clears the buffer.
// Unknown ids are a no-op.
func (e *Engine) Select(id string) bool {
	if _, ok := e.registry.Get(id); !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selected != id {
		e.selected = id
		e.trend = nil
	}

	return true
}

// Selected returns the id of the device feeding the trend buffer.
func (e *Engine) Selected() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.selected
}

// Trend returns a copy of the live trend buffer, oldest first.
func (e *Engine) Trend() []TrendPoint {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]TrendPoint, len(e.trend))
	copy(out, e.trend)

	return out
}

func clamp(value, minValue, maxValue float64) float64 {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}

	return value
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
