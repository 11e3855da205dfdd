package telemetry_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensordash/internal/alerting"
	"sensordash/internal/device"
	"sensordash/internal/telemetry"
	"sensordash/internal/threshold"
)

func newTestEngine(t *testing.T, devices []device.Device) (*telemetry.Engine, *device.Registry, *threshold.Store) {
	t.Helper()
	reg := device.NewRegistry(devices)
	store := threshold.NewMemoryStore()

	return telemetry.New(reg, store, 5*time.Second), reg, store
}

func fleet() []device.Device {
	return []device.Device{
		{ID: "sensor-01", Name: "One", Location: "A", Powered: true},
		{ID: "sensor-02", Name: "Two", Location: "B", Powered: false},
	}
}

func roundedToTenth(v float64) bool {
	return math.Abs(v*10-math.Round(v*10)) < 1e-9
}

func TestSeededReadings(t *testing.T) {
	e, _, _ := newTestEngine(t, fleet())

	for _, id := range []string{"sensor-01", "sensor-02"} {
		r := e.CurrentReading(id)
		assert.InDelta(t, 22.5, r.TemperatureC, 2.0, "temperature seeded around baseline")
		assert.InDelta(t, 50.0, r.HumidityPct, 5.0, "humidity seeded around baseline")
		assert.True(t, roundedToTenth(r.TemperatureC))
		assert.True(t, roundedToTenth(r.HumidityPct))
	}
}

func TestUnpoweredDeviceIsFrozen(t *testing.T) {
	e, _, _ := newTestEngine(t, fleet())

	before := e.CurrentReading("sensor-02")
	e.Tick()
	after := e.CurrentReading("sensor-02")
	e.Tick()
	again := e.CurrentReading("sensor-02")

	assert.Equal(t, before.TemperatureC, after.TemperatureC)
	assert.Equal(t, before.HumidityPct, after.HumidityPct)
	assert.Equal(t, after.TemperatureC, again.TemperatureC)
	assert.Equal(t, after.HumidityPct, again.HumidityPct)
}

func TestPoweredDeviceWalksBoundedSteps(t *testing.T) {
	e, _, store := newTestEngine(t, fleet())
	set := store.Current()

	prev := e.CurrentReading("sensor-01")
	for i := 0; i < 200; i++ {
		e.Tick()
		cur := e.CurrentReading("sensor-01")

		// Step bound: at most δ per metric (rounding stays within it as
		// both values are on the same 0.1 grid)
		assert.LessOrEqual(t, math.Abs(cur.TemperatureC-prev.TemperatureC), 0.5+1e-9)
		assert.LessOrEqual(t, math.Abs(cur.HumidityPct-prev.HumidityPct), 1.0+1e-9)

		// Clamp bound: within [min-margin, max+margin]
		assert.GreaterOrEqual(t, cur.TemperatureC, set.Temperature.Min-5.0)
		assert.LessOrEqual(t, cur.TemperatureC, set.Temperature.Max+5.0)
		assert.GreaterOrEqual(t, cur.HumidityPct, set.Humidity.Min-10.0)
		assert.LessOrEqual(t, cur.HumidityPct, set.Humidity.Max+10.0)

		assert.True(t, roundedToTenth(cur.TemperatureC))
		assert.True(t, roundedToTenth(cur.HumidityPct))

		prev = cur
	}
}

func TestUnknownDeviceNeutralReading(t *testing.T) {
	e, _, _ := newTestEngine(t, fleet())

	r := e.CurrentReading("sensor-99")
	assert.Zero(t, r.TemperatureC)
	assert.Zero(t, r.HumidityPct)
	assert.False(t, r.Powered)
	assert.False(t, r.TemperatureAlert)
	assert.False(t, r.HumidityAlert)
}

func TestToggleFreezesAndResumes(t *testing.T) {
	e, reg, _ := newTestEngine(t, fleet())

	reg.Toggle("sensor-01") // power off
	before := e.CurrentReading("sensor-01")
	e.Tick()
	assert.Equal(t, before.TemperatureC, e.CurrentReading("sensor-01").TemperatureC,
		"frozen, not reset to zero")

	reg.Toggle("sensor-01") // power back on
	moved := false
	for i := 0; i < 50 && !moved; i++ {
		e.Tick()
		cur := e.CurrentReading("sensor-01")
		moved = cur.TemperatureC != before.TemperatureC || cur.HumidityPct != before.HumidityPct
	}
	assert.True(t, moved, "powered device should move again")
}

func TestTrendBufferCapacityAndOrder(t *testing.T) {
	e, _, _ := newTestEngine(t, fleet())
	require.Equal(t, "sensor-01", e.Selected(), "first device selected by default")

	var appended []float64
	for i := 0; i < 13; i++ {
		e.Tick()
		appended = append(appended, e.CurrentReading("sensor-01").TemperatureC)
	}

	trend := e.Trend()
	require.Len(t, trend, 10, "buffer never exceeds its capacity")

	// The oldest entries were evicted; remaining order matches append order
	for i, p := range trend {
		assert.Equal(t, appended[len(appended)-10+i], p.TemperatureC)
	}
}

func TestSelectClearsTrend(t *testing.T) {
	e, _, _ := newTestEngine(t, fleet())

	e.Tick()
	e.Tick()
	require.NotEmpty(t, e.Trend())

	require.True(t, e.Select("sensor-02"))
	assert.Empty(t, e.Trend(), "selecting another device starts a fresh trend")
	assert.Equal(t, "sensor-02", e.Selected())

	assert.False(t, e.Select("sensor-99"), "unknown id is a no-op")
	assert.Equal(t, "sensor-02", e.Selected())
}

func TestSnapshotOrderAndAlerts(t *testing.T) {
	e, _, store := newTestEngine(t, fleet())

	snap := e.Snapshot()
	require.Len(t, snap.Devices, 2)
	assert.Equal(t, "sensor-01", snap.Devices[0].ID)
	assert.Equal(t, "sensor-02", snap.Devices[1].ID)

	// Narrow the thresholds so every seeded reading is out of range
	require.NoError(t, store.Commit(threshold.Set{
		Temperature: threshold.Range{Min: -40, Max: -30},
		Humidity:    threshold.Range{Min: 0, Max: 1},
	}))
	snap = e.Snapshot()
	for _, d := range snap.Devices {
		assert.True(t, d.TemperatureAlert)
		assert.True(t, d.HumidityAlert)
	}
}

func TestOnTickPublishesSnapshotAndEvents(t *testing.T) {
	e, _, store := newTestEngine(t, fleet())

	// Force alerts for the powered device only
	require.NoError(t, store.Commit(threshold.Set{
		Temperature: threshold.Range{Min: 100, Max: 200},
		Humidity:    threshold.Range{Min: 100, Max: 200},
	}))

	var gotSnap telemetry.Snapshot
	var gotEvents []alerting.Event
	e.OnTick(func(s telemetry.Snapshot, events []alerting.Event) {
		gotSnap = s
		gotEvents = events
	})

	e.Tick()

	require.Len(t, gotSnap.Devices, 2)
	require.NotEmpty(t, gotEvents)
	for _, ev := range gotEvents {
		assert.Equal(t, "sensor-01", ev.DeviceID, "unpowered devices do not raise events")
		assert.NotEmpty(t, ev.ID)
	}
}

func TestStartStop(t *testing.T) {
	e := telemetry.New(device.NewRegistry(fleet()), threshold.NewMemoryStore(), 10*time.Millisecond)

	ticked := make(chan struct{}, 1)
	e.OnTick(func(telemetry.Snapshot, []alerting.Event) {
		select {
		case ticked <- struct{}{}:
		default:
		}
	})

	e.Start(context.Background())
	select {
	case <-ticked:
	case <-time.After(2 * time.Second):
		t.Fatal("tick loop did not fire")
	}
	e.Stop()
}
