package device_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sensordash/internal/device"
)

func testFleet() []device.Device {
	return []device.Device{
		{ID: "sensor-01", Name: "Sensor 1", Location: "Warehouse A", Powered: true},
		{ID: "sensor-02", Name: "Sensor 2", Location: "Warehouse B", Powered: true},
		{ID: "sensor-03", Name: "Sensor 3", Location: "Cold Storage", Powered: false},
	}
}

func TestListPreservesOrder(t *testing.T) {
	r := device.NewRegistry(testFleet())

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "sensor-01", list[0].ID)
	assert.Equal(t, "sensor-02", list[1].ID)
	assert.Equal(t, "sensor-03", list[2].ID)
}

func TestToggle(t *testing.T) {
	r := device.NewRegistry(testFleet())

	require.True(t, r.Toggle("sensor-01"))
	d, ok := r.Get("sensor-01")
	require.True(t, ok)
	assert.False(t, d.Powered)

	require.True(t, r.Toggle("sensor-01"))
	d, _ = r.Get("sensor-01")
	assert.True(t, d.Powered)
}

func TestToggleUnknownIsNoop(t *testing.T) {
	r := device.NewRegistry(testFleet())

	assert.False(t, r.Toggle("sensor-99"))

	// Nothing else changed
	for i, d := range r.List() {
		assert.Equal(t, testFleet()[i].Powered, d.Powered)
	}
}

func TestListReturnsCopy(t *testing.T) {
	r := device.NewRegistry(testFleet())

	list := r.List()
	list[0].Powered = false

	d, _ := r.Get("sensor-01")
	assert.True(t, d.Powered)
}
