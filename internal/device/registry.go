package device

import "sync"

// Device is one monitored unit of the fleet. Identity fields are fixed at
// startup; only Powered changes afterwards.
type Device struct {
	ID       string `json:"id" mapstructure:"id"`
	Name     string `json:"name" mapstructure:"name"`
	Location string `json:"location" mapstructure:"location"`
	Powered  bool   `json:"powered" mapstructure:"powered"`
}

// Registry holds the fixed, ordered device fleet.
type Registry struct {
	mu      sync.RWMutex
	devices []Device
	index   map[string]int
}

func NewRegistry(devices []Device) *Registry {
	r := &Registry{
		devices: make([]Device, len(devices)),
		index:   make(map[string]int, len(devices)),
	}
	copy(r.devices, devices)
	for i, d := range r.devices {
		r.index[d.ID] = i
	}

	return r
}

// List returns the fleet in registration order.
func (r *Registry) List() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Device, len(r.devices))
	copy(out, r.devices)

	return out
}

func (r *Registry) Get(id string) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Device{}, false
	}

	return r.devices[i], true
}

// Toggle flips the powered flag of one device. An unknown id is a no-op;
// the return value reports whether the device exists.
func (r *Registry) Toggle(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.devices[i].Powered = !r.devices[i].Powered

	return true
}
