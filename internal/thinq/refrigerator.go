package thinq

import (
	"context"
	"fmt"
	"sync"
)

// Control command keys for refrigerators.
const (
	cmdFridgeTemp  = "fridge_temp"
	cmdFreezerTemp = "freezer_temp"
)

// RefrigeratorProfile is the static capability profile of a refrigerator.
type RefrigeratorProfile struct {
	// FridgeTempRange and FreezerTempRange are [min, max] target bounds.
	FridgeTempRange  [2]float64 `json:"fridge_temp_range"`
	FreezerTempRange [2]float64 `json:"freezer_temp_range"`

	TempUnit string  `json:"temp_unit"`
	TempStep float64 `json:"temp_step"`
}

// RefrigeratorStatus is the mutable state snapshot of a refrigerator.
//
// Temperature readings are kept as raw strings: some firmware revisions
// report placeholders ("-", "IGNORE") instead of numbers, and interpreting
// them is the caller's concern.
type RefrigeratorStatus struct {
	FridgeTemp  string `json:"fridge_temp"`
	FreezerTemp string `json:"freezer_temp"`

	// SetValuesAllowed is false while the appliance locks out remote
	// changes (door open, express-freeze transitions, demo mode).
	SetValuesAllowed bool `json:"set_values_allowed"`
}

// Refrigerator models one refrigerator appliance over a Session.
// Concurrency and snapshot semantics match AirConditioner.
type Refrigerator struct {
	session Session
	info    DeviceInfo
	profile RefrigeratorProfile

	mu        sync.RWMutex
	status    RefrigeratorStatus
	available bool
}

// NewRefrigerator fetches the device profile and returns the device model.
func NewRefrigerator(ctx context.Context, session Session, info DeviceInfo) (*Refrigerator, error) {
	if info.Type != DeviceRefrigerator {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedDevice, info.ID, info.Type)
	}

	var profile RefrigeratorProfile
	if err := session.DeviceProfile(ctx, info.ID, &profile); err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", info.ID, err)
	}

	return &Refrigerator{
		session: session,
		info:    info,
		profile: profile,
	}, nil
}

// Info returns the discovery record.
func (r *Refrigerator) Info() DeviceInfo { return r.info }

// TemperatureUnit returns "C" or "F".
func (r *Refrigerator) TemperatureUnit() string {
	if r.profile.TempUnit == "F" {
		return "F"
	}
	return "C"
}

// TargetTemperatureStep returns the setpoint granularity.
func (r *Refrigerator) TargetTemperatureStep() float64 {
	if r.profile.TempStep > 0 {
		return r.profile.TempStep
	}
	return 1.0
}

// FridgeTargetTempRange returns the [min, max] fridge target bounds.
func (r *Refrigerator) FridgeTargetTempRange() [2]float64 { return r.profile.FridgeTempRange }

// FreezerTargetTempRange returns the [min, max] freezer target bounds.
func (r *Refrigerator) FreezerTargetTempRange() [2]float64 { return r.profile.FreezerTempRange }

// Refresh replaces the cached snapshot with live device state.
func (r *Refrigerator) Refresh(ctx context.Context) error {
	var status RefrigeratorStatus
	if err := r.session.DeviceStatus(ctx, r.info.ID, &status); err != nil {
		r.mu.Lock()
		r.available = false
		r.mu.Unlock()
		return err
	}

	r.mu.Lock()
	r.status = status
	r.available = true
	r.mu.Unlock()
	return nil
}

// Status returns the cached snapshot.
func (r *Refrigerator) Status() RefrigeratorStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Available reports whether the last refresh succeeded.
func (r *Refrigerator) Available() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.available
}

// FridgeTemp returns the raw fridge compartment temperature reading.
func (r *Refrigerator) FridgeTemp() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.FridgeTemp
}

// FreezerTemp returns the raw freezer compartment temperature reading.
func (r *Refrigerator) FreezerTemp() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.FreezerTemp
}

// SetValuesAllowed reports whether the appliance currently accepts remote
// setpoint changes.
func (r *Refrigerator) SetValuesAllowed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status.SetValuesAllowed
}

// SetFridgeTargetTemp sets the fridge compartment target temperature.
func (r *Refrigerator) SetFridgeTargetTemp(ctx context.Context, value float64) error {
	if err := r.session.Control(ctx, r.info.ID, cmdFridgeTemp, value); err != nil {
		return err
	}
	r.mu.Lock()
	r.status.FridgeTemp = fmt.Sprintf("%g", value)
	r.mu.Unlock()
	return nil
}

// SetFreezerTargetTemp sets the freezer compartment target temperature.
func (r *Refrigerator) SetFreezerTargetTemp(ctx context.Context, value float64) error {
	if err := r.session.Control(ctx, r.info.ID, cmdFreezerTemp, value); err != nil {
		return err
	}
	r.mu.Lock()
	r.status.FreezerTemp = fmt.Sprintf("%g", value)
	r.mu.Unlock()
	return nil
}
