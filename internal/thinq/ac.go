package thinq

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// Vendor operating-mode codes for air conditioners. A device reports the
// subset it supports in its profile; the full vocabulary is fixed by the
// vendor firmware.
const (
	OpModeCool         = "COOL"
	OpModeDry          = "DRY"
	OpModeFan          = "FAN"
	OpModeHeat         = "HEAT"
	OpModeACO          = "ACO" // automatic changeover heat/cool
	OpModeAI           = "AI"
	OpModeAirClean     = "AIRCLEAN"
	OpModeAroma        = "AROMA"
	OpModeEnergySaving = "ENERGY_SAVING"
	OpModeEnergySaver  = "ENERGY_SAVER"
)

// Control command keys for air conditioners.
const (
	cmdPower           = "power"
	cmdOpMode          = "op_mode"
	cmdTargetTemp      = "target_temp"
	cmdFanSpeed        = "fan_speed"
	cmdVerticalSwing   = "vertical_swing"
	cmdHorizontalSwing = "horizontal_swing"
	cmdSleepTime       = "sleep_time"
)

// Target temperature band for air-to-water heat pumps, replacing the
// platform defaults when the device does not report explicit bounds.
// Values are in Celsius.
const (
	AWHPMinTemp = 5.0
	AWHPMaxTemp = 80.0
)

// ACProfile is the static capability profile of an air conditioner.
type ACProfile struct {
	OpModes              []string `json:"op_modes"`
	FanSpeeds            []string `json:"fan_speeds"`
	VerticalSwingModes   []string `json:"vertical_swing_modes"`
	HorizontalSwingModes []string `json:"horizontal_swing_modes"`

	TempUnit string  `json:"temp_unit"` // "C" or "F"
	TempStep float64 `json:"temp_step"` // 1.0 or 0.5

	// MinTemp/MaxTemp are explicit device-reported target bounds, absent on
	// models that rely on the platform defaults.
	MinTemp *float64 `json:"min_temp,omitempty"`
	MaxTemp *float64 `json:"max_temp,omitempty"`

	// AirToWater marks AWHP models, which use a wider temperature band.
	AirToWater bool `json:"air_to_water"`
}

// ACStatus is the mutable state snapshot of an air conditioner.
type ACStatus struct {
	IsOn bool `json:"is_on"`

	// OpMode is the vendor operating-mode code, empty when the device
	// reports none.
	OpMode string `json:"op_mode"`

	CurrentTemp *float64 `json:"current_temp,omitempty"`
	TargetTemp  *float64 `json:"target_temp,omitempty"`

	FanSpeed        string `json:"fan_speed,omitempty"`
	VerticalSwing   string `json:"vertical_swing,omitempty"`
	HorizontalSwing string `json:"horizontal_swing,omitempty"`
}

// AirConditioner models one AC appliance over a Session.
//
// Reads return the cached snapshot; Refresh replaces it with live state.
// Command methods send the control, then update the snapshot optimistically
// so subsequent reads reflect the commanded value.
type AirConditioner struct {
	session Session
	info    DeviceInfo
	profile ACProfile

	mu        sync.RWMutex
	status    ACStatus
	available bool
}

// NewAirConditioner fetches the device profile and returns the device model.
// The status snapshot is empty until the first Refresh.
func NewAirConditioner(ctx context.Context, session Session, info DeviceInfo) (*AirConditioner, error) {
	if info.Type != DeviceAC {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedDevice, info.ID, info.Type)
	}

	var profile ACProfile
	if err := session.DeviceProfile(ctx, info.ID, &profile); err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", info.ID, err)
	}

	return &AirConditioner{
		session: session,
		info:    info,
		profile: profile,
	}, nil
}

// Info returns the discovery record.
func (a *AirConditioner) Info() DeviceInfo { return a.info }

// OpModes returns the vendor operating-mode codes the device supports.
func (a *AirConditioner) OpModes() []string { return a.profile.OpModes }

// FanSpeeds returns the supported fan speed codes.
func (a *AirConditioner) FanSpeeds() []string { return a.profile.FanSpeeds }

// VerticalSwingModes returns the supported vertical swing codes, nil if the
// device has no vertical vane control.
func (a *AirConditioner) VerticalSwingModes() []string { return a.profile.VerticalSwingModes }

// HorizontalSwingModes returns the supported horizontal swing codes, nil if
// the device has no horizontal vane control.
func (a *AirConditioner) HorizontalSwingModes() []string { return a.profile.HorizontalSwingModes }

// TemperatureUnit returns "C" or "F".
func (a *AirConditioner) TemperatureUnit() string {
	if a.profile.TempUnit == "F" {
		return "F"
	}
	return "C"
}

// TargetTemperatureStep returns the device's setpoint granularity.
func (a *AirConditioner) TargetTemperatureStep() float64 {
	if a.profile.TempStep > 0 {
		return a.profile.TempStep
	}
	return 1.0
}

// TargetTemperatureMin returns the device-reported lower bound, nil if none.
func (a *AirConditioner) TargetTemperatureMin() *float64 { return a.profile.MinTemp }

// TargetTemperatureMax returns the device-reported upper bound, nil if none.
func (a *AirConditioner) TargetTemperatureMax() *float64 { return a.profile.MaxTemp }

// IsAirToWater reports whether this is an air-to-water heat pump.
func (a *AirConditioner) IsAirToWater() bool { return a.profile.AirToWater }

// ConvertTemp converts a Celsius reference value into the device's active
// unit, rounded to the device's setpoint step.
func (a *AirConditioner) ConvertTemp(celsius float64) float64 {
	v := celsius
	if a.TemperatureUnit() == "F" {
		v = celsius*9.0/5.0 + 32.0
	}
	step := a.TargetTemperatureStep()
	return math.Round(v/step) * step
}

// Refresh replaces the cached snapshot with live device state.
func (a *AirConditioner) Refresh(ctx context.Context) error {
	var status ACStatus
	if err := a.session.DeviceStatus(ctx, a.info.ID, &status); err != nil {
		a.mu.Lock()
		a.available = false
		a.mu.Unlock()
		return err
	}

	a.mu.Lock()
	a.status = status
	a.available = true
	a.mu.Unlock()
	return nil
}

// Status returns the cached snapshot.
func (a *AirConditioner) Status() ACStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Available reports whether the last refresh succeeded.
func (a *AirConditioner) Available() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.available
}

// Power switches the appliance on or off.
func (a *AirConditioner) Power(ctx context.Context, on bool) error {
	if err := a.session.Control(ctx, a.info.ID, cmdPower, on); err != nil {
		return err
	}
	a.mu.Lock()
	a.status.IsOn = on
	a.mu.Unlock()
	return nil
}

// SetOpMode sets the vendor operating mode.
func (a *AirConditioner) SetOpMode(ctx context.Context, code string) error {
	if err := a.session.Control(ctx, a.info.ID, cmdOpMode, code); err != nil {
		return err
	}
	a.mu.Lock()
	a.status.OpMode = code
	a.mu.Unlock()
	return nil
}

// SetTargetTemp sets the target temperature in the device's active unit.
func (a *AirConditioner) SetTargetTemp(ctx context.Context, value float64) error {
	if err := a.session.Control(ctx, a.info.ID, cmdTargetTemp, value); err != nil {
		return err
	}
	a.mu.Lock()
	a.status.TargetTemp = &value
	a.mu.Unlock()
	return nil
}

// SetFanSpeed sets the fan speed code.
func (a *AirConditioner) SetFanSpeed(ctx context.Context, code string) error {
	if err := a.session.Control(ctx, a.info.ID, cmdFanSpeed, code); err != nil {
		return err
	}
	a.mu.Lock()
	a.status.FanSpeed = code
	a.mu.Unlock()
	return nil
}

// SetVerticalSwingMode sets the vertical vane mode.
func (a *AirConditioner) SetVerticalSwingMode(ctx context.Context, code string) error {
	if err := a.session.Control(ctx, a.info.ID, cmdVerticalSwing, code); err != nil {
		return err
	}
	a.mu.Lock()
	a.status.VerticalSwing = code
	a.mu.Unlock()
	return nil
}

// SetHorizontalSwingMode sets the horizontal vane mode.
func (a *AirConditioner) SetHorizontalSwingMode(ctx context.Context, code string) error {
	if err := a.session.Control(ctx, a.info.ID, cmdHorizontalSwing, code); err != nil {
		return err
	}
	a.mu.Lock()
	a.status.HorizontalSwing = code
	a.mu.Unlock()
	return nil
}

// SetReservationSleepTime sets the sleep timer in minutes. Bounds are
// enforced by the device.
func (a *AirConditioner) SetReservationSleepTime(ctx context.Context, minutes int) error {
	return a.session.Control(ctx, a.info.ID, cmdSleepTime, minutes)
}
