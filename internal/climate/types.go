package climate

import "context"

// HVACMode is a standard heating/ventilation/air-conditioning operating mode.
// The set is fixed by the platform; bridges map vendor modes onto it.
type HVACMode string

const (
	// HVACOff indicates the device is powered off.
	HVACOff HVACMode = "off"

	// HVACHeat indicates active heating to the target temperature.
	HVACHeat HVACMode = "heat"

	// HVACCool indicates active cooling to the target temperature.
	HVACCool HVACMode = "cool"

	// HVACHeatCool indicates the device switches between heating and cooling
	// to hold the target.
	HVACHeatCool HVACMode = "heat_cool"

	// HVACAuto indicates the device selects its own operating strategy.
	HVACAuto HVACMode = "auto"

	// HVACDry indicates dehumidification.
	HVACDry HVACMode = "dry"

	// HVACFanOnly indicates air circulation without heating or cooling.
	HVACFanOnly HVACMode = "fan_only"
)

// Valid reports whether m is one of the platform HVAC modes.
func (m HVACMode) Valid() bool {
	switch m {
	case HVACOff, HVACHeat, HVACCool, HVACHeatCool, HVACAuto, HVACDry, HVACFanOnly:
		return true
	}
	return false
}

// Preset labels shared across all climate entities.
const (
	// PresetNone means no preset is active.
	PresetNone = "none"

	// PresetEco is the energy-saving preset.
	PresetEco = "eco"
)

// EntityFeature is a bitset of capabilities a climate entity exposes.
// The platform reads the set once per entity and renders controls accordingly.
type EntityFeature uint32

const (
	// FeatureTargetTemperature indicates a single settable target temperature.
	FeatureTargetTemperature EntityFeature = 1 << iota

	// FeatureFanMode indicates selectable fan speeds.
	FeatureFanMode

	// FeaturePresetMode indicates selectable preset modes.
	FeaturePresetMode

	// FeatureSwingMode indicates a selectable (vertical) swing mode.
	FeatureSwingMode

	// FeatureSwingHorizontalMode indicates a separately selectable horizontal
	// swing mode.
	FeatureSwingHorizontalMode

	// FeatureTurnOn indicates the entity can be powered on.
	FeatureTurnOn

	// FeatureTurnOff indicates the entity can be powered off.
	FeatureTurnOff
)

// Has reports whether all bits of want are present in f.
func (f EntityFeature) Has(want EntityFeature) bool {
	return f&want == want
}

// TemperatureUnit is the unit a device reports and accepts temperatures in.
type TemperatureUnit string

const (
	// Celsius temperature unit.
	Celsius TemperatureUnit = "C"

	// Fahrenheit temperature unit.
	Fahrenheit TemperatureUnit = "F"
)

// Platform-wide default target temperature bounds, used when a device does
// not report explicit limits. Values are in Celsius.
const (
	DefaultMinTemp = 7.0
	DefaultMaxTemp = 35.0
)

// TemperatureRequest carries the optional fields of a set-temperature call.
// A request may change the HVAC mode, the target temperature, or both.
type TemperatureRequest struct {
	// HVACMode, if set, is applied before the temperature.
	HVACMode *HVACMode

	// Temperature, if set, is the new target.
	Temperature *float64
}

// Entity is the standard climate read/write surface an adapter exposes to
// the bridge runtime.
//
// Read methods re-query live device state and never block on I/O. Command
// methods suspend on the device/session network call; they return the
// device-layer error unchanged on failure and must not retry.
type Entity interface {
	// UniqueID identifies the entity across restarts.
	UniqueID() string

	// Name is the display name.
	Name() string

	// Available reports whether the backing device is reachable.
	Available() bool

	// SupportedFeatures returns the capability bitset.
	SupportedFeatures() EntityFeature

	HVACMode() HVACMode
	HVACModes() []HVACMode
	SetHVACMode(ctx context.Context, mode HVACMode) error

	// PresetMode returns the active preset label, or "" when the entity has
	// no presets at all.
	PresetMode() string

	// PresetModes returns the selectable preset labels, or nil when the
	// entity has no presets.
	PresetModes() []string
	SetPresetMode(ctx context.Context, preset string) error

	// CurrentTemperature returns the measured temperature. ok is false when
	// the device has not reported one.
	CurrentTemperature() (value float64, ok bool)

	// TargetTemperature returns the temperature the device tries to reach.
	// ok is false when the reading is missing or malformed.
	TargetTemperature() (value float64, ok bool)
	SetTemperature(ctx context.Context, req TemperatureRequest) error

	TemperatureUnit() TemperatureUnit
	TargetTemperatureStep() float64
	MinTemp() float64
	MaxTemp() float64

	// FanMode returns the active fan mode, or "" when fan control is not
	// supported.
	FanMode() string
	FanModes() []string
	SetFanMode(ctx context.Context, mode string) error

	SwingMode() string
	SwingModes() []string
	SetSwingMode(ctx context.Context, mode string) error

	// SwingHorizontalMode returns "" when the horizontal axis is not exposed
	// as a separate control.
	SwingHorizontalMode() string
	SwingHorizontalModes() []string
	SetSwingHorizontalMode(ctx context.Context, mode string) error

	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error

	// State returns the entity state snapshot published to the platform.
	State() map[string]any
}
