package bridge

import (
	"context"
	"math"
	"strconv"

	"github.com/nerrad567/gray-logic-thinq/internal/climate"
	"github.com/nerrad567/gray-logic-thinq/internal/thinq"
)

// compartmentDescription ties one refrigerator compartment to its device
// accessors. Each compartment is exposed as its own climate entity.
type compartmentDescription struct {
	key  string
	name string

	currentTemp func(*thinq.Refrigerator) string
	tempRange   func(*thinq.Refrigerator) [2]float64
	setTemp     func(*thinq.Refrigerator, context.Context, float64) error
}

var refrigeratorCompartments = []compartmentDescription{
	{
		key:  "fridge",
		name: "Fridge",
		currentTemp: func(d *thinq.Refrigerator) string {
			return d.FridgeTemp()
		},
		tempRange: func(d *thinq.Refrigerator) [2]float64 {
			return d.FridgeTargetTempRange()
		},
		setTemp: func(d *thinq.Refrigerator, ctx context.Context, v float64) error {
			return d.SetFridgeTargetTemp(ctx, v)
		},
	},
	{
		key:  "freezer",
		name: "Freezer",
		currentTemp: func(d *thinq.Refrigerator) string {
			return d.FreezerTemp()
		},
		tempRange: func(d *thinq.Refrigerator) [2]float64 {
			return d.FreezerTargetTempRange()
		},
		setTemp: func(d *thinq.Refrigerator, ctx context.Context, v float64) error {
			return d.SetFreezerTargetTemp(ctx, v)
		},
	},
}

// RefrigeratorClimate is the climate entity adapter for one refrigerator
// compartment. The compartment is always regulating, so the HVAC mode is
// fixed at auto; target temperature is writable only while the appliance
// accepts setpoint changes (door closed, no active cycle).
type RefrigeratorClimate struct {
	device  *thinq.Refrigerator
	updater Updater
	desc    compartmentDescription

	uniqueID string
	name     string
}

var _ climate.Entity = (*RefrigeratorClimate)(nil)

// NewRefrigeratorClimates creates one adapter per compartment of the device.
func NewRefrigeratorClimates(device *thinq.Refrigerator, updater Updater) []*RefrigeratorClimate {
	out := make([]*RefrigeratorClimate, 0, len(refrigeratorCompartments))
	for _, desc := range refrigeratorCompartments {
		out = append(out, &RefrigeratorClimate{
			device:   device,
			updater:  updater,
			desc:     desc,
			uniqueID: device.Info().ID + "-" + desc.key,
			name:     device.Info().Alias + " " + desc.name,
		})
	}
	return out
}

// UniqueID implements climate.Entity.
func (c *RefrigeratorClimate) UniqueID() string { return c.uniqueID }

// Name implements climate.Entity.
func (c *RefrigeratorClimate) Name() string { return c.name }

// Available implements climate.Entity.
func (c *RefrigeratorClimate) Available() bool { return c.device.Available() }

// SupportedFeatures implements climate.Entity.
func (c *RefrigeratorClimate) SupportedFeatures() climate.EntityFeature {
	if c.device.SetValuesAllowed() {
		return climate.FeatureTargetTemperature
	}
	return 0
}

// HVACMode implements climate.Entity.
func (c *RefrigeratorClimate) HVACMode() climate.HVACMode { return climate.HVACAuto }

// HVACModes implements climate.Entity.
func (c *RefrigeratorClimate) HVACModes() []climate.HVACMode {
	return []climate.HVACMode{climate.HVACAuto}
}

// SetHVACMode implements climate.Entity. The compartment cannot change mode.
func (c *RefrigeratorClimate) SetHVACMode(ctx context.Context, mode climate.HVACMode) error {
	return ErrNotSupported
}

// PresetMode implements climate.Entity.
func (c *RefrigeratorClimate) PresetMode() string { return "" }

// PresetModes implements climate.Entity.
func (c *RefrigeratorClimate) PresetModes() []string { return nil }

// SetPresetMode implements climate.Entity.
func (c *RefrigeratorClimate) SetPresetMode(ctx context.Context, preset string) error {
	return ErrNotSupported
}

// CurrentTemperature implements climate.Entity. The appliance reports
// compartment temperatures as opaque strings; a non-numeric reading (an
// "IcePlus" style label, or empty) is unknown.
func (c *RefrigeratorClimate) CurrentTemperature() (float64, bool) {
	return parseCompartmentTemp(c.desc.currentTemp(c.device))
}

// TargetTemperature implements climate.Entity. The appliance reports a
// single temperature per compartment; it serves as both current and target.
func (c *RefrigeratorClimate) TargetTemperature() (float64, bool) {
	return c.CurrentTemperature()
}

// SetTemperature implements climate.Entity. A mode riding along in the
// request is ignored (the compartment has only one mode); setpoint changes
// are rejected while the appliance is not accepting them.
func (c *RefrigeratorClimate) SetTemperature(ctx context.Context, req climate.TemperatureRequest) error {
	if req.Temperature == nil {
		return nil
	}
	if !c.device.SetValuesAllowed() {
		return ErrNotSupported
	}
	if err := c.desc.setTemp(c.device, ctx, *req.Temperature); err != nil {
		return err
	}
	if c.updater != nil {
		c.updater.MarkUpdated(c.uniqueID)
	}
	return nil
}

// TemperatureUnit implements climate.Entity.
func (c *RefrigeratorClimate) TemperatureUnit() climate.TemperatureUnit {
	if c.device.TemperatureUnit() == "F" {
		return climate.Fahrenheit
	}
	return climate.Celsius
}

// TargetTemperatureStep implements climate.Entity.
func (c *RefrigeratorClimate) TargetTemperatureStep() float64 {
	return c.device.TargetTemperatureStep()
}

// MinTemp implements climate.Entity.
func (c *RefrigeratorClimate) MinTemp() float64 { return c.desc.tempRange(c.device)[0] }

// MaxTemp implements climate.Entity.
func (c *RefrigeratorClimate) MaxTemp() float64 { return c.desc.tempRange(c.device)[1] }

// FanMode implements climate.Entity.
func (c *RefrigeratorClimate) FanMode() string { return "" }

// FanModes implements climate.Entity.
func (c *RefrigeratorClimate) FanModes() []string { return nil }

// SetFanMode implements climate.Entity.
func (c *RefrigeratorClimate) SetFanMode(ctx context.Context, mode string) error {
	return ErrNotSupported
}

// SwingMode implements climate.Entity.
func (c *RefrigeratorClimate) SwingMode() string { return "" }

// SwingModes implements climate.Entity.
func (c *RefrigeratorClimate) SwingModes() []string { return nil }

// SetSwingMode implements climate.Entity.
func (c *RefrigeratorClimate) SetSwingMode(ctx context.Context, mode string) error {
	return ErrNotSupported
}

// SwingHorizontalMode implements climate.Entity.
func (c *RefrigeratorClimate) SwingHorizontalMode() string { return "" }

// SwingHorizontalModes implements climate.Entity.
func (c *RefrigeratorClimate) SwingHorizontalModes() []string { return nil }

// SetSwingHorizontalMode implements climate.Entity.
func (c *RefrigeratorClimate) SetSwingHorizontalMode(ctx context.Context, mode string) error {
	return ErrNotSupported
}

// TurnOn implements climate.Entity.
func (c *RefrigeratorClimate) TurnOn(ctx context.Context) error { return ErrNotSupported }

// TurnOff implements climate.Entity.
func (c *RefrigeratorClimate) TurnOff(ctx context.Context) error { return ErrNotSupported }

// State implements climate.Entity.
func (c *RefrigeratorClimate) State() map[string]any {
	state := map[string]any{
		"hvac_mode": string(climate.HVACAuto),
	}
	if v, ok := c.CurrentTemperature(); ok {
		state["current_temperature"] = v
		state["target_temperature"] = v
	}
	state["set_values_allowed"] = c.device.SetValuesAllowed()
	return state
}

// parseCompartmentTemp converts the appliance's string reading to a setpoint.
// Compartment setpoints are whole degrees; a fractional reading is truncated.
func parseCompartmentTemp(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return math.Trunc(v), true
}
