package bridge

import (
	"context"

	"github.com/nerrad567/gray-logic-thinq/internal/climate"
	"github.com/nerrad567/gray-logic-thinq/internal/thinq"
)

// Updater receives the optimistic update signal an adapter emits after every
// successful command, so the runtime can republish entity state without
// waiting for the next poll. Implemented by Bridge.
type Updater interface {
	MarkUpdated(entityID string)
}

// ACClimate is the climate entity adapter for an air conditioner.
//
// All read paths re-query the device snapshot; nothing is cached here except
// the per-device mode tables (static for the device's lifetime) and the
// active preset label. Not safe for concurrent use; the Bridge serialises
// access per entity.
type ACClimate struct {
	device  *thinq.AirConditioner
	updater Updater

	uniqueID string
	name     string

	modes *ModeTranslator

	// presetMode is the active preset label. Empty until the preset table
	// is first built non-empty, then always a valid label ("none" at rest).
	presetMode string

	// Swing slot assignment. A device exposing only horizontal swing
	// presents it through the generic swing slot and suppresses the
	// horizontal-specific one.
	useHorizontalSwing   bool
	swingModes           []string
	swingHorizontalModes []string
}

var _ climate.Entity = (*ACClimate)(nil)

// NewACClimate creates the adapter for one air conditioner.
func NewACClimate(device *thinq.AirConditioner, updater Updater) *ACClimate {
	c := &ACClimate{
		device:   device,
		updater:  updater,
		uniqueID: device.Info().ID + "-AC",
		name:     device.Info().Alias,
		modes:    NewModeTranslator(device.OpModes()),
	}

	c.swingModes = device.VerticalSwingModes()
	c.swingHorizontalModes = device.HorizontalSwingModes()
	if len(c.swingModes) == 0 && len(c.swingHorizontalModes) > 0 {
		c.swingModes = c.swingHorizontalModes
		c.swingHorizontalModes = nil
		c.useHorizontalSwing = true
	}

	return c
}

// UniqueID implements climate.Entity.
func (c *ACClimate) UniqueID() string { return c.uniqueID }

// Name implements climate.Entity.
func (c *ACClimate) Name() string { return c.name }

// Available implements climate.Entity.
func (c *ACClimate) Available() bool { return c.device.Available() }

// presetLookup returns the preset table, initialising the active preset to
// "none" the first time a non-empty table is built.
func (c *ACClimate) presetLookup() map[string]string {
	m := c.modes.PresetModes()
	if len(m) > 0 && c.presetMode == "" {
		c.presetMode = climate.PresetNone
	}
	return m
}

// SupportedFeatures implements climate.Entity.
func (c *ACClimate) SupportedFeatures() climate.EntityFeature {
	features := climate.FeatureTargetTemperature | climate.FeatureTurnOn | climate.FeatureTurnOff
	if len(c.FanModes()) > 0 {
		features |= climate.FeatureFanMode
	}
	if len(c.PresetModes()) > 0 {
		features |= climate.FeaturePresetMode
	}
	if len(c.SwingModes()) > 0 {
		features |= climate.FeatureSwingMode
	}
	if len(c.SwingHorizontalModes()) > 0 {
		features |= climate.FeatureSwingHorizontalMode
	}
	return features
}

// HVACMode implements climate.Entity. Reading the mode keeps the active
// preset in sync with the reported operating mode: a preset code sets the
// preset and reports the preset's base HVAC mode, anything else resets the
// preset to "none".
func (c *ACClimate) HVACMode() climate.HVACMode {
	st := c.device.Status()
	if !st.IsOn || st.OpMode == "" {
		if c.presetMode != "" {
			c.presetMode = climate.PresetNone
		}
		return climate.HVACOff
	}

	c.presetLookup()
	if label, ok := c.modes.PresetForCode(st.OpMode); ok {
		c.presetMode = label
		def, _ := presetDefinitionForCode(st.OpMode)
		return def.hvac
	}

	if c.presetMode != "" {
		c.presetMode = climate.PresetNone
	}
	if mode, ok := c.modes.HVACModes()[st.OpMode]; ok {
		return mode
	}
	return climate.HVACAuto
}

// HVACModes implements climate.Entity.
func (c *ACClimate) HVACModes() []climate.HVACMode {
	return append([]climate.HVACMode{climate.HVACOff}, c.modes.HVACModeValues()...)
}

// SetHVACMode implements climate.Entity. OFF issues a power-off command and
// nothing else. Any other mode resolves to its vendor code, powers the
// device on first if needed, and skips the operating-mode command for the
// sentinel code.
func (c *ACClimate) SetHVACMode(ctx context.Context, mode climate.HVACMode) error {
	if mode == climate.HVACOff {
		if err := c.device.Power(ctx, false); err != nil {
			return err
		}
		c.markUpdated()
		return nil
	}

	code, err := c.modes.CodeForHVACMode(mode)
	if err != nil {
		return err
	}

	if !c.device.Status().IsOn {
		if err := c.device.Power(ctx, true); err != nil {
			return err
		}
	}
	if code != hvacModeNone {
		if err := c.device.SetOpMode(ctx, code); err != nil {
			return err
		}
	}
	c.markUpdated()
	return nil
}

// PresetMode implements climate.Entity.
func (c *ACClimate) PresetMode() string {
	c.presetLookup()
	return c.presetMode
}

// PresetModes implements climate.Entity.
func (c *ACClimate) PresetModes() []string {
	if len(c.presetLookup()) == 0 {
		return nil
	}
	return append([]string{climate.PresetNone}, c.modes.PresetLabels()...)
}

// SetPresetMode implements climate.Entity. Selecting "none" while a preset
// is active on a running device switches back to the preset's base HVAC
// mode, which clears the preset as a side effect; otherwise "none" is a
// no-op.
func (c *ACClimate) SetPresetMode(ctx context.Context, preset string) error {
	modes := c.presetLookup()
	if len(modes) == 0 {
		return ErrNotSupported
	}

	if preset == climate.PresetNone {
		current := c.presetMode
		if current != climate.PresetNone && c.device.Status().IsOn {
			code := modes[current]
			def, _ := presetDefinitionForCode(code)
			return c.SetHVACMode(ctx, def.hvac)
		}
		return nil
	}

	code, err := c.modes.CodeForPreset(preset)
	if err != nil {
		return err
	}

	if !c.device.Status().IsOn {
		if err := c.device.Power(ctx, true); err != nil {
			return err
		}
	}
	if err := c.device.SetOpMode(ctx, code); err != nil {
		return err
	}
	c.markUpdated()
	return nil
}

// CurrentTemperature implements climate.Entity.
func (c *ACClimate) CurrentTemperature() (float64, bool) {
	if v := c.device.Status().CurrentTemp; v != nil {
		return *v, true
	}
	return 0, false
}

// TargetTemperature implements climate.Entity.
func (c *ACClimate) TargetTemperature() (float64, bool) {
	if v := c.device.Status().TargetTemp; v != nil {
		return *v, true
	}
	return 0, false
}

// SetTemperature implements climate.Entity. An embedded HVAC mode is applied
// first; when that mode is OFF the temperature part is skipped entirely.
func (c *ACClimate) SetTemperature(ctx context.Context, req climate.TemperatureRequest) error {
	if req.HVACMode != nil {
		if err := c.SetHVACMode(ctx, *req.HVACMode); err != nil {
			return err
		}
		if *req.HVACMode == climate.HVACOff {
			return nil
		}
	}

	if req.Temperature != nil {
		if err := c.device.SetTargetTemp(ctx, *req.Temperature); err != nil {
			return err
		}
		c.markUpdated()
	}
	return nil
}

// TemperatureUnit implements climate.Entity.
func (c *ACClimate) TemperatureUnit() climate.TemperatureUnit {
	if c.device.TemperatureUnit() == "F" {
		return climate.Fahrenheit
	}
	return climate.Celsius
}

// TargetTemperatureStep implements climate.Entity.
func (c *ACClimate) TargetTemperatureStep() float64 {
	return c.device.TargetTemperatureStep()
}

// MinTemp implements climate.Entity. Device-reported bounds win; otherwise
// the platform default (or the air-to-water band) converted to the device's
// unit.
func (c *ACClimate) MinTemp() float64 {
	if v := c.device.TargetTemperatureMin(); v != nil {
		return *v
	}
	if c.device.IsAirToWater() {
		return c.device.ConvertTemp(thinq.AWHPMinTemp)
	}
	return c.device.ConvertTemp(climate.DefaultMinTemp)
}

// MaxTemp implements climate.Entity.
func (c *ACClimate) MaxTemp() float64 {
	if v := c.device.TargetTemperatureMax(); v != nil {
		return *v
	}
	if c.device.IsAirToWater() {
		return c.device.ConvertTemp(thinq.AWHPMaxTemp)
	}
	return c.device.ConvertTemp(climate.DefaultMaxTemp)
}

// FanMode implements climate.Entity.
func (c *ACClimate) FanMode() string { return c.device.Status().FanSpeed }

// FanModes implements climate.Entity.
func (c *ACClimate) FanModes() []string { return c.device.FanSpeeds() }

// SetFanMode implements climate.Entity.
func (c *ACClimate) SetFanMode(ctx context.Context, mode string) error {
	if !containsString(c.FanModes(), mode) {
		return invalidValue("fan_mode", mode)
	}
	if err := c.device.SetFanSpeed(ctx, mode); err != nil {
		return err
	}
	c.markUpdated()
	return nil
}

// SwingMode implements climate.Entity. On a horizontal-only device the
// generic slot reads the horizontal state.
func (c *ACClimate) SwingMode() string {
	st := c.device.Status()
	if c.useHorizontalSwing {
		return st.HorizontalSwing
	}
	return st.VerticalSwing
}

// SwingModes implements climate.Entity.
func (c *ACClimate) SwingModes() []string { return c.swingModes }

// SetSwingMode implements climate.Entity. Setting the already-active mode is
// a no-op and issues no device command.
func (c *ACClimate) SetSwingMode(ctx context.Context, mode string) error {
	if !containsString(c.swingModes, mode) {
		return invalidValue("swing_mode", mode)
	}
	if mode == c.SwingMode() {
		return nil
	}

	var err error
	if c.useHorizontalSwing {
		err = c.device.SetHorizontalSwingMode(ctx, mode)
	} else {
		err = c.device.SetVerticalSwingMode(ctx, mode)
	}
	if err != nil {
		return err
	}
	c.markUpdated()
	return nil
}

// SwingHorizontalMode implements climate.Entity. Empty when the horizontal
// axis is folded into the generic slot or absent.
func (c *ACClimate) SwingHorizontalMode() string {
	if len(c.swingHorizontalModes) == 0 {
		return ""
	}
	return c.device.Status().HorizontalSwing
}

// SwingHorizontalModes implements climate.Entity.
func (c *ACClimate) SwingHorizontalModes() []string { return c.swingHorizontalModes }

// SetSwingHorizontalMode implements climate.Entity.
func (c *ACClimate) SetSwingHorizontalMode(ctx context.Context, mode string) error {
	if !containsString(c.swingHorizontalModes, mode) {
		return invalidValue("swing_horizontal_mode", mode)
	}
	if mode == c.SwingHorizontalMode() {
		return nil
	}
	if err := c.device.SetHorizontalSwingMode(ctx, mode); err != nil {
		return err
	}
	c.markUpdated()
	return nil
}

// TurnOn implements climate.Entity.
func (c *ACClimate) TurnOn(ctx context.Context) error {
	if err := c.device.Power(ctx, true); err != nil {
		return err
	}
	c.markUpdated()
	return nil
}

// TurnOff implements climate.Entity.
func (c *ACClimate) TurnOff(ctx context.Context) error {
	if err := c.device.Power(ctx, false); err != nil {
		return err
	}
	c.markUpdated()
	return nil
}

// SetSleepTime passes the sleep reservation through to the device. Exposed
// as the entity service "set_sleep_time"; minutes are bounds-checked by the
// device layer only.
func (c *ACClimate) SetSleepTime(ctx context.Context, minutes int) error {
	return c.device.SetReservationSleepTime(ctx, minutes)
}

// State implements climate.Entity.
func (c *ACClimate) State() map[string]any {
	// HVACMode first: it synchronises the active preset with the snapshot.
	mode := c.HVACMode()

	state := map[string]any{
		"hvac_mode": string(mode),
	}
	if preset := c.PresetMode(); preset != "" {
		state["preset_mode"] = preset
	}
	if v, ok := c.CurrentTemperature(); ok {
		state["current_temperature"] = v
	}
	if v, ok := c.TargetTemperature(); ok {
		state["target_temperature"] = v
	}
	if v := c.FanMode(); v != "" {
		state["fan_mode"] = v
	}
	if v := c.SwingMode(); v != "" {
		state["swing_mode"] = v
	}
	if v := c.SwingHorizontalMode(); v != "" {
		state["swing_horizontal_mode"] = v
	}
	return state
}

func (c *ACClimate) markUpdated() {
	if c.updater != nil {
		c.updater.MarkUpdated(c.uniqueID)
	}
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
