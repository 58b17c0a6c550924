package bridge

import (
	"github.com/nerrad567/gray-logic-thinq/internal/climate"
	"github.com/nerrad567/gray-logic-thinq/internal/thinq"
)

// hvacModeNone is the sentinel vendor code substituted when a device supports
// none of the mapped operating modes. Selecting it powers the device on
// without sending an operating-mode command.
const hvacModeNone = "--"

// hvacModeDefinition binds one vendor operating-mode code to a platform HVAC
// mode. The list is ordered; derived mode lists preserve this order.
type hvacModeDefinition struct {
	code string
	mode climate.HVACMode
}

// hvacModeLookup is the fixed global table of vendor codes the platform can
// represent. Codes missing here (AROMA, energy savers, ...) are reachable
// only through presets or not at all.
var hvacModeLookup = []hvacModeDefinition{
	{thinq.OpModeAI, climate.HVACAuto},
	{thinq.OpModeHeat, climate.HVACHeat},
	{thinq.OpModeDry, climate.HVACDry},
	{thinq.OpModeCool, climate.HVACCool},
	{thinq.OpModeAirClean, climate.HVACFanOnly},
	{thinq.OpModeACO, climate.HVACHeatCool},
}

// presetDefinition binds a vendor code to a preset label and the HVAC mode
// the preset runs under.
type presetDefinition struct {
	code   string
	preset string
	hvac   climate.HVACMode
}

// presetModeLookup is ordered: when two supported codes produce the same
// preset label, the later entry wins and its code is the one commands resolve
// to. Both current entries are energy savers that only differ by firmware
// generation.
var presetModeLookup = []presetDefinition{
	{thinq.OpModeEnergySaving, climate.PresetEco, climate.HVACCool},
	{thinq.OpModeEnergySaver, climate.PresetEco, climate.HVACCool},
}

// presetDefinitionForCode returns the global preset definition for a vendor
// code, independent of any device's supported set.
func presetDefinitionForCode(code string) (presetDefinition, bool) {
	for _, def := range presetModeLookup {
		if def.code == code {
			return def, true
		}
	}
	return presetDefinition{}, false
}

// ModeTranslator derives the platform mode tables for one device from its
// supported operating-mode set. The capability set is fixed for the device's
// lifetime, so both tables are computed once and cached.
//
// Not safe for concurrent use; callers serialise access per entity.
type ModeTranslator struct {
	opModes map[string]bool

	hvacModes   map[string]climate.HVACMode // vendor code -> HVAC mode
	presetModes map[string]string           // preset label -> vendor code
}

// NewModeTranslator creates a translator for a device supporting the given
// vendor operating-mode codes.
func NewModeTranslator(opModes []string) *ModeTranslator {
	set := make(map[string]bool, len(opModes))
	for _, code := range opModes {
		set[code] = true
	}
	return &ModeTranslator{opModes: set}
}

// HVACModes returns the vendor-code → HVAC-mode table restricted to the
// device's supported set. A device with no mapped modes gets the sentinel
// table {"--": auto} so there is always at least one selectable mode.
func (t *ModeTranslator) HVACModes() map[string]climate.HVACMode {
	if t.hvacModes == nil {
		m := make(map[string]climate.HVACMode)
		for _, def := range hvacModeLookup {
			if t.opModes[def.code] {
				m[def.code] = def.mode
			}
		}
		if len(m) == 0 {
			m[hvacModeNone] = climate.HVACAuto
		}
		t.hvacModes = m
	}
	return t.hvacModes
}

// HVACModeValues returns the available HVAC modes in global table order
// (sentinel devices report just auto). OFF is not included; it is a power
// state, not an operating mode.
func (t *ModeTranslator) HVACModeValues() []climate.HVACMode {
	available := t.HVACModes()
	if _, ok := available[hvacModeNone]; ok {
		return []climate.HVACMode{climate.HVACAuto}
	}
	values := make([]climate.HVACMode, 0, len(available))
	for _, def := range hvacModeLookup {
		if _, ok := available[def.code]; ok {
			values = append(values, def.mode)
		}
	}
	return values
}

// PresetModes returns the preset-label → vendor-code table for the device.
// A preset is available only when the device supports its vendor code and
// its associated HVAC mode is among the available HVAC modes. Label
// collisions resolve last-write-wins in global table order.
func (t *ModeTranslator) PresetModes() map[string]string {
	if t.presetModes == nil {
		hvac := make(map[climate.HVACMode]bool)
		for _, mode := range t.HVACModes() {
			hvac[mode] = true
		}

		m := make(map[string]string)
		for _, def := range presetModeLookup {
			if !t.opModes[def.code] {
				continue
			}
			if !hvac[def.hvac] {
				continue
			}
			m[def.preset] = def.code
		}
		t.presetModes = m
	}
	return t.presetModes
}

// PresetLabels returns the available preset labels in global table order,
// without the implicit "none".
func (t *ModeTranslator) PresetLabels() []string {
	available := t.PresetModes()
	labels := make([]string, 0, len(available))
	for _, def := range presetModeLookup {
		if code, ok := available[def.preset]; ok && code == def.code {
			labels = append(labels, def.preset)
		}
	}
	return labels
}

// CodeForHVACMode resolves a platform HVAC mode back to the vendor code that
// selects it on this device.
func (t *ModeTranslator) CodeForHVACMode(mode climate.HVACMode) (string, error) {
	for code, m := range t.HVACModes() {
		if m == mode {
			return code, nil
		}
	}
	return "", invalidValue("hvac_mode", string(mode))
}

// CodeForPreset resolves a preset label back to its vendor code.
func (t *ModeTranslator) CodeForPreset(label string) (string, error) {
	if code, ok := t.PresetModes()[label]; ok {
		return code, nil
	}
	return "", invalidValue("preset_mode", label)
}

// PresetForCode returns the preset label a vendor code maps to on this
// device, if any. Only the winning code of a label collision resolves.
func (t *ModeTranslator) PresetForCode(code string) (string, bool) {
	for label, c := range t.PresetModes() {
		if c == code {
			return label, true
		}
	}
	return "", false
}
