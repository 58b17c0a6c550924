package bridge

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/gray-logic-thinq/internal/climate"
	"github.com/nerrad567/gray-logic-thinq/internal/thinq"
)

func TestHVACModesRestrictedToSupported(t *testing.T) {
	tr := NewModeTranslator([]string{thinq.OpModeCool, thinq.OpModeHeat, thinq.OpModeAroma})

	got := tr.HVACModes()
	want := map[string]climate.HVACMode{
		thinq.OpModeCool: climate.HVACCool,
		thinq.OpModeHeat: climate.HVACHeat,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HVACModes() = %v, want %v", got, want)
	}

	// AROMA has no platform representation
	if _, ok := got[thinq.OpModeAroma]; ok {
		t.Error("AROMA should not appear in the HVAC mode table")
	}
}

func TestHVACModesSentinelFallback(t *testing.T) {
	tests := []struct {
		name    string
		opModes []string
	}{
		{"no modes at all", nil},
		{"only unmapped modes", []string{thinq.OpModeAroma, thinq.OpModeEnergySaving}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewModeTranslator(tt.opModes)

			got := tr.HVACModes()
			if len(got) != 1 {
				t.Fatalf("table size = %d, want 1", len(got))
			}
			if got["--"] != climate.HVACAuto {
				t.Errorf("sentinel maps to %q, want auto", got["--"])
			}

			values := tr.HVACModeValues()
			if len(values) != 1 || values[0] != climate.HVACAuto {
				t.Errorf("HVACModeValues() = %v, want [auto]", values)
			}
		})
	}
}

func TestHVACModeValuesOrder(t *testing.T) {
	// Declared out of table order; derived list must follow the global table.
	tr := NewModeTranslator([]string{thinq.OpModeCool, thinq.OpModeAI, thinq.OpModeDry})

	got := tr.HVACModeValues()
	want := []climate.HVACMode{climate.HVACAuto, climate.HVACDry, climate.HVACCool}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HVACModeValues() = %v, want %v", got, want)
	}
}

func TestPresetModesLastWriteWins(t *testing.T) {
	// Device supports both energy-saver generations; they share the "eco"
	// label, so the later table entry owns the label.
	tr := NewModeTranslator([]string{thinq.OpModeCool, thinq.OpModeEnergySaving, thinq.OpModeEnergySaver})

	presets := tr.PresetModes()
	if len(presets) != 1 {
		t.Fatalf("preset table size = %d, want 1", len(presets))
	}
	if presets[climate.PresetEco] != thinq.OpModeEnergySaver {
		t.Errorf("eco resolves to %q, want %q", presets[climate.PresetEco], thinq.OpModeEnergySaver)
	}

	// Only the winning code reports the label back.
	if label, ok := tr.PresetForCode(thinq.OpModeEnergySaver); !ok || label != climate.PresetEco {
		t.Errorf("PresetForCode(ENERGY_SAVER) = %q, %v, want eco, true", label, ok)
	}
	if _, ok := tr.PresetForCode(thinq.OpModeEnergySaving); ok {
		t.Error("PresetForCode(ENERGY_SAVING) should not resolve after losing the collision")
	}
}

func TestPresetModesRequireBaseHVACMode(t *testing.T) {
	// Eco runs under cool; a device without COOL support gets no eco preset.
	tr := NewModeTranslator([]string{thinq.OpModeHeat, thinq.OpModeEnergySaving})

	if presets := tr.PresetModes(); len(presets) != 0 {
		t.Errorf("preset table = %v, want empty", presets)
	}
	if labels := tr.PresetLabels(); len(labels) != 0 {
		t.Errorf("PresetLabels() = %v, want empty", labels)
	}
}

func TestPresetLabels(t *testing.T) {
	tr := NewModeTranslator([]string{thinq.OpModeCool, thinq.OpModeEnergySaving})

	got := tr.PresetLabels()
	want := []string{climate.PresetEco}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PresetLabels() = %v, want %v", got, want)
	}
}

func TestCodeForHVACMode(t *testing.T) {
	tr := NewModeTranslator([]string{thinq.OpModeCool, thinq.OpModeHeat})

	code, err := tr.CodeForHVACMode(climate.HVACCool)
	if err != nil {
		t.Fatalf("CodeForHVACMode(cool) error: %v", err)
	}
	if code != thinq.OpModeCool {
		t.Errorf("code = %q, want COOL", code)
	}

	_, err = tr.CodeForHVACMode(climate.HVACDry)
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("unsupported mode error = %v, want ErrInvalidValue", err)
	}
}

func TestCodeForHVACModeSentinel(t *testing.T) {
	tr := NewModeTranslator(nil)

	code, err := tr.CodeForHVACMode(climate.HVACAuto)
	if err != nil {
		t.Fatalf("CodeForHVACMode(auto) error: %v", err)
	}
	if code != "--" {
		t.Errorf("code = %q, want sentinel", code)
	}
}

func TestCodeForPreset(t *testing.T) {
	tr := NewModeTranslator([]string{thinq.OpModeCool, thinq.OpModeEnergySaving})

	code, err := tr.CodeForPreset(climate.PresetEco)
	if err != nil {
		t.Fatalf("CodeForPreset(eco) error: %v", err)
	}
	if code != thinq.OpModeEnergySaving {
		t.Errorf("code = %q, want ENERGY_SAVING", code)
	}

	_, err = tr.CodeForPreset("boost")
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("unknown preset error = %v, want ErrInvalidValue", err)
	}
}
