package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-thinq/internal/climate"
)

// entitySummary is the list-view representation of a climate entity.
type entitySummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Available bool   `json:"available"`
	HVACMode  string `json:"hvac_mode"`
}

// entityDetail is the full representation of a climate entity.
type entityDetail struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Available            bool           `json:"available"`
	HVACModes            []string       `json:"hvac_modes"`
	PresetModes          []string       `json:"preset_modes,omitempty"`
	FanModes             []string       `json:"fan_modes,omitempty"`
	SwingModes           []string       `json:"swing_modes,omitempty"`
	SwingHorizontalModes []string       `json:"swing_horizontal_modes,omitempty"`
	TemperatureUnit      string         `json:"temperature_unit"`
	TargetTempStep       float64        `json:"target_temperature_step"`
	MinTemp              float64        `json:"min_temp"`
	MaxTemp              float64        `json:"max_temp"`
	State                map[string]any `json:"state"`
}

// handleListEntities returns all managed climate entities.
func (s *Server) handleListEntities(w http.ResponseWriter, _ *http.Request) {
	entities := s.bridge.Entities()

	out := make([]entitySummary, 0, len(entities))
	for _, e := range entities {
		out = append(out, entitySummary{
			ID:        e.UniqueID(),
			Name:      e.Name(),
			Available: e.Available(),
			HVACMode:  string(e.HVACMode()),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entities": out,
		"count":    len(out),
	})
}

// handleGetEntity returns one entity with its full state and capabilities.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, ok := s.bridge.Entity(id)
	if !ok {
		writeNotFound(w, "entity not found")
		return
	}

	writeJSON(w, http.StatusOK, describeEntity(e))
}

func describeEntity(e climate.Entity) entityDetail {
	modes := e.HVACModes()
	modeNames := make([]string, len(modes))
	for i, m := range modes {
		modeNames[i] = string(m)
	}

	return entityDetail{
		ID:                   e.UniqueID(),
		Name:                 e.Name(),
		Available:            e.Available(),
		HVACModes:            modeNames,
		PresetModes:          e.PresetModes(),
		FanModes:             e.FanModes(),
		SwingModes:           e.SwingModes(),
		SwingHorizontalModes: e.SwingHorizontalModes(),
		TemperatureUnit:      string(e.TemperatureUnit()),
		TargetTempStep:       e.TargetTemperatureStep(),
		MinTemp:              e.MinTemp(),
		MaxTemp:              e.MaxTemp(),
		State:                e.State(),
	}
}
