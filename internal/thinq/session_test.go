package thinq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *RESTSession) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ses, err := NewRESTSession(RESTConfig{
		BaseURL:  srv.URL,
		Token:    "test-token",
		Country:  "GB",
		Language: "en-GB",
	})
	if err != nil {
		t.Fatalf("NewRESTSession failed: %v", err)
	}
	return srv, ses
}

func TestNewRESTSessionRequiresBaseURL(t *testing.T) {
	_, err := NewRESTSession(RESTConfig{})
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("error = %v, want ErrRequestFailed", err)
	}
}

func TestRESTSessionListDevices(t *testing.T) {
	var gotPath, gotAuth, gotCountry, gotLang string

	_, ses := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotCountry = r.Header.Get("X-Country-Code")
		gotLang = r.Header.Get("X-Language-Code")

		json.NewEncoder(w).Encode(map[string]any{
			"devices": []map[string]any{
				{"device_id": "a1", "alias": "Living Room", "type": "AC", "model_name": "RAC_056905"},
				{"device_id": "b2", "alias": "Kitchen", "type": "REFRIGERATOR", "model_name": "GR-X24"},
			},
		})
	})

	devices, err := ses.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}

	if gotPath != "/devices" {
		t.Errorf("path = %q, want /devices", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want Bearer test-token", gotAuth)
	}
	if gotCountry != "GB" || gotLang != "en-GB" {
		t.Errorf("locale headers = %q/%q, want GB/en-GB", gotCountry, gotLang)
	}

	if len(devices) != 2 {
		t.Fatalf("device count = %d, want 2", len(devices))
	}
	if devices[0].ID != "a1" || devices[0].Type != DeviceAC {
		t.Errorf("devices[0] = %+v, want a1/AC", devices[0])
	}
	if devices[1].Type != DeviceRefrigerator {
		t.Errorf("devices[1].Type = %q, want REFRIGERATOR", devices[1].Type)
	}

	if !ses.IsConnected() {
		t.Error("session should report connected after a successful request")
	}
}

func TestRESTSessionDeviceStatus(t *testing.T) {
	_, ses := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/a1/state" {
			t.Errorf("path = %q, want /devices/a1/state", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"is_on":        true,
			"op_mode":      "COOL",
			"current_temp": 23.5,
		})
	})

	var status ACStatus
	if err := ses.DeviceStatus(context.Background(), "a1", &status); err != nil {
		t.Fatalf("DeviceStatus failed: %v", err)
	}
	if !status.IsOn || status.OpMode != OpModeCool {
		t.Errorf("status = %+v, want on/COOL", status)
	}
	if status.CurrentTemp == nil || *status.CurrentTemp != 23.5 {
		t.Errorf("CurrentTemp = %v, want 23.5", status.CurrentTemp)
	}
}

func TestRESTSessionControl(t *testing.T) {
	var gotBody map[string]any

	_, ses := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/devices/a1/control" {
			t.Errorf("path = %q, want /devices/a1/control", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	})

	if err := ses.Control(context.Background(), "a1", "op_mode", "COOL"); err != nil {
		t.Fatalf("Control failed: %v", err)
	}

	if gotBody["command"] != "op_mode" || gotBody["value"] != "COOL" {
		t.Errorf("body = %v, want op_mode/COOL", gotBody)
	}
}

func TestRESTSessionErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrDeviceNotFound},
		{"server error", http.StatusInternalServerError, ErrRequestFailed},
		{"unauthorized", http.StatusUnauthorized, ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ses := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			var status ACStatus
			err := ses.DeviceStatus(context.Background(), "a1", &status)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRESTSessionControlErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrDeviceNotFound},
		{"rejected", http.StatusConflict, ErrCommandFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ses := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			err := ses.Control(context.Background(), "a1", "power", true)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRESTSessionConnectionTracking(t *testing.T) {
	fail := true
	_, ses := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"devices": []any{}})
	})

	if ses.IsConnected() {
		t.Error("fresh session should not report connected")
	}

	if _, err := ses.ListDevices(context.Background()); err == nil {
		t.Fatal("expected error from failing server")
	}
	if ses.IsConnected() {
		t.Error("session should not report connected after a failed request")
	}

	fail = false
	if _, err := ses.ListDevices(context.Background()); err != nil {
		t.Fatalf("ListDevices failed: %v", err)
	}
	if !ses.IsConnected() {
		t.Error("session should report connected after recovery")
	}
}
