package thinq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DeviceType classifies a discovered appliance.
type DeviceType string

const (
	// DeviceAC is an air conditioner (including air-to-water heat pumps).
	DeviceAC DeviceType = "AC"

	// DeviceRefrigerator is a refrigerator.
	DeviceRefrigerator DeviceType = "REFRIGERATOR"
)

// DeviceInfo is the discovery record for one physical appliance.
type DeviceInfo struct {
	ID        string     `json:"device_id"`
	Alias     string     `json:"alias"`
	Type      DeviceType `json:"type"`
	ModelName string     `json:"model_name"`
	Firmware  string     `json:"firmware,omitempty"`
}

// Session is the vendor API surface the device models depend on.
//
// DeviceProfile and DeviceStatus decode the API response into v, which must
// be a pointer to the device-type-specific profile/status struct.
type Session interface {
	// ListDevices returns the appliances registered to the account.
	ListDevices(ctx context.Context) ([]DeviceInfo, error)

	// DeviceProfile decodes the static capability profile of a device into v.
	DeviceProfile(ctx context.Context, deviceID string, v any) error

	// DeviceStatus decodes the current state snapshot of a device into v.
	DeviceStatus(ctx context.Context, deviceID string, v any) error

	// Control sends a single control command to a device.
	Control(ctx context.Context, deviceID, command string, value any) error

	// IsConnected reports whether the session credentials are usable.
	IsConnected() bool
}

// RESTConfig holds the settings for a REST session.
type RESTConfig struct {
	// BaseURL is the API gateway root, e.g. "https://api.smartthinq.example".
	BaseURL string

	// Token is the bearer access token.
	Token string

	// Country and Language are sent on every request; the vendor API
	// localises capability labels with them.
	Country  string
	Language string

	// Timeout bounds each HTTP request. Zero means 10s.
	Timeout time.Duration
}

const defaultRequestTimeout = 10 * time.Second

// RESTSession is a Session over the vendor's HTTP API.
//
// Safe for concurrent use; the underlying http.Client handles pooling.
type RESTSession struct {
	cfg    RESTConfig
	client *http.Client

	mu        sync.RWMutex
	connected bool
}

// NewRESTSession creates a session. No request is made until the first call.
func NewRESTSession(cfg RESTConfig) (*RESTSession, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrRequestFailed)
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %w", ErrRequestFailed, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &RESTSession{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// ListDevices implements Session.
func (s *RESTSession) ListDevices(ctx context.Context) ([]DeviceInfo, error) {
	var out struct {
		Devices []DeviceInfo `json:"devices"`
	}
	if err := s.get(ctx, "/devices", &out); err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// DeviceProfile implements Session.
func (s *RESTSession) DeviceProfile(ctx context.Context, deviceID string, v any) error {
	return s.get(ctx, "/devices/"+url.PathEscape(deviceID)+"/profile", v)
}

// DeviceStatus implements Session.
func (s *RESTSession) DeviceStatus(ctx context.Context, deviceID string, v any) error {
	return s.get(ctx, "/devices/"+url.PathEscape(deviceID)+"/state", v)
}

// Control implements Session.
func (s *RESTSession) Control(ctx context.Context, deviceID, command string, value any) error {
	body, err := json.Marshal(map[string]any{
		"command": command,
		"value":   value,
	})
	if err != nil {
		return fmt.Errorf("%w: encoding command: %w", ErrCommandFailed, err)
	}

	req, err := s.newRequest(ctx, http.MethodPost,
		"/devices/"+url.PathEscape(deviceID)+"/control", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.setConnected(false)
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: device=%s command=%s status=%d",
			ErrCommandFailed, deviceID, command, resp.StatusCode)
	}
	s.setConnected(true)
	return nil
}

// IsConnected implements Session. It reflects the outcome of the most recent
// request; a fresh session reports false until the first successful call.
func (s *RESTSession) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

func (s *RESTSession) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}

// get performs an authenticated GET and decodes the JSON response into v.
func (s *RESTSession) get(ctx context.Context, path string, v any) error {
	req, err := s.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.setConnected(false)
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s: status=%d", ErrRequestFailed, path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %w", ErrRequestFailed, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrRequestFailed, path, err)
	}
	s.setConnected(true)
	return nil
}

func (s *RESTSession) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	if s.cfg.Country != "" {
		req.Header.Set("X-Country-Code", s.cfg.Country)
	}
	if s.cfg.Language != "" {
		req.Header.Set("X-Language-Code", s.cfg.Language)
	}
	return req, nil
}
