package bridge

import (
	"encoding/json"
	"fmt"
	"time"
)

// MQTT message types for communication between Gray Logic Core and the ThinQ
// Bridge. These types implement the platform's bridge interface contract;
// every bridge process speaks the same command/ack/state/health envelope.

// CommandMessage is sent from Core to Bridge to execute an entity command.
// Topic: graylogic/command/thinq/{entity_id}
type CommandMessage struct {
	// ID uniquely identifies this command for correlation with acknowledgments.
	ID string `json:"id"`

	// Timestamp is when the command was issued (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// EntityID is the climate entity identifier (device ID plus suffix).
	EntityID string `json:"entity_id"`

	// Command is the command name (e.g., "set_hvac_mode", "set_temperature").
	Command string `json:"command"`

	// Parameters contains command-specific values.
	// Examples:
	//   {"hvac_mode": "cool"} for set_hvac_mode
	//   {"temperature": 21.5} for set_temperature
	Parameters map[string]any `json:"parameters,omitempty"`

	// Source indicates where the command originated.
	// Values: "api", "automation", "voice", "scene"
	Source string `json:"source"`

	// UserID is the user who triggered the command (if applicable).
	UserID string `json:"user_id,omitempty"`
}

// AckStatus represents the acknowledgment status of a command.
type AckStatus string

const (
	// AckAccepted indicates the command was received and sent to the device.
	AckAccepted AckStatus = "accepted"

	// AckFailed indicates the command could not be executed.
	AckFailed AckStatus = "failed"

	// AckTimeout indicates the device did not respond within the timeout.
	AckTimeout AckStatus = "timeout"
)

// AckMessage is sent from Bridge to Core to acknowledge a command.
// Topic: graylogic/ack/thinq/{entity_id}
type AckMessage struct {
	// CommandID is the ID from the original command.
	CommandID string `json:"command_id"`

	// Timestamp is when the acknowledgment was sent (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// EntityID is the climate entity identifier.
	EntityID string `json:"entity_id"`

	// Status indicates the acknowledgment status.
	Status AckStatus `json:"status"`

	// Protocol is the protocol identifier ("thinq").
	Protocol string `json:"protocol"`

	// Error contains details if status is "failed" or "timeout".
	Error *AckError `json:"error,omitempty"`
}

// AckError contains error details for failed commands.
type AckError struct {
	// Code is the error code (e.g., "DEVICE_UNREACHABLE", "INVALID_COMMAND").
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`
}

// Error codes for command failures.
const (
	ErrCodeDeviceUnreachable = "DEVICE_UNREACHABLE"
	ErrCodeEntityNotFound    = "ENTITY_NOT_FOUND"
	ErrCodeInvalidCommand    = "INVALID_COMMAND"
	ErrCodeInvalidParameters = "INVALID_PARAMETERS"
	ErrCodeNotSupported      = "NOT_SUPPORTED"
	ErrCodeDeviceRejected    = "DEVICE_REJECTED"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeBridgeError       = "BRIDGE_ERROR"
)

// StateMessage is sent from Bridge to Core when entity state changes.
// Topic: graylogic/state/thinq/{entity_id}
// QoS: 1, Retained: Yes
type StateMessage struct {
	// EntityID is the climate entity identifier.
	EntityID string `json:"entity_id"`

	// Timestamp is when the state was observed (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// State contains the current entity state.
	// Example: {"hvac_mode": "cool", "current_temperature": 22.5,
	//           "target_temperature": 21.0, "fan_mode": "HIGH"}
	State map[string]any `json:"state"`

	// Available reports whether the backing device is reachable.
	Available bool `json:"available"`

	// Protocol is the protocol identifier ("thinq").
	Protocol string `json:"protocol"`
}

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is operating with issues.
	HealthDegraded HealthStatus = "degraded"

	// HealthUnhealthy indicates the bridge is not operating correctly.
	HealthUnhealthy HealthStatus = "unhealthy"

	// HealthOffline indicates the bridge is not connected (from LWT).
	HealthOffline HealthStatus = "offline"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage is sent from Bridge to Core to report operational status.
// Topic: graylogic/health/thinq
// QoS: 1, Retained: Yes
type HealthMessage struct {
	// Bridge is the bridge identifier ("thinq").
	Bridge string `json:"bridge"`

	// Timestamp is when the health status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the current operational status.
	Status HealthStatus `json:"status"`

	// Version is the bridge software version.
	Version string `json:"version"`

	// UptimeSeconds is how long the bridge has been running.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// Connection contains ThinQ API connection details.
	Connection *ConnectionStatus `json:"connection,omitempty"`

	// Statistics contains operational metrics.
	Statistics *BridgeStatistics `json:"statistics,omitempty"`

	// EntitiesManaged is the number of climate entities exposed.
	EntitiesManaged int `json:"entities_managed"`

	// Reason explains the status (especially for offline/degraded).
	Reason string `json:"reason,omitempty"`
}

// ConnectionStatus describes the ThinQ API connection state.
type ConnectionStatus struct {
	// Status is the connection status ("connected", "disconnected").
	Status string `json:"status"`

	// LastPoll is when the devices were last polled successfully.
	LastPoll *time.Time `json:"last_poll,omitempty"`
}

// BridgeStatistics contains operational metrics.
type BridgeStatistics struct {
	// CommandsReceived is the total number of commands received.
	CommandsReceived uint64 `json:"commands_received"`

	// StatesPublished is the total number of state messages published.
	StatesPublished uint64 `json:"states_published"`

	// Errors is the total number of errors encountered.
	Errors uint64 `json:"errors"`
}

// DiscoveryMessage is sent from Bridge to Core to announce discovered entities.
// Topic: graylogic/discovery/thinq
type DiscoveryMessage struct {
	// ID uniquely identifies this discovery run.
	ID string `json:"id"`

	// Timestamp is when discovery was performed (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Bridge is the bridge identifier.
	Bridge string `json:"bridge"`

	// Entities contains the climate entities built from discovered devices.
	Entities []DiscoveredEntity `json:"entities"`
}

// DiscoveredEntity represents a climate entity found during discovery.
type DiscoveredEntity struct {
	// EntityID is the climate entity identifier.
	EntityID string `json:"entity_id"`

	// Name is the display name.
	Name string `json:"name"`

	// DeviceType is the appliance type ("AC", "REFRIGERATOR").
	DeviceType string `json:"device_type"`

	// Model is the appliance model name (if known).
	Model string `json:"model,omitempty"`

	// HVACModes lists the supported HVAC modes.
	HVACModes []string `json:"hvac_modes"`

	// Features lists the supported capabilities (e.g., ["fan_mode", "preset_mode"]).
	Features []string `json:"features"`
}

// JSON marshalling helpers

// MarshalJSON marshals a CommandMessage to JSON.
func (m *CommandMessage) MarshalJSON() ([]byte, error) {
	type Alias CommandMessage
	return json.Marshal(&struct {
		*Alias
		Timestamp string `json:"timestamp"`
	}{
		Alias:     (*Alias)(m),
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
	})
}

// UnmarshalJSON unmarshals a CommandMessage from JSON.
func (m *CommandMessage) UnmarshalJSON(data []byte) error {
	type Alias CommandMessage
	aux := &struct {
		*Alias
		Timestamp string `json:"timestamp"`
	}{
		Alias: (*Alias)(m),
	}
	if err := json.Unmarshal(data, aux); err != nil {
		return fmt.Errorf("unmarshal command message: %w", err)
	}
	if aux.Timestamp != "" {
		t, err := time.Parse(time.RFC3339, aux.Timestamp)
		if err != nil {
			return fmt.Errorf("parse timestamp: %w", err)
		}
		m.Timestamp = t
	}
	return nil
}

// NewAckMessage creates an acknowledgment message for a command.
func NewAckMessage(cmd CommandMessage, status AckStatus) AckMessage {
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		EntityID:  cmd.EntityID,
		Status:    status,
		Protocol:  "thinq",
	}
}

// NewAckError creates an acknowledgment with error details.
func NewAckError(cmd CommandMessage, code, message string) AckMessage {
	status := AckFailed
	if code == ErrCodeTimeout {
		status = AckTimeout
	}
	return AckMessage{
		CommandID: cmd.ID,
		Timestamp: time.Now().UTC(),
		EntityID:  cmd.EntityID,
		Status:    status,
		Protocol:  "thinq",
		Error: &AckError{
			Code:    code,
			Message: message,
		},
	}
}

// NewStateMessage creates a state message for an entity.
func NewStateMessage(entityID string, state map[string]any, available bool) StateMessage {
	return StateMessage{
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		State:     state,
		Available: available,
		Protocol:  "thinq",
	}
}

// NewLWTMessage creates a Last Will and Testament message for MQTT.
// This message is published by the broker if the bridge disconnects unexpectedly.
func NewLWTMessage(bridgeID string) HealthMessage {
	return HealthMessage{
		Bridge:    bridgeID,
		Timestamp: time.Now().UTC(),
		Status:    HealthOffline,
		Reason:    "unexpected_disconnect",
	}
}

// Topic helpers

const (
	// TopicPrefix is the base topic for all Gray Logic messages.
	TopicPrefix = "graylogic"
)

// CommandTopic returns the MQTT topic for commands to a specific entity.
// Example: graylogic/command/thinq/a1b2c3-AC
func CommandTopic(entityID string) string {
	return fmt.Sprintf("%s/command/thinq/%s", TopicPrefix, entityID)
}

// AckTopic returns the MQTT topic for command acknowledgments.
// Example: graylogic/ack/thinq/a1b2c3-AC
func AckTopic(entityID string) string {
	return fmt.Sprintf("%s/ack/thinq/%s", TopicPrefix, entityID)
}

// StateTopic returns the MQTT topic for state updates.
// Example: graylogic/state/thinq/a1b2c3-AC
func StateTopic(entityID string) string {
	return fmt.Sprintf("%s/state/thinq/%s", TopicPrefix, entityID)
}

// HealthTopic returns the MQTT topic for health status.
// Example: graylogic/health/thinq
func HealthTopic() string {
	return fmt.Sprintf("%s/health/thinq", TopicPrefix)
}

// DiscoveryTopic returns the MQTT topic for entity discovery announcements.
// Example: graylogic/discovery/thinq
func DiscoveryTopic() string {
	return fmt.Sprintf("%s/discovery/thinq", TopicPrefix)
}

// CommandSubscribeTopic returns the MQTT subscription pattern for all commands.
// Example: graylogic/command/thinq/+
func CommandSubscribeTopic() string {
	return fmt.Sprintf("%s/command/thinq/+", TopicPrefix)
}

// EntityIDFromTopic extracts the entity ID from a command topic.
// Returns "" when the topic does not match the expected shape.
func EntityIDFromTopic(topic string) string {
	prefix := fmt.Sprintf("%s/command/thinq/", TopicPrefix)
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return ""
	}
	id := topic[len(prefix):]
	for i := 0; i < len(id); i++ {
		if id[i] == '/' {
			return ""
		}
	}
	return id
}
