package mqtt

import "fmt"

// Topic prefixes per Gray Logic MQTT specification.
//
// All bridge topics use the flat scheme: graylogic/{category}/{protocol}/{entity_id}
const (
	// TopicPrefixBridge is the base for all bridge topics.
	TopicPrefixBridge = "graylogic"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "graylogic/system"
)

// Topics provides builders for the Gray Logic MQTT topics this bridge
// publishes to or subscribes on. Using these helpers keeps topic naming
// consistent with the bridge message layer.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.BridgeState("thinq", "a1b2c3-AC")
//	// Returns: "graylogic/state/thinq/a1b2c3-AC"
type Topics struct{}

// BridgeState returns the topic for entity state updates from a bridge.
//
// Example: graylogic/state/thinq/a1b2c3-AC
func (Topics) BridgeState(protocol, entityID string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefixBridge, protocol, entityID)
}

// BridgeCommand returns the topic for commands to a bridge.
//
// Example: graylogic/command/thinq/a1b2c3-AC
func (Topics) BridgeCommand(protocol, entityID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefixBridge, protocol, entityID)
}

// BridgeAck returns the topic for command acknowledgements from a bridge.
//
// Example: graylogic/ack/thinq/a1b2c3-AC
func (Topics) BridgeAck(protocol, entityID string) string {
	return fmt.Sprintf("%s/ack/%s/%s", TopicPrefixBridge, protocol, entityID)
}

// BridgeHealth returns the topic for bridge health status.
//
// Example: graylogic/health/thinq
func (Topics) BridgeHealth(protocol string) string {
	return fmt.Sprintf("%s/health/%s", TopicPrefixBridge, protocol)
}

// BridgeDiscovery returns the topic for entity discovery from a bridge.
//
// Example: graylogic/discovery/thinq
func (Topics) BridgeDiscovery(protocol string) string {
	return fmt.Sprintf("%s/discovery/%s", TopicPrefixBridge, protocol)
}

// AllBridgeCommands returns a pattern matching all commands to a bridge.
//
// Pattern: graylogic/command/thinq/+
func (Topics) AllBridgeCommands(protocol string) string {
	return fmt.Sprintf("%s/command/%s/+", TopicPrefixBridge, protocol)
}

// SystemStatus returns the system status topic used for client-level
// online/offline announcements.
//
// Example: graylogic/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
