// Package mqtt provides MQTT client connectivity for the Gray Logic ThinQ
// Bridge.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Gray Logic uses MQTT as the internal message bus connecting the Core
// to protocol bridges. This bridge publishes climate entity state and
// health, and receives entity commands:
//
//	Gray Logic Core ↔ MQTT Broker ↔ ThinQ Bridge ↔ LG ThinQ API
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to entity commands
//	err = client.Subscribe(mqtt.Topics{}.AllBridgeCommands("thinq"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish state
//	topic := mqtt.Topics{}.BridgeState("thinq", "a1b2c3-AC")
//	client.Publish(topic, []byte(`{"hvac_mode":"cool"}`), 1, true)
package mqtt
