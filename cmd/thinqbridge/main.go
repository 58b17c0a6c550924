// Gray Logic ThinQ Bridge
//
// This is the main entry point for the ThinQ bridge process. The bridge
// connects LG ThinQ appliances (air conditioners, refrigerators) to Gray
// Logic Core as climate entities:
//   - Commands arrive from Core over MQTT and are applied via the ThinQ API
//   - Appliance state is polled and published back over MQTT
//   - A local HTTP API exposes entities and metrics for diagnostics
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/gray-logic-thinq/internal/api"
	"github.com/nerrad567/gray-logic-thinq/internal/bridge"
	"github.com/nerrad567/gray-logic-thinq/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-thinq/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-thinq/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-thinq/internal/thinq"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic ThinQ Bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Create ThinQ API session
	session, err := thinq.NewRESTSession(thinq.RESTConfig{
		BaseURL:  cfg.ThinQ.BaseURL,
		Token:    cfg.ThinQ.Token,
		Country:  cfg.ThinQ.Country,
		Language: cfg.ThinQ.Language,
		Timeout:  cfg.GetThinQTimeout(),
	})
	if err != nil {
		return fmt.Errorf("creating ThinQ session: %w", err)
	}
	log.Info("ThinQ session created",
		"base_url", cfg.ThinQ.BaseURL,
		"country", cfg.ThinQ.Country,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Create the bridge
	mqttAdapter := &mqttBridgeAdapter{client: mqttClient}
	b, err := bridge.NewBridge(bridge.BridgeOptions{
		BridgeID:       cfg.Bridge.ID,
		Version:        version,
		Session:        session,
		MQTTClient:     mqttAdapter,
		PollInterval:   cfg.GetPollInterval(),
		CommandTimeout: cfg.GetCommandTimeout(),
		HealthInterval: cfg.GetHealthInterval(),
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	// Start the bridge (discovers appliances, subscribes to commands)
	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("starting bridge: %w", err)
	}
	defer func() {
		log.Info("stopping bridge")
		b.Stop()
	}()

	// Start the local HTTP API
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Bridge:  b,
		MQTT:    mqttClient,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	// Verify connections are healthy
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. Bridge
	// 3. MQTT

	log.Info("Gray Logic ThinQ Bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// mqttBridgeAdapter adapts the infrastructure MQTT client to the bridge's
// MQTTClient interface. The primary difference is the Subscribe handler
// signature:
//   - Infrastructure mqtt: func(topic, payload []byte) error
//   - Bridge expects: func(topic, payload []byte)
type mqttBridgeAdapter struct {
	client *mqtt.Client
}

// Publish implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) Publish(topic string, payload []byte, qos byte, retained bool) error {
	return a.client.Publish(topic, payload, qos, retained)
}

// Subscribe implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	// Wrap the void handler to return nil error (bridge handlers don't return errors)
	return a.client.Subscribe(topic, qos, func(t string, p []byte) error {
		handler(t, p)
		return nil
	})
}

// IsConnected implements bridge.MQTTClient.
func (a *mqttBridgeAdapter) IsConnected() bool {
	return a.client.IsConnected()
}

// Disconnect implements bridge.MQTTClient.
// The MQTT client lifecycle is managed by run()'s defer chain, so this is a
// no-op.
func (a *mqttBridgeAdapter) Disconnect(_ uint) {
}
