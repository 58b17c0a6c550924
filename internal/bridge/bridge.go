package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-thinq/internal/climate"
	"github.com/nerrad567/gray-logic-thinq/internal/thinq"
)

// Bridge operation constants.
const (
	// defaultCommandTimeout is the timeout for sending commands to the API.
	defaultCommandTimeout = 10 * time.Second

	// defaultPollInterval is how often device state is refreshed.
	defaultPollInterval = 30 * time.Second

	// discoverTimeout bounds a full discovery run.
	discoverTimeout = 60 * time.Second
)

// MQTTClient is the interface for MQTT operations.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Publish sends a message to a topic.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool

	// Disconnect closes the connection gracefully.
	Disconnect(quiesce uint)
}

// sleepTimer is the optional entity capability behind the set_sleep_time
// command. Only the air conditioner adapter implements it.
type sleepTimer interface {
	SetSleepTime(ctx context.Context, minutes int) error
}

// entityHandle pairs an entity with its command lock. Adapters are not
// internally synchronised; the bridge serialises all access per entity
// through this mutex.
type entityHandle struct {
	entity climate.Entity

	mu sync.Mutex

	// pending is set by MarkUpdated while the entity lock is held and
	// drained into a state publish after the lock is released.
	pending atomic.Bool
}

// managedDevice groups the entities backed by one appliance so a single
// refresh serves all of them.
type managedDevice struct {
	id      string
	refresh func(ctx context.Context) error
	handles []*entityHandle
}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// BridgeID is the bridge identifier for health and discovery messages.
	BridgeID string

	// Version is the bridge software version.
	Version string

	// Session is the ThinQ API session.
	Session thinq.Session

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// PollInterval is how often device state is refreshed.
	// Default: 30 seconds.
	PollInterval time.Duration

	// CommandTimeout bounds a single command round trip to the API.
	// Default: 10 seconds.
	CommandTimeout time.Duration

	// HealthInterval is how often health status is published.
	HealthInterval time.Duration

	// Logger is optional structured logger.
	Logger Logger
}

// Bridge orchestrates bidirectional translation between the ThinQ API and
// MQTT. It handles:
//   - Receiving commands from Core via MQTT and applying them to appliances
//   - Polling appliance state and publishing entity state updates to MQTT
//   - Health reporting and graceful shutdown
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	bridgeID       string
	version        string
	session        thinq.Session
	mqtt           MQTTClient
	health         *HealthReporter
	pollInterval   time.Duration
	commandTimeout time.Duration

	// Entity registry (built by discovery)
	entities    map[string]*entityHandle
	devices     []*managedDevice
	entityOrder []string
	entityMu    sync.RWMutex

	// State cache for change detection
	stateCache   map[string]map[string]any
	availability map[string]bool
	stateCacheMu sync.Mutex

	// Operational counters
	commandsReceived atomic.Uint64
	statesPublished  atomic.Uint64
	errorCount       atomic.Uint64

	lastPoll   time.Time
	lastPollMu sync.RWMutex

	// Shutdown coordination
	done      chan struct{}
	wg        sync.WaitGroup
	stopOnce  sync.Once
	ctx       context.Context    // Bridge-level context, cancelled on Stop()
	ctxCancel context.CancelFunc // Cancel function for ctx

	// Logger
	logger   Logger
	loggerMu sync.RWMutex
}

// NewBridge creates a new bridge instance.
// Call Start() to begin operation.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.BridgeID == "" {
		opts.BridgeID = "thinq"
	}

	pollInterval := opts.PollInterval
	if pollInterval == 0 {
		pollInterval = defaultPollInterval
	}
	commandTimeout := opts.CommandTimeout
	if commandTimeout == 0 {
		commandTimeout = defaultCommandTimeout
	}

	// Bridge-level context for command cancellation on shutdown
	ctx, ctxCancel := context.WithCancel(context.Background())

	b := &Bridge{
		bridgeID:       opts.BridgeID,
		version:        opts.Version,
		session:        opts.Session,
		mqtt:           opts.MQTTClient,
		pollInterval:   pollInterval,
		commandTimeout: commandTimeout,
		entities:       make(map[string]*entityHandle),
		stateCache:     make(map[string]map[string]any),
		availability:   make(map[string]bool),
		done:           make(chan struct{}),
		ctx:            ctx,
		ctxCancel:      ctxCancel,
		logger:         opts.Logger,
	}

	b.health = NewHealthReporter(HealthReporterConfig{
		BridgeID:  opts.BridgeID,
		Version:   opts.Version,
		Interval:  opts.HealthInterval,
		Publisher: opts.MQTTClient,
		Source:    b,
	})
	if opts.Logger != nil {
		b.health.SetLogger(opts.Logger)
	}

	return b, nil
}

// Start begins bridge operation.
// This discovers appliances, subscribes to MQTT command topics, and starts
// the poll loop and health reporting.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.health.PublishStarting(); err != nil {
		b.logError("failed to publish starting status", err)
	}

	if err := b.discoverDevices(ctx); err != nil {
		return fmt.Errorf("discover devices: %w", err)
	}

	commandTopic := CommandSubscribeTopic()
	if err := b.mqtt.Subscribe(commandTopic, 1, b.handleMQTTMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	b.logInfo("subscribed to commands", "topic", commandTopic)

	b.health.Start(ctx)

	b.wg.Add(1)
	go b.pollLoop(ctx)

	if err := b.health.PublishNow(); err != nil {
		b.logError("failed to publish healthy status", err)
	}

	b.logInfo("bridge started",
		"bridge_id", b.bridgeID,
		"entities", b.EntityCount())

	return nil
}

// Stop gracefully shuts down the bridge.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)

		// Cancel bridge context to abort in-flight commands
		b.ctxCancel()

		// Stop health reporting (publishes "stopping" status)
		b.health.Stop()

		// Wait for pending operations
		b.wg.Wait()

		b.logInfo("bridge stopped")
	})
}

// discoverDevices queries the ThinQ API for appliances, builds climate
// entities for the supported types, and announces the result.
func (b *Bridge) discoverDevices(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, discoverTimeout)
	defer cancel()

	infos, err := b.session.ListDevices(ctx)
	if err != nil {
		return err
	}

	entities := make(map[string]*entityHandle)
	var devices []*managedDevice
	var order []string
	var announced []DiscoveredEntity

	for _, info := range infos {
		switch info.Type {
		case thinq.DeviceAC:
			ac, err := thinq.NewAirConditioner(ctx, b.session, info)
			if err != nil {
				b.logError("failed to load air conditioner",
					fmt.Errorf("device=%s: %w", info.ID, err))
				b.errorCount.Add(1)
				continue
			}
			if err := ac.Refresh(ctx); err != nil {
				b.logError("initial refresh failed",
					fmt.Errorf("device=%s: %w", info.ID, err))
			}

			adapter := NewACClimate(ac, b)
			handle := &entityHandle{entity: adapter}
			entities[adapter.UniqueID()] = handle
			order = append(order, adapter.UniqueID())
			devices = append(devices, &managedDevice{
				id:      info.ID,
				refresh: ac.Refresh,
				handles: []*entityHandle{handle},
			})
			announced = append(announced, describeEntity(adapter, info))

		case thinq.DeviceRefrigerator:
			fridge, err := thinq.NewRefrigerator(ctx, b.session, info)
			if err != nil {
				b.logError("failed to load refrigerator",
					fmt.Errorf("device=%s: %w", info.ID, err))
				b.errorCount.Add(1)
				continue
			}
			if err := fridge.Refresh(ctx); err != nil {
				b.logError("initial refresh failed",
					fmt.Errorf("device=%s: %w", info.ID, err))
			}

			dev := &managedDevice{id: info.ID, refresh: fridge.Refresh}
			for _, adapter := range NewRefrigeratorClimates(fridge, b) {
				handle := &entityHandle{entity: adapter}
				entities[adapter.UniqueID()] = handle
				order = append(order, adapter.UniqueID())
				dev.handles = append(dev.handles, handle)
				announced = append(announced, describeEntity(adapter, info))
			}
			devices = append(devices, dev)

		default:
			b.logDebug("skipping unsupported device",
				"device", info.ID, "type", string(info.Type))
		}
	}

	b.entityMu.Lock()
	b.entities = entities
	b.devices = devices
	b.entityOrder = order
	b.entityMu.Unlock()

	b.publishDiscovery(announced)
	b.publishAllStates()

	b.logInfo("discovery complete",
		"appliances", len(devices), "entities", len(order))
	return nil
}

// Rediscover re-runs appliance discovery. Call after appliances are added
// to or removed from the ThinQ account so the bridge picks them up without
// a restart.
func (b *Bridge) Rediscover(ctx context.Context) error {
	if err := b.discoverDevices(ctx); err != nil {
		return err
	}
	b.pruneStateCache()
	return nil
}

// describeEntity builds the discovery announcement for one entity.
func describeEntity(e climate.Entity, info thinq.DeviceInfo) DiscoveredEntity {
	modes := e.HVACModes()
	modeNames := make([]string, len(modes))
	for i, m := range modes {
		modeNames[i] = string(m)
	}

	var features []string
	f := e.SupportedFeatures()
	if f.Has(climate.FeatureTargetTemperature) {
		features = append(features, "target_temperature")
	}
	if f.Has(climate.FeatureFanMode) {
		features = append(features, "fan_mode")
	}
	if f.Has(climate.FeaturePresetMode) {
		features = append(features, "preset_mode")
	}
	if f.Has(climate.FeatureSwingMode) {
		features = append(features, "swing_mode")
	}
	if f.Has(climate.FeatureSwingHorizontalMode) {
		features = append(features, "swing_horizontal_mode")
	}
	if f.Has(climate.FeatureTurnOn) {
		features = append(features, "turn_on")
	}
	if f.Has(climate.FeatureTurnOff) {
		features = append(features, "turn_off")
	}

	return DiscoveredEntity{
		EntityID:   e.UniqueID(),
		Name:       e.Name(),
		DeviceType: string(info.Type),
		Model:      info.ModelName,
		HVACModes:  modeNames,
		Features:   features,
	}
}

// publishDiscovery announces the entity set on the discovery topic.
func (b *Bridge) publishDiscovery(entities []DiscoveredEntity) {
	msg := DiscoveryMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Bridge:    b.bridgeID,
		Entities:  entities,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal discovery", err)
		return
	}

	if err := b.mqtt.Publish(DiscoveryTopic(), payload, 1, true); err != nil {
		b.logError("failed to publish discovery", err)
	}
}

// MarkUpdated implements Updater. Called by adapters after a successful
// command while the entity lock is still held; the publish happens once the
// caller releases the lock.
func (b *Bridge) MarkUpdated(entityID string) {
	b.entityMu.RLock()
	handle, ok := b.entities[entityID]
	b.entityMu.RUnlock()

	if ok {
		handle.pending.Store(true)
	}
}

// pollLoop periodically refreshes appliance state and publishes changes.
func (b *Bridge) pollLoop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case <-ticker.C:
			b.pollOnce()
		}
	}
}

// pollOnce refreshes every appliance and publishes changed entity states.
func (b *Bridge) pollOnce() {
	b.entityMu.RLock()
	devices := b.devices
	b.entityMu.RUnlock()

	allOK := true
	for _, dev := range devices {
		ctx, cancel := context.WithTimeout(b.ctx, b.commandTimeout)
		err := dev.refresh(ctx)
		cancel()

		if err != nil {
			allOK = false
			b.errorCount.Add(1)
			b.logError("poll refresh failed",
				fmt.Errorf("device=%s: %w", dev.id, err))
			// Availability may have flipped; fall through to publish.
		}

		for _, handle := range dev.handles {
			b.publishEntityState(handle, false)
		}
	}

	if allOK && len(devices) > 0 {
		b.lastPollMu.Lock()
		b.lastPoll = time.Now().UTC()
		b.lastPollMu.Unlock()
	}
}

// publishAllStates publishes every entity's state unconditionally.
// Used after discovery so retained topics reflect the current entity set.
func (b *Bridge) publishAllStates() {
	b.entityMu.RLock()
	order := b.entityOrder
	entities := b.entities
	b.entityMu.RUnlock()

	for _, id := range order {
		if handle, ok := entities[id]; ok {
			b.publishEntityState(handle, true)
		}
	}
}

// publishEntityState publishes one entity's state message (QoS 1, retained).
// Unless forced, an unchanged state is suppressed.
func (b *Bridge) publishEntityState(handle *entityHandle, force bool) {
	handle.mu.Lock()
	id := handle.entity.UniqueID()
	state := handle.entity.State()
	available := handle.entity.Available()
	handle.mu.Unlock()

	handle.pending.Store(false)

	if !force && b.stateUnchanged(id, state, available) {
		return
	}

	msg := NewStateMessage(id, state, available)
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logError("failed to marshal state", err)
		return
	}

	if err := b.mqtt.Publish(StateTopic(id), payload, 1, true); err != nil {
		b.errorCount.Add(1)
		b.logError("failed to publish state", err)
		return
	}
	b.statesPublished.Add(1)
}

// stateUnchanged checks the new state against the cache.
// Returns true if unchanged (should skip publish); updates the cache
// otherwise.
func (b *Bridge) stateUnchanged(entityID string, state map[string]any, available bool) bool {
	b.stateCacheMu.Lock()
	defer b.stateCacheMu.Unlock()

	cached, ok := b.stateCache[entityID]
	if ok && b.availability[entityID] == available && reflect.DeepEqual(cached, state) {
		return true
	}

	b.stateCache[entityID] = state
	b.availability[entityID] = available
	return false
}

// pruneStateCache removes cache entries for entities no longer managed.
func (b *Bridge) pruneStateCache() {
	b.entityMu.RLock()
	valid := make(map[string]struct{}, len(b.entities))
	for id := range b.entities {
		valid[id] = struct{}{}
	}
	b.entityMu.RUnlock()

	b.stateCacheMu.Lock()
	defer b.stateCacheMu.Unlock()
	for id := range b.stateCache {
		if _, ok := valid[id]; !ok {
			delete(b.stateCache, id)
			delete(b.availability, id)
		}
	}
}

// handleMQTTMessage routes incoming MQTT messages to the command handler.
func (b *Bridge) handleMQTTMessage(topic string, payload []byte) {
	if EntityIDFromTopic(topic) == "" {
		b.logError("invalid topic format", fmt.Errorf("topic: %s", topic))
		return
	}
	b.handleCommand(payload)
}

// handleCommand processes a command message from Core.
func (b *Bridge) handleCommand(payload []byte) {
	var cmd CommandMessage
	if err := json.Unmarshal(payload, &cmd); err != nil {
		b.logError("failed to parse command", err)
		b.errorCount.Add(1)
		return
	}

	b.commandsReceived.Add(1)
	b.logInfo("received command",
		"command_id", cmd.ID,
		"entity_id", cmd.EntityID,
		"command", cmd.Command)

	b.entityMu.RLock()
	handle, ok := b.entities[cmd.EntityID]
	b.entityMu.RUnlock()

	if !ok {
		b.publishAckError(cmd, ErrCodeEntityNotFound,
			fmt.Sprintf("entity %s not found", cmd.EntityID))
		return
	}

	if err := b.executeCommand(cmd, handle); err != nil {
		b.errorCount.Add(1)
		b.logError("command execution failed", err)
		b.publishAckError(cmd, ackCodeForError(err), err.Error())
		return
	}

	b.publishAck(cmd, AckAccepted)

	// Optimistic update: republish immediately if the adapter marked one.
	if handle.pending.Load() {
		b.publishEntityState(handle, true)
	}
}

// executeCommand dispatches a command to the entity under its lock.
func (b *Bridge) executeCommand(cmd CommandMessage, handle *entityHandle) error {
	// Derive timeout from bridge context so commands are cancelled on shutdown
	ctx, cancel := context.WithTimeout(b.ctx, b.commandTimeout)
	defer cancel()

	handle.mu.Lock()
	defer handle.mu.Unlock()

	e := handle.entity

	switch cmd.Command {
	case "set_hvac_mode":
		mode, err := stringParam(cmd, "hvac_mode")
		if err != nil {
			return err
		}
		hvac := climate.HVACMode(mode)
		if !hvac.Valid() {
			return invalidValue("hvac_mode", mode)
		}
		return e.SetHVACMode(ctx, hvac)

	case "set_preset_mode":
		preset, err := stringParam(cmd, "preset_mode")
		if err != nil {
			return err
		}
		return e.SetPresetMode(ctx, preset)

	case "set_temperature":
		var req climate.TemperatureRequest
		if raw, ok := cmd.Parameters["hvac_mode"]; ok {
			s, ok := raw.(string)
			if !ok {
				return invalidValue("hvac_mode", fmt.Sprintf("%v", raw))
			}
			hvac := climate.HVACMode(s)
			if !hvac.Valid() {
				return invalidValue("hvac_mode", s)
			}
			req.HVACMode = &hvac
		}
		if raw, ok := cmd.Parameters["temperature"]; ok {
			v, ok := raw.(float64)
			if !ok {
				return invalidValue("temperature", fmt.Sprintf("%v", raw))
			}
			req.Temperature = &v
		}
		if req.HVACMode == nil && req.Temperature == nil {
			return invalidValue("temperature", "missing")
		}
		return e.SetTemperature(ctx, req)

	case "set_fan_mode":
		mode, err := stringParam(cmd, "fan_mode")
		if err != nil {
			return err
		}
		return e.SetFanMode(ctx, mode)

	case "set_swing_mode":
		mode, err := stringParam(cmd, "swing_mode")
		if err != nil {
			return err
		}
		return e.SetSwingMode(ctx, mode)

	case "set_swing_horizontal_mode":
		mode, err := stringParam(cmd, "swing_horizontal_mode")
		if err != nil {
			return err
		}
		return e.SetSwingHorizontalMode(ctx, mode)

	case "turn_on":
		return e.TurnOn(ctx)

	case "turn_off":
		return e.TurnOff(ctx)

	case "set_sleep_time":
		st, ok := e.(sleepTimer)
		if !ok {
			return ErrNotSupported
		}
		raw, ok := cmd.Parameters["minutes"]
		if !ok {
			return invalidValue("minutes", "missing")
		}
		minutes, ok := raw.(float64)
		if !ok || minutes < 0 {
			return invalidValue("minutes", fmt.Sprintf("%v", raw))
		}
		return st.SetSleepTime(ctx, int(minutes))

	default:
		return fmt.Errorf("%w: unknown command %q", ErrInvalidValue, cmd.Command)
	}
}

// stringParam extracts a required string parameter from a command.
func stringParam(cmd CommandMessage, key string) (string, error) {
	raw, ok := cmd.Parameters[key]
	if !ok {
		return "", invalidValue(key, "missing")
	}
	s, ok := raw.(string)
	if !ok {
		return "", invalidValue(key, fmt.Sprintf("%v", raw))
	}
	return s, nil
}

// ackCodeForError maps an execution error to an acknowledgment error code.
func ackCodeForError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidValue):
		return ErrCodeInvalidParameters
	case errors.Is(err, ErrNotSupported):
		return ErrCodeNotSupported
	case errors.Is(err, thinq.ErrCommandFailed):
		return ErrCodeDeviceRejected
	case errors.Is(err, thinq.ErrNotConnected), errors.Is(err, thinq.ErrRequestFailed):
		return ErrCodeDeviceUnreachable
	case errors.Is(err, context.DeadlineExceeded):
		return ErrCodeTimeout
	default:
		return ErrCodeBridgeError
	}
}

// publishAck publishes a command acknowledgment.
func (b *Bridge) publishAck(cmd CommandMessage, status AckStatus) {
	ack := NewAckMessage(cmd, status)

	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack", err)
		return
	}

	if err := b.mqtt.Publish(AckTopic(cmd.EntityID), payload, 1, false); err != nil {
		b.logError("failed to publish ack", err)
	}
}

// publishAckError publishes a failed command acknowledgment.
func (b *Bridge) publishAckError(cmd CommandMessage, code, message string) {
	ack := NewAckError(cmd, code, message)

	payload, err := json.Marshal(ack)
	if err != nil {
		b.logError("failed to marshal ack error", err)
		return
	}

	if err := b.mqtt.Publish(AckTopic(cmd.EntityID), payload, 1, false); err != nil {
		b.logError("failed to publish ack error", err)
	}

	b.logError("command failed",
		fmt.Errorf("code=%s message=%s", code, message))
}

// Entities returns the managed entities in discovery order.
// Callers get read-only access; commands still go through MQTT.
//
// Adapters are not internally synchronised, so each returned entity is a
// guard that takes the handle's command lock on every call. External
// readers never touch the adapter while the poll loop or a command holds it.
func (b *Bridge) Entities() []climate.Entity {
	b.entityMu.RLock()
	defer b.entityMu.RUnlock()

	out := make([]climate.Entity, 0, len(b.entityOrder))
	for _, id := range b.entityOrder {
		if handle, ok := b.entities[id]; ok {
			out = append(out, &guardedEntity{h: handle})
		}
	}
	return out
}

// Entity returns one managed entity by ID, wrapped in the same per-handle
// lock guard as Entities.
func (b *Bridge) Entity(id string) (climate.Entity, bool) {
	b.entityMu.RLock()
	defer b.entityMu.RUnlock()

	handle, ok := b.entities[id]
	if !ok {
		return nil, false
	}
	return &guardedEntity{h: handle}, true
}

// guardedEntity serialises every entity call through the handle's command
// lock. It is what Entities/Entity hand to callers outside the bridge.
type guardedEntity struct {
	h *entityHandle
}

var _ climate.Entity = (*guardedEntity)(nil)

func (g *guardedEntity) UniqueID() string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.UniqueID()
}

func (g *guardedEntity) Name() string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.Name()
}

func (g *guardedEntity) Available() bool {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.Available()
}

func (g *guardedEntity) SupportedFeatures() climate.EntityFeature {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SupportedFeatures()
}

func (g *guardedEntity) HVACMode() climate.HVACMode {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.HVACMode()
}

func (g *guardedEntity) HVACModes() []climate.HVACMode {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.HVACModes()
}

func (g *guardedEntity) SetHVACMode(ctx context.Context, mode climate.HVACMode) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SetHVACMode(ctx, mode)
}

func (g *guardedEntity) PresetMode() string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.PresetMode()
}

func (g *guardedEntity) PresetModes() []string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.PresetModes()
}

func (g *guardedEntity) SetPresetMode(ctx context.Context, preset string) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SetPresetMode(ctx, preset)
}

func (g *guardedEntity) CurrentTemperature() (float64, bool) {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.CurrentTemperature()
}

func (g *guardedEntity) TargetTemperature() (float64, bool) {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.TargetTemperature()
}

func (g *guardedEntity) SetTemperature(ctx context.Context, req climate.TemperatureRequest) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SetTemperature(ctx, req)
}

func (g *guardedEntity) TemperatureUnit() climate.TemperatureUnit {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.TemperatureUnit()
}

func (g *guardedEntity) TargetTemperatureStep() float64 {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.TargetTemperatureStep()
}

func (g *guardedEntity) MinTemp() float64 {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.MinTemp()
}

func (g *guardedEntity) MaxTemp() float64 {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.MaxTemp()
}

func (g *guardedEntity) FanMode() string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.FanMode()
}

func (g *guardedEntity) FanModes() []string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.FanModes()
}

func (g *guardedEntity) SetFanMode(ctx context.Context, mode string) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SetFanMode(ctx, mode)
}

func (g *guardedEntity) SwingMode() string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SwingMode()
}

func (g *guardedEntity) SwingModes() []string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SwingModes()
}

func (g *guardedEntity) SetSwingMode(ctx context.Context, mode string) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SetSwingMode(ctx, mode)
}

func (g *guardedEntity) SwingHorizontalMode() string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SwingHorizontalMode()
}

func (g *guardedEntity) SwingHorizontalModes() []string {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SwingHorizontalModes()
}

func (g *guardedEntity) SetSwingHorizontalMode(ctx context.Context, mode string) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.SetSwingHorizontalMode(ctx, mode)
}

func (g *guardedEntity) TurnOn(ctx context.Context) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.TurnOn(ctx)
}

func (g *guardedEntity) TurnOff(ctx context.Context) error {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.TurnOff(ctx)
}

func (g *guardedEntity) State() map[string]any {
	g.h.mu.Lock()
	defer g.h.mu.Unlock()
	return g.h.entity.State()
}

// APIConnected implements StatusSource.
func (b *Bridge) APIConnected() bool {
	return b.session != nil && b.session.IsConnected()
}

// Stats implements StatusSource.
func (b *Bridge) Stats() BridgeStatistics {
	return BridgeStatistics{
		CommandsReceived: b.commandsReceived.Load(),
		StatesPublished:  b.statesPublished.Load(),
		Errors:           b.errorCount.Load(),
	}
}

// LastPoll implements StatusSource.
func (b *Bridge) LastPoll() (time.Time, bool) {
	b.lastPollMu.RLock()
	defer b.lastPollMu.RUnlock()
	return b.lastPoll, !b.lastPoll.IsZero()
}

// EntityCount implements StatusSource.
func (b *Bridge) EntityCount() int {
	b.entityMu.RLock()
	defer b.entityMu.RUnlock()
	return len(b.entities)
}

// BridgeMetrics contains metrics data for the API metrics endpoint.
type BridgeMetrics struct {
	Connected        bool
	Status           string
	CommandsReceived uint64
	StatesPublished  uint64
	Errors           uint64
	EntitiesManaged  int
}

// GetMetrics returns current bridge metrics for the API metrics endpoint.
func (b *Bridge) GetMetrics() BridgeMetrics {
	connected := b.APIConnected()
	status := "disconnected"
	if connected {
		status = "healthy"
	}

	return BridgeMetrics{
		Connected:        connected,
		Status:           status,
		CommandsReceived: b.commandsReceived.Load(),
		StatesPublished:  b.statesPublished.Load(),
		Errors:           b.errorCount.Load(),
		EntitiesManaged:  b.EntityCount(),
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()

	if b.health != nil {
		b.health.SetLogger(logger)
	}
}

// logInfo logs an info message if logger is set.
func (b *Bridge) logInfo(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Info(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (b *Bridge) logError(msg string, err error) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}

// logDebug logs a debug message if logger is set.
func (b *Bridge) logDebug(msg string, keysAndValues ...any) {
	b.loggerMu.RLock()
	logger := b.logger
	b.loggerMu.RUnlock()

	if logger != nil {
		logger.Debug(msg, keysAndValues...)
	}
}
