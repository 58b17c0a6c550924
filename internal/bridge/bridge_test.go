package bridge

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-thinq/internal/thinq"
)

// mockMQTT is an in-memory MQTTClient recording publishes and subscriptions.
type mockMQTT struct {
	mu        sync.Mutex
	published []publishedMessage
	handlers  map[string]func(topic string, payload []byte)
	connected bool
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{
		handlers:  make(map[string]func(topic string, payload []byte)),
		connected: true,
	}
}

func (m *mockMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{topic, payload, qos, retained})
	return nil
}

func (m *mockMQTT) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTT) Disconnect(quiesce uint) {}

// deliver simulates an inbound broker message on the command topic.
func (m *mockMQTT) deliver(t *testing.T, topic string, payload []byte) {
	t.Helper()
	m.mu.Lock()
	handler, ok := m.handlers[CommandSubscribeTopic()]
	m.mu.Unlock()
	if !ok {
		t.Fatal("bridge did not subscribe to the command topic")
	}
	handler(topic, payload)
}

func (m *mockMQTT) messagesOn(topic string) []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []publishedMessage
	for _, p := range m.published {
		if p.topic == topic {
			out = append(out, p)
		}
	}
	return out
}

func (m *mockMQTT) lastAck(t *testing.T, entityID string) AckMessage {
	t.Helper()
	msgs := m.messagesOn(AckTopic(entityID))
	if len(msgs) == 0 {
		t.Fatalf("no ack published for %s", entityID)
	}
	var ack AckMessage
	if err := json.Unmarshal(msgs[len(msgs)-1].payload, &ack); err != nil {
		t.Fatalf("failed to decode ack: %v", err)
	}
	return ack
}

func newStartedBridge(t *testing.T) (*Bridge, *fakeSession, *mockMQTT) {
	t.Helper()

	ses := &fakeSession{
		devices: []thinq.DeviceInfo{
			{ID: "dev-ac-1", Alias: "Living Room", Type: thinq.DeviceAC, ModelName: "RAC_056905"},
			{ID: "dev-fridge-1", Alias: "Kitchen", Type: thinq.DeviceRefrigerator, ModelName: "GR-X24"},
			{ID: "dev-washer-1", Alias: "Laundry", Type: "WASHER"},
		},
		acProfile: thinq.ACProfile{
			OpModes:   []string{thinq.OpModeCool, thinq.OpModeHeat, thinq.OpModeEnergySaving},
			FanSpeeds: []string{"LOW", "HIGH"},
		},
		acStatus: thinq.ACStatus{
			IsOn:        true,
			OpMode:      thinq.OpModeCool,
			CurrentTemp: floatPtr(24),
			TargetTemp:  floatPtr(21),
			FanSpeed:    "LOW",
		},
		fridgeProfile: thinq.RefrigeratorProfile{
			FridgeTempRange:  [2]float64{1, 7},
			FreezerTempRange: [2]float64{-24, -16},
		},
		fridgeStatus: thinq.RefrigeratorStatus{
			FridgeTemp:       "4",
			FreezerTemp:      "-18",
			SetValuesAllowed: true,
		},
		connected: true,
	}
	mqttClient := newMockMQTT()

	b, err := NewBridge(BridgeOptions{
		BridgeID:   "thinq",
		Version:    "test",
		Session:    ses,
		MQTTClient: mqttClient,
		// Long intervals keep the background loops quiet during tests.
		PollInterval:   time.Hour,
		HealthInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewBridge failed: %v", err)
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(b.Stop)

	return b, ses, mqttClient
}

func sendCommand(t *testing.T, m *mockMQTT, entityID string, cmd CommandMessage) {
	t.Helper()
	cmd.EntityID = entityID
	if cmd.ID == "" {
		cmd.ID = "cmd-test"
	}
	cmd.Timestamp = time.Now().UTC()
	payload, err := json.Marshal(&cmd)
	if err != nil {
		t.Fatalf("failed to marshal command: %v", err)
	}
	m.deliver(t, CommandTopic(entityID), payload)
}

func TestBridgeDiscovery(t *testing.T) {
	b, _, mqttClient := newStartedBridge(t)

	// One AC entity plus two refrigerator compartments; the washer is skipped.
	entities := b.Entities()
	if len(entities) != 3 {
		t.Fatalf("entity count = %d, want 3", len(entities))
	}
	wantIDs := []string{"dev-ac-1-AC", "dev-fridge-1-fridge", "dev-fridge-1-freezer"}
	for i, want := range wantIDs {
		if entities[i].UniqueID() != want {
			t.Errorf("entity[%d] = %q, want %q", i, entities[i].UniqueID(), want)
		}
	}

	msgs := mqttClient.messagesOn(DiscoveryTopic())
	if len(msgs) != 1 {
		t.Fatalf("discovery messages = %d, want 1", len(msgs))
	}
	var discovery DiscoveryMessage
	if err := json.Unmarshal(msgs[0].payload, &discovery); err != nil {
		t.Fatalf("failed to decode discovery: %v", err)
	}
	if discovery.ID == "" {
		t.Error("discovery ID should be set")
	}
	if len(discovery.Entities) != 3 {
		t.Errorf("discovered entities = %d, want 3", len(discovery.Entities))
	}
	if discovery.Entities[0].DeviceType != "AC" {
		t.Errorf("DeviceType = %q, want AC", discovery.Entities[0].DeviceType)
	}

	// Every entity state is published retained after discovery.
	for _, id := range wantIDs {
		states := mqttClient.messagesOn(StateTopic(id))
		if len(states) != 1 {
			t.Errorf("state messages for %s = %d, want 1", id, len(states))
			continue
		}
		if !states[0].retained || states[0].qos != 1 {
			t.Errorf("state for %s qos/retained = %d/%v, want 1/true",
				id, states[0].qos, states[0].retained)
		}
	}
}

func TestBridgeCommandAccepted(t *testing.T) {
	_, ses, mqttClient := newStartedBridge(t)

	sendCommand(t, mqttClient, "dev-ac-1-AC", CommandMessage{
		ID:         "cmd-1",
		Command:    "set_hvac_mode",
		Parameters: map[string]any{"hvac_mode": "heat"},
		Source:     "api",
	})

	ack := mqttClient.lastAck(t, "dev-ac-1-AC")
	if ack.Status != AckAccepted {
		t.Fatalf("ack status = %q, want accepted (error: %+v)", ack.Status, ack.Error)
	}
	if ack.CommandID != "cmd-1" {
		t.Errorf("ack CommandID = %q, want cmd-1", ack.CommandID)
	}

	got := ses.sentCommands()
	if len(got) != 1 || got[0] != "op_mode" {
		t.Errorf("commands sent = %v, want [op_mode]", got)
	}

	// Optimistic update: a second state publish follows the ack.
	states := mqttClient.messagesOn(StateTopic("dev-ac-1-AC"))
	if len(states) != 2 {
		t.Fatalf("state messages = %d, want 2 (initial + optimistic)", len(states))
	}
	var state StateMessage
	if err := json.Unmarshal(states[1].payload, &state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.State["hvac_mode"] != "heat" {
		t.Errorf("published hvac_mode = %v, want heat", state.State["hvac_mode"])
	}
}

func TestBridgeCommandEntityNotFound(t *testing.T) {
	_, _, mqttClient := newStartedBridge(t)

	sendCommand(t, mqttClient, "no-such-entity", CommandMessage{
		Command:    "turn_on",
		Parameters: nil,
	})

	ack := mqttClient.lastAck(t, "no-such-entity")
	if ack.Status != AckFailed {
		t.Errorf("ack status = %q, want failed", ack.Status)
	}
	if ack.Error == nil || ack.Error.Code != ErrCodeEntityNotFound {
		t.Errorf("error = %+v, want code ENTITY_NOT_FOUND", ack.Error)
	}
}

func TestBridgeCommandFailures(t *testing.T) {
	tests := []struct {
		name     string
		entityID string
		cmd      CommandMessage
		wantCode string
	}{
		{
			name:     "unknown command",
			entityID: "dev-ac-1-AC",
			cmd:      CommandMessage{Command: "defrost"},
			wantCode: ErrCodeInvalidParameters,
		},
		{
			name:     "missing parameter",
			entityID: "dev-ac-1-AC",
			cmd:      CommandMessage{Command: "set_fan_mode"},
			wantCode: ErrCodeInvalidParameters,
		},
		{
			name:     "invalid hvac mode",
			entityID: "dev-ac-1-AC",
			cmd: CommandMessage{
				Command:    "set_hvac_mode",
				Parameters: map[string]any{"hvac_mode": "superheat"},
			},
			wantCode: ErrCodeInvalidParameters,
		},
		{
			name:     "unsupported operation",
			entityID: "dev-fridge-1-fridge",
			cmd: CommandMessage{
				Command:    "set_preset_mode",
				Parameters: map[string]any{"preset_mode": "eco"},
			},
			wantCode: ErrCodeNotSupported,
		},
		{
			name:     "empty set_temperature",
			entityID: "dev-ac-1-AC",
			cmd:      CommandMessage{Command: "set_temperature", Parameters: map[string]any{}},
			wantCode: ErrCodeInvalidParameters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, mqttClient := newStartedBridge(t)

			sendCommand(t, mqttClient, tt.entityID, tt.cmd)

			ack := mqttClient.lastAck(t, tt.entityID)
			if ack.Status != AckFailed {
				t.Errorf("ack status = %q, want failed", ack.Status)
			}
			if ack.Error == nil || ack.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", ack.Error, tt.wantCode)
			}
		})
	}
}

func TestBridgeCommandDeviceRejected(t *testing.T) {
	_, ses, mqttClient := newStartedBridge(t)

	ses.mu.Lock()
	ses.controlErr = thinq.ErrCommandFailed
	ses.mu.Unlock()

	sendCommand(t, mqttClient, "dev-ac-1-AC", CommandMessage{Command: "turn_off"})

	ack := mqttClient.lastAck(t, "dev-ac-1-AC")
	if ack.Status != AckFailed {
		t.Errorf("ack status = %q, want failed", ack.Status)
	}
	if ack.Error == nil || ack.Error.Code != ErrCodeDeviceRejected {
		t.Errorf("error = %+v, want code DEVICE_REJECTED", ack.Error)
	}

	// No optimistic state publish after a failed command.
	states := mqttClient.messagesOn(StateTopic("dev-ac-1-AC"))
	if len(states) != 1 {
		t.Errorf("state messages = %d, want 1 (initial only)", len(states))
	}
}

func TestBridgeSetSleepTime(t *testing.T) {
	_, ses, mqttClient := newStartedBridge(t)

	sendCommand(t, mqttClient, "dev-ac-1-AC", CommandMessage{
		Command:    "set_sleep_time",
		Parameters: map[string]any{"minutes": 30.0},
	})

	ack := mqttClient.lastAck(t, "dev-ac-1-AC")
	if ack.Status != AckAccepted {
		t.Fatalf("ack status = %q, want accepted (error: %+v)", ack.Status, ack.Error)
	}
	got := ses.sentCommands()
	if len(got) != 1 || got[0] != "sleep_time" {
		t.Errorf("commands sent = %v, want [sleep_time]", got)
	}

	// Refrigerator compartments have no sleep timer.
	sendCommand(t, mqttClient, "dev-fridge-1-fridge", CommandMessage{
		Command:    "set_sleep_time",
		Parameters: map[string]any{"minutes": 30.0},
	})
	ack = mqttClient.lastAck(t, "dev-fridge-1-fridge")
	if ack.Error == nil || ack.Error.Code != ErrCodeNotSupported {
		t.Errorf("error = %+v, want code NOT_SUPPORTED", ack.Error)
	}
}

func TestBridgeSetTemperatureCommand(t *testing.T) {
	_, ses, mqttClient := newStartedBridge(t)

	sendCommand(t, mqttClient, "dev-ac-1-AC", CommandMessage{
		Command: "set_temperature",
		Parameters: map[string]any{
			"hvac_mode":   "cool",
			"temperature": 19.5,
		},
	})

	ack := mqttClient.lastAck(t, "dev-ac-1-AC")
	if ack.Status != AckAccepted {
		t.Fatalf("ack status = %q, want accepted (error: %+v)", ack.Status, ack.Error)
	}

	got := ses.sentCommands()
	// Device already cooling: mode command plus setpoint.
	if len(got) != 2 || got[0] != "op_mode" || got[1] != "target_temp" {
		t.Errorf("commands sent = %v, want [op_mode target_temp]", got)
	}
}

func TestBridgePollSuppressesUnchangedState(t *testing.T) {
	b, ses, mqttClient := newStartedBridge(t)

	before := len(mqttClient.messagesOn(StateTopic("dev-ac-1-AC")))

	// Nothing changed: poll publishes nothing.
	b.pollOnce()
	after := len(mqttClient.messagesOn(StateTopic("dev-ac-1-AC")))
	if after != before {
		t.Errorf("state messages after no-change poll = %d, want %d", after, before)
	}

	// Device state changed: poll publishes the new state.
	ses.setACStatus(thinq.ACStatus{IsOn: true, OpMode: thinq.OpModeHeat})
	b.pollOnce()
	states := mqttClient.messagesOn(StateTopic("dev-ac-1-AC"))
	if len(states) != before+1 {
		t.Fatalf("state messages after change = %d, want %d", len(states), before+1)
	}
	var state StateMessage
	if err := json.Unmarshal(states[len(states)-1].payload, &state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.State["hvac_mode"] != "heat" {
		t.Errorf("published hvac_mode = %v, want heat", state.State["hvac_mode"])
	}
}

func TestBridgePollMarksUnavailable(t *testing.T) {
	b, ses, mqttClient := newStartedBridge(t)

	ses.mu.Lock()
	ses.statusErr = thinq.ErrRequestFailed
	ses.mu.Unlock()

	b.pollOnce()

	states := mqttClient.messagesOn(StateTopic("dev-ac-1-AC"))
	var state StateMessage
	if err := json.Unmarshal(states[len(states)-1].payload, &state); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if state.Available {
		t.Error("entity should be unavailable after a failed refresh")
	}

	if _, ok := b.LastPoll(); ok {
		t.Error("failed poll must not advance the last-poll timestamp")
	}
	if b.Stats().Errors == 0 {
		t.Error("failed poll should increment the error counter")
	}
}

func TestBridgeStats(t *testing.T) {
	b, _, mqttClient := newStartedBridge(t)

	sendCommand(t, mqttClient, "dev-ac-1-AC", CommandMessage{Command: "turn_off"})

	stats := b.Stats()
	if stats.CommandsReceived != 1 {
		t.Errorf("CommandsReceived = %d, want 1", stats.CommandsReceived)
	}
	if stats.StatesPublished < 3 {
		t.Errorf("StatesPublished = %d, want at least 3", stats.StatesPublished)
	}

	metrics := b.GetMetrics()
	if !metrics.Connected {
		t.Error("metrics should report the API session connected")
	}
	if metrics.EntitiesManaged != 3 {
		t.Errorf("EntitiesManaged = %d, want 3", metrics.EntitiesManaged)
	}
}

func TestBridgeEntityLookup(t *testing.T) {
	b, _, _ := newStartedBridge(t)

	e, ok := b.Entity("dev-ac-1-AC")
	if !ok {
		t.Fatal("Entity(dev-ac-1-AC) not found")
	}
	if e.Name() != "Living Room" {
		t.Errorf("Name = %q, want Living Room", e.Name())
	}

	if _, ok := b.Entity("missing"); ok {
		t.Error("Entity(missing) should not resolve")
	}
}

// Entity reads handed out by Entities/Entity must hold the per-entity lock,
// so an HTTP read concurrent with the poll loop never touches adapter state
// mid-update. Run with -race to catch regressions.
func TestBridgeConcurrentEntityReads(t *testing.T) {
	b, ses, _ := newStartedBridge(t)

	const iterations = 200

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			for _, e := range b.Entities() {
				_ = e.State()
				_ = e.HVACMode()
				_ = e.PresetMode()
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			mode := "COOL"
			if i%2 == 0 {
				mode = "HEAT"
			}
			ses.setACStatus(thinq.ACStatus{
				IsOn:        true,
				OpMode:      mode,
				CurrentTemp: floatPtr(24),
				TargetTemp:  floatPtr(21),
			})
			b.pollOnce()
		}
	}()

	wg.Wait()

	e, ok := b.Entity("dev-ac-1-AC")
	if !ok {
		t.Fatal("Entity(dev-ac-1-AC) not found after concurrent reads")
	}
	if mode := e.HVACMode(); mode != "heat" && mode != "cool" {
		t.Errorf("HVACMode after concurrent polls = %q, want heat or cool", mode)
	}
}

func TestBridgeInvalidTopicIgnored(t *testing.T) {
	_, _, mqttClient := newStartedBridge(t)

	mqttClient.deliver(t, "graylogic/command/thinq/a/b", []byte(`{"id":"x","command":"turn_on"}`))

	// No ack for a malformed topic.
	m := mqttClient
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.published {
		if strings.HasPrefix(p.topic, "graylogic/ack/") {
			t.Errorf("unexpected ack on %s", p.topic)
		}
	}
}

func TestBridgeRediscover(t *testing.T) {
	b, ses, mqttClient := newStartedBridge(t)

	// Refrigerator removed from the account.
	ses.mu.Lock()
	ses.devices = ses.devices[:1]
	ses.mu.Unlock()

	if err := b.Rediscover(context.Background()); err != nil {
		t.Fatalf("Rediscover failed: %v", err)
	}

	if got := b.EntityCount(); got != 1 {
		t.Errorf("EntityCount after rediscover = %d, want 1", got)
	}
	if _, ok := b.Entity("dev-fridge-1-fridge"); ok {
		t.Error("removed compartment should no longer resolve")
	}

	msgs := mqttClient.messagesOn(DiscoveryTopic())
	if len(msgs) != 2 {
		t.Errorf("discovery messages = %d, want 2", len(msgs))
	}
}

func TestAckCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid value", ErrInvalidValue, ErrCodeInvalidParameters},
		{"not supported", ErrNotSupported, ErrCodeNotSupported},
		{"command failed", thinq.ErrCommandFailed, ErrCodeDeviceRejected},
		{"request failed", thinq.ErrRequestFailed, ErrCodeDeviceUnreachable},
		{"not connected", thinq.ErrNotConnected, ErrCodeDeviceUnreachable},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"anything else", thinq.ErrUnsupportedDevice, ErrCodeBridgeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ackCodeForError(tt.err); got != tt.want {
				t.Errorf("ackCodeForError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
