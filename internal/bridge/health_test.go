package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"
)

// mockPublisher records published messages for health reporter tests.
type mockPublisher struct {
	mu        sync.Mutex
	published []publishedMessage
	connected bool
}

type publishedMessage struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

func (m *mockPublisher) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMessage{topic, payload, qos, retained})
	return nil
}

func (m *mockPublisher) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockPublisher) last(t *testing.T) publishedMessage {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.published) == 0 {
		t.Fatal("no messages published")
	}
	return m.published[len(m.published)-1]
}

func (m *mockPublisher) lastHealth(t *testing.T) HealthMessage {
	t.Helper()
	msg := m.last(t)
	var health HealthMessage
	if err := json.Unmarshal(msg.payload, &health); err != nil {
		t.Fatalf("failed to decode health payload: %v", err)
	}
	return health
}

// mockStatusSource provides fixed operational facts.
type mockStatusSource struct {
	connected bool
	stats     BridgeStatistics
	lastPoll  time.Time
	entities  int
}

func (m *mockStatusSource) APIConnected() bool          { return m.connected }
func (m *mockStatusSource) Stats() BridgeStatistics     { return m.stats }
func (m *mockStatusSource) LastPoll() (time.Time, bool) { return m.lastPoll, !m.lastPoll.IsZero() }
func (m *mockStatusSource) EntityCount() int            { return m.entities }

func newTestReporter(pub *mockPublisher, src StatusSource) *HealthReporter {
	return NewHealthReporter(HealthReporterConfig{
		BridgeID:  "thinq",
		Version:   "1.2.3",
		Interval:  time.Hour, // periodic publishes not exercised directly
		Publisher: pub,
		Source:    src,
	})
}

func TestHealthReporterPublishStarting(t *testing.T) {
	pub := &mockPublisher{connected: true}
	h := newTestReporter(pub, &mockStatusSource{connected: true})

	if err := h.PublishStarting(); err != nil {
		t.Fatalf("PublishStarting failed: %v", err)
	}

	msg := pub.last(t)
	if msg.topic != "graylogic/health/thinq" {
		t.Errorf("topic = %q, want graylogic/health/thinq", msg.topic)
	}
	if msg.qos != 1 || !msg.retained {
		t.Errorf("qos/retained = %d/%v, want 1/true", msg.qos, msg.retained)
	}

	health := pub.lastHealth(t)
	if health.Status != HealthStarting {
		t.Errorf("Status = %q, want starting", health.Status)
	}
	if health.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", health.Version)
	}
}

func TestHealthReporterHealthy(t *testing.T) {
	lastPoll := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)
	pub := &mockPublisher{connected: true}
	src := &mockStatusSource{
		connected: true,
		stats:     BridgeStatistics{CommandsReceived: 42, StatesPublished: 120, Errors: 3},
		lastPoll:  lastPoll,
		entities:  3,
	}
	h := newTestReporter(pub, src)

	if err := h.PublishNow(); err != nil {
		t.Fatalf("PublishNow failed: %v", err)
	}

	health := pub.lastHealth(t)
	if health.Status != HealthHealthy {
		t.Errorf("Status = %q, want healthy", health.Status)
	}
	if health.Reason != "" {
		t.Errorf("Reason = %q, want empty", health.Reason)
	}
	if health.EntitiesManaged != 3 {
		t.Errorf("EntitiesManaged = %d, want 3", health.EntitiesManaged)
	}
	if health.Statistics == nil || health.Statistics.CommandsReceived != 42 {
		t.Errorf("Statistics = %+v, want commands_received 42", health.Statistics)
	}
	if health.Connection == nil || health.Connection.Status != "connected" {
		t.Errorf("Connection = %+v, want connected", health.Connection)
	}
	if health.Connection.LastPoll == nil || !health.Connection.LastPoll.Equal(lastPoll) {
		t.Errorf("LastPoll = %v, want %v", health.Connection.LastPoll, lastPoll)
	}
}

func TestHealthReporterDegraded(t *testing.T) {
	tests := []struct {
		name       string
		mqttUp     bool
		apiUp      bool
		wantReason string
	}{
		{"MQTT down", false, true, "MQTT disconnected"},
		{"API down", true, false, "ThinQ API disconnected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{connected: tt.mqttUp}
			h := newTestReporter(pub, &mockStatusSource{connected: tt.apiUp})

			if err := h.PublishNow(); err != nil {
				t.Fatalf("PublishNow failed: %v", err)
			}

			health := pub.lastHealth(t)
			if health.Status != HealthDegraded {
				t.Errorf("Status = %q, want degraded", health.Status)
			}
			if health.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", health.Reason, tt.wantReason)
			}
		})
	}
}

func TestHealthReporterStop(t *testing.T) {
	pub := &mockPublisher{connected: true}
	h := newTestReporter(pub, &mockStatusSource{connected: true})

	h.Start(context.Background())
	h.Stop()
	h.Stop() // second call must not panic

	health := pub.lastHealth(t)
	if health.Status != HealthStopping {
		t.Errorf("final Status = %q, want stopping", health.Status)
	}
}

func TestHealthReporterLWT(t *testing.T) {
	h := newTestReporter(&mockPublisher{}, nil)

	if topic := h.GetLWTTopic(); topic != "graylogic/health/thinq" {
		t.Errorf("LWT topic = %q, want graylogic/health/thinq", topic)
	}

	payload, err := h.GetLWTPayload()
	if err != nil {
		t.Fatalf("GetLWTPayload failed: %v", err)
	}

	var msg HealthMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("failed to decode LWT payload: %v", err)
	}
	if msg.Status != HealthOffline {
		t.Errorf("LWT status = %q, want offline", msg.Status)
	}
	if msg.Bridge != "thinq" {
		t.Errorf("LWT bridge = %q, want thinq", msg.Bridge)
	}
}
