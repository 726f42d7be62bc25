package notify

import (
	"context"
	"time"

	"github.com/nerrad567/schematic-core/internal/infrastructure/mqtt"
)

// WebSocket channels fed by HubSink.
const (
	ChannelCircuitChanged = "circuit.changed"
	ChannelProjectSaved   = "project.saved"
)

// Publisher is the part of the MQTT client used by MQTTSink.
type Publisher interface {
	PublishJSON(topic string, v any) error
}

// MQTTSink publishes messages to the broker, circuit events under
// <prefix>/circuit/event/<type> and saves under <prefix>/project/<name>/saved.
type MQTTSink struct {
	publisher Publisher
	topics    mqtt.Topics
}

// NewMQTTSink creates a sink publishing through p under the given topics.
func NewMQTTSink(p Publisher, topics mqtt.Topics) *MQTTSink {
	return &MQTTSink{publisher: p, topics: topics}
}

// Name implements Sink.
func (s *MQTTSink) Name() string { return "mqtt" }

// Topic returns the topic msg is published on.
func (s *MQTTSink) Topic(msg Message) string {
	if msg.IsProjectSaved() {
		return s.topics.ProjectSaved(msg.Project)
	}
	return s.topics.CircuitEvent(msg.Type)
}

// Deliver implements Sink. The publish waits for the broker acknowledgment
// bounded by the client's own timeout.
func (s *MQTTSink) Deliver(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.publisher.PublishJSON(s.Topic(msg), msg)
}

// TelemetryWriter is the part of the InfluxDB client used by TelemetrySink.
type TelemetryWriter interface {
	WriteCircuitEdit(event, elementType string, nodes int, at time.Time)
	WriteProjectSave(name string, elements int, at time.Time)
}

// TelemetrySink records every message as an InfluxDB point.
type TelemetrySink struct {
	writer TelemetryWriter
}

// NewTelemetrySink creates a sink writing through w.
func NewTelemetrySink(w TelemetryWriter) *TelemetrySink {
	return &TelemetrySink{writer: w}
}

// Name implements Sink.
func (s *TelemetrySink) Name() string { return "influxdb" }

// Deliver implements Sink. Writes are batched by the client, so Deliver
// does not wait for the server.
func (s *TelemetrySink) Deliver(_ context.Context, msg Message) error {
	if msg.IsProjectSaved() {
		s.writer.WriteProjectSave(msg.Project, msg.Elements, msg.Timestamp)
		return nil
	}
	s.writer.WriteCircuitEdit(msg.Type, msg.ElementType(), msg.NodeCount(), msg.Timestamp)
	return nil
}

// Broadcaster is the part of the WebSocket hub used by HubSink.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// HubSink forwards messages to WebSocket clients.
type HubSink struct {
	hub Broadcaster
}

// NewHubSink creates a sink broadcasting through hub.
func NewHubSink(hub Broadcaster) *HubSink {
	return &HubSink{hub: hub}
}

// Name implements Sink.
func (s *HubSink) Name() string { return "websocket" }

// Deliver implements Sink.
func (s *HubSink) Deliver(_ context.Context, msg Message) error {
	channel := ChannelCircuitChanged
	if msg.IsProjectSaved() {
		channel = ChannelProjectSaved
	}
	s.hub.Broadcast(channel, msg)
	return nil
}
