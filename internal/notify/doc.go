// Package notify fans circuit change events out to the world outside the
// editor: MQTT subscribers, InfluxDB telemetry and WebSocket clients.
//
// Circuit observers run synchronously inside the mutation that raised the
// event, so they must be quick and must not call back into the circuit.
// Relay satisfies that contract by copying each event into a bounded queue
// and returning; Run delivers the queued messages to every Sink on its own
// goroutine.
//
//	circuit.Service ──OnCircuitEvent──▶ Relay queue ──Run──▶ MQTTSink
//	                                                     ├─▶ TelemetrySink
//	                                                     └─▶ HubSink
//
// When the queue is full new messages are dropped and counted.
package notify
