// Package mqtt connects the schematic service to an MQTT broker.
//
// The broker carries circuit change events to anything outside the editor
// that wants to follow a circuit: dashboards, loggers, other editors.
//
//	schematic serve → MQTT broker → subscribers (schematic watch, ...)
//
// This package manages:
//   - Connection with auto-reconnect and restored subscriptions
//   - Publishing with QoS and payload size checks
//   - Retained online/offline status with a Last Will for crashes
//   - Topic building under a configurable prefix
//
// # Topics
//
//	<prefix>/circuit/event/<type>   change events (addElement, moveElement, ...)
//	<prefix>/project/<name>/saved   project saves
//	<prefix>/system/status/<client> retained online/offline status
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(client.Topics().CircuitEvent("addElement"), msg)
package mqtt
