package mqtt

import "strings"

// DefaultTopicPrefix is used when no prefix is configured.
const DefaultTopicPrefix = "schematic"

// Topics builds the MQTT topics published by the schematic service.
//
//	topics := mqtt.NewTopics("lab")
//	topics.CircuitEvent("addElement")
//	// Returns: "lab/circuit/event/addElement"
type Topics struct {
	prefix string
}

// NewTopics returns a topic builder rooted at prefix. Surrounding slashes are
// dropped and an empty prefix falls back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Prefix returns the root of every topic.
func (t Topics) Prefix() string {
	if t.prefix == "" {
		return DefaultTopicPrefix
	}
	return t.prefix
}

// CircuitEvent returns the topic for one circuit change event type.
//
// Example: schematic/circuit/event/moveElement
func (t Topics) CircuitEvent(eventType string) string {
	return t.Prefix() + "/circuit/event/" + eventType
}

// AllCircuitEvents returns a pattern matching every circuit change event.
//
// Pattern: schematic/circuit/event/+
func (t Topics) AllCircuitEvents() string {
	return t.Prefix() + "/circuit/event/+"
}

// ProjectSaved returns the topic announcing a saved project.
//
// Example: schematic/project/amplifier/saved
func (t Topics) ProjectSaved(name string) string {
	return t.Prefix() + "/project/" + name + "/saved"
}

// AllProjectSaves returns a pattern matching every project save.
//
// Pattern: schematic/project/+/saved
func (t Topics) AllProjectSaves() string {
	return t.Prefix() + "/project/+/saved"
}

// SystemStatus returns the retained online/offline status topic of one
// client, so a watcher going away does not mark the server offline.
//
// Example: schematic/system/status/schematic-core
func (t Topics) SystemStatus(clientID string) string {
	return t.Prefix() + "/system/status/" + clientID
}

// All returns a pattern matching every topic under the prefix.
func (t Topics) All() string {
	return t.Prefix() + "/#"
}

