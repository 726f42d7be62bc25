package notify

import (
	"time"

	"github.com/nerrad567/schematic-core/internal/circuit"
)

// TypeProjectSaved is the message type announcing a project save. Circuit
// events use their circuit.EventType name.
const TypeProjectSaved = "projectSaved"

// Message is one notification as delivered to sinks.
type Message struct {
	Type      string           `json:"type"`
	Element   *circuit.Element `json:"element,omitempty"`
	Project   string           `json:"project,omitempty"`
	Elements  int              `json:"elements,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// IsProjectSaved reports whether m announces a project save.
func (m Message) IsProjectSaved() bool {
	return m.Type == TypeProjectSaved
}

// ElementType returns the type of the element the message carries, or "".
func (m Message) ElementType() string {
	if m.Element == nil {
		return ""
	}
	return string(m.Element.Type)
}

// NodeCount returns the number of nodes of the carried element.
func (m Message) NodeCount() int {
	if m.Element == nil {
		return 0
	}
	return len(m.Element.Nodes)
}
