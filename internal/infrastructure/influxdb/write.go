package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurements written by the schematic service.
const (
	MeasurementCircuitEdit = "circuit_edit"
	MeasurementProjectSave = "project_save"
)

// CircuitEditPoint builds the point recorded for one circuit change event.
// elementType is empty for events without an element, such as importState.
func CircuitEditPoint(event, elementType string, nodes int, at time.Time) *write.Point {
	tags := map[string]string{"event": event}
	if elementType != "" {
		tags["element_type"] = elementType
	}
	return write.NewPoint(
		MeasurementCircuitEdit,
		tags,
		map[string]any{
			"count": 1,
			"nodes": nodes,
		},
		at,
	)
}

// ProjectSavePoint builds the point recorded when a project is saved.
func ProjectSavePoint(name string, elements int, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementProjectSave,
		map[string]string{"project": name},
		map[string]any{"elements": elements},
		at,
	)
}

// WriteCircuitEdit queues a circuit_edit point.
func (c *Client) WriteCircuitEdit(event, elementType string, nodes int, at time.Time) {
	c.enqueue(CircuitEditPoint(event, elementType, nodes, at))
}

// WriteProjectSave queues a project_save point.
func (c *Client) WriteProjectSave(name string, elements int, at time.Time) {
	c.enqueue(ProjectSavePoint(name, elements, at))
}
