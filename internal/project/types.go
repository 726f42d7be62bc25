package project

import "time"

// MaxNameLength is the maximum project name length in characters.
const MaxNameLength = 100

// Project is a saved circuit.
type Project struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Netlist      string    `json:"netlist,omitempty"`
	ElementCount int       `json:"element_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
