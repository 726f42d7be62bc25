// Package project stores named circuits.
//
// A project is a circuit saved under a unique name. The circuit is kept as
// netlist text, the same format the editor exports, so a project can be
// opened by anything that reads netlists.
//
//	editor.Session ──Save/Open──▶ Repository ──▶ SQLite (projects table)
//
// Names are trimmed, 1 to 100 characters, and may not contain '/', '#',
// '+' or control characters so they can appear in URLs and MQTT topics.
package project
