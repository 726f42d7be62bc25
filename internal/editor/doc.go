// Package editor is the editing session behind the HTTP API and the CLI.
//
// A Session owns one open circuit together with everything that edits it:
//
//	┌──────────────────────────── Session ────────────────────────────┐
//	│                                                                 │
//	│  Place / Delete ──▶ history.Execute(delta command)              │
//	│  Move / Update / SplitWire / DrawWire ──▶ history.Gesture       │
//	│  Netlist / LoadNetlist ──▶ netlist.Adapter                      │
//	│  Save / Open ──▶ project.Repository                             │
//	│                                                                 │
//	│        └──────────────▶ circuit.Service ──▶ observers           │
//	└─────────────────────────────────────────────────────────────────┘
//
// The circuit core is single-threaded. Session serialises callers with a
// mutex, so observers run while the lock is held and must not call back
// into the session.
package editor
