// Package logging builds the service's structured logger on log/slog.
//
// Every entry carries service and version fields; subsystems add their own
// with Component:
//
//	log := logging.New(cfg.Logging, version)
//	relay.SetLogger(log.Component("notify"))
//
// Log element ids and types. Labels and netlist text come from API clients
// and are not logged, nor are tokens or secrets.
package logging
