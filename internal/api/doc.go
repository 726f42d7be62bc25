// Package api implements the HTTP editing API and WebSocket change stream.
//
// This package provides:
//   - REST endpoints that drive one editor.Session: placing, moving, updating
//     and deleting elements, wire drawing and splitting, undo/redo, netlist
//     import/export
//   - Project endpoints for the SQLite project store
//   - A WebSocket hub broadcasting circuit changes and project saves
//   - Bearer-token authentication with role permissions (see package auth)
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Architecture
//
// Handlers never touch the circuit directly. Every edit goes through the
// session, which records it in the undo history and emits change events.
// Those events reach WebSocket clients through notify.HubSink, off the
// request path.
//
// # Security
//
// Every route except /health requires a token. REST clients send it in the
// Authorization header; WebSocket clients pass it as the token query
// parameter because browsers cannot set headers on upgrade requests.
package api
