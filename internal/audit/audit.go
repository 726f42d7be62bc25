// Package audit records who changed circuits and projects.
//
// Entries are written by the API after a mutation succeeds and are never
// updated. A failed write is logged by the caller and does not fail the
// request that caused it.
package audit

import (
	"context"
	"time"
)

// Actions.
const (
	ActionSave        = "save"
	ActionOpen        = "open"
	ActionRename      = "rename"
	ActionDelete      = "delete"
	ActionLoadNetlist = "load_netlist"
	ActionReset       = "reset"
)

// Entity types.
const (
	EntityProject = "project"
	EntityCircuit = "circuit"
)

// Sources.
const (
	SourceAPI = "api"
	SourceCLI = "cli"
)

// Pagination bounds for List.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Entry is a single audit trail record.
type Entry struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id,omitempty"`
	Subject    string         `json:"subject,omitempty"`
	Source     string         `json:"source"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Filter selects entries for List. Empty fields match everything.
type Filter struct {
	Action     string
	EntityType string
	EntityID   string
	Subject    string
	Limit      int
	Offset     int
}

// normalise clamps the page bounds.
func (f Filter) normalise() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Page is one page of List results, newest first.
type Page struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository stores and queries audit entries.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) (*Page, error)
}
