package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/nerrad567/schematic-core/internal/audit"
)

// record writes an audit entry for a mutation made by the request's token
// subject. Failures are logged and never surface to the client.
func (s *Server) record(r *http.Request, action, entityType, entityID string, details map[string]any) {
	if s.audit == nil {
		return
	}

	e := &audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Source:     audit.SourceAPI,
		Details:    details,
	}
	if claims := claimsFromContext(r.Context()); claims != nil {
		e.Subject = claims.Subject
	}

	// The mutation has already happened.
	if err := s.audit.Record(context.WithoutCancel(r.Context()), e); err != nil {
		s.logger.Warn("recording audit entry failed",
			"action", action,
			"entity_type", entityType,
			"error", err,
		)
	}
}

// handleListAudit returns a page of audit entries. Query parameters action,
// entity_type, entity_id and subject filter; limit and offset page.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "audit log not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		Subject:    q.Get("subject"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeBadRequest(w, "invalid "+name+" parameter")
			return
		}
		*dst = n
	}

	page, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
