package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/schematic-core/internal/audit"
)

type renameRequest struct {
	Name string `json:"name"`
}

// nameParam returns the decoded {name} path parameter.
func nameParam(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	if name, err := url.PathUnescape(raw); err == nil {
		return name
	}
	return raw
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.session.Projects(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"projects": projects,
		"count":    len(projects),
		"current":  s.session.Current(),
	})
}

// handleSaveProject stores the current circuit under {name}.
func (s *Server) handleSaveProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.Save(r.Context(), nameParam(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.record(r, audit.ActionSave, audit.EntityProject, p.Name, map[string]any{"elements": p.ElementCount})
	writeJSON(w, http.StatusOK, p)
}

// handleOpenProject replaces the current circuit with project {name}.
func (s *Server) handleOpenProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.session.Open(r.Context(), nameParam(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.record(r, audit.ActionOpen, audit.EntityProject, p.Name, nil)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRenameProject(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	from := nameParam(r)
	if err := s.session.RenameProject(r.Context(), from, req.Name); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.record(r, audit.ActionRename, audit.EntityProject, from, map[string]any{"to": req.Name})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	name := nameParam(r)
	if err := s.session.DeleteProject(r.Context(), name); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.record(r, audit.ActionDelete, audit.EntityProject, name, nil)
	w.WriteHeader(http.StatusNoContent)
}
