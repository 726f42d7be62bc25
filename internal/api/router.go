package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nerrad567/schematic-core/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		exposeRequestID,
		s.accessLog,
		s.recoverPanics,
		s.cors,
		middleware.RequestSize(maxRequestBodySize),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// WebSocket (token query parameter, validated in handler)
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/circuit", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(s.requirePermission(auth.PermCircuitRead))
					r.Get("/", s.handleGetCircuit)
					r.Get("/types", s.handleListTypes)
					r.Get("/elements/{id}", s.handleGetElement)
					r.Get("/hit", s.handleHitTest)
					r.Get("/history", s.handleHistoryStatus)
					r.Get("/netlist", s.handleGetNetlist)
				})

				r.Group(func(r chi.Router) {
					r.Use(s.requirePermission(auth.PermCircuitEdit))
					r.Post("/elements", s.handlePlaceElement)
					r.Delete("/elements", s.handleDeleteAll)
					r.Patch("/elements/{id}", s.handleUpdateElement)
					r.Put("/elements/{id}/nodes", s.handleMoveElement)
					r.Post("/elements/{id}/translate", s.handleTranslateElement)
					r.Delete("/elements/{id}", s.handleDeleteElement)
					r.Post("/delete", s.handleDeleteElements)
					r.Post("/preview", s.handlePreview)
					r.Post("/wires", s.handleDrawWire)
					r.Post("/split", s.handleSplitWire)
					r.Post("/undo", s.handleUndo)
					r.Post("/redo", s.handleRedo)
					r.Post("/reset", s.handleReset)
					r.Put("/netlist", s.handleLoadNetlist)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.With(s.requirePermission(auth.PermProjectRead)).Get("/", s.handleListProjects)
				r.With(s.requirePermission(auth.PermProjectSave)).Put("/{name}", s.handleSaveProject)
				r.With(s.requirePermission(auth.PermCircuitEdit)).Post("/{name}/open", s.handleOpenProject)
				r.With(s.requirePermission(auth.PermProjectManage)).Post("/{name}/rename", s.handleRenameProject)
				r.With(s.requirePermission(auth.PermProjectManage)).Delete("/{name}", s.handleDeleteProject)
			})

			r.With(s.requirePermission(auth.PermAuditRead)).Get("/audit", s.handleListAudit)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
