package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/schematic-core/internal/audit"
	"github.com/nerrad567/schematic-core/internal/circuit"
	"github.com/nerrad567/schematic-core/internal/history"
)

// circuitResponse is the body of GET /circuit.
type circuitResponse struct {
	Project  string            `json:"project,omitempty"`
	Elements []circuit.Element `json:"elements"`
	History  history.Status    `json:"history"`
}

// placeRequest is the body of POST /circuit/elements. Without nodes the
// element is laid out around the default centre.
type placeRequest struct {
	Type       circuit.Type       `json:"type"`
	Nodes      []circuit.Position `json:"nodes,omitempty"`
	Properties circuit.Properties `json:"properties,omitempty"`
	Label      *circuit.Label     `json:"label,omitempty"`
}

// updateRequest is the body of PATCH /circuit/elements/{id}. Both fields
// replace the element's current values.
type updateRequest struct {
	Properties circuit.Properties `json:"properties"`
	Label      *circuit.Label     `json:"label"`
}

type nodesRequest struct {
	Nodes []circuit.Position `json:"nodes"`
}

type translateRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

type previewRequest struct {
	Type   circuit.Type     `json:"type"`
	Centre circuit.Position `json:"centre"`
}

type wireRequest struct {
	Start circuit.Position `json:"start"`
	End   circuit.Position `json:"end"`
}

type splitRequest struct {
	Node circuit.Position `json:"node"`
}

// editResponse reports whether an edit changed the circuit and, when it
// targets one element, its state afterwards.
type editResponse struct {
	Changed bool             `json:"changed"`
	Element *circuit.Element `json:"element,omitempty"`
}

// decodeJSON decodes the request body into v, writing a 400 (or 413) on
// failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
	case err != nil:
		writeBadRequest(w, "invalid JSON body")
	default:
		return true
	}
	return false
}

// snapshot returns the open circuit as served by GET /circuit and the
// WebSocket sync request.
func (s *Server) snapshot() circuitResponse {
	st := s.session.State()
	if st.Elements == nil {
		st.Elements = []circuit.Element{}
	}
	return circuitResponse{
		Project:  s.session.Current(),
		Elements: st.Elements,
		History:  s.session.HistoryStatus(),
	}
}

func (s *Server) handleGetCircuit(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot())
}

func (s *Server) handleListTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"types": s.session.Types(),
	})
}

func (s *Server) handleGetElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	el, ok := s.session.Element(id)
	if !ok {
		writeNotFound(w, "element not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

// handleHitTest returns the first element under ?x=&y=.
func (s *Server) handleHitTest(w http.ResponseWriter, r *http.Request) {
	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		writeBadRequest(w, "x and y query parameters must be numbers")
		return
	}
	el, ok := s.session.ElementAt(circuit.Position{X: x, Y: y})
	if !ok {
		writeNotFound(w, "no element at point")
		return
	}
	writeJSON(w, http.StatusOK, el)
}

func (s *Server) handleHistoryStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.HistoryStatus())
}

func (s *Server) handleGetNetlist(w http.ResponseWriter, r *http.Request) {
	text, err := s.session.Netlist()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	io.WriteString(w, text)
}

func (s *Server) handlePlaceElement(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	el, err := s.session.Place(req.Type, req.Nodes, req.Properties, req.Label)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, el)
}

func (s *Server) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	changed, err := s.session.Update(id, req.Properties, req.Label)
	s.writeEdit(w, r, id, changed, err)
}

func (s *Server) handleMoveElement(w http.ResponseWriter, r *http.Request) {
	var req nodesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	changed, err := s.session.Move(id, req.Nodes)
	s.writeEdit(w, r, id, changed, err)
}

func (s *Server) handleTranslateElement(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	changed, err := s.session.Translate(id, req.DX, req.DY)
	s.writeEdit(w, r, id, changed, err)
}

// writeEdit reports the outcome of a single-element edit.
func (s *Server) writeEdit(w http.ResponseWriter, r *http.Request, id string, changed bool, err error) {
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	el, _ := s.session.Element(id)
	writeJSON(w, http.StatusOK, editResponse{Changed: changed, Element: el})
}

func (s *Server) handleDeleteElement(w http.ResponseWriter, r *http.Request) {
	n, err := s.session.Delete(chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleDeleteElements(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeBadRequest(w, "ids must not be empty")
		return
	}
	n, err := s.session.Delete(req.IDs...)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.session.DeleteAll()
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	el, err := s.session.Preview(req.Type, req.Centre)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, el)
}

func (s *Server) handleDrawWire(w http.ResponseWriter, r *http.Request) {
	var req wireRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	wire, err := s.session.DrawWire(req.Start, req.End)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wire)
}

func (s *Server) handleSplitWire(w http.ResponseWriter, r *http.Request) {
	var req splitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	split, err := s.session.SplitWire(req.Node)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"split": split})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Undo(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.HistoryStatus())
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Redo(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.HistoryStatus())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Reset(); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.record(r, audit.ActionReset, audit.EntityCircuit, "", nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleLoadNetlist replaces the circuit with the text/plain request body.
func (s *Server) handleLoadNetlist(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.session.LoadNetlist(string(body)); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	n := s.session.State().Len()
	s.record(r, audit.ActionLoadNetlist, audit.EntityCircuit, "", map[string]any{"elements": n})
	writeJSON(w, http.StatusOK, map[string]int{"elements": n})
}
