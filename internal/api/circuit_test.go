package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/nerrad567/schematic-core/internal/auth"
	"github.com/nerrad567/schematic-core/internal/circuit"
	"github.com/nerrad567/schematic-core/internal/history"
)

const editorRole = auth.RoleEditor

func place(t *testing.T, srv *Server, body map[string]any) circuit.Element {
	t.Helper()
	w := do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/elements", body)
	wantStatus(t, w, http.StatusCreated)
	var el circuit.Element
	decode(t, w, &el)
	return el
}

func getCircuit(t *testing.T, srv *Server) circuitResponse {
	t.Helper()
	w := do(t, srv, editorRole, http.MethodGet, "/api/v1/circuit", nil)
	wantStatus(t, w, http.StatusOK)
	var resp circuitResponse
	decode(t, w, &resp)
	return resp
}

func TestPlaceUndoRedo(t *testing.T) {
	srv := testServer(t)

	if got := getCircuit(t, srv); len(got.Elements) != 0 || got.History.CanUndo {
		t.Fatalf("fresh circuit = %+v", got)
	}

	el := place(t, srv, map[string]any{
		"type":       "Resistor",
		"properties": map[string]any{"resistance": 4700},
		"label":      "R1",
	})
	if el.ID == "" || el.Type != circuit.TypeResistor {
		t.Fatalf("placed = %+v", el)
	}
	if !el.Nodes[0].Equal(circuit.Position{X: 370, Y: 300}) || !el.Nodes[1].Equal(circuit.Position{X: 430, Y: 300}) {
		t.Errorf("default nodes = %v", el.Nodes)
	}
	if el.LabelText() != "R1" {
		t.Errorf("label = %q", el.LabelText())
	}

	got := getCircuit(t, srv)
	if len(got.Elements) != 1 || !got.History.CanUndo {
		t.Fatalf("after place = %+v", got)
	}

	w := do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/undo", nil)
	wantStatus(t, w, http.StatusOK)
	var status history.Status
	decode(t, w, &status)
	if status.CanUndo || !status.CanRedo {
		t.Errorf("status after undo = %+v", status)
	}
	if n := len(getCircuit(t, srv).Elements); n != 0 {
		t.Errorf("elements after undo = %d, want 0", n)
	}

	wantStatus(t, do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/redo", nil), http.StatusOK)
	if n := len(getCircuit(t, srv).Elements); n != 1 {
		t.Errorf("elements after redo = %d, want 1", n)
	}
}

func TestPlace_Errors(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{name: "malformed JSON", body: "{", wantCode: ErrCodeBadRequest},
		{name: "unknown type", body: map[string]any{"type": "Diode"}, wantCode: ErrCodeValidation},
		{name: "undeclared property", body: map[string]any{"type": "Resistor", "properties": map[string]any{"farads": 1}}, wantCode: ErrCodeValidation},
		{name: "wrong node count", body: map[string]any{"type": "Ground", "nodes": []map[string]float64{{"x": 0, "y": 0}, {"x": 10, "y": 0}}}, wantCode: ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/elements", tt.body)
			wantStatus(t, w, http.StatusBadRequest)
			var apiErr Error
			decode(t, w, &apiErr)
			if apiErr.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (%s)", apiErr.Code, tt.wantCode, apiErr.Message)
			}
		})
	}

	if n := len(getCircuit(t, srv).Elements); n != 0 {
		t.Errorf("failed placements left %d elements", n)
	}
}

func TestUpdateMoveTranslate(t *testing.T) {
	srv := testServer(t)
	el := place(t, srv, map[string]any{"type": "Capacitor"})
	base := "/api/v1/circuit/elements/" + el.ID

	w := do(t, srv, editorRole, http.MethodPatch, base, map[string]any{
		"properties": map[string]any{"capacitance": 1e-6},
		"label":      "C1",
	})
	wantStatus(t, w, http.StatusOK)
	var resp editResponse
	decode(t, w, &resp)
	if !resp.Changed || resp.Element.LabelText() != "C1" {
		t.Errorf("update = %+v", resp)
	}
	if v, ok := resp.Element.Property(circuit.PropCapacitance); !ok || v != 1e-6 {
		t.Errorf("capacitance = %v, %v", v, ok)
	}

	w = do(t, srv, editorRole, http.MethodPut, base+"/nodes", map[string]any{
		"nodes": []map[string]float64{{"x": 101, "y": 99}, {"x": 159, "y": 101}},
	})
	wantStatus(t, w, http.StatusOK)
	resp = editResponse{}
	decode(t, w, &resp)
	if !resp.Element.Nodes[0].Equal(circuit.Position{X: 100, Y: 100}) || !resp.Element.Nodes[1].Equal(circuit.Position{X: 160, Y: 100}) {
		t.Errorf("snapped nodes = %v", resp.Element.Nodes)
	}

	w = do(t, srv, editorRole, http.MethodPost, base+"/translate", map[string]float64{"dx": 20, "dy": 0})
	wantStatus(t, w, http.StatusOK)
	resp = editResponse{}
	decode(t, w, &resp)
	if !resp.Element.Nodes[0].Equal(circuit.Position{X: 120, Y: 100}) {
		t.Errorf("translated nodes = %v", resp.Element.Nodes)
	}

	w = do(t, srv, editorRole, http.MethodPost, base+"/translate", map[string]float64{"dx": 0, "dy": 0})
	wantStatus(t, w, http.StatusOK)
	resp = editResponse{}
	decode(t, w, &resp)
	if resp.Changed {
		t.Error("zero translate reported a change")
	}

	if got := getCircuit(t, srv).History.UndoLength; got != 4 {
		t.Errorf("UndoLength = %d, want 4 (place, update, move, translate)", got)
	}
}

func TestElementNotFound(t *testing.T) {
	srv := testServer(t)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/v1/circuit/elements/missing", nil},
		{http.MethodPatch, "/api/v1/circuit/elements/missing", map[string]any{}},
		{http.MethodPut, "/api/v1/circuit/elements/missing/nodes", map[string]any{"nodes": []any{}}},
		{http.MethodPost, "/api/v1/circuit/elements/missing/translate", map[string]float64{"dx": 10}},
		{http.MethodDelete, "/api/v1/circuit/elements/missing", nil},
		{http.MethodPost, "/api/v1/circuit/delete", map[string][]string{"ids": {"missing"}}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(t, srv, editorRole, tt.method, tt.path, tt.body)
			wantStatus(t, w, http.StatusNotFound)
		})
	}
}

func TestDelete(t *testing.T) {
	srv := testServer(t)
	a := place(t, srv, map[string]any{"type": "Resistor"})
	b := place(t, srv, map[string]any{"type": "Inductor", "nodes": []map[string]float64{{"x": 0, "y": 0}, {"x": 0, "y": 60}}})
	place(t, srv, map[string]any{"type": "Ground", "nodes": []map[string]float64{{"x": 0, "y": 80}}})

	w := do(t, srv, editorRole, http.MethodDelete, "/api/v1/circuit/elements/"+a.ID, nil)
	wantStatus(t, w, http.StatusOK)

	w = do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/delete", map[string][]string{"ids": {b.ID, "missing"}})
	wantStatus(t, w, http.StatusOK)
	var deleted map[string]int
	decode(t, w, &deleted)
	if deleted["deleted"] != 1 {
		t.Errorf("deleted = %v, want 1", deleted)
	}

	wantStatus(t, do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/delete", map[string][]string{"ids": {}}), http.StatusBadRequest)

	w = do(t, srv, editorRole, http.MethodDelete, "/api/v1/circuit/elements", nil)
	wantStatus(t, w, http.StatusOK)
	deleted = nil
	decode(t, w, &deleted)
	if deleted["deleted"] != 1 {
		t.Errorf("delete all = %v, want 1", deleted)
	}

	wantStatus(t, do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/undo", nil), http.StatusOK)
	if n := len(getCircuit(t, srv).Elements); n != 1 {
		t.Errorf("elements after undoing delete all = %d, want 1", n)
	}
}

func TestDrawWireAndSplit(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/wires", map[string]any{
		"start": map[string]float64{"x": 0, "y": 0},
		"end":   map[string]float64{"x": 100, "y": 0},
	})
	wantStatus(t, w, http.StatusCreated)
	var wire circuit.Element
	decode(t, w, &wire)
	if wire.Type != circuit.TypeWire {
		t.Fatalf("wire type = %s", wire.Type)
	}

	w = do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/split", map[string]any{
		"node": map[string]float64{"x": 50, "y": 0},
	})
	wantStatus(t, w, http.StatusOK)
	var split map[string]bool
	decode(t, w, &split)
	if !split["split"] {
		t.Fatal("split = false, want true")
	}
	if n := len(getCircuit(t, srv).Elements); n != 2 {
		t.Errorf("elements after split = %d, want 2", n)
	}

	w = do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/split", map[string]any{
		"node": map[string]float64{"x": 500, "y": 500},
	})
	wantStatus(t, w, http.StatusOK)
	split = nil
	decode(t, w, &split)
	if split["split"] {
		t.Error("split away from any wire = true")
	}
}

func TestHitTest(t *testing.T) {
	srv := testServer(t)
	el := place(t, srv, map[string]any{"type": "Resistor"})

	w := do(t, srv, auth.RoleViewer, http.MethodGet, "/api/v1/circuit/hit?x=400&y=305", nil)
	wantStatus(t, w, http.StatusOK)
	var hit circuit.Element
	decode(t, w, &hit)
	if hit.ID != el.ID {
		t.Errorf("hit = %s, want %s", hit.ID, el.ID)
	}

	wantStatus(t, do(t, srv, auth.RoleViewer, http.MethodGet, "/api/v1/circuit/hit?x=0&y=0", nil), http.StatusNotFound)
	wantStatus(t, do(t, srv, auth.RoleViewer, http.MethodGet, "/api/v1/circuit/hit?x=a", nil), http.StatusBadRequest)
}

func TestPreview(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/preview", map[string]any{
		"type":   "Ground",
		"centre": map[string]float64{"x": 200, "y": 200},
	})
	wantStatus(t, w, http.StatusOK)
	if n := len(getCircuit(t, srv).Elements); n != 0 {
		t.Errorf("preview added %d elements", n)
	}
}

func TestNetlist(t *testing.T) {
	srv := testServer(t)
	text := "R;0,0;5,0;4.7e+3;R1\nW;5,0;9,0;;"

	w := do(t, srv, editorRole, http.MethodPut, "/api/v1/circuit/netlist", text)
	wantStatus(t, w, http.StatusOK)
	var loaded map[string]int
	decode(t, w, &loaded)
	if loaded["elements"] != 2 {
		t.Errorf("loaded = %v", loaded)
	}
	if getCircuit(t, srv).History.CanUndo {
		t.Error("loading a netlist left undo history")
	}

	w = do(t, srv, auth.RoleViewer, http.MethodGet, "/api/v1/circuit/netlist", nil)
	wantStatus(t, w, http.StatusOK)
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != text {
		t.Errorf("netlist = %q, want %q", w.Body.String(), text)
	}

	w = do(t, srv, editorRole, http.MethodPut, "/api/v1/circuit/netlist", "R;0,0;5,0;1;\nX;0,0;1,0;;")
	wantStatus(t, w, http.StatusBadRequest)
	var apiErr Error
	decode(t, w, &apiErr)
	if apiErr.Code != ErrCodeBadRequest || !strings.Contains(apiErr.Message, "line 2") {
		t.Errorf("error = %+v", apiErr)
	}
	if n := len(getCircuit(t, srv).Elements); n != 2 {
		t.Errorf("failed load changed the circuit: %d elements", n)
	}
}

func TestReset(t *testing.T) {
	srv := testServer(t)
	place(t, srv, map[string]any{"type": "Resistor"})

	wantStatus(t, do(t, srv, editorRole, http.MethodPost, "/api/v1/circuit/reset", nil), http.StatusNoContent)

	got := getCircuit(t, srv)
	if len(got.Elements) != 0 || got.History.CanUndo || got.History.CanRedo {
		t.Errorf("after reset = %+v", got)
	}
}

func TestListTypes(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, auth.RoleViewer, http.MethodGet, "/api/v1/circuit/types", nil)
	wantStatus(t, w, http.StatusOK)
	var body struct {
		Types []circuit.TypeSpec `json:"types"`
	}
	decode(t, w, &body)
	if len(body.Types) != len(circuit.BuiltinSpecs()) {
		t.Errorf("types = %d, want %d", len(body.Types), len(circuit.BuiltinSpecs()))
	}
}
