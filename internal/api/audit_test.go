package api

import (
	"net/http"
	"testing"

	"github.com/nerrad567/schematic-core/internal/audit"
	"github.com/nerrad567/schematic-core/internal/auth"
	"github.com/nerrad567/schematic-core/internal/editor"
	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
	"github.com/nerrad567/schematic-core/internal/infrastructure/logging"
)

func TestAudit_RecordsMutations(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, auth.RoleEditor, http.MethodPut, "/api/v1/circuit/netlist", "R;0,0;5,0;1e+3;\nW;5,0;9,0;;")
	wantStatus(t, w, http.StatusOK)
	wantStatus(t, do(t, srv, auth.RoleEditor, http.MethodPut, "/api/v1/projects/amp", nil), http.StatusOK)
	wantStatus(t, do(t, srv, auth.RoleAdmin, http.MethodPost, "/api/v1/projects/amp/rename", map[string]string{"name": "amp2"}), http.StatusNoContent)
	wantStatus(t, do(t, srv, auth.RoleAdmin, http.MethodDelete, "/api/v1/projects/amp2", nil), http.StatusNoContent)

	// Failed mutations leave no entry.
	wantStatus(t, do(t, srv, auth.RoleAdmin, http.MethodDelete, "/api/v1/projects/missing", nil), http.StatusNotFound)

	w = do(t, srv, auth.RoleAdmin, http.MethodGet, "/api/v1/audit", nil)
	wantStatus(t, w, http.StatusOK)
	var page audit.Page
	decode(t, w, &page)

	if page.Total != 4 {
		t.Fatalf("Total = %d, want 4; entries = %+v", page.Total, page.Entries)
	}
	want := []struct {
		action, entityID, subject string
	}{
		{audit.ActionDelete, "amp2", "test-admin"},
		{audit.ActionRename, "amp", "test-admin"},
		{audit.ActionSave, "amp", "test-editor"},
		{audit.ActionLoadNetlist, "", "test-editor"},
	}
	for i, tt := range want {
		e := page.Entries[i]
		if e.Action != tt.action || e.EntityID != tt.entityID || e.Subject != tt.subject {
			t.Errorf("Entries[%d] = %s/%s/%s, want %s/%s/%s",
				i, e.Action, e.EntityID, e.Subject, tt.action, tt.entityID, tt.subject)
		}
		if e.Source != audit.SourceAPI {
			t.Errorf("Entries[%d].Source = %q", i, e.Source)
		}
	}
	if got := page.Entries[1].Details["to"]; got != "amp2" {
		t.Errorf("rename details to = %v, want amp2", got)
	}
	if got := page.Entries[3].Details["elements"]; got != float64(2) {
		t.Errorf("load details elements = %v, want 2", got)
	}
}

func TestAudit_ListFiltersAndPermissions(t *testing.T) {
	srv := testServer(t)

	wantStatus(t, do(t, srv, auth.RoleEditor, http.MethodPost, "/api/v1/circuit/reset", nil), http.StatusNoContent)
	wantStatus(t, do(t, srv, auth.RoleEditor, http.MethodPut, "/api/v1/projects/a", nil), http.StatusOK)
	wantStatus(t, do(t, srv, auth.RoleEditor, http.MethodPut, "/api/v1/projects/b", nil), http.StatusOK)

	tests := []struct {
		name   string
		role   auth.Role
		query  string
		status int
		total  int
	}{
		{"editor forbidden", auth.RoleEditor, "", http.StatusForbidden, 0},
		{"viewer forbidden", auth.RoleViewer, "", http.StatusForbidden, 0},
		{"all", auth.RoleAdmin, "", http.StatusOK, 3},
		{"by action", auth.RoleAdmin, "?action=save", http.StatusOK, 2},
		{"by entity", auth.RoleAdmin, "?entity_type=project&entity_id=b", http.StatusOK, 1},
		{"by subject", auth.RoleAdmin, "?subject=nobody", http.StatusOK, 0},
		{"bad limit", auth.RoleAdmin, "?limit=ten", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, tt.role, http.MethodGet, "/api/v1/audit"+tt.query, nil)
			wantStatus(t, w, tt.status)
			if tt.status != http.StatusOK {
				return
			}
			var page audit.Page
			decode(t, w, &page)
			if page.Total != tt.total {
				t.Errorf("Total = %d, want %d", page.Total, tt.total)
			}
		})
	}

	w := do(t, srv, auth.RoleAdmin, http.MethodGet, "/api/v1/audit?limit=1&offset=1", nil)
	wantStatus(t, w, http.StatusOK)
	var page audit.Page
	decode(t, w, &page)
	if len(page.Entries) != 1 || page.Limit != 1 || page.Offset != 1 || page.Total != 3 {
		t.Errorf("paged = %d entries, limit %d offset %d total %d", len(page.Entries), page.Limit, page.Offset, page.Total)
	}
}

func TestAudit_NotConfigured(t *testing.T) {
	srv, err := New(Deps{
		Logger:   logging.Default(),
		Session:  editor.NewSession(config.EditorConfig{ElementWidth: 60}, nil),
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret}},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Mutations still succeed without an audit repository.
	wantStatus(t, do(t, srv, auth.RoleEditor, http.MethodPost, "/api/v1/circuit/reset", nil), http.StatusNoContent)
	wantStatus(t, do(t, srv, auth.RoleAdmin, http.MethodGet, "/api/v1/audit", nil), http.StatusServiceUnavailable)
}
