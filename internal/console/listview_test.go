package console

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/adapters/portalhttp"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/ports"
)

func newListView(api ports.PortalAPI) *ListView {
	return NewListView(api, nil)
}

func listOf(ids ...string) []*domain.DeploymentRecord {
	out := make([]*domain.DeploymentRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.DeploymentRecord{
			ID:           id,
			Status:       domain.StatusOpen,
			Team:         "Phoenix",
			Environments: []domain.Environment{domain.EnvUAT1},
		})
	}
	return out
}

func staticList(records []*domain.DeploymentRecord) *fakePortal {
	return &fakePortal{
		listFn: func(context.Context, string, bool) ([]*domain.DeploymentRecord, error) {
			return records, nil
		},
	}
}

func TestListViewReload_AutoSelectsFirst(t *testing.T) {
	lv := newListView(staticList(listOf("a", "b", "c")))

	if err := lv.Reload(context.Background(), "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if sel := lv.Selected(); sel == nil || sel.ID != "a" {
		t.Fatalf("selected = %+v, want record a", sel)
	}
	if len(lv.Visible()) != 3 {
		t.Fatalf("visible = %d, want 3", len(lv.Visible()))
	}
}

func TestListViewReload_KeepsSelectionWhenStillVisible(t *testing.T) {
	lv := newListView(staticList(listOf("a", "b", "c")))
	ctx := context.Background()

	if err := lv.Reload(ctx, "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if !lv.Select("b") {
		t.Fatal("Select(b) failed")
	}

	// Mismo search, misma lista: la selección no se pisa.
	if err := lv.Reload(ctx, "", false); err != nil {
		t.Fatalf("second Reload: %v", err)
	}
	if sel := lv.Selected(); sel == nil || sel.ID != "b" {
		t.Fatalf("selected = %+v, want record b", sel)
	}
}

func TestListViewReload_NewSearchResetsSelection(t *testing.T) {
	lv := newListView(staticList(listOf("a", "b")))
	ctx := context.Background()

	if err := lv.Reload(ctx, "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	lv.Select("b")

	// Search nuevo: la selección salta al primer resultado aunque el
	// registro anterior siga en la lista.
	if err := lv.Reload(ctx, "phoenix", false); err != nil {
		t.Fatalf("search Reload: %v", err)
	}
	if sel := lv.Selected(); sel == nil || sel.ID != "a" {
		t.Fatalf("selected = %+v, want record a", sel)
	}
}

func TestListViewReload_EmptyResultClearsSelection(t *testing.T) {
	api := &fakePortal{}
	calls := 0
	api.listFn = func(context.Context, string, bool) ([]*domain.DeploymentRecord, error) {
		calls++
		if calls == 1 {
			return listOf("a"), nil
		}
		return nil, nil
	}

	lv := newListView(api)
	ctx := context.Background()

	if err := lv.Reload(ctx, "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := lv.Reload(ctx, "no-match", false); err != nil {
		t.Fatalf("empty Reload: %v", err)
	}
	if lv.Selected() != nil {
		t.Error("selection must clear when the result set is empty")
	}
}

// Dos reloads en vuelo: la respuesta del primero llega después de que el
// segundo ya publicó. La respuesta vieja se descarta entera.
func TestListViewReload_DiscardsStaleResponse(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	api := &fakePortal{}
	calls := 0
	api.listFn = func(_ context.Context, search string, _ bool) ([]*domain.DeploymentRecord, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return listOf("stale-1", "stale-2"), nil
		}
		return listOf("fresh"), nil
	}

	lv := newListView(api)
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- lv.Reload(ctx, "old-query", false)
	}()

	<-started
	if err := lv.Reload(ctx, "new-query", false); err != nil {
		t.Fatalf("second Reload: %v", err)
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Reload: %v", err)
	}

	visible := lv.Visible()
	if len(visible) != 1 || visible[0].ID != "fresh" {
		t.Fatalf("visible = %v, want only the fresh record", visible)
	}
	if sel := lv.Selected(); sel == nil || sel.ID != "fresh" {
		t.Fatalf("selected = %+v, want the fresh record", sel)
	}
}

func TestListViewReload_ErrorLeavesStateUntouched(t *testing.T) {
	api := &fakePortal{}
	calls := 0
	wantErr := errors.New("backend down")
	api.listFn = func(context.Context, string, bool) ([]*domain.DeploymentRecord, error) {
		calls++
		if calls == 1 {
			return listOf("a"), nil
		}
		return nil, wantErr
	}

	lv := newListView(api)
	ctx := context.Background()

	if err := lv.Reload(ctx, "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if err := lv.Reload(ctx, "", false); !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}

	if len(lv.Visible()) != 1 {
		t.Error("a failed reload must not drop the current records")
	}
}

// Un 401 en cualquier llamada no-login tumba la sesión local: el backend ya
// no reconoce la cookie y la UI debe volver al login.
func TestListViewReload_UnauthorizedForcesLogout(t *testing.T) {
	session := NewSession(nil)
	session.Set(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

	api := &fakePortal{
		listFn: func(context.Context, string, bool) ([]*domain.DeploymentRecord, error) {
			return nil, &portalhttp.Error{Status: http.StatusUnauthorized, Code: "session_not_found"}
		},
	}

	lv := NewListView(api, session)
	if err := lv.Reload(context.Background(), "", false); err == nil {
		t.Fatal("expected the 401 to surface")
	}

	if session.Current() != nil {
		t.Error("a non-login 401 must clear the local session")
	}
}

func TestListViewReload_OtherErrorsKeepSession(t *testing.T) {
	session := NewSession(nil)
	session.Set(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

	api := &fakePortal{
		listFn: func(context.Context, string, bool) ([]*domain.DeploymentRecord, error) {
			return nil, &portalhttp.Error{Status: http.StatusInternalServerError, Code: "boom"}
		},
	}

	lv := NewListView(api, session)
	if err := lv.Reload(context.Background(), "", false); err == nil {
		t.Fatal("expected the error to surface")
	}

	if session.Current() == nil {
		t.Error("a non-401 error must not touch the session")
	}
}

func TestListViewDownloadReport_UnauthorizedForcesLogout(t *testing.T) {
	session := NewSession(nil)
	session.Set(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

	api := &fakePortal{
		reportFn: func(context.Context, string, string, string, string, string) ([]byte, error) {
			return nil, &portalhttp.Error{Status: http.StatusUnauthorized, Code: "session_not_found"}
		},
	}

	lv := NewListView(api, session)
	if _, err := lv.DownloadReport(context.Background()); err == nil {
		t.Fatal("expected the 401 to surface")
	}

	if session.Current() != nil {
		t.Error("a 401 on the report download must clear the local session")
	}
}

// Visible y Selected entregan copias: mutar lo devuelto no puede saltear la
// disciplina canonical/draft del form.
func TestListViewHandsOutCopies(t *testing.T) {
	lv := newListView(staticList(listOf("a", "b")))
	if err := lv.Reload(context.Background(), "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	lv.Visible()[0].Team = "Mutated"
	lv.Selected().Status = domain.StatusCompleted
	lv.Selected().Environments[0] = domain.EnvPERF

	fresh := lv.Visible()
	if fresh[0].Team != "Phoenix" {
		t.Error("mutating a returned record leaked into the list state")
	}
	if sel := lv.Selected(); sel.Status != domain.StatusOpen || sel.Environments[0] != domain.EnvUAT1 {
		t.Errorf("mutating the returned selection leaked into the list state: %+v", sel)
	}
}

func TestListViewFilters(t *testing.T) {
	records := listOf("a", "b", "c")
	records[1].Team = "Crusaders"
	records[2].Status = domain.StatusCompleted

	lv := newListView(staticList(records))
	if err := lv.Reload(context.Background(), "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	lv.SetFilters(domain.Filters{Team: "Phoenix"})
	visible := lv.Visible()
	if len(visible) != 2 {
		t.Fatalf("team filter left %d records, want 2", len(visible))
	}

	// Reaplicar no cambia nada.
	lv.ApplyFilters()
	if len(lv.Visible()) != 2 {
		t.Error("reapplying filters changed the projection")
	}

	lv.SetFilters(domain.Filters{Team: "Phoenix", Status: "Completed"})
	visible = lv.Visible()
	if len(visible) != 1 || visible[0].ID != "c" {
		t.Fatalf("combined filter = %v", visible)
	}

	lv.ClearFilters()
	if len(lv.Visible()) != 3 {
		t.Error("ClearFilters must restore the full list")
	}
}

func TestListViewSelect_OnlyVisibleRecords(t *testing.T) {
	records := listOf("a", "b")
	records[1].Team = "Crusaders"

	lv := newListView(staticList(records))
	if err := lv.Reload(context.Background(), "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	lv.SetFilters(domain.Filters{Team: "Phoenix"})
	if lv.Select("b") {
		t.Error("selecting a filtered-out record must fail")
	}
	if !lv.Select("a") {
		t.Error("selecting a visible record must succeed")
	}
}

// El formulario de reporte es independiente de los filtros de la lista: el
// download usa sólo su propio estado.
func TestListViewDownloadReport_UsesExportStateOnly(t *testing.T) {
	var gotRelease, gotTeam string
	api := &fakePortal{
		listFn: func(context.Context, string, bool) ([]*domain.DeploymentRecord, error) {
			return listOf("a"), nil
		},
		reportFn: func(_ context.Context, release, _, team, _, _ string) ([]byte, error) {
			gotRelease, gotTeam = release, team
			return []byte("csv"), nil
		},
	}

	lv := newListView(api)
	if err := lv.Reload(context.Background(), "", false); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	lv.SetFilters(domain.Filters{Release: "2025-01", Team: "Phoenix"})
	lv.SetExport(ExportFilters{Release: "2024-09", Team: "Crusaders"})

	payload, err := lv.DownloadReport(context.Background())
	if err != nil {
		t.Fatalf("DownloadReport: %v", err)
	}
	if string(payload) != "csv" {
		t.Errorf("payload = %q", payload)
	}
	if gotRelease != "2024-09" || gotTeam != "Crusaders" {
		t.Errorf("report called with release=%s team=%s, want the export state", gotRelease, gotTeam)
	}

	// Y al revés: setear el export no toca los filtros de la lista.
	if f := lv.Filters(); f.Release != "2025-01" || f.Team != "Phoenix" {
		t.Errorf("list filters mutated: %+v", f)
	}
}
