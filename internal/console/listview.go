package console

import (
	"context"
	"sync"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/ports"
)

// ExportFilters es el estado del formulario de reporte. Vive completamente
// separado de los filtros de la lista principal: exportar un release
// histórico no debe tocar lo que el usuario está mirando.
type ExportFilters struct {
	Release     string
	Environment string
	Team        string
	StartDate   string
	EndDate     string
}

// ListView mantiene la lista autoritativa de registros y su proyección
// filtrada. El free-text search se delega al backend; el resto de los
// filtros se aplican localmente.
type ListView struct {
	api     ports.PortalAPI
	session *Session

	mu          sync.Mutex
	records     []*domain.DeploymentRecord
	visible     []*domain.DeploymentRecord
	filters     domain.Filters
	searchQuery string
	configOnly  bool
	selected    *domain.DeploymentRecord

	// generation descarta respuestas fuera de orden: sólo el reload más
	// reciente puede publicar su resultado.
	generation uint64

	export ExportFilters
}

// NewListView crea la vista de lista. session puede ser nil; cuando está,
// todo 401 del backend fuerza el logout local.
func NewListView(api ports.PortalAPI, session *Session) *ListView {
	return &ListView{api: api, session: session}
}

// Reload pide la lista al backend y reemplaza el estado completo. Si otro
// Reload arrancó después de éste, la respuesta vieja se descarta sin tocar
// nada. Con resultados nuevos, si no había registro seleccionado o el
// search cambió, se selecciona el primero visible para que el panel de
// detalle nunca quede apuntando a un registro invisible.
func (l *ListView) Reload(ctx context.Context, search string, configOnly bool) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	newSearch := search != l.searchQuery
	l.searchQuery = search
	l.configOnly = configOnly
	l.mu.Unlock()

	records, err := l.api.ListDeployments(ctx, search, configOnly)
	if err != nil {
		l.session.Observe(err)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		// Respuesta de un reload superado: descartada.
		return nil
	}

	l.records = records
	l.applyFiltersLocked()

	if newSearch || l.selected == nil || !l.selectedVisibleLocked() {
		if len(l.visible) > 0 {
			l.selected = l.visible[0]
		} else {
			l.selected = nil
		}
	}

	return nil
}

// SetFilters reemplaza los filtros de la lista y recomputa la proyección.
func (l *ListView) SetFilters(f domain.Filters) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filters = f
	l.applyFiltersLocked()
}

// ClearFilters resetea todos los filtros locales.
func (l *ListView) ClearFilters() {
	l.SetFilters(domain.Filters{})
}

// ApplyFilters recomputa la proyección visible. Idempotente: con el mismo
// estado produce la misma lista.
func (l *ListView) ApplyFilters() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyFiltersLocked()
}

func (l *ListView) applyFiltersLocked() {
	l.visible = l.filters.Apply(l.records)
}

func (l *ListView) selectedVisibleLocked() bool {
	if l.selected == nil {
		return false
	}
	for _, rec := range l.visible {
		if rec.ID == l.selected.ID {
			return true
		}
	}
	return false
}

// Visible devuelve la proyección filtrada actual. Son copias: mutar un
// registro devuelto no toca el estado de la lista, toda edición pasa por el
// form.
func (l *ListView) Visible() []*domain.DeploymentRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.DeploymentRecord, len(l.visible))
	for i, rec := range l.visible {
		out[i] = rec.Clone()
	}
	return out
}

// Selected devuelve una copia del registro activo del panel de detalle, o nil.
func (l *ListView) Selected() *domain.DeploymentRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selected.Clone()
}

// Select marca como activo el registro con ese id, si está visible.
func (l *ListView) Select(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, rec := range l.visible {
		if rec.ID == id {
			l.selected = rec
			return true
		}
	}
	return false
}

// Filters devuelve los filtros activos de la lista.
func (l *ListView) Filters() domain.Filters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filters
}

// Export devuelve el estado del formulario de reporte.
func (l *ListView) Export() ExportFilters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.export
}

// SetExport reemplaza el estado del formulario de reporte sin tocar los
// filtros de la lista.
func (l *ListView) SetExport(f ExportFilters) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.export = f
}

// DownloadReport dispara el export CSV con los criterios del formulario de
// reporte, nunca con los filtros de la lista.
func (l *ListView) DownloadReport(ctx context.Context) ([]byte, error) {
	l.mu.Lock()
	export := l.export
	l.mu.Unlock()

	payload, err := l.api.GeneralReport(ctx, export.Release, export.Environment, export.Team, export.StartDate, export.EndDate)
	if err != nil {
		l.session.Observe(err)
		return nil, err
	}
	return payload, nil
}
