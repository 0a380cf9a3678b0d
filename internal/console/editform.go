package console

import (
	"context"
	"sort"
	"strings"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/ports"
	perrors "github.com/prakharxagrawal/deployment-portal-angular/platform/errors"
)

type FormMode string

type EditScope string

const (
	ModeViewing    FormMode = "viewing"
	ModeEditing    FormMode = "editing"
	ModeSubmitting FormMode = "submitting"

	// ScopeDialog es la edición completa del registro; ScopeStatus y
	// ScopeRlm son las ediciones inline de los admins; ScopeReadiness es
	// el toggle de los flags de promoción.
	ScopeDialog    EditScope = "dialog"
	ScopeStatus    EditScope = "status"
	ScopeRlm       EditScope = "rlm"
	ScopeReadiness EditScope = "readiness"
)

// EditForm es la máquina de estados del formulario: viewing → editing →
// submitting → viewing (éxito) o editing (error). Mantiene dos copias del
// registro: canonical (lo último confirmado por el server) y draft (la
// edición en curso). canonical sólo se reemplaza tras confirmación.
type EditForm struct {
	api     ports.PortalAPI
	session *Session
	user    *domain.User

	mode      FormMode
	isNew     bool
	canonical *domain.DeploymentRecord
	draft     *domain.DeploymentRecord
	touched   map[string]bool
	lastErr   error
}

// NewEditForm crea el formulario en viewing sobre un registro existente.
// session puede ser nil; cuando está, todo 401 del backend fuerza el logout
// local.
func NewEditForm(api ports.PortalAPI, session *Session, user *domain.User, rec *domain.DeploymentRecord) *EditForm {
	return &EditForm{
		api:       api,
		session:   session,
		user:      user,
		mode:      ModeViewing,
		canonical: rec.Clone(),
		touched:   make(map[string]bool),
	}
}

// NewCreateForm abre el diálogo de alta. Devuelve nil si el rol no puede
// crear registros.
func NewCreateForm(api ports.PortalAPI, session *Session, user *domain.User) *EditForm {
	if !domain.CanCreateRecord(user) {
		return nil
	}
	return &EditForm{
		api:     api,
		session: session,
		user:    user,
		mode:    ModeEditing,
		isNew:   true,
		draft:   &domain.DeploymentRecord{Status: domain.StatusOpen},
		touched: make(map[string]bool),
	}
}

func (f *EditForm) Mode() FormMode { return f.mode }

// Canonical devuelve la última copia confirmada por el server.
func (f *EditForm) Canonical() *domain.DeploymentRecord { return f.canonical }

// Draft devuelve el buffer de edición, o nil fuera de editing/submitting.
func (f *EditForm) Draft() *domain.DeploymentRecord { return f.draft }

func (f *EditForm) LastError() error { return f.lastErr }

func (f *EditForm) Touched(field string) bool { return f.touched[field] }

// Begin entra en editing para el scope pedido. Es un no-op (devuelve
// false) cuando la policy lo niega o el registro está congelado.
func (f *EditForm) Begin(scope EditScope) bool {
	if f.mode != ModeViewing || f.canonical == nil {
		return false
	}
	if domain.IsFormReadOnly(f.user, f.canonical) {
		return false
	}

	switch scope {
	case ScopeDialog:
		if !domain.CanEditRecordDialog(f.user, f.canonical) {
			return false
		}
	case ScopeStatus:
		if !domain.CanEditStatus(f.user) {
			return false
		}
	case ScopeRlm:
		if !domain.CanEditRlm(f.user) {
			return false
		}
	case ScopeReadiness:
		if !domain.CanMarkReady(domain.ReadinessProduction, f.user, f.canonical) &&
			!domain.CanMarkReady(domain.ReadinessPerformance, f.user, f.canonical) {
			return false
		}
	default:
		return false
	}

	f.draft = f.canonical.Clone()
	f.mode = ModeEditing
	f.lastErr = nil
	return true
}

// ToggleConfig prende o apaga isConfig en el draft. Apagarlo limpia los
// dos campos de config y suelta su constraint one-of-two; volver a
// prenderlo los deja vacíos con el constraint rearmado.
func (f *EditForm) ToggleConfig(on bool) {
	if f.mode != ModeEditing {
		return
	}
	f.draft.IsConfig = on
	if !on {
		f.draft.ConfigRequestID = ""
		f.draft.UpcomingConfigBranch = ""
	}
}

// SetEnvironments reemplaza los entornos pedidos del draft. PROD no es
// seleccionable. Seleccionar PERF activa performanceReady en el mismo
// estado del form, sin round-trip; deseleccionarlo NO lo apaga (asimetría
// intencional).
func (f *EditForm) SetEnvironments(envs ...domain.Environment) error {
	if f.mode != ModeEditing {
		return perrors.Domain("form_not_editing", "form is not in editing mode", nil)
	}
	for _, env := range envs {
		if !domain.SelectableEnvironment(env) {
			return perrors.Validation("environment_not_selectable", "environment "+string(env)+" is not selectable", nil)
		}
	}

	f.draft.Environments = append([]domain.Environment(nil), envs...)
	if f.draft.HasEnvironment(domain.EnvPERF) {
		f.draft.PerformanceReady = true
	}
	return nil
}

// MarkReadiness togglea un flag de readiness en el draft. Marcarlo manda
// el status a Pending en la misma transacción de edición: toda promoción
// vuelve a revisión.
func (f *EditForm) MarkReadiness(kind domain.ReadinessKind, on bool) bool {
	if f.mode != ModeEditing {
		return false
	}
	if !f.isNew && !domain.CanMarkReady(kind, f.user, f.canonical) {
		return false
	}

	switch kind {
	case domain.ReadinessProduction:
		f.draft.ProductionReady = on
	case domain.ReadinessPerformance:
		f.draft.PerformanceReady = on
	default:
		return false
	}

	if on {
		f.draft.Status = domain.StatusPending
	}
	return true
}

// SetStatus cambia el status del draft (edición inline de admins).
func (f *EditForm) SetStatus(status domain.Status) bool {
	if f.mode != ModeEditing || !domain.CanEditStatus(f.user) {
		return false
	}
	if !domain.ValidStatus(status) {
		return false
	}
	f.draft.Status = status
	return true
}

// Validate corre la validación client-side sobre el draft.
func (f *EditForm) Validate() map[string]string {
	if f.draft == nil {
		return map[string]string{"record": "nothing to validate"}
	}
	return domain.ValidateRecord(f.draft)
}

// formFields son los campos que el form rastrea para estado touched.
var formFields = []string{
	"csiId", "service", "team", "release",
	"requestId", "upcomingBranch",
	"configRequestId", "upcomingConfigBranch",
	"environments", "status",
}

// markAllTouched marca el form entero, no sólo los campos inválidos: tras
// un submit fallido todos los errores inline quedan visibles a la vez.
func (f *EditForm) markAllTouched() {
	for _, field := range formFields {
		f.touched[field] = true
	}
}

// Submit valida y confía el draft al backend. Una validación fallida marca
// todos los campos como tocados y aborta sin llamada de red ni transición.
// Un rechazo del server vuelve a editing con el error a mano; recién con la
// confirmación el draft se promueve a canonical.
func (f *EditForm) Submit(ctx context.Context) error {
	if f.mode != ModeEditing {
		return perrors.Domain("form_not_editing", "form is not in editing mode", nil)
	}

	if problems := f.Validate(); len(problems) > 0 {
		f.markAllTouched()
		fields := make([]string, 0, len(problems))
		for field := range problems {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return perrors.Validation("invalid_form", "invalid fields: "+strings.Join(fields, ", "), nil)
	}

	f.mode = ModeSubmitting

	var (
		confirmed *domain.DeploymentRecord
		err       error
	)
	if f.isNew {
		confirmed, err = f.api.CreateDeployment(ctx, f.draft)
	} else {
		confirmed, err = f.api.UpdateDeployment(ctx, f.draft)
	}
	if err != nil {
		f.session.Observe(err)
		f.mode = ModeEditing
		f.lastErr = err
		return err
	}

	f.canonical = confirmed.Clone()
	f.draft = nil
	f.mode = ModeViewing
	f.isNew = false
	f.lastErr = nil
	f.touched = make(map[string]bool)
	return nil
}

// Discard tira el draft y vuelve a viewing sin tocar canonical.
func (f *EditForm) Discard() {
	if f.mode == ModeViewing {
		return
	}
	f.draft = nil
	f.mode = ModeViewing
	f.lastErr = nil
	f.touched = make(map[string]bool)
}
