package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	perrors "github.com/prakharxagrawal/deployment-portal-angular/platform/errors"
)

var (
	ErrDeploymentNotFound   = perrors.NotFound("deployment_not_found", "deployment not found", nil)
	ErrReleaseAlreadyExists = perrors.Conflict("release_already_exists", "release already exists", nil)
	ErrInvalidCredentials   = perrors.Unauthorized("invalid_credentials", "invalid username or password", nil)
	ErrSessionNotFound      = perrors.Unauthorized("session_not_found", "session not found or expired", nil)
)

type DeploymentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.DeploymentRecord, error)
	List(ctx context.Context) ([]*domain.DeploymentRecord, error)
	Save(ctx context.Context, rec *domain.DeploymentRecord) error
	Delete(ctx context.Context, id string) error
	NextSerial(ctx context.Context) (int64, error)
}

type ReleaseRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Release, error)
	List(ctx context.Context) ([]*domain.Release, error)
	Save(ctx context.Context, rel *domain.Release) error
}

type ServiceRepository interface {
	List(ctx context.Context) ([]*domain.Service, error)
	Save(ctx context.Context, svc *domain.Service) error
}

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Save(ctx context.Context, u *domain.User) error
}

// Session es la sesión server-side detrás del token opaco de la cookie.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionStore interface {
	Get(ctx context.Context, token string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}

type Services struct {
	Deployments DeploymentRepository
	Releases    ReleaseRepository
	Catalog     ServiceRepository
	Users       UserRepository
	Sessions    SessionStore
}

// ListDeployments devuelve los registros que matchean el search server-side
// y, si configOnly, sólo los config requests. Siempre ordenados del más
// nuevo al más viejo.
func (s *Services) ListDeployments(ctx context.Context, search string, configOnly bool) ([]*domain.DeploymentRecord, error) {
	if s.Deployments == nil {
		return nil, perrors.Internal("deployment_repository_not_configured", "deployment repository not configured", nil)
	}

	records, err := s.Deployments.List(ctx)
	if err != nil {
		return nil, perrors.Internal("deployment_repository_error", "error listing deployments", err)
	}

	out := make([]*domain.DeploymentRecord, 0, len(records))
	for _, rec := range records {
		if configOnly && !rec.IsConfig {
			continue
		}
		if !domain.MatchesSearch(rec, search) {
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DateRequested.Equal(out[j].DateRequested) {
			return out[i].DateRequested.After(out[j].DateRequested)
		}
		return out[i].SerialNumber > out[j].SerialNumber
	})

	return out, nil
}

func (s *Services) GetDeployment(ctx context.Context, id string) (*domain.DeploymentRecord, error) {
	if s.Deployments == nil {
		return nil, perrors.Internal("deployment_repository_not_configured", "deployment repository not configured", nil)
	}

	rec, err := s.Deployments.GetByID(ctx, id)
	if err != nil {
		return nil, perrors.Internal("deployment_repository_error", "error loading deployment", err)
	}
	if rec == nil {
		return nil, ErrDeploymentNotFound
	}

	return rec, nil
}

// CreateDeployment da de alta un registro nuevo. El server manda: status
// arranca en Open, el serial y el id los asigna el backend, y seleccionar
// PERF activa performanceReady en la misma transacción.
func (s *Services) CreateDeployment(ctx context.Context, actor *domain.User, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error) {
	if s.Deployments == nil {
		return nil, perrors.Internal("deployment_repository_not_configured", "deployment repository not configured", nil)
	}

	if !domain.CanCreateRecord(actor) {
		return nil, perrors.Forbidden("create_not_allowed", "role is not allowed to create deployment requests", nil)
	}

	if rec == nil {
		return nil, perrors.Validation("deployment_required", "deployment payload is required", nil)
	}
	if rec.HasEnvironment(domain.EnvPROD) {
		return nil, perrors.Validation("prod_not_selectable", "PROD cannot be requested directly; use the productionReady flag", nil)
	}

	created := rec.Clone()
	created.Status = domain.StatusOpen
	created.ProductionReady = false
	created.PerformanceReady = created.HasEnvironment(domain.EnvPERF)
	if !created.IsConfig {
		created.ConfigRequestID = ""
		created.UpcomingConfigBranch = ""
	}
	// Los RLM IDs los cargan los admins después, nunca en el alta.
	created.RlmIDUat1, created.RlmIDUat2, created.RlmIDUat3 = "", "", ""
	created.RlmIDPerf1, created.RlmIDPerf2 = "", ""
	created.RlmIDProd1, created.RlmIDProd2 = "", ""

	if problems := domain.ValidateRecord(created); len(problems) > 0 {
		return nil, perrors.Validation("invalid_deployment", firstProblem(problems), nil)
	}

	serial, err := s.Deployments.NextSerial(ctx)
	if err != nil {
		return nil, perrors.Internal("serial_sequence_error", "error allocating serial number", err)
	}

	now := time.Now().UTC()
	created.ID = uuid.NewString()
	created.SerialNumber = fmt.Sprintf("MSDR%07d", serial)
	created.CreatedBy = actor.Username
	created.DateRequested = now
	created.DateModified = now

	if err := s.Deployments.Save(ctx, created); err != nil {
		return nil, fmt.Errorf("saving deployment: %w", err)
	}

	return created, nil
}

// UpdateDeployment aplica una edición completa o parcial respetando la
// policy por categoría de campos: status inline, RLM inline, edición
// completa y flags de readiness tienen cada una su propio permiso, siempre
// evaluado contra el estado actual del registro.
func (s *Services) UpdateDeployment(ctx context.Context, actor *domain.User, incoming *domain.DeploymentRecord) (*domain.DeploymentRecord, error) {
	if s.Deployments == nil {
		return nil, perrors.Internal("deployment_repository_not_configured", "deployment repository not configured", nil)
	}
	if incoming == nil || incoming.ID == "" {
		return nil, perrors.Validation("deployment_id_required", "deployment id is required", nil)
	}

	existing, err := s.Deployments.GetByID(ctx, incoming.ID)
	if err != nil {
		return nil, perrors.Internal("deployment_repository_error", "error loading deployment", err)
	}
	if existing == nil {
		return nil, ErrDeploymentNotFound
	}

	// Registro ya promovido: congelado para todos menos superadmin.
	if domain.IsFormReadOnly(actor, existing) {
		return nil, perrors.Forbidden("record_frozen", "record has a readiness flag set and can only be edited by a superadmin", nil)
	}

	prodToggled := incoming.ProductionReady != existing.ProductionReady
	perfToggled := incoming.PerformanceReady != existing.PerformanceReady
	readinessChecked := (prodToggled && incoming.ProductionReady) || (perfToggled && incoming.PerformanceReady)

	if prodToggled && !domain.CanMarkReady(domain.ReadinessProduction, actor, existing) {
		return nil, perrors.Forbidden("readiness_not_allowed", "not allowed to change productionReady on this record", nil)
	}
	if perfToggled && !domain.CanMarkReady(domain.ReadinessPerformance, actor, existing) {
		return nil, perrors.Forbidden("readiness_not_allowed", "not allowed to change performanceReady on this record", nil)
	}

	updated := existing.Clone()

	if classificationChanged(existing, incoming) {
		if !domain.CanEditFullRecord(actor) && !domain.CanEditRecordDialog(actor, existing) {
			return nil, perrors.Forbidden("edit_not_allowed", "not allowed to edit this record", nil)
		}
		if incoming.HasEnvironment(domain.EnvPROD) && !existing.HasEnvironment(domain.EnvPROD) {
			return nil, perrors.Validation("prod_not_selectable", "PROD cannot be requested directly; use the productionReady flag", nil)
		}
		applyClassification(updated, incoming)
		// Seleccionar PERF activa performanceReady; deseleccionarlo no lo
		// apaga (asimetría intencional).
		if updated.HasEnvironment(domain.EnvPERF) {
			updated.PerformanceReady = true
		}
	}

	if rlmChanged(existing, incoming) {
		if !domain.CanEditRlm(actor) {
			return nil, perrors.Forbidden("rlm_edit_not_allowed", "not allowed to edit RLM ids", nil)
		}
		applyRlm(updated, incoming)
	}

	if prodToggled {
		updated.ProductionReady = incoming.ProductionReady
	}
	if perfToggled {
		// performanceReady no puede apagarse mientras PERF siga pedido,
		// salvo superadmin.
		if !incoming.PerformanceReady && updated.HasEnvironment(domain.EnvPERF) && actor.Role != domain.RoleSuperAdmin {
			return nil, perrors.Domain("performance_ready_locked", "performanceReady cannot be unset while PERF is requested", nil)
		}
		updated.PerformanceReady = incoming.PerformanceReady
	}

	// Un cambio de status que no sea la cascada de readiness requiere el
	// permiso de edición inline de status.
	if incoming.Status != existing.Status && !readinessChecked {
		if !domain.CanEditStatus(actor) {
			return nil, perrors.Forbidden("status_edit_not_allowed", "not allowed to edit status", nil)
		}
		if !domain.ValidStatus(incoming.Status) {
			return nil, perrors.Validation("invalid_status", "unknown status "+string(incoming.Status), nil)
		}
		updated.Status = incoming.Status
	}

	// Flag de readiness recién marcado: el registro vuelve a revisión.
	if readinessChecked {
		updated.Status = domain.StatusPending
	}

	if problems := domain.ValidateRecord(updated); len(problems) > 0 {
		return nil, perrors.Validation("invalid_deployment", firstProblem(problems), nil)
	}

	updated.ID = existing.ID
	updated.SerialNumber = existing.SerialNumber
	updated.CreatedBy = existing.CreatedBy
	updated.DateRequested = existing.DateRequested
	updated.DateModified = time.Now().UTC()

	if err := s.Deployments.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("saving updated deployment: %w", err)
	}

	return updated, nil
}

func (s *Services) DeleteDeployment(ctx context.Context, actor *domain.User, id string) error {
	if s.Deployments == nil {
		return perrors.Internal("deployment_repository_not_configured", "deployment repository not configured", nil)
	}

	if !domain.CanDeleteRecord(actor) {
		return perrors.Forbidden("delete_not_allowed", "only a superadmin can delete deployment requests", nil)
	}

	existing, err := s.Deployments.GetByID(ctx, id)
	if err != nil {
		return perrors.Internal("deployment_repository_error", "error loading deployment", err)
	}
	if existing == nil {
		return ErrDeploymentNotFound
	}

	if err := s.Deployments.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting deployment: %w", err)
	}

	return nil
}

func classificationChanged(a, b *domain.DeploymentRecord) bool {
	if a.CsiID != b.CsiID || a.Service != b.Service || a.Team != b.Team || a.Release != b.Release {
		return true
	}
	if a.RequestID != b.RequestID || a.UpcomingBranch != b.UpcomingBranch {
		return true
	}
	if a.IsConfig != b.IsConfig || a.ConfigRequestID != b.ConfigRequestID || a.UpcomingConfigBranch != b.UpcomingConfigBranch {
		return true
	}
	return !sameEnvironments(a.Environments, b.Environments)
}

func applyClassification(dst, src *domain.DeploymentRecord) {
	dst.CsiID = src.CsiID
	dst.Service = src.Service
	dst.Team = src.Team
	dst.Release = src.Release
	dst.RequestID = src.RequestID
	dst.UpcomingBranch = src.UpcomingBranch
	dst.IsConfig = src.IsConfig
	dst.ConfigRequestID = src.ConfigRequestID
	dst.UpcomingConfigBranch = src.UpcomingConfigBranch
	dst.Environments = append([]domain.Environment(nil), src.Environments...)
	if !dst.IsConfig {
		dst.ConfigRequestID = ""
		dst.UpcomingConfigBranch = ""
	}
}

func rlmChanged(a, b *domain.DeploymentRecord) bool {
	return a.RlmIDUat1 != b.RlmIDUat1 || a.RlmIDUat2 != b.RlmIDUat2 || a.RlmIDUat3 != b.RlmIDUat3 ||
		a.RlmIDPerf1 != b.RlmIDPerf1 || a.RlmIDPerf2 != b.RlmIDPerf2 ||
		a.RlmIDProd1 != b.RlmIDProd1 || a.RlmIDProd2 != b.RlmIDProd2
}

func applyRlm(dst, src *domain.DeploymentRecord) {
	dst.RlmIDUat1 = src.RlmIDUat1
	dst.RlmIDUat2 = src.RlmIDUat2
	dst.RlmIDUat3 = src.RlmIDUat3
	dst.RlmIDPerf1 = src.RlmIDPerf1
	dst.RlmIDPerf2 = src.RlmIDPerf2
	dst.RlmIDProd1 = src.RlmIDProd1
	dst.RlmIDProd2 = src.RlmIDProd2
}

func sameEnvironments(a, b []domain.Environment) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[domain.Environment]int, len(a))
	for _, e := range a {
		seen[e]++
	}
	for _, e := range b {
		seen[e]--
		if seen[e] < 0 {
			return false
		}
	}
	return true
}

func firstProblem(problems map[string]string) string {
	keys := make([]string, 0, len(problems))
	for k := range problems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, problems[k])
	}
	return strings.Join(parts, "; ")
}
