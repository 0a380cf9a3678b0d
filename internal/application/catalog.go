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

// ListReleases devuelve los releases ordenados del más reciente al más
// viejo. El nombre YYYY-MM ordena lexicográficamente igual que cronológico.
func (s *Services) ListReleases(ctx context.Context) ([]*domain.Release, error) {
	if s.Releases == nil {
		return nil, perrors.Internal("release_repository_not_configured", "release repository not configured", nil)
	}

	releases, err := s.Releases.List(ctx)
	if err != nil {
		return nil, perrors.Internal("release_repository_error", "error listing releases", err)
	}

	sort.Slice(releases, func(i, j int) bool {
		return releases[i].Name > releases[j].Name
	})

	return releases, nil
}

// CreateRelease da de alta un release nuevo. Sólo admin y superadmin;
// el nombre debe cumplir YYYY-MM y ser único.
func (s *Services) CreateRelease(ctx context.Context, actor *domain.User, name string) (*domain.Release, error) {
	if s.Releases == nil {
		return nil, perrors.Internal("release_repository_not_configured", "release repository not configured", nil)
	}

	if !domain.CanCreateRelease(actor) {
		return nil, perrors.Forbidden("release_create_not_allowed", "only admin or superadmin can create releases", nil)
	}

	if !domain.ValidReleaseName(name) {
		return nil, perrors.Validation("invalid_release_name", "release name must match YYYY-MM", nil)
	}

	if existing, _ := s.Releases.GetByName(ctx, name); existing != nil {
		return nil, ErrReleaseAlreadyExists
	}

	release := &domain.Release{
		ID:   uuid.NewString(),
		Name: name,
	}

	if err := s.Releases.Save(ctx, release); err != nil {
		return nil, fmt.Errorf("saving release: %w", err)
	}

	return release, nil
}

// ListServices devuelve el catálogo completo ordenado alfabéticamente.
func (s *Services) ListServices(ctx context.Context) ([]*domain.Service, error) {
	if s.Catalog == nil {
		return nil, perrors.Internal("service_repository_not_configured", "service repository not configured", nil)
	}

	services, err := s.Catalog.List(ctx)
	if err != nil {
		return nil, perrors.Internal("service_repository_error", "error listing services", err)
	}

	sort.Slice(services, func(i, j int) bool {
		return services[i].Name < services[j].Name
	})

	return services, nil
}

// SearchServices filtra el catálogo por substring case-insensitive; es el
// backend del autocomplete del formulario de alta.
func (s *Services) SearchServices(ctx context.Context, query string) ([]*domain.Service, error) {
	services, err := s.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return services, nil
	}

	q := strings.ToLower(query)
	out := make([]*domain.Service, 0, len(services))
	for _, svc := range services {
		if strings.Contains(strings.ToLower(svc.Name), q) {
			out = append(out, svc)
		}
	}

	return out, nil
}

// GeneralReport devuelve los registros que entran en el reporte CSV.
// Todos los criterios son opcionales; las fechas acotan dateRequested y
// llegan como YYYY-MM-DD.
func (s *Services) GeneralReport(ctx context.Context, release, environment, team, startDate, endDate string) ([]*domain.DeploymentRecord, error) {
	if s.Deployments == nil {
		return nil, perrors.Internal("deployment_repository_not_configured", "deployment repository not configured", nil)
	}

	var (
		start, end time.Time
		err        error
	)
	if startDate != "" {
		start, err = time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, perrors.Validation("invalid_start_date", "startDate must be YYYY-MM-DD", err)
		}
	}
	if endDate != "" {
		end, err = time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, perrors.Validation("invalid_end_date", "endDate must be YYYY-MM-DD", err)
		}
		// endDate es inclusivo: corre el corte al día siguiente.
		end = end.AddDate(0, 0, 1)
	}

	records, err := s.ListDeployments(ctx, "", false)
	if err != nil {
		return nil, err
	}

	filters := domain.Filters{Release: release, Environment: environment, Team: team}
	filtered := filters.Apply(records)

	out := make([]*domain.DeploymentRecord, 0, len(filtered))
	for _, rec := range filtered {
		if !start.IsZero() && rec.DateRequested.Before(start) {
			continue
		}
		if !end.IsZero() && !rec.DateRequested.Before(end) {
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}
