package ports

import (
	"context"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
)

// Puertos del lado console – sin detalles de transporte acá.

// PortalAPI es el backend visto desde el console: sesión, registros,
// releases, catálogo y reporte. Lo implementa el adapter portalhttp.
type PortalAPI interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*domain.User, error)

	ListDeployments(ctx context.Context, search string, configOnly bool) ([]*domain.DeploymentRecord, error)
	CreateDeployment(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error)
	UpdateDeployment(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error)
	DeleteDeployment(ctx context.Context, id string) error

	ListReleases(ctx context.Context) ([]*domain.Release, error)
	CreateRelease(ctx context.Context, name string) (*domain.Release, error)

	ListServices(ctx context.Context) ([]*domain.Service, error)
	SearchServices(ctx context.Context, query string) ([]*domain.Service, error)

	GeneralReport(ctx context.Context, release, environment, team, startDate, endDate string) ([]byte, error)
}
