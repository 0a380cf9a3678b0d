package console

import (
	"context"
	"errors"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
)

// fakePortal es un PortalAPI guiado por funciones, para dirigir cada test
// sin levantar un server.
type fakePortal struct {
	loginFn   func(ctx context.Context, username, password string) (*domain.User, error)
	logoutFn  func(ctx context.Context) error
	sessionFn func(ctx context.Context) (*domain.User, error)

	listFn   func(ctx context.Context, search string, configOnly bool) ([]*domain.DeploymentRecord, error)
	createFn func(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error)
	updateFn func(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error)

	reportFn func(ctx context.Context, release, environment, team, startDate, endDate string) ([]byte, error)
}

var errNotScripted = errors.New("not scripted")

func (f *fakePortal) Login(ctx context.Context, username, password string) (*domain.User, error) {
	if f.loginFn == nil {
		return nil, errNotScripted
	}
	return f.loginFn(ctx, username, password)
}

func (f *fakePortal) Logout(ctx context.Context) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx)
}

func (f *fakePortal) Session(ctx context.Context) (*domain.User, error) {
	if f.sessionFn == nil {
		return nil, errNotScripted
	}
	return f.sessionFn(ctx)
}

func (f *fakePortal) ListDeployments(ctx context.Context, search string, configOnly bool) ([]*domain.DeploymentRecord, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, search, configOnly)
}

func (f *fakePortal) CreateDeployment(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error) {
	if f.createFn == nil {
		return nil, errNotScripted
	}
	return f.createFn(ctx, rec)
}

func (f *fakePortal) UpdateDeployment(ctx context.Context, rec *domain.DeploymentRecord) (*domain.DeploymentRecord, error) {
	if f.updateFn == nil {
		return nil, errNotScripted
	}
	return f.updateFn(ctx, rec)
}

func (f *fakePortal) DeleteDeployment(context.Context, string) error { return nil }

func (f *fakePortal) ListReleases(context.Context) ([]*domain.Release, error) { return nil, nil }

func (f *fakePortal) CreateRelease(context.Context, string) (*domain.Release, error) {
	return nil, errNotScripted
}

func (f *fakePortal) ListServices(context.Context) ([]*domain.Service, error) { return nil, nil }

func (f *fakePortal) SearchServices(context.Context, string) ([]*domain.Service, error) {
	return nil, nil
}

func (f *fakePortal) GeneralReport(ctx context.Context, release, environment, team, startDate, endDate string) ([]byte, error) {
	if f.reportFn == nil {
		return nil, errNotScripted
	}
	return f.reportFn(ctx, release, environment, team, startDate, endDate)
}
