package memoryrepo

import (
	"context"
	"sync"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/application"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
)

type DeploymentRepository struct {
	mu     sync.RWMutex
	items  map[string]*domain.DeploymentRecord
	serial int64
}

func NewDeploymentRepository() *DeploymentRepository {
	return &DeploymentRepository{items: make(map[string]*domain.DeploymentRecord)}
}

func (r *DeploymentRepository) GetByID(_ context.Context, id string) (*domain.DeploymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.items[id]; ok {
		return rec.Clone(), nil
	}
	return nil, nil
}

func (r *DeploymentRepository) List(_ context.Context) ([]*domain.DeploymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.DeploymentRecord, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec.Clone())
	}
	return out, nil
}

func (r *DeploymentRepository) Save(_ context.Context, rec *domain.DeploymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rec.ID] = rec.Clone()
	return nil
}

func (r *DeploymentRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *DeploymentRepository) NextSerial(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.serial++
	return r.serial, nil
}

type ReleaseRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Release
}

func NewReleaseRepository() *ReleaseRepository {
	return &ReleaseRepository{items: make(map[string]*domain.Release)}
}

func (r *ReleaseRepository) GetByName(_ context.Context, name string) (*domain.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rel := range r.items {
		if rel.Name == name {
			copy := *rel
			return &copy, nil
		}
	}
	return nil, nil
}

func (r *ReleaseRepository) List(_ context.Context) ([]*domain.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Release, 0, len(r.items))
	for _, rel := range r.items {
		copy := *rel
		out = append(out, &copy)
	}
	return out, nil
}

func (r *ReleaseRepository) Save(_ context.Context, rel *domain.Release) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *rel
	r.items[rel.ID] = &copy
	return nil
}

type ServiceRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.Service
}

func NewServiceRepository() *ServiceRepository {
	return &ServiceRepository{items: make(map[string]*domain.Service)}
}

func (r *ServiceRepository) List(_ context.Context) ([]*domain.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Service, 0, len(r.items))
	for _, svc := range r.items {
		copy := *svc
		out = append(out, &copy)
	}
	return out, nil
}

func (r *ServiceRepository) Save(_ context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *svc
	r.items[svc.ID] = &copy
	return nil
}

type UserRepository struct {
	mu    sync.RWMutex
	items map[string]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{items: make(map[string]*domain.User)}
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.items[username]; ok {
		copy := *u
		return &copy, nil
	}
	return nil, nil
}

func (r *UserRepository) Save(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *u
	r.items[u.Username] = &copy
	return nil
}

type SessionStore struct {
	mu    sync.RWMutex
	items map[string]*application.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[string]*application.Session)}
}

func (r *SessionStore) Get(_ context.Context, token string) (*application.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.items[token]; ok {
		copy := *s
		return &copy, nil
	}
	return nil, nil
}

func (r *SessionStore) Put(_ context.Context, s *application.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copy := *s
	r.items[s.Token] = &copy
	return nil
}

func (r *SessionStore) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, token)
	return nil
}
