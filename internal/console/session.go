package console

import (
	"context"
	"errors"
	"sync"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/ports"
	perrors "github.com/prakharxagrawal/deployment-portal-angular/platform/errors"
)

// CredentialCache es el análogo del storage local del browser: guarda el
// último usuario conocido para restaurar la UI de forma optimista antes de
// que el chequeo autoritativo contra el backend termine.
type CredentialCache interface {
	Load() (*domain.User, bool)
	Store(u *domain.User)
	Clear()
}

// Session es el estado de sesión compartido del console, con contrato
// subscribe/notify explícito en lugar de un singleton ambiente. Su ciclo de
// vida (init, update, clear) son operaciones explícitas.
type Session struct {
	mu        sync.Mutex
	user      *domain.User
	cache     CredentialCache
	listeners map[int]func(*domain.User)
	nextID    int
}

// NewSession crea una sesión vacía. cache puede ser nil.
func NewSession(cache CredentialCache) *Session {
	return &Session{
		cache:     cache,
		listeners: make(map[int]func(*domain.User)),
	}
}

// Subscribe registra un listener y devuelve la función para darlo de baja.
// El listener recibe el usuario actual (o nil) en cada cambio.
func (s *Session) Subscribe(fn func(*domain.User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Current devuelve el usuario autenticado o nil.
func (s *Session) Current() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	copy := *s.user
	return &copy
}

// Set actualiza el usuario de la sesión y notifica a los listeners.
func (s *Session) Set(u *domain.User) {
	s.mu.Lock()
	if u == nil {
		s.user = nil
	} else {
		copy := *u
		s.user = &copy
	}
	if s.cache != nil {
		if u == nil {
			s.cache.Clear()
		} else {
			s.cache.Store(u)
		}
	}
	s.mu.Unlock()

	s.notify()
}

// Clear descarta la sesión local. Se usa en logout y ante cualquier 401.
func (s *Session) Clear() {
	s.Set(nil)
}

// Observe inspecciona el error de cualquier llamada al portal fuera del
// login. Un 401 significa que la sesión server-side ya no existe: logout
// forzado local, la UI vuelve al login. Seguro sobre receiver nil para los
// componentes que corren sin sesión compartida.
func (s *Session) Observe(err error) {
	if s == nil || err == nil {
		return
	}
	if sessionRejected(err) {
		s.Clear()
	}
}

// sessionRejected reconoce un 401 sin acoplar el console al transporte: el
// error del client HTTP expone Unauthorized(), los errores de plataforma
// llevan el kind.
func sessionRejected(err error) bool {
	var unauthorized interface{ Unauthorized() bool }
	if errors.As(err, &unauthorized) {
		return unauthorized.Unauthorized()
	}
	return perrors.IsKind(err, perrors.KindUnauthorized)
}

// Restore hace el arranque en dos pasos: primero restaura el usuario
// cacheado (si hay) para que la UI renderice algo, después consulta
// GET /api/session como fuente de verdad. Cualquier error del chequeo
// autoritativo limpia la sesión local.
func (s *Session) Restore(ctx context.Context, api ports.PortalAPI) error {
	if s.cache != nil {
		if cached, ok := s.cache.Load(); ok {
			s.Set(cached)
		}
	}

	user, err := api.Session(ctx)
	if err != nil {
		s.Clear()
		return err
	}

	s.Set(user)
	return nil
}

// Login autentica contra el backend y publica el usuario resultante.
func (s *Session) Login(ctx context.Context, api ports.PortalAPI, username, password string) error {
	user, err := api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	s.Set(user)
	return nil
}

// Logout cierra la sesión server-side y limpia el estado local. El estado
// local se limpia incluso si el backend falla: la intención del usuario
// de salir siempre gana.
func (s *Session) Logout(ctx context.Context, api ports.PortalAPI) error {
	err := api.Logout(ctx)
	s.Clear()
	return err
}

func (s *Session) notify() {
	s.mu.Lock()
	current := s.user
	fns := make([]func(*domain.User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	var snapshot *domain.User
	if current != nil {
		copy := *current
		snapshot = &copy
	}
	for _, fn := range fns {
		fn(snapshot)
	}
}

// MemoryCredentialCache es una implementación en memoria del cache de
// credenciales, suficiente para tests y para correr sin browser.
type MemoryCredentialCache struct {
	mu   sync.Mutex
	user *domain.User
}

func (c *MemoryCredentialCache) Load() (*domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil, false
	}
	copy := *c.user
	return &copy, true
}

func (c *MemoryCredentialCache) Store(u *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if u == nil {
		c.user = nil
		return
	}
	copy := *u
	c.user = &copy
}

func (c *MemoryCredentialCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
}
