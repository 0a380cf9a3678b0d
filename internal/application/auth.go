package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	perrors "github.com/prakharxagrawal/deployment-portal-angular/platform/errors"
)

// Authenticate valida credenciales y abre una sesión nueva. Devuelve el
// usuario y el token opaco que el adapter HTTP guarda en la cookie.
func (s *Services) Authenticate(ctx context.Context, username, password string) (*domain.User, string, error) {
	if s.Users == nil || s.Sessions == nil {
		return nil, "", perrors.Internal("auth_not_configured", "user repository or session store not configured", nil)
	}

	if username == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", perrors.Internal("user_repository_error", "error loading user", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	session := &Session{
		Token:     uuid.NewString(),
		Username:  user.Username,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Sessions.Put(ctx, session); err != nil {
		return nil, "", fmt.Errorf("saving session: %w", err)
	}

	return user, session.Token, nil
}

// SessionUser resuelve el usuario detrás de un token de sesión. Cualquier
// token desconocido o vacío se reporta como sesión inexistente: el cliente
// reacciona a eso con un logout forzado.
func (s *Services) SessionUser(ctx context.Context, token string) (*domain.User, error) {
	if s.Users == nil || s.Sessions == nil {
		return nil, perrors.Internal("auth_not_configured", "user repository or session store not configured", nil)
	}

	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.Sessions.Get(ctx, token)
	if err != nil {
		return nil, perrors.Internal("session_store_error", "error loading session", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	user, err := s.Users.GetByUsername(ctx, session.Username)
	if err != nil {
		return nil, perrors.Internal("user_repository_error", "error loading user", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout descarta la sesión. Idempotente: un token ya inexistente no es error.
func (s *Services) Logout(ctx context.Context, token string) error {
	if s.Sessions == nil {
		return perrors.Internal("auth_not_configured", "session store not configured", nil)
	}
	if token == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
