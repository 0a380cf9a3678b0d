package console

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/adapters/portalhttp"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	perrors "github.com/prakharxagrawal/deployment-portal-angular/platform/errors"
)

func TestSessionSubscribeNotify(t *testing.T) {
	s := NewSession(nil)

	var seen []*domain.User
	unsubscribe := s.Subscribe(func(u *domain.User) {
		seen = append(seen, u)
	})

	s.Set(&domain.User{Username: "alice", Role: domain.RoleDeveloper})
	s.Clear()

	if len(seen) != 2 {
		t.Fatalf("listener fired %d times, want 2", len(seen))
	}
	if seen[0] == nil || seen[0].Username != "alice" {
		t.Errorf("first notification = %+v", seen[0])
	}
	if seen[1] != nil {
		t.Errorf("second notification = %+v, want nil", seen[1])
	}

	unsubscribe()
	s.Set(&domain.User{Username: "bob", Role: domain.RoleAdmin})
	if len(seen) != 2 {
		t.Error("listener fired after unsubscribe")
	}
}

func TestSessionCurrentReturnsCopy(t *testing.T) {
	s := NewSession(nil)
	s.Set(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

	got := s.Current()
	got.Username = "mallory"

	if s.Current().Username != "alice" {
		t.Error("mutating the returned user leaked into the session")
	}
}

func TestSessionRestore_OptimisticThenAuthoritative(t *testing.T) {
	cache := &MemoryCredentialCache{}
	cache.Store(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

	s := NewSession(cache)

	var seen []*domain.User
	s.Subscribe(func(u *domain.User) {
		var copied *domain.User
		if u != nil {
			c := *u
			copied = &c
		}
		seen = append(seen, copied)
	})

	// El backend dice que la sesión ahora es de rol admin: ésa gana.
	api := &fakePortal{
		sessionFn: func(context.Context) (*domain.User, error) {
			return &domain.User{Username: "alice", Role: domain.RoleAdmin}, nil
		},
	}

	if err := s.Restore(context.Background(), api); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("listener fired %d times, want 2 (optimistic + authoritative)", len(seen))
	}
	if seen[0].Role != domain.RoleDeveloper {
		t.Errorf("optimistic notification role = %s, want developer", seen[0].Role)
	}
	if seen[1].Role != domain.RoleAdmin {
		t.Errorf("authoritative notification role = %s, want admin", seen[1].Role)
	}
	if s.Current().Role != domain.RoleAdmin {
		t.Errorf("final role = %s, want admin", s.Current().Role)
	}
}

func TestSessionRestore_BackendRejectionClearsEverything(t *testing.T) {
	cache := &MemoryCredentialCache{}
	cache.Store(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

	s := NewSession(cache)

	wantErr := errors.New("session expired")
	api := &fakePortal{
		sessionFn: func(context.Context) (*domain.User, error) {
			return nil, wantErr
		},
	}

	if err := s.Restore(context.Background(), api); !errors.Is(err, wantErr) {
		t.Fatalf("Restore error = %v, want %v", err, wantErr)
	}

	if s.Current() != nil {
		t.Error("session must be cleared after an authoritative rejection")
	}
	if _, ok := cache.Load(); ok {
		t.Error("credential cache must be cleared too")
	}
}

func TestSessionLogin(t *testing.T) {
	cache := &MemoryCredentialCache{}
	s := NewSession(cache)

	api := &fakePortal{
		loginFn: func(_ context.Context, username, password string) (*domain.User, error) {
			if username != "alice" || password != "secret" {
				return nil, errors.New("invalid credentials")
			}
			return &domain.User{Username: "alice", Role: domain.RoleDeveloper}, nil
		},
	}

	if err := s.Login(context.Background(), api, "alice", "nope"); err == nil {
		t.Fatal("bad credentials must fail")
	}
	if s.Current() != nil {
		t.Error("failed login must not set a user")
	}

	if err := s.Login(context.Background(), api, "alice", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Current() == nil || s.Current().Username != "alice" {
		t.Errorf("current = %+v", s.Current())
	}
	if cached, ok := cache.Load(); !ok || cached.Username != "alice" {
		t.Error("login must populate the credential cache")
	}
}

func TestSessionObserve(t *testing.T) {
	unauthorized := &portalhttp.Error{Status: http.StatusUnauthorized, Code: "session_not_found"}

	cases := []struct {
		name      string
		err       error
		wantClear bool
	}{
		{"nil error is a no-op", nil, false},
		{"transport 401 clears", unauthorized, true},
		{"wrapped 401 clears", fmt.Errorf("reloading list: %w", unauthorized), true},
		{"platform unauthorized clears", perrors.Unauthorized("session_not_found", "session not found", nil), true},
		{"other transport error keeps the session", &portalhttp.Error{Status: http.StatusForbidden, Code: "edit_not_allowed"}, false},
		{"plain error keeps the session", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSession(nil)
			s.Set(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

			s.Observe(tc.err)

			cleared := s.Current() == nil
			if cleared != tc.wantClear {
				t.Errorf("cleared = %v, want %v", cleared, tc.wantClear)
			}
		})
	}

	// Receiver nil: los componentes sin sesión compartida no explotan.
	var none *Session
	none.Observe(unauthorized)
}

func TestSessionLogout_ClearsLocalStateEvenOnBackendError(t *testing.T) {
	cache := &MemoryCredentialCache{}
	s := NewSession(cache)
	s.Set(&domain.User{Username: "alice", Role: domain.RoleDeveloper})

	wantErr := errors.New("backend down")
	api := &fakePortal{
		logoutFn: func(context.Context) error { return wantErr },
	}

	if err := s.Logout(context.Background(), api); !errors.Is(err, wantErr) {
		t.Fatalf("Logout error = %v, want %v", err, wantErr)
	}
	if s.Current() != nil {
		t.Error("local session must be cleared even when the backend fails")
	}
	if _, ok := cache.Load(); ok {
		t.Error("credential cache must be cleared even when the backend fails")
	}
}
