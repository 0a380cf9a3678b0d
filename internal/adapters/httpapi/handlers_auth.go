package httpapi

import (
	"net/http"

	"github.com/prakharxagrawal/deployment-portal-angular/platform/httpx"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req loginRequest
	if !httpx.DecodeJSON(w, r, &req, "invalid json") {
		return
	}

	user, token, err := s.services.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Warn("login error", zap.String("username", req.Username), zap.Error(err))
		observability.ObserveDomainEvent("user_login", "error")
		writeDomainError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	observability.ObserveDomainEvent("user_login", "success")
	httpx.WriteJSON(w, http.StatusOK, user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.services.Logout(r.Context(), sessionToken(r)); err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("logout error", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	// Expira la cookie del lado del browser.
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	observability.ObserveDomainEvent("user_logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}

	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user)
}
