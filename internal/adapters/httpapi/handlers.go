package httpapi

import (
	"net/http"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/application"
	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	perrors "github.com/prakharxagrawal/deployment-portal-angular/platform/errors"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/httpx"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const sessionCookieName = "portal_session"

type Server struct {
	services *application.Services
	logger   *zap.Logger
}

func NewServer(services *application.Services, logger *zap.Logger) *Server {
	return &Server{services: services, logger: logger}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.health)
	mux.HandleFunc("/api/login", s.login)
	mux.HandleFunc("/api/logout", s.logout)
	mux.HandleFunc("/api/session", s.session)
	mux.HandleFunc("/api/deployments", s.deployments)
	mux.HandleFunc("/api/deployments/", s.deploymentByID)
	mux.HandleFunc("/api/releases", s.releases)
	mux.HandleFunc("/api/services", s.listServices)
	mux.HandleFunc("/api/services/search", s.searchServices)
	mux.HandleFunc("/api/reports/general", s.generalReport)
	mux.Handle("/metrics", promhttp.Handler())

	instrumented := observability.InstrumentHTTP(mux)
	return otelhttp.NewHandler(instrumented, "deployment-portal-api")
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteText(w, http.StatusOK, "ok")
}

// sessionToken extrae el token de la cookie de sesión, si existe.
func sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requireUser resuelve el usuario de la sesión o escribe el 401. Todos los
// endpoints salvo login pasan por acá: un 401 le indica al cliente que debe
// forzar logout local.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, err := s.services.SessionUser(r.Context(), sessionToken(r))
	if err != nil {
		writeDomainError(w, err)
		return nil, false
	}
	return user, true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest

	switch {
	case perrors.IsKind(err, perrors.KindNotFound):
		status = http.StatusNotFound
	case perrors.IsKind(err, perrors.KindConflict):
		status = http.StatusConflict
	case perrors.IsKind(err, perrors.KindUnauthorized):
		status = http.StatusUnauthorized
	case perrors.IsKind(err, perrors.KindForbidden):
		status = http.StatusForbidden
	case perrors.IsKind(err, perrors.KindInternal):
		status = http.StatusInternalServerError
	case perrors.IsKind(err, perrors.KindDomain), perrors.IsKind(err, perrors.KindValidation):
		status = http.StatusBadRequest
	}

	code := perrors.Code(err)
	if code == "" {
		code = "unknown_error"
	}

	resp := errorResponse{
		Code:    code,
		Message: err.Error(),
	}

	httpx.WriteJSON(w, status, resp)
}
