package httpapi

import (
	"net/http"

	"github.com/prakharxagrawal/deployment-portal-angular/platform/httpx"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"go.uber.org/zap"
)

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	services, err := s.services.ListServices(r.Context())
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("listServices error", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, services)
}

func (s *Server) searchServices(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	query := r.URL.Query().Get("query")

	services, err := s.services.SearchServices(r.Context(), query)
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("searchServices error", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, services)
}
