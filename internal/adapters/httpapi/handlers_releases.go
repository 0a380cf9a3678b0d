package httpapi

import (
	"net/http"

	"github.com/prakharxagrawal/deployment-portal-angular/platform/httpx"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"go.uber.org/zap"
)

type createReleaseRequest struct {
	Name string `json:"name"`
}

func (s *Server) releases(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listReleases(w, r)
	case http.MethodPost:
		s.createRelease(w, r)
	default:
		httpx.WriteText(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listReleases(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	releases, err := s.services.ListReleases(r.Context())
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("listReleases error", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, releases)
}

func (s *Server) createRelease(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req createReleaseRequest
	if !httpx.DecodeJSON(w, r, &req, "invalid json") {
		return
	}

	release, err := s.services.CreateRelease(r.Context(), user, req.Name)
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("createRelease error", zap.String("user", user.Username), zap.Error(err))
		observability.ObserveDomainEvent("release_created", "error")
		writeDomainError(w, err)
		return
	}

	observability.ObserveDomainEvent("release_created", "success")
	httpx.WriteJSON(w, http.StatusCreated, release)
}
