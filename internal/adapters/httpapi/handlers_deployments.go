package httpapi

import (
	"net/http"
	"strings"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/httpx"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"go.uber.org/zap"
)

// deployments atiende la colección: GET lista (con search y config) y POST
// crea un registro nuevo.
func (s *Server) deployments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listDeployments(w, r)
	case http.MethodPost:
		s.createDeployment(w, r)
	default:
		httpx.WriteText(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listDeployments(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	search := r.URL.Query().Get("search")
	configOnly := r.URL.Query().Get("config") == "true"

	records, err := s.services.ListDeployments(r.Context(), search, configOnly)
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("listDeployments error", zap.Error(err))
		writeDomainError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, records)
}

func (s *Server) createDeployment(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var rec domain.DeploymentRecord
	if !httpx.DecodeJSON(w, r, &rec, "invalid json") {
		return
	}

	created, err := s.services.CreateDeployment(r.Context(), user, &rec)
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("createDeployment error", zap.String("user", user.Username), zap.Error(err))
		observability.ObserveDomainEvent("deployment_created", "error")
		writeDomainError(w, err)
		return
	}

	observability.ObserveDomainEvent("deployment_created", "success")
	httpx.WriteJSON(w, http.StatusCreated, created)
}

// deploymentByID atiende /api/deployments/{id}: PUT actualiza, DELETE borra.
func (s *Server) deploymentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/deployments/")
	if id == "" || strings.Contains(id, "/") {
		httpx.WriteText(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateDeployment(w, r, id)
	case http.MethodDelete:
		s.deleteDeployment(w, r, id)
	default:
		httpx.WriteText(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) updateDeployment(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var rec domain.DeploymentRecord
	if !httpx.DecodeJSON(w, r, &rec, "invalid json") {
		return
	}
	rec.ID = id

	updated, err := s.services.UpdateDeployment(r.Context(), user, &rec)
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("updateDeployment error", zap.String("user", user.Username), zap.String("id", id), zap.Error(err))
		observability.ObserveDomainEvent("deployment_updated", "error")
		writeDomainError(w, err)
		return
	}

	observability.ObserveDomainEvent("deployment_updated", "success")
	httpx.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteDeployment(w http.ResponseWriter, r *http.Request, id string) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	if err := s.services.DeleteDeployment(r.Context(), user, id); err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("deleteDeployment error", zap.String("user", user.Username), zap.String("id", id), zap.Error(err))
		observability.ObserveDomainEvent("deployment_deleted", "error")
		writeDomainError(w, err)
		return
	}

	observability.ObserveDomainEvent("deployment_deleted", "success")
	w.WriteHeader(http.StatusNoContent)
}
