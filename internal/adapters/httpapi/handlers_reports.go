package httpapi

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/prakharxagrawal/deployment-portal-angular/internal/domain"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/httpx"
	"github.com/prakharxagrawal/deployment-portal-angular/platform/observability"
	"go.uber.org/zap"
)

var reportHeader = []string{
	"Serial Number", "CSI ID", "Service", "Team", "Release",
	"Request ID", "Upcoming Branch", "Is Config", "Config Request ID", "Upcoming Config Branch",
	"Environments", "Status", "Production Ready", "Performance Ready",
	"RLM UAT1", "RLM UAT2", "RLM UAT3", "RLM PERF1", "RLM PERF2", "RLM PROD1", "RLM PROD2",
	"Created By", "Date Requested", "Date Modified",
}

// generalReport genera el CSV del reporte general. Todos los criterios son
// opcionales y el filename refleja release y environment pedidos.
func (s *Server) generalReport(w http.ResponseWriter, r *http.Request) {
	if !httpx.RequireMethod(w, r, http.MethodGet) {
		return
	}
	if _, ok := s.requireUser(w, r); !ok {
		return
	}

	q := r.URL.Query()
	release := q.Get("release")
	environment := q.Get("environment")
	team := q.Get("team")

	records, err := s.services.GeneralReport(r.Context(), release, environment, team, q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		logger := observability.LoggerWithTrace(r.Context(), s.logger)
		logger.Error("generalReport error", zap.Error(err))
		observability.ObserveReportExport("error", 0)
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", reportFilename(release, environment)))
	w.WriteHeader(http.StatusOK)

	writer := csv.NewWriter(w)
	_ = writer.Write(reportHeader)
	for _, rec := range records {
		_ = writer.Write(reportRow(rec))
	}
	writer.Flush()

	observability.ObserveReportExport("success", len(records))
	observability.ObserveDomainEvent("report_generated", "success")
}

func reportFilename(release, environment string) string {
	if release == "" {
		release = "all"
	}
	if environment == "" {
		environment = "all"
	}
	return fmt.Sprintf("deployment_report_%s_%s.csv", release, environment)
}

func reportRow(rec *domain.DeploymentRecord) []string {
	envs := make([]string, 0, len(rec.Environments))
	for _, e := range rec.Environments {
		envs = append(envs, string(e))
	}

	return []string{
		rec.SerialNumber, rec.CsiID, rec.Service, rec.Team, rec.Release,
		rec.RequestID, rec.UpcomingBranch, strconv.FormatBool(rec.IsConfig), rec.ConfigRequestID, rec.UpcomingConfigBranch,
		strings.Join(envs, "|"), string(rec.Status),
		strconv.FormatBool(rec.ProductionReady), strconv.FormatBool(rec.PerformanceReady),
		rec.RlmIDUat1, rec.RlmIDUat2, rec.RlmIDUat3, rec.RlmIDPerf1, rec.RlmIDPerf2, rec.RlmIDProd1, rec.RlmIDProd2,
		rec.CreatedBy, rec.DateRequested.Format("2006-01-02"), rec.DateModified.Format("2006-01-02"),
	}
}
