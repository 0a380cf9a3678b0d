package domain

import "strings"

// Filters agrupa los predicados independientes de la lista principal.
// Un campo vacío significa "sin filtro". El free-text search no vive acá:
// se delega al backend.
type Filters struct {
	Status      string
	Environment string
	Release     string
	Team        string
	Service     string
}

// Apply intersecta todos los predicados activos contra records, en orden
// fijo: status → environment → release → team → service. El orden no cambia
// el resultado (todos los predicados son conjuntivos) pero se mantiene fijo
// para tests determinísticos. Status y team comparan case-insensitive.
//
// Regla especial de environment: filtrar por PERF matchea registros con
// PERF solicitado O performanceReady activo; PROD matchea PROD solicitado O
// productionReady activo. El resto usa pertenencia simple.
func (f Filters) Apply(records []*DeploymentRecord) []*DeploymentRecord {
	out := make([]*DeploymentRecord, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		if f.Status != "" && !strings.EqualFold(string(rec.Status), f.Status) {
			continue
		}
		if f.Environment != "" && !matchesEnvironment(rec, Environment(f.Environment)) {
			continue
		}
		if f.Release != "" && rec.Release != f.Release {
			continue
		}
		if f.Team != "" && !strings.EqualFold(rec.Team, f.Team) {
			continue
		}
		if f.Service != "" && rec.Service != f.Service {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesEnvironment(rec *DeploymentRecord, env Environment) bool {
	switch env {
	case EnvPERF:
		return rec.HasEnvironment(EnvPERF) || rec.PerformanceReady
	case EnvPROD:
		return rec.HasEnvironment(EnvPROD) || rec.ProductionReady
	default:
		return rec.HasEnvironment(env)
	}
}

// MatchesSearch implementa el matching server-side del parámetro search:
// substring case-insensitive sobre los campos visibles del registro.
func MatchesSearch(rec *DeploymentRecord, query string) bool {
	if query == "" {
		return true
	}
	if rec == nil {
		return false
	}
	q := strings.ToLower(query)
	fields := []string{
		rec.SerialNumber,
		rec.CsiID,
		rec.Service,
		rec.Team,
		rec.Release,
		rec.RequestID,
		rec.UpcomingBranch,
		rec.ConfigRequestID,
		rec.UpcomingConfigBranch,
		string(rec.Status),
		rec.CreatedBy,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
