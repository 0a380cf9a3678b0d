package domain

import "regexp"

var releaseNamePattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidReleaseName informa si name cumple el patrón YYYY-MM.
func ValidReleaseName(name string) bool {
	return releaseNamePattern.MatchString(name)
}

// ValidateRecord aplica las invariantes de un DeploymentRecord y devuelve
// un mapa campo → mensaje. Mapa vacío significa registro válido. Se usa
// tanto en el form del console (errores inline) como en el backend antes
// de persistir.
func ValidateRecord(rec *DeploymentRecord) map[string]string {
	problems := make(map[string]string)
	if rec == nil {
		problems["record"] = "record is required"
		return problems
	}

	if rec.CsiID == "" {
		problems["csiId"] = "csiId is required"
	}
	if rec.Service == "" {
		problems["service"] = "service is required"
	}
	if rec.Team == "" {
		problems["team"] = "team is required"
	}
	if rec.Release == "" {
		problems["release"] = "release is required"
	}

	// requestId / upcomingBranch: al menos uno.
	if rec.RequestID == "" && rec.UpcomingBranch == "" {
		problems["requestId"] = "requestId or upcomingBranch is required"
	}

	// El par de config sólo se exige cuando isConfig está activo.
	if rec.IsConfig && rec.ConfigRequestID == "" && rec.UpcomingConfigBranch == "" {
		problems["configRequestId"] = "configRequestId or upcomingConfigBranch is required"
	}

	if len(rec.Environments) == 0 {
		problems["environments"] = "at least one environment is required"
	}
	for _, env := range rec.Environments {
		if !knownEnvironment(env) {
			problems["environments"] = "unknown environment " + string(env)
			break
		}
	}

	if rec.Status != "" && !ValidStatus(rec.Status) {
		problems["status"] = "unknown status " + string(rec.Status)
	}

	return problems
}

// knownEnvironment acepta también PROD: registros existentes pueden tenerlo,
// aunque nunca sea seleccionable de forma directa en un alta.
func knownEnvironment(env Environment) bool {
	return env == EnvPROD || SelectableEnvironment(env)
}
