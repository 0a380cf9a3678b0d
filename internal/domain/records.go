package domain

import "time"

// Entidades centrales del portal de deployment requests.

type Role string

type Status string

type Environment string

type ReadinessKind string

const (
	RoleDeveloper  Role = "developer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"

	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusPending    Status = "Pending"
	StatusCompleted  Status = "Completed"

	EnvUAT1 Environment = "UAT1"
	EnvUAT2 Environment = "UAT2"
	EnvUAT3 Environment = "UAT3"
	EnvPERF Environment = "PERF"
	EnvPROD Environment = "PROD"

	ReadinessProduction  ReadinessKind = "production"
	ReadinessPerformance ReadinessKind = "performance"
)

// SelectableEnvironments son los entornos que un usuario puede pedir
// directamente. PROD nunca se selecciona a mano: sólo se alcanza vía el
// flag productionReady.
var SelectableEnvironments = []Environment{EnvUAT1, EnvUAT2, EnvUAT3, EnvPERF}

// Catálogos estáticos del portal.
var (
	Teams  = []string{"Phoenix", "Crusaders", "Transformers", "Avengers", "CRUD", "Hyper Care"}
	CsiIDs = []string{"172033", "172223", "169608"}
)

type User struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	// PasswordHash nunca viaja en respuestas JSON.
	PasswordHash string `json:"-"`
}

// DeploymentRecord es la entidad central: una solicitud de despliegue con
// clasificación, entornos objetivo, estado de workflow y flags de readiness.
type DeploymentRecord struct {
	ID           string `json:"id"`
	SerialNumber string `json:"serialNumber"`

	CsiID   string `json:"csiId"`
	Service string `json:"service"`
	Team    string `json:"team"`
	Release string `json:"release"`

	// requestId y upcomingBranch son identificadores sustituibles entre sí:
	// al menos uno debe estar presente.
	RequestID      string `json:"requestId"`
	UpcomingBranch string `json:"upcomingBranch"`

	IsConfig             bool   `json:"isConfig"`
	ConfigRequestID      string `json:"configRequestId"`
	UpcomingConfigBranch string `json:"upcomingConfigBranch"`

	Environments []Environment `json:"environments"`
	Status       Status        `json:"status"`

	ProductionReady  bool `json:"productionReady"`
	PerformanceReady bool `json:"performanceReady"`

	RlmIDUat1  string `json:"rlmIdUat1"`
	RlmIDUat2  string `json:"rlmIdUat2"`
	RlmIDUat3  string `json:"rlmIdUat3"`
	RlmIDPerf1 string `json:"rlmIdPerf1"`
	RlmIDPerf2 string `json:"rlmIdPerf2"`
	RlmIDProd1 string `json:"rlmIdProd1"`
	RlmIDProd2 string `json:"rlmIdProd2"`

	CreatedBy     string    `json:"createdBy"`
	DateRequested time.Time `json:"dateRequested"`
	DateModified  time.Time `json:"dateModified"`
}

// HasEnvironment informa si env está entre los entornos solicitados.
func (r *DeploymentRecord) HasEnvironment(env Environment) bool {
	for _, e := range r.Environments {
		if e == env {
			return true
		}
	}
	return false
}

// Clone devuelve una copia profunda del registro (el slice de environments
// es el único campo con memoria compartida).
func (r *DeploymentRecord) Clone() *DeploymentRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Environments = append([]Environment(nil), r.Environments...)
	return &clone
}

// Release agrupa deployment requests bajo un nombre YYYY-MM.
type Release struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Service es una entrada de catálogo usada para autocompletar; este módulo
// no la crea ni la muta.
type Service struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ValidStatus informa si s es uno de los estados de workflow conocidos.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// SelectableEnvironment informa si env puede ser pedido directamente.
func SelectableEnvironment(env Environment) bool {
	for _, e := range SelectableEnvironments {
		if e == env {
			return true
		}
	}
	return false
}
