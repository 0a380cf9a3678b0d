package domain

// Permission policy: funciones puras sobre (user, record). Toda decisión de
// acceso del portal se deriva de role × status × ownership, nunca de role
// solo, porque los derechos del mismo usuario cambian cuando cambia el
// estado o el readiness del registro.

// CanEditStatus informa si el usuario puede editar el status inline.
func CanEditStatus(u *User) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// CanEditRlm informa si el usuario puede editar los RLM IDs inline.
func CanEditRlm(u *User) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// CanEditFullRecord informa si el usuario puede alterar clasificación y
// targeting de un registro existente. Sólo superadmin.
func CanEditFullRecord(u *User) bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// CanCreateRecord informa si el usuario puede crear registros nuevos.
// Admin no crea: sólo revisa.
func CanCreateRecord(u *User) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleDeveloper || u.Role == RoleSuperAdmin
}

// CanCreateRelease informa si el usuario puede crear releases.
func CanCreateRelease(u *User) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// CanDeleteRecord informa si el usuario puede borrar un registro.
func CanDeleteRecord(u *User) bool {
	return u != nil && u.Role == RoleSuperAdmin
}

// CanEditRecordDialog informa si el usuario puede abrir el diálogo de
// edición completa: superadmin siempre, developer sólo sobre sus propios
// registros mientras sigan en Open o Pending. Admin nunca (usa las
// ediciones inline de status/RLM).
func CanEditRecordDialog(u *User, rec *DeploymentRecord) bool {
	if u == nil || rec == nil {
		return false
	}
	if u.Role == RoleSuperAdmin {
		return true
	}
	if u.Role != RoleDeveloper {
		return false
	}
	if rec.Status != StatusOpen && rec.Status != StatusPending {
		return false
	}
	return rec.CreatedBy == u.Username
}

// CanMarkReady informa si el usuario puede togglear un flag de readiness.
// Requiere status Completed y ser superadmin o el creador del registro.
func CanMarkReady(kind ReadinessKind, u *User, rec *DeploymentRecord) bool {
	if u == nil || rec == nil {
		return false
	}
	if kind != ReadinessProduction && kind != ReadinessPerformance {
		return false
	}
	if rec.Status != StatusCompleted {
		return false
	}
	if u.Role == RoleAdmin {
		return false
	}
	return u.Role == RoleSuperAdmin || u.Username == rec.CreatedBy
}

// IsFormReadOnly informa si el registro quedó congelado para el usuario.
// Un registro con cualquier readiness flag activo es de sólo lectura para
// todos menos superadmin: ya fue promovido, no se toca.
func IsFormReadOnly(u *User, rec *DeploymentRecord) bool {
	if rec == nil {
		return false
	}
	if !rec.ProductionReady && !rec.PerformanceReady {
		return false
	}
	return u == nil || u.Role != RoleSuperAdmin
}
