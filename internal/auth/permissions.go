package auth

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermCircuitRead   Permission = "circuit:read"
	PermCircuitEdit   Permission = "circuit:edit"
	PermProjectRead   Permission = "project:read"
	PermProjectSave   Permission = "project:save"
	PermProjectManage Permission = "project:manage"
	PermAuditRead     Permission = "audit:read"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermCircuitRead,
		PermProjectRead,
	},
	RoleEditor: {
		PermCircuitRead,
		PermCircuitEdit,
		PermProjectRead,
		PermProjectSave,
	},
	RoleAdmin: {
		PermCircuitRead,
		PermCircuitEdit,
		PermProjectRead,
		PermProjectSave,
		PermProjectManage,
		PermAuditRead,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns the permissions granted to a role.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
