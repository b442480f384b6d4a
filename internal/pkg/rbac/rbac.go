// internal/pkg/rbac/rbac.go
package rbac

const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AdminRoles may enter the admin console.
var AdminRoles = []string{RoleAdmin, RoleSuperAdmin}

// HasAnyRole reports whether userRoles and allowed intersect. An empty
// allow-list never matches.
func HasAnyRole(userRoles, allowed []string) bool {
	if len(allowed) == 0 || len(userRoles) == 0 {
		return false
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}
	for _, role := range userRoles {
		if _, ok := allowedSet[role]; ok {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the roles grant admin console access.
func IsAdmin(userRoles []string) bool {
	return HasAnyRole(userRoles, AdminRoles)
}
