package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleAdmin = "ADMIN"
	RoleAgent = "AGENT"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAgent:
		return true
	default:
		return false
	}
}

func IsAdmin(role string) bool { return role == RoleAdmin }
