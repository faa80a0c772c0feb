package domain

// Role is a member's role within a project. Roles form a strict hierarchy:
// OWNER > MANAGER > MEMBER.
type Role string

const (
	RoleOwner   Role = "OWNER"
	RoleManager Role = "MANAGER"
	RoleMember  Role = "MEMBER"
)

// Level returns the numeric rank of the role. Unknown roles rank 0.
func (r Role) Level() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r.Level() > 0 }

// Meets reports whether r satisfies the required minimum role.
func (r Role) Meets(required Role) bool {
	return r.Valid() && r.Level() >= required.Level()
}
