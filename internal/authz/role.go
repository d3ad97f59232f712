package authz

// Role is the closed set of account roles.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
)

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleSuperadmin, RoleAdmin, RoleManager, RoleStaff:
		return Role(raw), true
	}
	return "", false
}

// Valid reports whether the role is part of the closed set.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// TeamRole reports whether the role can be provisioned by an admin.
func (r Role) TeamRole() bool {
	return r == RoleManager || r == RoleStaff
}
