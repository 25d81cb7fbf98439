package gate

// Role is a flag stored against a user record.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Subject is an authenticated user together with its roles.
type Subject struct {
	UserID uint
	Roles  []Role
}

func (s Subject) HasRole(role Role) bool {
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Grants maps each role to the permissions it carries.
type Grants map[Role][]Permission

// DefaultGrants gives admins every permission and customers the right to
// request quotations and read their own.
func DefaultGrants() Grants {
	return Grants{
		RoleAdmin: {PermissionSuperAdmin},
		RoleCustomer: {
			NewPermission("quotation", ActionCreate),
			NewPermission("quotation", ActionListOwn),
			NewPermission("quotation", ActionView),
		},
	}
}

// Allows reports whether any of roles grants requested.
func (g Grants) Allows(roles []Role, requested Permission) bool {
	for _, role := range roles {
		for _, perm := range g[role] {
			if perm.Matches(requested) {
				return true
			}
		}
	}
	return false
}
