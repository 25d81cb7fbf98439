// Package gate is a small role/permission authorization core. Roles map to
// "resource:action" permissions; optional per-resource policies add
// record-level checks such as ownership. It knows nothing about HTTP or
// the database.
package gate

import "context"

// Gate combines role permissions with resource policies:
//  1. the user must be authenticated (non-zero id)
//  2. one of the user's roles must grant resource:action
//  3. unless the user is a super admin, a registered policy for the
//     resource type must accept the concrete resource, when one is given
type Gate struct {
	resolver RoleResolver
	grants   Grants
	policies map[string]Policy
}

func NewGate(resolver RoleResolver, grants Grants) *Gate {
	return &Gate{
		resolver: resolver,
		grants:   grants,
		policies: make(map[string]Policy),
	}
}

// Register sets the policy for a resource type, replacing any previous one.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Subject resolves the roles of userID.
func (g *Gate) Subject(ctx context.Context, userID uint) (Subject, error) {
	if userID == 0 {
		return Subject{}, ErrUnauthenticated
	}
	roles, err := g.resolver.Resolve(ctx, userID)
	if err != nil {
		return Subject{}, err
	}
	return Subject{UserID: userID, Roles: roles}, nil
}

// Authorize returns nil when userID may perform action on resourceType.
// Resolver failures are returned as-is so callers can tell them apart
// from a denial.
func (g *Gate) Authorize(ctx context.Context, userID uint, action Action, resourceType string, resource any) error {
	subject, err := g.Subject(ctx, userID)
	if err != nil {
		return err
	}
	if !g.grants.Allows(subject.Roles, NewPermission(resourceType, action)) {
		return ErrForbidden
	}
	if resource == nil || g.grants.Allows(subject.Roles, PermissionSuperAdmin) {
		return nil
	}
	if p, ok := g.policies[resourceType]; ok && !p.Can(ctx, subject, action, resource) {
		return ErrForbidden
	}
	return nil
}

func (g *Gate) Can(ctx context.Context, userID uint, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, userID, action, resourceType, resource) == nil
}

// IsAdmin reports whether userID holds the admin role.
func (g *Gate) IsAdmin(ctx context.Context, userID uint) (bool, error) {
	subject, err := g.Subject(ctx, userID)
	if err != nil {
		return false, err
	}
	return subject.HasRole(RoleAdmin), nil
}
