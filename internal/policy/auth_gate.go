package policy

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/autoparts/auth"
	"github.com/diewo77/autoparts/gate"
	"github.com/diewo77/autoparts/httpx"
	"github.com/diewo77/autoparts/internal/apperr"
	"gorm.io/gorm"
)

// AuthGate holds the configured Gate with caching.
// Use this as the central authorization point of the application.
type AuthGate struct {
	Gate          *gate.Gate
	CacheResolver *gate.CachedResolver
}

// NewAuthGate resolves roles from user_roles and caches them for cacheTTL.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver(NewDBRoleResolver(db), cacheTTL)
	return &AuthGate{
		Gate:          gate.NewGate(cached, gate.DefaultGrants()),
		CacheResolver: cached,
	}
}

// RegisterPolicy adds a record-level policy for a resource type.
func (ag *AuthGate) RegisterPolicy(resourceType string, p gate.Policy) {
	ag.Gate.Register(resourceType, p)
}

// Authorize checks the user in ctx. Denials come back as
// apperr.ErrUnauthenticated or *apperr.AuthorizationError.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	userID, _ := auth.UserIDFromContext(ctx)
	return translate(ag.Gate.Authorize(ctx, userID, action, resourceType, resource), string(gate.NewPermission(resourceType, action)))
}

// Can is a convenience method that returns bool instead of error.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}

// IsAdmin reports whether the user in ctx holds the admin role.
func (ag *AuthGate) IsAdmin(ctx context.Context) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	admin, err := ag.Gate.IsAdmin(ctx, userID)
	return err == nil && admin
}

// InvalidateUser clears the cache for a specific user.
// Call this when a user's roles change.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

// RequirePermission returns middleware that checks the role grants only;
// record-level policies run inside handlers once the record is loaded.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ag.Authorize(r.Context(), action, resourceType, nil); err != nil {
				httpx.Error(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin returns middleware that only allows users holding the admin role.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.Error(w, apperr.ErrUnauthenticated)
				return
			}
			admin, err := ag.Gate.IsAdmin(r.Context(), userID)
			if err != nil {
				httpx.Error(w, apperr.Remote("resolve roles", err))
				return
			}
			if !admin {
				httpx.Error(w, &apperr.AuthorizationError{Reason: "admin role required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func translate(err error, perm string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gate.ErrUnauthenticated):
		return apperr.ErrUnauthenticated
	case errors.Is(err, gate.ErrForbidden):
		return &apperr.AuthorizationError{Reason: perm}
	default:
		return apperr.Remote("resolve roles", err)
	}
}
