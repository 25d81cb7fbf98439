package gate

import (
	"context"
	"sync"
	"time"
)

// RoleResolver looks up the roles held by a user.
type RoleResolver interface {
	Resolve(ctx context.Context, userID uint) ([]Role, error)
}

// StaticResolver is an in-memory resolver, handy in tests.
type StaticResolver struct {
	mu    sync.RWMutex
	roles map[uint][]Role
}

func NewStaticResolver() *StaticResolver {
	return &StaticResolver{roles: make(map[uint][]Role)}
}

func (r *StaticResolver) Set(userID uint, roles ...Role) {
	r.mu.Lock()
	r.roles[userID] = roles
	r.mu.Unlock()
}

func (r *StaticResolver) Resolve(_ context.Context, userID uint) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roles[userID], nil
}

// CachedResolver wraps a RoleResolver with a TTL cache so authorization
// checks do not hit the database on every request.
type CachedResolver struct {
	inner RoleResolver
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[uint]cacheEntry
}

type cacheEntry struct {
	roles     []Role
	expiresAt time.Time
}

func NewCachedResolver(inner RoleResolver, ttl time.Duration) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[uint]cacheEntry),
	}
}

func (r *CachedResolver) Resolve(ctx context.Context, userID uint) ([]Role, error) {
	r.mu.RLock()
	entry, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.roles, nil
	}

	roles, err := r.inner.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[userID] = cacheEntry{roles: roles, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return roles, nil
}

// Invalidate drops one user; call it when that user's roles change.
func (r *CachedResolver) Invalidate(userID uint) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

func (r *CachedResolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[uint]cacheEntry)
	r.mu.Unlock()
}
