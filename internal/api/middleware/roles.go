package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kiranshivaraju/rfpmarket/internal/cache"
	"github.com/kiranshivaraju/rfpmarket/internal/store"
)

// CachedRoles resolves roles from the store, caching hits in Redis.
type CachedRoles struct {
	store store.Store
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedRoles(st store.Store, c cache.Cache, ttl time.Duration) *CachedRoles {
	return &CachedRoles{store: st, cache: c, ttl: ttl}
}

// UserRole implements RoleLookup. Cache errors fall through to the store.
func (c *CachedRoles) UserRole(ctx context.Context, userID uuid.UUID) (string, error) {
	if role, found, err := c.cache.GetUserRole(ctx, userID); err == nil && found {
		return role, nil
	}

	role, err := c.store.GetUserRole(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoRole
	}
	if err != nil {
		return "", err
	}

	if err := c.cache.SetUserRole(ctx, userID, role, c.ttl); err != nil {
		slog.Warn("caching user role failed", "user_id", userID, "error", err)
	}
	return role, nil
}
