// File: internal/auth/blocklist.go
package auth

import (
	"context"
	"time"

	"clinic_backend/internal/shared"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// InMemoryBlocklistService tracks revoked token JTIs until they expire.
type InMemoryBlocklistService struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewInMemoryBlocklistService creates a blocklist backed by an in-memory cache.
func NewInMemoryBlocklistService(logger *zap.Logger) shared.TokenBlocklist {
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &InMemoryBlocklistService{cache: c, logger: logger.Named("token_blocklist")}
}

// AddToBlocklist records a JTI until the token's natural expiry.
func (s *InMemoryBlocklistService) AddToBlocklist(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired, nothing to revoke.
		return nil
	}
	s.cache.Set(jti, true, ttl)
	s.logger.Debug("Token added to blocklist", zap.String("jti", jti), zap.Duration("ttl", ttl))
	return nil
}

// IsBlocklisted reports whether the given JTI has been revoked.
func (s *InMemoryBlocklistService) IsBlocklisted(ctx context.Context, jti string) (bool, error) {
	_, found := s.cache.Get(jti)
	return found, nil
}
