package repositories

import (
	"context"
	"time"
)

// TokenRepository records revoked token ids until they would have expired anyway.
type TokenRepository interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
