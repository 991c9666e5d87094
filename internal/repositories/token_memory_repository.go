package repositories

import (
	"context"
	"sync"
	"time"
)

// MemoryTokenRepository is an in-process implementation of TokenRepository,
// used when redis is not configured. Revocations do not survive a restart.
type MemoryTokenRepository struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryTokenRepository creates a new instance of MemoryTokenRepository.
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks tokenID as revoked for ttl.
func (r *MemoryTokenRepository) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, until := range r.revoked {
		if !now.Before(until) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked reports whether tokenID is currently revoked.
func (r *MemoryTokenRepository) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	until, ok := r.revoked[tokenID]
	return ok && r.now().Before(until), nil
}
