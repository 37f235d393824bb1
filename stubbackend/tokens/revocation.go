package tokens

import (
	"sync"
	"time"
)

// RevokedTokens remembers revoked access token IDs until they would have expired anyway.
type RevokedTokens struct {
	revoked map[string]time.Time
	mu      sync.RWMutex
}

func NewRevokedTokens() *RevokedTokens {
	return &RevokedTokens{revoked: make(map[string]time.Time)}
}

func (c *RevokedTokens) Add(jti string, exp time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked[jti] = exp
}

func (c *RevokedTokens) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.revoked[jti]
	return exists
}

// Cleanup drops entries whose token has expired.
func (c *RevokedTokens) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := NowTimeFunc()
	for jti, exp := range c.revoked {
		if now.After(exp) {
			delete(c.revoked, jti)
		}
	}
}
