package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationCache is the fast-path lookup for revoked tokens, consulted by
// the auth path before the Mongo ledger. Entries expire with the token they
// shadow; the ledger stays authoritative, so losing the cache only costs a
// lookup per request.
// Key format: revoked:<token_id>
type RevocationCache struct {
	client *redis.Client
}

// NewRevocationCache creates a RevocationCache wrapping the given Redis client.
func NewRevocationCache(client *redis.Client) *RevocationCache {
	return &RevocationCache{client: client}
}

// IsRevoked reports whether the token id has been marked revoked.
func (c *RevocationCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

// MarkRevoked records the revocation, expiring once the token itself would
// have expired anyway.
func (c *RevocationCache) MarkRevoked(ctx context.Context, tokenID string, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(tokenID), "1", ttl).Err()
}

func (c *RevocationCache) key(tokenID string) string {
	return "revoked:" + tokenID
}
