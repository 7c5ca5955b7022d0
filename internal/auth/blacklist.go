package auth

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "bl:jti:"

// Blacklist answers whether a session credential was revoked before expiry.
type Blacklist interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisBlacklist is a Blacklist backed by the shared Redis the auth service
// writes revocations into.
type RedisBlacklist struct {
	client *redis.Client
}

// NewRedisBlacklist constructs a RedisBlacklist.
func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

// IsRevoked checks the revocation key for the token id.
func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := b.client.Get(ctx, blacklistKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
