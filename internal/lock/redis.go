// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "paper-digest:lock:"

// Redis is a Locker backed by SET NX with a TTL. Each instance has its own
// owner token so it never releases a lock taken by another replica.
type Redis struct {
	client *redis.Client
	owner  string
}

// NewRedis returns a Redis Locker using client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, owner: uuid.NewString()}
}

// Acquire sets the key only when absent.
func (r *Redis) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, keyPrefix+name, r.owner, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	return ok, nil
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Release deletes the key if this instance still owns it.
func (r *Redis) Release(ctx context.Context, name string) error {
	err := releaseScript.Run(ctx, r.client, []string{keyPrefix + name}, r.owner).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
