package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it is still held by the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// ActionLockRepository holds short-lived Redis locks that keep one decision
// in flight per clearance and action across gateway replicas.
type ActionLockRepository struct {
	client *redis.Client
	prefix string
}

// NewActionLockRepository constructs a lock repository.
func NewActionLockRepository(client *redis.Client) *ActionLockRepository {
	return &ActionLockRepository{client: client, prefix: "library:lock:"}
}

// Acquire tries to take the lock identified by key. It reports false when
// another holder already owns it.
func (r *ActionLockRepository) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// Release frees the lock if token still owns it.
func (r *ActionLockRepository) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.prefix + key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
