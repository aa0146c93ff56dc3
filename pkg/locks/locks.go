// Package locks serializes replan runs: at most one may be in flight at a
// time, across instances when Redis is configured, within the process
// otherwise.
package locks

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Mutex is a try-lock guarding the replan pipeline. The TTL bounds how long
// a crashed holder can block subsequent runs.
type Mutex struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	held  int32
	token string
}

// NewMutex builds a Mutex. A nil client degrades to a process-local guard.
func NewMutex(client *redis.Client, key string, ttl time.Duration) *Mutex {
	if key == "" {
		key = "replan:lock"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Mutex{client: client, key: key, ttl: ttl}
}

// TryLock attempts to take the lock without blocking. It returns false when
// another run already holds it.
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	if !atomic.CompareAndSwapInt32(&m.held, 0, 1) {
		return false, nil
	}
	if m.client == nil {
		return true, nil
	}

	token := uuid.NewString()
	ok, err := m.client.SetNX(ctx, m.key, token, m.ttl).Result()
	if err != nil {
		atomic.StoreInt32(&m.held, 0)
		return false, err
	}
	if !ok {
		atomic.StoreInt32(&m.held, 0)
		return false, nil
	}
	m.token = token
	return true, nil
}

// Unlock releases the lock. Only the holder's token can delete the Redis
// key, so an expired-and-retaken lock is never released by a stale holder.
func (m *Mutex) Unlock(ctx context.Context) error {
	defer atomic.StoreInt32(&m.held, 0)
	if m.client == nil || m.token == "" {
		return nil
	}
	token := m.token
	m.token = ""
	return releaseScript.Run(ctx, m.client, []string{m.key}, token).Err()
}
