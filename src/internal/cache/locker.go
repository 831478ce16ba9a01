package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rishipandey14/HRMS-Backend/src/internal/models"
	"github.com/rishipandey14/HRMS-Backend/src/internal/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	lockKeyPattern = "lock:session:%s"
	lockRetryDelay = 25 * time.Millisecond
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker is a session.Locker shared by every instance pointing at the same Redis.
// The ttl bounds how long a crashed holder can keep an identity locked.
type RedisLocker struct {
	client *redis.Client
	script *redis.Script
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		ttl:    ttl,
	}
}

var _ session.Locker = (*RedisLocker)(nil)

// Lock retries SET NX until it wins or ctx ends. Waiting is capped at ttl when ctx has no deadline.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := fmt.Sprintf(lockKeyPattern, key)
	token := uuid.NewString()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.ttl)
		defer cancel()
	}

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", models.ErrLockNotAcquired, ctx.Err())
			}
			logrus.WithError(err).WithField("key", redisKey).Error("Failed to acquire lock")
			return nil, fmt.Errorf("%w: %v", models.ErrRedisSet, err)
		}
		if ok {
			return l.unlockFunc(redisKey, token), nil
		}

		timer := time.NewTimer(lockRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", models.ErrLockNotAcquired, ctx.Err())
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := l.script.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil {
				logrus.WithError(err).WithField("key", redisKey).Warn("Failed to release lock")
			}
		})
	}
}
