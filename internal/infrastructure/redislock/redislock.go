package redislock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Locker implements an advisory lock on top of redis SET NX. The lock value
// is a random token so that only the holder releases it.
type Locker struct {
	client *redis.Client
	logger zerolog.Logger
}

func New(client *redis.Client, logger zerolog.Logger) *Locker {
	return &Locker{
		client: client,
		logger: logger.With().Str("component", "redislock").Logger(),
	}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	unlock := func() {
		if _, err := releaseScript.Run(context.Background(), l.client, []string{key}, token).Result(); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}
	return unlock, true, nil
}
