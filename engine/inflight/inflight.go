package inflight

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultKeyPrefix = "governance:inflight:"
	defaultTTL       = 2 * time.Minute
)

// Locker marks a conversation as having an in-flight pipeline run. The
// marker is checked-and-set atomically so two concurrent invocations for
// the same conversation cannot both reach a send decision off stale state.
type Locker interface {
	Acquire(ctx context.Context, conversationID string) (bool, error)
	Release(ctx context.Context, conversationID string) error
}

// RedisLocker implements Locker with SET NX and a TTL safety net: a crashed
// invocation releases its marker when the TTL lapses.
type RedisLocker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

type RedisLockerOption func(*RedisLocker)

func WithTTL(ttl time.Duration) RedisLockerOption {
	return func(l *RedisLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

func WithKeyPrefix(prefix string) RedisLockerOption {
	return func(l *RedisLocker) {
		if prefix != "" {
			l.keyPrefix = prefix
		}
	}
}

func NewRedisLocker(client *redis.Client, opts ...RedisLockerOption) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	l := &RedisLocker{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, conversationID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.keyPrefix+conversationID, "1", l.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, conversationID string) error {
	if err := l.client.Del(ctx, l.keyPrefix+conversationID).Err(); err != nil {
		log.Warn().Err(err).Str("conversation_id", conversationID).Msg("inflight marker release failed")
		return err
	}
	return nil
}

// NoopLocker never contends. Used when no Redis is configured.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (bool, error) { return true, nil }
func (NoopLocker) Release(context.Context, string) error         { return nil }
