package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/chat-users/internal"
	"github.com/redis/go-redis/v9"
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := internal.WithStoreTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisTracker keeps one sorted set per deployment: member is the user id,
// score is the last heartbeat in unix milliseconds.
type RedisTracker struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisTracker(client redis.Cmdable, key string, ttl time.Duration) *RedisTracker {
	return &RedisTracker{
		client: client,
		key:    key,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *RedisTracker) Touch(ctx context.Context, userID string) error {
	score := float64(t.now().UnixMilli())
	if err := t.client.ZAdd(ctx, t.key, redis.Z{Score: score, Member: userID}).Err(); err != nil {
		return fmt.Errorf("presence touch: %w", err)
	}
	return nil
}

func (t *RedisTracker) Forget(ctx context.Context, userID string) error {
	if err := t.client.ZRem(ctx, t.key, userID).Err(); err != nil {
		return fmt.Errorf("presence forget: %w", err)
	}
	return nil
}

func (t *RedisTracker) ActiveUserIDs(ctx context.Context) ([]string, error) {
	cutoff := t.cutoff()

	pipe := t.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, t.key, "-inf", "("+cutoff)
	active := pipe.ZRangeByScore(ctx, t.key, &redis.ZRangeBy{Min: cutoff, Max: "+inf"})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("presence active ids: %w", err)
	}

	ids := active.Val()
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (t *RedisTracker) IsActive(ctx context.Context, userID string) (bool, error) {
	score, err := t.client.ZScore(ctx, t.key, userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("presence status: %w", err)
	}
	return int64(score) >= t.now().Add(-t.ttl).UnixMilli(), nil
}

func (t *RedisTracker) cutoff() string {
	return strconv.FormatInt(t.now().Add(-t.ttl).UnixMilli(), 10)
}
