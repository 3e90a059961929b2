package processor

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const dedupKeyPrefix = "hookline:changes:seen:"
const defaultDedupTTL = 24 * time.Hour

// DedupGuard remembers change event ids that were already processed. The
// bus delivers at least once; without a guard a redelivered event is
// re-evaluated and creates fresh execution records.
//
// Seen is a read; Mark is called only after the event processed. A marker
// written before processing would swallow the bus redelivery that a failed
// trigger lookup relies on.
type DedupGuard interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

// RedisDedup implements DedupGuard with a TTL marker per event id. The TTL
// only needs to outlive the bus's redelivery window.
type RedisDedup struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisDedup connects to redis using a redis:// URL.
func NewRedisDedup(redisURL string) (*RedisDedup, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &RedisDedup{
		client: redis.NewClient(options),
		ttl:    defaultDedupTTL,
	}, nil
}

// Seen reports whether the event id carries a marker.
func (d *RedisDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	count, err := d.client.Exists(ctx, dedupKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check dedup marker: %w", err)
	}

	return count > 0, nil
}

// Mark records the event id once processing completed.
func (d *RedisDedup) Mark(ctx context.Context, eventID string) error {
	err := d.client.Set(ctx, dedupKeyPrefix+eventID, 1, d.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to write dedup marker: %w", err)
	}

	return nil
}

func (d *RedisDedup) Close() error {
	return d.client.Close()
}
