package directory

import (
	"context"
	"errors"
	"time"

	"business-directory/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const snapshotKey = "directory:snapshot:v1"

// SnapshotCache keeps the encoded company snapshot in Redis between page loads.
type SnapshotCache struct {
	client redis.Cmdable
	ttl    time.Duration
	key    string
}

func NewSnapshotCache(client redis.Cmdable, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl, key: snapshotKey}
}

// Get returns the cached payload. A miss is reported with ok=false and a nil error.
func (c *SnapshotCache) Get(ctx context.Context) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.SnapshotCacheLookups.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.SnapshotCacheLookups.WithLabelValues("error").Inc()
		return nil, false, err
	}
	metrics.SnapshotCacheLookups.WithLabelValues("hit").Inc()
	return payload, true, nil
}

func (c *SnapshotCache) Set(ctx context.Context, payload []byte) error {
	return c.client.Set(ctx, c.key, payload, c.ttl).Err()
}

// Invalidate drops the cached payload after a write.
func (c *SnapshotCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
