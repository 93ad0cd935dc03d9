package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"promoPilot/domain"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache keeps the latest saturation snapshot per creator so repeated
// reporting queries skip the 90-day recompute.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
	}
}

func snapshotKey(creatorID uint) string {
	return fmt.Sprintf("saturation:creator:%d", creatorID)
}

func (c *SnapshotCache) Get(ctx context.Context, creatorID uint) (*domain.SaturationSnapshot, error) {
	val, err := c.client.Get(ctx, snapshotKey(creatorID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}

	var snap domain.SaturationSnapshot
	if err := json.Unmarshal([]byte(val), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

func (c *SnapshotCache) Set(ctx context.Context, snapshot domain.SaturationSnapshot) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := c.client.Set(ctx, snapshotKey(snapshot.CreatorID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot in Redis: %w", err)
	}

	return nil
}
