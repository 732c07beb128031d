package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/intranet-directory/internal/domain"
)

const snapshotCachePrefix = "org:snapshot:"

// OrgSnapshotCache keeps the latest snapshot close to the API. A miss is
// reported with ok=false, never as an error.
type OrgSnapshotCache interface {
	Get(ctx context.Context, key string) (snap *domain.OrgSnapshot, ok bool, err error)
	Set(ctx context.Context, snapshot *domain.OrgSnapshot) error
	Invalidate(ctx context.Context, key string) error
}

type cachedSnapshot struct {
	Data           json.RawMessage `json:"data"`
	TotalEmployees int             `json:"totalEmployees"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOrgSnapshotCache returns a Redis backed cache. A nil client yields a
// cache that always misses.
func NewOrgSnapshotCache(client *redis.Client, ttl time.Duration) OrgSnapshotCache {
	return &redisSnapshotCache{client: client, ttl: ttl}
}

func (c *redisSnapshotCache) Get(ctx context.Context, key string) (*domain.OrgSnapshot, bool, error) {
	if c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, snapshotCachePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	snap, err := decodeSnapshot(key, raw)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

func (c *redisSnapshotCache) Set(ctx context.Context, snapshot *domain.OrgSnapshot) error {
	if c.client == nil {
		return nil
	}
	raw, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotCachePrefix+snapshot.Key, raw, c.ttl).Err()
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context, key string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, snapshotCachePrefix+key).Err()
}

func encodeSnapshot(snapshot *domain.OrgSnapshot) ([]byte, error) {
	if !json.Valid(snapshot.Data) {
		return nil, fmt.Errorf("snapshot %q: data is not valid JSON", snapshot.Key)
	}
	return json.Marshal(cachedSnapshot{
		Data:           snapshot.Data,
		TotalEmployees: snapshot.TotalEmployees,
		UpdatedAt:      snapshot.UpdatedAt,
	})
}

func decodeSnapshot(key string, raw []byte) (*domain.OrgSnapshot, error) {
	var cached cachedSnapshot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("decode cached snapshot %q: %w", key, err)
	}
	return &domain.OrgSnapshot{
		Key:            key,
		Data:           cached.Data,
		TotalEmployees: cached.TotalEmployees,
		UpdatedAt:      cached.UpdatedAt,
	}, nil
}
