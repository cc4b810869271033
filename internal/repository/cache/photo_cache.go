package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aliskhannn/photoshare/internal/model"
)

const keyPhoto = "photo:%s"

// PhotoCache is a Redis-backed cache for photo metadata records.
// All failures are reported to the caller, which treats them as
// best-effort and logs without failing the request.
type PhotoCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPhotoCache connects to Redis and verifies the connection.
func NewPhotoCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*PhotoCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PhotoCache{client: client, ttl: ttl}, nil
}

// Get returns the cached photo and whether it was present.
func (c *PhotoCache) Get(ctx context.Context, id uuid.UUID) (model.Photo, bool, error) {
	data, err := c.client.Get(ctx, fmt.Sprintf(keyPhoto, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Photo{}, false, nil
		}

		return model.Photo{}, false, fmt.Errorf("cache get: %w", err)
	}

	var p model.Photo
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Photo{}, false, fmt.Errorf("cache unmarshal: %w", err)
	}

	return p, true, nil
}

// Set stores the photo under its ID with the configured TTL.
func (c *PhotoCache) Set(ctx context.Context, p model.Photo) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}

	if err := c.client.Set(ctx, fmt.Sprintf(keyPhoto, p.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Delete drops the cached entry for the photo.
func (c *PhotoCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, fmt.Sprintf(keyPhoto, id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}

	return nil
}

// Close releases the underlying Redis connection.
func (c *PhotoCache) Close() error {
	return c.client.Close()
}
