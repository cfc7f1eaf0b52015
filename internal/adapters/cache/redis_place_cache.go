package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleet-route-service/internal/domain"
)

// RedisPlaceCache memoizes geocoding results by exact key: forward searches
// by query string and reverse lookups by coordinate pair. Entries are
// TTL-bounded; a miss is never an error.
type RedisPlaceCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisPlaceCache(client *redis.Client, ttl time.Duration) *RedisPlaceCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisPlaceCache{Client: client, TTL: ttl}
}

func searchKey(query string) string { return "geocode:search:" + query }

func reverseKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:reverse:%.5f,%.5f", lat, lng)
}

// Fetch cached search candidates for the given query. The second return
// reports whether the key was present.
func (c *RedisPlaceCache) GetPlaces(ctx context.Context, query string) ([]domain.Place, bool, error) {
	if c.Client == nil {
		return nil, false, errors.New("place cache: client is nil")
	}

	raw, err := c.Client.Get(ctx, searchKey(query)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: query %q: %w", query, err)
	}

	var places []domain.Place
	if err := json.Unmarshal(raw, &places); err != nil {
		return nil, false, fmt.Errorf("get place cache: decode %q: %w", query, err)
	}

	return places, true, nil
}

// Store search candidates for the given query.
func (c *RedisPlaceCache) PutPlaces(ctx context.Context, query string, places []domain.Place) error {
	if c.Client == nil {
		return errors.New("place cache: client is nil")
	}

	raw, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("put place cache: encode %q: %w", query, err)
	}

	if err := c.Client.Set(ctx, searchKey(query), raw, c.TTL).Err(); err != nil {
		return fmt.Errorf("put place cache: set %q: %w", query, err)
	}

	return nil
}

// Fetch a cached reverse-geocoded name for the given coordinates.
func (c *RedisPlaceCache) GetName(ctx context.Context, lat, lng float64) (string, bool, error) {
	if c.Client == nil {
		return "", false, errors.New("place cache: client is nil")
	}

	name, err := c.Client.Get(ctx, reverseKey(lat, lng)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get name cache: %.5f,%.5f: %w", lat, lng, err)
	}

	return name, true, nil
}

// Store a reverse-geocoded name for the given coordinates.
func (c *RedisPlaceCache) PutName(ctx context.Context, lat, lng float64, name string) error {
	if c.Client == nil {
		return errors.New("place cache: client is nil")
	}

	if err := c.Client.Set(ctx, reverseKey(lat, lng), name, c.TTL).Err(); err != nil {
		return fmt.Errorf("put name cache: %.5f,%.5f: %w", lat, lng, err)
	}

	return nil
}
