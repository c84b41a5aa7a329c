package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/airroutes/config"
	"github.com/Domenick1991/airroutes/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache stores computed itinerary lists under caller-built keys.
type RedisCache struct {
	client     *redis.Client
	resultsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, resultsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		resultsTTL: resultsTTL,
	}
}

// GetItineraries returns nil, nil on a miss.
func (c *RedisCache) GetItineraries(ctx context.Context, key string) ([]domain.Itinerary, error) {
	data, err := c.client.Get(ctx, itinerariesKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	itineraries := make([]domain.Itinerary, 0)
	if err := json.Unmarshal(data, &itineraries); err != nil {
		return nil, err
	}
	return itineraries, nil
}

func (c *RedisCache) SetItineraries(ctx context.Context, key string, itineraries []domain.Itinerary) error {
	payload, err := json.Marshal(itineraries)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itinerariesKey(key), payload, c.resultsTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func itinerariesKey(key string) string {
	return "cache:itineraries:" + key
}
