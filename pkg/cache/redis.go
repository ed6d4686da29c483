// backend/pkg/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"learning-system/internal/models"
)

// ErrMiss is returned when a key is absent from the cache.
var ErrMiss = errors.New("cache miss")

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisCacheWithClient(client, ttl)
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func courseKey(id uint) string {
	return fmt.Sprintf("course:%d", id)
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) SetCourse(ctx context.Context, course *models.Course) error {
	data, err := json.Marshal(course)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, courseKey(course.ID), data, c.ttl).Err()
}

func (c *RedisCache) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	data, err := c.client.Get(ctx, courseKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var course models.Course
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *RedisCache) DeleteCourse(ctx context.Context, id uint) error {
	return c.client.Del(ctx, courseKey(id)).Err()
}
