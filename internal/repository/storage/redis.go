package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(ctx context.Context, addr string) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStorage{client: client}, nil
}

func (that *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := that.client.Get(ctx, key).Result()

	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to get key %q: %w", key, err)
	}

	return value, nil
}

func (that *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := that.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}

	return nil
}

func (that *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := that.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}

	return nil
}

func (that *RedisStorage) Close() error {
	if err := that.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}
