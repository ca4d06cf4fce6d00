package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientName is how registry connections show up in CLIENT LIST
const ClientName = "wiredriver"

// DefaultRedisPoolSize covers the manager, the cleanup worker and the API.
// Registry writes happen once per session change, not per command.
const DefaultRedisPoolSize = 4

// RedisOptions locates the session registry
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int // DefaultRedisPoolSize when zero
}

// RedisClient wraps the redis client with helper methods
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient connects to the registry and checks the connection
func NewRedisClient(opts RedisOptions) (*RedisClient, error) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = DefaultRedisPoolSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:       opts.Addr,
		Password:   opts.Password,
		DB:         opts.DB,
		ClientName: ClientName,

		PoolSize:        opts.PoolSize,
		MinIdleConns:    1,
		ConnMaxIdleTime: 5 * time.Minute,

		// A slow registry must not hold up session commands
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Ping tests the connection
func (r *RedisClient) Ping() error {
	return r.client.Ping(r.ctx).Err()
}
