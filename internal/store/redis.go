package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	"github.com/lox/mahjongdojo/internal/round"
)

const defaultRedisKey = "mahjongdojo:snapshot"

// RedisOptions configures the Redis store
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Key      string
	// TTL expires the record when positive
	TTL time.Duration
}

// Redis keeps the record under a single key
type Redis struct {
	cli    *redis.Client
	key    string
	ttl    time.Duration
	logger *log.Logger
}

// NewRedis connects to Redis and checks the connection
func NewRedis(ctx context.Context, opts RedisOptions, logger *log.Logger) (*Redis, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	key := opts.Key
	if key == "" {
		key = defaultRedisKey
	}
	logger.Info("Connected to redis", "addr", opts.Addr, "key", key)
	return &Redis{cli: cli, key: key, ttl: opts.TTL, logger: logger}, nil
}

func (r *Redis) Save(ctx context.Context, rec round.Record) error {
	data, err := round.Encode(rec)
	if err != nil {
		return err
	}
	if err := r.cli.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context) (round.Record, error) {
	data, err := r.cli.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return round.Record{}, round.ErrNotFound
	}
	if err != nil {
		return round.Record{}, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return round.Decode(data)
}

// Delete removes the record
func (r *Redis) Delete(ctx context.Context) error {
	return r.cli.Del(ctx, r.key).Err()
}

func (r *Redis) Close() error {
	if err := r.cli.Close(); err != nil {
		r.logger.Error("Failed to close redis client", "error", err)
		return err
	}
	return nil
}
