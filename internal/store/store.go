// Package store persists round snapshots. Every backend keeps a single record
// holding the latest snapshot, encoded with round.Encode.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/mahjongdojo/internal/round"
)

// Backend names accepted by Open
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

const connectTimeout = 10 * time.Second

// Store is a round.Store that holds a connection
type Store interface {
	round.Store
	Close() error
}

// Config selects and configures a backend
type Config struct {
	Backend string

	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string
	RedisTTL      time.Duration

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
	MongoID         string
}

// Open connects the configured backend
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Store, error) {
	logger = logger.WithPrefix("store")
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.Path), nil
	case BackendRedis:
		return NewRedis(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Key:      cfg.RedisKey,
			TTL:      cfg.RedisTTL,
		}, logger)
	case BackendMongo:
		return NewMongo(ctx, MongoOptions{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			ID:         cfg.MongoID,
		}, logger)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
