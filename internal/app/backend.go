package app

import (
	"context"
	"fmt"

	"github.com/dyluth/careersync/internal/backend/filestore"
	"github.com/dyluth/careersync/internal/backend/pgstore"
	"github.com/dyluth/careersync/internal/backend/redisstore"
	"github.com/dyluth/careersync/internal/backend/sqlitestore"
	"github.com/dyluth/careersync/internal/config"
	"github.com/dyluth/careersync/internal/logging"
	"github.com/dyluth/careersync/internal/persist"
	"github.com/dyluth/careersync/pkg/slots"
	"github.com/rs/zerolog"
)

// Backend is a slot store the composition root can health-check and close.
type Backend interface {
	persist.Backend
	Ping(ctx context.Context) error
	Close() error
}

// memoryBackend lends the in-process store the Ping and Close it lacks.
type memoryBackend struct {
	*persist.MemoryBackend
}

func (memoryBackend) Ping(context.Context) error { return nil }
func (memoryBackend) Close() error               { return nil }

// NewMemoryBackend returns an in-process backend tagged with source.
func NewMemoryBackend(source string) Backend {
	return memoryBackend{persist.NewMemoryBackend(source)}
}

// OpenBackend opens the storage selected by cfg.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config, source string, log zerolog.Logger) (Backend, error) {
	switch cfg.Backend.Type {
	case config.BackendMemory:
		return NewMemoryBackend(source), nil

	case config.BackendFile:
		return filestore.Open(cfg.Backend.Path, source, logging.Component(log, "filestore"))

	case config.BackendRedis:
		client, err := slots.NewClientFromURL(cfg.Backend.URL, cfg.Workspace)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.New(client, source, logging.Component(log, "redisstore")), nil

	case config.BackendSQLite:
		return sqlitestore.Open(logging.WithComponent(logging.WithContext(ctx, log), "sqlitestore"), cfg.Backend.Path)

	case config.BackendPostgres:
		return pgstore.Connect(ctx, cfg.Backend.URL, cfg.Workspace)

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend.Type)
	}
}
