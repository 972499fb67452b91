package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"itemhub/internal/db"
)

// Options tune Open.
type Options struct {
	Debug       bool
	AutoMigrate bool
	RedisPrefix string
}

// Store bundles the repositories of one backend with its lifecycle hooks.
type Store struct {
	Items   ItemRepository
	Users   UserRepository
	Backend string

	ping  func(context.Context) error
	close func() error
}

// Ping checks the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases connections.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewMemoryStore returns a store kept in process memory.
func NewMemoryStore() *Store {
	return &Store{
		Items:   NewMemoryItemRepository(),
		Users:   NewMemoryUserRepository(),
		Backend: db.SchemeMemory,
	}
}

// Open picks a backend from the DATABASE_URL scheme: sqlite, mysql and
// postgres go through gorm, redis uses the shared key-value store and
// memory keeps everything in process.
func Open(ctx context.Context, databaseURL string, opts Options, log *zap.Logger) (*Store, error) {
	scheme := db.Scheme(databaseURL)
	switch {
	case scheme == db.SchemeMemory:
		log.Warn("using in-memory store; data is lost on restart and not shared between processes")
		return NewMemoryStore(), nil

	case scheme == db.SchemeRedis:
		rdb, err := db.NewRedis(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return &Store{
			Items:   NewRedisItemRepository(rdb, opts.RedisPrefix),
			Users:   NewRedisUserRepository(rdb, opts.RedisPrefix),
			Backend: scheme,
			ping:    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			close:   rdb.Close,
		}, nil

	case db.IsSQL(databaseURL):
		gdb, err := db.Open(databaseURL, opts.Debug)
		if err != nil {
			return nil, err
		}
		if opts.AutoMigrate {
			if err := db.Migrate(gdb); err != nil {
				return nil, err
			}
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("sql pool: %w", err)
		}
		return &Store{
			Items:   NewItemRepository(gdb),
			Users:   NewUserRepository(gdb),
			Backend: scheme,
			ping:    sqlDB.PingContext,
			close:   sqlDB.Close,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", db.ErrUnsupportedScheme, scheme)
}
