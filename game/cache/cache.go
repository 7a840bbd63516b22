// Package cache stores solve results keyed by maze layout.
//
// Three backends share the Cache interface:
//   - NullCache: never stores anything, used when caching is disabled
//   - FileCache: one JSON file per entry under a directory, for single hosts
//   - RedisCache: a shared Redis instance, for several servers behind one catalog
//
// Entries are opaque bytes with an optional TTL. Keys for layouts come from
// LayoutKey so that two identical mazes share an entry whatever their name.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownBackend is returned by New for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown cache backend")

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the entry and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A zero ttl keeps the entry until it is deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend       string // "none", "file" or "redis"
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New builds the backend named in opts. An empty backend means no caching.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", "none":
		return NewNullCache(), nil
	case "file":
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "redis":
		c, err := NewRedisCache(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
