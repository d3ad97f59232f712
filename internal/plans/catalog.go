package plans

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store is the backing lookup surface for the catalog.
type Store interface {
	ByID(ctx context.Context, id string) (Plan, error)
	ByName(ctx context.Context, name string) (Plan, error)
}

// Catalog is a read-through cache over the plan table. Plans are immutable
// reference data, so entries are cached with a plain TTL; concurrent misses
// for the same key collapse into one load.
type Catalog struct {
	store  Store
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewCatalog instantiates the cached catalog. A nil redis client degrades
// to direct store reads.
func NewCatalog(store Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Catalog {
	return &Catalog{store: store, client: client, ttl: ttl, logger: logger}
}

// ByID resolves a plan by id.
func (c *Catalog) ByID(ctx context.Context, id string) (Plan, error) {
	return c.fetch(ctx, "plans:id:"+id, func(ctx context.Context) (Plan, error) {
		return c.store.ByID(ctx, id)
	})
}

// ByName resolves a plan by tier name.
func (c *Catalog) ByName(ctx context.Context, name string) (Plan, error) {
	return c.fetch(ctx, "plans:name:"+name, func(ctx context.Context) (Plan, error) {
		return c.store.ByName(ctx, name)
	})
}

func (c *Catalog) fetch(ctx context.Context, key string, loader func(context.Context) (Plan, error)) (Plan, error) {
	if c.client == nil {
		return loader(ctx)
	}
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var p Plan
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("plan cache read", slog.String("key", key), slog.Any("error", err))
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		p, err := loader(ctx)
		if err != nil {
			return Plan{}, err
		}
		raw, err := json.Marshal(p)
		if err == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("plan cache write", slog.String("key", key), slog.Any("error", err))
			}
		}
		return p, nil
	})
	if err != nil {
		return Plan{}, err
	}
	return value.(Plan), nil
}
