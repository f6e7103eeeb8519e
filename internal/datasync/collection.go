// Package datasync turns UI intents into REST calls and keeps a local copy of
// the collection consistent afterwards.
//
// Every successful mutation is followed by a full reload of the collection;
// there is no optimistic update and no incremental patching of the cache.
// Failures are logged here and returned; the cache is left as it was.
package datasync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/poku-e/kitchen/internal/apiclient"
	"github.com/poku-e/kitchen/internal/model"
)

var (
	// ErrRequestFailed matches any failed round trip (bad status or transport).
	ErrRequestFailed = apiclient.ErrRequestFailed
	// ErrDeclined is returned when the user does not confirm a deletion.
	ErrDeclined = errors.New("deletion not confirmed")
	// ErrInFlight is returned when a mutation is attempted while another runs.
	ErrInFlight = errors.New("another change is still in flight")
)

// Transport is the subset of apiclient.Client the collections need.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(prompt string) bool

// Confirmed is a ConfirmFunc that always agrees, for --yes style flows.
func Confirmed(string) bool { return true }

// Collection mirrors one REST collection such as /api/recipes.
type Collection[T model.Entity] struct {
	api    Transport
	path   string
	noun   string
	logger *zap.Logger

	mu     sync.RWMutex
	items  []T
	loaded bool

	busy  atomic.Bool
	lists singleflight.Group
	// writes counts successful mutations; seq is the count the cache was
	// fetched at. A fetch that started before a write never replaces a newer cache.
	writes atomic.Uint64
	seq    uint64
}

// NewCollection binds a collection to path. noun names one entity in logs and prompts.
func NewCollection[T model.Entity](api Transport, path, noun string, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{
		api:    api,
		path:   path,
		noun:   noun,
		logger: logger.With(zap.String("collection", path)),
	}
}

func (c *Collection[T]) itemPath(id string) string {
	return c.path + "/" + url.PathEscape(id)
}

// List fetches the whole collection and replaces the cache with it.
// Overlapping calls share one request.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	v, err, _ := c.lists.Do("list", func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		c.logger.Error(fmt.Sprintf("Failed to load %ss", c.noun), zap.Error(err))
		return nil, err
	}
	return slices.Clone(v.([]T)), nil
}

// fetch issues one GET. When a write completed after the GET was sent, the
// response is dropped and the newer cache is returned instead.
func (c *Collection[T]) fetch(ctx context.Context) ([]T, error) {
	seq := c.writes.Load()
	var items []T
	if err := c.api.Do(ctx, http.MethodGet, c.path, nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded && seq < c.seq {
		c.logger.Debug("Dropping stale list", zap.Uint64("seq", seq), zap.Uint64("cache_seq", c.seq))
		return slices.Clone(c.items), nil
	}
	c.items = items
	c.seq = seq
	c.loaded = true
	return items, nil
}

// Cached returns a copy of the last successfully listed collection.
func (c *Collection[T]) Cached() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

// Loaded reports whether List has succeeded at least once.
func (c *Collection[T]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Find looks an entity up in the cache by identifier.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Create posts entity and reloads the collection on success. The response
// body is not read; the reload is what picks up the new identifier.
func (c *Collection[T]) Create(ctx context.Context, entity T) ([]T, error) {
	return c.mutate(ctx, "save", func() error {
		return c.api.Do(ctx, http.MethodPost, c.path, entity, nil)
	})
}

// Update patches the entity with id, either with a full replacement or an
// action payload, and reloads the collection on success.
func (c *Collection[T]) Update(ctx context.Context, id string, patch any) ([]T, error) {
	return c.mutate(ctx, "update", func() error {
		return c.api.Do(ctx, http.MethodPatch, c.itemPath(id), patch, nil)
	})
}

// Remove deletes the entity with id once confirm agrees. A nil confirm or a
// refusal returns ErrDeclined without touching the network.
func (c *Collection[T]) Remove(ctx context.Context, id string, confirm ConfirmFunc) ([]T, error) {
	if confirm == nil || !confirm(fmt.Sprintf("Are you sure you want to delete this %s?", c.noun)) {
		return c.Cached(), ErrDeclined
	}
	return c.mutate(ctx, "delete", func() error {
		return c.api.Do(ctx, http.MethodDelete, c.itemPath(id), nil, nil)
	})
}

// mutate runs one write with the in-flight guard held, then reloads with a
// GET of its own rather than joining a List already in flight.
// A failed reload after a successful write is logged but does not fail the write.
func (c *Collection[T]) mutate(ctx context.Context, verb string, write func() error) ([]T, error) {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.Warn(fmt.Sprintf("Ignoring %s: a change is still in flight", verb))
		return c.Cached(), ErrInFlight
	}
	defer c.busy.Store(false)

	if err := write(); err != nil {
		c.logger.Error(fmt.Sprintf("Failed to %s %s", verb, c.noun), zap.Error(err))
		return c.Cached(), err
	}
	c.writes.Add(1)
	items, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Failed to reload %ss after %s", c.noun, verb), zap.Error(err))
		return c.Cached(), nil
	}
	return slices.Clone(items), nil
}

// Busy reports whether a mutation is in flight.
func (c *Collection[T]) Busy() bool { return c.busy.Load() }
