package resilient

import (
	"context"

	apperrors "socialdash/internal/errors"
	"socialdash/internal/localstore"
)

// collection is a cached list of records stored as one JSON array under key.
type collection[T any] struct {
	store localstore.Store
	key   string
	id    func(*T) string
}

// load returns the cached records, or an empty slice when nothing was cached.
func (c collection[T]) load(ctx context.Context) ([]T, error) {
	items := []T{}
	if _, err := localstore.GetJSON(ctx, c.store, c.key, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	return localstore.SetJSON(ctx, c.store, c.key, items)
}

// replace overwrites the cached records.
func (c collection[T]) replace(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.save(ctx, items)
}

// merge upserts items into the cached records by id.
func (c collection[T]) merge(ctx context.Context, items ...T) error {
	cached, err := c.load(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		cached = upsert(cached, item, c.id)
	}
	return c.save(ctx, cached)
}

// drop removes the record with id from the cache. A missing record is not
// an error.
func (c collection[T]) drop(ctx context.Context, id string) error {
	cached, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, _, ok := remove(cached, id, c.id)
	if !ok {
		return nil
	}
	return c.save(ctx, next)
}

// update applies fn to the cached record with id and persists the result.
func (c collection[T]) update(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	cached, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cached {
		if c.id(&cached[i]) != id {
			continue
		}
		if err := fn(&cached[i]); err != nil {
			return nil, err
		}
		if err := c.save(ctx, cached); err != nil {
			return nil, err
		}
		out := cached[i]
		return &out, nil
	}
	return nil, apperrors.ErrNotFound
}

// delete removes the record with id and returns it.
func (c collection[T]) delete(ctx context.Context, id string) (*T, error) {
	cached, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	next, removed, ok := remove(cached, id, c.id)
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	if err := c.save(ctx, next); err != nil {
		return nil, err
	}
	return &removed, nil
}

func upsert[T any](items []T, item T, id func(*T) string) []T {
	key := id(&item)
	for i := range items {
		if id(&items[i]) == key {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func remove[T any](items []T, key string, id func(*T) string) ([]T, T, bool) {
	var zero T
	for i := range items {
		if id(&items[i]) == key {
			removed := items[i]
			next := append(items[:i:i], items[i+1:]...)
			return next, removed, true
		}
	}
	return items, zero, false
}
