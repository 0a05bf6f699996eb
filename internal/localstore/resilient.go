package localstore

import (
	"context"
	"errors"
	"sync"

	"socialdash/internal/logging"
)

// Resilient wraps a backend and switches to an in-memory store for the rest
// of the session the first time the backend fails. Every value read or
// written is mirrored in memory, so data seen before the switch stays
// available. A canceled or timed-out call is returned to the caller and does
// not count as a backend failure.
type Resilient struct {
	backend Store
	memory  *MemoryStore
	logger  logging.Logger

	mu       sync.RWMutex
	degraded bool
}

// NewResilient wraps backend.
func NewResilient(backend Store, logger logging.Logger) *Resilient {
	return &Resilient{backend: backend, memory: NewMemoryStore(), logger: logging.OrDiscard(logger)}
}

// Degraded reports whether the store has fallen back to memory.
func (r *Resilient) Degraded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.degraded
}

func (r *Resilient) GetItem(ctx context.Context, key string) (string, bool, error) {
	if r.Degraded() {
		return r.memory.GetItem(ctx, key)
	}
	v, ok, err := r.backend.GetItem(ctx, key)
	if isContextErr(err) {
		return "", false, err
	}
	if err != nil {
		r.degrade(err, "get", key)
		return r.memory.GetItem(ctx, key)
	}
	if ok {
		_ = r.memory.SetItem(ctx, key, v)
	}
	return v, ok, nil
}

func (r *Resilient) SetItem(ctx context.Context, key, value string) error {
	_ = r.memory.SetItem(ctx, key, value)
	if r.Degraded() {
		return nil
	}
	if err := r.backend.SetItem(ctx, key, value); isContextErr(err) {
		return err
	} else if err != nil {
		r.degrade(err, "set", key)
	}
	return nil
}

func (r *Resilient) RemoveItem(ctx context.Context, key string) error {
	_ = r.memory.RemoveItem(ctx, key)
	if r.Degraded() {
		return nil
	}
	if err := r.backend.RemoveItem(ctx, key); isContextErr(err) {
		return err
	} else if err != nil {
		r.degrade(err, "remove", key)
	}
	return nil
}

func (r *Resilient) degrade(err error, op, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.degraded {
		return
	}
	r.degraded = true
	r.logger.WithFields(logging.Fields{
		"op":    op,
		"key":   key,
		"items": len(r.memory.snapshot()),
	}).WithError(err).Warn("local store unavailable, keeping data in memory for this session")
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
