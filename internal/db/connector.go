package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	apperrors "socialdash/internal/errors"
	"socialdash/internal/logging"
)

// Opener establishes a new storage connection.
type Opener func(ctx context.Context) (*gorm.DB, error)

// Connector hands out one shared *gorm.DB per process. The connection is
// opened lazily by the first caller; callers arriving while that attempt is
// in flight wait for it instead of opening their own. A failed attempt is
// not remembered, so the next caller tries again.
//
// The shared attempt is detached from the caller that started it and bounded
// by OpenTimeout instead; each caller stops waiting when its own context ends.
type Connector struct {
	open   Opener
	logger logging.Logger

	// OpenTimeout bounds one connection attempt. Zero means DefaultOpenTimeout.
	OpenTimeout time.Duration

	mu    sync.RWMutex
	db    *gorm.DB
	group singleflight.Group
}

// DefaultOpenTimeout bounds a connection attempt when OpenTimeout is unset.
const DefaultOpenTimeout = 10 * time.Second

// NewConnector creates a connector around open.
func NewConnector(open Opener, logger logging.Logger) *Connector {
	return &Connector{open: open, logger: logging.OrDiscard(logger)}
}

// DB returns the shared connection, opening it on first use.
func (c *Connector) DB(ctx context.Context) (*gorm.DB, error) {
	if db := c.current(); db != nil {
		return db, nil
	}

	ch := c.group.DoChan("connect", func() (interface{}, error) {
		if db := c.current(); db != nil {
			return db, nil
		}
		openCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.openTimeout())
		defer cancel()
		db, err := c.open(openCtx)
		if err != nil {
			c.logger.WithError(err).Error("storage connection failed")
			return nil, fmt.Errorf("%w: %v", apperrors.ErrConnection, err)
		}
		c.mu.Lock()
		c.db = db
		c.mu.Unlock()
		c.logger.Info("storage connection established")
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", apperrors.ErrConnection, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("joined in-flight storage connection")
		}
		return res.Val.(*gorm.DB), nil
	}
}

func (c *Connector) openTimeout() time.Duration {
	if c.OpenTimeout > 0 {
		return c.OpenTimeout
	}
	return DefaultOpenTimeout
}

// Close releases the underlying connection pool, if one was opened.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	c.db = nil
	return sqlDB.Close()
}

func (c *Connector) current() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
