// Package resilient serves dashboard reads and writes through an ordered
// fallback: the remote API, then the database directly, then the local cache.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "socialdash/internal/errors"
	"socialdash/internal/localstore"
	"socialdash/internal/logging"
)

// Tier identifies a data source in the fallback order.
type Tier string

const (
	TierRemote Tier = "remote"
	TierDirect Tier = "direct"
	TierLocal  Tier = "local"
)

// ErrNoUserID is recorded for the direct tier when the local cache holds no
// user id to scope the query with.
var ErrNoUserID = errors.New("no cached user id")

// ErrBadUserID is recorded for the direct tier when the cached user id is not
// a database id.
var ErrBadUserID = errors.New("cached user id is not a uuid")

// Chain describes one operation at every tier. A nil tier is skipped.
// Mirror, when set, writes a remote or direct result into the local cache.
type Chain[T any] struct {
	Op     string
	Remote func(ctx context.Context) (T, error)
	Direct func(ctx context.Context, userID string) (T, error)
	Local  func(ctx context.Context) (T, error)
	Mirror func(ctx context.Context, v T) error
}

// TierError is the failure of a single tier.
type TierError struct {
	Tier Tier
	Err  error
}

func (e TierError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tier, e.Err)
}

// ExhaustedError is returned when no tier could serve an operation.
type ExhaustedError struct {
	Op       string
	Failures []TierError
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("%s: all data sources failed (%s)", e.Op, strings.Join(parts, "; "))
}

// Unwrap exposes every tier error to errors.Is and errors.As.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// Runner executes chains against a local store.
type Runner struct {
	store   localstore.Store
	timeout time.Duration
	logger  logging.Logger
	served  func(op string, tier Tier)
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithTierTimeout bounds each tier attempt. Zero disables the bound.
func WithTierTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// WithLogger sets the logger tier failures are reported to.
func WithLogger(l logging.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// OnServed registers a callback told which tier served each operation.
func OnServed(fn func(op string, tier Tier)) RunnerOption {
	return func(r *Runner) { r.served = fn }
}

// NewRunner returns a Runner reading the user id from store.
func NewRunner(store localstore.Store, opts ...RunnerOption) *Runner {
	r := &Runner{store: store, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDiscard(r.logger)
	return r
}

// Run tries each tier of c in order and returns the first success.
// Caller errors are returned as they are, without trying later tiers.
func Run[T any](ctx context.Context, r *Runner, c Chain[T]) (T, error) {
	var zero T
	var failures []TierError

	fail := func(tier Tier, err error) {
		r.logger.WithFields(logging.Fields{
			"op":   c.Op,
			"tier": string(tier),
		}).WithError(err).Warn("data source failed, falling back")
		failures = append(failures, TierError{Tier: tier, Err: err})
	}

	if c.Remote != nil {
		v, err := attempt(ctx, r.timeout, c.Remote)
		if err == nil {
			mirror(ctx, r, c, v)
			r.report(c.Op, TierRemote)
			return v, nil
		}
		if apperrors.IsCallerError(err) {
			return zero, err
		}
		fail(TierRemote, err)
	}

	if c.Direct != nil && ctx.Err() == nil {
		userID, err := r.userID(ctx)
		if err != nil {
			fail(TierDirect, err)
		} else {
			v, err := attempt(ctx, r.timeout, func(ctx context.Context) (T, error) {
				return c.Direct(ctx, userID)
			})
			if err == nil {
				mirror(ctx, r, c, v)
				r.report(c.Op, TierDirect)
				return v, nil
			}
			if apperrors.IsCallerError(err) {
				return zero, err
			}
			fail(TierDirect, err)
		}
	}

	if c.Local != nil && ctx.Err() == nil {
		v, err := attempt(ctx, r.timeout, c.Local)
		if err == nil {
			r.report(c.Op, TierLocal)
			return v, nil
		}
		if apperrors.IsCallerError(err) {
			return zero, err
		}
		fail(TierLocal, err)
	}

	if err := ctx.Err(); err != nil {
		failures = append(failures, TierError{Tier: "context", Err: err})
	}
	return zero, &ExhaustedError{Op: c.Op, Failures: failures}
}

func attempt[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

func (r *Runner) userID(ctx context.Context) (string, error) {
	id, ok, err := r.store.GetItem(ctx, localstore.KeyUserID)
	if err != nil {
		return "", err
	}
	if !ok || id == "" {
		return "", ErrNoUserID
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: %q", ErrBadUserID, id)
	}
	return id, nil
}

func (r *Runner) report(op string, tier Tier) {
	if r.served != nil {
		r.served(op, tier)
	}
}

// mirror copies a served value into the local cache. A failed mirror is
// logged and never fails the operation.
func mirror[T any](ctx context.Context, r *Runner, c Chain[T], v T) {
	if c.Mirror == nil {
		return
	}
	if err := c.Mirror(ctx, v); err != nil {
		r.logger.WithField("op", c.Op).WithError(err).Warn("failed to mirror result into local cache")
	}
}
