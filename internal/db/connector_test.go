package db

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "socialdash/internal/errors"
)

func TestConnector_ConcurrentFirstCallsOpenOnce(t *testing.T) {
	var attempts int32
	release := make(chan struct{})
	conn := NewConnector(func(ctx context.Context) (*gorm.DB, error) {
		atomic.AddInt32(&attempts, 1)
		<-release
		return &gorm.DB{}, nil
	}, nil)

	const callers = 32
	var wg sync.WaitGroup
	results := make([]*gorm.DB, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := conn.DB(context.Background())
			assert.NoError(t, err)
			results[i] = db
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	for _, db := range results {
		assert.Same(t, results[0], db)
	}
}

func TestConnector_MemoizesSuccess(t *testing.T) {
	var attempts int32
	conn := NewConnector(func(ctx context.Context) (*gorm.DB, error) {
		atomic.AddInt32(&attempts, 1)
		return &gorm.DB{}, nil
	}, nil)

	first, err := conn.DB(context.Background())
	require.NoError(t, err)
	second, err := conn.DB(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestConnector_FailureIsRetried(t *testing.T) {
	var attempts int32
	conn := NewConnector(func(ctx context.Context) (*gorm.DB, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("dial tcp: connection refused")
		}
		return &gorm.DB{}, nil
	}, nil)

	_, err := conn.DB(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConnection)

	db, err := conn.DB(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, db)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestConnector_CanceledCallerDoesNotFailJoiners(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	conn := NewConnector(func(ctx context.Context) (*gorm.DB, error) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &gorm.DB{}, nil
	}, nil)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := conn.DB(firstCtx)
		firstErr <- err
	}()
	<-started

	joined := make(chan *gorm.DB, 1)
	go func() {
		db, err := conn.DB(context.Background())
		assert.NoError(t, err)
		joined <- db
	}()

	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, apperrors.ErrConnection)
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	assert.NotNil(t, <-joined)
}

func TestConnector_OpenTimeoutBoundsAttempt(t *testing.T) {
	conn := NewConnector(func(ctx context.Context) (*gorm.DB, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)
	conn.OpenTimeout = 10 * time.Millisecond

	_, err := conn.DB(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrConnection)
}
