package localstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialdash/internal/cache"
	apperrors "socialdash/internal/errors"
)

type profileStub struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	ctx := context.Background()

	first := NewFileStore(path)
	require.NoError(t, SetJSON(ctx, first, KeyProfiles, []profileStub{{ID: "p1", Platform: "twitter"}}))
	require.NoError(t, first.SetItem(ctx, KeyUserID, "u1"))

	second := NewFileStore(path)
	var got []profileStub
	ok, err := GetJSON(ctx, second, KeyProfiles, &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "twitter", got[0].Platform)

	require.NoError(t, second.RemoveItem(ctx, KeyUserID))
	_, ok, err = NewFileStore(path).GetItem(ctx, KeyUserID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, _, err := NewFileStore(path).GetItem(context.Background(), KeyUserID)
	assert.Error(t, err)
}

func TestGetJSON_MissingAndMalformed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var out []profileStub
	ok, err := GetJSON(ctx, s, KeySuggestions, &out)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem(ctx, KeySuggestions, "[{"))
	_, err = GetJSON(ctx, s, KeySuggestions, &out)
	assert.ErrorIs(t, err, apperrors.ErrParse)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	s := NewRedisStore(cache.NewFromRedis(rdb, nil), "dash:")
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, KeyAuthToken, "tok"))
	v, ok, err := s.GetItem(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok", v)
	assert.True(t, mr.Exists("dash:authToken"))

	require.NoError(t, s.RemoveItem(ctx, KeyAuthToken))
	_, ok, err = s.GetItem(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

type brokenStore struct{ fails int }

func (b *brokenStore) GetItem(context.Context, string) (string, bool, error) {
	b.fails++
	return "", false, errors.New("quota exceeded")
}

func (b *brokenStore) SetItem(context.Context, string, string) error {
	b.fails++
	return errors.New("quota exceeded")
}

func (b *brokenStore) RemoveItem(context.Context, string) error {
	b.fails++
	return errors.New("quota exceeded")
}

func TestResilient_DegradesToMemory(t *testing.T) {
	backend := &brokenStore{}
	s := NewResilient(backend, nil)
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, KeyUserID, "u1"))
	assert.True(t, s.Degraded())

	v, ok, err := s.GetItem(ctx, KeyUserID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", v)

	require.NoError(t, s.RemoveItem(ctx, KeyUserID))
	_, ok, _ = s.GetItem(ctx, KeyUserID)
	assert.False(t, ok)
	assert.Equal(t, 1, backend.fails, "backend is not retried after degrading")
}

func TestResilient_RedisOutageKeepsSessionData(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })
	s := NewResilient(NewRedisStore(cache.NewFromRedis(rdb, nil), ""), nil)
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, KeyUserID, "u1"))
	assert.False(t, s.Degraded())

	mr.Close()
	v, ok, err := s.GetItem(ctx, KeyUserID)
	require.NoError(t, err)
	assert.True(t, s.Degraded())
	assert.True(t, ok)
	assert.Equal(t, "u1", v)
}

// slowStore answers only after the caller's context ends.
type slowStore struct{ *MemoryStore }

func (s *slowStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	<-ctx.Done()
	return "", false, ctx.Err()
}

func TestResilient_TimeoutDoesNotDegrade(t *testing.T) {
	backend := &slowStore{MemoryStore: NewMemoryStore()}
	s := NewResilient(backend, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, _, err := s.GetItem(ctx, KeyUserID)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, s.Degraded())

	require.NoError(t, s.SetItem(context.Background(), KeyUserID, "u1"))
	v, ok, err := backend.MemoryStore.GetItem(context.Background(), KeyUserID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u1", v, "writes still reach the backend")
}
