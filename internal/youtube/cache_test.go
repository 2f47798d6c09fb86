package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFinder struct {
	mock.Mock
}

func (m *mockFinder) Find(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	v, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewRedisCache(client, "")
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "tempo perdido", "https://www.youtube.com/watch?v=x", time.Hour))
	assert.True(t, mr.Exists("violaflow:video:tempo perdido"))

	v, ok, err := c.Get(ctx, "tempo perdido")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://www.youtube.com/watch?v=x", v)

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, "tempo perdido")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedFinder_ServesRepeatQueriesFromCache(t *testing.T) {
	_, client := setupRedis(t)
	next := &mockFinder{}
	next.On("Find", mock.Anything, "Wave Tom Jobim").Return("https://www.youtube.com/watch?v=w", nil).Once()

	f := NewCachedFinder(next, NewRedisCache(client, "test:"), time.Hour, nil)

	for i := 0; i < 3; i++ {
		got, err := f.Find(context.Background(), "Wave Tom Jobim")
		require.NoError(t, err)
		assert.Equal(t, "https://www.youtube.com/watch?v=w", got)
	}
	next.AssertExpectations(t)
}

func TestCachedFinder_DoesNotCacheFailures(t *testing.T) {
	next := &mockFinder{}
	next.On("Find", mock.Anything, "q").Return("", ErrNoResults).Twice()

	f := NewCachedFinder(next, NewMemoryCache(), time.Hour, nil)

	for i := 0; i < 2; i++ {
		_, err := f.Find(context.Background(), "q")
		assert.True(t, errors.Is(err, ErrNoResults))
	}
	next.AssertExpectations(t)
}

func TestCachedFinder_CacheOutageFallsThrough(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	next := &mockFinder{}
	next.On("Find", mock.Anything, "q").Return("https://www.youtube.com/watch?v=q", nil)

	f := NewCachedFinder(next, NewRedisCache(client, ""), time.Hour, nil)
	got, err := f.Find(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=q", got)
}
