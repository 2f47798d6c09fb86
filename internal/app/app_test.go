package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/AndrewDonelson/viola-flow/config"
	"github.com/AndrewDonelson/viola-flow/internal/session"
	"github.com/AndrewDonelson/viola-flow/internal/youtube"
	"github.com/AndrewDonelson/viola-flow/pkg/logger"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Defaults("test")
	dir := t.TempDir()
	cfg.Database.Path = filepath.Join(dir, "data", "test.db")
	cfg.Storage.Path = filepath.Join(dir, "storage")
	require.NoError(t, cfg.Validate())
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNew_ServesHealth(t *testing.T) {
	a := newApp(t, testConfig(t))

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/songs", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	assert.Equal(t, "cifraclub.com.br", a.Parser.Host())
}

func TestNew_VideoLookupNeedsAPIKey(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })

	// a nil logger falls back to the global one
	newApp(t, testConfig(t))
	disabled := logs.FilterMessage("YouTube API key not set, video lookup disabled").All()
	require.Len(t, disabled, 1)
	assert.Equal(t, "VIOLA_YOUTUBE_API_KEY", disabled[0].ContextMap()["env"])

	cfg := testConfig(t)
	cfg.YouTube.APIKey = "key"
	newApp(t, cfg)
	assert.Equal(t, 1, logs.FilterMessage("YouTube API key not set, video lookup disabled").Len())
}

func TestVideoCache(t *testing.T) {
	t.Run("memory when redis is not configured", func(t *testing.T) {
		a := newApp(t, testConfig(t))
		assert.IsType(t, &youtube.MemoryCache{}, a.videoCache(context.Background()))
		assert.Nil(t, a.redis)
	})

	t.Run("redis when reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(t)
		cfg.Redis.URL = "redis://" + mr.Addr() + "/0"

		a := newApp(t, cfg)

		assert.IsType(t, &youtube.RedisCache{}, a.videoCache(context.Background()))
		assert.NotNil(t, a.redis)
	})

	t.Run("memory when redis is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := testConfig(t)
		cfg.Redis.URL = "redis://" + addr
		a := newApp(t, cfg)

		assert.IsType(t, &youtube.MemoryCache{}, a.videoCache(context.Background()))
	})

	t.Run("memory when the url is malformed", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Redis.URL = "mysql://nope"
		a := newApp(t, cfg)

		assert.IsType(t, &youtube.MemoryCache{}, a.videoCache(context.Background()))
	})
}

func TestSession_SavesThroughLibrary(t *testing.T) {
	a := newApp(t, testConfig(t))
	ctx := context.Background()

	m := a.Session(nil)
	defer m.Close()

	m.Edit(func(f *session.Fields) {
		f.Title = "Tempo Perdido"
		f.Artist = "Legião Urbana"
		f.Content = "Am G"
	})
	require.NoError(t, m.Flush(ctx))
	require.NotZero(t, m.ID())

	song, err := a.Songs.Get(ctx, m.ID())
	require.NoError(t, err)
	assert.Equal(t, "Tempo Perdido", song.Title)
}
