// Package app wires configuration into the store, scraper, importer and HTTP router.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/AndrewDonelson/viola-flow/config"
	"github.com/AndrewDonelson/viola-flow/internal/cifraclub"
	"github.com/AndrewDonelson/viola-flow/internal/database"
	"github.com/AndrewDonelson/viola-flow/internal/handlers"
	"github.com/AndrewDonelson/viola-flow/internal/importer"
	"github.com/AndrewDonelson/viola-flow/internal/models"
	"github.com/AndrewDonelson/viola-flow/internal/services"
	"github.com/AndrewDonelson/viola-flow/internal/session"
	"github.com/AndrewDonelson/viola-flow/internal/worker"
	"github.com/AndrewDonelson/viola-flow/internal/youtube"
	"github.com/AndrewDonelson/viola-flow/pkg/logger"
)

// queueSize is how many batches may wait behind the running one
const queueSize = 16

// App holds the long-lived components of one process
type App struct {
	Config      *config.Config
	Log         *zap.Logger
	Store       *database.Store
	Songs       *database.SongRepository
	Preferences *database.PreferencesRepository
	Parser      *cifraclub.Parser
	Broadcaster *services.ProgressBroadcaster
	Importer    *importer.Importer
	Worker      *worker.Worker

	redis *redis.Client
}

// New opens the database and builds every component from cfg. A nil log
// falls back to the global logger.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = logger.L()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store, err := database.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	songs, err := database.NewSongRepository(ctx, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to prepare song repository: %w", err)
	}

	a := &App{
		Config:      cfg,
		Log:         log,
		Store:       store,
		Songs:       songs,
		Preferences: database.NewPreferencesRepository(store),
		Broadcaster: services.NewProgressBroadcaster(log.Named("sse")),
	}

	a.Parser = a.newParser(ctx)

	a.Importer = importer.New(importer.NewRegistry(), a.Parser, songs, importer.Options{
		RowDelay:    cfg.Importer.RowDelay.Duration,
		ClearDelay:  cfg.Importer.ClearDelay.Duration,
		LogsDir:     cfg.Storage.LogsPath(),
		Broadcaster: a.Broadcaster,
		Logger:      log.Named("importer"),
	})
	a.Worker = worker.NewWorker(a.Importer, queueSize, log.Named("worker"))

	return a, nil
}

func (a *App) newParser(ctx context.Context) *cifraclub.Parser {
	cfg := a.Config

	limiter := rate.NewLimiter(rate.Limit(cfg.Source.RateLimit), cfg.Source.Burst)
	fetcher := cifraclub.NewFetcher(&http.Client{Timeout: cfg.Source.Timeout.Duration}, limiter)

	opts := []cifraclub.Option{
		cifraclub.WithHost(cfg.Source.Host),
		cifraclub.WithLogger(a.Log.Named("cifraclub")),
	}

	if cfg.YouTube.APIKey != "" {
		client := youtube.NewClient(cfg.YouTube.APIKey,
			youtube.WithBaseURL(cfg.YouTube.BaseURL),
			youtube.WithHTTPClient(&http.Client{Timeout: cfg.YouTube.Timeout.Duration}),
			youtube.WithTimeout(cfg.YouTube.Timeout.Duration),
			youtube.WithLogger(a.Log.Named("youtube")),
		)
		finder := youtube.NewCachedFinder(client, a.videoCache(ctx), cfg.YouTube.CacheTTL.Duration, a.Log)
		opts = append(opts, cifraclub.WithVideoFinder(finder))
	} else {
		a.Log.Info("YouTube API key not set, video lookup disabled",
			zap.String("env", "VIOLA_YOUTUBE_API_KEY"))
	}

	return cifraclub.NewParser(fetcher, opts...)
}

// videoCache prefers Redis and falls back to memory when it is not configured or unreachable
func (a *App) videoCache(ctx context.Context) youtube.Cache {
	if a.Config.Redis.URL == "" {
		return youtube.NewMemoryCache()
	}

	opts, err := redis.ParseURL(a.Config.Redis.URL)
	if err != nil {
		a.Log.Warn("Invalid Redis URL, using in-memory video cache", zap.Error(err))
		return youtube.NewMemoryCache()
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.Log.Warn("Redis unreachable, using in-memory video cache", zap.Error(err))
		client.Close()
		return youtube.NewMemoryCache()
	}

	a.redis = client
	a.Log.Info("Using Redis video cache", zap.String("addr", opts.Addr))
	return youtube.NewRedisCache(client, "violaflow:video:")
}

// Router builds the HTTP handler
func (a *App) Router() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	return handlers.NewRouter(handlers.Deps{
		Songs:          a.Songs,
		Preferences:    a.Preferences,
		Parser:         a.Parser,
		Importer:       a.Importer,
		Queue:          a.Worker,
		Broadcaster:    a.Broadcaster,
		SourceHost:     a.Parser.Host(),
		LogsDir:        a.Config.Storage.LogsPath(),
		AllowedOrigins: a.Config.Server.AllowedOrigins,
		Logger:         a.Log.Named("http"),
	})
}

// Session opens an editing session over the library
func (a *App) Session(onSave func(song models.Song)) *session.Manager {
	return session.New(a.Songs, a.Parser, session.Options{
		Debounce: a.Config.Session.AutoSaveDebounce.Duration,
		Logger:   a.Log.Named("session"),
		OnSave:   onSave,
	})
}

// Close stops the worker and releases the database and cache connections
func (a *App) Close() error {
	a.Worker.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
	return a.Store.Close()
}
