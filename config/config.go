package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AndrewDonelson/viola-flow/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Duration reads Go duration strings ("500ms", "1s") from TOML
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds all application configuration
type Config struct {
	Environment string `toml:"environment" validate:"oneof=development production test"`

	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Log      logger.Config  `toml:"log"`
	Source   SourceConfig   `toml:"source"`
	YouTube  YouTubeConfig  `toml:"youtube"`
	Redis    RedisConfig    `toml:"redis"`
	Importer ImporterConfig `toml:"importer"`
	Session  SessionConfig  `toml:"session"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Port           int      `toml:"port" validate:"min=1,max=65535"`
	AllowedOrigins []string `toml:"allowed_origins"`
	ReadTimeout    Duration `toml:"read_timeout"`
	WriteTimeout   Duration `toml:"write_timeout"`
}

// DatabaseConfig points at the sqlite file
type DatabaseConfig struct {
	Path string `toml:"path" validate:"required"`
}

// StorageConfig is the root for logs and other generated files
type StorageConfig struct {
	Path string `toml:"path" validate:"required"`
}

// LogsPath is where per-batch import logs are written
func (s StorageConfig) LogsPath() string {
	return filepath.Join(s.Path, "logs")
}

// SourceConfig controls scraping of the chord sheet site
type SourceConfig struct {
	Host      string   `toml:"host" validate:"required"`
	Timeout   Duration `toml:"timeout"`
	RateLimit float64  `toml:"rate_limit" validate:"gt=0"` // requests per second
	Burst     int      `toml:"burst" validate:"min=1"`
}

// YouTubeConfig configures the companion video search
type YouTubeConfig struct {
	APIKey   string   `toml:"api_key"`
	BaseURL  string   `toml:"base_url" validate:"required,url"`
	Timeout  Duration `toml:"timeout"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// RedisConfig enables the shared video lookup cache when URL is set
type RedisConfig struct {
	URL string `toml:"url"`
}

// ImporterConfig tunes batch imports
type ImporterConfig struct {
	RowDelay   Duration `toml:"row_delay"`
	ClearDelay Duration `toml:"clear_delay"`
}

// SessionConfig tunes the editing session
type SessionConfig struct {
	AutoSaveDebounce Duration `toml:"autosave_debounce"`
}

// Load builds the configuration from defaults, an optional TOML file, .env and the environment
func Load(path string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults(getEnv("VIOLA_ENV", "development"))

	if path == "" {
		path = os.Getenv("VIOLA_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration for env
func Defaults(env string) *Config {
	cfg := &Config{Environment: env}

	if env == "production" {
		cfg.Database.Path = "/var/lib/viola-flow/viola-flow.db"
		cfg.Storage.Path = "/var/lib/viola-flow/storage"
		cfg.Log.Level = "info"
		cfg.Log.OutputPath = filepath.Join(cfg.Storage.Path, "logs", "violaflow.log")
	} else {
		cfg.Database.Path = filepath.Join("data", "viola-flow.db")
		cfg.Storage.Path = "storage"
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}

	cfg.Server.Port = 3000
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.ReadTimeout = Duration{15 * time.Second}
	cfg.Server.WriteTimeout = Duration{0} // SSE streams stay open

	cfg.Log.MaxSize = 50
	cfg.Log.MaxBackups = 5
	cfg.Log.MaxAge = 30
	cfg.Log.Compress = true

	cfg.Source.Host = "cifraclub.com.br"
	cfg.Source.Timeout = Duration{20 * time.Second}
	cfg.Source.RateLimit = 2
	cfg.Source.Burst = 1

	cfg.YouTube.BaseURL = "https://www.googleapis.com/youtube/v3"
	cfg.YouTube.Timeout = Duration{10 * time.Second}
	cfg.YouTube.CacheTTL = Duration{24 * time.Hour}

	cfg.Importer.RowDelay = Duration{500 * time.Millisecond}
	cfg.Importer.ClearDelay = Duration{time.Second}

	cfg.Session.AutoSaveDebounce = Duration{time.Second}

	return cfg
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction reports whether the production profile is active
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func applyEnv(cfg *Config) error {
	var err error

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setDuration := func(key string, dst *Duration) {
		if v := os.Getenv(key); v != "" && err == nil {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				err = fmt.Errorf("%s: %w", key, perr)
				return
			}
			dst.Duration = d
		}
	}

	setString("VIOLA_DB_PATH", &cfg.Database.Path)
	setString("VIOLA_STORAGE_PATH", &cfg.Storage.Path)
	setString("VIOLA_LOG_LEVEL", &cfg.Log.Level)
	setString("VIOLA_LOG_FILE", &cfg.Log.OutputPath)
	setString("VIOLA_SOURCE_HOST", &cfg.Source.Host)
	setString("YOUTUBE_API_KEY", &cfg.YouTube.APIKey)
	setString("VIOLA_YOUTUBE_API_KEY", &cfg.YouTube.APIKey)
	setString("VIOLA_REDIS_URL", &cfg.Redis.URL)

	if v := os.Getenv("VIOLA_PORT"); v != "" {
		port, perr := strconv.Atoi(v)
		if perr != nil {
			return fmt.Errorf("VIOLA_PORT: %w", perr)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("VIOLA_SOURCE_RPS"); v != "" {
		rps, perr := strconv.ParseFloat(v, 64)
		if perr != nil {
			return fmt.Errorf("VIOLA_SOURCE_RPS: %w", perr)
		}
		cfg.Source.RateLimit = rps
	}
	if v := os.Getenv("VIOLA_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setDuration("VIOLA_IMPORT_ROW_DELAY", &cfg.Importer.RowDelay)
	setDuration("VIOLA_IMPORT_CLEAR_DELAY", &cfg.Importer.ClearDelay)
	setDuration("VIOLA_AUTOSAVE_DEBOUNCE", &cfg.Session.AutoSaveDebounce)

	return err
}

// EnsureDirectories creates the storage directories
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Storage.Path, c.Storage.LogsPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) expandPaths() {
	c.Database.Path = expandHome(c.Database.Path)
	c.Storage.Path = expandHome(c.Storage.Path)
	c.Log.OutputPath = expandHome(c.Log.OutputPath)
}

// expandHome expands a leading ~/ to the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
