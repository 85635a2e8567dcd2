// Package config centralizes all server configuration, loaded from
// environment variables with sane local-play defaults.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Cache   CacheConfig
	Game    GameConfig
	Creator CreatorConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// StorageConfig selects the save-state backend.
type StorageConfig struct {
	// Engine is "sqlite" or "json". Both store the same four save keys.
	Engine      string `envconfig:"STORAGE_ENGINE" default:"sqlite"`
	Path        string `envconfig:"STORAGE_PATH" default:"./data/pokecat.db"`
	CatalogPath string `envconfig:"CATALOG_PATH" default:"./data/pokecats.json"`
}

// CacheConfig holds the optional Redis snapshot-cache settings.
type CacheConfig struct {
	Enabled  bool          `envconfig:"CACHE_ENABLED" default:"false"`
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD" default:""`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TTL      time.Duration `envconfig:"CACHE_TTL" default:"15m"`
}

// GameConfig holds simulation pacing. Tests shrink these to zero; the
// defaults reproduce the pacing of the original browser game.
type GameConfig struct {
	SpawnInterval    time.Duration `envconfig:"GAME_SPAWN_INTERVAL" default:"3s"`
	MotionInterval   time.Duration `envconfig:"GAME_MOTION_INTERVAL" default:"60ms"`
	CaptureFadeDelay time.Duration `envconfig:"GAME_CAPTURE_FADE_DELAY" default:"1s"`
	ThrowDelay       time.Duration `envconfig:"GAME_THROW_DELAY" default:"800ms"`
	ResultDelay      time.Duration `envconfig:"GAME_RESULT_DELAY" default:"800ms"`
	ExitDelay        time.Duration `envconfig:"GAME_EXIT_DELAY" default:"1800ms"`
	ScanDelay        time.Duration `envconfig:"GAME_SCAN_DELAY" default:"1500ms"`
	NotificationTTL  time.Duration `envconfig:"GAME_NOTIFICATION_TTL" default:"7500ms"`
}

// CreatorConfig gates the remote cat-creator backend. Disabled by
// default: the game ships standalone, with no remote services.
type CreatorConfig struct {
	Enabled    bool          `envconfig:"CREATOR_ENABLED" default:"false"`
	StorageURL string        `envconfig:"CREATOR_STORAGE_URL" default:"http://localhost:7621/"`
	BackendURL string        `envconfig:"CREATOR_BACKEND_URL" default:"http://localhost:5000/api/cats"`
	Timeout    time.Duration `envconfig:"CREATOR_TIMEOUT" default:"10s"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
