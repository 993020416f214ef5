package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/simaogato/bioastro-backend/internal/adapter/ephemeris"
	"github.com/simaogato/bioastro-backend/internal/usecase/worker"
)

// Storage and cache backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	CacheMemory = "memory"
	CacheSQLite = "sqlite"
)

const (
	defaultAPIToken  = "dev-token"
	defaultGRPCPort  = "8080"
	defaultCachePath = "data/ephemeris-cache.db"
	defaultRate      = 1.0
)

// Config holds runtime configuration for the server and the CLI
type Config struct {
	DatabaseURL    string
	StorageBackend string
	APIToken       string
	GRPCAddr       string

	EphemerisProvider    string
	EphemerisCacheTTL    time.Duration
	EphemerisFallbackTTL time.Duration
	EphemerisTimeout     time.Duration
	HorizonsEndpoint     string
	HorizonsRate         float64

	CacheBackend string
	CachePath    string

	KnowledgePath string

	WorkerConcurrency int
	WorkerMaxRetries  int
	WorkerRetryBase   time.Duration
	WorkerRetention   time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables (optionally .env).
// Unset variables take defaults; malformed values are errors.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		DatabaseURL:       databaseURL(),
		StorageBackend:    envOr("STORAGE_BACKEND", StoragePostgres),
		APIToken:          envOr("API_TOKEN", defaultAPIToken),
		GRPCAddr:          ":" + envOr("GRPC_PORT", defaultGRPCPort),
		EphemerisProvider: envOr("EPHEMERIS_PROVIDER", ephemeris.ProviderNamePrecise),
		HorizonsEndpoint:  envOr("HORIZONS_ENDPOINT", ephemeris.DefaultHorizonsEndpoint),
		CacheBackend:      envOr("CACHE_BACKEND", CacheMemory),
		CachePath:         envOr("CACHE_PATH", defaultCachePath),
		KnowledgePath:     env("KNOWLEDGE_PATH"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogFormat:         envOr("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.EphemerisCacheTTL, err = durationEnv("EPHEMERIS_CACHE_TTL", ephemeris.DefaultCacheTTL); err != nil {
		return cfg, err
	}
	if cfg.EphemerisFallbackTTL, err = durationEnv("EPHEMERIS_FALLBACK_TTL", ephemeris.DefaultFallbackTTL); err != nil {
		return cfg, err
	}
	if cfg.EphemerisTimeout, err = durationEnv("EPHEMERIS_TIMEOUT", ephemeris.MaxRemoteTimeout); err != nil {
		return cfg, err
	}
	if cfg.HorizonsRate, err = floatEnv("HORIZONS_RATE", defaultRate); err != nil {
		return cfg, err
	}
	if cfg.WorkerConcurrency, err = intEnv("WORKER_CONCURRENCY", worker.DefaultConcurrency); err != nil {
		return cfg, err
	}
	if cfg.WorkerMaxRetries, err = intEnv("WORKER_MAX_RETRIES", worker.DefaultMaxRetries); err != nil {
		return cfg, err
	}
	if cfg.WorkerRetryBase, err = durationEnv("WORKER_RETRY_BASE", worker.DefaultRetryBase); err != nil {
		return cfg, err
	}
	if cfg.WorkerRetention, err = durationEnv("WORKER_JOB_RETENTION", worker.DefaultRetention); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects unknown backends and non-positive limits
func (c Config) Validate() error {
	switch c.StorageBackend {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: want %s or %s", c.StorageBackend, StoragePostgres, StorageMemory)
	}
	switch c.CacheBackend {
	case CacheMemory, CacheSQLite:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: want %s or %s", c.CacheBackend, CacheMemory, CacheSQLite)
	}
	switch c.EphemerisProvider {
	case ephemeris.ProviderNamePrecise, ephemeris.ProviderNameRemote, ephemeris.ProviderNameStub:
	default:
		return fmt.Errorf("invalid EPHEMERIS_PROVIDER %q", c.EphemerisProvider)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: want json or console", c.LogFormat)
	}
	if c.WorkerConcurrency <= 0 {
		return fmt.Errorf("invalid WORKER_CONCURRENCY %d: must be positive", c.WorkerConcurrency)
	}
	if c.WorkerMaxRetries < 0 {
		return fmt.Errorf("invalid WORKER_MAX_RETRIES %d: must not be negative", c.WorkerMaxRetries)
	}
	if c.HorizonsRate <= 0 {
		return fmt.Errorf("invalid HORIZONS_RATE %v: must be positive", c.HorizonsRate)
	}
	return nil
}

// databaseURL prefers DB_CONN_STR and otherwise builds a DSN from individual vars (Docker friendly)
func databaseURL() string {
	if dsn := env("DB_CONN_STR"); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_NAME", "bioastro"),
	)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envOr(key, fallback string) string {
	if v := env(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := env(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := env(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := env(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
