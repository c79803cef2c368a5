package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/leengari/memquery/internal/storage"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	Source        storage.Config
	Engine        EngineConfig
	Server        ServerConfig
	Observability ObservabilityConfig
}

type EngineConfig struct {
	CacheSize    int
	SampleRows   int
	IndexWorkers int
	LoadTimeout  time.Duration
}

type ServerConfig struct {
	Address        string
	RateLimitQPS   float64
	RateLimitBurst int
}

type ObservabilityConfig struct {
	LogLevel         slog.Level
	LogJSON          bool
	SeqURL           string
	SeqFlushInterval time.Duration
	MetricsAddress   string
}

func Defaults() Config {
	return Config{
		Source: storage.Config{Kind: storage.KindFile},
		Engine: EngineConfig{
			CacheSize:    100,
			SampleRows:   5,
			IndexWorkers: 4,
		},
		Server: ServerConfig{
			Address:        ":4444",
			RateLimitQPS:   50,
			RateLimitBurst: 100,
		},
		Observability: ObservabilityConfig{
			LogLevel:         slog.LevelInfo,
			SeqFlushInterval: 2 * time.Second,
		},
	}
}

func LoadFromEnv() (Config, error) {
	return Load(os.LookupEnv)
}

func Load(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := Defaults()

	if raw, ok := lookup("MEMQUERY_SOURCE"); ok {
		kind, err := storage.ParseKind(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid MEMQUERY_SOURCE: %w", err)
		}
		cfg.Source.Kind = kind
	}
	if err := applyString(lookup, "MEMQUERY_FILE", &cfg.Source.Path); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_OBJECTSTORE_ENDPOINT", &cfg.Source.Object.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_OBJECTSTORE_REGION", &cfg.Source.Object.Region); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_OBJECTSTORE_BUCKET", &cfg.Source.Object.Bucket); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_OBJECTSTORE_ACCESS_KEY", &cfg.Source.Object.AccessKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_OBJECTSTORE_SECRET_KEY", &cfg.Source.Object.SecretKey); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "MEMQUERY_OBJECTSTORE_USE_SSL", &cfg.Source.Object.UseSSL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_OBJECTSTORE_KEY", &cfg.Source.Object.Key); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_SQL_DSN", &cfg.Source.SQL.DSN); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_SQL_QUERY", &cfg.Source.SQL.Query); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "MEMQUERY_CACHE_SIZE", &cfg.Engine.CacheSize); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "MEMQUERY_SAMPLE_ROWS", &cfg.Engine.SampleRows); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "MEMQUERY_INDEX_WORKERS", &cfg.Engine.IndexWorkers); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "MEMQUERY_LOAD_TIMEOUT", &cfg.Engine.LoadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_SERVER_ADDR", &cfg.Server.Address); err != nil {
		return Config{}, err
	}
	if err := applyFloat(lookup, "MEMQUERY_RATE_LIMIT_QPS", &cfg.Server.RateLimitQPS); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "MEMQUERY_RATE_LIMIT_BURST", &cfg.Server.RateLimitBurst); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "MEMQUERY_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "MEMQUERY_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_SEQ_URL", &cfg.Observability.SeqURL); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "MEMQUERY_SEQ_FLUSH_INTERVAL", &cfg.Observability.SeqFlushInterval); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "MEMQUERY_METRICS_ADDR", &cfg.Observability.MetricsAddress); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be used as given
func (c Config) Validate() error {
	if c.Engine.CacheSize <= 0 {
		return fmt.Errorf("invalid MEMQUERY_CACHE_SIZE: must be positive, got %d", c.Engine.CacheSize)
	}
	if c.Engine.SampleRows <= 0 {
		return fmt.Errorf("invalid MEMQUERY_SAMPLE_ROWS: must be positive, got %d", c.Engine.SampleRows)
	}
	if c.Engine.IndexWorkers <= 0 {
		return fmt.Errorf("invalid MEMQUERY_INDEX_WORKERS: must be positive, got %d", c.Engine.IndexWorkers)
	}
	if c.Engine.LoadTimeout < 0 {
		return fmt.Errorf("invalid MEMQUERY_LOAD_TIMEOUT: must not be negative")
	}
	// zero turns throttling off
	if c.Server.RateLimitQPS < 0 {
		return fmt.Errorf("invalid MEMQUERY_RATE_LIMIT_QPS: must not be negative, got %v", c.Server.RateLimitQPS)
	}
	if c.Server.RateLimitBurst <= 0 {
		return fmt.Errorf("invalid MEMQUERY_RATE_LIMIT_BURST: must be positive, got %d", c.Server.RateLimitBurst)
	}
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	return nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
