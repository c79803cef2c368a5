package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/leengari/memquery/internal/storage"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Kind != storage.KindFile {
		t.Fatalf("Source.Kind = %q", cfg.Source.Kind)
	}
	if cfg.Engine.CacheSize != 100 {
		t.Fatalf("Engine.CacheSize = %d", cfg.Engine.CacheSize)
	}
	if cfg.Engine.SampleRows != 5 {
		t.Fatalf("Engine.SampleRows = %d", cfg.Engine.SampleRows)
	}
	if cfg.Engine.IndexWorkers != 4 {
		t.Fatalf("Engine.IndexWorkers = %d", cfg.Engine.IndexWorkers)
	}
	if cfg.Server.Address != ":4444" {
		t.Fatalf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Server.RateLimitQPS != 50 || cfg.Server.RateLimitBurst != 100 {
		t.Fatalf("rate limit = %v/%d", cfg.Server.RateLimitQPS, cfg.Server.RateLimitBurst)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Observability.MetricsAddress != "" {
		t.Fatalf("MetricsAddress should default to empty, got %q", cfg.Observability.MetricsAddress)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{
		"MEMQUERY_SOURCE":               "object",
		"MEMQUERY_FILE":                 " data/people.csv ",
		"MEMQUERY_OBJECTSTORE_ENDPOINT": "http://minio:9000",
		"MEMQUERY_OBJECTSTORE_BUCKET":   "exports",
		"MEMQUERY_OBJECTSTORE_USE_SSL":  "true",
		"MEMQUERY_OBJECTSTORE_KEY":      "people.csv.gz",
		"MEMQUERY_SQL_DSN":              "postgres://localhost/db",
		"MEMQUERY_SQL_QUERY":            "SELECT * FROM people",
		"MEMQUERY_CACHE_SIZE":           "10",
		"MEMQUERY_SAMPLE_ROWS":          "20",
		"MEMQUERY_INDEX_WORKERS":        "2",
		"MEMQUERY_LOAD_TIMEOUT":         "30s",
		"MEMQUERY_SERVER_ADDR":          "127.0.0.1:5555",
		"MEMQUERY_RATE_LIMIT_QPS":       "2.5",
		"MEMQUERY_RATE_LIMIT_BURST":     "5",
		"MEMQUERY_LOG_LEVEL":            "debug",
		"MEMQUERY_LOG_JSON":             "true",
		"MEMQUERY_SEQ_URL":              "http://seq:5341",
		"MEMQUERY_METRICS_ADDR":         ":9090",
	}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Kind != storage.KindObject {
		t.Fatalf("Source.Kind = %q", cfg.Source.Kind)
	}
	if cfg.Source.Path != "data/people.csv" {
		t.Fatalf("Source.Path = %q", cfg.Source.Path)
	}
	if !cfg.Source.Object.UseSSL || cfg.Source.Object.Bucket != "exports" || cfg.Source.Object.Key != "people.csv.gz" {
		t.Fatalf("Source.Object = %+v", cfg.Source.Object)
	}
	if cfg.Source.SQL.Query != "SELECT * FROM people" {
		t.Fatalf("Source.SQL.Query = %q", cfg.Source.SQL.Query)
	}
	if cfg.Engine.CacheSize != 10 || cfg.Engine.SampleRows != 20 || cfg.Engine.IndexWorkers != 2 {
		t.Fatalf("Engine = %+v", cfg.Engine)
	}
	if cfg.Engine.LoadTimeout != 30*time.Second {
		t.Fatalf("Engine.LoadTimeout = %v", cfg.Engine.LoadTimeout)
	}
	if cfg.Server.Address != "127.0.0.1:5555" || cfg.Server.RateLimitQPS != 2.5 || cfg.Server.RateLimitBurst != 5 {
		t.Fatalf("Server = %+v", cfg.Server)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug || !cfg.Observability.LogJSON {
		t.Fatalf("Observability = %+v", cfg.Observability)
	}
	if cfg.Observability.SeqURL != "http://seq:5341" || cfg.Observability.MetricsAddress != ":9090" {
		t.Fatalf("Observability = %+v", cfg.Observability)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"MEMQUERY_SOURCE":         "ftp",
		"MEMQUERY_CACHE_SIZE":     "lots",
		"MEMQUERY_SAMPLE_ROWS":    "0",
		"MEMQUERY_INDEX_WORKERS":  "-1",
		"MEMQUERY_LOAD_TIMEOUT":   "soon",
		"MEMQUERY_RATE_LIMIT_QPS": "-1",
		"MEMQUERY_LOG_LEVEL":      "loud",
		"MEMQUERY_LOG_JSON":       "maybe",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := Load(mapLookup(map[string]string{key: value}))
			if err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
			if !strings.Contains(err.Error(), key) {
				t.Fatalf("error %q should name %s", err, key)
			}
		})
	}
}

func TestLoadZeroRateLimitDisablesThrottling(t *testing.T) {
	cfg, err := Load(mapLookup(map[string]string{"MEMQUERY_RATE_LIMIT_QPS": "0"}))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.RateLimitQPS != 0 {
		t.Fatalf("RateLimitQPS = %v, want 0", cfg.Server.RateLimitQPS)
	}
}

func TestLoadRequiresLookup(t *testing.T) {
	if _, err := Load(nil); err == nil {
		t.Fatal("expected error for nil lookup")
	}
}
