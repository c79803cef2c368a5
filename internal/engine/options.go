package engine

import (
	"log/slog"

	"github.com/leengari/memquery/internal/cache"
	"github.com/leengari/memquery/internal/domain/schema"
)

// DefaultIndexWorkers bounds how many column indexes are built concurrently
const DefaultIndexWorkers = 4

type options struct {
	cacheSize    int
	sampleSize   int
	indexWorkers int
	tableName    string
	logger       *slog.Logger
	inferrers    []schema.TypeInferrer
}

func defaultOptions() options {
	return options{
		cacheSize:    cache.DefaultCapacity,
		sampleSize:   schema.SampleSize,
		indexWorkers: DefaultIndexWorkers,
		tableName:    "data",
		logger:       slog.Default(),
		inferrers:    schema.DefaultInferrers(),
	}
}

// Option configures a QueryEngine
type Option func(*options)

// WithCacheSize sets the result cache capacity (<= 0 means the default of 100)
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

// WithSampleSize sets how many leading rows drive type inference
func WithSampleSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.sampleSize = n
		}
	}
}

// WithIndexWorkers bounds concurrent index builds
func WithIndexWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.indexWorkers = n
		}
	}
}

// WithTableName names the loaded table in logs and plan metadata
func WithTableName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.tableName = name
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithInferrers replaces the type inferrers, tried in order
func WithInferrers(inferrers ...schema.TypeInferrer) Option {
	return func(o *options) {
		if len(inferrers) > 0 {
			o.inferrers = inferrers
		}
	}
}
