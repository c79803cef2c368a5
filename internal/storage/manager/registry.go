package manager

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/leengari/memquery/internal/storage"
	"github.com/leengari/memquery/internal/storage/csvfile"
	"github.com/leengari/memquery/internal/storage/objectstore"
	"github.com/leengari/memquery/internal/storage/parquetfile"
	"github.com/leengari/memquery/internal/storage/sqltable"
)

// Factory builds a source from configuration
type Factory func(ctx context.Context, cfg storage.Config, logger *slog.Logger) (storage.Source, error)

// Registry maps source kinds to factories in a thread-safe way
type Registry struct {
	mu        sync.RWMutex
	factories map[storage.Kind]Factory
	logger    *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factories: make(map[storage.Kind]Factory),
		logger:    logger,
	}
}

// DefaultRegistry knows every built-in source kind
func DefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(storage.KindFile, openFile)
	r.Register(storage.KindObject, openObject)
	r.Register(storage.KindParquet, openParquet)
	r.Register(storage.KindSQL, openSQL)
	return r
}

// Register adds or replaces the factory for kind
func (r *Registry) Register(kind storage.Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// Kinds lists the registered kinds in sorted order
func (r *Registry) Kinds() []storage.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]storage.Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Open builds the source selected by cfg.Kind (empty means file)
func (r *Registry) Open(ctx context.Context, cfg storage.Config) (storage.Source, error) {
	kind := cfg.Kind
	if kind == "" {
		kind = storage.KindFile
	}

	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no source registered for kind %q", kind)
	}

	src, err := f(ctx, cfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", kind, err)
	}

	r.logger.Info("data source opened",
		slog.String("kind", string(kind)),
		slog.String("location", describe(cfg, kind)),
	)
	return src, nil
}

// Open builds a source with the default registry
func Open(ctx context.Context, cfg storage.Config, logger *slog.Logger) (storage.Source, error) {
	return DefaultRegistry(logger).Open(ctx, cfg)
}

func describe(cfg storage.Config, kind storage.Kind) string {
	switch kind {
	case storage.KindObject:
		return "s3://" + cfg.Object.Bucket + "/" + strings.TrimPrefix(cfg.Object.Key, "/")
	case storage.KindSQL:
		return "sql query"
	default:
		return cfg.Path
	}
}

func openFile(_ context.Context, cfg storage.Config, logger *slog.Logger) (storage.Source, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("file path is required")
	}
	return csvfile.New(cfg.Path, logger), nil
}

func openObject(_ context.Context, cfg storage.Config, logger *slog.Logger) (storage.Source, error) {
	return objectstore.New(cfg.Object, logger)
}

func openParquet(_ context.Context, cfg storage.Config, logger *slog.Logger) (storage.Source, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("file path is required")
	}
	return parquetfile.New(cfg.Path, logger), nil
}

func openSQL(ctx context.Context, cfg storage.Config, logger *slog.Logger) (storage.Source, error) {
	return sqltable.Open(ctx, cfg.SQL, logger)
}
