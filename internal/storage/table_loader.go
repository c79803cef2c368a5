package storage

import (
	"context"
	"log/slog"

	"github.com/leengari/memquery/internal/domain/schema"
)

// LoadTable reads the source and builds a typed table from it.
// Types are inferred from the first sampleSize rows.
func LoadTable(ctx context.Context, src Source, name string, sampleSize int, inferrers []schema.TypeInferrer, logger *slog.Logger) (*schema.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ds, err := src.ReadData(ctx)
	if err != nil {
		return nil, err
	}

	table, err := schema.LoadTable(name, ds.Headers, ds.Rows, sampleSize, inferrers)
	if err != nil {
		return nil, err
	}

	logger.Info("table loaded",
		slog.String("table", table.Name),
		slog.Int("columns", table.Schema.Len()),
		slog.Int("rows", table.RowCount()),
	)

	return table, nil
}
