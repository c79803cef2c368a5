package indexing

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/leengari/memquery/internal/domain/schema"
)

// Set holds one index per column, keyed by column name
type Set map[string]*ColumnIndex

// Get returns the index of a column
func (s Set) Get(column string) (*ColumnIndex, bool) {
	idx, ok := s[column]
	return idx, ok
}

// MaxRows is the largest row count an index can address
const MaxRows = math.MaxUint32

// checkRowCount rejects tables whose row positions do not fit in a bitmap
func checkRowCount(n int64) error {
	if n > MaxRows {
		return fmt.Errorf("%w: %d rows, at most %d supported", ErrTooManyRows, n, int64(MaxRows))
	}
	return nil
}

// BuildIndex indexes one column over every row of the table and seals the result
func BuildIndex(table *schema.Table, column string) (*ColumnIndex, error) {
	if err := checkRowCount(int64(len(table.Rows))); err != nil {
		return nil, err
	}

	pos, ok := table.Schema.Position(column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}

	idx := New(column, table.Schema.ColumnType(column))
	for rowPos, row := range table.Rows {
		if pos >= row.Len() {
			continue
		}
		idx.Add(row.At(pos), rowPos)
	}
	idx.Seal()

	slog.Debug("index built",
		slog.String("table", table.Name),
		slog.String("column", column),
		slog.String("type", string(idx.Type)),
		slog.Int("unique_values", idx.Cardinality()))

	return idx, nil
}

// BuildAll builds every column index of the table.
// Columns are indexed concurrently, at most workers at a time (workers <= 0 means one).
func BuildAll(ctx context.Context, table *schema.Table, workers int) (Set, error) {
	if workers <= 0 {
		workers = 1
	}

	if err := checkRowCount(int64(len(table.Rows))); err != nil {
		return nil, err
	}

	columns := table.Schema.Headers()
	built := make([]*ColumnIndex, len(columns))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, column := range columns {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, err := BuildIndex(table, column)
			if err != nil {
				return fmt.Errorf("failed to build index for column %s: %w", column, err)
			}
			built[i] = idx
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := make(Set, len(columns))
	for i, column := range columns {
		set[column] = built[i]
	}
	return set, nil
}
