package parquetfile

import (
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/storage"
)

const readBatchSize = 256

// Source reads a parquet file as text fields so the usual type inference applies.
// Headers are the leaf column paths joined with "."; nulls become empty fields.
// For repeated columns only the first value of each row is kept.
type Source struct {
	path   string
	logger *slog.Logger
}

func New(path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{path: path, logger: logger}
}

// ReadData implements storage.Source
func (s *Source) ReadData(ctx context.Context) (storage.Dataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return storage.Dataset{}, errors.Wrap(errors.FileNotFound, err, "File not found: %s", s.path)
		}
		return storage.Dataset{}, errors.Wrap(errors.FileNotFound, err, "Failed to read parquet file: %s", s.path)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return storage.Dataset{}, errors.Wrap(errors.FileNotFound, err, "Failed to stat parquet file: %s", s.path)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return storage.Dataset{}, errors.Wrap(errors.InvalidFileFormat, err, "Failed to open parquet file: %s", s.path)
	}

	ds, err := readAll(ctx, pf)
	if err != nil {
		return storage.Dataset{}, err
	}

	s.logger.Debug("parquet file read",
		slog.String("path", s.path),
		slog.Int("row_groups", len(pf.RowGroups())),
		slog.Int("columns", len(ds.Headers)),
		slog.Int("rows", len(ds.Rows)),
	)

	return ds, nil
}

func readAll(ctx context.Context, pf *parquet.File) (storage.Dataset, error) {
	columns := pf.Schema().Columns()
	headers := make([]string, len(columns))
	for i, path := range columns {
		headers[i] = strings.Join(path, ".")
	}

	reader := parquet.NewReader(pf)
	defer reader.Close()

	ds := storage.Dataset{Headers: headers, Rows: make([][]string, 0, int(pf.NumRows()))}
	buf := make([]parquet.Row, readBatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return storage.Dataset{}, err
		}

		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			ds.Rows = append(ds.Rows, renderRow(row, len(headers)))
		}
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return storage.Dataset{}, errors.Wrap(errors.InvalidFileFormat, err, "Failed to read parquet rows")
		}
	}

	return ds, nil
}

func renderRow(row parquet.Row, width int) []string {
	fields := make([]string, width)
	seen := make([]bool, width)
	for _, v := range row {
		col := v.Column()
		if col < 0 || col >= width || seen[col] {
			continue
		}
		seen[col] = true
		fields[col] = renderValue(v)
	}
	return fields
}

func renderValue(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32, parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Int96:
		return v.Int96().String()
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'g', -1, 64)
	default:
		return string(v.ByteArray())
	}
}
