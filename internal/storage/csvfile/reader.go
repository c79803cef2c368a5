package csvfile

import (
	"bufio"
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/storage"
)

// Source reads a CSV file, optionally gzip, zstd or lz4 compressed
type Source struct {
	path        string
	compression Compression
	logger      *slog.Logger
}

// New creates a source for path; compression is detected from the extension
func New(path string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{
		path:        path,
		compression: DetectCompression(path),
		logger:      logger,
	}
}

// Path returns the file being read
func (s *Source) Path() string {
	return s.path
}

// ReadData implements storage.Source.
// A missing or unreadable file is FILE_NOT_FOUND; malformed content is INVALID_FILE_FORMAT.
func (s *Source) ReadData(ctx context.Context) (storage.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return storage.Dataset{}, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return storage.Dataset{}, errors.Wrap(errors.FileNotFound, err, "File not found: %s", s.path)
		}
		return storage.Dataset{}, errors.Wrap(errors.FileNotFound, err, "Failed to read CSV file: %s", s.path)
	}
	defer f.Close()

	r, err := Decompress(bufio.NewReader(f), s.compression)
	if err != nil {
		return storage.Dataset{}, errors.Wrap(errors.InvalidFileFormat, err, "Failed to open %s stream: %s", s.compression, s.path)
	}
	defer r.Close()

	ds, err := ParseContext(ctx, r)
	if err != nil {
		return storage.Dataset{}, err
	}

	s.logger.Debug("csv file read",
		slog.String("path", s.path),
		slog.String("compression", string(s.compression)),
		slog.Int("columns", len(ds.Headers)),
		slog.Int("rows", len(ds.Rows)),
	)

	return ds, nil
}
