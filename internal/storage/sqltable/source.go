package sqltable

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/storage"
)

const pingTimeout = 5 * time.Second

// Source loads the result set of one SELECT as the dataset.
// Column names become headers; every value is rendered as text and NULL as "".
type Source struct {
	db     *sql.DB
	query  string
	owned  bool
	logger *slog.Logger
}

// Open connects to Postgres through the pgx driver and checks the connection
func Open(ctx context.Context, cfg storage.SQLConfig, logger *slog.Logger) (*Source, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sql dsn is required")
	}

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sql source: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sql source: %w", err)
	}

	src, err := NewWithDB(db, cfg.Query, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	src.owned = true
	return src, nil
}

// NewWithDB wraps an existing handle; Close leaves it open
func NewWithDB(db *sql.DB, query string, logger *slog.Logger) (*Source, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("sql query is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{db: db, query: query, logger: logger}, nil
}

// ReadData implements storage.Source
func (s *Source) ReadData(ctx context.Context) (storage.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return storage.Dataset{}, fmt.Errorf("run source query: %w", err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return storage.Dataset{}, fmt.Errorf("read source columns: %w", err)
	}
	if len(headers) == 0 {
		return storage.Dataset{}, errors.New(errors.InvalidFileFormat, "source query returned no columns")
	}

	ds := storage.Dataset{Headers: headers}
	values := make([]sql.NullString, len(headers))
	dest := make([]any, len(headers))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return storage.Dataset{}, fmt.Errorf("scan source row: %w", err)
		}
		fields := make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				fields[i] = v.String
			}
		}
		ds.Rows = append(ds.Rows, fields)
	}
	if err := rows.Err(); err != nil {
		return storage.Dataset{}, fmt.Errorf("iterate source rows: %w", err)
	}

	s.logger.Debug("sql source read",
		slog.Int("columns", len(headers)),
		slog.Int("rows", len(ds.Rows)),
	)

	return ds, nil
}

// Close releases the connection pool if Open created it
func (s *Source) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
