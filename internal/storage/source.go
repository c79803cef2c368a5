package storage

import (
	"context"
	"fmt"
	"strings"
)

// Dataset is the raw tabular content of a source: a header row and the
// data rows as text fields. Rows may be ragged.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// Source supplies a dataset once, at engine initialization
type Source interface {
	ReadData(ctx context.Context) (Dataset, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context) (Dataset, error)

func (f SourceFunc) ReadData(ctx context.Context) (Dataset, error) {
	return f(ctx)
}

// Kind names a source implementation
type Kind string

const (
	KindFile    Kind = "file"
	KindObject  Kind = "object"
	KindParquet Kind = "parquet"
	KindSQL     Kind = "sql"
)

// ParseKind maps a configured name to a Kind
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case KindFile, KindObject, KindParquet, KindSQL:
		return k, nil
	case "":
		return KindFile, nil
	default:
		return "", fmt.Errorf("unknown source kind %q (expected file, object, parquet or sql)", raw)
	}
}

// ObjectConfig locates a CSV object in an S3-compatible store
type ObjectConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Key       string
}

// SQLConfig selects the rows of a SQL query as the dataset
type SQLConfig struct {
	DSN   string
	Query string
}

// Config selects and parameterizes one source
type Config struct {
	Kind   Kind
	Path   string
	Object ObjectConfig
	SQL    SQLConfig
}
