package objectstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/leengari/memquery/internal/domain/errors"
	"github.com/leengari/memquery/internal/storage"
	"github.com/leengari/memquery/internal/storage/csvfile"
)

// ErrObjectNotFound is returned by clients when the bucket or key does not exist
var ErrObjectNotFound = stderrors.New("object not found")

// ObjectInfo describes a stored object
type ObjectInfo struct {
	Key  string
	Size int64
	ETag string
}

type client interface {
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, bucket, key string) (ObjectInfo, error)
}

// Source reads one CSV object (optionally compressed) from an S3-compatible store
type Source struct {
	client client
	bucket string
	key    string
	logger *slog.Logger
}

func New(cfg storage.ObjectConfig, logger *slog.Logger) (*Source, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	mc, err := newMinioClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewWithClient(cfg.Bucket, cfg.Key, mc, logger)
}

func NewWithClient(bucket, key string, c client, logger *slog.Logger) (*Source, error) {
	if c == nil {
		return nil, fmt.Errorf("client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	normalized, err := normalizeKey(key)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{client: c, bucket: strings.TrimSpace(bucket), key: normalized, logger: logger}, nil
}

// Key returns the normalized object key
func (s *Source) Key() string {
	return s.key
}

// ReadData implements storage.Source.
// A missing bucket or object is FILE_NOT_FOUND; malformed content is INVALID_FILE_FORMAT.
func (s *Source) ReadData(ctx context.Context) (storage.Dataset, error) {
	info, err := s.client.Stat(ctx, s.bucket, s.key)
	if err != nil {
		return storage.Dataset{}, s.mapErr(err)
	}

	body, err := s.client.Get(ctx, s.bucket, s.key)
	if err != nil {
		return storage.Dataset{}, s.mapErr(err)
	}
	defer body.Close()

	compression := csvfile.DetectCompression(s.key)
	r, err := csvfile.Decompress(body, compression)
	if err != nil {
		return storage.Dataset{}, errors.Wrap(errors.InvalidFileFormat, err, "Failed to open %s stream: %s", compression, s.location())
	}
	defer r.Close()

	ds, err := csvfile.ParseContext(ctx, r)
	if err != nil {
		return storage.Dataset{}, err
	}

	s.logger.Debug("object read",
		slog.String("location", s.location()),
		slog.Int64("size", info.Size),
		slog.String("etag", info.ETag),
		slog.Int("rows", len(ds.Rows)),
	)

	return ds, nil
}

func (s *Source) location() string {
	return "s3://" + s.bucket + "/" + s.key
}

func (s *Source) mapErr(err error) error {
	if stderrors.Is(err, ErrObjectNotFound) {
		return errors.Wrap(errors.FileNotFound, err, "Object not found: %s", s.location())
	}
	return errors.Wrap(errors.FileNotFound, err, "Failed to read object: %s", s.location())
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(strings.TrimPrefix(key, "/"))
	if key == "" {
		return "", fmt.Errorf("object key is required")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") || strings.Contains(cleaned, "/../") {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return cleaned, nil
}

func newMinioClient(cfg storage.ObjectConfig) (*minioClient, error) {
	endpoint, secure, err := parseEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}
	clientImpl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &minioClient{client: clientImpl}, nil
}

func parseEndpoint(raw string, useSSL bool) (string, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("endpoint is required")
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		parsed, err := url.Parse(raw)
		if err != nil {
			return "", false, fmt.Errorf("parse endpoint URL: %w", err)
		}
		if parsed.Host == "" {
			return "", false, fmt.Errorf("endpoint host is required")
		}
		return parsed.Host, parsed.Scheme == "https" || useSSL, nil
	}
	return raw, useSSL, nil
}

type minioClient struct {
	client *minio.Client
}

func (m *minioClient) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioErr(err)
	}
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, mapMinioErr(err)
	}
	return obj, nil
}

func (m *minioClient) Stat(ctx context.Context, bucket, key string) (ObjectInfo, error) {
	obj, err := m.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, mapMinioErr(err)
	}
	return ObjectInfo{Key: obj.Key, Size: obj.Size, ETag: obj.ETag}, nil
}

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	var response minio.ErrorResponse
	if stderrors.As(err, &response) {
		switch response.Code {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return ErrObjectNotFound
		}
	}
	return err
}
