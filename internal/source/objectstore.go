package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"retailpulse/internal/config"
	"retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// ObjectStore opens objects by bucket and key
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// MinioStore is an ObjectStore over any S3-compatible endpoint
type MinioStore struct {
	client *minio.Client
}

// NewMinioStore connects to the endpoint in cfg. The endpoint is host[:port] without a scheme.
func NewMinioStore(cfg config.ObjectStoreConfig) (*MinioStore, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if strings.Contains(cfg.Endpoint, "://") {
		return nil, fmt.Errorf("endpoint must not include scheme: %q", cfg.Endpoint)
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{client: client}, nil
}

// NewMinioStoreWithClient wraps an existing client
func NewMinioStoreWithClient(client *minio.Client) (*MinioStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio client is required")
	}
	return &MinioStore{client: client}, nil
}

// Open stats the object first so a missing key fails here rather than on first read
func (s *MinioStore) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	if _, err := s.client.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	return obj, nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// ObjectStoreLoader reads <prefix>/<entity>.csv objects from a bucket
type ObjectStoreLoader struct {
	store  ObjectStore
	bucket string
	prefix string
	logger *slog.Logger
}

// NewObjectStoreLoader creates a loader over store
func NewObjectStoreLoader(store ObjectStore, bucket, prefix string, logger *slog.Logger) *ObjectStoreLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectStoreLoader{
		store:  store,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger,
	}
}

// Key returns the object key of an entity's dataset
func (l *ObjectStoreLoader) Key(entity domain.Entity) string {
	if l.prefix == "" {
		return entity.FileName()
	}
	return path.Join(l.prefix, entity.FileName())
}

// Load downloads and parses one entity's CSV object
func (l *ObjectStoreLoader) Load(ctx context.Context, entity domain.Entity) (*domain.Table, error) {
	key := l.Key(entity)

	body, err := l.store.Open(ctx, l.bucket, key)
	if err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err).WithContext("key", key)
	}
	defer body.Close()

	table, err := ReadCSV(entity, body)
	if err != nil {
		return nil, errors.NewDatasetLoadError(string(entity), err).WithContext("key", key)
	}

	l.logger.DebugContext(ctx, "Loaded dataset object",
		slog.String("entity", string(entity)),
		slog.String("bucket", l.bucket),
		slog.String("key", key),
		slog.Int("rows", table.Len()))
	return table, nil
}
