package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"cloud.google.com/go/storage"

	"github.com/yungbote/stockmedia-backend/internal/platform/logger"
)

// ObjectStore opens gs://bucket/object URIs and stages uploads for the speech
// recognizer. The storage client is created lazily so deployments that never
// touch GCS need no credentials.
type ObjectStore struct {
	log *logger.Logger
	cfg StorageConfig

	once   sync.Once
	client *storage.Client
	err    error
}

// NewObjectStore expects a config that has already been through Resolve.
func NewObjectStore(log *logger.Logger, cfg StorageConfig) *ObjectStore {
	return &ObjectStore{
		log: log.With("service", "gcp.ObjectStore", "storage_mode", string(cfg.Mode)),
		cfg: cfg,
	}
}

func (r *ObjectStore) storageClient(ctx context.Context) (*storage.Client, error) {
	r.once.Do(func() {
		r.client, r.err = storage.NewClient(context.WithoutCancel(ctx), r.cfg.clientOptions()...)
	})
	return r.client, r.err
}

// ParseGSURI splits gs://bucket/path/to/object.
func ParseGSURI(raw string) (bucket, object string, err error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "gs" {
		return "", "", fmt.Errorf("not a gs:// uri: %q", raw)
	}
	bucket = u.Host
	object = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs uri needs bucket and object: %q", raw)
	}
	return bucket, object, nil
}

func (r *ObjectStore) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, object, err := ParseGSURI(uri)
	if err != nil {
		return nil, err
	}
	c, err := r.storageClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	rc, err := c.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", uri, err)
	}
	return rc, nil
}

// Upload writes r to bucket/object and returns its gs:// URI.
func (r *ObjectStore) Upload(ctx context.Context, bucket, object, contentType string, body io.Reader) (string, error) {
	c, err := r.storageClient(ctx)
	if err != nil {
		return "", fmt.Errorf("storage client: %w", err)
	}
	w := c.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload gs://%s/%s: %w", bucket, object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize gs://%s/%s: %w", bucket, object, err)
	}
	return "gs://" + bucket + "/" + object, nil
}

func (r *ObjectStore) Delete(ctx context.Context, uri string) error {
	bucket, object, err := ParseGSURI(uri)
	if err != nil {
		return err
	}
	c, err := r.storageClient(ctx)
	if err != nil {
		return fmt.Errorf("storage client: %w", err)
	}
	if err := c.Bucket(bucket).Object(object).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", uri, err)
	}
	return nil
}

func (r *ObjectStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
