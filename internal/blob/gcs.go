package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

const gcsOpTimeout = 2 * time.Minute

// GCSStore is a Google Cloud Storage backed Store. Write-once semantics use
// a DoesNotExist precondition so a concurrent duplicate publish fails at the
// bucket rather than racing.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore creates a GCS store writing under gs://<bucket>/<prefix>.
// Credentials come from the environment (application default credentials).
func NewGCSStore(ctx context.Context, bucket, prefix string) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) objectKey(ref string) string {
	if u := strings.TrimPrefix(ref, "gs://"+s.bucket+"/"); u != ref {
		return u
	}
	if s.prefix == "" {
		return ref
	}
	return s.prefix + "/" + ref
}

func (s *GCSStore) url(key string) string {
	return "gs://" + s.bucket + "/" + key
}

// WriteImmutable writes a new object, failing with ErrObjectExists if the
// key is already present.
func (s *GCSStore) WriteImmutable(ctx context.Context, key string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsOpTimeout)
	defer cancel()

	obj := s.objectKey(key)
	w := s.client.Bucket(s.bucket).Object(obj).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return "", fmt.Errorf("%w: %s", ErrObjectExists, key)
		}
		return "", fmt.Errorf("close object %s: %w", key, err)
	}
	return s.url(obj), nil
}

// WritePointer writes or overwrites the mutable pointer object. GCS object
// writes are atomic, so readers see either the old or the new pointer.
func (s *GCSStore) WritePointer(ctx context.Context, key string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsOpTimeout)
	defer cancel()

	obj := s.objectKey(key)
	w := s.client.Bucket(s.bucket).Object(obj).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write pointer %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close pointer %s: %w", key, err)
	}
	return s.url(obj), nil
}

// Read returns the contents of an object by key or gs:// reference.
func (s *GCSStore) Read(ctx context.Context, ref string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsOpTimeout)
	defer cancel()

	r, err := s.client.Bucket(s.bucket).Object(s.objectKey(ref)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("open object %s: %w", ref, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", ref, err)
	}
	return data, nil
}

// Exists reports whether an object is present at the key.
func (s *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, gcsOpTimeout)
	defer cancel()

	_, err := s.client.Bucket(s.bucket).Object(s.objectKey(key)).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat object %s: %w", key, err)
}

// isPreconditionFailed reports whether err is a 412 from the bucket, which
// is how the DoesNotExist condition surfaces a write-once collision.
func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == 412
}
