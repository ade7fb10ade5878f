// Package storage writes study-file objects to an S3-compatible bucket and
// resolves their public URLs. Two clients are supported: the AWS SDK and
// the MinIO SDK.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

const (
	BackendS3    = "s3"
	BackendMinio = "minio"
)

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrNoPublicURL    = errors.New("public url unavailable")
)

// ObjectStore is what the upload pipeline needs from object storage.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(ctx context.Context, key string) (string, error)
}

// Store is an ObjectStore that can also provision its bucket at startup.
type Store interface {
	ObjectStore
	EnsureBucket(ctx context.Context) error
}

// Options configure either backend.
type Options struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// New builds the Store selected by backend.
func New(ctx context.Context, backend string, opts Options) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendS3:
		s, err := NewS3Store(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendMinio:
		m, err := NewMinioStore(opts)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// publicURL joins base, bucket and the path-escaped key. Each key segment
// is escaped on its own so the slashes survive.
func publicURL(base, bucket, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: empty key", ErrNoPublicURL)
	}

	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoPublicURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: base url %q is not absolute", ErrNoPublicURL, base)
	}

	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	return u.String() + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/"), nil
}
