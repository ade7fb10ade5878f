package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

var newMinioClient = func(endpoint string, opts *minio.Options) (minioAPI, error) {
	return minio.New(endpoint, opts)
}

type MinioStore struct {
	api  minioAPI
	opts Options
}

// NewMinioStore accepts Endpoint either as host:port or as a URL; an https
// scheme turns TLS on.
func NewMinioStore(opts Options) (*MinioStore, error) {
	host, secure, err := splitEndpoint(opts.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := newMinioClient(host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStore{api: client, opts: opts}, nil
}

func splitEndpoint(endpoint string) (string, bool, error) {
	if endpoint == "" {
		return "", false, fmt.Errorf("minio endpoint is empty")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		// plain host:port
		return endpoint, false, nil
	}
	return u.Host, u.Scheme == "https", nil
}

func (s *MinioStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.api.PutObject(ctx, s.opts.Bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("minio put %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.api.RemoveObject(ctx, s.opts.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio delete %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) PublicURL(_ context.Context, key string) (string, error) {
	return publicURL(s.opts.PublicBaseURL, s.opts.Bucket, key)
}

func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	ok, err := s.api.BucketExists(ctx, s.opts.Bucket)
	if err != nil {
		return fmt.Errorf("minio bucket exists %s: %w", s.opts.Bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{Region: s.opts.Region}); err != nil {
		return fmt.Errorf("minio make bucket %s: %w", s.opts.Bucket, err)
	}
	return nil
}
