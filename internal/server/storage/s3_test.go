package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put       *s3.PutObjectInput
	body      []byte
	deleted   []string
	created   *s3.CreateBucketInput
	putErr    error
	deleteErr error
	headErr   error
	createErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &s3.CreateBucketOutput{}, nil
}

func newTestS3Store(api s3API) *S3Store {
	return &S3Store{api: api, opts: Options{Bucket: "study", Region: "eu-west-1", PublicBaseURL: "http://cdn"}}
}

func TestS3Store_Put(t *testing.T) {
	f := &fakeS3{}
	s := newTestS3Store(f)

	err := s.Put(context.Background(), "StateU/CS101/a.txt", bytes.NewReader([]byte("hello")), 5, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "study", aws.ToString(f.put.Bucket))
	assert.Equal(t, "StateU/CS101/a.txt", aws.ToString(f.put.Key))
	assert.Equal(t, int64(5), aws.ToInt64(f.put.ContentLength))
	assert.Equal(t, "text/plain", aws.ToString(f.put.ContentType))
	assert.Equal(t, []byte("hello"), f.body)

	f.putErr = errors.New("access denied")
	err = s.Put(context.Background(), "k", bytes.NewReader(nil), 0, "text/plain")
	require.ErrorContains(t, err, "access denied")
}

func TestS3Store_Delete(t *testing.T) {
	f := &fakeS3{}
	s := newTestS3Store(f)

	require.NoError(t, s.Delete(context.Background(), "a/b"))
	assert.Equal(t, []string{"a/b"}, f.deleted)

	f.deleteErr = errors.New("gone")
	require.ErrorContains(t, s.Delete(context.Background(), "a/b"), "gone")
}

func TestS3Store_PublicURL(t *testing.T) {
	s := newTestS3Store(&fakeS3{})
	u, err := s.PublicURL(context.Background(), "a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/study/a/b.txt", u)
}

func TestS3Store_EnsureBucket(t *testing.T) {
	t.Run("exists", func(t *testing.T) {
		f := &fakeS3{}
		require.NoError(t, newTestS3Store(f).EnsureBucket(context.Background()))
		assert.Nil(t, f.created)
	})

	t.Run("created with location", func(t *testing.T) {
		f := &fakeS3{headErr: errors.New("not found")}
		require.NoError(t, newTestS3Store(f).EnsureBucket(context.Background()))
		require.NotNil(t, f.created)
		assert.Equal(t, types.BucketLocationConstraint("eu-west-1"), f.created.CreateBucketConfiguration.LocationConstraint)
	})

	t.Run("already owned", func(t *testing.T) {
		f := &fakeS3{headErr: errors.New("forbidden"), createErr: &types.BucketAlreadyOwnedByYou{}}
		require.NoError(t, newTestS3Store(f).EnsureBucket(context.Background()))
	})

	t.Run("create fails", func(t *testing.T) {
		f := &fakeS3{headErr: errors.New("not found"), createErr: errors.New("quota")}
		require.ErrorContains(t, newTestS3Store(f).EnsureBucket(context.Background()), "quota")
	})
}

func TestNewS3Store_Seams(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	t.Run("config error", func(t *testing.T) {
		loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no creds")
		}
		_, err := NewS3Store(context.Background(), Options{})
		require.ErrorContains(t, err, "no creds")
	})

	t.Run("path style endpoint", func(t *testing.T) {
		loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
			return aws.Config{Region: "us-east-1"}, nil
		}
		var got s3.Options
		fake := &fakeS3{}
		newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
			for _, fn := range optFns {
				fn(&got)
			}
			return fake
		}

		s, err := NewS3Store(context.Background(), Options{Endpoint: "http://minio:9000"})
		require.NoError(t, err)
		assert.Same(t, fake, s.api)
		assert.Equal(t, "http://minio:9000", aws.ToString(got.BaseEndpoint))
		assert.True(t, got.UsePathStyle)
	})
}
