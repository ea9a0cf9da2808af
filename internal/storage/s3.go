package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration. Endpoint is optional and
// supports MinIO or other S3-compatible services.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Store keeps photo album uploads in an S3-compatible bucket. A zero-value
// config leaves the store disabled and album uploads rejected.
type Store struct {
	mu     sync.RWMutex
	cfg    Config
	client s3Client
}

// NewStore creates a photo store. If the config is incomplete the store
// starts disabled.
func NewStore(cfg Config) *Store {
	st := &Store{cfg: cfg}
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		st.client = newS3Client(cfg)
	}
	return st
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether object storage is configured.
func (st *Store) Enabled() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.client != nil
}

// UpdateConfig hot-reloads the storage configuration.
func (st *Store) UpdateConfig(cfg Config) {
	st.mu.Lock()
	st.cfg = cfg
	if cfg.Bucket != "" && cfg.AccessKey != "" && cfg.SecretKey != "" {
		st.client = newS3Client(cfg)
	} else {
		st.client = nil
	}
	st.mu.Unlock()
}

// Put uploads a photo under the given key, retrying transient failures with
// fibonacci backoff. The body must be seekable so retries can rewind it.
func (st *Store) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string, size int64) error {
	st.mu.RLock()
	client := st.client
	bucket := st.cfg.Bucket
	st.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("photo storage not configured")
	}

	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := body.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind body: %w", err)
		}
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			Body:          body,
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(size),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}
	return nil
}

// Get streams a photo back. The caller must close the returned reader.
func (st *Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	st.mu.RLock()
	client := st.client
	bucket := st.cfg.Bucket
	st.mu.RUnlock()

	if client == nil {
		return nil, "", fmt.Errorf("photo storage not configured")
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("download photo: %w", err)
	}

	contentType := ""
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

// Delete removes a photo from the bucket.
func (st *Store) Delete(ctx context.Context, key string) error {
	st.mu.RLock()
	client := st.client
	bucket := st.cfg.Bucket
	st.mu.RUnlock()

	if client == nil {
		return fmt.Errorf("photo storage not configured")
	}

	if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// PhotoKey builds the object key for a photo: events/<event>/blocks/<block>/<name>.
func PhotoKey(eventID, blockID int64, name string) string {
	return fmt.Sprintf("events/%d/blocks/%d/%s", eventID, blockID, name)
}
