package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker/v2"

	"github.com/guichethq/guichet/internal/resilience"
	"github.com/guichethq/guichet/internal/telemetry"
)

// ErrStorageUnavailable is returned when the circuit breaker is open.
var ErrStorageUnavailable = errors.New("object storage unavailable")

// S3Store is an S3-backed implementation of Store. All calls go through a
// circuit breaker so a storage outage degrades to logged errors instead of
// piling up timeouts.
type S3Store struct {
	client  *s3.Client
	bucket  string
	breaker *gobreaker.CircuitBreaker[any]
	metrics *telemetry.DependencyMetrics
}

// S3Config holds configuration for the S3 store.
type S3Config struct {
	Bucket string
	// Region overrides the SDK default region resolution when set.
	Region string
}

// NewS3Store creates a new S3 store using the ambient AWS credential chain.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewS3StoreWithClient(s3.NewFromConfig(awsCfg), cfg.Bucket), nil
}

// NewS3StoreWithClient creates an S3 store from an existing client.
func NewS3StoreWithClient(client *s3.Client, bucket string) *S3Store {
	// Metrics are optional; the store works without an initialized meter.
	metrics, _ := telemetry.NewDependencyMetrics()
	return &S3Store{
		client:  client,
		bucket:  bucket,
		breaker: resilience.NewCircuitBreaker[any](resilience.DefaultCircuitBreakerConfig("s3-storage")),
		metrics: metrics,
	}
}

// Put stores the content under the given path.
func (s *S3Store) Put(ctx context.Context, path string, content io.Reader) error {
	start := time.Now()
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:               aws.String(s.bucket),
			Key:                  aws.String(path),
			Body:                 content,
			ServerSideEncryption: types.ServerSideEncryptionAes256,
		})
	})
	s.metrics.RecordCall("s3", "put_object", time.Since(start), err)
	return s.wrapBreakerErr(err)
}

// Exists reports whether an object is stored under path.
func (s *S3Store) Exists(ctx context.Context, path string) (bool, error) {
	start := time.Now()
	_, err := s.breaker.Execute(func() (any, error) {
		return s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(path),
		})
	})
	s.metrics.RecordCall("s3", "head_object", time.Since(start), err)
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, s.wrapBreakerErr(err)
	}
	return true, nil
}

// Delete removes the object at path. Missing objects are a no-op.
func (s *S3Store) Delete(ctx context.Context, path string) error {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	start := time.Now()
	_, err = s.breaker.Execute(func() (any, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(path),
		})
	})
	s.metrics.RecordCall("s3", "delete_object", time.Since(start), err)
	return s.wrapBreakerErr(err)
}

// wrapBreakerErr maps an open-circuit error to ErrStorageUnavailable.
func (s *S3Store) wrapBreakerErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

// Ensure S3Store implements Store interface.
var _ Store = (*S3Store)(nil)
