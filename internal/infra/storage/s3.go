// Package storage archives raw uploads in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"docscribe/internal/resilience/circuitbreaker"
	"docscribe/internal/resilience/retry"
)

// ErrBucketNotConfigured is returned by NewS3Store when Config.Bucket is empty.
var ErrBucketNotConfigured = errors.New("object storage bucket not configured")

// Config describes the target bucket. An empty Bucket disables archiving.
type Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
	UsePathStyle    bool
	Timeout         time.Duration
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// S3Store writes and removes archived uploads.
// Calls go through a circuit breaker and are retried on transient failures.
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	timeout  time.Duration
	breaker  *circuitbreaker.CircuitBreaker
	retryCfg retry.Config
}

// NewS3Store loads AWS configuration and builds a store for cfg.Bucket.
// Static credentials are used when both keys are set; otherwise the default
// AWS credential chain applies. Endpoint targets MinIO or another S3-compatible service.
func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	if !cfg.Enabled() {
		return nil, ErrBucketNotConfigured
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	slog.Info("object storage configured",
		slog.String("bucket", cfg.Bucket),
		slog.String("region", cfg.Region),
		slog.Bool("custom_endpoint", cfg.Endpoint != ""))

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		timeout:  cfg.Timeout,
		breaker:  circuitbreaker.New(circuitbreaker.ForObjectStorage()),
		retryCfg: retry.StorageConfig(),
	}, nil
}

// Key returns the object key a file name is archived under.
func (s *S3Store) Key(fileName string) string {
	if s.prefix == "" {
		return fileName
	}
	return path.Join(s.prefix, fileName)
}

// Put uploads data under key.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return s.do(ctx, "put", key, func(ctx context.Context) error {
		_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(contentType),
		})
		return err
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	return s.do(ctx, "delete", key, func(ctx context.Context) error {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	})
}

func (s *S3Store) do(ctx context.Context, op, key string, call func(context.Context) error) error {
	start := time.Now()
	err := retry.WithBackoff(ctx, s.retryCfg, func() error {
		_, err := circuitbreaker.Do(s.breaker, func() (struct{}, error) {
			callCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			return struct{}{}, classify(call(callCtx))
		})
		return err
	})
	if err != nil {
		slog.WarnContext(ctx, "object storage call failed",
			slog.String("operation", op),
			slog.String("key", key),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		return fmt.Errorf("s3 %s %s: %w", op, key, err)
	}
	slog.DebugContext(ctx, "object storage call succeeded",
		slog.String("operation", op),
		slog.String("key", key),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// classify exposes the HTTP status of S3 failures so the retry policy can tell
// throttling and 5xx responses from permanent errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		httpErr := &retry.HTTPError{StatusCode: re.HTTPStatusCode(), Message: re.Error()}
		if re.Response != nil && re.Response.Response != nil {
			httpErr.RetryAfter = retry.ParseRetryAfter(re.Response.Header.Get("Retry-After"))
		}
		return httpErr
	}
	return err
}
