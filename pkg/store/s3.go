package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	stderr "errors"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/tiercache/tiercache/pkg/errors"
	"github.com/tiercache/tiercache/pkg/types"
)

// S3API is the slice of the S3 client the store uses. Tests substitute a
// fake implementation.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config configures an S3Store.
type S3Config struct {
	// Bucket holding the cache objects.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended to every object key, e.g. "cache/v1/".
	Prefix string `yaml:"prefix"`

	// Region for the AWS client. Falls back to the ambient AWS config.
	Region string `yaml:"region"`

	// Logger receives warnings about corrupt objects. slog.Default when nil.
	Logger *slog.Logger `yaml:"-"`
}

// S3Store persists entries as JSON objects in an S3 bucket. Object keys are
// the configured prefix plus the base64url-encoded cache key, mirroring the
// FileStore filename scheme. Corrupt objects are deleted and reported as
// absent.
type S3Store[V any] struct {
	client S3API
	bucket string
	prefix string
	logger *slog.Logger
}

// NewS3Store creates a store over a real S3 client built from the ambient
// AWS configuration.
func NewS3Store[V any](ctx context.Context, config S3Config) (*S3Store[V], error) {
	if config.Bucket == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "s3 store requires a bucket")
	}

	var optFns []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(config.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, errors.Wrap(errors.CodeStoreIO, "loading AWS configuration", err)
	}

	return NewS3StoreWithClient[V](s3.NewFromConfig(awsCfg), config)
}

// NewS3StoreWithClient creates a store over an existing client. Used in
// tests and by callers with custom client setups.
func NewS3StoreWithClient[V any](client S3API, config S3Config) (*S3Store[V], error) {
	if config.Bucket == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "s3 store requires a bucket")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store[V]{
		client: client,
		bucket: config.Bucket,
		prefix: config.Prefix,
		logger: logger.With("component", "s3store", "bucket", config.Bucket),
	}, nil
}

// Put implements Store.
func (s *S3Store[V]) Put(ctx context.Context, key string, entry types.Entry[V]) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(errors.CodeStoreIO, "encoding entry", err).WithKey(key)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrap(errors.CodeStoreIO, "putting object", err).WithKey(key)
	}
	return nil
}

// Get implements Store. Objects that fail to decode are deleted and
// reported as absent.
func (s *S3Store[V]) Get(ctx context.Context, key string) (types.Entry[V], bool, error) {
	var zero types.Entry[V]

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return zero, false, nil
		}
		return zero, false, errors.Wrap(errors.CodeStoreIO, "getting object", err).WithKey(key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return zero, false, errors.Wrap(errors.CodeStoreIO, "reading object body", err).WithKey(key)
	}

	var entry types.Entry[V]
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn("removing corrupt cache object", "key", key, "error", err)
		_, _ = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(key)),
		})
		return zero, false, nil
	}
	return entry, true, nil
}

// Remove implements Store. S3 deletes are idempotent, so removing a
// missing key succeeds.
func (s *S3Store[V]) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return errors.Wrap(errors.CodeStoreIO, "deleting object", err).WithKey(key)
	}
	return nil
}

// Contains implements Store.
func (s *S3Store[V]) Contains(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(errors.CodeStoreIO, "heading object", err).WithKey(key)
	}
	return true, nil
}

// Keys implements Store. Pages through the prefix; objects whose key
// suffix fails to decode are skipped.
func (s *S3Store[V]) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	var token *string

	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, errors.Wrap(errors.CodeStoreIO, "listing objects", err)
		}

		for _, obj := range out.Contents {
			encoded := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			decoded, err := base64.URLEncoding.DecodeString(encoded)
			if err != nil {
				s.logger.Warn("skipping object with undecodable key", "object", aws.ToString(obj.Key))
				continue
			}
			keys = append(keys, string(decoded))
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}
	return keys, nil
}

// Len implements Store.
func (s *S3Store[V]) Len(ctx context.Context) (int, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear implements Store.
func (s *S3Store[V]) Clear(ctx context.Context) error {
	keys, err := s.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Store.
func (s *S3Store[V]) Close() error {
	return nil
}

func (s *S3Store[V]) objectKey(key string) string {
	return s.prefix + base64.URLEncoding.EncodeToString([]byte(key))
}

func isNoSuchKey(err error) bool {
	var noSuchKey *s3types.NoSuchKey
	return stderr.As(err, &noSuchKey)
}

func isNotFound(err error) bool {
	var notFound *s3types.NotFound
	return stderr.As(err, &notFound)
}
