package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sethvargo/go-retry"
)

// S3Config locates artifacts in an S3 (or MinIO) bucket.
type S3Config struct {
	Bucket string
	Prefix string
	Region string

	// Endpoint overrides the AWS endpoint, e.g. "http://127.0.0.1:9000".
	Endpoint  string
	AccessKey string
	SecretKey string

	MaxRetries uint64
	BaseDelay  time.Duration
}

// ObjectGetter is the part of the S3 client the source needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewS3Client connects to the configured endpoint with static credentials.
func NewS3Client(cfg S3Config) *s3.Client {
	return s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.AccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		} else {
			o.Credentials = aws.AnonymousCredentials{}
		}
	})
}

// S3Source reads artifacts from a bucket, retrying transient failures with
// Fibonacci backoff.
type S3Source struct {
	client         ObjectGetter
	cfg            S3Config
	vectorizerName string
	classifierName string
}

// NewS3Source returns a source reading from cfg.Bucket under cfg.Prefix.
func NewS3Source(client ObjectGetter, cfg S3Config, vectorizerName, classifierName string) *S3Source {
	if vectorizerName == "" {
		vectorizerName = DefaultVectorizerName
	}
	if classifierName == "" {
		classifierName = DefaultClassifierName
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	return &S3Source{client: client, cfg: cfg, vectorizerName: vectorizerName, classifierName: classifierName}
}

func (s *S3Source) key(name string) string {
	prefix := strings.Trim(s.cfg.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Open downloads the named blob fully before returning it.
func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)
	var data []byte

	b := retry.NewFibonacci(s.cfg.BaseDelay)
	err := retry.Do(ctx, retry.WithMaxRetries(s.cfg.MaxRetries, b), func(ctx context.Context) error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.cfg.Bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			if isPermanentS3Error(err) {
				return err
			}
			return retry.RetryableError(err)
		}
		defer out.Body.Close()

		data, err = io.ReadAll(out.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if isMissingObject(err) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrMissingArtifact, s.cfg.Bucket, key)
		}
		return nil, fmt.Errorf("s3://%s/%s: %w", s.cfg.Bucket, key, err)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Names returns the blob names.
func (s *S3Source) Names() (string, string) {
	return s.vectorizerName, s.classifierName
}

// Location returns the bucket URL.
func (s *S3Source) Location() string {
	return "s3://" + s.cfg.Bucket + "/" + strings.Trim(s.cfg.Prefix, "/")
}

func isPermanentS3Error(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var noBucket *types.NoSuchBucket
	return isMissingObject(err) || errors.As(err, &noBucket)
}

// isMissingObject reports whether err says the key does not exist. S3
// compatible servers often answer with a bare 404 "NotFound".
func isMissingObject(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
