package archive

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Config configures an S3Source.
//
// Authentication uses the AWS SDK v2 default credential chain unless
// explicit credentials are provided. For S3-compatible stores (MinIO,
// Wasabi), set Endpoint and typically ForcePathStyle.
type S3Config struct {
	// Bucket is the bucket holding the partition dumps (required).
	Bucket string

	// Prefix is the key prefix the dumps live under, e.g. "builddata/".
	Prefix string

	// Region is the AWS region. Empty defers to the SDK chain.
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible stores.
	Endpoint string

	// Profile is the AWS shared-config profile to use.
	Profile string

	// AccessKeyID / SecretAccessKey are explicit credentials. If one is
	// set, both must be.
	AccessKeyID     string
	SecretAccessKey string

	// ForcePathStyle forces path-style URLs (bucket in path).
	ForcePathStyle bool
}

// Validate checks that required configuration is present.
func (c *S3Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("archive bucket is required")
	}
	if (c.AccessKeyID != "") != (c.SecretAccessKey != "") {
		return fmt.Errorf("both access key id and secret access key must be provided together")
	}
	return nil
}

// S3Source reads partition dumps mirrored to an S3 bucket.
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source creates an S3Source with the given configuration.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Opts := []func(*s3.Options){
		func(o *s3.Options) {
			if cfg.ForcePathStyle {
				o.UsePathStyle = true
			}
		},
	}
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return &S3Source{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Rolling returns the rolling-window partition.
func (s *S3Source) Rolling(ctx context.Context) ([]Build, error) {
	return s.fetch(ctx, RollingFile)
}

// Day returns the partition for a UTC calendar day.
func (s *S3Source) Day(ctx context.Context, day string) ([]Build, error) {
	return s.fetch(ctx, DayFile(day))
}

func (s *S3Source) fetch(ctx context.Context, name string) ([]Build, error) {
	key := path.Join(s.prefix, name+".gz")

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, mapS3Error(err))
	}
	defer func() { _ = out.Body.Close() }()

	return decodePartition(out.Body)
}

// mapS3Error normalizes missing-object errors across S3-compatible stores.
func mapS3Error(err error) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return fmt.Errorf("partition object missing: %w", err)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
		return fmt.Errorf("partition object missing: %w", err)
	}
	return err
}
