package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"toyWholesale/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Storage uploads to any S3-compatible bucket (AWS, MinIO and the like).
type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
	logger    *zap.Logger
}

type S3Option func(*S3Storage)

func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3Storage) {
		s.logger = logger.Named("storage")
	}
}

func NewS3Storage(ctx context.Context, cfg config.S3Config, opts ...S3Option) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		base := cfg.Endpoint
		if base == "" {
			base = fmt.Sprintf("https://s3.%s.amazonaws.com", cfg.Region)
		}
		publicURL = strings.TrimSuffix(base, "/") + "/" + cfg.Bucket
	}

	s := &S3Storage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *S3Storage) Save(ctx context.Context, kind, filename string, r io.Reader) (string, error) {
	key, contentType, err := objectKey(kind, filename)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error("put object failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}

func (s *S3Storage) Remove(ctx context.Context, url string) error {
	key, err := keyFromURL(s.publicURL+"/", url)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("delete object failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
