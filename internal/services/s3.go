package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS; set for R2, MinIO and friends
	AccessKey string
	SecretKey string
	PublicURL string // base URL objects are served from
}

// S3Service stores media in an S3-compatible bucket. Object keys double as
// public ids.
type S3Service struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Service(ctx context.Context, cfg S3Config) (*S3Service, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, fmt.Errorf("s3: bucket and region are required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		if endpoint != "" {
			publicURL = endpoint + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Service{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (s *S3Service) Upload(ctx context.Context, file io.Reader, opts UploadOptions) (*MediaAsset, error) {
	key := objectKey(opts)
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return nil, fmt.Errorf("failed to upload to s3: %w", err)
	}
	return &MediaAsset{URL: s.publicURL + "/" + key, PublicID: key}, nil
}

func (s *S3Service) Delete(ctx context.Context, publicID string, _ MediaKind) error {
	if publicID == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from s3: %w", err)
	}
	return nil
}

// objectKey builds "<kind>s/<folder>/<uuid><ext>".
func objectKey(opts UploadOptions) string {
	kind := opts.Kind
	if kind == "" {
		kind = MediaImage
	}
	name := uuid.NewString() + strings.ToLower(path.Ext(opts.Filename))
	return path.Join(string(kind)+"s", opts.Folder, name)
}
