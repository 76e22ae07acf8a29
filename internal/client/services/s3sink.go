package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/clinicdesk/internal/filex"
	"github.com/dmitrijs2005/clinicdesk/internal/netx"
)

var ErrS3NotConfigured = errors.New("s3 export bucket is not configured")

const (
	uploadURLExpiry = 15 * time.Minute
	defaultLinkTTL  = 24 * time.Hour
)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// S3Sink uploads exports to an S3-compatible bucket (MinIO in development)
// and returns a time-limited download link.
type S3Sink struct {
	presign *s3.PresignClient
	bucket  string
	prefix  string
	http    *http.Client
	linkTTL time.Duration
}

func NewS3Sink(ctx context.Context, cfg S3Config, hc *http.Client) (*S3Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, ErrS3NotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Sink{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		http:    hc,
		linkTTL: defaultLinkTTL,
	}, nil
}

func (s *S3Sink) Write(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := path.Join(s.prefix, filex.SafeName(name))

	put, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(uploadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("presign upload: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, s.http, put.URL, data, contentType); err != nil {
		return "", err
	}

	get, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.linkTTL))
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return get.URL, nil
}
