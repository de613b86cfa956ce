// Package storage issues presigned upload URLs for meal photos on S3 or any
// S3-compatible store (MinIO, R2). Clients upload directly; the service only
// ever sees the resulting object URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tbourn/go-habit-backend/internal/config"
)

// S3Presigner presigns PUT requests for one bucket.
type S3Presigner struct {
	presign       *s3.PresignClient
	bucket        string
	region        string
	endpoint      string
	publicBaseURL string
	ttl           time.Duration
}

// NewS3 builds a presigner from cfg. Static credentials are used when an
// access key is configured; otherwise the default AWS credential chain.
func NewS3(ctx context.Context, cfg config.StorageConfig) (*S3Presigner, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage: bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.UploadURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &S3Presigner{
		presign:       s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      endpoint,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		ttl:           ttl,
	}, nil
}

// TTL is how long presigned URLs stay valid.
func (p *S3Presigner) TTL() time.Duration { return p.ttl }

// PresignPut returns a URL the client can PUT the object body to. The
// request must carry the same Content-Type.
func (p *S3Presigner) PresignPut(ctx context.Context, key, contentType string) (string, error) {
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", fmt.Errorf("storage: presign put: %w", err)
	}
	return req.URL, nil
}

// PublicURL is where an uploaded object can be read from.
func (p *S3Presigner) PublicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case p.publicBaseURL != "":
		return p.publicBaseURL + "/" + escaped
	case p.endpoint != "":
		return p.endpoint + "/" + p.bucket + "/" + escaped
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, escaped)
	}
}
