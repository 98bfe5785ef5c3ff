package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// S3Config contains minimal configuration for the S3-backed store.
// Region and Profile are optional and fall back to the standard AWS chain.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	Profile      string
	UsePathStyle bool
	// PresignTTL bounds how long a handle's URL stays playable.
	PresignTTL time.Duration
}

// S3Store uploads media to a bucket and hands out presigned GET URLs.
// Releasing a handle deletes the object.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	cfg     S3Config
}

// NewS3Store creates a store using the default AWS configuration chain.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3StoreWithClient(client, cfg), nil
}

// NewS3StoreWithClient wraps an existing SDK client.
func NewS3StoreWithClient(client *s3.Client, cfg S3Config) *S3Store {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = time.Hour
	}
	return &S3Store{client: client, presign: s3.NewPresignClient(client), cfg: cfg}
}

func (s *S3Store) Create(ctx context.Context, name string, data []byte, contentType string) (*Handle, error) {
	key := s.cfg.Prefix + safeName(name) + "-" + uuid.NewString() + extension(contentType)

	in := &s3.PutObjectInput{
		Bucket:       aws.String(s.cfg.Bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		CacheControl: aws.String("private, max-age=3600"),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		s.delete(key)
		return nil, fmt.Errorf("failed to presign %s: %w", key, err)
	}

	return NewHandle(req.URL, func() error { return s.delete(key) }), nil
}

func (s *S3Store) delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		log.Printf("⚠️ Failed to delete s3://%s/%s: %v", s.cfg.Bucket, key, err)
	}
	return err
}

// Exists reports whether the object behind a handle URL is still stored.
func (s *S3Store) Exists(ctx context.Context, h *Handle) (bool, error) {
	key, err := s.keyOf(h)
	if err != nil {
		return false, err
	}
	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}

// keyOf recovers the object key from a presigned URL.
func (s *S3Store) keyOf(h *Handle) (string, error) {
	u := h.URL
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	i := strings.Index(u, "/"+s.cfg.Prefix)
	if s.cfg.Prefix == "" {
		i = strings.LastIndexByte(u, '/')
	}
	if i < 0 {
		return "", fmt.Errorf("handle %q does not belong to this store", h.URL)
	}
	return u[i+1:], nil
}
