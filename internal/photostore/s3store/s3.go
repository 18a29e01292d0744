// Package s3store stores visit photos in an S3-compatible bucket.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/photostore"
)

// API is the subset of *s3.Client the store needs.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type ClientConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewClient builds a client with static credentials. A non-empty Endpoint
// targets an S3-compatible service instead of AWS and uses path-style
// addressing.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure s3 client: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

type S3PhotoStore struct {
	client    API
	bucket    string
	keyPrefix string
}

// NewS3PhotoStore stores objects in bucket under keyPrefix (for example "photos/").
func NewS3PhotoStore(client API, bucket, keyPrefix string) *S3PhotoStore {
	return &S3PhotoStore{client: client, bucket: bucket, keyPrefix: keyPrefix}
}

func (s *S3PhotoStore) Save(ctx context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	// PutObject needs a seekable body to sign the payload.
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	key := photostore.NewKey(prefix, mimeType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(mimeType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	return key, nil
}

func (s *S3PhotoStore) Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(storageKey)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, "", fmt.Errorf("photo %s: %w", storageKey, domain.ErrNotFound)
		}
		return nil, "", fmt.Errorf("failed to download photo: %w", err)
	}

	mimeType := photostore.ExtToMimeType(storageKey)
	if out.ContentType != nil && *out.ContentType != "" {
		mimeType = *out.ContentType
	}
	return out.Body, mimeType, nil
}

// Delete removes the object. S3 reports success for missing keys, so this
// never returns a not-found error.
func (s *S3PhotoStore) Delete(ctx context.Context, storageKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(storageKey)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}
	return nil
}

func (s *S3PhotoStore) objectKey(storageKey string) string {
	return s.keyPrefix + storageKey
}
