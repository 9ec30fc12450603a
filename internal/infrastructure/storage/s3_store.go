package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// maxObjectSize bounds a downloaded namespace document
const maxObjectSize = 8 << 20

// Ensure S3MetafieldStore implements MetafieldStore
var _ integration.MetafieldStore = (*S3MetafieldStore)(nil)

// S3MetafieldStore publishes each tenant namespace as a single JSON object.
// A single PutObject replaces every record at once.
// It is compatible with any S3-compatible storage (AWS S3, RustFS, MinIO, etc.)
type S3MetafieldStore struct {
	client *s3.Client
	bucket string
	prefix string
	logger *zap.Logger
}

// S3MetafieldStoreOption is a functional option for configuring S3MetafieldStore
type S3MetafieldStoreOption func(*S3MetafieldStore)

// WithLogger sets a custom logger for S3MetafieldStore
func WithLogger(logger *zap.Logger) S3MetafieldStoreOption {
	return func(s *S3MetafieldStore) {
		s.logger = logger
	}
}

// namespaceDocument is the stored object body
type namespaceDocument struct {
	Tenant    string                      `json:"tenant"`
	Namespace string                      `json:"namespace"`
	Records   []integration.PublishRecord `json:"records"`
}

// NewS3MetafieldStore creates a store from configuration
func NewS3MetafieldStore(cfg *config.S3Config, opts ...S3MetafieldStoreOption) (*S3MetafieldStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return nil, errors.New("storage access key and secret key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// S3-compatible servers reject the default trailing checksums
			o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
			o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
		}
	})

	store := &S3MetafieldStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// Put writes the namespace document, replacing any previous version
func (s *S3MetafieldStore) Put(ctx context.Context, tenantKey, namespace string, records []integration.PublishRecord) error {
	if err := integration.ValidateRecords(records); err != nil {
		return err
	}
	if records == nil {
		records = []integration.PublishRecord{}
	}

	body, err := json.Marshal(namespaceDocument{
		Tenant:    tenantKey,
		Namespace: namespace,
		Records:   records,
	})
	if err != nil {
		return fmt.Errorf("%w: encode records: %v", integration.ErrPublishFailed, err)
	}

	key := s.objectKey(tenantKey, namespace)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrPublishFailed, err)
	}

	s.logger.Debug("Published namespace document",
		zap.String("tenant", tenantKey),
		zap.String("key", key),
		zap.Int("records", len(records)),
	)
	return nil
}

// Get reads the namespace document. A missing object yields no records.
func (s *S3MetafieldStore) Get(ctx context.Context, tenantKey, namespace string) ([]integration.PublishRecord, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(tenantKey, namespace)),
	})
	if err != nil {
		if isNotFound(err) {
			return []integration.PublishRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read published records: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read published records: %w", err)
	}

	var doc namespaceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode published records: %w", err)
	}
	if doc.Records == nil {
		doc.Records = []integration.PublishRecord{}
	}
	return doc.Records, nil
}

// Delete removes the namespace document
func (s *S3MetafieldStore) Delete(ctx context.Context, tenantKey, namespace string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(tenantKey, namespace)),
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete published records: %w", err)
	}
	return nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup to ensure the bucket is ready.
func (s *S3MetafieldStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Bucket returns the bucket name
func (s *S3MetafieldStore) Bucket() string {
	return s.bucket
}

func (s *S3MetafieldStore) objectKey(tenantKey, namespace string) string {
	return path.Join(s.prefix, tenantKey, namespace+".json")
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return true
	}
	// Some S3-compatible services only report the code in the message
	return strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "NoSuchKey")
}
