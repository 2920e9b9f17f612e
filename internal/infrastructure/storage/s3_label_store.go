// Package storage provides object storage implementations for shipping
// label archival.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appOrders "github.com/wms/backend/internal/application/orders"
	infraconfig "github.com/wms/backend/internal/infrastructure/config"
)

// maxLabelSize limits how much of a carrier label we are willing to fetch (20MB)
const maxLabelSize = 20 * 1024 * 1024

var _ appOrders.LabelArchiver = (*S3LabelStore)(nil)

// S3LabelStore archives carrier shipping labels to an S3-compatible bucket.
// Carrier label URLs expire after a few days; archiving keeps the document
// available for later reprints and disputes.
type S3LabelStore struct {
	client     *s3.Client
	httpClient *http.Client
	bucket     string
	keyPrefix  string
	logger     *zap.Logger
}

// S3LabelStoreOption is a functional option for configuring S3LabelStore
type S3LabelStoreOption func(*S3LabelStore)

// WithLogger sets a custom logger for S3LabelStore
func WithLogger(logger *zap.Logger) S3LabelStoreOption {
	return func(s *S3LabelStore) {
		s.logger = logger
	}
}

// WithHTTPClient sets the client used to fetch labels from carrier URLs
func WithHTTPClient(client *http.Client) S3LabelStoreOption {
	return func(s *S3LabelStore) {
		s.httpClient = client
	}
}

// NewS3LabelStore creates a new S3LabelStore from configuration.
// Compatible with any S3-compatible backend (AWS S3, MinIO, etc.)
func NewS3LabelStore(cfg *infraconfig.StorageConfig, opts ...S3LabelStoreOption) (*S3LabelStore, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretAccessKey == "" {
		return nil, errors.New("storage secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid storage endpoint: %w", err)
		}
	}

	region := cfg.Region
	if region == "" {
		region = "eu-west-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	store := &S3LabelStore{
		client:     client,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		bucket:     cfg.Bucket,
		keyPrefix:  cfg.KeyPrefix,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store, nil
}

// ArchiveLabel downloads the label at labelURL and stores a copy under the
// order's key. Returns the storage key of the archived object.
func (s *S3LabelStore) ArchiveLabel(ctx context.Context, orderID uuid.UUID, labelURL string) (string, error) {
	if labelURL == "" {
		return "", errors.New("storage: label URL is required")
	}

	data, contentType, err := s.fetchLabel(ctx, labelURL)
	if err != nil {
		return "", err
	}

	key := s.labelKey(orderID, labelURL, contentType)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("storage: failed to archive label: %w", err)
	}

	s.logger.Debug("archived shipping label",
		zap.String("order_id", orderID.String()),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)
	return key, nil
}

func (s *S3LabelStore) fetchLabel(ctx context.Context, labelURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, labelURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("storage: invalid label URL: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("storage: failed to fetch label: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("storage: label fetch returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLabelSize))
	if err != nil {
		return nil, "", fmt.Errorf("storage: failed to read label: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return data, contentType, nil
}

func (s *S3LabelStore) labelKey(orderID uuid.UUID, labelURL, contentType string) string {
	ext := path.Ext(strippedPath(labelURL))
	if ext == "" {
		switch contentType {
		case "image/png":
			ext = ".png"
		case "application/zpl", "text/zpl":
			ext = ".zpl"
		default:
			ext = ".pdf"
		}
	}
	return s.keyPrefix + orderID.String() + ext
}

func strippedPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Path
}

// GetBucket returns the configured bucket name (for diagnostics)
func (s *S3LabelStore) GetBucket() string {
	return s.bucket
}
