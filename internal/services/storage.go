package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageService archives the raw uploaded CV file as <vectorId><ext>.
type StorageService interface {
	SaveFile(ctx context.Context, vectorID, originalName string, data []byte, contentType string) (string, error)
	EnsureReady(ctx context.Context) error
}

type localStorage struct {
	uploadPath string
}

func NewLocalStorage(uploadPath string) StorageService {
	return &localStorage{uploadPath: uploadPath}
}

// EnsureReady implements StorageService.
func (s *localStorage) EnsureReady(context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// SaveFile implements StorageService.
func (s *localStorage) SaveFile(_ context.Context, vectorID, originalName string, data []byte, _ string) (string, error) {
	filePath := filepath.Join(s.uploadPath, archiveName(vectorID, originalName))

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

type s3Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Storage(ctx context.Context, region, bucket, prefix string) (StorageService, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is not configured")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &s3Storage{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

// EnsureReady implements StorageService.
func (s *s3Storage) EnsureReady(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("failed to reach s3 bucket %s: %w", s.bucket, err)
	}
	return nil
}

// SaveFile implements StorageService.
func (s *s3Storage) SaveFile(ctx context.Context, vectorID, originalName string, data []byte, contentType string) (string, error) {
	key := path.Join(s.prefix, archiveName(vectorID, originalName))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"original-name": originalName,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to s3: %w", err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func archiveName(vectorID, originalName string) string {
	return vectorID + strings.ToLower(filepath.Ext(originalName))
}
