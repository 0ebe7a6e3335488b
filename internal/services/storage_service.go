// internal/services/storage_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/javajoker/toolhatch-backend/internal/config"
)

type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// DownloadLink turns a product's downloadUrl into something a buyer can
// fetch. Full URLs are returned unchanged; object keys are presigned.
func (s *StorageService) DownloadLink(location string) (string, error) {
	if isAbsoluteURL(location) {
		return location, nil
	}
	if s.s3Client == nil {
		return s.getS3URL(location), nil
	}

	ttl := time.Duration(s.config.AWS.DownloadURLTTL) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return s.GeneratePresignedURL(location, ttl)
}

func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(strings.TrimPrefix(key, "/")),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}

func (s *StorageService) getS3URL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.S3Bucket, s.config.AWS.Region, strings.TrimPrefix(key, "/"))
}

func isAbsoluteURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
