package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/ruthwik162/appointment-server/internal/config"
)

// ImageStore uploads a profile image and returns a URL granting read access
type ImageStore interface {
	Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)
}

type s3Store struct {
	client *s3.S3
	bucket string
	urlTTL time.Duration
}

// NewS3Store builds an S3-backed ImageStore. The client is constructed once
// here and shared by all requests.
func NewS3Store(cfg config.S3Config) (ImageStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return &s3Store{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		urlTTL: cfg.URLTTL,
	}, nil
}

// Upload stores the file under a time-stamped profileImages key and returns a
// presigned GET URL for it
func (s *s3Store) Upload(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	key := fmt.Sprintf("profileImages/%d_%s", time.Now().UnixNano(), fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image to S3: %w", err)
	}

	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(s.urlTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign image URL: %w", err)
	}
	return url, nil
}
