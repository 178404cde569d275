// Package avatar resizes uploaded profile pictures and stores them in
// S3-compatible object storage.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
)

// Avatars are stored as centered square crops at a fixed edge length.
const avatarSize = 256

// Store uploads processed avatars to object storage.
type Store struct {
	s3Client *s3.Client
	config   *Config
}

// NewStore creates an avatar store from configuration
func NewStore(cfg *Config) (*Store, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("avatar storage is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
			o.UseAccelerate = false
		}
	})

	store := &Store{
		s3Client: s3Client,
		config:   cfg,
	}

	log.Infof("[Avatar] Initialized avatar store for bucket: %s", cfg.BucketName)
	return store, nil
}

// Save resizes the uploaded image to a square avatar, uploads it and returns
// the public URL. The source may be any format imaging can decode; the stored
// avatar is always JPEG.
func (s *Store) Save(ctx context.Context, publicID string, upload io.Reader) (string, error) {
	src, err := imaging.Decode(upload, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode avatar image: %w", err)
	}

	cropped := imaging.Fill(src, avatarSize, avatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode avatar: %w", err)
	}

	objectKey := s.config.ObjectKey(publicID)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.BucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("image/jpeg"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.config.PublicURL(objectKey), nil
}

// Delete removes a member's stored avatar. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, publicID string) error {
	objectKey := s.config.ObjectKey(publicID)
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.BucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}
	return nil
}
