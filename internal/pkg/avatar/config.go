package avatar

import (
	"errors"
	"fmt"

	"github.com/pledgefox/PledgeFox/internal/pkg/env"
)

// Config holds avatar storage configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	PublicBaseURL   string // Optional CDN/public base; defaults to the S3 URL
	Enabled         bool
}

// LoadConfig loads avatar storage configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "us-west-001"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		PublicBaseURL:   env.GetEnv("S3_PUBLIC_BASE_URL", ""),
		Enabled:         env.GetEnv("AVATAR_STORAGE_ENABLED", "false") == "true",
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when avatar storage is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when avatar storage is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when avatar storage is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if avatar storage is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey generates the S3 object key for a member's avatar
func (c *Config) ObjectKey(publicID string) string {
	return fmt.Sprintf("avatars/%s.jpg", publicID)
}

// PublicURL returns the browser-facing URL for an object key
func (c *Config) PublicURL(objectKey string) string {
	if c.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", c.PublicBaseURL, objectKey)
	}
	if c.EndpointURL != "" {
		return fmt.Sprintf("%s/%s/%s", c.EndpointURL, c.BucketName, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.BucketName, c.Region, objectKey)
}
