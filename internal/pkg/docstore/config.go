package docstore

import (
	"errors"
	"fmt"

	"github.com/RegioJobs/RegioJobs/internal/pkg/env"
)

// Config holds the S3 document archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadConfig loads the document archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "eu-central-1"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnv("DOC_ARCHIVE_ENABLED", "false") == "true",
	}

	// Validate required fields if the archive is enabled
	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when the document archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when the document archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when the document archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if document archiving is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// InvoiceObjectKey generates the S3 object key for a rendered invoice.
// Format: invoices/YYYY/RJ-YYYY-NNNNNN.html
func (c *Config) InvoiceObjectKey(invoiceNumber string, year int) string {
	return fmt.Sprintf("invoices/%04d/%s.html", year, invoiceNumber)
}
