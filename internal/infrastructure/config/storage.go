package config

import "time"

// StorageConfig holds object storage configuration for shipment files
type StorageConfig struct {
	// Bucket name for shipment file uploads
	Bucket string `mapstructure:"bucket" validate:"required"`

	Region string `mapstructure:"region"`

	// Custom endpoint for S3-compatible stores (left empty for AWS)
	Endpoint string `mapstructure:"endpoint"`

	// Lifetime of generated download URLs
	SignedURLTTL time.Duration `mapstructure:"signed_url_ttl"`
}
