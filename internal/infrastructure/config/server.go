package config

import "time"

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	// Listen address, e.g. ":8080"
	Address string `mapstructure:"address"`

	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// CORS allow-list; "*" permits any origin
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Maximum upload size in megabytes for multipart endpoints
	MaxUploadMB int `mapstructure:"max_upload_mb" validate:"min=1"`
}
