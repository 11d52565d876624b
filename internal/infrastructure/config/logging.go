package config

// LoggingConfig drives the zap logger construction.
type LoggingConfig struct {
	// Log level: debug, info, warn, error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// "json" for production ingestion, "text" for local development
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	// Output destination: stdout, stderr, file
	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr file"`

	// Log file path for file output; defaults to logs/af-server.log
	FilePath string `mapstructure:"file_path"`

	// Rotation of the log file via lumberjack
	Rotation RotationConfig `mapstructure:"rotation"`

	// Include caller information (file:line)
	IncludeCaller bool `mapstructure:"include_caller"`

	// Include stack traces for errors
	IncludeStacktrace bool `mapstructure:"include_stacktrace"`
}

// RotationConfig bounds the log file set on disk.
type RotationConfig struct {
	// Enable rotation
	Enabled bool `mapstructure:"enabled"`

	// Maximum size in megabytes before rotation
	MaxSize int `mapstructure:"max_size" validate:"min=1"`

	// Maximum number of old log files to keep
	MaxBackups int `mapstructure:"max_backups" validate:"min=0"`

	// Maximum age in days before deletion
	MaxAge int `mapstructure:"max_age" validate:"min=0"`

	// Compress rotated files
	Compress bool `mapstructure:"compress"`
}
