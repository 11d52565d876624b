package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	SetDefaults(cfg)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "afserver", cfg.Database.Name)
	assert.Equal(t, 25, cfg.Database.Pool.MaxOpen)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.Empty(t, cfg.Logging.FilePath, "no file path unless file output")
}

func TestSetDefaultsLogFilePath(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Output = "file"
	SetDefaults(cfg)
	assert.Equal(t, "logs/af-server.log", cfg.Logging.FilePath)

	cfg = &Config{}
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = "/var/log/af/server.log"
	SetDefaults(cfg)
	assert.Equal(t, "/var/log/af/server.log", cfg.Logging.FilePath)
}
