package config

import "time"

// AuthConfig holds token verification configuration
type AuthConfig struct {
	// Endpoint of the identity provider's token verification API
	VerifierURL string `mapstructure:"verifier_url"`

	Timeout time.Duration `mapstructure:"timeout"`
}
