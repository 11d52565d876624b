package config

// AIConfig holds the document extraction model configuration
type AIConfig struct {
	// API key; the unprefixed ANTHROPIC_API_KEY env var takes precedence
	APIKey string `mapstructure:"api_key"`

	Model string `mapstructure:"model"`

	MaxTokens int `mapstructure:"max_tokens" validate:"min=1"`
}
