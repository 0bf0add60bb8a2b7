package ai

import (
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/timepilot/internal/profile"
)

// Config holds the chat provider configuration.
type Config struct {
	Provider    string // deepseek, openai
	BaseURL     string
	APIKey      string
	Model       string
	MaxRetries  int
	Timeout     time.Duration
	RatePerMin  int // request budget per minute, 0 = unlimited
	Temperature float32
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:    "deepseek",
		BaseURL:     "https://api.deepseek.com",
		Model:       "deepseek-chat",
		MaxRetries:  3,
		Timeout:     30 * time.Second,
		RatePerMin:  60,
		Temperature: 0.2,
	}
}

// NewConfigFromProfile creates chat config from the server profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := DefaultConfig()
	if p.AIProvider != "" {
		cfg.Provider = p.AIProvider
	}
	cfg.APIKey = p.AIAPIKey
	if p.AIModel != "" {
		cfg.Model = p.AIModel
	}

	switch cfg.Provider {
	case "openai":
		cfg.BaseURL = "https://api.openai.com/v1"
	case "deepseek":
		cfg.BaseURL = "https://api.deepseek.com"
	}
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}
	return cfg
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("AI API key is required, set TIMEPILOT_AI_API_KEY")
	}
	if c.Model == "" {
		return errors.New("AI model is required")
	}
	return nil
}
