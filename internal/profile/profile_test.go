package profile

import (
	"os"
	"testing"
)

func TestAIProfileDefaults(t *testing.T) {
	clearEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"AIEnabled should be false by default", "false", boolToString(profile.AIEnabled)},
		{"AIProvider default", "deepseek", profile.AIProvider},
		{"AIModel default", "deepseek-chat", profile.AIModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		field    func(*Profile) string
		expected string
	}{
		{
			name:     "TIMEPILOT_AI_ENABLED=true",
			envVar:   "TIMEPILOT_AI_ENABLED",
			envValue: "true",
			field:    func(p *Profile) string { return boolToString(p.AIEnabled) },
			expected: "true",
		},
		{
			name:     "TIMEPILOT_AI_PROVIDER",
			envVar:   "TIMEPILOT_AI_PROVIDER",
			envValue: "openai",
			field:    func(p *Profile) string { return p.AIProvider },
			expected: "openai",
		},
		{
			name:     "TIMEPILOT_AI_API_KEY",
			envVar:   "TIMEPILOT_AI_API_KEY",
			envValue: "test-key-123",
			field:    func(p *Profile) string { return p.AIAPIKey },
			expected: "test-key-123",
		},
		{
			name:     "TIMEPILOT_AI_MODEL",
			envVar:   "TIMEPILOT_AI_MODEL",
			envValue: "gpt-4o-mini",
			field:    func(p *Profile) string { return p.AIModel },
			expected: "gpt-4o-mini",
		},
		{
			name:     "TIMEPILOT_TIMEZONE",
			envVar:   "TIMEPILOT_TIMEZONE",
			envValue: "America/New_York",
			field:    func(p *Profile) string { return p.Timezone },
			expected: "America/New_York",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			os.Setenv(tt.envVar, tt.envValue)
			defer os.Unsetenv(tt.envVar)

			profile := &Profile{}
			profile.FromEnv()

			actual := tt.field(profile)
			if actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, actual)
			}
		})
	}
}

func TestIsAIEnabled(t *testing.T) {
	tests := []struct {
		name           string
		setup          func(*Profile)
		expectedResult bool
	}{
		{
			name:           "AIEnabled=false should return false",
			setup:          func(p *Profile) { p.AIEnabled = false },
			expectedResult: false,
		},
		{
			name: "AIEnabled=true but no API key should return false",
			setup: func(p *Profile) {
				p.AIEnabled = true
				p.AIAPIKey = ""
			},
			expectedResult: false,
		},
		{
			name: "AIEnabled=true with API key should return true",
			setup: func(p *Profile) {
				p.AIEnabled = true
				p.AIAPIKey = "test-key"
			},
			expectedResult: true,
		},
		{
			name: "AIEnabled=false with API key should return false",
			setup: func(p *Profile) {
				p.AIEnabled = false
				p.AIAPIKey = "test-key"
			},
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &Profile{}
			tt.setup(profile)
			result := profile.IsAIEnabled()
			if result != tt.expectedResult {
				t.Errorf("IsAIEnabled(): expected %v, got %v", tt.expectedResult, result)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	dir := t.TempDir()
	profile := &Profile{Mode: "dev", Data: dir, Driver: "sqlite"}
	if err := profile.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if profile.Timezone != "Asia/Shanghai" {
		t.Errorf("expected default timezone Asia/Shanghai, got %q", profile.Timezone)
	}
	if profile.BufferMinutes != 30 {
		t.Errorf("expected default buffer 30, got %d", profile.BufferMinutes)
	}
	if profile.GranularityMinutes != 30 {
		t.Errorf("expected default granularity 30, got %d", profile.GranularityMinutes)
	}
	if profile.DSN == "" {
		t.Error("expected sqlite DSN to be derived from data dir")
	}
}

// Helper functions

func clearEnvVars() {
	envVars := []string{
		"TIMEPILOT_AI_ENABLED",
		"TIMEPILOT_AI_PROVIDER",
		"TIMEPILOT_AI_API_KEY",
		"TIMEPILOT_AI_BASE_URL",
		"TIMEPILOT_AI_MODEL",
		"TIMEPILOT_TIMEZONE",
		"TIMEPILOT_BUFFER_MINUTES",
		"TIMEPILOT_GRANULARITY_MINUTES",
	}
	for _, envVar := range envVars {
		os.Unsetenv(envVar)
	}
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
