package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where timepilot stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// Timezone is the default IANA timezone used to interpret requests that
	// carry no timezone of their own.
	Timezone string
	// BufferMinutes keeps candidate slots at least this far in the future.
	BufferMinutes int
	// GranularityMinutes is the candidate enumeration step for slot search.
	GranularityMinutes int

	// AI configuration
	AIEnabled  bool   // TIMEPILOT_AI_ENABLED
	AIProvider string // TIMEPILOT_AI_PROVIDER (default: deepseek)
	AIAPIKey   string // TIMEPILOT_AI_API_KEY
	AIBaseURL  string // TIMEPILOT_AI_BASE_URL
	AIModel    string // TIMEPILOT_AI_MODEL (default: deepseek-chat)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI extraction is enabled and usable.
func (p *Profile) IsAIEnabled() bool {
	return p.AIEnabled && p.AIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from TIMEPILOT_* environment variables.
func (p *Profile) FromEnv() {
	p.AIEnabled = os.Getenv("TIMEPILOT_AI_ENABLED") == "true"
	p.AIProvider = getEnvOrDefault("TIMEPILOT_AI_PROVIDER", "deepseek")
	p.AIAPIKey = os.Getenv("TIMEPILOT_AI_API_KEY")
	p.AIBaseURL = os.Getenv("TIMEPILOT_AI_BASE_URL")
	p.AIModel = getEnvOrDefault("TIMEPILOT_AI_MODEL", "deepseek-chat")

	p.Timezone = getEnvOrDefault("TIMEPILOT_TIMEZONE", p.Timezone)
	if v := os.Getenv("TIMEPILOT_BUFFER_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			p.BufferMinutes = n
		}
	}
	if v := os.Getenv("TIMEPILOT_GRANULARITY_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.GranularityMinutes = n
		}
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Timezone == "" {
		p.Timezone = "Asia/Shanghai"
	}
	if p.BufferMinutes <= 0 {
		p.BufferMinutes = 30
	}
	if p.GranularityMinutes <= 0 {
		p.GranularityMinutes = 30
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "timepilot")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/timepilot"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("timepilot_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	return nil
}
