// Package config loads runtime settings. Precedence is defaults, then an
// optional TOML file, then FLOWPORT_-prefixed environment variables. A
// .env file in the working directory is loaded first when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the config file consulted when no --config flag is given.
const DefaultFile = "flowport.toml"

// Defaults for every setting.
const (
	DefaultAppName               = "Flowport API"
	DefaultAddr                  = ":8000"
	DefaultStorageDir            = "data/knowledge_bases"
	DefaultPreseedDir            = "data/preseed"
	DefaultAuditDBPath           = "data/flowport.db"
	DefaultTopK                  = 4
	DefaultRequestTimeoutSeconds = 60
	DefaultCaptionTimeoutSeconds = 90
	DefaultProviderRateLimit     = 8
	DefaultLogLevel              = "info"
)

// Config holds every runtime setting.
type Config struct {
	AppName               string  `toml:"app_name"`
	Addr                  string  `toml:"addr"`
	StorageDir            string  `toml:"storage_dir"`
	PreseedDir            string  `toml:"preseed_dir"`
	AuditDBPath           string  `toml:"audit_db_path"`
	DefaultTopK           int     `toml:"default_top_k"`
	RequestTimeoutSeconds int     `toml:"request_timeout_seconds"`
	CaptionTimeoutSeconds int     `toml:"caption_timeout_seconds"`
	ProviderRateLimit     float64 `toml:"provider_rate_limit"`
	LogLevel              string  `toml:"log_level"`
	WatchPreseed          bool    `toml:"watch_preseed"`

	Providers ProviderConfig `toml:"providers"`
}

// ProviderConfig carries per-provider base URL overrides. Empty values
// keep each client's default endpoint.
type ProviderConfig struct {
	HuggingFaceBaseURL string `toml:"huggingface_base_url"`
	OpenAIBaseURL      string `toml:"openai_base_url"`
	GeminiBaseURL      string `toml:"gemini_base_url"`
	LlamaBaseURL       string `toml:"llama_base_url"`
}

// Default returns a config with every setting at its default.
func Default() *Config {
	return &Config{
		AppName:               DefaultAppName,
		Addr:                  DefaultAddr,
		StorageDir:            DefaultStorageDir,
		PreseedDir:            DefaultPreseedDir,
		AuditDBPath:           DefaultAuditDBPath,
		DefaultTopK:           DefaultTopK,
		RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		CaptionTimeoutSeconds: DefaultCaptionTimeoutSeconds,
		ProviderRateLimit:     DefaultProviderRateLimit,
		LogLevel:              DefaultLogLevel,
		WatchPreseed:          true,
	}
}

// Load builds the configuration. path points at a TOML file; blank means
// DefaultFile in the working directory, which may be absent. A path given
// explicitly must exist.
func Load(path string) (*Config, error) {
	// Load .env if it exists
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// The default file is optional.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir is required")
	}
	if c.DefaultTopK < 1 {
		return fmt.Errorf("default_top_k must be at least 1")
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	if c.CaptionTimeoutSeconds <= 0 {
		return fmt.Errorf("caption_timeout_seconds must be positive")
	}
	if c.LogLevel == "" {
		return fmt.Errorf("log_level is required")
	}
	return nil
}

// RequestTimeout returns the provider call timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// CaptionTimeout returns the caption call timeout.
func (c *Config) CaptionTimeout() time.Duration {
	return time.Duration(c.CaptionTimeoutSeconds) * time.Second
}

func (c *Config) applyEnv() {
	c.AppName = getEnv("FLOWPORT_APP_NAME", c.AppName)
	c.Addr = getEnv("FLOWPORT_ADDR", c.Addr)
	c.StorageDir = getEnv("FLOWPORT_STORAGE_DIR", c.StorageDir)
	c.PreseedDir = getEnv("FLOWPORT_PRESEED_DIR", c.PreseedDir)
	c.AuditDBPath = getEnv("FLOWPORT_AUDIT_DB_PATH", c.AuditDBPath)
	c.DefaultTopK = getEnvAsInt("FLOWPORT_DEFAULT_TOP_K", c.DefaultTopK)
	c.RequestTimeoutSeconds = getEnvAsInt("FLOWPORT_REQUEST_TIMEOUT_SECONDS", c.RequestTimeoutSeconds)
	c.CaptionTimeoutSeconds = getEnvAsInt("FLOWPORT_CAPTION_TIMEOUT_SECONDS", c.CaptionTimeoutSeconds)
	c.ProviderRateLimit = getEnvAsFloat("FLOWPORT_PROVIDER_RATE_LIMIT", c.ProviderRateLimit)
	c.LogLevel = getEnv("FLOWPORT_LOG_LEVEL", c.LogLevel)
	c.WatchPreseed = getEnvAsBool("FLOWPORT_WATCH_PRESEED", c.WatchPreseed)

	c.Providers.HuggingFaceBaseURL = getEnv("FLOWPORT_HUGGINGFACE_BASE_URL", c.Providers.HuggingFaceBaseURL)
	c.Providers.OpenAIBaseURL = getEnv("FLOWPORT_OPENAI_BASE_URL", c.Providers.OpenAIBaseURL)
	c.Providers.GeminiBaseURL = getEnv("FLOWPORT_GEMINI_BASE_URL", c.Providers.GeminiBaseURL)
	c.Providers.LlamaBaseURL = getEnv("FLOWPORT_LLAMA_BASE_URL", c.Providers.LlamaBaseURL)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
