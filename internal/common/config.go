package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Upload      UploadConfig    `toml:"upload"`
	OCR         OCRConfig       `toml:"ocr"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	RateLimit   RateLimitConfig `toml:"ratelimit"`
	SMTP        SMTPConfig      `toml:"smtp"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// UploadConfig bounds what the upload boundary accepts.
type UploadConfig struct {
	MaxSizeBytes int64    `toml:"max_size_bytes" validate:"gt=0"`
	AllowedTypes []string `toml:"allowed_types"`
}

// OCRConfig configures the tesseract backend used for image documents.
type OCRConfig struct {
	Binary   string `toml:"binary"`   // tesseract executable (default: "tesseract")
	Language string `toml:"language"` // single language model (default: "eng")
	PSM      int    `toml:"psm"`      // page segmentation mode (default: 1, auto OSD)
	DPI      int    `toml:"dpi"`      // render resolution for PDF pages routed to OCR
}

type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// LLMConfig selects the structured-extraction provider and its retry budget.
type LLMConfig struct {
	DefaultProvider string `toml:"default_provider" validate:"oneof=gemini claude"`
	Timeout         string `toml:"timeout"`
	MaxRetries      int    `toml:"max_retries" validate:"gte=0"`
}

// RateLimitConfig configures the injected keyed limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second" validate:"gt=0"`
	Burst             int     `toml:"burst" validate:"gt=0"`
	EntryTTL          string  `toml:"entry_ttl"`
	SweepSchedule     string  `toml:"sweep_schedule"` // cron spec, e.g. "@every 1m"
}

type SMTPConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Username   string `toml:"username"`
	Password   string `toml:"password"`
	From       string `toml:"from"`
	FromName   string `toml:"from_name"`
	UseTLS     bool   `toml:"use_tls"`
	OwnerEmail string `toml:"owner_email"` // recipient of new-submission notifications
}

// DefaultConfig returns the built-in defaults applied before any file or
// environment override.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{Path: "./data/formforge"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Upload: UploadConfig{
			MaxSizeBytes: 10 * 1024 * 1024,
			AllowedTypes: []string{"application/pdf", "image/png", "image/jpeg"},
		},
		OCR: OCRConfig{
			Binary:   "tesseract",
			Language: "eng",
			PSM:      1,
			DPI:      150,
		},
		Gemini: GeminiConfig{Model: "gemini-2.0-flash"},
		Claude: ClaudeConfig{Model: "claude-sonnet-4-20250514", MaxTokens: 2000},
		LLM: LLMConfig{
			DefaultProvider: "gemini",
			Timeout:         "60s",
			MaxRetries:      2,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
			EntryTTL:          "10m",
			SweepSchedule:     "@every 1m",
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Formforge",
			UseTLS:   true,
		},
	}
}

// LoadConfig loads configuration with the order defaults -> file -> env.
// A missing path is not an error; defaults plus env apply.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies FORMFORGE_* environment variables on top of the
// loaded configuration. Only operationally useful knobs are exposed.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("FORMFORGE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("FORMFORGE_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("FORMFORGE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("FORMFORGE_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("FORMFORGE_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("FORMFORGE_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("FORMFORGE_LLM_PROVIDER"); v != "" {
		config.LLM.DefaultProvider = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority).
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
