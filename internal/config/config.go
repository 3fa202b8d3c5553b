// Package config provides configuration for the Lumora server.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/akshatyadav31/Lumora-Ai/internal/domain"
)

// EnvConfigFile names an optional YAML/JSON file holding the same keys as the
// environment variables (lower-cased).
const EnvConfigFile = "LUMORA_CONFIG"

// Config holds the server configuration.
type Config struct {
	// Server settings
	HTTPPort     int
	MaxUploadMB  int
	AllowOrigins []string

	// Provider settings
	Provider   domain.Provider
	APIKey     string
	Model      string
	BaseURL    string
	Referer    string
	AppTitle   string
	LLMTimeout time.Duration
	Mode       string

	// Canned responder
	CannedDelay time.Duration

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// DefaultModel is used when no model is configured.
const DefaultModel = "google/gemini-2.0-flash-lite-preview-02-05:free"

var defaults = map[string]any{
	"http_port":           8080,
	"max_upload_mb":       50,
	"allow_origins":       "*",
	"lumora_provider":     string(domain.ProviderOpenRouter),
	"openrouter_api_key":  "",
	"lumora_model":        DefaultModel,
	"openrouter_base_url": "https://openrouter.ai/api/v1",
	"lumora_referer":      "http://localhost:8080",
	"lumora_app_title":    "Lumora",
	"llm_timeout_ms":      0,
	"lumora_mode":         "",
	"canned_delay_ms":     0,
	"ws_ping_interval_ms": 30000,
	"ws_write_timeout_ms": 10000,
	"ws_read_timeout_ms":  60000,
	"ws_max_message_size": 65536,
	"log_level":           "info",
}

// Load loads configuration from environment variables, layered over the
// optional file named by LUMORA_CONFIG.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPPort:       v.GetInt("http_port"),
		MaxUploadMB:    v.GetInt("max_upload_mb"),
		AllowOrigins:   splitList(v.GetString("allow_origins")),
		Provider:       domain.Provider(strings.ToLower(v.GetString("lumora_provider"))),
		APIKey:         v.GetString("openrouter_api_key"),
		Model:          v.GetString("lumora_model"),
		BaseURL:        strings.TrimSuffix(v.GetString("openrouter_base_url"), "/"),
		Referer:        v.GetString("lumora_referer"),
		AppTitle:       v.GetString("lumora_app_title"),
		LLMTimeout:     millis(v, "llm_timeout_ms"),
		Mode:           strings.ToUpper(v.GetString("lumora_mode")),
		CannedDelay:    millis(v, "canned_delay_ms"),
		PingInterval:   millis(v, "ws_ping_interval_ms"),
		WriteTimeout:   millis(v, "ws_write_timeout_ms"),
		ReadTimeout:    millis(v, "ws_read_timeout_ms"),
		MaxMessageSize: v.GetInt64("ws_max_message_size"),
		LogLevel:       v.GetString("log_level"),
	}

	if !cfg.Provider.Valid() {
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTPPort <= 0 {
		return nil, fmt.Errorf("invalid http port %d", cfg.HTTPPort)
	}
	return cfg, nil
}

// ProviderConfig returns the provider settings the server starts with.
func (c *Config) ProviderConfig() domain.ProviderConfig {
	return domain.ProviderConfig{
		Provider: c.Provider,
		APIKey:   c.APIKey,
		Model:    c.Model,
	}
}

// MaxUploadBytes is the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func millis(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Millisecond
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
