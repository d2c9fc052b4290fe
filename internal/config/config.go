package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the faro API configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Logging    LoggingConfig    `yaml:"logging"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Session    SessionConfig    `yaml:"session"`
	Search     SearchConfig     `yaml:"search"`
	Intent     IntentConfig     `yaml:"intent"`
	Generation GenerationConfig `yaml:"generation"`
	Leads      LeadsConfig      `yaml:"leads"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings for admin endpoints.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig holds the product feed settings.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig holds session and history storage settings.
type SessionConfig struct {
	Driver   string   `yaml:"driver"` // memory, redis (default: memory)
	Addrs    []string `yaml:"addrs"`
	Password string   `yaml:"password"`
	TTLMin   int      `yaml:"ttl_min"`
}

// SearchConfig holds ranking and pagination settings.
type SearchConfig struct {
	PageSize        int     `yaml:"page_size"`
	OverfetchFactor int     `yaml:"overfetch_factor"`
	RequiredDFRatio float64 `yaml:"required_df_ratio"`
	AcceptSim       float64 `yaml:"accept_sim"`
}

// IntentConfig holds classifier cutoffs and guard keyword sets.
type IntentConfig struct {
	CoverageThreshold  float64  `yaml:"coverage_threshold"`
	SmalltalkMaxChars  int      `yaml:"smalltalk_max_chars"`
	SmalltalkMaxTokens int      `yaml:"smalltalk_max_tokens"`
	SeedTerms          []string `yaml:"seed_terms"`
	CatalogKeywords    []string `yaml:"catalog_keywords"`
	QuoteKeywords      []string `yaml:"quote_keywords"`
	CompetitorBrands   []string `yaml:"competitor_brands"`
	CatalogURL         string   `yaml:"catalog_url"`
	QuoteURL           string   `yaml:"quote_url"`
}

// GenerationConfig holds language-generation settings.
type GenerationConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Fallback   string `yaml:"fallback"`
	StyleGuide string `yaml:"style_guide"`
	Tone       string `yaml:"tone"`
}

// LeadsConfig holds CRM forwarding settings.
type LeadsConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Session.Driver == "" {
		c.Session.Driver = "memory"
	}
	if c.Session.TTLMin <= 0 {
		c.Session.TTLMin = 120
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 5
	}
	if c.Search.OverfetchFactor <= 0 {
		c.Search.OverfetchFactor = 5
	}
	if c.Search.RequiredDFRatio <= 0 {
		c.Search.RequiredDFRatio = 0.60
	}
	if c.Search.AcceptSim <= 0 {
		c.Search.AcceptSim = 0.72
	}
	if c.Intent.CoverageThreshold <= 0 {
		c.Intent.CoverageThreshold = 0.25
	}
	if c.Intent.SmalltalkMaxChars <= 0 {
		c.Intent.SmalltalkMaxChars = 16
	}
	if c.Intent.SmalltalkMaxTokens <= 0 {
		c.Intent.SmalltalkMaxTokens = 3
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gpt-4o-mini"
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 8
	}
	if c.Generation.Fallback == "" {
		c.Generation.Fallback = "Puedo ayudarte con iluminación del catálogo; dime el espacio o especificaciones."
	}
	if c.Leads.TimeoutSec <= 0 {
		c.Leads.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	switch c.Session.Driver {
	case "memory", "redis":
		// ok
	default:
		return fmt.Errorf("session.driver must be \"memory\" or \"redis\", got %q", c.Session.Driver)
	}
	if c.Session.Driver == "redis" && len(c.Session.Addrs) == 0 {
		return fmt.Errorf("session.addrs is required for the redis driver")
	}
	if c.Search.RequiredDFRatio > 1 {
		return fmt.Errorf("search.required_df_ratio must be at most 1, got %v", c.Search.RequiredDFRatio)
	}
	if c.Intent.CoverageThreshold > 1 {
		return fmt.Errorf("intent.coverage_threshold must be at most 1, got %v", c.Intent.CoverageThreshold)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
