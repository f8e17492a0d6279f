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

// Config holds the tiredex API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
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

// CatalogConfig holds tire catalog settings.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Cache bool   `yaml:"cache"` // keep the parsed catalog in memory after first load
}

// RankingConfig holds LLM ranking settings.
type RankingConfig struct {
	APIKey      string             `yaml:"api_key"`
	BaseURL     string             `yaml:"base_url"`
	Model       string             `yaml:"model"`
	Temperature float32            `yaml:"temperature"`
	TimeoutSec  int                `yaml:"timeout_sec"`
	MaxResults  int                `yaml:"max_results"`
	Cache       RankingCacheConfig `yaml:"cache"`
}

// RankingCacheConfig holds ranking cache settings. The cache is active
// only when database.addrs is set.
type RankingCacheConfig struct {
	TTLSec int `yaml:"ttl_sec"`
}

// DatabaseConfig holds cache store connection settings. Optional: with no
// addrs the service runs without a ranking cache.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
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
		// Ranking can take up to its full timeout, leave headroom on top of it
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = filepath.Join("data", "tires.json")
	}
	if c.Ranking.Model == "" {
		c.Ranking.Model = "gpt-4o-mini"
	}
	if c.Ranking.Temperature <= 0 {
		c.Ranking.Temperature = 0.2
	}
	if c.Ranking.TimeoutSec <= 0 {
		c.Ranking.TimeoutSec = 15
	}
	if c.Ranking.MaxResults <= 0 {
		c.Ranking.MaxResults = 20
	}
	if c.Ranking.Cache.TTLSec <= 0 {
		c.Ranking.Cache.TTLSec = 900
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
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
	// ranking.api_key is deliberately not required: without it every ranking
	// call fails and searches degrade to deterministic order.
	if c.Ranking.Temperature < 0 || c.Ranking.Temperature > 2 {
		return fmt.Errorf("ranking.temperature must be between 0 and 2, got %v", c.Ranking.Temperature)
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
