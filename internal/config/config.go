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

// Search drivers.
const (
	DriverRedis         = "redis"
	DriverElasticsearch = "elasticsearch"
)

// Default index names per driver. The Elasticsearch default matches every sw_ index.
const (
	DefaultRedisIndex = "sw_replies"
	DefaultESIndex    = "sw_*"
)

// Config holds the atango bot configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Line     LineConfig     `yaml:"line"`
	Search   SearchConfig   `yaml:"search"`
	Image    ImageConfig    `yaml:"image"`
	Engine   EngineConfig   `yaml:"engine"`
	Fallback FallbackConfig `yaml:"fallback"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// MaxBodyBytes caps a webhook delivery.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// MetricsTokens guard /metrics with bearer auth. Empty disables auth.
	MetricsTokens []string `yaml:"metrics_tokens"`
}

// LineConfig holds Messaging API credentials.
type LineConfig struct {
	ChannelSecret      string `yaml:"channel_secret"`
	ChannelAccessToken string `yaml:"channel_access_token"`
	Endpoint           string `yaml:"endpoint"` // empty means the SDK default
	TimeoutSec         int    `yaml:"timeout_sec"`
}

// SearchConfig holds reply index settings.
type SearchConfig struct {
	Driver             string   `yaml:"driver"` // redis, elasticsearch (default: redis)
	Addrs              []string `yaml:"addrs"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password"`
	Index              string   `yaml:"index"`
	Field              string   `yaml:"field"`
	Operator           string   `yaml:"operator"`
	MinimumShouldMatch string   `yaml:"minimum_should_match"`
	Boost              *float64 `yaml:"boost"` // nil means 1.2, 0 omits the boost
	Size               int      `yaml:"size"`
	TimeoutSec         int      `yaml:"timeout_sec"`
	ReadinessTimeout   int      `yaml:"readiness_timeout_sec"`
}

// ImageConfig holds image fallback settings.
type ImageConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SearchURL  string `yaml:"search_url"`
	UserAgent  string `yaml:"user_agent"`
	Size       string `yaml:"size"` // large, medium, icon
	TimeoutSec int    `yaml:"timeout_sec"`
	TempDir    string `yaml:"temp_dir"` // empty means the OS temp dir
}

// EngineConfig holds utterance preprocessing settings.
type EngineConfig struct {
	// Rewrites replace substrings before the query is built. Nil keeps the built-in table.
	Rewrites map[string]string `yaml:"rewrites"`
}

// FallbackConfig overrides the canned reply sets. Empty sets keep the built-in ones.
type FallbackConfig struct {
	Question          []string `yaml:"question"`
	Exclamation       []string `yaml:"exclamation"`
	Agreement         []string `yaml:"agreement"`
	Filler            []string `yaml:"filler"`
	AgreementSuffixes []string `yaml:"agreement_suffixes"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}

	if c.Line.TimeoutSec <= 0 {
		c.Line.TimeoutSec = 5
	}

	if c.Search.Driver == "" {
		c.Search.Driver = DriverRedis
	}
	if c.Search.Index == "" {
		c.Search.Index = DefaultRedisIndex
		if c.Search.Driver == DriverElasticsearch {
			c.Search.Index = DefaultESIndex
		}
	}
	if c.Search.Field == "" {
		c.Search.Field = "q1"
	}
	if c.Search.Operator == "" {
		c.Search.Operator = "and"
	}
	if c.Search.MinimumShouldMatch == "" {
		c.Search.MinimumShouldMatch = "25%"
	}
	if c.Search.Boost == nil {
		b := 1.2
		c.Search.Boost = &b
	}
	if c.Search.Size <= 0 {
		c.Search.Size = 10
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 5
	}
	if c.Search.ReadinessTimeout <= 0 {
		c.Search.ReadinessTimeout = 10
	}

	if c.Image.Size == "" {
		c.Image.Size = "medium"
	}
	if c.Image.TimeoutSec <= 0 {
		c.Image.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Line.ChannelSecret == "" {
		return fmt.Errorf("line.channel_secret is required")
	}
	if c.Line.ChannelAccessToken == "" {
		return fmt.Errorf("line.channel_access_token is required")
	}
	switch c.Search.Driver {
	case DriverRedis, DriverElasticsearch:
	default:
		return fmt.Errorf("search.driver must be %q or %q, got %q",
			DriverRedis, DriverElasticsearch, c.Search.Driver)
	}
	if len(c.Search.Addrs) == 0 {
		return fmt.Errorf("search.addrs is required")
	}
	switch c.Search.Operator {
	case "and", "or":
	default:
		return fmt.Errorf("search.operator must be \"and\" or \"or\", got %q", c.Search.Operator)
	}
	if c.Search.Boost != nil && *c.Search.Boost < 0 {
		return fmt.Errorf("search.boost must not be negative, got %v", *c.Search.Boost)
	}
	switch c.Image.Size {
	case "large", "medium", "icon":
	default:
		return fmt.Errorf("image.size must be one of large, medium, icon, got %q", c.Image.Size)
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
