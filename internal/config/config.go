// Package config loads assistant configuration from an optional file,
// BARISTA_* environment variables and defaults.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/GenAICloudDevOps/AgenticBarista/pkg/memory"
)

// EnvPrefix prefixes every environment override, e.g. BARISTA_STORE_TYPE.
const EnvPrefix = "BARISTA"

// Config is the full assistant configuration.
type Config struct {
	TaxRate      float64          `mapstructure:"tax_rate"`
	MaxInputSize int              `mapstructure:"max_input_size"`
	Memory       memory.Policy    `mapstructure:"memory"`
	Store        StoreConfig      `mapstructure:"store"`
	Lock         LockConfig       `mapstructure:"lock"`
	Catalog      CatalogConfig    `mapstructure:"catalog"`
	Completion   CompletionConfig `mapstructure:"completion"`
	HTTP         HTTPConfig       `mapstructure:"http"`
	Metrics      MetricsConfig    `mapstructure:"metrics"`
	Tracing      TracingConfig    `mapstructure:"tracing"`
	Log          LogConfig        `mapstructure:"log"`
}

type StoreConfig struct {
	// Type is memory, file or redis.
	Type          string        `mapstructure:"type"`
	Dir           string        `mapstructure:"dir"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
	// EncryptionKey is 64 hex characters; it enables encryption at rest.
	EncryptionKey string `mapstructure:"encryption_key"`
	// PIIPatterns enables masking of matching memory text.
	PIIPatterns []string `mapstructure:"pii_patterns"`
}

type LockConfig struct {
	Distributed bool          `mapstructure:"distributed"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type CatalogConfig struct {
	// Source is memory, file, sqlite or postgres.
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
	Watch  bool   `mapstructure:"watch"`
	// Seed loads the house menu into an empty SQL catalog.
	Seed bool `mapstructure:"seed"`
}

type CompletionConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	Region      string        `mapstructure:"region"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Command     string        `mapstructure:"command"`
	Args        []string      `mapstructure:"args"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type TracingConfig struct {
	Endpoint     string  `mapstructure:"endpoint"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
	Insecure     bool    `mapstructure:"insecure"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	policy := memory.DefaultPolicy()

	defaults := map[string]any{
		"tax_rate":       0.08,
		"max_input_size": 4096,

		"memory.token_budget": policy.TokenBudget,
		"memory.floor":        policy.Floor,
		"memory.recent":       policy.Recent,
		"memory.cap":          policy.Cap,
		"memory.min_overlap":  policy.MinOverlap,

		"store.type":           "memory",
		"store.dir":            ".barista/sessions",
		"store.redis_addr":     "localhost:6379",
		"store.redis_password": "",
		"store.redis_db":       0,
		"store.ttl":            "24h",
		"store.encryption_key": "",
		"store.pii_patterns":   []string{},

		"lock.distributed": false,
		"lock.ttl":         "30s",

		"catalog.source": "memory",
		"catalog.path":   "menu.yaml",
		"catalog.dsn":    "",
		"catalog.watch":  false,
		"catalog.seed":   true,

		"completion.provider":    "none",
		"completion.model":       "",
		"completion.region":      "",
		"completion.api_key":     "",
		"completion.base_url":    "",
		"completion.max_tokens":  1000,
		"completion.temperature": 0.7,
		"completion.timeout":     "20s",
		"completion.command":     "",
		"completion.args":        []string{},

		"http.port":             8080,
		"metrics.enabled":       true,
		"tracing.endpoint":      "",
		"tracing.sampling_rate": 1.0,
		"tracing.insecure":      true,
		"log.level":             "info",
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// Load reads configuration. An explicit path must exist; without one, a
// barista.{yaml,toml,json} in the working directory or ~/.barista is used when present.
func Load(path string) (*Config, error) {
	return LoadWith(viper.New(), path)
}

// LoadWith loads through a caller-provided viper instance, so flags bound to it take precedence.
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("barista")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.barista")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration with no file and no environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return &cfg
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.TaxRate < 0 || c.TaxRate >= 1 {
		return invalid("tax_rate must be in [0, 1), got %v", c.TaxRate)
	}
	if c.MaxInputSize <= 0 {
		return invalid("max_input_size must be positive")
	}
	if c.Memory.TokenBudget <= 0 || c.Memory.Floor < 0 || c.Memory.Recent < 0 || c.Memory.Cap <= 0 {
		return invalid("memory parameters must be positive")
	}
	switch c.Store.Type {
	case "memory", "file", "redis":
	default:
		return invalid("store.type %q is not one of memory, file, redis", c.Store.Type)
	}
	if c.Store.EncryptionKey != "" {
		if _, err := c.Store.Key(); err != nil {
			return err
		}
	}
	switch c.Catalog.Source {
	case "memory", "file", "sqlite", "postgres":
	default:
		return invalid("catalog.source %q is not one of memory, file, sqlite, postgres", c.Catalog.Source)
	}
	if (c.Catalog.Source == "sqlite" || c.Catalog.Source == "postgres") && c.Catalog.DSN == "" {
		return invalid("catalog.dsn is required for %s", c.Catalog.Source)
	}
	if c.Lock.Distributed && c.Store.Type != "redis" {
		return invalid("lock.distributed requires store.type redis")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return invalid("http.port %d out of range", c.HTTP.Port)
	}
	return nil
}

// Key decodes the encryption key.
func (s StoreConfig) Key() ([]byte, error) {
	key, err := hex.DecodeString(s.EncryptionKey)
	if err != nil || len(key) != 32 {
		return nil, invalid("store.encryption_key must be 64 hex characters")
	}
	return key, nil
}
