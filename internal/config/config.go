// Package config provides configuration management for the detector, its
// HTTP server and CLI.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FAKENEWS_"

// Configuration validation errors.
var (
	ErrUnknownSource        = errors.New("artifacts.source must be 'file' or 's3'")
	ErrMissingArtifactDir   = errors.New("artifacts.dir is required for the file source")
	ErrMissingBucket        = errors.New("artifacts.s3.bucket is required for the s3 source")
	ErrMissingArtifactNames = errors.New("artifacts.vectorizer and artifacts.classifier are required")
	ErrInvalidNormalizer    = errors.New("normalizer.type must be 'default' or 'optimized'")
	ErrInvalidAddr          = errors.New("server.addr is required")
	ErrInvalidTimeout       = errors.New("server timeouts must be at least 1 second")
	ErrInvalidRequestSize   = errors.New("server.max_request_size must be positive")
	ErrMissingRedisAddr     = errors.New("cache.redis.addr is required when the cache is enabled")
	ErrInvalidTTL           = errors.New("cache.ttl_sec must be non-negative")
	ErrInvalidConcurrency   = errors.New("concurrency settings must be non-negative")
	ErrUnsupportedFormat    = errors.New("config file must be .yaml, .yml or .toml")
)

// Config represents the complete configuration.
type Config struct {
	Artifacts  ArtifactsConfig  `yaml:"artifacts" toml:"artifacts"`
	Normalizer NormalizerConfig `yaml:"normalizer" toml:"normalizer"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`
	Cache      CacheConfig      `yaml:"cache" toml:"cache"`
	Batch      BatchConfig      `yaml:"batch" toml:"batch"`
	Warmup     WarmupConfig     `yaml:"warmup" toml:"warmup"`
}

// ArtifactsConfig locates the model artifacts.
type ArtifactsConfig struct {
	Source     string   `yaml:"source" toml:"source"`
	Dir        string   `yaml:"dir" toml:"dir"`
	Vectorizer string   `yaml:"vectorizer" toml:"vectorizer"`
	Classifier string   `yaml:"classifier" toml:"classifier"`
	Strict     bool     `yaml:"strict" toml:"strict"`
	S3         S3Config `yaml:"s3" toml:"s3"`
}

// IsS3 returns true if the artifacts live in S3.
func (a *ArtifactsConfig) IsS3() bool {
	return a.Source == "s3"
}

// S3Config holds the bucket settings for the s3 source.
type S3Config struct {
	Bucket      string `yaml:"bucket" toml:"bucket"`
	Prefix      string `yaml:"prefix" toml:"prefix"`
	Region      string `yaml:"region" toml:"region"`
	Endpoint    string `yaml:"endpoint" toml:"endpoint"`
	AccessKey   string `yaml:"access_key" toml:"access_key"`
	SecretKey   string `yaml:"secret_key" toml:"secret_key"`
	MaxRetries  int    `yaml:"max_retries" toml:"max_retries"`
	BaseDelayMs int    `yaml:"base_delay_ms" toml:"base_delay_ms"`
}

// BaseDelay returns the first retry delay.
func (s *S3Config) BaseDelay() time.Duration {
	return time.Duration(s.BaseDelayMs) * time.Millisecond
}

// NormalizerConfig selects the normalizer implementation.
type NormalizerConfig struct {
	Type string `yaml:"type" toml:"type"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string `yaml:"addr" toml:"addr"`
	ReadTimeoutSec  int    `yaml:"read_timeout_sec" toml:"read_timeout_sec"`
	WriteTimeoutSec int    `yaml:"write_timeout_sec" toml:"write_timeout_sec"`
	MaxRequestSize  int    `yaml:"max_request_size" toml:"max_request_size"`
	Concurrency     int    `yaml:"concurrency" toml:"concurrency"`
}

// ReadTimeout returns the read timeout.
func (s *ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSec) * time.Second
}

// WriteTimeout returns the write timeout.
func (s *ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSec) * time.Second
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	File string `yaml:"file" toml:"file"`
	JSON bool   `yaml:"json" toml:"json"`
}

// CacheConfig configures the optional result cache.
type CacheConfig struct {
	Enabled bool        `yaml:"enabled" toml:"enabled"`
	TTLSec  int         `yaml:"ttl_sec" toml:"ttl_sec"`
	Redis   RedisConfig `yaml:"redis" toml:"redis"`
}

// TTL returns the cache entry lifetime.
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr" toml:"addr"`
	Password string `yaml:"password" toml:"password"`
	DB       int    `yaml:"db" toml:"db"`
}

// BatchConfig configures batch classification.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
}

// WarmupConfig configures the start-up warm-up.
type WarmupConfig struct {
	Enabled     bool `yaml:"enabled" toml:"enabled"`
	Concurrency int  `yaml:"concurrency" toml:"concurrency"`
	Iterations  int  `yaml:"iterations" toml:"iterations"`
	DurationSec int  `yaml:"duration_sec" toml:"duration_sec"`
}

// Duration returns the warm-up time limit.
func (w *WarmupConfig) Duration() time.Duration {
	return time.Duration(w.DurationSec) * time.Second
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Artifacts: ArtifactsConfig{
			Source:     "file",
			Dir:        ".",
			Vectorizer: "vectorizer.mp",
			Classifier: "model.mp",
			Strict:     true,
			S3: S3Config{
				Region:      "us-east-1",
				MaxRetries:  5,
				BaseDelayMs: 1000,
			},
		},
		Normalizer: NormalizerConfig{Type: "default"},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeoutSec:  30,
			WriteTimeoutSec: 30,
			MaxRequestSize:  10 * 1024 * 1024,
		},
		Cache: CacheConfig{
			TTLSec: 3600,
			Redis:  RedisConfig{Addr: "localhost:6379"},
		},
		Warmup: WarmupConfig{
			Iterations:  200,
			DurationSec: 5,
		},
	}
}

// Load builds the configuration: defaults, then the file at path (if any),
// then .env and FAKENEWS_* environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// Best-effort: load .env from the current directory
	_ = godotenv.Load()
	cfg.applyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("%s: unknown keys %v", path, undecoded)
		}
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	return nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv(getenv func(string) string) {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v == "1" || strings.EqualFold(v, "true")
		}
	}
	integer := func(name string, dst *int) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str(EnvPrefix+"ARTIFACT_SOURCE", &c.Artifacts.Source)
	str(EnvPrefix+"ARTIFACTS_DIR", &c.Artifacts.Dir)
	str(EnvPrefix+"VECTORIZER", &c.Artifacts.Vectorizer)
	str(EnvPrefix+"CLASSIFIER", &c.Artifacts.Classifier)
	boolean(EnvPrefix+"STRICT_ARTIFACTS", &c.Artifacts.Strict)
	str(EnvPrefix+"S3_BUCKET", &c.Artifacts.S3.Bucket)
	str(EnvPrefix+"S3_PREFIX", &c.Artifacts.S3.Prefix)
	str(EnvPrefix+"S3_REGION", &c.Artifacts.S3.Region)
	str(EnvPrefix+"S3_ENDPOINT", &c.Artifacts.S3.Endpoint)
	str("AWS_ACCESS_KEY_ID", &c.Artifacts.S3.AccessKey)
	str("AWS_SECRET_ACCESS_KEY", &c.Artifacts.S3.SecretKey)

	str(EnvPrefix+"NORMALIZER", &c.Normalizer.Type)

	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		c.Server.Addr = ":" + port
	}
	str(EnvPrefix+"ADDR", &c.Server.Addr)
	integer(EnvPrefix+"CONCURRENCY", &c.Server.Concurrency)

	str(EnvPrefix+"LOG_FILE", &c.Logging.File)
	boolean(EnvPrefix+"LOG_JSON", &c.Logging.JSON)

	if addr := strings.TrimSpace(getenv(EnvPrefix + "REDIS_ADDR")); addr != "" {
		c.Cache.Enabled = true
		c.Cache.Redis.Addr = addr
	}
	str(EnvPrefix+"REDIS_PASSWORD", &c.Cache.Redis.Password)
	integer(EnvPrefix+"REDIS_DB", &c.Cache.Redis.DB)
	integer(EnvPrefix+"CACHE_TTL_SEC", &c.Cache.TTLSec)

	integer(EnvPrefix+"BATCH_CONCURRENCY", &c.Batch.Concurrency)
	boolean(EnvPrefix+"WARMUP", &c.Warmup.Enabled)
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error

	switch c.Artifacts.Source {
	case "file":
		if c.Artifacts.Dir == "" {
			errs = append(errs, ErrMissingArtifactDir)
		}
	case "s3":
		if c.Artifacts.S3.Bucket == "" {
			errs = append(errs, ErrMissingBucket)
		}
	default:
		errs = append(errs, ErrUnknownSource)
	}
	if c.Artifacts.Vectorizer == "" || c.Artifacts.Classifier == "" {
		errs = append(errs, ErrMissingArtifactNames)
	}

	switch strings.ToLower(c.Normalizer.Type) {
	case "", "default", "optimized", "fast":
	default:
		errs = append(errs, ErrInvalidNormalizer)
	}

	if c.Server.Addr == "" {
		errs = append(errs, ErrInvalidAddr)
	}
	if c.Server.ReadTimeoutSec < 1 || c.Server.WriteTimeoutSec < 1 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if c.Server.MaxRequestSize <= 0 {
		errs = append(errs, ErrInvalidRequestSize)
	}

	if c.Cache.Enabled && c.Cache.Redis.Addr == "" {
		errs = append(errs, ErrMissingRedisAddr)
	}
	if c.Cache.TTLSec < 0 {
		errs = append(errs, ErrInvalidTTL)
	}

	if c.Server.Concurrency < 0 || c.Batch.Concurrency < 0 || c.Warmup.Concurrency < 0 ||
		c.Artifacts.S3.MaxRetries < 0 {
		errs = append(errs, ErrInvalidConcurrency)
	}

	return errors.Join(errs...)
}
