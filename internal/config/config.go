package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/innkeep/localize/internal/language"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Provider           string `envconfig:"TRANSLATION_PROVIDER" default:"static"`
	DefaultSourceLang  string `envconfig:"DEFAULT_SOURCE_LANG" default:"en"`
	CacheCapacity      int    `envconfig:"CACHE_CAPACITY" default:"512"`
	TranslationWorkers int    `envconfig:"TRANSLATION_WORKERS" default:"4"`
	DebounceMS         int    `envconfig:"DEBOUNCE_MS" default:"400"`
	DetectionTTLMS     int    `envconfig:"DETECTION_TTL_MS" default:"30000"`

	HTTPHost             string `envconfig:"HTTP_HOST" default:"127.0.0.1"`
	HTTPPort             int    `envconfig:"HTTP_PORT" default:"8750"`
	HTTPReadTimeoutSec   int    `envconfig:"HTTP_READ_TIMEOUT_SEC" default:"15"`
	HTTPWriteTimeoutSec  int    `envconfig:"HTTP_WRITE_TIMEOUT_SEC" default:"30"`
	HTTPShutdownGraceSec int    `envconfig:"HTTP_SHUTDOWN_GRACE_SEC" default:"10"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Provider) == "" {
		return fmt.Errorf("TRANSLATION_PROVIDER is required")
	}
	if language.NormalizeCode(c.DefaultSourceLang) == "" {
		return fmt.Errorf("DEFAULT_SOURCE_LANG %q is not a valid language code", c.DefaultSourceLang)
	}
	if c.CacheCapacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be >= 1")
	}
	if c.TranslationWorkers < 1 {
		return fmt.Errorf("TRANSLATION_WORKERS must be >= 1")
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("DEBOUNCE_MS must be >= 0")
	}
	if c.DetectionTTLMS < 0 {
		return fmt.Errorf("DETECTION_TTL_MS must be >= 0")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT %d is out of range", c.HTTPPort)
	}
	return nil
}

func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

func (c *Config) DetectionTTL() time.Duration {
	return time.Duration(c.DetectionTTLMS) * time.Millisecond
}
