package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"loandesk/domain"
)

type Config struct {
	Addr string `yaml:"addr"`

	// StoreBackend selects the DocumentStore: memory, file or sqlite.
	StoreBackend        string `yaml:"store_backend"`
	StoreRoot           string `yaml:"store_root"`
	SQLitePath          string `yaml:"sqlite_path"`
	StoreTimeoutSeconds int    `yaml:"store_timeout_seconds"`

	// RedisAddr empty means the in-process cache, as in local runs.
	RedisAddr string `yaml:"redis_addr"`

	RateLimitCapacity      int `yaml:"rate_limit_capacity"`
	RateLimitWindowSeconds int `yaml:"rate_limit_window_seconds"`

	Scoring domain.ScoringConfig `yaml:"scoring"`
}

func (c Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

// LoadConfig reads config.yaml (or CONFIG_PATH), then applies env overrides
// and defaults. The scoring block is pre-filled with the production model so
// a partial yaml override only touches the keys it names.
func LoadConfig() Config {
	cfg := Config{Scoring: domain.DefaultScoringConfig()}

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.Addr, "ADDR")
	envOverride(&cfg.StoreBackend, "STORE_BACKEND")
	envOverride(&cfg.StoreRoot, "STORE_ROOT")
	envOverride(&cfg.SQLitePath, "SQLITE_PATH")
	envOverride(&cfg.RedisAddr, "REDIS_ADDR")
	envOverrideInt(&cfg.StoreTimeoutSeconds, "STORE_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.RateLimitCapacity, "RATE_LIMIT_CAPACITY")
	envOverrideInt(&cfg.RateLimitWindowSeconds, "RATE_LIMIT_WINDOW_SECONDS")

	// Defaults
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = "memory"
	}
	if cfg.StoreRoot == "" {
		cfg.StoreRoot = "data"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "loandesk.db"
	}
	if cfg.StoreTimeoutSeconds == 0 {
		cfg.StoreTimeoutSeconds = 5
	}
	if cfg.RateLimitCapacity == 0 {
		cfg.RateLimitCapacity = 60
	}
	if cfg.RateLimitWindowSeconds == 0 {
		cfg.RateLimitWindowSeconds = 60
	}

	return cfg
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}
