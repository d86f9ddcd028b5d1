// Package config loads netscore settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Config.WithDefaults])
//  2. an optional TOML file
//  3. environment variables, including those in a .env file in the
//     working directory
//
// Recognized variables: GITHUB_TOKEN, NETSCORE_CACHE_BACKEND,
// NETSCORE_CACHE_DIR, NETSCORE_CACHE_PREFIX, NETSCORE_REDIS_ADDR,
// NETSCORE_REGISTRY, NETSCORE_MONGO_URI, NETSCORE_ADDR and
// NETSCORE_LOG_LEVEL.
//
// Example file:
//
//	log_level = "debug"
//
//	[cache]
//	backend = "redis"
//	key_prefix = "staging:"
//	cost_ttl = "168h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[registry]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const appName = "netscore"

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Registry backends.
const (
	RegistryNPM   = "npm"
	RegistryMongo = "mongo"
)

const (
	DefaultMemorySize    = 10_000
	DefaultHTTPTTL       = 24 * time.Hour
	DefaultCostTTL       = 7 * 24 * time.Hour
	DefaultNPMURL        = "https://registry.npmjs.org"
	DefaultGitHubURL     = "https://api.github.com"
	DefaultMongoDatabase = "netscore"
	DefaultAddr          = ":8080"
	DefaultLogLevel      = "info"
)

// Config is the complete netscore configuration.
type Config struct {
	LogLevel string         `toml:"log_level"`
	Cache    CacheConfig    `toml:"cache"`
	Registry RegistryConfig `toml:"registry"`
	GitHub   GitHubConfig   `toml:"github"`
	Server   ServerConfig   `toml:"server"`
	Score    ScoreConfig    `toml:"score"`
}

// CacheConfig selects where API responses and cost records are kept.
type CacheConfig struct {
	Backend    string        `toml:"backend"`     // file, memory, redis or none
	Dir        string        `toml:"dir"`         // file backend directory
	MemorySize int           `toml:"memory_size"` // memory backend entry limit
	KeyPrefix  string        `toml:"key_prefix"`  // namespace within a shared backend
	HTTPTTL    time.Duration `toml:"http_ttl"`
	CostTTL    time.Duration `toml:"cost_ttl"`
	Redis      RedisConfig   `toml:"redis"`
}

// RedisConfig addresses the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RegistryConfig selects the package metadata store.
type RegistryConfig struct {
	Backend       string `toml:"backend"` // npm or mongo
	NPMURL        string `toml:"npm_url"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// GitHubConfig configures the GitHub API client.
type GitHubConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ScoreConfig configures the scoring engine.
type ScoreConfig struct {
	// ScorerTimeout bounds each scorer; zero means no limit.
	ScorerTimeout time.Duration `toml:"scorer_timeout"`
}

// Load reads .env (if present), then the TOML file at path (if path is
// not empty), then the process environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(path, os.LookupEnv)
}

// LoadFrom is Load with an explicit environment lookup and no .env file.
func LoadFrom(path string, lookup func(string) (string, bool)) (*Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyEnv(lookup)
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.GitHub.Token, "GITHUB_TOKEN")
	set(&c.Cache.Backend, "NETSCORE_CACHE_BACKEND")
	set(&c.Cache.Dir, "NETSCORE_CACHE_DIR")
	set(&c.Cache.KeyPrefix, "NETSCORE_CACHE_PREFIX")
	set(&c.Cache.Redis.Addr, "NETSCORE_REDIS_ADDR")
	set(&c.Registry.Backend, "NETSCORE_REGISTRY")
	set(&c.Registry.MongoURI, "NETSCORE_MONGO_URI")
	set(&c.Server.Addr, "NETSCORE_ADDR")
	set(&c.LogLevel, "NETSCORE_LOG_LEVEL")

	// A redis address or mongo URI alone selects that backend.
	if c.Cache.Backend == "" && c.Cache.Redis.Addr != "" {
		c.Cache.Backend = CacheRedis
	}
	if c.Registry.Backend == "" && c.Registry.MongoURI != "" {
		c.Registry.Backend = RegistryMongo
	}
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	cfg := c
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheFile
	}
	if cfg.Cache.Dir == "" {
		if dir, err := DefaultCacheDir(); err == nil {
			cfg.Cache.Dir = dir
		}
	}
	if cfg.Cache.MemorySize <= 0 {
		cfg.Cache.MemorySize = DefaultMemorySize
	}
	if cfg.Cache.HTTPTTL <= 0 {
		cfg.Cache.HTTPTTL = DefaultHTTPTTL
	}
	if cfg.Cache.CostTTL <= 0 {
		cfg.Cache.CostTTL = DefaultCostTTL
	}
	if cfg.Registry.Backend == "" {
		cfg.Registry.Backend = RegistryNPM
	}
	if cfg.Registry.NPMURL == "" {
		cfg.Registry.NPMURL = DefaultNPMURL
	}
	if cfg.Registry.MongoDatabase == "" {
		cfg.Registry.MongoDatabase = DefaultMongoDatabase
	}
	if cfg.GitHub.BaseURL == "" {
		cfg.GitHub.BaseURL = DefaultGitHubURL
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	return cfg
}

// Validate checks that the selected backends are known and have the
// settings they need.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile:
		if c.Cache.Dir == "" {
			return fmt.Errorf("cache.dir is required for the file cache")
		}
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis cache")
		}
	case CacheMemory, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Registry.Backend {
	case RegistryNPM:
	case RegistryMongo:
		if c.Registry.MongoURI == "" {
			return fmt.Errorf("registry.mongo_uri is required for the mongo registry")
		}
	default:
		return fmt.Errorf("unknown registry backend %q", c.Registry.Backend)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Score.ScorerTimeout < 0 {
		return fmt.Errorf("score.scorer_timeout must not be negative")
	}
	return nil
}

// DefaultCacheDir returns the cache directory using XDG standard (~/.cache/netscore/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
