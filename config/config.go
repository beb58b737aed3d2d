package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const envPrefix = "CONTRACTCHUNK_"

type Config struct {
	Chunk   ChunkConfig   `yaml:"chunk"`
	Summary SummaryConfig `yaml:"summary"`
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Staging StagingConfig `yaml:"staging"`
	Tokens  TokensConfig  `yaml:"tokens"`
}

type ChunkConfig struct {
	Size     int    `yaml:"size"`
	Overlap  int    `yaml:"overlap"`
	Strategy string `yaml:"strategy"`
}

type SummaryConfig struct {
	Chunks   int `yaml:"chunks"`
	MaxChars int `yaml:"max_chars"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
	// MaxUploadBytes bounds multipart uploads.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// CacheConfig enables the extraction cache when Path is set.
type CacheConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type StagingConfig struct {
	Dir string `yaml:"dir"`
}

// TokensConfig adds per-chunk token estimates when Encoding is set.
type TokensConfig struct {
	Encoding string `yaml:"encoding"`
}

func Default() *Config {
	return &Config{
		Chunk: ChunkConfig{
			Size:     1000,
			Overlap:  150,
			Strategy: "sentence",
		},
		Summary: SummaryConfig{
			Chunks:   3,
			MaxChars: 3000,
		},
		Server: ServerConfig{
			Port:           8080,
			MaxUploadBytes: 32 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the optional YAML file at path over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setInt := func(key string, dst *int) {
		v, ok := getEnv(key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err))
			return
		}
		*dst = n
	}
	setString := func(key string, dst *string) {
		if v, ok := getEnv(key); ok {
			*dst = v
		}
	}

	setInt("CHUNK_SIZE", &c.Chunk.Size)
	setInt("CHUNK_OVERLAP", &c.Chunk.Overlap)
	setString("CHUNK_STRATEGY", &c.Chunk.Strategy)
	setInt("SUMMARY_CHUNKS", &c.Summary.Chunks)
	setInt("APP_PORT", &c.Server.Port)
	setString("CACHE_PATH", &c.Cache.Path)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("STAGING_DIR", &c.Staging.Dir)
	setString("TOKEN_ENCODING", &c.Tokens.Encoding)

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Chunk.Size <= 0 {
		errs = append(errs, fmt.Errorf("chunk.size must be positive, got %d", c.Chunk.Size))
	}
	if c.Chunk.Overlap < 0 {
		errs = append(errs, fmt.Errorf("chunk.overlap must not be negative, got %d", c.Chunk.Overlap))
	}
	if c.Chunk.Size > 0 && c.Chunk.Overlap >= c.Chunk.Size {
		errs = append(errs, fmt.Errorf("chunk.overlap %d must be less than chunk.size %d", c.Chunk.Overlap, c.Chunk.Size))
	}
	switch c.Chunk.Strategy {
	case "", "sentence", "recursive":
	default:
		errs = append(errs, fmt.Errorf("unknown chunk.strategy %q", c.Chunk.Strategy))
	}
	if c.Summary.Chunks <= 0 {
		errs = append(errs, fmt.Errorf("summary.chunks must be positive, got %d", c.Summary.Chunks))
	}
	if c.Summary.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("summary.max_chars must be positive, got %d", c.Summary.MaxChars))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	return errors.Join(errs...)
}

func getEnv(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(envPrefix + key))
	return value, value != ""
}
