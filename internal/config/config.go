// Package config provides configuration management for linframe
package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Unmatched policy names accepted by DefaultUnmatched.
const (
	UnmatchedError = "error"
	UnmatchedKeep  = "keep"
)

// Config represents the global configuration for linframe operations
type Config struct {
	// Parallel key encoding
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold" koanf:"parallel_threshold" validate:"gt=0"` // Minimum rows to encode keys in parallel
	WorkerPoolSize    int `json:"worker_pool_size" yaml:"worker_pool_size" koanf:"worker_pool_size" validate:"gte=0"`      // Number of worker goroutines (0 = auto-detect)
	ChunkSize         int `json:"chunk_size" yaml:"chunk_size" koanf:"chunk_size" validate:"gte=0"`                        // Rows per parallel chunk (0 = auto-calculate)

	// Algebra defaults
	DefaultUnmatched string `json:"default_unmatched" yaml:"default_unmatched" koanf:"default_unmatched" validate:"oneof=error keep"` // Policy for expressions that never set one

	// Rendering
	MaxLineLen     int `json:"max_line_len" yaml:"max_line_len" koanf:"max_line_len" validate:"gte=0"`                 // Truncate rendered lines beyond this width (0 = no limit)
	MaxRows        int `json:"max_rows" yaml:"max_rows" koanf:"max_rows" validate:"gte=0"`                             // Coordinates shown by String (0 = all)
	FloatPrecision int `json:"float_precision" yaml:"float_precision" koanf:"float_precision" validate:"gte=0,lte=17"` // Significant coefficient digits (0 = shortest exact)

	// Debugging
	VerboseLogging    bool `json:"verbose_logging" yaml:"verbose_logging" koanf:"verbose_logging"`          // Log broadcasts and unmatched handling
	MetricsCollection bool `json:"metrics_collection" yaml:"metrics_collection" koanf:"metrics_collection"` // Record per-operation metrics
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
	validate     = validator.New(validator.WithRequiredStructEnabled())
)

// Default configuration values
const (
	DefaultParallelThreshold = 10000
	DefaultMaxLineLen        = 80
	DefaultMaxRows           = 15
	minAutoChunk             = 1024
)

func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect
		ChunkSize:         0, // Auto-calculate
		DefaultUnmatched:  UnmatchedError,
		MaxLineLen:        DefaultMaxLineLen,
		MaxRows:           DefaultMaxRows,
		FloatPrecision:    0, // Shortest exact
		VerboseLogging:    false,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Workers resolves WorkerPoolSize, substituting the CPU count for 0.
func (c Config) Workers() int {
	if c.WorkerPoolSize > 0 {
		return c.WorkerPoolSize
	}
	return runtime.NumCPU()
}

// ChunkFor resolves the chunk size used to split rows across workers.
func (c Config) ChunkFor(rows int) int {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	return max(minAutoChunk, rows/(c.Workers()*4))
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "LINFRAME_"

// defaults are the first koanf layer.
func defaults() map[string]any {
	c := NewConfig()
	return map[string]any{
		"parallel_threshold": c.ParallelThreshold,
		"worker_pool_size":   c.WorkerPoolSize,
		"chunk_size":         c.ChunkSize,
		"default_unmatched":  c.DefaultUnmatched,
		"max_line_len":       c.MaxLineLen,
		"max_rows":           c.MaxRows,
		"float_precision":    c.FloatPrecision,
		"verbose_logging":    c.VerboseLogging,
		"metrics_collection": c.MetricsCollection,
	}
}

// Load layers the defaults, the JSON or YAML file at path (skipped when
// path is empty), LINFRAME_* environment variables and overrides, later
// layers winning. Values set to zero in any layer stay zero.
func Load(path string, overrides ...koanf.Provider) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		// JSON documents are valid YAML.
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".json", ".yaml", ".yml":
		default:
			return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// LINFRAME_MAX_ROWS -> max_rows
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load env vars: %w", err)
	}

	for _, p := range overrides {
		if err := k.Load(p, nil); err != nil {
			return Config{}, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	c.DefaultUnmatched = strings.ToLower(c.DefaultUnmatched)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
