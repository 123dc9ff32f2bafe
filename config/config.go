package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ChristianF88/bitsort/radix"
	"github.com/rs/zerolog"
)

const (
	DefaultPort          = "5044"
	DefaultReadTimeout   = 30 * time.Second
	DefaultBatchSize     = 10000
	DefaultFlushInterval = 5 * time.Second
	DefaultLogLevel      = "info"
)

// SortConfig tunes the sorter itself.
type SortConfig struct {
	Workers   int   `toml:"workers"`
	Grain     int   `toml:"grain"`
	MaxLength int64 `toml:"maxLength"`
	Verify    bool  `toml:"verify"`
}

// InputConfig names where the sort command reads its keys.
type InputConfig struct {
	File string `toml:"file"`
}

// OutputConfig controls the report.
type OutputConfig struct {
	Compact  bool   `toml:"compact"`
	Plain    bool   `toml:"plain"`
	PlotPath string `toml:"plotPath"`
	Values   bool   `toml:"values"`
	Indices  bool   `toml:"indices"`
}

// ServeConfig configures the lumberjack listener.
type ServeConfig struct {
	Port          string        `toml:"port"`
	ReadTimeout   time.Duration `toml:"readTimeout"`
	BatchSize     int           `toml:"batchSize"`
	FlushInterval time.Duration `toml:"flushInterval"`
}

// LogConfig selects the log level and per-pass tracing.
type LogConfig struct {
	Level string `toml:"level"`
	Trace bool   `toml:"trace"`
}

type Config struct {
	Sort   SortConfig   `toml:"sort"`
	Input  InputConfig  `toml:"input"`
	Output OutputConfig `toml:"output"`
	Serve  ServeConfig  `toml:"serve"`
	Log    LogConfig    `toml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Sort: SortConfig{
			MaxLength: radix.MaxLength,
			Verify:    true,
		},
		Output: OutputConfig{
			Values: true,
		},
		Serve: ServeConfig{
			Port:          DefaultPort,
			ReadTimeout:   DefaultReadTimeout,
			BatchSize:     DefaultBatchSize,
			FlushInterval: DefaultFlushInterval,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// LoadConfig reads a TOML file on top of Default. Unknown keys are an error
// so that typos do not silently fall back to defaults.
func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	md, err := toml.Decode(string(configData), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}

	return cfg, nil
}

// Validate checks the sections every command uses.
func (c *Config) Validate() error {
	if c.Sort.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Sort.Workers)
	}

	if c.Sort.Grain < 0 {
		return fmt.Errorf("grain must not be negative, got %d", c.Sort.Grain)
	}

	if c.Sort.MaxLength < 0 || c.Sort.MaxLength > radix.MaxLength {
		return fmt.Errorf("maxLength must be between 0 and %d, got %d", radix.MaxLength, c.Sort.MaxLength)
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	if c.Output.Compact && c.Output.Plain {
		return fmt.Errorf("compact and plain output are mutually exclusive")
	}

	return nil
}

// ValidateServe additionally checks the serve section.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.Serve.Port == "" {
		return fmt.Errorf("port is required in serve configuration")
	}

	if c.Serve.BatchSize <= 0 {
		return fmt.Errorf("batchSize must be positive, got %d", c.Serve.BatchSize)
	}

	if int64(c.Serve.BatchSize) > c.EffectiveMaxLength() {
		return fmt.Errorf("batchSize %d exceeds maxLength %d", c.Serve.BatchSize, c.EffectiveMaxLength())
	}

	if c.Serve.ReadTimeout <= 0 {
		return fmt.Errorf("readTimeout must be positive, got %s", c.Serve.ReadTimeout)
	}

	if c.Serve.FlushInterval <= 0 {
		return fmt.Errorf("flushInterval must be positive, got %s", c.Serve.FlushInterval)
	}

	return nil
}

// LogLevel parses the configured level. An empty level means info.
func (c *Config) LogLevel() (zerolog.Level, error) {
	if c.Log.Level == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// EffectiveMaxLength is the configured limit, or radix.MaxLength when unset.
func (c *Config) EffectiveMaxLength() int64 {
	if c.Sort.MaxLength <= 0 {
		return radix.MaxLength
	}
	return c.Sort.MaxLength
}

// SorterOptions translates the sort section into radix options.
func (c *Config) SorterOptions() []radix.Option {
	return []radix.Option{
		radix.WithWorkers(c.Sort.Workers),
		radix.WithGrain(c.Sort.Grain),
		radix.WithMaxLength(c.EffectiveMaxLength()),
	}
}
