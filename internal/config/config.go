package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/stocksim/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Provider  ProviderConfig  `mapstructure:"provider"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Benchmark BenchmarkConfig `mapstructure:"benchmark"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Output    OutputConfig    `mapstructure:"output"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
}

// ProviderConfig selects and tunes the market data collector.
type ProviderConfig struct {
	Name        string        `mapstructure:"name"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Concurrency int           `mapstructure:"concurrency"`
}

// CacheConfig holds the historical close cache settings.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type BenchmarkConfig struct {
	Ticker string `mapstructure:"ticker"`
}

// DefaultsConfig holds flag defaults for the commands.
type DefaultsConfig struct {
	Amount    float64 `mapstructure:"amount"`
	DCAAmount float64 `mapstructure:"dca_amount"`
	Top       int     `mapstructure:"top"`
}

type OutputConfig struct {
	Color    bool   `mapstructure:"color"`
	Currency string `mapstructure:"currency"`
}

type LogConfig struct {
	Level       string        `mapstructure:"level"`
	Development bool          `mapstructure:"development"`
	File        LogFileConfig `mapstructure:"file"`
}

// LogFileConfig enables a rotating log file when Path is set.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Load reads configuration from file on top of Defaults. An empty path
// returns the defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STOCKSIM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := Defaults()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("reading config: %w", err))
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unmarshaling config: %w", err))
	}

	return cfg, nil
}

// setDefaults registers every default key so env overrides apply even
// without a config file.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("provider.name", cfg.Provider.Name)
	v.SetDefault("provider.base_url", cfg.Provider.BaseURL)
	v.SetDefault("provider.timeout", cfg.Provider.Timeout)
	v.SetDefault("provider.max_retries", cfg.Provider.MaxRetries)
	v.SetDefault("provider.concurrency", cfg.Provider.Concurrency)
	v.SetDefault("cache.enabled", cfg.Cache.Enabled)
	v.SetDefault("cache.path", cfg.Cache.Path)
	v.SetDefault("benchmark.ticker", cfg.Benchmark.Ticker)
	v.SetDefault("defaults.amount", cfg.Defaults.Amount)
	v.SetDefault("defaults.dca_amount", cfg.Defaults.DCAAmount)
	v.SetDefault("defaults.top", cfg.Defaults.Top)
	v.SetDefault("output.color", cfg.Output.Color)
	v.SetDefault("output.currency", cfg.Output.Currency)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.development", cfg.Log.Development)
	v.SetDefault("log.file.path", cfg.Log.File.Path)
	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.textfile", cfg.Metrics.Textfile)
	v.SetDefault("archive.type", cfg.Archive.Type)
	v.SetDefault("archive.path", cfg.Archive.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Provider: ProviderConfig{
			Name:        "yahoo",
			Timeout:     10 * time.Second,
			MaxRetries:  2,
			Concurrency: 4,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    defaultCachePath(),
		},
		Benchmark: BenchmarkConfig{
			Ticker: "SPY",
		},
		Defaults: DefaultsConfig{
			Amount:    1000,
			DCAAmount: 500,
			Top:       10,
		},
		Output: OutputConfig{
			Color:    true,
			Currency: "USD",
		},
		Log: LogConfig{
			Level: "warn",
			File: LogFileConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "charts",
		},
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "stocksim-cache.db"
	}
	return dir + string(os.PathSeparator) + "stocksim" + string(os.PathSeparator) + "quotes.db"
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Provider.Name == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("provider.name is required"))
	}
	if c.Provider.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("provider.timeout cannot be negative, got %s", c.Provider.Timeout))
	}
	if c.Provider.MaxRetries < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("provider.max_retries cannot be negative, got %d", c.Provider.MaxRetries))
	}
	if c.Provider.Concurrency < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("provider.concurrency must be at least 1, got %d", c.Provider.Concurrency))
	}

	if c.Cache.Enabled && c.Cache.Path == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("cache.path required when cache is enabled"))
	}

	if c.Benchmark.Ticker == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("benchmark.ticker is required"))
	}

	if c.Defaults.Amount <= 0 || c.Defaults.DCAAmount <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("default amounts must be positive, got %v and %v", c.Defaults.Amount, c.Defaults.DCAAmount))
	}
	if c.Defaults.Top < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("defaults.top cannot be negative, got %d", c.Defaults.Top))
	}

	if len(c.Output.Currency) != 3 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("output.currency must be an ISO 4217 code, got %q", c.Output.Currency))
	}

	switch c.Archive.Type {
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive.path required when archive type is localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive.s3.bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("archive.type must be localfs or s3, got %q", c.Archive.Type))
	}

	return nil
}
