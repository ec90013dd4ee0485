// ABOUTME: Configuration loading for the cmp3 binary
// ABOUTME: Merges defaults, cmp3.yaml, .env and CMP3_ environment variables with viper
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Aze-M/cmp3-proj/pkg/audio/output"
	"github.com/Aze-M/cmp3-proj/pkg/engine"
)

// EnvPrefix is prepended to every environment key, e.g. CMP3_OUTPUT_BACKEND
const EnvPrefix = "CMP3"

// Config holds all configuration for the application
type Config struct {
	Output  OutputConfig  `mapstructure:"output"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OutputConfig selects and shapes the output stream. Zero values mean
// "device default".
type OutputConfig struct {
	Backend      string `mapstructure:"backend"`
	SampleRate   int    `mapstructure:"sample_rate"`
	Channels     int    `mapstructure:"channels"`
	PeriodFrames int    `mapstructure:"period_frames"`
}

// EngineConfig holds decode and buffering settings
type EngineConfig struct {
	BufferSamples        int     `mapstructure:"buffer_samples"`
	Volume               float64 `mapstructure:"volume"`
	Resample             bool    `mapstructure:"resample"`
	PacketFrames         int     `mapstructure:"packet_frames"`
	MaxConsecutiveErrors int     `mapstructure:"max_consecutive_errors"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
	File   string `mapstructure:"file"`
}

// Loader wraps a viper instance so flags can be bound before loading
type Loader struct {
	v       *viper.Viper
	envFile string
}

// NewLoader creates a loader with every default registered
func NewLoader() *Loader {
	v := viper.New()

	def := engine.DefaultConfig()
	v.SetDefault("output.backend", def.Backend)
	v.SetDefault("output.sample_rate", def.SampleRate)
	v.SetDefault("output.channels", def.Channels)
	v.SetDefault("output.period_frames", def.PeriodFrames)
	v.SetDefault("engine.buffer_samples", def.BufferSamples)
	v.SetDefault("engine.volume", float64(def.Volume))
	v.SetDefault("engine.resample", def.Resample)
	v.SetDefault("engine.packet_frames", def.PacketFrames)
	v.SetDefault("engine.max_consecutive_errors", def.MaxConsecutiveErrors)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "cmp3.log")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v, envFile: ".env"}
}

// SetEnvFile changes the dotenv file read by Load. Empty disables it.
func (l *Loader) SetEnvFile(path string) {
	l.envFile = path
}

// BindFlag makes a command line flag override key when it is set
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: no such flag", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads configuration. An explicit configFile must exist; otherwise
// cmp3.yaml is searched in ., $HOME/.cmp3 and /etc/cmp3 and may be absent.
func (l *Loader) Load(configFile string) (*Config, error) {
	if err := l.loadEnvFile(); err != nil {
		return nil, err
	}

	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName("cmp3")
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("$HOME/.cmp3")
		l.v.AddConfigPath("/etc/cmp3")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Debug("No config file found, using defaults and environment variables")
	} else {
		slog.Debug("Using config file", slog.String("file", l.v.ConfigFileUsed()))
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile exports the dotenv file, if present. Variables already set in
// the environment win.
func (l *Loader) loadEnvFile() error {
	if l.envFile == "" {
		return nil
	}
	if _, err := os.Stat(l.envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(l.envFile); err != nil {
		return fmt.Errorf("load %s: %w", l.envFile, err)
	}
	return nil
}

// Validate checks values the engine cannot correct on its own
func (c *Config) Validate() error {
	if !slices.Contains(output.BackendNames(), c.Output.Backend) {
		return &ConfigError{
			Field:   "output.backend",
			Message: fmt.Sprintf("unknown backend %q (available: %s)", c.Output.Backend, strings.Join(output.BackendNames(), ", ")),
		}
	}
	if c.Output.SampleRate < 0 {
		return &ConfigError{Field: "output.sample_rate", Message: "must not be negative"}
	}
	if c.Output.Channels < 0 {
		return &ConfigError{Field: "output.channels", Message: "must not be negative"}
	}
	if c.Output.PeriodFrames < 0 {
		return &ConfigError{Field: "output.period_frames", Message: "must not be negative"}
	}
	if c.Engine.BufferSamples <= 0 {
		return &ConfigError{Field: "engine.buffer_samples", Message: "must be positive"}
	}
	if c.Engine.PacketFrames <= 0 {
		return &ConfigError{Field: "engine.packet_frames", Message: "must be positive"}
	}
	if c.Engine.MaxConsecutiveErrors <= 0 {
		return &ConfigError{Field: "engine.max_consecutive_errors", Message: "must be positive"}
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "must be text or json"}
	}
	return nil
}

// EngineConfig converts the loaded values to an engine configuration
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		Backend:              c.Output.Backend,
		SampleRate:           c.Output.SampleRate,
		Channels:             c.Output.Channels,
		PeriodFrames:         c.Output.PeriodFrames,
		BufferSamples:        c.Engine.BufferSamples,
		Volume:               float32(c.Engine.Volume),
		Resample:             c.Engine.Resample,
		PacketFrames:         c.Engine.PacketFrames,
		MaxConsecutiveErrors: c.Engine.MaxConsecutiveErrors,
	}
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
