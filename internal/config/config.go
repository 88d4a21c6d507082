package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"go.ngs.io/knmi-forecast/internal/adapter/dataset/backend"
	"go.ngs.io/knmi-forecast/internal/domain"
	"go.ngs.io/knmi-forecast/internal/usecase"
)

// EnvPrefix prefixes every environment override, e.g. KNMI_FORECAST_SERVER_PORT.
const EnvPrefix = "KNMI_FORECAST"

// Config holds all configuration for the service.
type Config struct {
	Server     ServerConfig          `mapstructure:"server"`
	Log        LogConfig             `mapstructure:"log"`
	Extraction ExtractionConfig      `mapstructure:"extraction"`
	Kafka      KafkaConfig           `mapstructure:"kafka"`
	Datasets   []usecase.DatasetSpec `mapstructure:"datasets"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port               int           `mapstructure:"port"`
	GinMode            string        `mapstructure:"gin_mode"` // debug, release, test
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	MaxUploadBytes     int64         `mapstructure:"max_upload_bytes"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// ExtractionConfig selects the NetCDF backend and the fixed-axis policy.
type ExtractionConfig struct {
	Backend         string `mapstructure:"backend"`
	StrictFixedAxes bool   `mapstructure:"strict_fixed_axes"`
	TempDir         string `mapstructure:"temp_dir"` // staging directory for the libnetcdf backend
}

// KafkaConfig configures the optional sample sink.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.cors_allowed_origins", []string{})
	v.SetDefault("server.max_upload_bytes", 64<<20)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("extraction.backend", backend.Auto)
	v.SetDefault("extraction.strict_fixed_axes", false)
	v.SetDefault("extraction.temp_dir", "")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "knmi-forecast-samples")
	v.SetDefault("kafka.write_timeout", 10*time.Second)
}

// Load reads configuration from a YAML file and environment variables. An
// empty path searches ./config.yaml, ./config/config.yaml and
// $HOME/.knmi-forecast; KNMI_FORECAST_CONFIG overrides the search.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.knmi-forecast")
	}

	if err := v.ReadInConfig(); err != nil {
		// Defaults are enough to start without a file, unless one was named.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// Comma-separated env values arrive as a single element.
	cfg.Server.CORSAllowedOrigins = splitList(cfg.Server.CORSAllowedOrigins)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks values that defaults cannot fix.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("server.max_upload_bytes must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if _, err := backend.New(c.Extraction.Backend, c.Extraction.TempDir); err != nil {
		return fmt.Errorf("extraction.backend: %w", err)
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("kafka.brokers is required when kafka is enabled")
		}
		if c.Kafka.Topic == "" {
			return errors.New("kafka.topic is required when kafka is enabled")
		}
	}
	if len(c.Datasets) == 0 {
		return errors.New("at least one dataset must be configured")
	}
	return nil
}

// GetServerAddr returns the server address in the format ":port".
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// FixedAxisPolicy maps strict_fixed_axes to the resolver policy.
func (c *Config) FixedAxisPolicy() domain.FixedAxisPolicy {
	if c.Extraction.StrictFixedAxes {
		return domain.FixedAxisStrict
	}
	return domain.FixedAxisFirst
}

// NewLogger creates a slog.Logger writing to stdout.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stdout)
}

// NewLoggerTo creates a slog.Logger based on the log configuration.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
