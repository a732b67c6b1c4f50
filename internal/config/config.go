package config

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config represents the root configuration structure for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Limits  LimitsConfig  `mapstructure:"limits"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds the network settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	ReadBuffer      int           `mapstructure:"read_buffer"`      // size of a single socket read
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`     // 0 keeps idle clients forever
	RateLimit       int           `mapstructure:"rate_limit"`       // commands per second per connection, 0 disables
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"` // how long to wait for connections on shutdown
}

// LimitsConfig bounds what a single request may contain
type LimitsConfig struct {
	MaxArrayLen int `mapstructure:"max_array_len"`
	MaxBulkLen  int `mapstructure:"max_bulk_len"`
}

// LogConfig defines logging verbosity and output style
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// MetricsConfig controls the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"host":             "server.host",
	"port":             "server.port",
	"idle-timeout":     "server.idle_timeout",
	"rate-limit":       "server.rate_limit",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"metrics":          "metrics.enabled",
	"metrics-address":  "metrics.address",
	"max-bulk-len":     "limits.max_bulk_len",
	"max-array-len":    "limits.max_array_len",
	"shutdown-timeout": "server.shutdown_timeout",
}

// Load reads the configuration from a file and overrides it with environment variables
// and, when flags is not nil, with the command line flags the user actually set
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AddConfigPath(".")

	v.SetEnvPrefix("MOONKV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Address returns host:port the server listens on
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// setDefaults populates viper with fallback values if they are not provided via file or ENV
func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_buffer", 16*1024)
	v.SetDefault("server.idle_timeout", "0s")
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.shutdown_timeout", "5s")

	// Limits
	v.SetDefault("limits.max_array_len", 1024*1024)
	v.SetDefault("limits.max_bulk_len", 512*1024*1024)

	// Logger
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Metrics
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.address", "127.0.0.1:9121")
}
