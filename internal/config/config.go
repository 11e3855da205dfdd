package config

import (
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sensordash/internal/device"
	"sensordash/internal/errors"
)

const (
	DefaultInterval = 5
	DefaultListen   = ":8080"
	DefaultDatabase = "/var/lib/sensordash/settings.db"
	DefaultLogLevel = "info"

	configEnvVar = "SENSORDASH_CONFIG"
	envPrefix    = "SENSORDASH"
)

type Config struct {
	Interval int             `mapstructure:"interval"`
	Listen   string          `mapstructure:"listen"`
	Database string          `mapstructure:"database"`
	LogLevel string          `mapstructure:"log_level"`
	Devices  []device.Device `mapstructure:"devices"`
}

// DefaultFleet is the device fleet used when no devices are configured.
func DefaultFleet() []device.Device {
	return []device.Device{
		{ID: "sensor-01", Name: "Env Sensor 1", Location: "Warehouse A", Powered: true},
		{ID: "sensor-02", Name: "Env Sensor 2", Location: "Warehouse B", Powered: true},
		{ID: "sensor-03", Name: "Env Sensor 3", Location: "Cold Storage", Powered: true},
		{ID: "sensor-04", Name: "Env Sensor 4", Location: "Server Room", Powered: false},
	}
}

// Load reads configuration from the config file (SENSORDASH_CONFIG or
// sensordash.toml in /etc and the working directory), environment
// variables and command line flags, in increasing priority.
func Load() (*Config, error) {
	errFactory := errors.New()

	v := viper.New()
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("listen", DefaultListen)
	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("log_level", DefaultLogLevel)

	fs := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Int("interval", DefaultInterval, "Seconds between simulation ticks")
	fs.String("listen", DefaultListen, "HTTP listen address")
	fs.String("database", DefaultDatabase, "Path to the settings database")
	fs.String("log-level", DefaultLogLevel, "Log level (debug, info, warning, error)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, errFactory.Wrap(errors.ErrBindFlags, err)
	}

	if path := os.Getenv(configEnvVar); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sensordash")
		v.SetConfigType("toml")
		v.AddConfigPath("/etc")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errFactory.Wrap(errors.ErrReadConfig, err)
		}
	}

	// Flags set on the command line override file and environment values
	fs.Visit(func(f *pflag.Flag) {
		key := f.Name
		if key == "log-level" {
			key = "log_level"
		}
		v.Set(key, f.Value.String())
	})

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if len(config.Devices) == 0 {
		config.Devices = DefaultFleet()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	errFactory := errors.New()

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidConfig, struct {
			Field string
			Value int
		}{
			Field: "interval",
			Value: c.Interval,
		})
	}

	switch c.LogLevel {
	case "debug", "info", "warning", "error":
	default:
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	seen := make(map[string]struct{}, len(c.Devices))
	for _, d := range c.Devices {
		if d.ID == "" {
			return errFactory.WithMessage(errors.ErrInvalidConfig, "device with empty id")
		}
		if _, dup := seen[d.ID]; dup {
			return errFactory.WithData(errors.ErrInvalidConfig, struct {
				Field string
				Value string
			}{
				Field: "devices",
				Value: "duplicate id " + d.ID,
			})
		}
		seen[d.ID] = struct{}{}
	}

	return nil
}
