package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Ledger struct {
		DataFile string `mapstructure:"data_file"`
	} `mapstructure:"ledger"`
	Interest struct {
		Enabled  bool          `mapstructure:"enabled"`
		Rate     string        `mapstructure:"rate"`
		Interval time.Duration `mapstructure:"interval"`
	} `mapstructure:"interest"`
	Server struct {
		Enabled bool   `mapstructure:"enabled"`
		Port    string `mapstructure:"port"`
	} `mapstructure:"server"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`
	Shutdown struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"shutdown"`
}

// InterestRate returns the configured accrual fraction.
func (c Config) InterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Interest.Rate)
	return rate
}

// Validate rejects settings the ledger cannot run with. The interest rate is
// a fraction of the balance and must stay strictly between 0 and 1.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Ledger.DataFile) == "" {
		return errors.New("ledger.data_file is required")
	}
	rate, err := decimal.NewFromString(c.Interest.Rate)
	if err != nil {
		return fmt.Errorf("interest.rate %q: %w", c.Interest.Rate, err)
	}
	if !rate.IsPositive() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("interest.rate %s must be a fraction between 0 and 1 (0.01 is 1%%)", rate)
	}
	if c.Interest.Enabled && c.Interest.Interval <= 0 {
		return fmt.Errorf("interest.interval %s must be positive", c.Interest.Interval)
	}
	if c.Server.Enabled && c.Server.Port == "" {
		return errors.New("server.port is required when server.enabled is set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ledger.data_file", "data.csv")
	v.SetDefault("interest.enabled", true)
	v.SetDefault("interest.rate", "0.01")
	v.SetDefault("interest.interval", "1m")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("shutdown.timeout", "5s")
}

// Flags returns the command-line flags understood by LoadConfig. Flag names
// mirror the config keys.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ledger", pflag.ContinueOnError)
	fs.String("config", ".", "directory containing config.yml")
	fs.String("ledger.data_file", "data.csv", "customer CSV file to load")
	fs.String("interest.rate", "0.01", "interest fraction applied per accrual")
	fs.Duration("interest.interval", time.Minute, "time between scheduled accruals")
	fs.Bool("interest.enabled", true, "run the background interest scheduler")
	fs.Bool("server.enabled", false, "serve the HTTP API alongside the console")
	fs.String("server.port", "8080", "HTTP listen port")
	fs.String("log.level", "info", "log level")
	return fs
}

// LoadConfig reads config.yml from path (optional), then LEDGER_* environment
// variables, then any flags explicitly set in fs, and returns the validated result.
func LoadConfig(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if fs != nil {
		var bindErr error
		fs.Visit(func(f *pflag.Flag) {
			if f.Name == "config" {
				return
			}
			if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, fmt.Errorf("unable to bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
