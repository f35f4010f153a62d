// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/carllingstrom/AI-Delning-sub001/pkg/constants"
	"github.com/carllingstrom/AI-Delning-sub001/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for the valuation service and CLI.
type Configuration struct {
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Output    OutputConfig    `yaml:"output,omitempty"`
	Server    ServerConfig    `yaml:"server,omitempty"`
	Database  DatabaseConfig  `yaml:"database,omitempty"`
	Valuation ValuationConfig `yaml:"valuation,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address       string          `yaml:"address,omitempty"`
	MaxUploadSize string          `yaml:"maxUploadSize,omitempty"`
	ReadTimeout   int             `yaml:"readTimeout,omitempty"`  // seconds
	WriteTimeout  int             `yaml:"writeTimeout,omitempty"` // seconds
	CORSOrigins   []string        `yaml:"corsOrigins,omitempty"`
	RateLimit     RateLimitConfig `yaml:"rateLimit,omitempty"`
}

// RateLimitConfig limits requests per client IP.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	Requests      int  `yaml:"requests,omitempty"`
	WindowSeconds int  `yaml:"windowSeconds,omitempty"`
}

// DatabaseConfig selects the project store.
type DatabaseConfig struct {
	Driver      string `yaml:"driver,omitempty"` // sqlite, postgres
	DSN         string `yaml:"dsn,omitempty"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// ValuationConfig holds engine-wide caps and the ROI error policy.
type ValuationConfig struct {
	MaxROI        float64 `yaml:"maxROI,omitempty"`
	MinCostPerOrg float64 `yaml:"minCostPerOrg,omitempty"`
	StrictROI     bool    `yaml:"strictROI"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", "")

	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxUploadSize", fmt.Sprintf("%d", constants.DefaultMaxUploadSizeBytes))
	v.SetDefault("server.readTimeout", constants.DefaultReadTimeoutSeconds)
	v.SetDefault("server.writeTimeout", constants.DefaultWriteTimeoutSeconds)
	v.SetDefault("server.corsOrigins", []string{})
	v.SetDefault("server.rateLimit.enabled", true)
	v.SetDefault("server.rateLimit.requests", constants.DefaultRateLimitRequests)
	v.SetDefault("server.rateLimit.windowSeconds", constants.DefaultRateLimitWindowSeconds)

	v.SetDefault("database.driver", constants.DefaultDatabaseDriver)
	v.SetDefault("database.dsn", constants.DefaultDatabaseDSN)
	v.SetDefault("database.autoMigrate", true)

	v.SetDefault("valuation.maxROI", constants.DefaultMaxROI)
	v.SetDefault("valuation.minCostPerOrg", constants.DefaultMinCostPerOrg)
	v.SetDefault("valuation.strictROI", false)
}

func newViper() *viper.Viper {
	// A .env file is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults, still subject to
// IMPACT_* environment overrides.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	v.SetConfigType("yml")
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Database.Driver = strings.ToLower(strings.TrimSpace(configuration.Database.Driver))
	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		Server: validation.ServerSettings{
			Address:           c.Server.Address,
			CORSOrigins:       c.Server.CORSOrigins,
			RateLimitEnabled:  c.Server.RateLimit.Enabled,
			RateLimitRequests: c.Server.RateLimit.Requests,
			RateLimitWindow:   c.Server.RateLimit.WindowSeconds,
		},
		Database: validation.DatabaseSettings{
			Driver: c.Database.Driver,
			DSN:    c.Database.DSN,
		},
		Valuation: validation.ValuationSettings{
			MaxROI:        c.Valuation.MaxROI,
			MinCostPerOrg: c.Valuation.MinCostPerOrg,
		},
	}

	warnings := validator.ValidateAll()
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	return warnings
}
