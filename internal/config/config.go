// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/fincalc/pkg/constants"
	"github.com/iwvelando/fincalc/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for fincalc.
type Configuration struct {
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging,omitempty"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output,omitempty"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server,omitempty"`
	History   HistoryConfig   `mapstructure:"history" yaml:"history,omitempty"`
	Assistant AssistantConfig `mapstructure:"assistant" yaml:"assistant,omitempty"`
	Predictor PredictorConfig `mapstructure:"predictor" yaml:"predictor,omitempty"`
	Fuel      FuelConfig      `mapstructure:"fuel" yaml:"fuel,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json, yaml
}

// ServerConfig defines runtime parameters for the HTTP server.
type ServerConfig struct {
	Address     string `mapstructure:"address" yaml:"address,omitempty"`
	MaxBodySize string `mapstructure:"maxBodySize" yaml:"maxBodySize,omitempty"`
}

// HistoryConfig selects and tunes the calculation history store.
type HistoryConfig struct {
	Backend       string        `mapstructure:"backend" yaml:"backend,omitempty"` // memory, redis
	RedisAddress  string        `mapstructure:"redisAddress" yaml:"redisAddress,omitempty"`
	RedisPassword string        `mapstructure:"redisPassword" yaml:"redisPassword,omitempty"`
	RedisDB       int           `mapstructure:"redisDB" yaml:"redisDB,omitempty"`
	KeyPrefix     string        `mapstructure:"keyPrefix" yaml:"keyPrefix,omitempty"`
	RecentLimit   int           `mapstructure:"recentLimit" yaml:"recentLimit,omitempty"`
	SaveTimeout   time.Duration `mapstructure:"saveTimeout" yaml:"saveTimeout,omitempty"`
}

// AssistantConfig points at the generative language service used for
// calculator recommendations and property estimates.
type AssistantConfig struct {
	Endpoint string        `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	APIKey   string        `mapstructure:"apiKey" yaml:"apiKey,omitempty"`
	Model    string        `mapstructure:"model" yaml:"model,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// Enabled reports whether an API key is configured.
func (a AssistantConfig) Enabled() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// PredictorConfig points at the loan approval model service.
type PredictorConfig struct {
	LoanEndpoint string        `mapstructure:"loanEndpoint" yaml:"loanEndpoint,omitempty"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
}

// FuelConfig tunes the fuel cost calculator.
type FuelConfig struct {
	ProjectionSeed int64 `mapstructure:"projectionSeed" yaml:"projectionSeed,omitempty"`
}

// setDefaults registers every key so environment overrides apply even when
// the file omits a section.
func setDefaults(v *viper.Viper) {
	collaboratorTimeout := time.Duration(constants.DefaultCollaboratorTimeoutSeconds) * time.Second

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes))
	v.SetDefault("history.backend", constants.HistoryBackendMemory)
	v.SetDefault("history.redisAddress", "localhost:6379")
	v.SetDefault("history.redisPassword", "")
	v.SetDefault("history.redisDB", 0)
	v.SetDefault("history.keyPrefix", constants.DefaultHistoryKeyPrefix)
	v.SetDefault("history.recentLimit", constants.DefaultRecentLimit)
	v.SetDefault("history.saveTimeout", time.Duration(constants.DefaultSaveTimeoutSeconds)*time.Second)
	v.SetDefault("assistant.endpoint", constants.DefaultAssistantEndpoint)
	v.SetDefault("assistant.apiKey", "")
	v.SetDefault("assistant.model", constants.DefaultAssistantModel)
	v.SetDefault("assistant.timeout", collaboratorTimeout)
	v.SetDefault("predictor.loanEndpoint", constants.DefaultLoanPredictorEndpoint)
	v.SetDefault("predictor.timeout", collaboratorTimeout)
	v.SetDefault("fuel.projectionSeed", constants.DefaultFuelProjectionSeed)
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults; environment
// variables such as FINCALC_SERVER_ADDRESS override either.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file, %s", err)
			}
		}
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// FileExists reports whether a configuration file is present at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MaxBodySizeBytes returns the configured request body limit in bytes.
func (s ServerConfig) MaxBodySizeBytes() (int64, error) {
	size, err := ParseSize(s.MaxBodySize)
	if err != nil {
		return 0, err
	}
	if size <= 0 {
		return constants.DefaultMaxBodySizeBytes, nil
	}
	return size, nil
}

// Validate returns an error for values the application cannot run with and
// warnings for values it will correct or that disable a feature.
func (c *Configuration) Validate() ([]string, error) {
	var warnings []string

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("logging level %q is not supported", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return nil, fmt.Errorf("logging format %q is not supported", c.Logging.Format)
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(strings.ToLower(c.Output.Format)); err != nil {
			return nil, err
		}
	}

	if _, err := c.Server.MaxBodySizeBytes(); err != nil {
		return nil, fmt.Errorf("server maxBodySize: %w", err)
	}

	switch strings.ToLower(c.History.Backend) {
	case constants.HistoryBackendMemory:
		warnings = append(warnings, "history uses the in-memory backend; records are lost on restart")
	case constants.HistoryBackendRedis:
		if strings.TrimSpace(c.History.RedisAddress) == "" {
			return nil, fmt.Errorf("history backend redis requires redisAddress")
		}
	default:
		return nil, fmt.Errorf("history backend %q is not supported", c.History.Backend)
	}
	if c.History.RecentLimit <= 0 {
		warnings = append(warnings, fmt.Sprintf("history recentLimit %d is not positive; using %d",
			c.History.RecentLimit, constants.DefaultRecentLimit))
		c.History.RecentLimit = constants.DefaultRecentLimit
	}
	if c.History.SaveTimeout <= 0 {
		c.History.SaveTimeout = time.Duration(constants.DefaultSaveTimeoutSeconds) * time.Second
		warnings = append(warnings, fmt.Sprintf("history saveTimeout is not positive; using %s", c.History.SaveTimeout))
	}

	if !c.Assistant.Enabled() {
		warnings = append(warnings, "assistant apiKey is not set; recommendations use the built-in fallback")
	}
	if c.Assistant.Timeout <= 0 {
		c.Assistant.Timeout = time.Duration(constants.DefaultCollaboratorTimeoutSeconds) * time.Second
	}
	if strings.TrimSpace(c.Predictor.LoanEndpoint) == "" {
		warnings = append(warnings, "predictor loanEndpoint is not set; loan predictions are unavailable")
	}
	if c.Predictor.Timeout <= 0 {
		c.Predictor.Timeout = time.Duration(constants.DefaultCollaboratorTimeoutSeconds) * time.Second
	}

	return warnings, nil
}
