// Package config loads function configuration from defaults, an optional
// YAML file and INVOKE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. INVOKE_LOG_LEVEL or
// INVOKE_CHARTS_BUCKET.
const EnvPrefix = "INVOKE"

// Config is the complete function configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Charts  ChartsConfig  `mapstructure:"charts"`
}

// LogConfig configures the root logger.
type LogConfig struct {
	Name  string `mapstructure:"name"`
	Level string `mapstructure:"level"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	Backend   string `mapstructure:"backend"` // noop or prometheus
	Namespace string `mapstructure:"namespace"`
}

// ChartsConfig configures the chart scraper.
type ChartsConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Pages        []string      `mapstructure:"pages"`
	Airports     []string      `mapstructure:"airports"`
	SkipAirports []string      `mapstructure:"skip_airports"`
	Delay        time.Duration `mapstructure:"delay"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Store        string        `mapstructure:"store"` // file or s3
	Dir          string        `mapstructure:"dir"`
	Bucket       string        `mapstructure:"bucket"`
	Prefix       string        `mapstructure:"prefix"`
	Region       string        `mapstructure:"region"`
}

var defaults = map[string]any{
	"log.name":          "default-handler",
	"log.level":         "debug",
	"metrics.backend":   "noop",
	"metrics.namespace": "charts",
	"charts.base_url":   "http://www.caa.co.za",
	"charts.pages": []string{
		"/Pages/Aeronautical%20Information/Aeronautical-charts.aspx?p_SortBehavior=1&p_No=31%2e0000000000000&p_Chart_x0020_Title=&&PageFirstRow=1",
		"/Pages/Aeronautical%20Information/Aeronautical-charts.aspx?Paged=TRUE&p_SortBehavior=1&p_No=30%2e0000000000000&p_Chart_x0020_Title=&p_ID=33&PageFirstRow=31",
	},
	"charts.airports":      []string{},
	"charts.skip_airports": []string{},
	"charts.delay":         500 * time.Millisecond,
	"charts.timeout":       30 * time.Second,
	"charts.store":         "file",
	"charts.dir":           "/tmp/charts",
	"charts.bucket":        "",
	"charts.prefix":        "charts/",
	"charts.region":        "",
}

// Load reads configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values and store requirements.
func (c *Config) Validate() error {
	var errs []error

	if c.Log.Name == "" {
		errs = append(errs, errors.New("log.name is required"))
	}

	switch c.Metrics.Backend {
	case "noop", "prometheus":
	default:
		errs = append(errs, fmt.Errorf("metrics.backend must be noop or prometheus, got %q", c.Metrics.Backend))
	}

	switch c.Charts.Store {
	case "file":
		if c.Charts.Dir == "" {
			errs = append(errs, errors.New("charts.dir is required for the file store"))
		}
	case "s3":
		if c.Charts.Bucket == "" {
			errs = append(errs, errors.New("charts.bucket is required for the s3 store"))
		}
	default:
		errs = append(errs, fmt.Errorf("charts.store must be file or s3, got %q", c.Charts.Store))
	}

	if c.Charts.BaseURL == "" {
		errs = append(errs, errors.New("charts.base_url is required"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
