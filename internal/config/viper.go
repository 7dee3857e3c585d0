// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"arsat/finanzas/internal/common"
	"arsat/finanzas/internal/exporter"
	"arsat/finanzas/internal/logging"
	"arsat/finanzas/internal/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ARSAT_SERVER_PORT.
const EnvPrefix = "ARSAT"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Input struct {
		PurchaseOrders          string `mapstructure:"purchase_orders" yaml:"purchase_orders"`
		Transfers               string `mapstructure:"transfers" yaml:"transfers"`
		PurchaseOrdersDelimiter string `mapstructure:"purchase_orders_delimiter" yaml:"purchase_orders_delimiter"`
		TransfersDelimiter      string `mapstructure:"transfers_delimiter" yaml:"transfers_delimiter"`
		Encoding                string `mapstructure:"encoding" yaml:"encoding"`
	} `mapstructure:"input" yaml:"input"`

	Export struct {
		Dir                string `mapstructure:"dir" yaml:"dir"`
		PurchaseOrdersFile string `mapstructure:"purchase_orders_file" yaml:"purchase_orders_file"`
		TransfersFile      string `mapstructure:"transfers_file" yaml:"transfers_file"`
		SeriesFile         string `mapstructure:"series_file" yaml:"series_file"`
		SummaryFormat      string `mapstructure:"summary_format" yaml:"summary_format"`
		MaxColumnWidth     int    `mapstructure:"max_column_width" yaml:"max_column_width"`
	} `mapstructure:"export" yaml:"export"`

	Server struct {
		Host string `mapstructure:"host" yaml:"host"`
		Port int    `mapstructure:"port" yaml:"port"`
	} `mapstructure:"server" yaml:"server"`

	Launcher struct {
		StartupWait time.Duration `mapstructure:"startup_wait" yaml:"startup_wait"`
		LogFile     string        `mapstructure:"log_file" yaml:"log_file"`
	} `mapstructure:"launcher" yaml:"launcher"`
}

// New returns a Viper instance with defaults, config file locations and
// environment overrides set up. An explicit configFile replaces the search
// paths. Callers may bind flags before passing it to Load.
func New(configFile string) *viper.Viper {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.arsat-finanzas")
		v.AddConfigPath(".arsat-finanzas")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads the config file if present, then unmarshals and validates.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig(configFile string) (*Config, error) {
	return Load(New(configFile))
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("input.purchase_orders", "ARSAT_Finanzas_ordenes_de_compra-2022_marzo_2023.csv")
	v.SetDefault("input.transfers", "transferencias-recibidas-2020-v5.csv")
	v.SetDefault("input.purchase_orders_delimiter", ";")
	v.SetDefault("input.transfers_delimiter", ",")
	v.SetDefault("input.encoding", common.EncodingLatin1)

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.purchase_orders_file", exporter.PurchaseOrdersFile)
	v.SetDefault("export.transfers_file", exporter.TransfersFile)
	v.SetDefault("export.series_file", "monthly_series.csv")
	v.SetDefault("export.summary_format", report.FormatJSON)
	v.SetDefault("export.max_column_width", exporter.DefaultMaxColumnWidth)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8501)

	v.SetDefault("launcher.startup_wait", "8s")
	v.SetDefault("launcher.log_file", "dashboard.log")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Input.PurchaseOrders == "" || config.Input.Transfers == "" {
		return fmt.Errorf("input.purchase_orders and input.transfers are required")
	}

	for key, delim := range map[string]string{
		"input.purchase_orders_delimiter": config.Input.PurchaseOrdersDelimiter,
		"input.transfers_delimiter":       config.Input.TransfersDelimiter,
	} {
		if utf8.RuneCountInString(delim) != 1 {
			return fmt.Errorf("%s must be a single character, got: %q", key, delim)
		}
	}

	if _, err := common.EncodingFor(config.Input.Encoding); err != nil {
		return fmt.Errorf("input.encoding: %w", err)
	}

	if config.Export.SummaryFormat != report.FormatJSON && config.Export.SummaryFormat != report.FormatYAML {
		return fmt.Errorf("invalid summary format: %s (must be 'json' or 'yaml')", config.Export.SummaryFormat)
	}

	if config.Export.MaxColumnWidth < 1 {
		return fmt.Errorf("export.max_column_width must be positive, got: %d", config.Export.MaxColumnWidth)
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", config.Server.Port)
	}

	if config.Launcher.StartupWait <= 0 {
		return fmt.Errorf("launcher.startup_wait must be positive, got: %s", config.Launcher.StartupWait)
	}

	return nil
}

// Addr returns the dashboard listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the address a browser should open.
func (c *Config) URL() string {
	host := c.Server.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Server.Port))
}

// PurchaseOrdersReadOptions returns the reader settings for the purchase order file.
func (c *Config) PurchaseOrdersReadOptions() common.ReadOptions {
	return common.ReadOptions{Delimiter: firstRune(c.Input.PurchaseOrdersDelimiter), Encoding: c.Input.Encoding}
}

// TransfersReadOptions returns the reader settings for the transfer file.
func (c *Config) TransfersReadOptions() common.ReadOptions {
	return common.ReadOptions{Delimiter: firstRune(c.Input.TransfersDelimiter), Encoding: c.Input.Encoding}
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// ConfigureLoggingFromConfig builds the logrus logger described by the log section.
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	return logging.NewLogrus(config.Log.Level, config.Log.Format, nil)
}
