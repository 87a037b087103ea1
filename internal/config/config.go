package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Loading
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator" validate:"omitempty,oneof=. comma 0x2C"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator" validate:"omitempty,oneof=0x2C . space"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows" validate:"gte=0"`

	// Analysis
	CorrelationThreshold float64 `mapstructure:"correlation_threshold" yaml:"correlation_threshold" validate:"gte=0,lte=1"`
	Workers              int     `mapstructure:"workers" yaml:"workers" validate:"gte=0"`

	// Output
	ReportFormat string `mapstructure:"report_format" yaml:"report_format" validate:"oneof=text json yaml yml"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`

	// Logging
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"delimiter", "decimal_separator", "thousands_separator", "max_rows",
	"correlation_threshold", "workers", "report_format", "output_dir",
	"log_format", "log_level",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
	})
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case ",", ";", "|", "\t", "tab":
			return true
		}
		return false
	})
	return v
}

// Validate checks field ranges and enumerations.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			fe := ve[0]
			return fmt.Errorf("invalid config %s=%v (%s)", fe.Field(), fe.Value(), fe.Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// DefaultPath returns ~/.edaloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".edaloom", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.edaloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is read into the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EDALOOM")
	v.AutomaticEnv()

	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("correlation_threshold", 0.7)
	v.SetDefault("workers", 0)
	v.SetDefault("report_format", "text")
	v.SetDefault("output_dir", "")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_level", "warn")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".edaloom"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the string form of a key's value.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "max_rows":
		return fmt.Sprint(c.MaxRows), nil
	case "correlation_threshold":
		return fmt.Sprint(c.CorrelationThreshold), nil
	case "workers":
		return fmt.Sprint(c.Workers), nil
	case "report_format":
		return c.ReportFormat, nil
	case "output_dir":
		return c.OutputDir, nil
	case "log_format":
		return c.LogFormat, nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set parses value into key and re-validates.
func (c *Global) Set(key, value string) error {
	next := *c
	switch key {
	case "delimiter":
		next.Delimiter = value
	case "decimal_separator":
		next.DecimalSeparator = value
	case "thousands_separator":
		next.ThousandsSeparator = value
	case "max_rows":
		if _, err := fmt.Sscan(value, &next.MaxRows); err != nil {
			return fmt.Errorf("max_rows must be an integer: %w", err)
		}
	case "correlation_threshold":
		if _, err := fmt.Sscan(value, &next.CorrelationThreshold); err != nil {
			return fmt.Errorf("correlation_threshold must be a number: %w", err)
		}
	case "workers":
		if _, err := fmt.Sscan(value, &next.Workers); err != nil {
			return fmt.Errorf("workers must be an integer: %w", err)
		}
	case "report_format":
		next.ReportFormat = strings.ToLower(value)
	case "output_dir":
		next.OutputDir = value
	case "log_format":
		next.LogFormat = strings.ToLower(value)
	case "log_level":
		next.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
