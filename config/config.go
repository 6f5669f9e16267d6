// Package config loads the service configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"incomepredict/ml"
)

// EnvPath names the environment variable that overrides the config path.
const EnvPath = "INCOME_CONFIG"

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log   LogConfig `yaml:"log"`
	Model struct {
		Type string `yaml:"type"`
		Path string `yaml:"path"`
	} `yaml:"model"`
	Transformer struct {
		Path string `yaml:"path"`
	} `yaml:"transformer"`
	Display DisplayConfig `yaml:"display"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
	File  struct {
		Path       string `yaml:"path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"file"`
}

type DisplayConfig struct {
	Currency  string  `yaml:"currency"`
	IncomeMin float64 `yaml:"income_min"`
	IncomeMax float64 `yaml:"income_max"`
	Progress  string  `yaml:"progress"`
}

func (d DisplayConfig) Range() ml.IncomeRange {
	return ml.IncomeRange{Min: d.IncomeMin, Max: d.IncomeMax}
}

func Default() *Config {
	c := &Config{}
	c.Http.Port = 8080
	c.Http.Timeout = 30 * time.Second
	c.Http.AllowedOrigins = []string{"*"}
	c.Log.Level = "info"
	c.Log.File.MaxSizeMB = 100
	c.Log.File.MaxBackups = 3
	c.Log.File.MaxAgeDays = 28
	c.Model.Type = ml.ModelLinearRegression
	c.Model.Path = "models/employee_income_model.json"
	c.Transformer.Path = "models/employee_income_transformer.json"
	c.Display.Currency = "USD"
	c.Display.IncomeMin = ml.DefaultIncomeRange.Min
	c.Display.IncomeMax = ml.DefaultIncomeRange.Max
	c.Display.Progress = ml.ProgressFromRange
	return c
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := Default()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// ResolvePath picks the config file: explicit flag, then INCOME_CONFIG, then
// config.yaml in the working directory.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env
	}
	return "config.yaml"
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var err error
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("http.port %d out of range", c.Http.Port))
	}
	if c.Http.Timeout <= 0 {
		err = multierr.Append(err, fmt.Errorf("http.timeout must be positive"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if !knownModelType(c.Model.Type) {
		err = multierr.Append(err, fmt.Errorf("model.type %q is not one of %v", c.Model.Type, ml.ModelTypes()))
	}
	if c.Model.Path == "" {
		err = multierr.Append(err, fmt.Errorf("model.path is required"))
	}
	if c.Transformer.Path == "" {
		err = multierr.Append(err, fmt.Errorf("transformer.path is required"))
	}
	if c.Display.IncomeMax < c.Display.IncomeMin {
		err = multierr.Append(err, fmt.Errorf("display.income_max %v is below display.income_min %v",
			c.Display.IncomeMax, c.Display.IncomeMin))
	}
	switch c.Display.Progress {
	case ml.ProgressFromRange, ml.ProgressFromProbability:
	default:
		err = multierr.Append(err, fmt.Errorf("display.progress %q is not one of range, probability", c.Display.Progress))
	}
	return err
}

func knownModelType(modelType string) bool {
	for _, t := range ml.ModelTypes() {
		if t == modelType {
			return true
		}
	}
	return false
}
