package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/vitos/kalshi_ledger/internal/usecase"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath            = "config/config.yaml"
	DefaultPort            = 8080
	DefaultStartingCapital = 10000.0
)

type Config struct {
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Analysis struct {
		StartingCapital      float64                `yaml:"starting_capital"`
		TradingDaysPerYear   int                    `yaml:"trading_days_per_year"`
		DefaultTZOffsetHours *int                   `yaml:"default_tz_offset_hours"`
		Policy               usecase.MatchingPolicy `yaml:"policy"`
	} `yaml:"analysis"`
	Export struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"export"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
}

// Load reads the YAML file, applies .env and environment overrides, fills
// defaults and validates. A missing file yields a default config.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	cfg := &Config{}
	cfg.Analysis.Policy = usecase.DefaultMatchingPolicy()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Analysis.StartingCapital == 0 {
		c.Analysis.StartingCapital = DefaultStartingCapital
	}
	if c.Analysis.TradingDaysPerYear == 0 {
		c.Analysis.TradingDaysPerYear = usecase.DefaultTradingDaysPerYear
	}
	if c.Analysis.DefaultTZOffsetHours == nil {
		off := usecase.DefaultTZOffsetHours
		c.Analysis.DefaultTZOffsetHours = &off
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LEDGER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LEDGER_SQLITE_PATH"); v != "" {
		c.Export.SQLitePath = v
	}
	if v := os.Getenv("LEDGER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LEDGER_STARTING_CAPITAL"); v != "" {
		capital, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_STARTING_CAPITAL %q: %w", v, err)
		}
		c.Analysis.StartingCapital = capital
	}
	if v := os.Getenv("LEDGER_TRACING_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LEDGER_TRACING_ENABLED %q: %w", v, err)
		}
		c.Tracing.Enabled = enabled
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Analysis.StartingCapital <= 0 {
		return fmt.Errorf("analysis.starting_capital must be > 0, got %.2f", c.Analysis.StartingCapital)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1-65535, got %d", c.Server.Port)
	}
	if c.Analysis.Policy.MaxAbsROI < 0 {
		return fmt.Errorf("analysis.policy.max_abs_roi must be >= 0, got %.2f", c.Analysis.Policy.MaxAbsROI)
	}
	if c.Analysis.TradingDaysPerYear < 1 || c.Analysis.TradingDaysPerYear > 366 {
		return fmt.Errorf("analysis.trading_days_per_year must be between 1-366, got %d", c.Analysis.TradingDaysPerYear)
	}
	return nil
}

// PortfolioOptions maps the analysis section onto the pipeline options.
func (c *Config) PortfolioOptions() usecase.PortfolioOptions {
	return usecase.PortfolioOptions{
		Policy:               c.Analysis.Policy,
		DefaultTZOffsetHours: *c.Analysis.DefaultTZOffsetHours,
		TradingDaysPerYear:   c.Analysis.TradingDaysPerYear,
	}
}
