package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	APIKey          string `yaml:"api_key"`
	AccountID       string `yaml:"account_id"`
	RangeDays       int    `yaml:"range_days"`
	MaxRangeDays    int    `yaml:"max_range_days"`
	ComparePrevious bool   `yaml:"compare_previous"`
	OutputCSV       string `yaml:"output_csv"`
	OutputXLSX      string `yaml:"output_xlsx"`
	WatchCron       string `yaml:"watch_cron"`

	// Explicit window overrides, set from flags rather than the file.
	StartTime *time.Time `yaml:"-"`
	EndTime   *time.Time `yaml:"-"`
}

// LoadConfig reads config from a YAML file, then applies environment
// variable overrides and defaults. A missing file is not an error; env and
// flags can carry the whole configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("OCTOPUS_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OCTOPUS_ACCOUNT_ID"); v != "" {
		cfg.AccountID = v
	}
	if v := os.Getenv("OUTPUT_CSV"); v != "" {
		cfg.OutputCSV = v
	}
	if v := os.Getenv("OUTPUT_XLSX"); v != "" {
		cfg.OutputXLSX = v
	}
	if v := os.Getenv("RANGE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.RangeDays = days
		}
	}
	if v := os.Getenv("WATCH_CRON"); v != "" {
		cfg.WatchCron = v
	}

	// Defaults
	if cfg.RangeDays == 0 {
		cfg.RangeDays = 30
	}
	if cfg.MaxRangeDays == 0 {
		cfg.MaxRangeDays = defaultMaxRangeDays
	}
	if cfg.OutputCSV == "" {
		cfg.OutputCSV = "usage.csv"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and coherent.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.AccountID == "" {
		return fmt.Errorf("account_id is required")
	}
	if c.RangeDays <= 0 {
		return fmt.Errorf("range_days must be positive")
	}
	if c.RangeDays > c.MaxRangeDays {
		return fmt.Errorf("range_days %d exceeds max_range_days %d", c.RangeDays, c.MaxRangeDays)
	}
	if c.StartTime != nil && c.EndTime != nil && !c.StartTime.Before(*c.EndTime) {
		return fmt.Errorf("start time must be before end time")
	}
	return nil
}
