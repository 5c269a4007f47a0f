package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // Timezone names resolve on hosts without a zoneinfo database

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Defaults applied to fields missing from agenda.yml.
const (
	DefaultRedisURL   = "redis://localhost:6379"
	DefaultTimezone   = "UTC"
	DefaultSnapshot   = "schedule.yml"
	DefaultRevalidate = "*/15 * * * *"
	DefaultExportPath = "agenda.ics"

	// RedisURLEnv overrides redis_url when set, including from a .env file.
	RedisURLEnv = "AGENDA_REDIS_URL"
)

// AgendaConfig represents the top-level agenda.yml configuration
type AgendaConfig struct {
	Version    string        `yaml:"version"`
	Conference string        `yaml:"conference"`           // Namespace for all Redis keys
	RedisURL   string        `yaml:"redis_url,omitempty"`  // redis://host:port[/db]
	Timezone   string        `yaml:"timezone,omitempty"`   // IANA name used for calendar export
	Snapshot   string        `yaml:"snapshot,omitempty"`   // Default snapshot file for import
	Revalidate string        `yaml:"revalidate,omitempty"` // Standard 5-field cron spec for `agenda watch`
	Strict     bool          `yaml:"strict,omitempty"`     // Treat validation findings as failures
	Export     *ExportConfig `yaml:"export,omitempty"`
}

// ExportConfig controls the iCalendar feed
type ExportConfig struct {
	CalendarName string `yaml:"calendar_name,omitempty"`
	Output       string `yaml:"output,omitempty"`
}

// ApplyDefaults fills in every optional field that was left empty.
func (c *AgendaConfig) ApplyDefaults() {
	if c.RedisURL == "" {
		c.RedisURL = DefaultRedisURL
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Snapshot == "" {
		c.Snapshot = DefaultSnapshot
	}
	if c.Revalidate == "" {
		c.Revalidate = DefaultRevalidate
	}
	if c.Export == nil {
		c.Export = &ExportConfig{}
	}
	if c.Export.CalendarName == "" {
		c.Export.CalendarName = c.Conference
	}
	if c.Export.Output == "" {
		c.Export.Output = DefaultExportPath
	}
}

// Validate performs strict validation on the configuration
func (c *AgendaConfig) Validate() error {
	// Required: version
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	// Required: conference
	if c.Conference == "" {
		return fmt.Errorf("conference is required")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if _, err := c.RevalidateSchedule(); err != nil {
		return err
	}

	return nil
}

// Location returns the configured time zone.
func (c *AgendaConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

// RevalidateSchedule parses the revalidation cron spec.
func (c *AgendaConfig) RevalidateSchedule() (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(c.Revalidate)
	if err != nil {
		return nil, fmt.Errorf("invalid revalidate schedule '%s': %w", c.Revalidate, err)
	}
	return schedule, nil
}

// Load reads and validates agenda.yml from the specified path.
//
// A .env file next to the config is loaded first, if present. Variables already
// set in the environment take precedence over it, and AGENDA_REDIS_URL takes
// precedence over redis_url.
func Load(path string) (*AgendaConfig, error) {
	if err := LoadEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config AgendaConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if url := os.Getenv(RedisURLEnv); url != "" {
		config.RedisURL = url
	}
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadEnv loads a .env file into the process environment.
// A missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
