/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults()
  2. Optional INI file (gcfg syntax), passed with -config
  3. Command-line flags that were set explicitly

FILE EXAMPLE:
  [server]
  port = 8080
  static-dir = ./web/dist

  [storage]
  driver = sqlite3
  path = ./bills.db

  [dashboard]
  soon-days = 5

  [reminders]
  enabled = true
  interval = 1h

  [log]
  level = info
  format = console
*/
package config

import (
	"fmt"
	"time"

	"gopkg.in/gcfg.v1"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port      int
		StaticDir string `gcfg:"static-dir"`
	}

	Storage struct {
		Driver string
		Path   string
	}

	Dashboard struct {
		SoonDays int `gcfg:"soon-days"`
	}

	Reminders struct {
		Enabled  bool
		Interval string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	var cfg Config
	cfg.Server.Port = 8080
	cfg.Server.StaticDir = "./web/dist"
	cfg.Storage.Driver = "sqlite3"
	cfg.Storage.Path = "bills.db"
	cfg.Dashboard.SoonDays = 5
	cfg.Reminders.Enabled = true
	cfg.Reminders.Interval = "1h"
	cfg.Log.Level = "info"
	cfg.Log.Format = "console"
	return cfg
}

// Read loads filename over the defaults. Keys absent from the file keep
// their default values.
func Read(filename string) (Config, error) {
	cfg := Defaults()
	if filename == "" {
		return cfg, nil
	}
	if err := gcfg.ReadFileInto(&cfg, filename); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", filename, err)
	}
	return cfg, cfg.Validate()
}

// ReadString loads an INI document over the defaults.
func ReadString(doc string) (Config, error) {
	cfg := Defaults()
	if err := gcfg.ReadStringInto(&cfg, doc); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// ReminderInterval parses Reminders.Interval.
func (c Config) ReminderInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Reminders.Interval)
	if err != nil {
		return 0, fmt.Errorf("reminders.interval: %w", err)
	}
	return d, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}
	switch c.Storage.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("storage.driver must be sqlite3 or sqlite, got %q", c.Storage.Driver)
	}
	if c.Dashboard.SoonDays < 0 {
		return fmt.Errorf("dashboard.soon-days must be >= 0")
	}
	if c.Reminders.Enabled {
		d, err := c.ReminderInterval()
		if err != nil {
			return err
		}
		if d <= 0 {
			return fmt.Errorf("reminders.interval must be positive")
		}
	}
	return nil
}
