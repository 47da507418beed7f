// Package config loads runtime configuration for techplan sessions from
// .techplan.yaml, TECHPLAN_* environment variables, and CLI flags, plus the
// TOML slot preset file used by the simulator.
package config

import "github.com/spf13/viper"

// Config holds all runtime configuration for a techplan invocation.
type Config struct {
	InputDir      string `mapstructure:"input_dir"`
	DBPath        string `mapstructure:"db_path"`
	SlotsFile     string `mapstructure:"slots_file"`
	TelemetryPath string `mapstructure:"telemetry_path"`
	Profile       string `mapstructure:"profile"`
	SortMode      string `mapstructure:"sort_mode"` // "name" or "cost"
	NoColor       bool   `mapstructure:"no_color"`
	Verbose       bool   `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("input_dir", "data")
	viper.SetDefault("db_path", ".techplan.db")
	viper.SetDefault("slots_file", "slots.toml")
	viper.SetDefault("telemetry_path", "")
	viper.SetDefault("profile", "default")
	viper.SetDefault("sort_mode", "name")
	viper.SetDefault("no_color", false)
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
