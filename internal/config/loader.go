package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultConfigFile is used when --config is not given.
const DefaultConfigFile = "./config.json"

// Loader reads configuration files and applies environment and flag
// overrides.
type Loader struct{}

// NewLoader creates a configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load produces a Config from the file at path (JSON or YAML), environment
// variables, and any changed flags in flags. flags may be nil. The result
// is not validated; callers run Validate before orchestration starts.
func (Loader) Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAGEPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Google API key is commonly exported under its own name.
	_ = v.BindEnv("api_key", "PAGEPULSE_API_KEY", "PAGESPEED_API_KEY")

	v.SetDefault("retries", 3)
	v.SetDefault("delay", 500)
	v.SetDefault("results_dir", "./results")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("strategy", "mobile")
	v.SetDefault("log_level", "info")
	v.SetDefault("tracing.sample_rate", 1.0)

	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist) && path == DefaultConfigFile:
			// Running purely off env and flags is allowed; validation still
			// catches a missing page list.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		ConfigFile: path,
		APIKey:     strings.TrimSpace(v.GetString("api_key")),
		Retries:    v.GetInt("retries"),
		Delay:      time.Duration(v.GetInt("delay")) * time.Millisecond,
		ResultsDir: v.GetString("results_dir"),
		Interval:   v.GetDuration("interval"),
		Timeout:    v.GetDuration("timeout"),
		Strategy:   v.GetString("strategy"),
		JSONOutput: v.GetBool("json_output"),
		Dashboard:  v.GetBool("dashboard"),
		LogLevel:   v.GetString("log_level"),
	}

	if err := v.UnmarshalKey("pages", &cfg.Pages); err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	if err := v.UnmarshalKey("tracing", &cfg.Tracing); err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	if flags != nil {
		if err := applyFlagOverrides(cfg, flags); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyFlagOverrides applies flags the user actually set on top of file and
// environment values.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	var err error
	override := func(name string, apply func() error) {
		if err != nil || !flags.Changed(name) {
			return
		}
		err = apply()
	}

	override("retries", func() error {
		val, ferr := flags.GetInt("retries")
		if ferr != nil {
			return ferr
		}
		cfg.Retries = val
		return nil
	})
	override("delay", func() error {
		val, ferr := flags.GetInt("delay")
		if ferr != nil {
			return ferr
		}
		cfg.Delay = time.Duration(val) * time.Millisecond
		return nil
	})
	override("results-dir", func() error {
		val, ferr := flags.GetString("results-dir")
		if ferr != nil {
			return ferr
		}
		cfg.ResultsDir = val
		return nil
	})
	override("interval", func() error {
		val, ferr := flags.GetDuration("interval")
		if ferr != nil {
			return ferr
		}
		cfg.Interval = val
		return nil
	})
	override("timeout", func() error {
		val, ferr := flags.GetDuration("timeout")
		if ferr != nil {
			return ferr
		}
		cfg.Timeout = val
		return nil
	})
	override("json-output", func() error {
		val, ferr := flags.GetBool("json-output")
		if ferr != nil {
			return ferr
		}
		cfg.JSONOutput = val
		return nil
	})
	override("dashboard", func() error {
		val, ferr := flags.GetBool("dashboard")
		if ferr != nil {
			return ferr
		}
		cfg.Dashboard = val
		return nil
	})
	override("log-level", func() error {
		val, ferr := flags.GetString("log-level")
		if ferr != nil {
			return ferr
		}
		cfg.LogLevel = val
		return nil
	})
	return err
}
