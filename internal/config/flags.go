package config

import (
	"time"

	"github.com/spf13/pflag"
)

// RegisterRunFlags sets up the run command's flags on the provided flag
// set. Values here are defaults only; anything the user changes overrides
// the config file and environment.
func RegisterRunFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", DefaultConfigFile, "Path to configuration file (JSON or YAML)")
	flags.IntP("retries", "r", 3, "Attempts per page before it is recorded as failed")
	flags.IntP("delay", "d", 500, "Wait between attempts in milliseconds")
	flags.String("results-dir", "./results", "Directory for raw results and metrics files")
	flags.Duration("interval", 0, "Minimum spacing between page audits (e.g. 2s; 0 disables)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Bool("json-output", false, "Emit the final report as JSON")
	flags.Bool("dashboard", false, "Show live terminal dashboard during the run")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.BoolP("assume-yes", "y", false, "Retry failed pages without prompting")
	flags.Bool("no-input", false, "Never prompt; skip the retry pass")
}
