package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/dualx/internal/chain"
	"github.com/san-kum/dualx/internal/config"
	"github.com/san-kum/dualx/internal/logging"
)

// resolveConfig layers a preset, then the config file, then any flags the
// user set explicitly.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		p, err := config.Resolve(args[0])
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		parsed, err := chain.Parse(steps)
		if err != nil {
			return nil, err
		}
		cfg.Steps = parsed
		if len(args) == 0 {
			cfg.Name = "custom"
		}
	}
	if flags.Changed("at") {
		cfg.Points = append([]float64(nil), points...)
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("strict") {
		cfg.Strict = strict
	}
	if flags.Changed("from") {
		cfg.Sweep.From = from
	}
	if flags.Changed("to") {
		cfg.Sweep.To = to
	}
	if flags.Changed("samples") {
		cfg.Sweep.Samples = samples
	}
	if flags.Changed("mode") {
		cfg.Sweep.Mode = mode
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes to stderr so command output on stdout stays clean.
func newLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(os.Stderr, level, cfg.Log.Format)
}
