package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dualx/internal/chain"
	"github.com/san-kum/dualx/internal/logging"
)

const (
	DefaultSeed      = 1.0
	DefaultFrom      = -2.0
	DefaultTo        = 2.0
	DefaultSamples   = 200
	DefaultMode      = "array"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Sweep modes.
const (
	ModeArray  = "array"
	ModePoints = "points"
)

// ErrInvalid indicates a configuration that cannot be run.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Name   string       `yaml:"name"`
	Steps  []chain.Step `yaml:"steps"`
	Points []float64    `yaml:"points,omitempty"`
	Seed   float64      `yaml:"seed"`
	Strict bool         `yaml:"strict"`
	Sweep  SweepConfig  `yaml:"sweep"`
	Log    LogConfig    `yaml:"log"`
}

type SweepConfig struct {
	From    float64 `yaml:"from"`
	To      float64 `yaml:"to"`
	Samples int     `yaml:"samples"`
	Mode    string  `yaml:"mode"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "identity",
		Seed: DefaultSeed,
		Sweep: SweepConfig{
			From:    DefaultFrom,
			To:      DefaultTo,
			Samples: DefaultSamples,
			Mode:    DefaultMode,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base, so fields absent from the
// file keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Steps = append([]chain.Step(nil), c.Steps...)
	for i, s := range out.Steps {
		if s.Exponent != nil {
			p := *s.Exponent
			out.Steps[i].Exponent = &p
		}
	}
	out.Points = append([]float64(nil), c.Points...)
	return &out
}

// Chain compiles the configured steps.
func (c *Config) Chain() (*chain.Chain, error) {
	return chain.Compile(c.Name, c.Steps)
}

// Validate reports the first problem that would stop a run.
func (c *Config) Validate() error {
	if _, err := c.Chain(); err != nil {
		return fmt.Errorf("%w: steps: %w", ErrInvalid, err)
	}
	if !finite(c.Seed) {
		return fmt.Errorf("%w: seed must be finite", ErrInvalid)
	}
	for i, p := range c.Points {
		if !finite(p) {
			return fmt.Errorf("%w: points[%d] must be finite", ErrInvalid, i)
		}
	}

	s := c.Sweep
	if !finite(s.From) || !finite(s.To) || s.To <= s.From {
		return fmt.Errorf("%w: sweep range [%g, %g] is empty", ErrInvalid, s.From, s.To)
	}
	if s.Samples < 2 {
		return fmt.Errorf("%w: sweep needs at least 2 samples, got %d", ErrInvalid, s.Samples)
	}
	if s.Mode != ModeArray && s.Mode != ModePoints {
		return fmt.Errorf("%w: sweep mode %q (want %s or %s)", ErrInvalid, s.Mode, ModeArray, ModePoints)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
