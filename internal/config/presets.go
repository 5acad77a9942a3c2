package config

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/dualx/internal/chain"
)

func preset(name string, from, to float64, points []float64, steps ...chain.Step) *Config {
	cfg := DefaultConfig()
	cfg.Name = name
	cfg.Steps = steps
	cfg.Points = points
	cfg.Sweep.From = from
	cfg.Sweep.To = to
	return cfg
}

var Presets = map[string]map[string]*Config{
	"trig": {
		"cubic-sine": preset("cubic-sine", -math.Pi, math.Pi, []float64{0.5, 1},
			chain.Unary("sin"), chain.Power(3)),
		"tan-near-pole": preset("tan-near-pole", 1.2, 1.5, []float64{math.Pi/2 + 1e-8, 3*math.Pi/2 - 1e-8},
			chain.Unary("tan")),
		"cos-product": preset("cos-product", -2, 2, []float64{0, 1},
			chain.Unary("cos"), chain.WithInput("mul")),
	},
	"log": {
		"near-zero": preset("log-near-zero", 1e-7, 1e-3, []float64{1e-7, 3e-7},
			chain.Unary("log")),
		"quadratic": preset("log-quadratic", -3, 3, []float64{2},
			chain.Unary("square"), chain.WithConstant("add", 1, 0), chain.Unary("log")),
	},
	"exp": {
		"growth": preset("exp-growth", -1, 3, []float64{5},
			chain.Unary("exp")),
		"gaussian": preset("gaussian", -3, 3, []float64{0, 1},
			chain.Unary("square"), chain.WithConstant("mul", -0.5, 0), chain.Unary("exp")),
		"x-exp": preset("x-exp", -2, 2, []float64{1},
			chain.Unary("exp"), chain.WithInput("mul")),
	},
	"poly": {
		"cube": preset("cube", -2, 2, []float64{5},
			chain.Power(3)),
		"sqrt": preset("sqrt", 0.01, 4, []float64{4},
			chain.Unary("sqrt")),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, name string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names in group, sorted.
func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Groups returns the preset group names, sorted.
func Groups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Resolve looks up a preset written as "group/name".
func Resolve(ref string) (*Config, error) {
	group, name, ok := strings.Cut(ref, "/")
	if !ok {
		return nil, fmt.Errorf("preset %q: want group/name", ref)
	}
	cfg := GetPreset(group, name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", ref)
	}
	return cfg, nil
}
