// Package config loads settings for the profiling commands from the
// environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/profile"
)

// Harness configures a profiling run.
type Harness struct {
	Entities   int    `env:"SHIRUSHI_ENTITIES" envDefault:"100000"`
	Iterations int    `env:"SHIRUSHI_ITERATIONS" envDefault:"100"`
	Profile    string `env:"SHIRUSHI_PROFILE" envDefault:"mem"`
	ProfileDir string `env:"SHIRUSHI_PROFILE_DIR" envDefault:"."`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadHarness reads and validates the harness settings.
func LoadHarness() (Harness, error) {
	var cfg Harness
	if err := ParseEnv(&cfg); err != nil {
		return Harness{}, err
	}
	if cfg.Entities <= 0 {
		return Harness{}, errors.New("SHIRUSHI_ENTITIES must be positive")
	}
	if cfg.Iterations <= 0 {
		return Harness{}, errors.New("SHIRUSHI_ITERATIONS must be positive")
	}
	switch cfg.Profile {
	case "mem", "cpu", "alloc":
	default:
		return Harness{}, fmt.Errorf("SHIRUSHI_PROFILE %q is not one of mem, cpu, alloc", cfg.Profile)
	}
	return cfg, nil
}

// ProfileOptions translates the harness settings into profile.Start options.
func (h Harness) ProfileOptions() []func(*profile.Profile) {
	opts := []func(*profile.Profile){profile.ProfilePath(h.ProfileDir), profile.NoShutdownHook}
	switch h.Profile {
	case "cpu":
		opts = append(opts, profile.CPUProfile)
	case "alloc":
		opts = append(opts, profile.MemProfileAllocs)
	default:
		opts = append(opts, profile.MemProfile)
	}
	return opts
}
