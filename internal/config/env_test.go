package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Workers int `env:"SHIRUSHI_TEST_WORKERS" envDefault:"4"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Workers != 4 {
		t.Fatalf("expected default 4, got %d", cfg.Workers)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("SHIRUSHI_TEST_WORKERS", "many")
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadHarness(t *testing.T) {
	t.Setenv("SHIRUSHI_ENTITIES", "500")
	t.Setenv("SHIRUSHI_PROFILE", "cpu")
	cfg, err := LoadHarness()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Entities != 500 || cfg.Iterations != 100 || cfg.Profile != "cpu" || cfg.ProfileDir != "." {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadHarnessRejects(t *testing.T) {
	cases := map[string][2]string{
		"zero entities":   {"SHIRUSHI_ENTITIES", "0"},
		"zero iterations": {"SHIRUSHI_ITERATIONS", "0"},
		"unknown profile": {"SHIRUSHI_PROFILE", "block"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := LoadHarness(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProfileOptions(t *testing.T) {
	for _, mode := range []string{"mem", "cpu", "alloc"} {
		h := Harness{Profile: mode, ProfileDir: t.TempDir()}
		if got := len(h.ProfileOptions()); got != 3 {
			t.Errorf("%s: expected 3 options, got %d", mode, got)
		}
	}
}
