package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

type flagSetBinder struct{ fs *pflag.FlagSet }

func (b flagSetBinder) Flags() *pflag.FlagSet { return b.fs }

// TestLoadDefaults verifies loading with no flags, file or env.
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Adapter.Power != "high" {
		t.Errorf("default power should be high, got %q", cfg.Adapter.Power)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level should be info, got %q", cfg.Log.Level)
	}
}

// TestLoadConfigFile verifies YAML file loading.
func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gputour.yaml")
	body := "adapter:\n  name: nvidia\n  power: low\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{ConfigFile: path, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("load config file: %v", err)
	}
	if cfg.Adapter.Name != "nvidia" || cfg.Adapter.Power != "low" {
		t.Errorf("adapter config not applied: %+v", cfg.Adapter)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level not applied: %q", cfg.Log.Level)
	}
}

// TestLoadFileBeatsUnchangedFlag verifies a config file value survives
// flag binding when the flag is left at its default.
func TestLoadFileBeatsUnchangedFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gputour.yaml")
	if err := os.WriteFile(path, []byte("adapter:\n  power: low\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, DefaultConfig())

	cfg, err := Load(LoadOptions{Cmd: flagSetBinder{fs}, ConfigFile: path, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Adapter.Power != "low" {
		t.Errorf("config file value lost: got power %q, want \"low\"", cfg.Adapter.Power)
	}
}

// TestLoadSetFlagBeatsFile verifies an explicitly set flag wins over a
// config file value.
func TestLoadSetFlagBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gputour.yaml")
	if err := os.WriteFile(path, []byte("adapter:\n  power: low\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, DefaultConfig())
	if err := fs.Set("adapter-power", "auto"); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{Cmd: flagSetBinder{fs}, ConfigFile: path, Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Adapter.Power != "auto" {
		t.Errorf("set flag should win: got power %q, want \"auto\"", cfg.Adapter.Power)
	}
}

// TestLoadRejectsBadPower verifies validation of the power preference.
func TestLoadRejectsBadPower(t *testing.T) {
	defaults := DefaultConfig()
	defaults.Adapter.Power = "turbo"
	if _, err := Load(LoadOptions{Defaults: defaults}); err == nil {
		t.Error("invalid power preference should be rejected")
	}
}

// TestLoadEnvOverride verifies GPUTOUR_ env vars win over defaults.
func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GPUTOUR_ADAPTER_POWER", "low")
	cfg, err := Load(LoadOptions{Defaults: DefaultConfig()})
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if cfg.Adapter.Power != "low" {
		t.Errorf("env override not applied, got %q", cfg.Adapter.Power)
	}
}

// TestParseLogLevel verifies the level mapping and its error case.
func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"WARN", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, c := range cases {
		got, err := ParseLogLevel(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("ParseLogLevel(%q) = %v, %v, want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Errorf("ParseLogLevel(%q) should fail", c.in)
		}
	}
}
