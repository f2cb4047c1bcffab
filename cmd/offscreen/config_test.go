package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offscreen.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
width: 320
height: 240
frames: 3
output:
  sink: memory
  pattern: shot_%03d
rings: 8
segments: 16
clear_color: [0, 0.5, 1, 1]
resizes:
  - frame: 2
    width: 160
    height: 120
log_level: debug
progress: false
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 320 || cfg.Height != 240 || cfg.Frames != 3 {
		t.Errorf("size/frames = %dx%d/%d", cfg.Width, cfg.Height, cfg.Frames)
	}
	if cfg.Output.Sink != "memory" || cfg.Output.Pattern != "shot_%03d" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Output.Dir != "out" {
		t.Errorf("Output.Dir = %q, want default %q", cfg.Output.Dir, "out")
	}
	if cfg.ClearColor[2] != 1 || cfg.Progress {
		t.Errorf("clear_color/progress not applied: %+v", cfg)
	}
	if len(cfg.Resizes) != 1 || cfg.Resizes[0].Width != 160 {
		t.Errorf("Resizes = %+v", cfg.Resizes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "widht: 10\n"},
		{"bad type", "width: wide\n"},
		{"bad yaml", "width: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != DefaultConfig().Width {
		t.Errorf("Width = %d, want default", cfg.Width)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"negative frames", func(c *Config) { c.Frames = -2 }},
		{"short clear color", func(c *Config) { c.ClearColor = []float64{1, 1, 1} }},
		{"clear color out of range", func(c *Config) { c.ClearColor = []float64{0, 0, 2, 1} }},
		{"bad resize", func(c *Config) { c.Resizes = []ResizeStep{{Frame: 1, Width: 0, Height: 4}} }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSizeAt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 100, 50
	cfg.Resizes = []ResizeStep{
		{Frame: 4, Width: 40, Height: 40},
		{Frame: 2, Width: 20, Height: 20},
	}
	tests := []struct {
		frame, w, h int
	}{
		{0, 100, 50},
		{1, 100, 50},
		{2, 20, 20},
		{3, 20, 20},
		{4, 40, 40},
		{9, 40, 40},
	}
	for _, tt := range tests {
		if w, h := cfg.SizeAt(tt.frame); w != tt.w || h != tt.h {
			t.Errorf("SizeAt(%d) = %dx%d, want %dx%d", tt.frame, w, h, tt.w, tt.h)
		}
	}
}

func TestParseArgsFlagsOverrideConfig(t *testing.T) {
	path := writeConfig(t, "width: 320\nheight: 240\nframes: 5\n")
	cfg, err := parseArgs([]string{
		"-config", path,
		"-width", "64",
		"-sink", "discard",
		"-clear", "0.1, 0.2, 0.3, 1",
		"-resize", "2:32x16",
		"-resize", "3:8x8",
	}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 64 {
		t.Errorf("Width = %d, want flag value 64", cfg.Width)
	}
	if cfg.Height != 240 || cfg.Frames != 5 {
		t.Errorf("config values lost: %dx? frames %d", cfg.Height, cfg.Frames)
	}
	if cfg.Output.Sink != "discard" {
		t.Errorf("Sink = %q", cfg.Output.Sink)
	}
	if cfg.ClearColor[1] != 0.2 {
		t.Errorf("ClearColor = %v", cfg.ClearColor)
	}
	if len(cfg.Resizes) != 2 || cfg.Resizes[0] != (ResizeStep{Frame: 2, Width: 32, Height: 16}) {
		t.Errorf("Resizes = %+v", cfg.Resizes)
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad color", []string{"-clear", "1,2"}},
		{"bad resize", []string{"-resize", "big"}},
		{"invalid size", []string{"-width", "0"}},
		{"unknown flag", []string{"-nope"}},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "none.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseArgs(tt.args, io.Discard); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var sb strings.Builder
	l := newLogger(&sb, "nonsense")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(sb.String(), "hidden") || !strings.Contains(sb.String(), "shown") {
		t.Errorf("log output = %q", sb.String())
	}
}
