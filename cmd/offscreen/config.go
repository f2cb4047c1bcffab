package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds the config file read from disk.
const maxConfigSize = 1 << 20

// Config is the driver configuration. It is read from a YAML file and
// then overridden by command-line flags.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Frames int `yaml:"frames"`

	Output OutputConfig `yaml:"output"`

	// Texture is the image mapped onto the sphere. Empty selects a
	// generated checkerboard.
	Texture        string `yaml:"texture"`
	TextureMaxSize int    `yaml:"texture_max_size"`

	Rings    int `yaml:"rings"`
	Segments int `yaml:"segments"`

	// ClearColor is the offscreen clear color as RGBA in [0, 1].
	ClearColor []float64 `yaml:"clear_color"`

	// Resizes change the drawable size before the given frame.
	Resizes []ResizeStep `yaml:"resizes"`

	LogLevel string `yaml:"log_level"`
	Progress bool   `yaml:"progress"`
}

// OutputConfig selects where presented frames go.
type OutputConfig struct {
	// Sink is a registered surface sink name: png, tiff, bmp, memory or discard.
	Sink    string `yaml:"sink"`
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// ResizeStep resizes the drawable before frame Frame is drawn.
type ResizeStep struct {
	Frame  int `yaml:"frame"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Width:  800,
		Height: 600,
		Frames: 1,
		Output: OutputConfig{
			Sink: "png",
			Dir:  "out",
		},
		ClearColor: []float64{0.95, 0.95, 0.95, 1},
		LogLevel:   "info",
		Progress:   true,
	}
}

// LoadConfig reads a YAML config over the defaults. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(data) > maxConfigSize {
		return cfg, fmt.Errorf("config: %s exceeds %d bytes", path, maxConfigSize)
	}
	if err := decodeConfig(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: size %dx%d must be positive", c.Width, c.Height)
	}
	if c.Frames < 0 {
		return fmt.Errorf("config: frames %d is negative", c.Frames)
	}
	if len(c.ClearColor) != 4 {
		return fmt.Errorf("config: clear_color needs 4 components, got %d", len(c.ClearColor))
	}
	for _, v := range c.ClearColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: clear_color component %g outside [0, 1]", v)
		}
	}
	for i, r := range c.Resizes {
		if r.Frame < 0 || r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("config: resize %d (frame %d, %dx%d) is invalid", i, r.Frame, r.Width, r.Height)
		}
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SizeAt returns the drawable size for frame i after applying every
// resize step scheduled at or before it.
func (c *Config) SizeAt(i int) (width, height int) {
	width, height = c.Width, c.Height
	best := -1
	for _, r := range c.Resizes {
		if r.Frame <= i && r.Frame >= best {
			width, height, best = r.Width, r.Height, r.Frame
		}
	}
	return width, height
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: log_level %q: %w", s, err)
	}
	return l, nil
}

// parseColor parses "r,g,b,a" with components in [0, 1].
func parseColor(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("color %q: want r,g,b,a", s)
	}
	out := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}

// parseResize parses "frame:WxH".
func parseResize(s string) (ResizeStep, error) {
	var r ResizeStep
	if _, err := fmt.Sscanf(s, "%d:%dx%d", &r.Frame, &r.Width, &r.Height); err != nil {
		return r, fmt.Errorf("resize %q: want frame:WxH: %w", s, err)
	}
	return r, nil
}

type resizeFlag []ResizeStep

func (f *resizeFlag) String() string {
	parts := make([]string, len(*f))
	for i, r := range *f {
		parts[i] = fmt.Sprintf("%d:%dx%d", r.Frame, r.Width, r.Height)
	}
	return strings.Join(parts, " ")
}

func (f *resizeFlag) Set(s string) error {
	r, err := parseResize(s)
	if err != nil {
		return err
	}
	*f = append(*f, r)
	return nil
}

// parseArgs builds the configuration from an optional -config file and
// the flags that were set explicitly.
func parseArgs(args []string, stderr io.Writer) (Config, error) {
	fs := flag.NewFlagSet("offscreen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := DefaultConfig()
	var (
		configPath = fs.String("config", "", "YAML config file")
		width      = fs.Int("width", def.Width, "drawable width")
		height     = fs.Int("height", def.Height, "drawable height")
		frames     = fs.Int("frames", def.Frames, "number of frames to render")
		sink       = fs.String("sink", def.Output.Sink, "frame sink: png, tiff, bmp, memory, discard")
		dir        = fs.String("out", def.Output.Dir, "output directory")
		pattern    = fs.String("pattern", "", "frame file name pattern, e.g. frame_%05d")
		texture    = fs.String("texture", "", "texture image (default: checkerboard)")
		maxSize    = fs.Int("texture-max", 0, "downscale textures larger than this")
		clearColor = fs.String("clear", "", "offscreen clear color r,g,b,a")
		logLevel   = fs.String("log", def.LogLevel, "log level: debug, info, warn, error")
		progress   = fs.Bool("progress", def.Progress, "show a progress bar")
		resizes    resizeFlag
	)
	fs.Var(&resizes, "resize", "resize before a frame, frame:WxH (repeatable)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := def
	if *configPath != "" {
		var err error
		if cfg, err = LoadConfig(*configPath); err != nil {
			return Config{}, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "frames":
			cfg.Frames = *frames
		case "sink":
			cfg.Output.Sink = *sink
		case "out":
			cfg.Output.Dir = *dir
		case "pattern":
			cfg.Output.Pattern = *pattern
		case "texture":
			cfg.Texture = *texture
		case "texture-max":
			cfg.TextureMaxSize = *maxSize
		case "clear":
			var c []float64
			if c, err = parseColor(*clearColor); err == nil {
				cfg.ClearColor = c
			}
		case "log":
			cfg.LogLevel = *logLevel
		case "progress":
			cfg.Progress = *progress
		case "resize":
			cfg.Resizes = append(cfg.Resizes, resizes...)
		}
	})
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
