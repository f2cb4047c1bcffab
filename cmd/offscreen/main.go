// Command offscreen renders a textured sphere through the two-pass
// offscreen renderer and writes the presented frames to disk.
//
// Usage:
//
//	offscreen [-config file.yaml] [-width 800] [-height 600] [-frames 1] [-sink png] [-out dir]
//
// Flags that are set explicitly override the config file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/xlab/closer"

	"github.com/gogpu/offscreen"
	"github.com/gogpu/offscreen/asset"
	"github.com/gogpu/offscreen/backend/native"
	"github.com/gogpu/offscreen/gpucore"
	"github.com/gogpu/offscreen/surface"
)

func main() {
	defer closer.Close()

	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		closer.Fatalln(err)
	}

	logger := newLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	offscreen.SetLogger(logger)
	native.SetLogger(logger)
	surface.SetLogger(logger)

	dev, err := native.Open()
	if err != nil {
		closer.Fatalln(err)
	}
	closer.Bind(dev.Close)

	var progress io.Writer
	if cfg.Progress {
		progress = os.Stderr
	}
	summary, err := render(dev, cfg, progress)
	if err != nil {
		closer.Fatalln(err)
	}
	logger.Info("offscreen: done",
		"frames", summary.Stats.Frames,
		"submitted", summary.Stats.Submitted,
		"skipped", summary.Stats.Skipped,
		"presented", summary.Presented)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	l, err := parseLevel(level)
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// Summary reports the outcome of a render run.
type Summary struct {
	Stats     offscreen.FrameStats
	Presented uint64
}

// render draws cfg.Frames frames on dev into the sink named by the
// config. Progress is drawn to progress when it is non-nil.
func render(dev gpucore.Device, cfg Config, progress io.Writer) (Summary, error) {
	var sum Summary

	sink, err := surface.NewSinkByName(cfg.Output.Sink, surface.SinkOptions{
		Dir:     cfg.Output.Dir,
		Pattern: cfg.Output.Pattern,
		Keep:    cfg.Frames,
	})
	if err != nil {
		return sum, err
	}

	loader := asset.SphereLoader{
		TexturePath: cfg.Texture,
		Rings:       cfg.Rings,
		Segments:    cfg.Segments,
		TextureOptions: asset.TextureOptions{
			MaxSize: cfg.TextureMaxSize,
		},
	}
	geometry, err := loader.Load(dev, "sphere")
	if err != nil {
		return sum, err
	}

	width, height := cfg.SizeAt(0)
	view, err := surface.NewHeadless(dev, width, height, sink)
	if err != nil {
		geometry.Release(dev)
		return sum, err
	}
	defer view.Close()

	clearColor := gpucore.ClearColor{R: cfg.ClearColor[0], G: cfg.ClearColor[1], B: cfg.ClearColor[2], A: cfg.ClearColor[3]}
	r, err := offscreen.NewRenderer(dev, view, geometry, offscreen.WithClearColor(clearColor))
	if err != nil {
		geometry.Release(dev)
		return sum, err
	}
	defer r.Destroy()

	var bar *progressbar.ProgressBar
	if progress != nil {
		bar = progressbar.NewOptions(cfg.Frames,
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
	}

	for i := 0; i < cfg.Frames; i++ {
		w, h := cfg.SizeAt(i)
		if dw, dh := view.DrawableSize(); dw != w || dh != h {
			if err := view.Resize(w, h); err != nil {
				return sum, fmt.Errorf("frame %d: %w", i, err)
			}
			if _, err := r.Resize(w, h); err != nil {
				return sum, fmt.Errorf("frame %d: %w", i, err)
			}
			slog.Info("offscreen: resized", "frame", i, "width", w, "height", h)
		}
		res := r.Draw(w, h)
		if !res.Submitted() {
			slog.Warn("offscreen: frame skipped", "frame", i, "reached", res.Reached, "reason", res.Skip)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	sum.Stats = r.Stats()
	sum.Presented = view.Frames()
	if err := view.Err(); err != nil {
		return sum, err
	}
	return sum, nil
}
