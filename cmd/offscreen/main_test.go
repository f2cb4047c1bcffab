package main

import (
	"bytes"
	"testing"

	"github.com/gogpu/offscreen/internal/gputest"
)

func TestRenderDeliversEveryFrame(t *testing.T) {
	dev := gputest.NewDevice()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 32, 24
	cfg.Frames = 4
	cfg.Rings, cfg.Segments = 4, 8
	cfg.Output.Sink = "discard"
	cfg.Resizes = []ResizeStep{{Frame: 2, Width: 16, Height: 16}}

	var progress bytes.Buffer
	sum, err := render(dev, cfg, &progress)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Stats.Frames != 4 || sum.Stats.Submitted != 4 {
		t.Errorf("stats = %+v, want 4 submitted frames", sum.Stats)
	}
	if sum.Presented != 4 {
		t.Errorf("Presented = %d, want 4", sum.Presented)
	}
	if len(dev.CommandBuffers) != 4 {
		t.Errorf("command buffers = %d, want 4", len(dev.CommandBuffers))
	}
	if n := dev.LiveTextures(); n != 0 {
		t.Errorf("%d textures leaked after render", n)
	}
}

func TestRenderWritesFiles(t *testing.T) {
	dev := gputest.NewDevice()
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 8, 8
	cfg.Frames = 2
	cfg.Rings, cfg.Segments = 4, 8
	cfg.Output.Sink = "png"
	cfg.Output.Dir = t.TempDir()

	sum, err := render(dev, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if sum.Presented != 2 {
		t.Fatalf("Presented = %d, want 2", sum.Presented)
	}
}

func TestRenderUnknownSink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Sink = "webp"
	if _, err := render(gputest.NewDevice(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown sink")
	}
}

func TestRenderMissingTexture(t *testing.T) {
	dev := gputest.NewDevice()
	cfg := DefaultConfig()
	cfg.Output.Sink = "discard"
	cfg.Texture = "does-not-exist.png"
	if _, err := render(dev, cfg, nil); err == nil {
		t.Fatal("expected error for missing texture")
	}
	if n := dev.LiveTextures(); n != 0 {
		t.Errorf("%d textures leaked", n)
	}
}
