// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.SetRGBA(1, 1, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	return img
}

func TestFileSink(t *testing.T) {
	tests := []struct {
		encoding Encoding
		ext      string
		decode   func(f *os.File) (image.Image, error)
	}{
		{EncodingPNG, "png", func(f *os.File) (image.Image, error) { return png.Decode(f) }},
		{EncodingBMP, "bmp", func(f *os.File) (image.Image, error) { return bmp.Decode(f) }},
		{EncodingTIFF, "tiff", func(f *os.File) (image.Image, error) { return tiff.Decode(f) }},
	}
	for _, tt := range tests {
		t.Run(string(tt.encoding), func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "frames")
			sink := FileSink{Dir: dir, Pattern: "shot_%03d", Encoding: tt.encoding}
			if err := sink.WriteFrame(7, testFrame()); err != nil {
				t.Fatalf("WriteFrame: %v", err)
			}
			path := filepath.Join(dir, "shot_007."+tt.ext)
			if got := sink.Path(7); got != path {
				t.Errorf("Path = %s, want %s", got, path)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer f.Close()
			img, err := tt.decode(f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			r, g, b, _ := img.At(1, 1).RGBA()
			if r>>8 != 200 || g>>8 != 100 || b>>8 != 50 {
				t.Errorf("pixel (1,1) = %d,%d,%d", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestFileSinkDefaults(t *testing.T) {
	sink := FileSink{Dir: "out"}
	if got, want := sink.Path(3), filepath.Join("out", "frame_00003.png"); got != want {
		t.Errorf("Path = %s, want %s", got, want)
	}
	if err := (FileSink{Dir: t.TempDir(), Encoding: "gif"}).WriteFrame(0, testFrame()); err == nil {
		t.Error("unknown encoding accepted")
	}
}

func TestPNGSink(t *testing.T) {
	dir := t.TempDir()
	if err := (PNGSink{Dir: dir}).WriteFrame(1, testFrame()); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frame_00001.png")); err != nil {
		t.Errorf("frame file missing: %v", err)
	}
}

func TestMemorySinkLimit(t *testing.T) {
	m := NewMemorySink(2)
	if m.Last() != nil {
		t.Error("empty sink has a last frame")
	}
	frames := []*image.RGBA{testFrame(), testFrame(), testFrame()}
	for i, f := range frames {
		if err := m.WriteFrame(uint64(i), f); err != nil {
			t.Fatalf("WriteFrame: %v", err)
		}
	}
	got := m.Frames()
	if len(got) != 2 || got[0] != frames[1] || got[1] != frames[2] {
		t.Errorf("retained frames are not the two most recent")
	}
	if m.Count() != 3 {
		t.Errorf("Count = %d, want 3", m.Count())
	}
}
