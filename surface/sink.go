// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// FrameSink receives presented frames. index counts frames from zero.
// The image is owned by the sink after the call.
type FrameSink interface {
	WriteFrame(index uint64, img *image.RGBA) error
}

// SinkFunc adapts a function to FrameSink.
type SinkFunc func(index uint64, img *image.RGBA) error

// WriteFrame calls f.
func (f SinkFunc) WriteFrame(index uint64, img *image.RGBA) error { return f(index, img) }

// Discard drops every frame.
var Discard FrameSink = SinkFunc(func(uint64, *image.RGBA) error { return nil })

// Encoding selects the image format a FileSink writes.
type Encoding string

// Supported encodings.
const (
	EncodingPNG  Encoding = "png"
	EncodingBMP  Encoding = "bmp"
	EncodingTIFF Encoding = "tiff"
)

// DefaultPattern names frame files when a sink has no pattern.
const DefaultPattern = "frame_%05d"

func (e Encoding) encode(w io.Writer, img image.Image) error {
	switch e {
	case EncodingPNG, "":
		return png.Encode(w, img)
	case EncodingBMP:
		return bmp.Encode(w, img)
	case EncodingTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("surface: unknown encoding %q", string(e))
}

func (e Encoding) ext() string {
	if e == "" {
		return string(EncodingPNG)
	}
	return string(e)
}

// FileSink writes each frame to Dir as a numbered image file. Pattern is a
// fmt pattern taking the frame index, without extension.
type FileSink struct {
	Dir      string
	Pattern  string
	Encoding Encoding
}

// Path returns the file a frame is written to.
func (s FileSink) Path(index uint64) string {
	pattern := s.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return filepath.Join(s.Dir, fmt.Sprintf(pattern, index)+"."+s.Encoding.ext())
}

// WriteFrame encodes img into its numbered file, creating Dir if needed.
func (s FileSink) WriteFrame(index uint64, img *image.RGBA) (err error) {
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return fmt.Errorf("surface: create %s: %w", s.Dir, err)
		}
	}
	path := s.Path(index)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("surface: close %s: %w", path, cerr)
		}
	}()
	if err := s.Encoding.encode(f, img); err != nil {
		return fmt.Errorf("surface: encode %s: %w", path, err)
	}
	return nil
}

// PNGSink writes numbered PNG files.
type PNGSink struct {
	Dir     string
	Pattern string
}

// WriteFrame implements FrameSink.
func (s PNGSink) WriteFrame(index uint64, img *image.RGBA) error {
	return FileSink{Dir: s.Dir, Pattern: s.Pattern, Encoding: EncodingPNG}.WriteFrame(index, img)
}

// MemorySink keeps the most recent frames in memory.
type MemorySink struct {
	mu     sync.Mutex
	limit  int
	frames []*image.RGBA
	count  uint64
}

// NewMemorySink keeps up to limit frames. A limit of zero keeps all frames.
func NewMemorySink(limit int) *MemorySink {
	return &MemorySink{limit: limit}
}

// WriteFrame implements FrameSink.
func (m *MemorySink) WriteFrame(_ uint64, img *image.RGBA) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	m.frames = append(m.frames, img)
	if m.limit > 0 && len(m.frames) > m.limit {
		m.frames = append(m.frames[:0], m.frames[len(m.frames)-m.limit:]...)
	}
	return nil
}

// Frames returns the retained frames, oldest first.
func (m *MemorySink) Frames() []*image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*image.RGBA(nil), m.frames...)
}

// Last returns the most recent frame, or nil.
func (m *MemorySink) Last() *image.RGBA {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// Count returns the number of frames received.
func (m *MemorySink) Count() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}
