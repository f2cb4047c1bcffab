// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/offscreen/gpucore"
)

// ErrClosed is returned by operations on a closed surface.
var ErrClosed = errors.New("surface: closed")

// DefaultClearColor is the color the post pass clears the drawable to.
var DefaultClearColor = gpucore.ClearColor{R: 0, G: 0, B: 0, A: 1}

// Headless is a presentation surface without a window. Its drawable is a
// BGRA8Unorm texture on the device; presenting reads the texture back and
// hands the image to a FrameSink.
//
// Headless is safe for concurrent use, but the drawable it returns
// captures the texture current at that moment.
type Headless struct {
	mu     sync.Mutex
	dev    gpucore.Device
	sink   FrameSink
	width  int
	height int
	tex    gpucore.TextureID
	clear  gpucore.ClearColor
	frames uint64
	err    error
	closed bool
}

// NewHeadless creates a headless surface of the given size. A nil sink
// discards presented frames.
func NewHeadless(dev gpucore.Device, width, height int, sink FrameSink) (*Headless, error) {
	if dev == nil {
		return nil, errors.New("surface: nil device")
	}
	if sink == nil {
		sink = Discard
	}
	s := &Headless{dev: dev, sink: sink, clear: DefaultClearColor}
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize replaces the drawable texture. Drawables handed out before the
// resize keep presenting the old size until they are presented.
func (s *Headless) Resize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if width == s.width && height == s.height && s.tex != gpucore.InvalidID {
		return nil
	}
	tex, err := s.dev.CreateTexture(&gpucore.TextureDesc{
		Label:   "headless drawable",
		Width:   width,
		Height:  height,
		Format:  gpucore.PixelFormatBGRA8Unorm,
		Usage:   gpucore.TextureUsageRenderTarget,
		Storage: gpucore.StorageModeManaged,
	})
	if err != nil {
		return fmt.Errorf("surface: create drawable %dx%d: %w", width, height, err)
	}
	if s.tex != gpucore.InvalidID {
		s.dev.DestroyTexture(s.tex)
	}
	s.tex, s.width, s.height = tex, width, height
	return nil
}

// SetClearColor sets the color the drawable is cleared to each frame.
func (s *Headless) SetClearColor(c gpucore.ClearColor) {
	s.mu.Lock()
	s.clear = c
	s.mu.Unlock()
}

// DrawableSize returns the drawable size in pixels.
func (s *Headless) DrawableSize() (width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// ColorPixelFormat returns gpucore.PixelFormatBGRA8Unorm.
func (s *Headless) ColorPixelFormat() gpucore.PixelFormat {
	return gpucore.PixelFormatBGRA8Unorm
}

// CurrentRenderPassDescriptor returns a pass that clears and stores the
// drawable, or nil once the surface is closed.
func (s *Headless) CurrentRenderPassDescriptor() *gpucore.RenderPassDesc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return &gpucore.RenderPassDesc{
		Label: "headless present",
		Color: gpucore.ColorAttachment{
			Texture:    s.tex,
			Load:       gpucore.LoadActionClear,
			Store:      gpucore.StoreActionStore,
			ClearColor: s.clear,
		},
	}
}

// CurrentDrawable returns the drawable for the next frame, or nil once the
// surface is closed.
func (s *Headless) CurrentDrawable() gpucore.Drawable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return &drawable{s: s, tex: s.tex, width: s.width, height: s.height}
}

// Frames returns the number of frames delivered to the sink.
func (s *Headless) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Err returns the last readback or sink error, if any.
func (s *Headless) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close destroys the drawable texture. Close is idempotent.
func (s *Headless) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.tex != gpucore.InvalidID {
		s.dev.DestroyTexture(s.tex)
		s.tex = gpucore.InvalidID
	}
	return nil
}

func (s *Headless) deliver(d *drawable) {
	pix, err := s.dev.ReadTexture(d.tex)
	if err != nil {
		s.fail(fmt.Errorf("surface: read drawable: %w", err))
		return
	}
	img := &image.RGBA{
		Pix:    pix,
		Stride: d.width * 4,
		Rect:   image.Rect(0, 0, d.width, d.height),
	}

	s.mu.Lock()
	index := s.frames
	s.frames++
	s.mu.Unlock()

	if err := s.sink.WriteFrame(index, img); err != nil {
		s.fail(fmt.Errorf("surface: frame %d: %w", index, err))
	}
}

func (s *Headless) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	Logger().Warn("surface: present failed", "err", err)
}

type drawable struct {
	s      *Headless
	tex    gpucore.TextureID
	width  int
	height int
	once   sync.Once
}

func (d *drawable) Texture() gpucore.TextureID { return d.tex }

// Present delivers the frame once; later calls do nothing.
func (d *drawable) Present() {
	d.once.Do(func() { d.s.deliver(d) })
}
