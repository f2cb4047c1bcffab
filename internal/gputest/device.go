// Package gputest provides a recording gpucore.Device for tests.
//
// The device keeps every resource in memory, validates descriptors the way
// a real backend would, and records each command buffer, pass and draw so
// tests can assert on the encoded frame. Failure injection fields let
// tests exercise the skip paths of the renderer.
package gputest

import (
	"errors"
	"fmt"

	"github.com/gogpu/offscreen/gpucore"
)

// ErrInjected is returned by operations whose failure was requested by a test.
var ErrInjected = errors.New("gputest: injected failure")

// Library is a recorded shader library.
type Library struct {
	Label     string
	Source    string
	Functions map[string]gpucore.ShaderStage
	Destroyed bool
}

// Texture is a recorded texture.
type Texture struct {
	Desc      gpucore.TextureDesc
	Data      []byte
	Destroyed bool
}

// Buffer is a recorded buffer.
type Buffer struct {
	Desc      gpucore.BufferDesc
	Data      []byte
	Destroyed bool
}

// Pipeline is a recorded render pipeline.
type Pipeline struct {
	Desc      gpucore.RenderPipelineDesc
	Destroyed bool
}

// DepthStencil is a recorded depth/stencil state.
type DepthStencil struct {
	Desc      gpucore.DepthStencilDesc
	Destroyed bool
}

// Device is an in-memory gpucore.Device.
type Device struct {
	Libraries      map[gpucore.LibraryID]*Library
	Textures       map[gpucore.TextureID]*Texture
	Buffers        map[gpucore.BufferID]*Buffer
	Pipelines      map[gpucore.RenderPipelineID]*Pipeline
	DepthStencils  map[gpucore.DepthStencilStateID]*DepthStencil
	CommandBuffers []*CommandBuffer

	// FailLibrary makes CreateShaderLibrary fail.
	FailLibrary bool

	// FailDepthStencil makes CreateDepthStencilState fail.
	FailDepthStencil bool

	// FailTexture, when set, is consulted for every CreateTexture call.
	FailTexture func(desc *gpucore.TextureDesc) bool

	// FailCommandBuffer makes NewCommandBuffer fail.
	FailCommandBuffer bool

	// FailRenderPass, when set, is consulted for every BeginRenderPass call.
	FailRenderPass func(desc *gpucore.RenderPassDesc) bool

	// FailCommit makes Commit fail.
	FailCommit bool

	nextID uint64
}

var _ gpucore.Device = (*Device)(nil)

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{
		Libraries:     make(map[gpucore.LibraryID]*Library),
		Textures:      make(map[gpucore.TextureID]*Texture),
		Buffers:       make(map[gpucore.BufferID]*Buffer),
		Pipelines:     make(map[gpucore.RenderPipelineID]*Pipeline),
		DepthStencils: make(map[gpucore.DepthStencilStateID]*DepthStencil),
	}
}

func (d *Device) newID() uint64 {
	d.nextID++
	return d.nextID
}

// CreateShaderLibrary implements gpucore.Device.
func (d *Device) CreateShaderLibrary(source, label string) (gpucore.LibraryID, error) {
	if d.FailLibrary {
		return gpucore.InvalidID, ErrInjected
	}
	functions, err := gpucore.EntryPoints(source)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.LibraryID(d.newID())
	d.Libraries[id] = &Library{Label: label, Source: source, Functions: functions}
	return id, nil
}

// HasFunction implements gpucore.Device.
func (d *Device) HasFunction(lib gpucore.LibraryID, name string) bool {
	l, ok := d.Libraries[lib]
	if !ok || l.Destroyed {
		return false
	}
	_, ok = l.Functions[name]
	return ok
}

// DestroyShaderLibrary implements gpucore.Device.
func (d *Device) DestroyShaderLibrary(lib gpucore.LibraryID) {
	if l, ok := d.Libraries[lib]; ok {
		l.Destroyed = true
	}
}

// CreateRenderPipeline implements gpucore.Device.
func (d *Device) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	for _, fn := range []string{desc.VertexFunction, desc.FragmentFunction} {
		if !d.HasFunction(desc.Library, fn) {
			return gpucore.InvalidID, fmt.Errorf("%w: %s", gpucore.ErrMissingFunction, fn)
		}
	}
	id := gpucore.RenderPipelineID(d.newID())
	d.Pipelines[id] = &Pipeline{Desc: *desc}
	return id, nil
}

// DestroyRenderPipeline implements gpucore.Device.
func (d *Device) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	if p, ok := d.Pipelines[id]; ok {
		p.Destroyed = true
	}
}

// CreateDepthStencilState implements gpucore.Device.
func (d *Device) CreateDepthStencilState(desc *gpucore.DepthStencilDesc) (gpucore.DepthStencilStateID, error) {
	if d.FailDepthStencil {
		return gpucore.InvalidID, ErrInjected
	}
	id := gpucore.DepthStencilStateID(d.newID())
	d.DepthStencils[id] = &DepthStencil{Desc: *desc}
	return id, nil
}

// DestroyDepthStencilState implements gpucore.Device.
func (d *Device) DestroyDepthStencilState(id gpucore.DepthStencilStateID) {
	if s, ok := d.DepthStencils[id]; ok {
		s.Destroyed = true
	}
}

// CreateTexture implements gpucore.Device.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	if d.FailTexture != nil && d.FailTexture(desc) {
		return gpucore.InvalidID, ErrInjected
	}
	id := gpucore.TextureID(d.newID())
	d.Textures[id] = &Texture{
		Desc: *desc,
		Data: make([]byte, desc.Width*desc.Height*desc.Format.BytesPerPixel()),
	}
	return id, nil
}

// DestroyTexture implements gpucore.Device.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	if t, ok := d.Textures[id]; ok {
		t.Destroyed = true
	}
}

// WriteTexture implements gpucore.Device.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte, bytesPerRow int) error {
	t, ok := d.Textures[id]
	if !ok || t.Destroyed {
		return fmt.Errorf("gputest: write to unknown texture %d", id)
	}
	if bytesPerRow != t.Desc.Width*t.Desc.Format.BytesPerPixel() || len(data) != len(t.Data) {
		return fmt.Errorf("gputest: write of %d bytes (row %d) does not match %dx%d texture",
			len(data), bytesPerRow, t.Desc.Width, t.Desc.Height)
	}
	copy(t.Data, data)
	return nil
}

// ReadTexture implements gpucore.Device.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	t, ok := d.Textures[id]
	if !ok || t.Destroyed {
		return nil, fmt.Errorf("gputest: read of unknown texture %d", id)
	}
	out := make([]byte, len(t.Data))
	copy(out, t.Data)
	return out, nil
}

// CreateBuffer implements gpucore.Device.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc, data []byte) (gpucore.BufferID, error) {
	if len(data) == 0 {
		return gpucore.InvalidID, fmt.Errorf("gputest: empty buffer %q", desc.Label)
	}
	id := gpucore.BufferID(d.newID())
	d.Buffers[id] = &Buffer{Desc: *desc, Data: append([]byte(nil), data...)}
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	if b, ok := d.Buffers[id]; ok {
		b.Destroyed = true
	}
}

// NewCommandBuffer implements gpucore.Device.
func (d *Device) NewCommandBuffer(label string) (gpucore.CommandBuffer, error) {
	if d.FailCommandBuffer {
		return nil, ErrInjected
	}
	cb := &CommandBuffer{Label: label, dev: d}
	d.CommandBuffers = append(d.CommandBuffers, cb)
	return cb, nil
}

// LiveTextures returns the number of textures that have not been destroyed.
func (d *Device) LiveTextures() int {
	n := 0
	for _, t := range d.Textures {
		if !t.Destroyed {
			n++
		}
	}
	return n
}

// LastCommandBuffer returns the most recently created command buffer, or nil.
func (d *Device) LastCommandBuffer() *CommandBuffer {
	if len(d.CommandBuffers) == 0 {
		return nil
	}
	return d.CommandBuffers[len(d.CommandBuffers)-1]
}
