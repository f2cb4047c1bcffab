// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan" // register Vulkan backend

	"github.com/gogpu/offscreen/gpucore"
)

const (
	// fenceTimeout bounds every wait for submitted work.
	fenceTimeout = 5 * time.Second
	pollInterval = 200 * time.Microsecond
)

// HALDevice implements gpucore.Device using gogpu/wgpu/hal directly.
//
// Resource maps are guarded by a mutex so IDs may be created and destroyed
// from any goroutine; command buffers themselves are single-threaded.
type HALDevice struct {
	mu     sync.RWMutex
	device hal.Device
	queue  hal.Queue

	// release destroys what Open created. Nil for shared devices.
	release func()
	closed  bool

	nextID atomic.Uint64

	libraries   map[gpucore.LibraryID]*library
	pipelines   map[gpucore.RenderPipelineID]*pipeline
	depthStates map[gpucore.DepthStencilStateID]gpucore.DepthStencilDesc
	textures    map[gpucore.TextureID]*texture
	buffers     map[gpucore.BufferID]*buffer

	layouts  *layoutCache
	sampler  hal.Sampler
	fallback gpucore.TextureID

	submitTimeout time.Duration
}

var _ gpucore.Device = (*HALDevice)(nil)

// Open creates a Vulkan device on the best available adapter.
func Open() (*HALDevice, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("native: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("native: open device: %w", err)
	}
	d, err := New(openDev.Device, openDev.Queue)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	slogger().Info("native: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// NewFromProvider shares the device of a host application. The provider
// must expose HalDevice() and HalQueue() returning hal.Device and hal.Queue.
// The shared device is not destroyed by Close.
func NewFromProvider(provider gpucontext.DeviceProvider) (*HALDevice, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	return New(device, queue)
}

// SurfaceFormat returns the provider's surface format as a gpucore format.
func SurfaceFormat(provider gpucontext.DeviceProvider) gpucore.PixelFormat {
	return PixelFormatOf(provider.SurfaceFormat())
}

// New wraps an existing HAL device and queue. The caller keeps ownership
// of both.
func New(device hal.Device, queue hal.Queue) (*HALDevice, error) {
	d := &HALDevice{
		device:      device,
		queue:       queue,
		libraries:   make(map[gpucore.LibraryID]*library),
		pipelines:   make(map[gpucore.RenderPipelineID]*pipeline),
		depthStates: make(map[gpucore.DepthStencilStateID]gpucore.DepthStencilDesc),
		textures:    make(map[gpucore.TextureID]*texture),
		buffers:     make(map[gpucore.BufferID]*buffer),
		layouts:     newLayoutCache(device),

		submitTimeout: fenceTimeout,
	}
	if err := d.initShared(); err != nil {
		d.destroyShared()
		return nil, err
	}
	return d, nil
}

// initShared creates the sampler and the fallback texture bound when a
// pipeline samples a texture that was never set.
func (d *HALDevice) initShared() error {
	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "offscreen_linear_clamp",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return fmt.Errorf("native: create sampler: %w", err)
	}
	d.sampler = sampler

	white, err := d.CreateTexture(&gpucore.TextureDesc{
		Label:  "offscreen_fallback_white",
		Width:  1,
		Height: 1,
		Format: gpucore.PixelFormatRGBA8Unorm,
		Usage:  gpucore.TextureUsageShaderRead | gpucore.TextureUsageCopyDst,
	})
	if err != nil {
		return err
	}
	d.fallback = white
	return d.WriteTexture(white, []byte{0xff, 0xff, 0xff, 0xff}, 4)
}

func (d *HALDevice) destroyShared() {
	if d.fallback != gpucore.InvalidID {
		d.DestroyTexture(d.fallback)
		d.fallback = gpucore.InvalidID
	}
	if d.sampler != nil {
		d.device.DestroySampler(d.sampler)
		d.sampler = nil
	}
	d.layouts.destroy()
}

func (d *HALDevice) newID() uint64 {
	return d.nextID.Add(1)
}

// Close destroys every resource still owned by the device and, for devices
// created by Open, the device itself.
func (d *HALDevice) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	pipelines := d.pipelines
	textures := d.textures
	buffers := d.buffers
	libraries := d.libraries
	d.pipelines = make(map[gpucore.RenderPipelineID]*pipeline)
	d.textures = make(map[gpucore.TextureID]*texture)
	d.buffers = make(map[gpucore.BufferID]*buffer)
	d.libraries = make(map[gpucore.LibraryID]*library)
	d.mu.Unlock()

	for _, p := range pipelines {
		p.destroy(d.device)
	}
	for _, t := range textures {
		t.destroy(d.device)
	}
	for _, b := range buffers {
		d.device.DestroyBuffer(b.raw)
	}
	for _, l := range libraries {
		d.device.DestroyShaderModule(l.module)
	}
	d.fallback = gpucore.InvalidID
	d.destroyShared()
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// CreateDepthStencilState records a depth state. WebGPU bakes depth state
// into the pipeline, so the descriptor is only compared at draw time.
func (d *HALDevice) CreateDepthStencilState(desc *gpucore.DepthStencilDesc) (gpucore.DepthStencilStateID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return gpucore.InvalidID, ErrClosed
	}
	id := gpucore.DepthStencilStateID(d.newID())
	d.depthStates[id] = *desc
	return id, nil
}

// DestroyDepthStencilState implements gpucore.Device.
func (d *HALDevice) DestroyDepthStencilState(id gpucore.DepthStencilStateID) {
	d.mu.Lock()
	delete(d.depthStates, id)
	d.mu.Unlock()
}

// CreateBuffer implements gpucore.Device.
func (d *HALDevice) CreateBuffer(desc *gpucore.BufferDesc, data []byte) (gpucore.BufferID, error) {
	if len(data) == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: buffer %q has no data", desc.Label)
	}
	raw, err := d.uploadBuffer(desc.Label, bufferUsage(desc.Usage), data)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.BufferID(d.newID())
	d.mu.Lock()
	d.buffers[id] = &buffer{raw: raw, size: uint64(len(data))}
	d.mu.Unlock()
	return id, nil
}

// DestroyBuffer implements gpucore.Device.
func (d *HALDevice) DestroyBuffer(id gpucore.BufferID) {
	d.mu.Lock()
	b, ok := d.buffers[id]
	delete(d.buffers, id)
	d.mu.Unlock()
	if ok {
		d.device.DestroyBuffer(b.raw)
	}
}

// uploadBuffer creates a buffer sized to a multiple of four and writes data.
func (d *HALDevice) uploadBuffer(label string, usage gputypes.BufferUsage, data []byte) (hal.Buffer, error) {
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  align4(len(data)),
		Usage: usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create buffer %q: %w", label, err)
	}
	if len(data)%4 != 0 {
		padded := make([]byte, align4(len(data)))
		copy(padded, data)
		data = padded
	}
	if err := d.queue.WriteBuffer(buf, 0, data); err != nil {
		d.device.DestroyBuffer(buf)
		return nil, fmt.Errorf("native: write buffer %q: %w", label, err)
	}
	return buf, nil
}

// submitAndWait submits one command buffer and blocks until the queue
// reports it complete. A timeout is reported as ErrSubmitTimeout; the
// command buffer and everything it references must then stay alive.
func (d *HALDevice) submitAndWait(cmd hal.CommandBuffer) error {
	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		return fmt.Errorf("native: submit: %w", err)
	}
	deadline := time.Now().Add(d.submitTimeout)
	for d.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrSubmitTimeout, index, d.submitTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

type buffer struct {
	raw  hal.Buffer
	size uint64
}
