// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/offscreen/gpucore"
)

// createNoopDevice opens the noop HAL backend for tests.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("no noop adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func newTestDevice(t *testing.T) *HALDevice {
	t.Helper()
	device, queue := createNoopDevice(t)
	d, err := New(device, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestNewCreatesSharedResources(t *testing.T) {
	d := newTestDevice(t)
	if d.fallback == gpucore.InvalidID {
		t.Fatal("fallback texture not created")
	}
	if d.sampler == nil {
		t.Fatal("sampler not created")
	}
	// The fallback is sampled only, never read back.
	if _, err := d.ReadTexture(d.fallback); err == nil {
		t.Error("ReadTexture(fallback) succeeded, want error")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	device, queue := createNoopDevice(t)
	d, err := New(device, queue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.Close()
	d.Close()
	if _, err := d.NewCommandBuffer("after_close"); !errors.Is(err, ErrClosed) {
		t.Errorf("NewCommandBuffer after Close = %v, want ErrClosed", err)
	}
	if _, err := d.CreateDepthStencilState(&gpucore.DepthStencilDesc{}); !errors.Is(err, ErrClosed) {
		t.Errorf("CreateDepthStencilState after Close = %v, want ErrClosed", err)
	}
}

func TestTextureLifecycle(t *testing.T) {
	d := newTestDevice(t)

	id, err := d.CreateTexture(&gpucore.TextureDesc{
		Label:  "target",
		Width:  4,
		Height: 3,
		Format: gpucore.PixelFormatBGRA8Unorm,
		Usage:  gpucore.TextureUsageRenderTarget | gpucore.TextureUsageShaderRead,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	pix, err := d.ReadTexture(id)
	if err != nil {
		t.Fatalf("ReadTexture: %v", err)
	}
	if len(pix) != 4*3*4 {
		t.Errorf("ReadTexture returned %d bytes, want %d", len(pix), 4*3*4)
	}

	if err := d.WriteTexture(id, make([]byte, 8), 16); err == nil {
		t.Error("WriteTexture with short data succeeded")
	}
	if err := d.WriteTexture(id, make([]byte, 48), 8); err == nil {
		t.Error("WriteTexture with short row pitch succeeded")
	}
	if err := d.WriteTexture(id, make([]byte, 48), 16); err != nil {
		t.Errorf("WriteTexture: %v", err)
	}

	d.DestroyTexture(id)
	if _, err := d.ReadTexture(id); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("ReadTexture after destroy = %v, want ErrUnknownResource", err)
	}
	d.DestroyTexture(id) // unknown IDs are ignored
}

func TestCreateTextureRejectsInvalid(t *testing.T) {
	d := newTestDevice(t)
	tests := []struct {
		name string
		desc gpucore.TextureDesc
	}{
		{"zero width", gpucore.TextureDesc{Width: 0, Height: 4, Format: gpucore.PixelFormatRGBA8Unorm}},
		{"invalid format", gpucore.TextureDesc{Width: 4, Height: 4}},
		{"sampled depth", gpucore.TextureDesc{
			Width: 4, Height: 4,
			Format: gpucore.PixelFormatDepth32Float,
			Usage:  gpucore.TextureUsageShaderRead,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id, err := d.CreateTexture(&tt.desc); err == nil {
				t.Errorf("CreateTexture = %d, want error", id)
			}
		})
	}
}

func TestBufferLifecycle(t *testing.T) {
	d := newTestDevice(t)
	if _, err := d.CreateBuffer(&gpucore.BufferDesc{Label: "empty"}, nil); err == nil {
		t.Error("CreateBuffer with no data succeeded")
	}
	id, err := d.CreateBuffer(&gpucore.BufferDesc{Label: "odd", Usage: gpucore.BufferUsageIndex}, []byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("CreateBuffer: %v", err)
	}
	if got := d.buffers[id].size; got != 6 {
		t.Errorf("buffer size = %d, want 6", got)
	}
	d.DestroyBuffer(id)
	if _, ok := d.buffers[id]; ok {
		t.Error("buffer still tracked after DestroyBuffer")
	}
}

type mockHALProvider struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (m *mockHALProvider) Device() gpucontext.Device             { return nil }
func (m *mockHALProvider) Queue() gpucontext.Queue               { return nil }
func (m *mockHALProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockHALProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockHALProvider) AdapterInfo() gpucontext.AdapterInfo   { return gpucontext.AdapterInfo{} }
func (m *mockHALProvider) HalDevice() any                        { return m.device }
func (m *mockHALProvider) HalQueue() any                         { return m.queue }

type plainProvider struct{ mockHALProvider }

// HalDevice shadows the embedded method with an unusable value.
func (p *plainProvider) HalDevice() any { return "not a device" }

func TestNewFromProvider(t *testing.T) {
	device, queue := createNoopDevice(t)

	p := &mockHALProvider{device: device, queue: queue, format: gputypes.TextureFormatBGRA8Unorm}
	d, err := NewFromProvider(p)
	if err != nil {
		t.Fatalf("NewFromProvider: %v", err)
	}
	d.Close()

	if got := SurfaceFormat(p); got != gpucore.PixelFormatBGRA8Unorm {
		t.Errorf("SurfaceFormat = %v, want BGRA8Unorm", got)
	}

	if _, err := NewFromProvider(&plainProvider{mockHALProvider{queue: queue}}); !errors.Is(err, ErrNoHALProvider) {
		t.Errorf("NewFromProvider(bad device) = %v, want ErrNoHALProvider", err)
	}
}
