// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/offscreen/gpucore"
)

// copyPitchAlignment is the row alignment buffer copies require.
const copyPitchAlignment = 256

type texture struct {
	raw    hal.Texture
	view   hal.TextureView
	desc   gpucore.TextureDesc
	format gputypes.TextureFormat
	usage  gputypes.TextureUsage

	// group binds the texture with the shared sampler. Created on first use.
	group hal.BindGroup
}

func (t *texture) destroy(device hal.Device) {
	if t.group != nil {
		device.DestroyBindGroup(t.group)
	}
	device.DestroyTextureView(t.view)
	device.DestroyTexture(t.raw)
}

func (t *texture) extent() hal.Extent3D {
	return hal.Extent3D{
		Width:              uint32(t.desc.Width),  //nolint:gosec // validated positive
		Height:             uint32(t.desc.Height), //nolint:gosec // validated positive
		DepthOrArrayLayers: 1,
	}
}

// CreateTexture implements gpucore.Device.
func (d *HALDevice) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	format, err := textureFormat(desc.Format)
	if err != nil {
		return gpucore.InvalidID, err
	}
	t := &texture{desc: *desc, format: format, usage: textureUsage(desc)}
	t.raw, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         desc.Label,
		Size:          t.extent(),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         t.usage,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create texture %q: %w", desc.Label, err)
	}
	t.view, err = d.device.CreateTextureView(t.raw, &hal.TextureViewDescriptor{
		Label:         desc.Label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(t.raw)
		return gpucore.InvalidID, fmt.Errorf("native: create texture view %q: %w", desc.Label, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		t.destroy(d.device)
		return gpucore.InvalidID, ErrClosed
	}
	id := gpucore.TextureID(d.newID())
	d.textures[id] = t
	return id, nil
}

// DestroyTexture implements gpucore.Device.
func (d *HALDevice) DestroyTexture(id gpucore.TextureID) {
	d.mu.Lock()
	t, ok := d.textures[id]
	delete(d.textures, id)
	d.mu.Unlock()
	if ok {
		t.destroy(d.device)
	}
}

func (d *HALDevice) lookupTexture(id gpucore.TextureID) (*texture, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: texture %d", ErrUnknownResource, id)
	}
	return t, nil
}

// WriteTexture implements gpucore.Device.
func (d *HALDevice) WriteTexture(id gpucore.TextureID, data []byte, bytesPerRow int) error {
	t, err := d.lookupTexture(id)
	if err != nil {
		return err
	}
	rowBytes := t.desc.Width * t.desc.Format.BytesPerPixel()
	if bytesPerRow < rowBytes {
		return fmt.Errorf("native: texture %q row pitch %d is below %d", t.desc.Label, bytesPerRow, rowBytes)
	}
	if len(data) < bytesPerRow*t.desc.Height {
		return fmt.Errorf("native: texture %q needs %d bytes, got %d", t.desc.Label, bytesPerRow*t.desc.Height, len(data))
	}
	size := t.extent()
	return d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.raw, MipLevel: 0},
		data,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(bytesPerRow), //nolint:gosec // checked above
			RowsPerImage: size.Height,
		},
		&size,
	)
}

// ReadTexture copies the texture into a staging buffer and returns its
// rows tightly packed as RGBA.
func (d *HALDevice) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	t, err := d.lookupTexture(id)
	if err != nil {
		return nil, err
	}
	if t.usage&gputypes.TextureUsageCopySrc == 0 {
		return nil, fmt.Errorf("native: texture %q cannot be read back", t.desc.Label)
	}
	size := t.extent()
	bytesPerRow := size.Width * uint32(t.desc.Format.BytesPerPixel()) //nolint:gosec // 4 or less
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(size.Height)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: t.desc.Label + "_readback",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("native: create staging buffer: %w", err)
	}
	leaked := false
	defer func() {
		if !leaked {
			d.device.DestroyBuffer(staging)
		}
	}()

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "offscreen_readback"})
	if err != nil {
		return nil, fmt.Errorf("native: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding("offscreen_readback"); err != nil {
		return nil, fmt.Errorf("native: begin encoding: %w", err)
	}

	prev := t.raw.CurrentUsage()
	if prev == 0 {
		prev = gputypes.TextureUsageRenderAttachment
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.raw,
		Usage:   hal.TextureUsageTransition{OldUsage: prev, NewUsage: gputypes.TextureUsageCopySrc},
	}})
	encoder.CopyTextureToBuffer(t.raw, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: size.Height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.raw, MipLevel: 0},
		Size:         size,
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.raw,
		Usage:   hal.TextureUsageTransition{OldUsage: gputypes.TextureUsageCopySrc, NewUsage: prev},
	}})

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("native: end encoding: %w", err)
	}
	if err := d.submitAndWait(cmd); err != nil {
		if errors.Is(err, ErrSubmitTimeout) {
			slogger().Warn("native: leaking readback after submit timeout", "texture", t.desc.Label)
			leaked = true
			return nil, err
		}
		d.device.FreeCommandBuffer(cmd)
		return nil, err
	}
	d.device.FreeCommandBuffer(cmd)

	mapping, err := d.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("native: map staging buffer: %w", err)
	}
	mapped := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	out := make([]byte, int(bytesPerRow)*int(size.Height))
	for row := 0; row < int(size.Height); row++ {
		src := row * int(alignedBytesPerRow)
		copy(out[row*int(bytesPerRow):(row+1)*int(bytesPerRow)], mapped[src:src+int(bytesPerRow)])
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		slogger().Warn("native: unmap staging buffer", "err", err)
	}

	switch t.desc.Format {
	case gpucore.PixelFormatBGRA8Unorm, gpucore.PixelFormatBGRA8UnormSRGB:
		convertBGRAToRGBA(out)
	}
	return out, nil
}

// textureBindGroup returns the bind group sampling t with the shared sampler.
func (d *HALDevice) textureBindGroup(t *texture) (hal.BindGroup, error) {
	if t.group != nil {
		return t.group, nil
	}
	layout, err := d.layouts.textureLayout()
	if err != nil {
		return nil, err
	}
	g, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  t.desc.Label + "_group",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create bind group for %q: %w", t.desc.Label, err)
	}
	t.group = g
	return g, nil
}
