// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/offscreen/gpucore"
)

// commandBuffer records render passes into one HAL command encoder.
// Resources the passes allocate for inline bytes live until the buffer
// is committed or discarded.
type commandBuffer struct {
	d       *HALDevice
	label   string
	encoder hal.CommandEncoder

	pass      *renderPass
	drawables []gpucore.Drawable

	transientBuffers []hal.Buffer
	transientGroups  []hal.BindGroup

	done bool
}

// NewCommandBuffer implements gpucore.Device.
func (d *HALDevice) NewCommandBuffer(label string) (gpucore.CommandBuffer, error) {
	d.mu.RLock()
	closed := d.closed
	d.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("native: create encoder %q: %w", label, err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("native: begin encoding %q: %w", label, err)
	}
	return &commandBuffer{d: d, label: label, encoder: encoder}, nil
}

func (cb *commandBuffer) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPassEncoder, error) {
	if cb.done {
		return nil, ErrCommandBufferDone
	}
	if cb.pass != nil {
		return nil, ErrPassOpen
	}
	color, err := cb.d.lookupTexture(desc.Color.Texture)
	if err != nil {
		return nil, fmt.Errorf("native: pass %q color: %w", desc.Label, err)
	}
	c := desc.Color.ClearColor
	halDesc := &hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       color.view,
			LoadOp:     loadOp(desc.Color.Load),
			StoreOp:    storeOp(desc.Color.Store),
			ClearValue: gputypes.Color{R: c.R, G: c.G, B: c.B, A: c.A},
		}},
	}
	depthFormat := gpucore.PixelFormatInvalid
	if desc.Depth != nil {
		depth, err := cb.d.lookupTexture(desc.Depth.Texture)
		if err != nil {
			return nil, fmt.Errorf("native: pass %q depth: %w", desc.Label, err)
		}
		depthFormat = depth.desc.Format
		halDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:            depth.view,
			DepthLoadOp:     loadOp(desc.Depth.Load),
			DepthStoreOp:    storeOp(desc.Depth.Store),
			DepthClearValue: float32(desc.Depth.ClearDepth),
			StencilLoadOp:   gputypes.LoadOpClear,
			StencilStoreOp:  gputypes.StoreOpDiscard,
			StencilReadOnly: true,
		}
	}

	cb.pass = &renderPass{
		cb:            cb,
		label:         desc.Label,
		raw:           cb.encoder.BeginRenderPass(halDesc),
		colorFormat:   color.desc.Format,
		depthFormat:   depthFormat,
		vertexBuffers: make(map[int]boundBuffer),
		vertexBytes:   make(map[int][]byte),
		textures:      make(map[int]gpucore.TextureID),
	}
	return cb.pass, nil
}

func (cb *commandBuffer) Present(d gpucore.Drawable) {
	cb.drawables = append(cb.drawables, d)
}

// Commit ends any open pass, submits, waits for completion and then
// presents the scheduled drawables.
func (cb *commandBuffer) Commit() error {
	if cb.done {
		return ErrCommandBufferDone
	}
	cb.done = true
	if cb.pass != nil {
		cb.pass.End()
	}
	cmd, err := cb.encoder.EndEncoding()
	if err != nil {
		cb.releaseTransients()
		return fmt.Errorf("native: end encoding %q: %w", cb.label, err)
	}
	if err := cb.d.submitAndWait(cmd); err != nil {
		if errors.Is(err, ErrSubmitTimeout) {
			slogger().Warn("native: leaking command buffer after submit timeout",
				"label", cb.label, "buffers", len(cb.transientBuffers), "groups", len(cb.transientGroups))
			cb.transientBuffers, cb.transientGroups = nil, nil
			return err
		}
		cb.d.device.FreeCommandBuffer(cmd)
		cb.releaseTransients()
		return err
	}
	cb.d.device.FreeCommandBuffer(cmd)
	cb.releaseTransients()
	for _, d := range cb.drawables {
		d.Present()
	}
	return nil
}

func (cb *commandBuffer) Discard() {
	if cb.done {
		return
	}
	cb.done = true
	if cb.pass != nil {
		cb.pass.End()
	}
	cb.encoder.DiscardEncoding()
	cb.releaseTransients()
	cb.drawables = nil
}

func (cb *commandBuffer) releaseTransients() {
	for _, g := range cb.transientGroups {
		cb.d.device.DestroyBindGroup(g)
	}
	for _, b := range cb.transientBuffers {
		cb.d.device.DestroyBuffer(b)
	}
	cb.transientGroups = nil
	cb.transientBuffers = nil
}

type boundBuffer struct {
	raw    hal.Buffer
	offset uint64
}

// renderPass defers resource binding to draw time, when the pipeline
// says which slots are vertex buffers and which hold uniforms.
type renderPass struct {
	cb    *commandBuffer
	label string
	raw   hal.RenderPassEncoder

	colorFormat gpucore.PixelFormat
	depthFormat gpucore.PixelFormat

	pipeline     *pipeline
	bound        *pipeline
	depthStencil *gpucore.DepthStencilDesc

	vertexBuffers map[int]boundBuffer
	vertexBytes   map[int][]byte
	textures      map[int]gpucore.TextureID

	ended bool
}

func (p *renderPass) SetRenderPipeline(id gpucore.RenderPipelineID) {
	d := p.cb.d
	d.mu.RLock()
	pl, ok := d.pipelines[id]
	d.mu.RUnlock()
	if !ok {
		slogger().Warn("native: unknown render pipeline", "pass", p.label, "id", id)
		p.pipeline = nil
		return
	}
	p.pipeline = pl
}

func (p *renderPass) SetDepthStencilState(id gpucore.DepthStencilStateID) {
	d := p.cb.d
	d.mu.RLock()
	ds, ok := d.depthStates[id]
	d.mu.RUnlock()
	if !ok {
		slogger().Warn("native: unknown depth stencil state", "pass", p.label, "id", id)
		p.depthStencil = nil
		return
	}
	p.depthStencil = &ds
}

func (p *renderPass) SetVertexBuffer(id gpucore.BufferID, offset, slot int) {
	d := p.cb.d
	d.mu.RLock()
	b, ok := d.buffers[id]
	d.mu.RUnlock()
	if !ok {
		slogger().Warn("native: unknown vertex buffer", "pass", p.label, "id", id)
		delete(p.vertexBuffers, slot)
		return
	}
	delete(p.vertexBytes, slot)
	p.vertexBuffers[slot] = boundBuffer{raw: b.raw, offset: uint64(offset)} //nolint:gosec // offsets are non-negative
}

func (p *renderPass) SetVertexBytes(data []byte, slot int) {
	delete(p.vertexBuffers, slot)
	p.vertexBytes[slot] = append([]byte(nil), data...)
}

func (p *renderPass) SetFragmentTexture(id gpucore.TextureID, slot int) {
	p.textures[slot] = id
}

func (p *renderPass) DrawIndexed(topology gpucore.PrimitiveTopology, indexCount int, indexType gpucore.IndexType, indexBuffer gpucore.BufferID, indexOffset int) {
	if indexCount <= 0 || !p.bind(topology) {
		return
	}
	d := p.cb.d
	d.mu.RLock()
	b, ok := d.buffers[indexBuffer]
	d.mu.RUnlock()
	if !ok {
		slogger().Warn("native: unknown index buffer", "pass", p.label, "id", indexBuffer)
		return
	}
	p.raw.SetIndexBuffer(b.raw, indexFormat(indexType), uint64(indexOffset)) //nolint:gosec // offsets are non-negative
	p.raw.DrawIndexed(uint32(indexCount), 1, 0, 0, 0)                        //nolint:gosec // positive count
}

func (p *renderPass) Draw(topology gpucore.PrimitiveTopology, vertexStart, vertexCount int) {
	if vertexCount <= 0 || !p.bind(topology) {
		return
	}
	p.raw.Draw(uint32(vertexCount), 1, uint32(vertexStart), 0) //nolint:gosec // non-negative
}

func (p *renderPass) End() {
	if p.ended {
		return
	}
	p.ended = true
	p.raw.End()
	if p.cb.pass == p {
		p.cb.pass = nil
	}
}

// bind applies the deferred vertex, uniform and texture bindings for the
// current pipeline. It reports false when the draw has to be skipped.
func (p *renderPass) bind(topology gpucore.PrimitiveTopology) bool {
	pl := p.pipeline
	if p.ended || pl == nil {
		slogger().Warn("native: draw without pipeline", "pass", p.label)
		return false
	}
	if topology != pl.topology {
		slogger().Warn("native: draw topology does not match pipeline",
			"pass", p.label, "pipeline", pl.label, "draw", topology, "want", pl.topology)
		return false
	}
	if pl.colorFormat != p.colorFormat {
		slogger().Warn("native: pipeline color format does not match pass",
			"pass", p.label, "pipeline", pl.label, "pipelineColor", pl.colorFormat, "passColor", p.colorFormat)
		return false
	}
	if pl.depthFormat != p.depthFormat {
		slogger().Warn("native: pipeline depth format does not match pass",
			"pass", p.label, "pipeline", pl.label, "pipelineDepth", pl.depthFormat, "passDepth", p.depthFormat)
		return false
	}
	if p.depthStencil != nil && *p.depthStencil != pl.depthStencil {
		slogger().Debug("native: depth state differs from the one baked into the pipeline",
			"pass", p.label, "pipeline", pl.label)
	}
	if p.bound != pl {
		p.raw.SetPipeline(pl.raw)
		p.bound = pl
	}

	d := p.cb.d
	for slot := 0; slot < pl.bufferCount; slot++ {
		if vb, ok := p.vertexBuffers[slot]; ok {
			p.raw.SetVertexBuffer(uint32(slot), vb.raw, vb.offset) //nolint:gosec // small slot
			continue
		}
		data, ok := p.vertexBytes[slot]
		if !ok {
			slogger().Warn("native: vertex buffer slot not bound", "pass", p.label, "slot", slot)
			return false
		}
		buf, err := d.uploadBuffer(p.label+"_inline_vertices", gputypes.BufferUsageVertex, data)
		if err != nil {
			slogger().Warn("native: inline vertex upload failed", "pass", p.label, "err", err)
			return false
		}
		p.cb.transientBuffers = append(p.cb.transientBuffers, buf)
		p.raw.SetVertexBuffer(uint32(slot), buf, 0) //nolint:gosec // small slot
	}

	if pl.uniformSize > 0 {
		group, ok := p.uniformGroup(pl)
		if !ok {
			return false
		}
		p.raw.SetBindGroup(uniformGroup, group, nil)
	} else if pl.textures > 0 {
		_, empty, err := d.layouts.emptyBinding()
		if err != nil {
			slogger().Warn("native: empty bind group", "err", err)
			return false
		}
		p.raw.SetBindGroup(uniformGroup, empty, nil)
	}

	if pl.textures > 0 {
		id, ok := p.textures[0]
		if !ok {
			id = d.fallback
		}
		d.mu.Lock()
		group, err := func() (hal.BindGroup, error) {
			t, ok := d.textures[id]
			if !ok {
				t, ok = d.textures[d.fallback]
				if !ok {
					return nil, fmt.Errorf("%w: texture %d", ErrUnknownResource, id)
				}
			}
			return d.textureBindGroup(t)
		}()
		d.mu.Unlock()
		if err != nil {
			slogger().Warn("native: fragment texture", "pass", p.label, "err", err)
			return false
		}
		p.raw.SetBindGroup(textureGroup, group, nil)
	}
	return true
}

// uniformGroup uploads the inline bytes set at the first slot past the
// vertex buffers and wraps them in a bind group.
func (p *renderPass) uniformGroup(pl *pipeline) (hal.BindGroup, bool) {
	data, ok := p.vertexBytes[pl.bufferCount]
	if !ok || len(data) < pl.uniformSize {
		slogger().Warn("native: uniform block not set", "pass", p.label, "slot", pl.bufferCount, "size", len(data))
		return nil, false
	}
	d := p.cb.d
	layout, err := d.layouts.uniformLayout()
	if err != nil {
		slogger().Warn("native: uniform layout", "err", err)
		return nil, false
	}
	buf, err := d.uploadBuffer(p.label+"_uniforms", gputypes.BufferUsageUniform, data[:pl.uniformSize])
	if err != nil {
		slogger().Warn("native: uniform upload failed", "pass", p.label, "err", err)
		return nil, false
	}
	p.cb.transientBuffers = append(p.cb.transientBuffers, buf)
	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  p.label + "_uniform_group",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: uint64(pl.uniformSize)}}, //nolint:gosec // positive size
		},
	})
	if err != nil {
		slogger().Warn("native: uniform bind group", "pass", p.label, "err", err)
		return nil, false
	}
	p.cb.transientGroups = append(p.cb.transientGroups, group)
	return group, true
}
