// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/offscreen/gpucore"
)

// Bind group indices shared by every pipeline.
const (
	uniformGroup = 0
	textureGroup = 1
)

// layoutCache owns the bind group layouts every pipeline is built from.
// Layouts are created lazily on first use.
type layoutCache struct {
	device hal.Device

	uniform hal.BindGroupLayout
	texture hal.BindGroupLayout
	empty   hal.BindGroupLayout

	emptyGroup hal.BindGroup
}

func newLayoutCache(device hal.Device) *layoutCache {
	return &layoutCache{device: device}
}

func (c *layoutCache) uniformLayout() (hal.BindGroupLayout, error) {
	if c.uniform != nil {
		return c.uniform, nil
	}
	l, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "offscreen_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create uniform layout: %w", err)
	}
	c.uniform = l
	return l, nil
}

func (c *layoutCache) textureLayout() (hal.BindGroupLayout, error) {
	if c.texture != nil {
		return c.texture, nil
	}
	l, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "offscreen_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create texture layout: %w", err)
	}
	c.texture = l
	return l, nil
}

// emptyBinding returns the placeholder layout and group used for group 0
// when a pipeline samples a texture but reads no uniforms.
func (c *layoutCache) emptyBinding() (hal.BindGroupLayout, hal.BindGroup, error) {
	if c.empty != nil {
		return c.empty, c.emptyGroup, nil
	}
	l, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{Label: "offscreen_empty_layout"})
	if err != nil {
		return nil, nil, fmt.Errorf("native: create empty layout: %w", err)
	}
	g, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{Label: "offscreen_empty_group", Layout: l})
	if err != nil {
		c.device.DestroyBindGroupLayout(l)
		return nil, nil, fmt.Errorf("native: create empty group: %w", err)
	}
	c.empty, c.emptyGroup = l, g
	return l, g, nil
}

func (c *layoutCache) destroy() {
	if c.emptyGroup != nil {
		c.device.DestroyBindGroup(c.emptyGroup)
		c.emptyGroup = nil
	}
	for _, l := range []*hal.BindGroupLayout{&c.uniform, &c.texture, &c.empty} {
		if *l != nil {
			c.device.DestroyBindGroupLayout(*l)
			*l = nil
		}
	}
}

// pipeline is a render pipeline together with what the encoder needs to
// bind its resources.
type pipeline struct {
	raw    hal.RenderPipeline
	layout hal.PipelineLayout

	label        string
	topology     gpucore.PrimitiveTopology
	colorFormat  gpucore.PixelFormat
	depthFormat  gpucore.PixelFormat
	depthStencil gpucore.DepthStencilDesc
	bufferCount  int
	uniformSize  int
	textures     int
}

func (p *pipeline) destroy(device hal.Device) {
	device.DestroyRenderPipeline(p.raw)
	device.DestroyPipelineLayout(p.layout)
}

// groupLayouts returns the bind group layouts of a pipeline in group
// order. A pipeline that samples a texture always has a group 0.
func (d *HALDevice) groupLayouts(desc *gpucore.RenderPipelineDesc) ([]hal.BindGroupLayout, error) {
	var layouts []hal.BindGroupLayout
	switch {
	case desc.VertexUniformSize > 0:
		l, err := d.layouts.uniformLayout()
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	case desc.FragmentTextures > 0:
		l, _, err := d.layouts.emptyBinding()
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	if desc.FragmentTextures > 0 {
		l, err := d.layouts.textureLayout()
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	return layouts, nil
}

// CreateRenderPipeline implements gpucore.Device. The depth state in the
// descriptor is baked into the pipeline.
func (d *HALDevice) CreateRenderPipeline(desc *gpucore.RenderPipelineDesc) (gpucore.RenderPipelineID, error) {
	if err := desc.Validate(); err != nil {
		return gpucore.InvalidID, err
	}
	colorFormat, err := textureFormat(desc.ColorFormat)
	if err != nil {
		return gpucore.InvalidID, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return gpucore.InvalidID, ErrClosed
	}
	lib, ok := d.libraries[desc.Library]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w: library %d", ErrUnknownResource, desc.Library)
	}
	for _, fn := range []string{desc.VertexFunction, desc.FragmentFunction} {
		if _, ok := lib.functions[fn]; !ok {
			return gpucore.InvalidID, fmt.Errorf("%w: %q", gpucore.ErrMissingFunction, fn)
		}
	}

	groups, err := d.groupLayouts(desc)
	if err != nil {
		return gpucore.InvalidID, err
	}
	layout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: groups,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline layout %q: %w", desc.Label, err)
	}

	halDesc := &hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     lib.module,
			EntryPoint: desc.VertexFunction,
			Buffers:    vertexBuffers(desc.VertexLayout),
		},
		Primitive: gputypes.PrimitiveState{
			Topology: primitiveTopology(desc.Topology),
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.DefaultMultisampleState(),
		Fragment: &hal.FragmentState{
			Module:     lib.module,
			EntryPoint: desc.FragmentFunction,
			Targets: []gputypes.ColorTargetState{
				{Format: colorFormat, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
	}
	if desc.DepthFormat != gpucore.PixelFormatInvalid {
		depthFormat, err := textureFormat(desc.DepthFormat)
		if err != nil {
			d.device.DestroyPipelineLayout(layout)
			return gpucore.InvalidID, err
		}
		keep := hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		}
		halDesc.DepthStencil = &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: desc.DepthStencil.WriteEnabled,
			DepthCompare:      compareFunction(desc.DepthStencil.Compare),
			StencilFront:      keep,
			StencilBack:       keep,
		}
	}

	raw, err := d.device.CreateRenderPipeline(halDesc)
	if err != nil {
		d.device.DestroyPipelineLayout(layout)
		return gpucore.InvalidID, fmt.Errorf("native: create pipeline %q: %w", desc.Label, err)
	}
	id := gpucore.RenderPipelineID(d.newID())
	d.pipelines[id] = &pipeline{
		raw:          raw,
		layout:       layout,
		label:        desc.Label,
		topology:     desc.Topology,
		colorFormat:  desc.ColorFormat,
		depthFormat:  desc.DepthFormat,
		depthStencil: desc.DepthStencil,
		bufferCount:  desc.VertexLayout.BufferCount(),
		uniformSize:  desc.VertexUniformSize,
		textures:     desc.FragmentTextures,
	}
	slogger().Debug("native: render pipeline created", "label", desc.Label)
	return id, nil
}

// DestroyRenderPipeline implements gpucore.Device.
func (d *HALDevice) DestroyRenderPipeline(id gpucore.RenderPipelineID) {
	d.mu.Lock()
	p, ok := d.pipelines[id]
	delete(d.pipelines, id)
	d.mu.Unlock()
	if ok {
		p.destroy(d.device)
	}
}
