package gputest

import (
	"errors"

	"github.com/gogpu/offscreen/gpucore"
)

// DrawCall is one recorded draw.
type DrawCall struct {
	Indexed     bool
	Topology    gpucore.PrimitiveTopology
	Count       int
	First       int
	IndexType   gpucore.IndexType
	IndexBuffer gpucore.BufferID
	Pipeline    gpucore.RenderPipelineID
}

// Pass is one recorded render pass.
type Pass struct {
	Desc             gpucore.RenderPassDesc
	Pipeline         gpucore.RenderPipelineID
	DepthStencil     gpucore.DepthStencilStateID
	VertexBuffers    map[int]gpucore.BufferID
	VertexBytes      map[int][]byte
	FragmentTextures map[int]gpucore.TextureID
	Draws            []DrawCall
	Ended            bool
}

// CommandBuffer is a recorded command buffer.
type CommandBuffer struct {
	Label     string
	Passes    []*Pass
	Presented []gpucore.Drawable
	Committed bool
	Discarded bool

	dev  *Device
	open *Pass
}

var _ gpucore.CommandBuffer = (*CommandBuffer)(nil)

// BeginRenderPass implements gpucore.CommandBuffer.
func (c *CommandBuffer) BeginRenderPass(desc *gpucore.RenderPassDesc) (gpucore.RenderPassEncoder, error) {
	if c.open != nil {
		return nil, errors.New("gputest: render pass already open")
	}
	if c.dev.FailRenderPass != nil && c.dev.FailRenderPass(desc) {
		return nil, ErrInjected
	}
	p := &Pass{
		Desc:             *desc,
		VertexBuffers:    make(map[int]gpucore.BufferID),
		VertexBytes:      make(map[int][]byte),
		FragmentTextures: make(map[int]gpucore.TextureID),
	}
	c.Passes = append(c.Passes, p)
	c.open = p
	return &encoder{cb: c, pass: p}, nil
}

// Present implements gpucore.CommandBuffer.
func (c *CommandBuffer) Present(d gpucore.Drawable) {
	c.Presented = append(c.Presented, d)
}

// Commit implements gpucore.CommandBuffer. Presented drawables are
// delivered immediately since the recorded work completes synchronously.
func (c *CommandBuffer) Commit() error {
	if c.dev.FailCommit {
		return ErrInjected
	}
	c.Committed = true
	for _, d := range c.Presented {
		d.Present()
	}
	return nil
}

// Discard implements gpucore.CommandBuffer.
func (c *CommandBuffer) Discard() {
	c.Discarded = true
	c.open = nil
}

// DrawCount returns the number of draws across all passes.
func (c *CommandBuffer) DrawCount() int {
	n := 0
	for _, p := range c.Passes {
		n += len(p.Draws)
	}
	return n
}

type encoder struct {
	cb   *CommandBuffer
	pass *Pass
}

func (e *encoder) SetRenderPipeline(id gpucore.RenderPipelineID) { e.pass.Pipeline = id }

func (e *encoder) SetDepthStencilState(id gpucore.DepthStencilStateID) { e.pass.DepthStencil = id }

func (e *encoder) SetVertexBuffer(id gpucore.BufferID, _ int, slot int) {
	e.pass.VertexBuffers[slot] = id
}

func (e *encoder) SetVertexBytes(data []byte, slot int) {
	e.pass.VertexBytes[slot] = append([]byte(nil), data...)
}

func (e *encoder) SetFragmentTexture(id gpucore.TextureID, slot int) {
	e.pass.FragmentTextures[slot] = id
}

func (e *encoder) DrawIndexed(topology gpucore.PrimitiveTopology, indexCount int, indexType gpucore.IndexType, indexBuffer gpucore.BufferID, indexOffset int) {
	e.pass.Draws = append(e.pass.Draws, DrawCall{
		Indexed:     true,
		Topology:    topology,
		Count:       indexCount,
		First:       indexOffset / indexType.Size(),
		IndexType:   indexType,
		IndexBuffer: indexBuffer,
		Pipeline:    e.pass.Pipeline,
	})
}

func (e *encoder) Draw(topology gpucore.PrimitiveTopology, vertexStart, vertexCount int) {
	e.pass.Draws = append(e.pass.Draws, DrawCall{
		Topology: topology,
		Count:    vertexCount,
		First:    vertexStart,
		Pipeline: e.pass.Pipeline,
	})
}

func (e *encoder) End() {
	e.pass.Ended = true
	if e.cb.open == e.pass {
		e.cb.open = nil
	}
}
