package offscreen

import (
	"fmt"

	"github.com/gogpu/offscreen/gpucore"
)

// Shader entry point names the library must expose.
const (
	MainVertexFunction   = "vertex_main"
	MainFragmentFunction = "fragment_main"
	PostVertexFunction   = "vertex_post"
	PostFragmentFunction = "fragment_post"
)

// Fixed offscreen attachment formats.
const (
	OffscreenColorFormat = gpucore.PixelFormatRGBA8Unorm
	OffscreenDepthFormat = gpucore.PixelFormatDepth32Float
)

// mainDepthStencil is the depth state of the main pass.
var mainDepthStencil = gpucore.DepthStencilDesc{
	Label:        "main depth",
	Compare:      gpucore.CompareFunctionLess,
	WriteEnabled: true,
}

// PipelineCatalog builds and owns the render pipelines and the depth state.
//
// Pipeline construction never fails loudly: any problem is logged and the
// pipeline is reported as gpucore.InvalidID. The depth state is the only
// object whose failure is an error.
type PipelineCatalog struct {
	device  gpucore.Device
	library gpucore.LibraryID

	depthState gpucore.DepthStencilStateID
	pipelines  []gpucore.RenderPipelineID
}

// NewPipelineCatalog creates a catalog drawing entry points from library.
func NewPipelineCatalog(device gpucore.Device, library gpucore.LibraryID) *PipelineCatalog {
	return &PipelineCatalog{device: device, library: library}
}

// BuildDepthStencilState returns the depth-less-than, write-enabled state,
// creating it on first use.
func (c *PipelineCatalog) BuildDepthStencilState() (gpucore.DepthStencilStateID, error) {
	if c.depthState != gpucore.InvalidID {
		return c.depthState, nil
	}
	desc := mainDepthStencil
	id, err := c.device.CreateDepthStencilState(&desc)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%w: %w", ErrDepthStencilState, err)
	}
	if id == gpucore.InvalidID {
		return gpucore.InvalidID, ErrDepthStencilState
	}
	c.depthState = id
	return id, nil
}

// BuildMainPipeline builds the pipeline drawing the mesh into the offscreen
// targets. It samples one texture and reads UniformsSize bytes of vertex
// uniforms.
func (c *PipelineCatalog) BuildMainPipeline(layout gpucore.VertexLayout, colorFormat, depthFormat gpucore.PixelFormat) gpucore.RenderPipelineID {
	return c.build(&gpucore.RenderPipelineDesc{
		Label:             "main",
		Library:           c.library,
		VertexFunction:    MainVertexFunction,
		FragmentFunction:  MainFragmentFunction,
		VertexLayout:      layout,
		ColorFormat:       colorFormat,
		DepthFormat:       depthFormat,
		DepthStencil:      mainDepthStencil,
		Topology:          gpucore.PrimitiveTopologyTriangle,
		VertexUniformSize: UniformsSize,
		FragmentTextures:  1,
	})
}

// BuildPostPipeline builds the pipeline compositing the offscreen color
// image onto a target of colorFormat.
func (c *PipelineCatalog) BuildPostPipeline(layout gpucore.VertexLayout, colorFormat gpucore.PixelFormat) gpucore.RenderPipelineID {
	return c.build(&gpucore.RenderPipelineDesc{
		Label:            "post",
		Library:          c.library,
		VertexFunction:   PostVertexFunction,
		FragmentFunction: PostFragmentFunction,
		VertexLayout:     layout,
		ColorFormat:      colorFormat,
		Topology:         gpucore.PrimitiveTopologyTriangleStrip,
		FragmentTextures: 1,
	})
}

func (c *PipelineCatalog) build(desc *gpucore.RenderPipelineDesc) gpucore.RenderPipelineID {
	log := Logger().With("pipeline", desc.Label)
	for _, fn := range []string{desc.VertexFunction, desc.FragmentFunction} {
		if !c.device.HasFunction(c.library, fn) {
			log.Warn("offscreen: shader function missing, pipeline disabled", "function", fn)
			return gpucore.InvalidID
		}
	}
	if err := desc.Validate(); err != nil {
		log.Warn("offscreen: invalid pipeline descriptor, pipeline disabled", "err", err)
		return gpucore.InvalidID
	}
	id, err := c.device.CreateRenderPipeline(desc)
	if err != nil {
		log.Warn("offscreen: pipeline creation failed, pipeline disabled", "err", err)
		return gpucore.InvalidID
	}
	c.pipelines = append(c.pipelines, id)
	log.Debug("offscreen: pipeline built", "color", desc.ColorFormat, "depth", desc.DepthFormat)
	return id
}

// Destroy releases every pipeline and the depth state built by the catalog.
func (c *PipelineCatalog) Destroy() {
	for _, id := range c.pipelines {
		c.device.DestroyRenderPipeline(id)
	}
	c.pipelines = nil
	if c.depthState != gpucore.InvalidID {
		c.device.DestroyDepthStencilState(c.depthState)
		c.depthState = gpucore.InvalidID
	}
}
