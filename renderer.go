package offscreen

import (
	"fmt"
	"sync"

	"github.com/gogpu/offscreen/asset"
	"github.com/gogpu/offscreen/gpucore"
)

// Renderer draws one textured mesh through an offscreen pass and composites
// the result onto a presentation surface.
//
// Draw and Resize are serialized by an internal mutex. GPU objects other
// than the offscreen targets are immutable after NewRenderer returns.
type Renderer struct {
	mu sync.Mutex

	device   gpucore.Device
	surface  PresentationSurface
	geometry *asset.Asset
	opts     rendererOptions

	library      gpucore.LibraryID
	catalog      *PipelineCatalog
	depthState   gpucore.DepthStencilStateID
	mainPipeline gpucore.RenderPipelineID
	postPipeline gpucore.RenderPipelineID
	targets      *TargetAllocator
	quad         []byte

	stats     FrameStats
	destroyed bool
}

// NewRenderer builds every GPU object the renderer needs and allocates the
// offscreen targets at the surface's current drawable size.
//
// The renderer takes ownership of geometry and releases it in Destroy.
// geometry may be nil, in which case every frame is skipped with SkipNoMesh.
//
// Missing shader entry points or unusable formats disable the affected
// pipeline without failing. A missing device or surface, an uncompilable
// shader library or a depth state that cannot be created are errors.
func NewRenderer(device gpucore.Device, surface PresentationSurface, geometry *asset.Asset, opts ...Option) (*Renderer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if surface == nil {
		return nil, ErrNilSurface
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	propagateLogger(device)

	lib, err := device.CreateShaderLibrary(o.shaderSource, o.label+" shaders")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShaderLibrary, err)
	}

	r := &Renderer{
		device:   device,
		surface:  surface,
		geometry: geometry,
		opts:     o,
		library:  lib,
		catalog:  NewPipelineCatalog(device, lib),
		targets:  NewTargetAllocator(device),
		quad:     quadBytes(),
	}

	r.depthState, err = r.catalog.BuildDepthStencilState()
	if err != nil {
		device.DestroyShaderLibrary(lib)
		return nil, err
	}

	layout := asset.DefaultVertexLayout()
	if geometry != nil {
		layout = geometry.Layout
	}
	r.mainPipeline = r.catalog.BuildMainPipeline(layout, OffscreenColorFormat, OffscreenDepthFormat)
	r.postPipeline = r.catalog.BuildPostPipeline(QuadVertexLayout(), surface.ColorPixelFormat())

	if _, err := r.Resize(surface.DrawableSize()); err != nil {
		r.catalog.Destroy()
		device.DestroyShaderLibrary(lib)
		return nil, err
	}

	Logger().Info("offscreen: renderer ready",
		"main_pipeline", r.mainPipeline != gpucore.InvalidID,
		"post_pipeline", r.postPipeline != gpucore.InvalidID,
		"surface_format", surface.ColorPixelFormat())
	return r, nil
}

// Resize reallocates the offscreen targets. It is called once per
// drawable size change; zero dimensions are ignored.
func (r *Renderer) Resize(width, height int) (*OffscreenTargets, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.targets.Resize(width, height)
}

// Targets returns the current offscreen targets, or nil.
func (r *Renderer) Targets() *OffscreenTargets {
	return r.targets.Current()
}

// Stats returns the accumulated frame counters.
func (r *Renderer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Draw renders one frame for a drawable of the given size.
//
// A frame whose preconditions are not met is abandoned before submission
// and reported through FrameResult.Skip; Draw never fails.
func (r *Renderer) Draw(width, height int) FrameResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.drawFrame(width, height)
	r.stats.Frames++
	if res.Submitted() {
		r.stats.Submitted++
	} else {
		r.stats.Skipped++
		r.stats.LastSkip = res.Skip
		Logger().Debug("offscreen: frame skipped",
			"reason", res.Skip, "state", res.Reached, "width", width, "height", height)
	}
	return res
}

func (r *Renderer) drawFrame(width, height int) FrameResult {
	res := FrameResult{Reached: FrameStateIdle}
	if r.destroyed {
		res.Skip = SkipNoTargets
		return res
	}

	cb, err := r.device.NewCommandBuffer(r.opts.label + " frame")
	if err != nil || cb == nil {
		res.Skip = SkipNoCommandBuffer
		return res
	}
	committed := false
	defer func() {
		if !committed {
			cb.Discard()
		}
	}()

	if r.geometry == nil || r.geometry.Mesh == nil {
		res.Skip = SkipNoMesh
		return res
	}

	// Load once: the whole frame uses this pair even if a resize
	// publishes a new one meanwhile.
	t := r.targets.Current()
	if !t.Matches(width, height) {
		res.Skip = SkipNoTargets
		return res
	}
	res.Generation = t.Generation

	res.Reached = FrameStateMainPassEncoding
	enc, err := cb.BeginRenderPass(r.mainPassDesc(t))
	if err != nil || enc == nil {
		res.Skip = SkipNoMainEncoder
		return res
	}
	res.MainDraws = r.encodeMainPass(enc, aspectRatio(width, height))
	enc.End()
	res.Reached = FrameStateMainPassDone

	postDesc := r.surface.CurrentRenderPassDescriptor()
	if postDesc == nil || postDesc.Color.Texture == t.Color || postDesc.Color.Texture == t.Depth {
		res.Skip = SkipNoPassDescriptor
		return res
	}

	res.Reached = FrameStatePostPassEncoding
	penc, err := cb.BeginRenderPass(postDesc)
	if err != nil || penc == nil {
		res.Skip = SkipNoPostEncoder
		return res
	}
	res.PostDraws = r.encodePostPass(penc, t)
	penc.End()

	drawable := r.surface.CurrentDrawable()
	if drawable == nil {
		res.Skip = SkipNoDrawable
		return res
	}
	cb.Present(drawable)

	committed = true
	if err := cb.Commit(); err != nil {
		Logger().Warn("offscreen: commit failed", "err", err)
		res.Skip = SkipSubmitFailed
		return res
	}
	res.Reached = FrameStateSubmitted
	return res
}

func (r *Renderer) mainPassDesc(t *OffscreenTargets) *gpucore.RenderPassDesc {
	return &gpucore.RenderPassDesc{
		Label: r.opts.label + " main pass",
		Color: gpucore.ColorAttachment{
			Texture:    t.Color,
			Load:       gpucore.LoadActionClear,
			Store:      gpucore.StoreActionStore,
			ClearColor: r.opts.clearColor,
		},
		Depth: &gpucore.DepthAttachment{
			Texture:    t.Depth,
			Load:       gpucore.LoadActionClear,
			Store:      gpucore.StoreActionDiscard,
			ClearDepth: 1.0,
		},
	}
}

// encodeMainPass binds the mesh, texture and uniforms and returns the
// number of draws issued.
func (r *Renderer) encodeMainPass(enc gpucore.RenderPassEncoder, aspect float32) int {
	mesh := r.geometry.Mesh

	enc.SetDepthStencilState(r.depthState)
	if r.mainPipeline != gpucore.InvalidID {
		enc.SetRenderPipeline(r.mainPipeline)
	}
	for i, vb := range mesh.VertexBuffers {
		enc.SetVertexBuffer(vb.Buffer, vb.Offset, i)
	}
	if r.geometry.Texture != gpucore.InvalidID {
		enc.SetFragmentTexture(r.geometry.Texture, 0)
	}
	enc.SetVertexBytes(r.opts.transform.Uniforms(aspect).Bytes(), len(mesh.VertexBuffers))

	if r.mainPipeline == gpucore.InvalidID || len(mesh.Submeshes) == 0 {
		return 0
	}
	sm := mesh.Submeshes[0]
	enc.DrawIndexed(sm.Topology, sm.IndexCount, sm.IndexType, sm.IndexBuffer, sm.IndexOffset)
	return 1
}

// encodePostPass samples the offscreen color target onto the full-screen
// quad and returns the number of draws issued.
func (r *Renderer) encodePostPass(enc gpucore.RenderPassEncoder, t *OffscreenTargets) int {
	if r.postPipeline != gpucore.InvalidID {
		enc.SetRenderPipeline(r.postPipeline)
	}
	enc.SetFragmentTexture(t.Color, 0)
	enc.SetVertexBytes(r.quad, 0)
	if r.postPipeline == gpucore.InvalidID {
		return 0
	}
	enc.Draw(gpucore.PrimitiveTopologyTriangleStrip, 0, len(FullscreenQuad()))
	return 1
}

// Destroy releases every GPU object the renderer owns, including the
// geometry passed to NewRenderer. Later Draw calls are skipped.
func (r *Renderer) Destroy() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.catalog.Destroy()
	r.targets.Destroy()
	r.device.DestroyShaderLibrary(r.library)
	r.geometry.Release(r.device)
}
