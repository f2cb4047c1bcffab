package offscreen

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/offscreen/asset"
	"github.com/gogpu/offscreen/gpucore"
	"github.com/gogpu/offscreen/internal/gputest"
)

type fixture struct {
	dev      *gputest.Device
	surf     *gputest.Surface
	geometry *asset.Asset
	r        *Renderer
}

func newFixture(t *testing.T, w, h int, opts ...Option) *fixture {
	t.Helper()
	dev := gputest.NewDevice()
	geometry, err := asset.SphereLoader{Rings: 4, Segments: 8}.Load(dev, "sphere")
	if err != nil {
		t.Fatal(err)
	}
	surf := gputest.NewSurface(dev, w, h)
	r, err := NewRenderer(dev, surf, geometry, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{dev: dev, surf: surf, geometry: geometry, r: r}
}

func TestDrawSubmitsTwoPasses(t *testing.T) {
	f := newFixture(t, 64, 48)
	res := f.r.Draw(64, 48)
	if !res.Submitted() || res.Reached != FrameStateSubmitted {
		t.Fatalf("Draw() = %+v", res)
	}
	if res.MainDraws != 1 || res.PostDraws != 1 {
		t.Errorf("draws = %d/%d, want 1/1", res.MainDraws, res.PostDraws)
	}

	cb := f.dev.LastCommandBuffer()
	if !cb.Committed || cb.Discarded {
		t.Fatalf("command buffer committed=%v discarded=%v", cb.Committed, cb.Discarded)
	}
	if len(cb.Passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(cb.Passes))
	}
	if f.surf.Drawable.Presents != 1 {
		t.Errorf("drawable presented %d times, want 1", f.surf.Drawable.Presents)
	}

	targets := f.r.Targets()
	main, post := cb.Passes[0], cb.Passes[1]

	// Main pass attachments.
	if main.Desc.Color.Texture != targets.Color || main.Desc.Color.Load != gpucore.LoadActionClear ||
		main.Desc.Color.Store != gpucore.StoreActionStore {
		t.Errorf("main color attachment = %+v", main.Desc.Color)
	}
	if main.Desc.Color.ClearColor != DefaultClearColor {
		t.Errorf("clear color = %+v", main.Desc.Color.ClearColor)
	}
	if d := main.Desc.Depth; d == nil || d.Texture != targets.Depth || d.Store != gpucore.StoreActionDiscard ||
		d.Load != gpucore.LoadActionClear || d.ClearDepth != 1 {
		t.Errorf("main depth attachment = %+v", d)
	}

	// Main pass bindings.
	if main.DepthStencil == gpucore.InvalidID || main.Pipeline == gpucore.InvalidID {
		t.Error("main pass missing depth state or pipeline")
	}
	if main.VertexBuffers[0] != f.geometry.Mesh.VertexBuffers[0].Buffer {
		t.Error("mesh vertex buffer not at slot 0")
	}
	if got := len(main.VertexBytes[1]); got != UniformsSize {
		t.Errorf("uniforms at slot 1 = %d bytes, want %d", got, UniformsSize)
	}
	if main.FragmentTextures[0] != f.geometry.Texture {
		t.Error("mesh texture not at fragment slot 0")
	}
	sm := f.geometry.Mesh.Submeshes[0]
	draw := main.Draws[0]
	if !draw.Indexed || draw.Count != sm.IndexCount || draw.IndexBuffer != sm.IndexBuffer || draw.Topology != sm.Topology {
		t.Errorf("main draw = %+v", draw)
	}

	// Post pass samples the offscreen color and draws a 4-vertex strip.
	if post.Desc.Color.Texture != f.surf.Drawable.Tex {
		t.Error("post pass does not target the drawable")
	}
	if post.FragmentTextures[0] != targets.Color {
		t.Error("offscreen color not bound at fragment slot 0")
	}
	if got := len(post.VertexBytes[0]); got != 64 {
		t.Errorf("quad bytes = %d, want 64", got)
	}
	pd := post.Draws[0]
	if pd.Indexed || pd.Topology != gpucore.PrimitiveTopologyTriangleStrip || pd.Count != 4 || pd.First != 0 {
		t.Errorf("post draw = %+v", pd)
	}
	for _, p := range cb.Passes {
		if !p.Ended {
			t.Error("pass not ended")
		}
	}
}

func TestPostPassNeverWritesOffscreenColor(t *testing.T) {
	f := newFixture(t, 32, 32)
	f.r.Draw(32, 32)
	post := f.dev.LastCommandBuffer().Passes[1]
	targets := f.r.Targets()
	if post.Desc.Color.Texture == targets.Color || post.Desc.Depth != nil {
		t.Error("post pass writes to an offscreen target")
	}

	// A surface handing out the offscreen color as its target is refused.
	f.surf.PassTarget = targets.Color
	res := f.r.Draw(32, 32)
	if res.Skip != SkipNoPassDescriptor {
		t.Errorf("Skip = %v, want %v", res.Skip, SkipNoPassDescriptor)
	}
	if len(f.dev.LastCommandBuffer().Passes) != 1 {
		t.Error("post pass encoded into the offscreen color target")
	}
}

func TestDrawSkips(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *fixture)
		w, h    int
		want    SkipReason
		reached FrameState
	}{
		{"no command buffer", func(f *fixture) { f.dev.FailCommandBuffer = true }, 32, 32, SkipNoCommandBuffer, FrameStateIdle},
		{"stale targets", func(*fixture) {}, 64, 32, SkipNoTargets, FrameStateIdle},
		{"no main encoder", func(f *fixture) {
			f.dev.FailRenderPass = func(d *gpucore.RenderPassDesc) bool { return d.Depth != nil }
		}, 32, 32, SkipNoMainEncoder, FrameStateMainPassEncoding},
		{"no pass descriptor", func(f *fixture) { f.surf.NoPassDescriptor = true }, 32, 32, SkipNoPassDescriptor, FrameStateMainPassDone},
		{"no post encoder", func(f *fixture) {
			f.dev.FailRenderPass = func(d *gpucore.RenderPassDesc) bool { return d.Depth == nil }
		}, 32, 32, SkipNoPostEncoder, FrameStatePostPassEncoding},
		{"no drawable", func(f *fixture) { f.surf.NoDrawable = true }, 32, 32, SkipNoDrawable, FrameStatePostPassEncoding},
		{"submit failed", func(f *fixture) { f.dev.FailCommit = true }, 32, 32, SkipSubmitFailed, FrameStatePostPassEncoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 32, 32)
			tt.setup(f)
			res := f.r.Draw(tt.w, tt.h)
			if res.Skip != tt.want || res.Reached != tt.reached {
				t.Errorf("Draw() = %v at %v, want %v at %v", res.Skip, res.Reached, tt.want, tt.reached)
			}
			if res.Submitted() {
				t.Error("skipped frame reported as submitted")
			}
			if f.surf.Drawable.Presents != 0 {
				t.Error("skipped frame presented the drawable")
			}
			if cb := f.dev.LastCommandBuffer(); cb != nil && tt.want != SkipSubmitFailed && !cb.Discarded {
				t.Error("skipped frame did not discard its command buffer")
			}
			if stats := f.r.Stats(); stats.Skipped != 1 || stats.LastSkip != tt.want {
				t.Errorf("stats = %+v", stats)
			}
		})
	}
}

func TestFrameRecoversAfterSkip(t *testing.T) {
	f := newFixture(t, 32, 32)
	f.surf.NoDrawable = true
	if res := f.r.Draw(32, 32); res.Skip != SkipNoDrawable {
		t.Fatalf("Skip = %v", res.Skip)
	}
	f.surf.NoDrawable = false
	if res := f.r.Draw(32, 32); !res.Submitted() {
		t.Fatalf("frame after a skip = %+v", res)
	}
	stats := f.r.Stats()
	if stats.Frames != 2 || stats.Submitted != 1 || stats.Skipped != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDrawWithoutMesh(t *testing.T) {
	dev := gputest.NewDevice()
	surf := gputest.NewSurface(dev, 16, 16)
	r, err := NewRenderer(dev, surf, nil)
	if err != nil {
		t.Fatal(err)
	}
	res := r.Draw(16, 16)
	if res.Skip != SkipNoMesh {
		t.Errorf("Skip = %v, want %v", res.Skip, SkipNoMesh)
	}
	if cb := dev.LastCommandBuffer(); len(cb.Passes) != 0 || !cb.Discarded {
		t.Error("frame without mesh encoded passes or leaked its command buffer")
	}
}

func TestDrawMeshWithoutSubmeshes(t *testing.T) {
	f := newFixture(t, 16, 16)
	f.geometry.Mesh.Submeshes = nil
	res := f.r.Draw(16, 16)
	if !res.Submitted() || res.MainDraws != 0 || res.PostDraws != 1 {
		t.Fatalf("Draw() = %+v", res)
	}
	main := f.dev.LastCommandBuffer().Passes[0]
	if !main.Ended || len(main.Draws) != 0 {
		t.Errorf("main pass ended=%v draws=%d", main.Ended, len(main.Draws))
	}
}

func TestAbsentPipelinesKeepRendering(t *testing.T) {
	src := strings.ReplaceAll(DefaultShaderSource, "fn fragment_main", "fn fragment_unused")
	src = strings.ReplaceAll(src, "fn fragment_post", "fn fragment_unused_post")
	f := newFixture(t, 16, 16, WithShaderSource(src))
	if f.r.mainPipeline != gpucore.InvalidID || f.r.postPipeline != gpucore.InvalidID {
		t.Fatal("pipelines should be absent")
	}
	for i := 0; i < 10; i++ {
		res := f.r.Draw(16, 16)
		if !res.Submitted() || res.MainDraws != 0 || res.PostDraws != 0 {
			t.Fatalf("frame %d = %+v", i, res)
		}
	}
	cb := f.dev.LastCommandBuffer()
	if cb.DrawCount() != 0 || len(cb.Passes) != 2 {
		t.Errorf("draws=%d passes=%d", cb.DrawCount(), len(cb.Passes))
	}
	if cb.Passes[0].DepthStencil == gpucore.InvalidID {
		t.Error("depth state not bound without a pipeline")
	}
}

func TestNoTextureSkipsBinding(t *testing.T) {
	f := newFixture(t, 16, 16)
	f.dev.DestroyTexture(f.geometry.Texture)
	f.geometry.Texture = gpucore.InvalidID
	if res := f.r.Draw(16, 16); !res.Submitted() {
		t.Fatalf("Draw() = %+v", res)
	}
	if _, ok := f.dev.LastCommandBuffer().Passes[0].FragmentTextures[0]; ok {
		t.Error("texture bound although none is loaded")
	}
}

func TestResizeBetweenFrames(t *testing.T) {
	f := newFixture(t, 32, 32)
	first := f.r.Draw(32, 32)

	f.surf.Width, f.surf.Height = 50, 20
	if res := f.r.Draw(50, 20); res.Skip != SkipNoTargets {
		t.Fatalf("frame before resize = %v, want %v", res.Skip, SkipNoTargets)
	}
	targets, err := f.r.Resize(50, 20)
	if err != nil {
		t.Fatal(err)
	}
	res := f.r.Draw(50, 20)
	if !res.Submitted() || res.Generation != targets.Generation || res.Generation == first.Generation {
		t.Fatalf("frame after resize = %+v", res)
	}
	main := f.dev.LastCommandBuffer().Passes[0]
	if main.Desc.Color.Texture != targets.Color || main.Desc.Depth.Texture != targets.Depth {
		t.Error("frame mixed target generations")
	}

	// The aspect ratio flows into the projection.
	u := f.r.opts.transform.Uniforms(2.5).Bytes()
	if string(main.VertexBytes[1]) != string(u) {
		t.Error("uniforms do not use the drawable aspect ratio")
	}
}

func TestClearColorOption(t *testing.T) {
	c := gpucore.ClearColor{R: 0.1, G: 0.2, B: 0.3, A: 1}
	f := newFixture(t, 8, 8, WithClearColor(c))
	f.r.Draw(8, 8)
	if got := f.dev.LastCommandBuffer().Passes[0].Desc.Color.ClearColor; got != c {
		t.Errorf("clear color = %+v, want %+v", got, c)
	}
}

func TestNewRendererErrors(t *testing.T) {
	dev := gputest.NewDevice()
	surf := gputest.NewSurface(dev, 8, 8)

	if _, err := NewRenderer(nil, surf, nil); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device: %v", err)
	}
	if _, err := NewRenderer(dev, nil, nil); !errors.Is(err, ErrNilSurface) {
		t.Errorf("nil surface: %v", err)
	}

	dev.FailLibrary = true
	if _, err := NewRenderer(dev, surf, nil); !errors.Is(err, ErrShaderLibrary) {
		t.Errorf("library failure: %v", err)
	}
	dev.FailLibrary = false

	dev.FailDepthStencil = true
	if _, err := NewRenderer(dev, surf, nil); !errors.Is(err, ErrDepthStencilState) {
		t.Errorf("depth state failure: %v", err)
	}
}

func TestNewRendererDefersZeroSize(t *testing.T) {
	dev := gputest.NewDevice()
	surf := gputest.NewSurface(dev, 8, 8)
	surf.Width, surf.Height = 0, 0
	r, err := NewRenderer(dev, surf, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Targets() != nil {
		t.Error("targets allocated for a zero-size drawable")
	}
}

func TestDestroyReleasesEverything(t *testing.T) {
	f := newFixture(t, 8, 8)
	f.r.Draw(8, 8)
	f.r.Destroy()
	f.r.Destroy()

	for id, p := range f.dev.Pipelines {
		if !p.Destroyed {
			t.Errorf("pipeline %d alive", id)
		}
	}
	for id, l := range f.dev.Libraries {
		if !l.Destroyed {
			t.Errorf("library %d alive", id)
		}
	}
	// Only the surface drawable remains.
	if f.dev.LiveTextures() != 1 {
		t.Errorf("live textures = %d, want 1", f.dev.LiveTextures())
	}
	if res := f.r.Draw(8, 8); res.Submitted() {
		t.Error("Draw after Destroy submitted a frame")
	}
}
