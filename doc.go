// Package offscreen renders a textured mesh in two passes.
//
// # Overview
//
// The main pass draws one mesh into an offscreen color+depth pair owned by
// the renderer. The post pass samples that color image and draws a
// full-screen quad into the pass supplied by a [PresentationSurface], then
// the drawable is presented and the command buffer committed.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/offscreen"
//	    "github.com/gogpu/offscreen/asset"
//	    "github.com/gogpu/offscreen/backend/native"
//	    "github.com/gogpu/offscreen/surface"
//	)
//
//	dev, err := native.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dev.Close()
//
//	geometry, err := asset.SphereLoader{TexturePath: "earth.png"}.Load(dev, "sphere")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	surf, err := surface.NewHeadless(dev, 800, 600, surface.PNGSink{Dir: "out"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	r, err := offscreen.NewRenderer(dev, surf, geometry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Destroy()
//
//	w, h := surf.DrawableSize()
//	res := r.Draw(w, h)
//
// # Components
//
//   - [PipelineCatalog] builds the main and post pipelines and the depth state.
//   - [TargetAllocator] owns the offscreen color and depth textures and
//     replaces them as a pair on resize.
//   - [Renderer] runs the per-frame state machine and reports each tick
//     as a [FrameResult].
//
// # Frame Skipping
//
// Every per-frame precondition (command buffer, mesh, targets matching the
// drawable size, pass encoders, presentation pass descriptor, drawable) is
// checked in order. A missing one aborts the frame: the command buffer is
// discarded, the skip is logged at debug level and reported through
// [FrameResult.Skip]. The next frame checks everything again.
//
// # Logging
//
// The package logs through [log/slog] and is silent by default. See
// [SetLogger].
package offscreen
