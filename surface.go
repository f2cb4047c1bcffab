package offscreen

import "github.com/gogpu/offscreen/gpucore"

// PresentationSurface owns the drawable the post pass renders into.
type PresentationSurface interface {
	// DrawableSize returns the drawable size in pixels.
	DrawableSize() (width, height int)

	// ColorPixelFormat returns the drawable format the post pipeline targets.
	ColorPixelFormat() gpucore.PixelFormat

	// CurrentRenderPassDescriptor returns the pass that renders into the
	// current drawable, or nil when none is available this frame.
	CurrentRenderPassDescriptor() *gpucore.RenderPassDesc

	// CurrentDrawable returns the drawable to present, or nil when none is
	// available this frame.
	CurrentDrawable() gpucore.Drawable
}
