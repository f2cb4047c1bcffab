package offscreen

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/offscreen/gpucore"
)

// OffscreenTargets is one generation of the main pass attachments.
// Color and Depth always have the same size.
type OffscreenTargets struct {
	Color, Depth  gpucore.TextureID
	Width, Height int

	// Generation increases by one on every successful Resize.
	Generation uint64
}

// Matches reports whether the targets have the given size.
func (t *OffscreenTargets) Matches(width, height int) bool {
	return t != nil && t.Width == width && t.Height == height
}

// TargetAllocator owns the offscreen color and depth textures.
//
// Both textures are replaced together: the new pair is fully built before
// it is published with a single atomic store, and the previous pair is
// destroyed right after the store. Current never returns a half-built
// pair, but a pair loaded before a Resize is invalid once Resize returns.
// Callers must serialize Resize against frames that use the targets;
// Renderer does so with its mutex. Resize itself is not safe for
// concurrent use.
type TargetAllocator struct {
	device     gpucore.Device
	current    atomic.Pointer[OffscreenTargets]
	generation uint64
}

// NewTargetAllocator creates an allocator with no targets.
func NewTargetAllocator(device gpucore.Device) *TargetAllocator {
	return &TargetAllocator{device: device}
}

// Current returns the published targets, or nil before the first Resize.
func (a *TargetAllocator) Current() *OffscreenTargets {
	return a.current.Load()
}

// Resize builds a new target pair of the given size and publishes it.
//
// A zero or negative dimension defers allocation and returns the current
// pair unchanged. On error the current pair stays published.
func (a *TargetAllocator) Resize(width, height int) (*OffscreenTargets, error) {
	if width <= 0 || height <= 0 {
		Logger().Debug("offscreen: resize deferred", "width", width, "height", height)
		return a.current.Load(), nil
	}

	color, err := a.device.CreateTexture(&gpucore.TextureDesc{
		Label:   "offscreen color",
		Width:   width,
		Height:  height,
		Format:  OffscreenColorFormat,
		Usage:   gpucore.TextureUsageShaderRead | gpucore.TextureUsageRenderTarget,
		Storage: gpucore.StorageModeManaged,
	})
	if err != nil {
		return a.current.Load(), fmt.Errorf("offscreen: color target %dx%d: %w", width, height, err)
	}
	depth, err := a.device.CreateTexture(&gpucore.TextureDesc{
		Label:   "offscreen depth",
		Width:   width,
		Height:  height,
		Format:  OffscreenDepthFormat,
		Usage:   gpucore.TextureUsageRenderTarget,
		Storage: gpucore.StorageModePrivate,
	})
	if err != nil {
		a.device.DestroyTexture(color)
		return a.current.Load(), fmt.Errorf("offscreen: depth target %dx%d: %w", width, height, err)
	}

	a.generation++
	next := &OffscreenTargets{
		Color:      color,
		Depth:      depth,
		Width:      width,
		Height:     height,
		Generation: a.generation,
	}
	if prev := a.current.Swap(next); prev != nil {
		a.release(prev)
	}
	Logger().Info("offscreen: targets allocated",
		"width", width, "height", height, "generation", next.Generation)
	return next, nil
}

// Destroy releases the current pair.
func (a *TargetAllocator) Destroy() {
	if prev := a.current.Swap(nil); prev != nil {
		a.release(prev)
	}
}

func (a *TargetAllocator) release(t *OffscreenTargets) {
	a.device.DestroyTexture(t.Color)
	a.device.DestroyTexture(t.Depth)
}
