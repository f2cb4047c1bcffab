package gputest

import "github.com/gogpu/offscreen/gpucore"

// Drawable is a presentable texture that counts its presentations.
type Drawable struct {
	Tex      gpucore.TextureID
	Presents int
}

// Texture implements gpucore.Drawable.
func (d *Drawable) Texture() gpucore.TextureID { return d.Tex }

// Present implements gpucore.Drawable.
func (d *Drawable) Present() { d.Presents++ }

// Surface is a scriptable presentation surface backed by a Device.
type Surface struct {
	Width, Height int
	Format        gpucore.PixelFormat

	// NoPassDescriptor makes CurrentRenderPassDescriptor return nil.
	NoPassDescriptor bool

	// NoDrawable makes CurrentDrawable return nil.
	NoDrawable bool

	// PassTarget overrides the color texture of the pass descriptor.
	PassTarget gpucore.TextureID

	Drawable *Drawable
}

// NewSurface creates a surface with a BGRA8Unorm drawable texture on dev.
func NewSurface(dev *Device, width, height int) *Surface {
	tex, err := dev.CreateTexture(&gpucore.TextureDesc{
		Label:  "gputest drawable",
		Width:  width,
		Height: height,
		Format: gpucore.PixelFormatBGRA8Unorm,
		Usage:  gpucore.TextureUsageRenderTarget,
	})
	if err != nil {
		panic(err)
	}
	return &Surface{
		Width:    width,
		Height:   height,
		Format:   gpucore.PixelFormatBGRA8Unorm,
		Drawable: &Drawable{Tex: tex},
	}
}

// DrawableSize returns the scripted size.
func (s *Surface) DrawableSize() (int, int) { return s.Width, s.Height }

// ColorPixelFormat returns the drawable format.
func (s *Surface) ColorPixelFormat() gpucore.PixelFormat { return s.Format }

// CurrentRenderPassDescriptor returns a clear/store pass on the drawable.
func (s *Surface) CurrentRenderPassDescriptor() *gpucore.RenderPassDesc {
	if s.NoPassDescriptor {
		return nil
	}
	target := s.Drawable.Tex
	if s.PassTarget != gpucore.InvalidID {
		target = s.PassTarget
	}
	return &gpucore.RenderPassDesc{
		Label: "gputest present",
		Color: gpucore.ColorAttachment{
			Texture: target,
			Load:    gpucore.LoadActionClear,
			Store:   gpucore.StoreActionStore,
		},
	}
}

// CurrentDrawable returns the drawable, or nil when NoDrawable is set.
func (s *Surface) CurrentDrawable() gpucore.Drawable {
	if s.NoDrawable {
		return nil
	}
	return s.Drawable
}
