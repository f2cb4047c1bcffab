// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package asset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"io/fs"
	"os"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/gogpu/offscreen/gpucore"
)

// TextureOptions controls how a decoded image is prepared for upload.
type TextureOptions struct {
	// MaxSize limits the longer edge; larger images are downscaled.
	// Zero means no limit.
	MaxSize int

	// NoFlip keeps the source row order.
	NoFlip bool
}

// DecodeTexture decodes an image into RGBA, flipping it vertically unless
// opts.NoFlip is set.
func DecodeTexture(r io.Reader, opts TextureOptions) (*image.RGBA, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("asset: decode texture: %w", err)
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if opts.MaxSize > 0 && (w > opts.MaxSize || h > opts.MaxSize) {
		if w >= h {
			h = max(1, h*opts.MaxSize/w)
			w = opts.MaxSize
		} else {
			w = max(1, w*opts.MaxSize/h)
			h = opts.MaxSize
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	}
	if !opts.NoFlip {
		FlipVertical(dst)
	}
	return dst, nil
}

// FlipVertical reverses the row order of img in place.
func FlipVertical(img *image.RGBA) {
	h := img.Bounds().Dy()
	rowLen := img.Bounds().Dx() * 4
	tmp := make([]byte, rowLen)
	for y := 0; y < h/2; y++ {
		top := img.Pix[y*img.Stride : y*img.Stride+rowLen]
		bot := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+rowLen]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
}

// LoadTexture decodes the image file at path.
// A missing file yields an error wrapping ErrNotFound.
func LoadTexture(path string, opts TextureOptions) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: texture %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("asset: open texture: %w", err)
	}
	defer f.Close()
	return DecodeTexture(f, opts)
}

// UploadTexture creates a sampleable RGBA8Unorm texture holding img.
// The data is uploaded as linear values with no sRGB conversion.
func UploadTexture(dev gpucore.Device, label string, img *image.RGBA) (gpucore.TextureID, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	id, err := dev.CreateTexture(&gpucore.TextureDesc{
		Label:   label,
		Width:   w,
		Height:  h,
		Format:  gpucore.PixelFormatRGBA8Unorm,
		Usage:   gpucore.TextureUsageShaderRead | gpucore.TextureUsageCopyDst,
		Storage: gpucore.StorageModePrivate,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("asset: create texture: %w", err)
	}
	pix := img.Pix
	if img.Stride != w*4 {
		pix = make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			copy(pix[y*w*4:(y+1)*w*4], img.Pix[y*img.Stride:])
		}
	}
	if err := dev.WriteTexture(id, pix, w*4); err != nil {
		dev.DestroyTexture(id)
		return gpucore.InvalidID, fmt.Errorf("asset: upload texture: %w", err)
	}
	return id, nil
}

// Checkerboard returns a size×size image of alternating cells.
func Checkerboard(size, cells int, a, b color.RGBA) *image.RGBA {
	if cells < 1 {
		cells = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := max(1, size/cells)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
