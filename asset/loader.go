// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package asset

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/offscreen/gpucore"
)

// Default sphere placement. The renderer's scene transform shifts the model
// down by 1.1 and scales it by 1/4.5, so a sphere centered at y=4.95 with
// radius 4 lands at the view center.
var (
	DefaultSphereCenter = mgl32.Vec3{0, 4.95, 0}
	DefaultSphereRadius = float32(4)
)

// SphereLoader loads a procedural UV sphere with a texture from disk.
type SphereLoader struct {
	// TexturePath is the image file to map onto the sphere. When empty a
	// checkerboard is generated.
	TexturePath string

	// Rings and Segments control tessellation. Zero selects 32×64.
	Rings, Segments int

	TextureOptions TextureOptions
}

var _ Loader = SphereLoader{}

// Load implements Loader.
func (l SphereLoader) Load(dev gpucore.Device, name string) (*Asset, error) {
	rings, segments := l.Rings, l.Segments
	if rings == 0 {
		rings = 32
	}
	if segments == 0 {
		segments = 64
	}

	var img *image.RGBA
	if l.TexturePath != "" {
		var err error
		img, err = LoadTexture(l.TexturePath, l.TextureOptions)
		if err != nil {
			return nil, err
		}
	} else {
		img = Checkerboard(256, 8,
			color.RGBA{R: 0xf2, G: 0xc1, B: 0x1d, A: 0xff},
			color.RGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff})
	}

	mesh, err := UploadMesh(dev, name, Sphere(DefaultSphereCenter, DefaultSphereRadius, rings, segments))
	if err != nil {
		return nil, fmt.Errorf("asset %q: %w", name, err)
	}
	a := &Asset{Name: name, Layout: DefaultVertexLayout(), Mesh: mesh}
	a.Texture, err = UploadTexture(dev, name+" texture", img)
	if err != nil {
		a.Release(dev)
		return nil, fmt.Errorf("asset %q: %w", name, err)
	}
	return a, nil
}
