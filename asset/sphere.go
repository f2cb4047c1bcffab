// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package asset

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/offscreen/gpucore"
)

// Sphere generates a UV sphere as an indexed triangle list.
//
// Rings run from the north pole (v=0) to the south pole (v=1); segments
// wrap around the Y axis with a duplicated seam so u spans [0, 1].
func Sphere(center mgl32.Vec3, radius float32, rings, segments int) *MeshData {
	if rings < 2 {
		rings = 2
	}
	if segments < 3 {
		segments = 3
	}
	m := &MeshData{
		Vertices: make([]Vertex, 0, (rings+1)*(segments+1)),
		Indices:  make([]uint32, 0, rings*segments*6),
		Topology: gpucore.PrimitiveTopologyTriangle,
	}
	for r := 0; r <= rings; r++ {
		v := float32(r) / float32(rings)
		theta := float64(v) * math.Pi
		for s := 0; s <= segments; s++ {
			u := float32(s) / float32(segments)
			phi := float64(u) * 2 * math.Pi
			n := mgl32.Vec3{
				float32(math.Sin(theta) * math.Cos(phi)),
				float32(math.Cos(theta)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			p := center.Add(n.Mul(radius))
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{p.X(), p.Y(), p.Z()},
				Normal:   [3]float32{n.X(), n.Y(), n.Z()},
				UV:       [2]float32{u, v},
			})
		}
	}
	row := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*row + uint32(s)
			b := a + row
			m.Indices = append(m.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return m
}
