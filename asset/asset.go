// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package asset

import (
	"errors"

	"github.com/gogpu/offscreen/gpucore"
)

// ErrNotFound is returned when an asset or its texture file does not exist.
var ErrNotFound = errors.New("asset: not found")

// MeshBuffer is one vertex buffer of a mesh.
type MeshBuffer struct {
	Buffer gpucore.BufferID
	Offset int
}

// Submesh is an indexed range of a mesh drawn with one topology.
type Submesh struct {
	Topology    gpucore.PrimitiveTopology
	IndexCount  int
	IndexType   gpucore.IndexType
	IndexBuffer gpucore.BufferID
	IndexOffset int
}

// Mesh is device-resident geometry. It is immutable after upload.
type Mesh struct {
	VertexBuffers []MeshBuffer
	Submeshes     []Submesh
}

// Asset is a loaded mesh plus its texture.
type Asset struct {
	Name string

	// Layout describes how the vertex buffers are interleaved.
	Layout gpucore.VertexLayout

	// Mesh is nil when the asset carries no geometry.
	Mesh *Mesh

	// Texture is InvalidID when the asset carries no texture.
	Texture gpucore.TextureID
}

// Release destroys the device resources held by the asset.
func (a *Asset) Release(dev gpucore.Device) {
	if a == nil {
		return
	}
	if a.Mesh != nil {
		for _, vb := range a.Mesh.VertexBuffers {
			dev.DestroyBuffer(vb.Buffer)
		}
		seen := make(map[gpucore.BufferID]bool)
		for _, sm := range a.Mesh.Submeshes {
			if !seen[sm.IndexBuffer] {
				seen[sm.IndexBuffer] = true
				dev.DestroyBuffer(sm.IndexBuffer)
			}
		}
		a.Mesh = nil
	}
	dev.DestroyTexture(a.Texture)
	a.Texture = gpucore.InvalidID
}

// Loader loads a named asset onto a device. A missing asset is reported
// with an error wrapping ErrNotFound.
type Loader interface {
	Load(dev gpucore.Device, name string) (*Asset, error)
}
