// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/offscreen/gpucore"
)

// VertexStride is the size of one interleaved Vertex in bytes.
const VertexStride = 32

// Vertex is one interleaved mesh vertex: position, normal, texcoord.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// DefaultVertexLayout returns the single-buffer position/normal/texcoord
// layout used by every mesh in this package.
func DefaultVertexLayout() gpucore.VertexLayout {
	return gpucore.VertexLayout{
		Attributes: []gpucore.VertexAttribute{
			{Semantic: gpucore.VertexSemanticPosition, Format: gpucore.VertexFormatFloat3, Offset: 0, BufferIndex: 0},
			{Semantic: gpucore.VertexSemanticNormal, Format: gpucore.VertexFormatFloat3, Offset: 12, BufferIndex: 0},
			{Semantic: gpucore.VertexSemanticTextureCoordinate, Format: gpucore.VertexFormatFloat2, Offset: 24, BufferIndex: 0},
		},
		Layouts: []gpucore.VertexBufferLayout{{Stride: VertexStride}},
	}
}

// MeshData is host-side geometry before upload.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
	Topology gpucore.PrimitiveTopology
}

// VertexBytes serializes the vertices little-endian at VertexStride.
func (m *MeshData) VertexBytes() []byte {
	out := make([]byte, len(m.Vertices)*VertexStride)
	for i, v := range m.Vertices {
		b := out[i*VertexStride:]
		put := func(off int, f float32) {
			binary.LittleEndian.PutUint32(b[off:], math.Float32bits(f))
		}
		for j := 0; j < 3; j++ {
			put(j*4, v.Position[j])
			put(12+j*4, v.Normal[j])
		}
		put(24, v.UV[0])
		put(28, v.UV[1])
	}
	return out
}

// IndexBytes serializes the indices, using 16-bit indices whenever every
// vertex is addressable with them.
func (m *MeshData) IndexBytes() ([]byte, gpucore.IndexType) {
	if len(m.Vertices) <= math.MaxUint16+1 {
		out := make([]byte, len(m.Indices)*2)
		for i, idx := range m.Indices {
			binary.LittleEndian.PutUint16(out[i*2:], uint16(idx))
		}
		return out, gpucore.IndexTypeUint16
	}
	out := make([]byte, len(m.Indices)*4)
	for i, idx := range m.Indices {
		binary.LittleEndian.PutUint32(out[i*4:], idx)
	}
	return out, gpucore.IndexTypeUint32
}

// Validate checks that the mesh has geometry and every index is in range.
func (m *MeshData) Validate() error {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return errors.New("asset: empty mesh")
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("asset: index %d references vertex %d of %d", i, idx, len(m.Vertices))
		}
	}
	return nil
}

// UploadMesh copies the mesh into device buffers and returns a Mesh with
// one vertex buffer and one submesh.
func UploadMesh(dev gpucore.Device, label string, data *MeshData) (*Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	vb, err := dev.CreateBuffer(&gpucore.BufferDesc{
		Label: label + " vertices",
		Usage: gpucore.BufferUsageVertex,
	}, data.VertexBytes())
	if err != nil {
		return nil, fmt.Errorf("asset: upload vertices: %w", err)
	}
	indices, indexType := data.IndexBytes()
	ib, err := dev.CreateBuffer(&gpucore.BufferDesc{
		Label: label + " indices",
		Usage: gpucore.BufferUsageIndex,
	}, indices)
	if err != nil {
		dev.DestroyBuffer(vb)
		return nil, fmt.Errorf("asset: upload indices: %w", err)
	}
	return &Mesh{
		VertexBuffers: []MeshBuffer{{Buffer: vb}},
		Submeshes: []Submesh{{
			Topology:    data.Topology,
			IndexCount:  len(data.Indices),
			IndexType:   indexType,
			IndexBuffer: ib,
		}},
	}, nil
}
