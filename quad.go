package offscreen

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/offscreen/gpucore"
)

// QuadVertex is one vertex of the post pass quad.
type QuadVertex struct {
	X, Y float32
	U, V float32
}

// quadStride is the size of one QuadVertex in bytes.
const quadStride = 16

// FullscreenQuad returns the triangle strip covering NDC [-1,1]×[-1,1].
// v is flipped so that y=-1 samples v=1.
func FullscreenQuad() [4]QuadVertex {
	return [4]QuadVertex{
		{X: -1, Y: -1, U: 0, V: 1},
		{X: -1, Y: 1, U: 0, V: 0},
		{X: 1, Y: -1, U: 1, V: 1},
		{X: 1, Y: 1, U: 1, V: 0},
	}
}

// quadBytes serializes the full-screen quad as 64 bytes.
func quadBytes() []byte {
	q := FullscreenQuad()
	out := make([]byte, len(q)*quadStride)
	for i, v := range q {
		b := out[i*quadStride:]
		binary.LittleEndian.PutUint32(b[0:], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(b[8:], math.Float32bits(v.U))
		binary.LittleEndian.PutUint32(b[12:], math.Float32bits(v.V))
	}
	return out
}

// QuadVertexLayout describes QuadVertex: float2 position at 0, float2
// texcoord at 8, stride 16.
func QuadVertexLayout() gpucore.VertexLayout {
	return gpucore.VertexLayout{
		Attributes: []gpucore.VertexAttribute{
			{Semantic: gpucore.VertexSemanticPosition, Format: gpucore.VertexFormatFloat2, Offset: 0},
			{Semantic: gpucore.VertexSemanticTextureCoordinate, Format: gpucore.VertexFormatFloat2, Offset: 8},
		},
		Layouts: []gpucore.VertexBufferLayout{{Stride: quadStride}},
	}
}
