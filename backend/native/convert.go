// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/offscreen/gpucore"
)

// textureFormat maps a gpucore pixel format to its WebGPU equivalent.
func textureFormat(f gpucore.PixelFormat) (gputypes.TextureFormat, error) {
	switch f {
	case gpucore.PixelFormatRGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm, nil
	case gpucore.PixelFormatRGBA8UnormSRGB:
		return gputypes.TextureFormatRGBA8UnormSrgb, nil
	case gpucore.PixelFormatBGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm, nil
	case gpucore.PixelFormatBGRA8UnormSRGB:
		return gputypes.TextureFormatBGRA8UnormSrgb, nil
	case gpucore.PixelFormatDepth32Float:
		return gputypes.TextureFormatDepth32Float, nil
	}
	return gputypes.TextureFormatUndefined, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

// PixelFormatOf maps a WebGPU texture format back to gpucore, returning
// PixelFormatInvalid for formats the backend does not handle.
func PixelFormatOf(f gputypes.TextureFormat) gpucore.PixelFormat {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return gpucore.PixelFormatRGBA8Unorm
	case gputypes.TextureFormatRGBA8UnormSrgb:
		return gpucore.PixelFormatRGBA8UnormSRGB
	case gputypes.TextureFormatBGRA8Unorm:
		return gpucore.PixelFormatBGRA8Unorm
	case gputypes.TextureFormatBGRA8UnormSrgb:
		return gpucore.PixelFormatBGRA8UnormSRGB
	case gputypes.TextureFormatDepth32Float:
		return gpucore.PixelFormatDepth32Float
	}
	return gpucore.PixelFormatInvalid
}

// textureUsage maps usage and storage to WebGPU usage flags. Managed
// storage and color render targets can be copied from so they can be read
// back.
func textureUsage(desc *gpucore.TextureDesc) gputypes.TextureUsage {
	var u gputypes.TextureUsage
	if desc.Usage&gpucore.TextureUsageShaderRead != 0 {
		u |= gputypes.TextureUsageTextureBinding
	}
	if desc.Usage&gpucore.TextureUsageRenderTarget != 0 {
		u |= gputypes.TextureUsageRenderAttachment
		if !desc.Format.IsDepth() {
			u |= gputypes.TextureUsageCopySrc
		}
	}
	if desc.Usage&gpucore.TextureUsageCopyDst != 0 {
		u |= gputypes.TextureUsageCopyDst
	}
	if desc.Storage == gpucore.StorageModeManaged {
		u |= gputypes.TextureUsageCopySrc
	}
	return u
}

func bufferUsage(u gpucore.BufferUsage) gputypes.BufferUsage {
	out := gputypes.BufferUsageCopyDst
	if u&gpucore.BufferUsageVertex != 0 {
		out |= gputypes.BufferUsageVertex
	}
	if u&gpucore.BufferUsageIndex != 0 {
		out |= gputypes.BufferUsageIndex
	}
	if u&gpucore.BufferUsageUniform != 0 {
		out |= gputypes.BufferUsageUniform
	}
	return out
}

// loadOp maps a load action. WebGPU has no don't-care load, so it clears.
func loadOp(a gpucore.LoadAction) gputypes.LoadOp {
	if a == gpucore.LoadActionLoad {
		return gputypes.LoadOpLoad
	}
	return gputypes.LoadOpClear
}

func storeOp(a gpucore.StoreAction) gputypes.StoreOp {
	if a == gpucore.StoreActionDiscard {
		return gputypes.StoreOpDiscard
	}
	return gputypes.StoreOpStore
}

func primitiveTopology(t gpucore.PrimitiveTopology) gputypes.PrimitiveTopology {
	switch t {
	case gpucore.PrimitiveTopologyTriangleStrip:
		return gputypes.PrimitiveTopologyTriangleStrip
	case gpucore.PrimitiveTopologyLine:
		return gputypes.PrimitiveTopologyLineList
	case gpucore.PrimitiveTopologyLineStrip:
		return gputypes.PrimitiveTopologyLineStrip
	case gpucore.PrimitiveTopologyPoint:
		return gputypes.PrimitiveTopologyPointList
	}
	return gputypes.PrimitiveTopologyTriangleList
}

func compareFunction(c gpucore.CompareFunction) gputypes.CompareFunction {
	switch c {
	case gpucore.CompareFunctionNever:
		return gputypes.CompareFunctionNever
	case gpucore.CompareFunctionLess:
		return gputypes.CompareFunctionLess
	case gpucore.CompareFunctionLessEqual:
		return gputypes.CompareFunctionLessEqual
	case gpucore.CompareFunctionEqual:
		return gputypes.CompareFunctionEqual
	case gpucore.CompareFunctionGreater:
		return gputypes.CompareFunctionGreater
	}
	return gputypes.CompareFunctionAlways
}

func indexFormat(t gpucore.IndexType) gputypes.IndexFormat {
	if t == gpucore.IndexTypeUint32 {
		return gputypes.IndexFormatUint32
	}
	return gputypes.IndexFormatUint16
}

func vertexFormat(f gpucore.VertexFormat) gputypes.VertexFormat {
	switch f {
	case gpucore.VertexFormatFloat2:
		return gputypes.VertexFormatFloat32x2
	case gpucore.VertexFormatFloat3:
		return gputypes.VertexFormatFloat32x3
	}
	return gputypes.VertexFormatFloat32x4
}

// vertexBuffers converts a layout into WebGPU vertex buffer layouts.
// Attribute i is bound to shader location i.
func vertexBuffers(l gpucore.VertexLayout) []gputypes.VertexBufferLayout {
	out := make([]gputypes.VertexBufferLayout, len(l.Layouts))
	for i, b := range l.Layouts {
		out[i] = gputypes.VertexBufferLayout{
			ArrayStride: uint64(b.Stride),
			StepMode:    gputypes.VertexStepModeVertex,
		}
	}
	for loc, a := range l.Attributes {
		out[a.BufferIndex].Attributes = append(out[a.BufferIndex].Attributes, gputypes.VertexAttribute{
			Format:         vertexFormat(a.Format),
			Offset:         uint64(a.Offset),
			ShaderLocation: uint32(loc), //nolint:gosec // attribute count is small
		})
	}
	return out
}

func align4(n int) uint64 {
	return uint64((n + 3) &^ 3) //nolint:gosec // n is a non-negative length
}

// convertBGRAToRGBA swaps the R and B channels of tightly packed pixels in place.
func convertBGRAToRGBA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
