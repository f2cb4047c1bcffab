package gpucore

import "fmt"

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and actual backend resources.

// TextureID is an opaque handle to a GPU texture.
type TextureID uint64

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// LibraryID is an opaque handle to a compiled shader library.
type LibraryID uint64

// RenderPipelineID is an opaque handle to a render pipeline state.
type RenderPipelineID uint64

// DepthStencilStateID is an opaque handle to a depth/stencil state.
type DepthStencilStateID uint64

// InvalidID is the zero value, representing an absent resource.
const InvalidID = 0

// PixelFormat specifies the format of texture data.
type PixelFormat uint32

// Pixel formats.
const (
	// PixelFormatInvalid is the zero format.
	PixelFormatInvalid PixelFormat = iota

	// PixelFormatRGBA8Unorm is 8-bit RGBA, normalized unsigned integer, linear.
	PixelFormatRGBA8Unorm

	// PixelFormatRGBA8UnormSRGB is 8-bit RGBA in sRGB color space.
	PixelFormatRGBA8UnormSRGB

	// PixelFormatBGRA8Unorm is 8-bit BGRA, normalized unsigned integer, linear.
	PixelFormatBGRA8Unorm

	// PixelFormatBGRA8UnormSRGB is 8-bit BGRA in sRGB color space.
	PixelFormatBGRA8UnormSRGB

	// PixelFormatDepth32Float is a 32-bit floating point depth format.
	PixelFormatDepth32Float
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatInvalid:        "Invalid",
	PixelFormatRGBA8Unorm:     "RGBA8Unorm",
	PixelFormatRGBA8UnormSRGB: "RGBA8UnormSRGB",
	PixelFormatBGRA8Unorm:     "BGRA8Unorm",
	PixelFormatBGRA8UnormSRGB: "BGRA8UnormSRGB",
	PixelFormatDepth32Float:   "Depth32Float",
}

func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", uint32(f))
}

// IsDepth reports whether the format can only be used as a depth attachment.
func (f PixelFormat) IsDepth() bool {
	return f == PixelFormatDepth32Float
}

// IsColor reports whether the format is a valid color attachment format.
func (f PixelFormat) IsColor() bool {
	switch f {
	case PixelFormatRGBA8Unorm, PixelFormatRGBA8UnormSRGB,
		PixelFormatBGRA8Unorm, PixelFormatBGRA8UnormSRGB:
		return true
	}
	return false
}

// BytesPerPixel returns the size of one texel in bytes.
func (f PixelFormat) BytesPerPixel() int {
	if f == PixelFormatInvalid {
		return 0
	}
	return 4
}

// TextureUsage is a bitmask specifying how a texture will be used.
type TextureUsage uint32

// Texture usage flags.
const (
	// TextureUsageShaderRead allows the texture to be sampled by shaders.
	TextureUsageShaderRead TextureUsage = 1 << iota

	// TextureUsageRenderTarget allows the texture to be a pass attachment.
	TextureUsageRenderTarget

	// TextureUsageCopyDst allows uploading data into the texture.
	TextureUsageCopyDst
)

// StorageMode selects where texture memory lives.
type StorageMode uint32

// Storage modes.
const (
	// StorageModeShared is memory visible to both host and device.
	StorageModeShared StorageMode = iota

	// StorageModeManaged keeps a host-synchronizable copy so the contents
	// can be read back.
	StorageModeManaged

	// StorageModePrivate is device-local memory, never read by the host.
	StorageModePrivate
)

// LoadAction specifies what happens to an attachment at the start of a pass.
type LoadAction uint32

// Load actions.
const (
	// LoadActionDontCare leaves the previous contents undefined.
	LoadActionDontCare LoadAction = iota

	// LoadActionLoad preserves the previous contents.
	LoadActionLoad

	// LoadActionClear clears the attachment to its clear value.
	LoadActionClear
)

// StoreAction specifies what happens to an attachment at the end of a pass.
type StoreAction uint32

// Store actions.
const (
	// StoreActionStore keeps the rendered contents.
	StoreActionStore StoreAction = iota

	// StoreActionDiscard drops the rendered contents.
	StoreActionDiscard
)

func (a StoreAction) String() string {
	switch a {
	case StoreActionStore:
		return "Store"
	case StoreActionDiscard:
		return "Discard"
	}
	return fmt.Sprintf("StoreAction(%d)", uint32(a))
}

// PrimitiveTopology describes how vertices are assembled into primitives.
type PrimitiveTopology uint32

// Primitive topologies.
const (
	PrimitiveTopologyTriangle PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLine
	PrimitiveTopologyLineStrip
	PrimitiveTopologyPoint
)

func (t PrimitiveTopology) String() string {
	switch t {
	case PrimitiveTopologyTriangle:
		return "Triangle"
	case PrimitiveTopologyTriangleStrip:
		return "TriangleStrip"
	case PrimitiveTopologyLine:
		return "Line"
	case PrimitiveTopologyLineStrip:
		return "LineStrip"
	case PrimitiveTopologyPoint:
		return "Point"
	}
	return fmt.Sprintf("PrimitiveTopology(%d)", uint32(t))
}

// IndexType is the element width of an index buffer.
type IndexType uint32

// Index types.
const (
	IndexTypeUint16 IndexType = iota
	IndexTypeUint32
)

// Size returns the byte width of one index.
func (t IndexType) Size() int {
	if t == IndexTypeUint32 {
		return 4
	}
	return 2
}

// VertexFormat is the numeric format of one vertex attribute.
type VertexFormat uint32

// Vertex formats.
const (
	VertexFormatInvalid VertexFormat = iota
	VertexFormatFloat2
	VertexFormatFloat3
	VertexFormatFloat4
)

// Size returns the byte size of the attribute.
func (f VertexFormat) Size() uint32 {
	switch f {
	case VertexFormatFloat2:
		return 8
	case VertexFormatFloat3:
		return 12
	case VertexFormatFloat4:
		return 16
	}
	return 0
}

// VertexSemantic names what a vertex attribute carries.
type VertexSemantic uint32

// Vertex semantics.
const (
	VertexSemanticPosition VertexSemantic = iota
	VertexSemanticNormal
	VertexSemanticTextureCoordinate
)

// CompareFunction is a depth comparison.
type CompareFunction uint32

// Compare functions.
const (
	CompareFunctionNever CompareFunction = iota
	CompareFunctionLess
	CompareFunctionLessEqual
	CompareFunctionEqual
	CompareFunctionGreater
	CompareFunctionAlways
)

// BufferUsage is a bitmask specifying how a buffer will be used.
type BufferUsage uint32

// Buffer usage flags.
const (
	// BufferUsageVertex indicates the buffer holds vertex data.
	BufferUsageVertex BufferUsage = 1 << iota

	// BufferUsageIndex indicates the buffer holds index data.
	BufferUsageIndex

	// BufferUsageUniform indicates the buffer holds uniform data.
	BufferUsageUniform
)

// ClearColor is an RGBA clear value in [0, 1].
type ClearColor struct {
	R, G, B, A float64
}
