package gpucore

import (
	"errors"
	"fmt"
)

// Descriptor validation errors.
var (
	// ErrInvalidVertexLayout is returned for vertex layouts a pipeline cannot consume.
	ErrInvalidVertexLayout = errors.New("gpucore: invalid vertex layout")

	// ErrInvalidFormat is returned for attachment formats that do not fit their role.
	ErrInvalidFormat = errors.New("gpucore: invalid pixel format")

	// ErrMissingFunction is returned when a shader entry point is not in the library.
	ErrMissingFunction = errors.New("gpucore: shader function not found")

	// ErrInvalidDimensions is returned for zero or negative texture sizes.
	ErrInvalidDimensions = errors.New("gpucore: invalid texture dimensions")
)

// VertexAttribute describes one attribute of a vertex layout.
type VertexAttribute struct {
	Semantic    VertexSemantic
	Format      VertexFormat
	Offset      uint32
	BufferIndex int
}

// VertexBufferLayout describes one vertex buffer of a layout.
type VertexBufferLayout struct {
	Stride uint32
}

// VertexLayout maps attributes onto one or more interleaved vertex buffers.
// Attribute i is consumed by shader location i.
type VertexLayout struct {
	Attributes []VertexAttribute
	Layouts    []VertexBufferLayout
}

// BufferCount returns the number of vertex buffers the layout reads from.
func (l VertexLayout) BufferCount() int {
	return len(l.Layouts)
}

// Validate checks that every attribute fits inside the stride of the
// buffer it references.
func (l VertexLayout) Validate() error {
	if len(l.Attributes) == 0 || len(l.Layouts) == 0 {
		return fmt.Errorf("%w: no attributes or buffers", ErrInvalidVertexLayout)
	}
	for i, b := range l.Layouts {
		if b.Stride == 0 || b.Stride%4 != 0 {
			return fmt.Errorf("%w: buffer %d stride %d", ErrInvalidVertexLayout, i, b.Stride)
		}
	}
	for i, a := range l.Attributes {
		if a.BufferIndex < 0 || a.BufferIndex >= len(l.Layouts) {
			return fmt.Errorf("%w: attribute %d references buffer %d", ErrInvalidVertexLayout, i, a.BufferIndex)
		}
		size := a.Format.Size()
		if size == 0 {
			return fmt.Errorf("%w: attribute %d has no format", ErrInvalidVertexLayout, i)
		}
		if a.Offset+size > l.Layouts[a.BufferIndex].Stride {
			return fmt.Errorf("%w: attribute %d at offset %d overflows stride %d",
				ErrInvalidVertexLayout, i, a.Offset, l.Layouts[a.BufferIndex].Stride)
		}
	}
	return nil
}

// DepthStencilDesc describes a depth/stencil state object.
type DepthStencilDesc struct {
	Label        string
	Compare      CompareFunction
	WriteEnabled bool
}

// RenderPipelineDesc describes a render pipeline to create.
type RenderPipelineDesc struct {
	Label string

	// Library holds the shader entry points.
	Library LibraryID

	// VertexFunction and FragmentFunction name the entry points.
	VertexFunction   string
	FragmentFunction string

	// VertexLayout describes the vertex buffers the vertex stage consumes.
	VertexLayout VertexLayout

	// ColorFormat is the format of the single color attachment.
	ColorFormat PixelFormat

	// DepthFormat is the depth attachment format, or PixelFormatInvalid for none.
	DepthFormat PixelFormat

	// DepthStencil is the depth state baked into the pipeline when
	// DepthFormat is set.
	DepthStencil DepthStencilDesc

	Topology PrimitiveTopology

	// VertexUniformSize is the size of the inline uniform block the
	// vertex stage reads. Zero means none.
	VertexUniformSize int

	// FragmentTextures is the number of sampled textures (0 or 1).
	FragmentTextures int
}

// Validate checks the descriptor independently of any backend.
func (d *RenderPipelineDesc) Validate() error {
	if d.Library == InvalidID {
		return fmt.Errorf("gpucore: pipeline %q has no shader library", d.Label)
	}
	if d.VertexFunction == "" || d.FragmentFunction == "" {
		return fmt.Errorf("%w: pipeline %q needs vertex and fragment functions", ErrMissingFunction, d.Label)
	}
	if err := d.VertexLayout.Validate(); err != nil {
		return fmt.Errorf("pipeline %q: %w", d.Label, err)
	}
	if !d.ColorFormat.IsColor() {
		return fmt.Errorf("%w: pipeline %q color format %s", ErrInvalidFormat, d.Label, d.ColorFormat)
	}
	if d.DepthFormat != PixelFormatInvalid && !d.DepthFormat.IsDepth() {
		return fmt.Errorf("%w: pipeline %q depth format %s", ErrInvalidFormat, d.Label, d.DepthFormat)
	}
	if d.FragmentTextures < 0 || d.FragmentTextures > 1 {
		return fmt.Errorf("gpucore: pipeline %q supports at most one fragment texture", d.Label)
	}
	if d.VertexUniformSize < 0 || d.VertexUniformSize%16 != 0 {
		return fmt.Errorf("gpucore: pipeline %q uniform size %d is not 16-byte aligned", d.Label, d.VertexUniformSize)
	}
	return nil
}

// TextureDesc describes a 2D texture to create.
type TextureDesc struct {
	Label   string
	Width   int
	Height  int
	Format  PixelFormat
	Usage   TextureUsage
	Storage StorageMode
}

// Validate checks the texture size and format.
func (d *TextureDesc) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, d.Width, d.Height)
	}
	if d.Format == PixelFormatInvalid {
		return fmt.Errorf("%w: texture %q", ErrInvalidFormat, d.Label)
	}
	if d.Format.IsDepth() && d.Usage&TextureUsageShaderRead != 0 {
		return fmt.Errorf("%w: depth texture %q cannot be sampled", ErrInvalidFormat, d.Label)
	}
	return nil
}

// BufferDesc describes a buffer created with initial contents.
type BufferDesc struct {
	Label string
	Usage BufferUsage
}

// ColorAttachment describes the color target of a render pass.
type ColorAttachment struct {
	Texture    TextureID
	Load       LoadAction
	Store      StoreAction
	ClearColor ClearColor
}

// DepthAttachment describes the depth target of a render pass.
type DepthAttachment struct {
	Texture    TextureID
	Load       LoadAction
	Store      StoreAction
	ClearDepth float64
}

// RenderPassDesc describes a render pass with one color attachment and
// an optional depth attachment.
type RenderPassDesc struct {
	Label string
	Color ColorAttachment
	Depth *DepthAttachment
}
