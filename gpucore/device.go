package gpucore

// Device is the GPU abstraction the renderer is written against.
//
// Creation methods return InvalidID together with a non-nil error on
// failure. Destroy methods ignore InvalidID and unknown IDs.
//
// A Device is used from a single render thread; implementations are not
// required to be safe for concurrent use.
type Device interface {
	// CreateShaderLibrary compiles a shader source containing any number of
	// named entry points.
	CreateShaderLibrary(source, label string) (LibraryID, error)

	// HasFunction reports whether the library exposes the named entry point.
	HasFunction(lib LibraryID, name string) bool

	// DestroyShaderLibrary releases a shader library.
	DestroyShaderLibrary(lib LibraryID)

	// CreateRenderPipeline creates an immutable render pipeline.
	CreateRenderPipeline(desc *RenderPipelineDesc) (RenderPipelineID, error)

	// DestroyRenderPipeline releases a render pipeline.
	DestroyRenderPipeline(id RenderPipelineID)

	// CreateDepthStencilState creates an immutable depth/stencil state.
	CreateDepthStencilState(desc *DepthStencilDesc) (DepthStencilStateID, error)

	// DestroyDepthStencilState releases a depth/stencil state.
	DestroyDepthStencilState(id DepthStencilStateID)

	// CreateTexture creates a 2D texture.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// WriteTexture uploads tightly packed rows into mip level 0.
	WriteTexture(id TextureID, data []byte, bytesPerRow int) error

	// ReadTexture reads mip level 0 back as tightly packed RGBA rows.
	// BGRA textures are converted.
	ReadTexture(id TextureID) ([]byte, error)

	// CreateBuffer creates a buffer holding a copy of data.
	CreateBuffer(desc *BufferDesc, data []byte) (BufferID, error)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// NewCommandBuffer starts recording a command buffer.
	NewCommandBuffer(label string) (CommandBuffer, error)
}

// CommandBuffer records render passes for one submission.
type CommandBuffer interface {
	// BeginRenderPass opens a render pass. Only one pass may be open at a time.
	BeginRenderPass(desc *RenderPassDesc) (RenderPassEncoder, error)

	// Present schedules the drawable to be presented once the command
	// buffer has completed.
	Present(d Drawable)

	// Commit submits the recorded work. The command buffer cannot be
	// used afterwards.
	Commit() error

	// Discard abandons the recorded work and frees transient resources.
	Discard()
}

// RenderPassEncoder records the commands of one render pass.
//
// Slot indices for SetVertexBuffer and SetVertexBytes share one space.
// Bytes set at a slot past the pipeline's vertex buffers are the vertex
// uniform block.
type RenderPassEncoder interface {
	SetRenderPipeline(id RenderPipelineID)
	SetDepthStencilState(id DepthStencilStateID)
	SetVertexBuffer(id BufferID, offset, slot int)
	SetVertexBytes(data []byte, slot int)
	SetFragmentTexture(id TextureID, slot int)

	// DrawIndexed draws indexCount indices read from indexBuffer.
	DrawIndexed(topology PrimitiveTopology, indexCount int, indexType IndexType, indexBuffer BufferID, indexOffset int)

	// Draw draws vertexCount non-indexed vertices.
	Draw(topology PrimitiveTopology, vertexStart, vertexCount int)

	// End closes the pass.
	End()
}

// Drawable is a presentable image owned by a presentation surface.
type Drawable interface {
	// Texture returns the color texture to render into.
	Texture() TextureID

	// Present hands the image to the presentation engine. It is called
	// after the command buffer that rendered it has completed.
	Present()
}
