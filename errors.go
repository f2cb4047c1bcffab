package offscreen

import "errors"

// Startup errors. NewRenderer wraps these with context.
var (
	// ErrNilDevice is returned when no GPU device is supplied.
	ErrNilDevice = errors.New("offscreen: nil device")

	// ErrNilSurface is returned when no presentation surface is supplied.
	ErrNilSurface = errors.New("offscreen: nil presentation surface")

	// ErrShaderLibrary is returned when the shader library cannot be created.
	ErrShaderLibrary = errors.New("offscreen: shader library")

	// ErrDepthStencilState is returned when the depth state cannot be created.
	ErrDepthStencilState = errors.New("offscreen: depth stencil state")
)
