package offscreen

import _ "embed"

// DefaultShaderSource is the WGSL library holding the main and post pass
// entry points.
//
//go:embed shaders/scene.wgsl
var DefaultShaderSource string
