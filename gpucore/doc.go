// Package gpucore provides the GPU abstraction used by the offscreen renderer.
//
// This package defines the [Device] interface, which abstracts over GPU
// backend implementations so the two-pass rendering logic can be written
// once and exercised against:
//   - gogpu/wgpu (Pure Go WebGPU via HAL), see backend/native
//   - a recording device for tests, see internal/gputest
//
// # Architecture
//
//	               +-----------------+
//	               |    offscreen    |
//	               | (Renderer, ...) |
//	               +--------+--------+
//	                        |
//	               +--------v--------+
//	               |     gpucore     |
//	               |    (Device)     |
//	               +--------+--------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	|  native device  |          | gputest device  |
//	|  (hal.Device)   |          |   (recording)   |
//	+-----------------+          +-----------------+
//
// # Resource Model
//
// Resources are referenced by opaque IDs. The zero value [InvalidID] means
// "absent": an absent pipeline is how pipeline construction failure is
// reported, and encoders accept absent IDs as no-ops.
//
// # Binding Model
//
// Render pass encoders use a slot model: vertex buffers and inline vertex
// bytes share one slot space per pass, fragment textures have their own.
// Backends map slots onto their native binding scheme.
//
// # Shaders
//
// [ParseShader] lowers WGSL to naga IR. Entry points are read from the IR,
// so every backend agrees on which functions a library provides.
package gpucore
