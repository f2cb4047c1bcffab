// Package native implements gpucore.Device on the gogpu/wgpu HAL.
//
// A HALDevice maps the ID-based gpucore resource model onto hal objects:
// shader libraries are compiled to SPIR-V with naga, render
// pipelines carry their depth state and bind group layouts, and render pass
// encoders translate slot bindings into bind groups at draw time.
//
// # Devices
//
// [Open] bootstraps its own Vulkan device, preferring a discrete or
// integrated GPU. [New] wraps an existing hal.Device and hal.Queue, and
// [NewFromProvider] shares the device of a host application that exposes
// its HAL objects through a gpucontext.DeviceProvider (for example gogpu).
//
// # Bind Groups
//
// Every pipeline uses the same bind group convention:
//
//	group 0: binding 0 = vertex uniform block (empty group when none)
//	group 1: binding 0 = fragment texture, binding 1 = linear clamp sampler
//
// Bytes set with SetVertexBytes at a slot below the pipeline's vertex
// buffer count are uploaded as a transient vertex buffer; bytes at the
// first slot past them are the uniform block. Transient buffers and bind groups live until
// the command buffer completes or is discarded.
//
// # Synchronization
//
// Commit submits and polls the queue until the submission completes before
// presenting drawables, so a drawable's Present always observes the
// finished frame. When the wait times out Commit returns
// [ErrSubmitTimeout] and leaks the command buffer and its transient
// resources instead of freeing memory the GPU may still use.
//
// Draws are skipped with a warning when the bound pipeline's topology,
// color format or depth format does not match the draw or the pass.
package native
