// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides presentation surfaces for the offscreen
// renderer.
//
// [Headless] implements the renderer's presentation surface on any
// gpucore.Device without a window. Its drawable is a BGRA8Unorm texture;
// when the renderer's command buffer completes, presenting the drawable
// reads the texture back and hands an *image.RGBA to a [FrameSink].
//
// # Sinks
//
//   - [FileSink]: numbered PNG, TIFF or BMP files in a directory
//   - [PNGSink]: shorthand for a PNG FileSink
//   - [MemorySink]: keeps recent frames in memory, for tests and previews
//   - [Discard]: drops frames, for benchmarks
//
// # Registry
//
// Sinks are also available by name through a registry, so a driver can
// choose the output format from configuration:
//
//	sink, err := surface.NewSinkByName("png", surface.SinkOptions{Dir: "out"})
//	if err != nil {
//	    return err
//	}
//	s, err := surface.NewHeadless(dev, 800, 600, sink)
//
// Applications register their own sinks with [Register].
package surface
