// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import "errors"

// Package errors.
var (
	// ErrNoAdapter is returned when no GPU adapter is available.
	ErrNoAdapter = errors.New("native: no GPU adapter available")

	// ErrNoHALProvider is returned when a device provider does not expose
	// its hal.Device and hal.Queue.
	ErrNoHALProvider = errors.New("native: provider does not expose HAL types")

	// ErrClosed is returned by operations on a closed device.
	ErrClosed = errors.New("native: device closed")

	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("native: unknown resource")

	// ErrUnsupportedFormat is returned for pixel formats the backend cannot map.
	ErrUnsupportedFormat = errors.New("native: unsupported pixel format")

	// ErrPassOpen is returned when a render pass is begun while another is open.
	ErrPassOpen = errors.New("native: render pass already open")

	// ErrSubmitTimeout is returned when submitted work does not complete in
	// time. Resources the work references are leaked rather than freed.
	ErrSubmitTimeout = errors.New("native: submission timed out")

	// ErrCommandBufferDone is returned when a committed or discarded
	// command buffer is used.
	ErrCommandBufferDone = errors.New("native: command buffer already finished")
)
