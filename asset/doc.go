// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package asset loads the geometry and texture the offscreen renderer draws.
//
// An [Asset] bundles a vertex layout description, a [Mesh] whose vertex and
// index buffers already live on the device, and a sampled texture. Mesh
// file parsing is not provided: [SphereLoader] generates a UV sphere and
// decodes its texture from disk with the standard image decoders plus the
// golang.org/x/image formats (BMP, TIFF, WebP).
//
// Textures are uploaded as linear RGBA8Unorm with the rows flipped
// vertically, so v=0 is the top of the source image after the flip and the
// post pass quad's v-flip convention lines up.
//
// Example:
//
//	loader := asset.SphereLoader{TexturePath: "earth.png"}
//	a, err := loader.Load(device, "sphere")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Release(device)
package asset
