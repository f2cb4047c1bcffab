// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/offscreen/gpucore"
)

type library struct {
	module    hal.ShaderModule
	functions map[string]gpucore.ShaderStage
}

// compileWGSL lowers WGSL once and generates SPIR-V words from the same IR
// the entry points were read from.
func compileWGSL(source string) (*gpucore.ShaderModule, []uint32, error) {
	shader, err := gpucore.ParseShader(source)
	if err != nil {
		return nil, nil, err
	}
	issues, err := naga.Validate(shader.IR)
	if err != nil {
		return nil, nil, err
	}
	if len(issues) > 0 {
		return nil, nil, fmt.Errorf("validate: %w", &issues[0])
	}
	spirvBytes, err := naga.GenerateSPIRV(shader.IR, spirv.Options{Version: spirv.Version1_3})
	if err != nil {
		return nil, nil, err
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return shader, words, nil
}

// CreateShaderLibrary compiles WGSL source with naga and creates one
// shader module holding every entry point of the source.
func (d *HALDevice) CreateShaderLibrary(source, label string) (gpucore.LibraryID, error) {
	shader, words, err := compileWGSL(source)
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: compile library %q: %w", label, err)
	}
	functions := shader.Functions
	if len(functions) == 0 {
		return gpucore.InvalidID, fmt.Errorf("native: library %q declares no entry points", label)
	}
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: words},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("native: create shader module %q: %w", label, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.device.DestroyShaderModule(module)
		return gpucore.InvalidID, ErrClosed
	}
	id := gpucore.LibraryID(d.newID())
	d.libraries[id] = &library{module: module, functions: functions}
	slogger().Debug("native: shader library created", "label", label, "functions", len(functions))
	return id, nil
}

// HasFunction implements gpucore.Device.
func (d *HALDevice) HasFunction(lib gpucore.LibraryID, name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.libraries[lib]
	if !ok {
		return false
	}
	_, ok = l.functions[name]
	return ok
}

// DestroyShaderLibrary implements gpucore.Device. Pipelines created from
// the library stay valid.
func (d *HALDevice) DestroyShaderLibrary(lib gpucore.LibraryID) {
	d.mu.Lock()
	l, ok := d.libraries[lib]
	delete(d.libraries, lib)
	d.mu.Unlock()
	if ok {
		d.device.DestroyShaderModule(l.module)
	}
}
