package gpucore

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ShaderStage identifies the pipeline stage an entry point runs in.
type ShaderStage uint32

// Shader stages.
const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageFragment
	ShaderStageCompute
)

// ShaderModule is a WGSL source lowered to naga IR.
type ShaderModule struct {
	IR *ir.Module

	// Functions maps entry point names to their stage.
	Functions map[string]ShaderStage
}

// ParseShader parses and lowers a WGSL source. Only declarations that
// survive parsing count as entry points; commented-out code does not.
func ParseShader(source string) (*ShaderModule, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("gpucore: parse shader: %w", err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("gpucore: lower shader: %w", err)
	}
	functions := make(map[string]ShaderStage, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			functions[ep.Name] = ShaderStageVertex
		case ir.StageFragment:
			functions[ep.Name] = ShaderStageFragment
		case ir.StageCompute:
			functions[ep.Name] = ShaderStageCompute
		}
	}
	return &ShaderModule{IR: module, Functions: functions}, nil
}

// EntryPoints returns the entry points declared in a WGSL source, keyed
// by function name.
func EntryPoints(source string) (map[string]ShaderStage, error) {
	m, err := ParseShader(source)
	if err != nil {
		return nil, err
	}
	return m.Functions, nil
}
