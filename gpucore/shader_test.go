package gpucore

import "testing"

const entryPointSource = `
@vertex
fn vs_main(@location(0) p: vec3<f32>) -> @builtin(position) vec4<f32> {
    return vec4<f32>(p, 1.0);
}

@fragment fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}

@compute @workgroup_size(64)
fn cs_main() {}

fn helper() -> f32 { return 1.0; }
`

func TestEntryPoints(t *testing.T) {
	got, err := EntryPoints(entryPointSource)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]ShaderStage{
		"vs_main": ShaderStageVertex,
		"fs_main": ShaderStageFragment,
		"cs_main": ShaderStageCompute,
	}
	if len(got) != len(want) {
		t.Fatalf("EntryPoints() = %v, want %v", got, want)
	}
	for name, stage := range want {
		if got[name] != stage {
			t.Errorf("EntryPoints()[%q] = %v, want %v", name, got[name], stage)
		}
	}
	if _, ok := got["helper"]; ok {
		t.Error("helper should not be an entry point")
	}
}

func TestEntryPointsIgnoreComments(t *testing.T) {
	src := entryPointSource + `
// @vertex fn vertex_post() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
/* @fragment
fn fragment_post() -> @location(0) vec4<f32> { return vec4<f32>(1.0); } */
`
	got, err := EntryPoints(src)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"vertex_post", "fragment_post"} {
		if _, ok := got[name]; ok {
			t.Errorf("commented-out %s reported as an entry point", name)
		}
	}
	if len(got) != 3 {
		t.Errorf("EntryPoints() = %v, want 3 entries", got)
	}
}

func TestParseShaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "@vertex fn broken( {"},
		{"unresolved identifier", "@fragment fn fs() -> @location(0) vec4<f32> { return missing_color; }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseShader(tt.src); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseShaderKeepsIR(t *testing.T) {
	m, err := ParseShader(entryPointSource)
	if err != nil {
		t.Fatal(err)
	}
	if m.IR == nil || len(m.IR.EntryPoints) != 3 {
		t.Fatalf("IR entry points = %v", m.IR)
	}
}
