package offscreen

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestUniformsBytes(t *testing.T) {
	u := Uniforms{ModelView: mgl32.Ident4(), Projection: mgl32.Translate3D(1, 2, 3)}
	b := u.Bytes()
	if len(b) != UniformsSize {
		t.Fatalf("len = %d, want %d", len(b), UniformsSize)
	}
	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:])) }
	if f(0) != 1 || f(1) != 0 || f(15) != 1 {
		t.Errorf("model-view not identity: %v %v %v", f(0), f(1), f(15))
	}
	// Column-major: translation sits in elements 12..14 of the projection.
	if f(16+12) != 1 || f(16+13) != 2 || f(16+14) != 3 {
		t.Errorf("projection translation = %v %v %v", f(28), f(29), f(30))
	}
}

func TestProjectionDeterministic(t *testing.T) {
	s := DefaultSceneTransform()
	for _, aspect := range []float32{0.5, 1, 4.0 / 3, 16.0 / 9} {
		a := s.Projection(aspect)
		b := s.Projection(aspect)
		if a != b {
			t.Errorf("aspect %v: projection differs between calls", aspect)
		}
	}
}

func TestProjectionAspectOnlyChangesXScale(t *testing.T) {
	s := DefaultSceneTransform()
	a := s.Projection(1)
	b := s.Projection(2)
	for i := range a {
		if i == 0 {
			continue
		}
		if a[i] != b[i] {
			t.Errorf("element %d changed with aspect: %v -> %v", i, a[i], b[i])
		}
	}
	if a[0] == b[0] {
		t.Error("x scale should depend on aspect")
	}
	if math.Abs(float64(b[0]*2-a[0])) > 1e-6 {
		t.Errorf("x scale = %v, want %v", b[0], a[0]/2)
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(math.Pi/6, 1, 0.1, 100)
	project := func(z float32) float32 {
		v := p.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return v.Z() / v.W()
	}
	if got := project(-0.1); math.Abs(float64(got)) > 1e-5 {
		t.Errorf("near plane depth = %v, want 0", got)
	}
	if got := project(-100); math.Abs(float64(got-1)) > 1e-4 {
		t.Errorf("far plane depth = %v, want 1", got)
	}
}

func TestDefaultModelView(t *testing.T) {
	mv := DefaultSceneTransform().ModelView()
	// Model origin moves to (0, -1.1, -4) in view space.
	o := mv.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	want := mgl32.Vec4{0, -1.1, -4, 1}
	if !o.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("origin = %v, want %v", o, want)
	}
	// Scale 1/4.5 is applied before translation.
	p := mv.Mul4x1(mgl32.Vec4{4.5, 0, 0, 1})
	if math.Abs(float64(p.X()-1)) > 1e-5 {
		t.Errorf("scaled x = %v, want 1", p.X())
	}
}

func TestAspectRatio(t *testing.T) {
	if got := aspectRatio(800, 400); got != 2 {
		t.Errorf("aspectRatio(800, 400) = %v", got)
	}
	if got := aspectRatio(10, 0); got != 1 {
		t.Errorf("aspectRatio(10, 0) = %v, want 1", got)
	}
}
