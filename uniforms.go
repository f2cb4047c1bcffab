package offscreen

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformsSize is the size of the serialized Uniforms block in bytes.
const UniformsSize = 128

// Uniforms is the per-draw constant block of the main pass vertex stage.
type Uniforms struct {
	ModelView  mgl32.Mat4
	Projection mgl32.Mat4
}

// Bytes serializes the block as two column-major float32 matrices.
func (u Uniforms) Bytes() []byte {
	out := make([]byte, UniformsSize)
	for i, f := range u.ModelView {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	for i, f := range u.Projection {
		binary.LittleEndian.PutUint32(out[64+i*4:], math.Float32bits(f))
	}
	return out
}

// SceneTransform holds the fixed model and camera placement.
type SceneTransform struct {
	// ModelTranslation is applied after ModelScale.
	ModelTranslation mgl32.Vec3
	ModelScale       float32

	CameraTranslation mgl32.Vec3

	// FovY is the vertical field of view in radians.
	FovY      float32
	Near, Far float32
}

// DefaultSceneTransform returns the placement used when none is configured.
func DefaultSceneTransform() SceneTransform {
	return SceneTransform{
		ModelTranslation:  mgl32.Vec3{0, -1.1, 0},
		ModelScale:        1 / 4.5,
		CameraTranslation: mgl32.Vec3{0, 0, -4},
		FovY:              math.Pi / 6,
		Near:              0.1,
		Far:               100,
	}
}

// ModelView returns camera ∘ model.
func (s SceneTransform) ModelView() mgl32.Mat4 {
	model := mgl32.Translate3D(s.ModelTranslation.Elem()).
		Mul4(mgl32.Scale3D(s.ModelScale, s.ModelScale, s.ModelScale))
	camera := mgl32.Translate3D(s.CameraTranslation.Elem())
	return camera.Mul4(model)
}

// Projection returns the perspective projection for a drawable aspect ratio.
func (s SceneTransform) Projection(aspect float32) mgl32.Mat4 {
	return Perspective(s.FovY, aspect, s.Near, s.Far)
}

// Uniforms computes the uniform block for a drawable aspect ratio.
func (s SceneTransform) Uniforms(aspect float32) Uniforms {
	return Uniforms{ModelView: s.ModelView(), Projection: s.Projection(aspect)}
}

// Perspective returns a right-handed perspective projection that maps view
// depth [-near, -far] to clip depth [0, 1].
// Unlike mgl32.Perspective it does not use the OpenGL [-1, 1] depth range.
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	ys := float32(1 / math.Tan(float64(fovY)/2))
	xs := ys / aspect
	zs := far / (near - far)
	return mgl32.Mat4{
		xs, 0, 0, 0,
		0, ys, 0, 0,
		0, 0, zs, -1,
		0, 0, zs * near, 0,
	}
}

func aspectRatio(width, height int) float32 {
	if height == 0 {
		return 1
	}
	return float32(width) / float32(height)
}
