package offscreen

import "github.com/gogpu/offscreen/gpucore"

// Option configures a Renderer during creation.
//
// Example:
//
//	r, err := offscreen.NewRenderer(dev, surf, geometry,
//	    offscreen.WithClearColor(gpucore.ClearColor{R: 0, G: 0, B: 0, A: 1}))
type Option func(*rendererOptions)

type rendererOptions struct {
	clearColor   gpucore.ClearColor
	transform    SceneTransform
	shaderSource string
	label        string
}

func defaultOptions() rendererOptions {
	return rendererOptions{
		clearColor:   DefaultClearColor,
		transform:    DefaultSceneTransform(),
		shaderSource: DefaultShaderSource,
		label:        "offscreen",
	}
}

// DefaultClearColor is the main pass clear color.
var DefaultClearColor = gpucore.ClearColor{R: 0.95, G: 0.95, B: 0.95, A: 1}

// WithClearColor sets the color the offscreen target is cleared to.
func WithClearColor(c gpucore.ClearColor) Option {
	return func(o *rendererOptions) {
		o.clearColor = c
	}
}

// WithSceneTransform replaces the model and camera placement.
func WithSceneTransform(t SceneTransform) Option {
	return func(o *rendererOptions) {
		o.transform = t
	}
}

// WithShaderSource replaces the built-in WGSL shader library. The source
// must declare the entry points named by MainVertexFunction,
// MainFragmentFunction, PostVertexFunction and PostFragmentFunction;
// missing ones disable the corresponding pipeline.
func WithShaderSource(src string) Option {
	return func(o *rendererOptions) {
		o.shaderSource = src
	}
}

// WithLabel sets the prefix of the labels given to GPU objects.
func WithLabel(label string) Option {
	return func(o *rendererOptions) {
		if label != "" {
			o.label = label
		}
	}
}
