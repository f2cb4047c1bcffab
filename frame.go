package offscreen

import "fmt"

// FrameState is a step of the per-frame state machine.
type FrameState int

// Frame states, in the order a frame moves through them.
const (
	FrameStateIdle FrameState = iota
	FrameStateMainPassEncoding
	FrameStateMainPassDone
	FrameStatePostPassEncoding
	FrameStateSubmitted
)

func (s FrameState) String() string {
	switch s {
	case FrameStateIdle:
		return "Idle"
	case FrameStateMainPassEncoding:
		return "MainPassEncoding"
	case FrameStateMainPassDone:
		return "MainPassDone"
	case FrameStatePostPassEncoding:
		return "PostPassEncoding"
	case FrameStateSubmitted:
		return "Submitted"
	}
	return fmt.Sprintf("FrameState(%d)", int(s))
}

// SkipReason tells why a frame was abandoned before submission.
type SkipReason int

// Skip reasons. SkipNone means the frame was submitted.
const (
	SkipNone SkipReason = iota
	SkipNoCommandBuffer
	SkipNoMesh
	SkipNoTargets
	SkipNoMainEncoder
	SkipNoPassDescriptor
	SkipNoPostEncoder
	SkipNoDrawable
	SkipSubmitFailed
)

var skipReasonNames = [...]string{
	SkipNone:             "none",
	SkipNoCommandBuffer:  "no command buffer",
	SkipNoMesh:           "no mesh",
	SkipNoTargets:        "no offscreen targets",
	SkipNoMainEncoder:    "no main pass encoder",
	SkipNoPassDescriptor: "no presentation pass descriptor",
	SkipNoPostEncoder:    "no post pass encoder",
	SkipNoDrawable:       "no drawable",
	SkipSubmitFailed:     "submit failed",
}

func (r SkipReason) String() string {
	if r >= 0 && int(r) < len(skipReasonNames) {
		return skipReasonNames[r]
	}
	return fmt.Sprintf("SkipReason(%d)", int(r))
}

// FrameResult describes one call to Renderer.Draw.
type FrameResult struct {
	// Reached is the last state the frame entered. It is
	// FrameStateSubmitted for a frame that was committed.
	Reached FrameState

	// Skip is SkipNone for a submitted frame.
	Skip SkipReason

	// MainDraws and PostDraws count the draw calls encoded in each pass.
	MainDraws int
	PostDraws int

	// Generation identifies the offscreen targets the frame rendered into.
	Generation uint64
}

// Submitted reports whether the frame was committed.
func (r FrameResult) Submitted() bool {
	return r.Skip == SkipNone && r.Reached == FrameStateSubmitted
}

// FrameStats accumulates frame outcomes over the renderer's lifetime.
type FrameStats struct {
	Frames    uint64
	Submitted uint64
	Skipped   uint64
	LastSkip  SkipReason
}
