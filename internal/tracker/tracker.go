// Package tracker projects the corners of a quad through the observing camera
// every frame and publishes them as warp parameters.
package tracker

import (
	"fmt"
	"strings"

	"projmap/internal/mathutil"
	"projmap/internal/quad"
)

// Parameter names written to the sink.
const (
	ParamTiling = "_Tiling"
	ParamOffset = "_Offset"
)

// CornerParam returns the parameter name of corner i (_P0.._P3).
func CornerParam(i int) string {
	return fmt.Sprintf("_P%d", i)
}

// Projector maps world points into viewport space ([0,1] with (0,0) at the
// bottom-left, z the depth). Implemented by camera.Camera.
type Projector interface {
	WorldToViewport(p mathutil.Vec3) (mathutil.Vec3, bool)
}

// Sink receives named vector writes. Implemented by material.Material.
type Sink interface {
	SetVector(name string, v mathutil.Vec4)
}

// Space selects the coordinate range of published corners.
type Space int

const (
	// SpaceViewport publishes x and y in [0,1].
	SpaceViewport Space = iota
	// SpaceNDC publishes x and y in [-1,1].
	SpaceNDC
)

func (s Space) String() string {
	if s == SpaceNDC {
		return "ndc"
	}
	return "viewport"
}

// ParseSpace accepts "viewport" and "ndc".
func ParseSpace(s string) (Space, error) {
	switch strings.ToLower(s) {
	case "", "viewport":
		return SpaceViewport, nil
	case "ndc":
		return SpaceNDC, nil
	}
	return SpaceViewport, fmt.Errorf("tracker: unknown space %q", s)
}

// Options configures the published coordinates.
type Options struct {
	Space Space
	// FlipY mirrors the vertical axis so y grows downward, matching top-left
	// texture sampling.
	FlipY bool
}

// WarpParams is one frame of tracker output.
type WarpParams struct {
	Corners [4]mathutil.Vec3 // x, y in the configured space; z is depth
	Tiling  mathutil.Vec2
	Offset  mathutil.Vec2
}

// Tracker publishes warp parameters for one quad.
type Tracker struct {
	Enabled bool

	quad    *quad.Quad
	cam     Projector
	binding Binding
	sink    Sink
	opts    Options

	last    WarpParams
	hasLast bool
}

// New creates an enabled tracker. Any of the references may be nil; frames
// are skipped until they are all present.
func New(q *quad.Quad, cam Projector, b Binding, sink Sink, opts Options) *Tracker {
	return &Tracker{Enabled: true, quad: q, cam: cam, binding: b, sink: sink, opts: opts}
}

// SetCamera replaces the projector.
func (t *Tracker) SetCamera(cam Projector) { t.cam = cam }

// SetSink replaces the parameter sink.
func (t *Tracker) SetSink(s Sink) { t.sink = s }

// SetBinding replaces the corner binding.
func (t *Tracker) SetBinding(b Binding) { t.binding = b }

// Options returns the output options.
func (t *Tracker) Options() Options { return t.opts }

// Update computes and publishes this frame's parameters. It returns false
// when the frame was skipped; the last published parameters then stay in the
// sink untouched.
func (t *Tracker) Update() bool {
	if !t.Enabled || t.quad == nil || t.cam == nil || t.sink == nil {
		return false
	}
	var p WarpParams
	for i, ref := range t.binding {
		if ref == nil {
			return false
		}
		w, ok := ref.WorldPosition()
		if !ok {
			return false
		}
		vp, ok := t.cam.WorldToViewport(w)
		if !ok {
			return false
		}
		p.Corners[i] = t.convert(vp)
	}
	p.Tiling = t.quad.Tiling
	p.Offset = t.quad.Offset

	for i, c := range p.Corners {
		t.sink.SetVector(CornerParam(i), mathutil.V4(c, 0))
	}
	t.sink.SetVector(ParamTiling, mathutil.Vec4{p.Tiling[0], p.Tiling[1], 0, 0})
	t.sink.SetVector(ParamOffset, mathutil.Vec4{p.Offset[0], p.Offset[1], 0, 0})
	t.last, t.hasLast = p, true
	return true
}

// Last returns the most recently published parameters.
func (t *Tracker) Last() (WarpParams, bool) {
	return t.last, t.hasLast
}

func (t *Tracker) convert(vp mathutil.Vec3) mathutil.Vec3 {
	x, y := vp[0], vp[1]
	if t.opts.FlipY {
		y = 1 - y
	}
	if t.opts.Space == SpaceNDC {
		x, y = x*2-1, y*2-1
	}
	return mathutil.Vec3{x, y, vp[2]}
}
