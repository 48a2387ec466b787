package plane

import (
	"projmap/internal/logx"
	"projmap/internal/mathutil"
	"projmap/internal/quad"
)

// Selection buffers picked points until enough are available to build a quad.
type Selection struct {
	points []mathutil.Vec3
	viewer *mathutil.Vec3
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{points: make([]mathutil.Vec3, 0, quad.VertexCount)}
}

// SetViewer orients built quads so their normal faces eye.
func (s *Selection) SetViewer(eye mathutil.Vec3) {
	s.viewer = &eye
}

// ClearViewer removes the viewer set by SetViewer.
func (s *Selection) ClearViewer() {
	s.viewer = nil
}

// AddPoint appends a pick. When the fourth point arrives a quad is built and
// the buffer is cleared whether or not the build succeeds. Before that it
// returns (nil, nil).
func (s *Selection) AddPoint(p mathutil.Vec3) (*quad.Quad, error) {
	s.points = append(s.points, p)
	if len(s.points) < quad.VertexCount {
		return nil, nil
	}
	pts := s.points
	s.points = make([]mathutil.Vec3, 0, quad.VertexCount)

	q, err := build(pts, s.viewer)
	if err != nil {
		logx.Logger().Warn("plane: selection rejected", "points", pts, "err", err)
		return nil, err
	}
	logx.Logger().Debug("plane: quad built", "id", q.ID)
	return q, nil
}

// Points returns a copy of the buffered picks, in pick order.
func (s *Selection) Points() []mathutil.Vec3 {
	return append([]mathutil.Vec3(nil), s.points...)
}

// Len returns the number of buffered picks.
func (s *Selection) Len() int {
	return len(s.points)
}

// Reset discards the buffered picks.
func (s *Selection) Reset() {
	s.points = s.points[:0]
}
