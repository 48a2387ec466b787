// Package scene owns the projection surfaces and drives them frame by frame:
// drags are applied first, then every tracker publishes its corners.
package scene

import (
	"errors"
	"fmt"
	"maps"

	"projmap/internal/camera"
	"projmap/internal/logx"
	"projmap/internal/material"
	"projmap/internal/mathutil"
	"projmap/internal/plane"
	"projmap/internal/quad"
	"projmap/internal/tracker"
)

var (
	// ErrNoHit is returned by Pick when the pointer ray hits nothing.
	ErrNoHit = errors.New("scene: pick missed")
	// ErrNoSurface is returned for an unknown surface id.
	ErrNoSurface = errors.New("scene: no such surface")
)

// Hit is the result of a ray query.
type Hit struct {
	Point     mathutil.Vec3
	Distance  float64
	SurfaceID string // empty for environment geometry
}

// Raycaster answers "nearest hit along this ray" queries.
type Raycaster interface {
	Raycast(ray mathutil.Ray) (Hit, bool)
}

// Options configures new surfaces.
type Options struct {
	Tracker      tracker.Options
	HandleRadius float64
}

// Surface is one projection target with its editor, tracker and material.
type Surface struct {
	Quad     *quad.Quad
	Editor   *quad.Editor
	Tracker  *tracker.Tracker
	Material *material.Material
	// Static surfaces track raw mesh vertices instead of handles and never
	// show handles; their editor only serves restores.
	Static bool
}

// ID is the quad's id.
func (s *Surface) ID() string {
	return s.Quad.ID
}

// Scene is the root of the ownership tree: surfaces live no longer than the
// scene, handles no longer than their surface.
type Scene struct {
	Camera    *camera.Camera
	Selection *plane.Selection
	// Geometry is the environment picked against; surfaces are always
	// pickable too.
	Geometry Raycaster
	Options  Options

	surfaces []*Surface
	views    map[string]camera.View
	editMode bool
	selected *Surface
}

// New creates an empty scene observed through cam.
func New(cam *camera.Camera, opts Options) *Scene {
	if cam == nil {
		cam = camera.New()
	}
	if opts.HandleRadius <= 0 {
		opts.HandleRadius = quad.DefaultHandleRadius
	}
	return &Scene{
		Camera:    cam,
		Selection: plane.NewSelection(),
		Options:   opts,
		views:     make(map[string]camera.View),
	}
}

// Surfaces returns the surfaces in creation order.
func (s *Scene) Surfaces() []*Surface {
	return s.surfaces
}

// Surface looks a surface up by id.
func (s *Scene) Surface(id string) (*Surface, bool) {
	for _, sf := range s.surfaces {
		if sf.ID() == id {
			return sf, true
		}
	}
	return nil, false
}

// AddQuad wraps q in a surface bound to the scene camera. Static surfaces
// track mesh vertices 0..3 directly.
func (s *Scene) AddQuad(q *quad.Quad, static bool) *Surface {
	sf := &Surface{
		Quad:     q,
		Material: material.New(q.Name),
		Static:   static,
	}
	sf.Editor = quad.NewEditor(q, s.Camera)
	sf.Editor.SetHandleRadius(s.Options.HandleRadius)
	binding := tracker.HandleBinding(sf.Editor)
	if static {
		binding = tracker.VertexBinding(q, 0, 1, 2, 3)
	}
	sf.Tracker = tracker.New(q, s.Camera, binding, sf.Material, s.Options.Tracker)
	s.surfaces = append(s.surfaces, sf)
	logx.Logger().Info("scene: surface added", "id", q.ID, "static", static)
	return sf
}

// Remove deletes a surface. Removing the selected surface deselects it.
func (s *Scene) Remove(id string) error {
	for i, sf := range s.surfaces {
		if sf.ID() != id {
			continue
		}
		if s.selected == sf {
			s.Deselect()
		}
		sf.Editor.HideHandles()
		sf.Tracker.Enabled = false
		s.surfaces = append(s.surfaces[:i], s.surfaces[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoSurface, id)
}

// AddPoint feeds a picked point to the selection. The fourth point builds a
// new surface; invalid selections are returned and the buffer is cleared.
func (s *Scene) AddPoint(p mathutil.Vec3) (*Surface, error) {
	q, err := s.Selection.AddPoint(p)
	if err != nil || q == nil {
		return nil, err
	}
	return s.AddQuad(q, false), nil
}

// Pick casts the pointer ray and feeds the nearest hit to the selection.
func (s *Scene) Pick(px mathutil.Vec2) (*Surface, error) {
	hit, ok := s.Raycast(s.Camera.ScreenPointToRay(px))
	if !ok {
		return nil, ErrNoHit
	}
	return s.AddPoint(hit.Point)
}

// Raycast returns the nearest hit among the environment and all surfaces.
func (s *Scene) Raycast(ray mathutil.Ray) (Hit, bool) {
	var best Hit
	found := false
	if s.Geometry != nil {
		if h, ok := s.Geometry.Raycast(ray); ok {
			best, found = h, true
		}
	}
	for _, sf := range s.surfaces {
		p, d, ok := sf.Quad.Raycast(ray)
		if ok && (!found || d < best.Distance) {
			best, found = Hit{Point: p, Distance: d, SurfaceID: sf.ID()}, true
		}
	}
	return best, found
}

// SetEditMode switches edit mode. Handles are shown only for the selected
// surface while edit mode is on.
func (s *Scene) SetEditMode(on bool) {
	s.editMode = on
	s.syncHandles()
}

// EditMode reports whether edit mode is on.
func (s *Scene) EditMode() bool {
	return s.editMode
}

// Select makes the surface with id the edit target.
func (s *Scene) Select(id string) error {
	sf, ok := s.Surface(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSurface, id)
	}
	s.selected = sf
	s.syncHandles()
	return nil
}

// Deselect clears the edit target.
func (s *Scene) Deselect() {
	s.selected = nil
	s.syncHandles()
}

// Selected returns the edit target, or nil.
func (s *Scene) Selected() *Surface {
	return s.selected
}

func (s *Scene) syncHandles() {
	for _, sf := range s.surfaces {
		if s.editMode && sf == s.selected && !sf.Static {
			sf.Editor.ShowHandles()
		} else {
			sf.Editor.HideHandles()
		}
	}
}

// Update runs one frame. Pointer input reaches only the selected surface;
// every editor then refreshes its handles before the trackers read them.
func (s *Scene) Update(p quad.Pointer) {
	for _, sf := range s.surfaces {
		if sf == s.selected {
			sf.Editor.Update(p)
		} else {
			sf.Editor.Update(quad.Pointer{})
		}
	}
	for _, sf := range s.surfaces {
		sf.Tracker.Update()
	}
}

// SaveView stores the current camera pose under name.
func (s *Scene) SaveView(name string) {
	s.views[name] = s.Camera.SaveView()
}

// RestoreView applies a stored camera pose.
func (s *Scene) RestoreView(name string) bool {
	v, ok := s.views[name]
	if ok {
		s.Camera.RestoreView(v)
	}
	return ok
}

// Views returns a copy of the stored camera poses by name.
func (s *Scene) Views() map[string]camera.View {
	return maps.Clone(s.views)
}
