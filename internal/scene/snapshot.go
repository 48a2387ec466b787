package scene

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"projmap/internal/camera"
	"projmap/internal/logx"
	"projmap/internal/mathutil"
	"projmap/internal/persist"
	"projmap/internal/quad"
	"projmap/internal/texture"
)

// CurrentView is the name under which the live camera pose is saved.
const CurrentView = "current"

// Report summarizes a restore.
type Report struct {
	Surfaces int // restored or created
	Views    int
	Failed   []error
}

// Snapshot captures every surface and camera view as records.
func (s *Scene) Snapshot() (*persist.File, error) {
	f := persist.New()
	for _, sf := range s.surfaces {
		if _, err := f.Add(sf.ID(), projectionOf(sf)); err != nil {
			return nil, err
		}
	}
	views := s.Views()
	views[CurrentView] = s.Camera.SaveView()
	for _, name := range slices.Sorted(maps.Keys(views)) {
		v := views[name]
		rec := persist.CameraView{Name: name, Position: v.Position, Rotation: v.Rotation, FOV: v.FOV}
		if _, err := f.Add("view:"+name, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func projectionOf(sf *Surface) persist.Projection {
	st := sf.Editor.SnapshotState()
	tr := sf.Quad.Transform
	p := persist.Projection{
		Name:     sf.Quad.Name,
		Vertices: st.Vertices,
		UVs:      sf.Quad.Mesh().UVs,
		Position: tr.Position,
		Rotation: tr.Rotation,
		Scale:    tr.Scale,
		Tiling:   st.Tiling,
		Offset:   st.Offset,
		Static:   sf.Static,
	}
	if m := sf.Material.Media; m != nil {
		p.Media = &persist.MediaRef{Kind: m.Kind.String(), Path: m.Path}
	}
	return p
}

// Restore applies a file. Projection records update the surface with the
// same id or create a new one; camera views are stored, and the "current"
// view is applied to the camera. A failing record (unknown kind, bad
// payload, vertex count mismatch) is reported and skipped; the other records
// still load. The returned error joins all record failures.
func (s *Scene) Restore(f *persist.File) (Report, error) {
	var rep Report
	for _, e := range f.Entries {
		rec, err := e.Decode()
		if err != nil {
			rep.Failed = append(rep.Failed, err)
			continue
		}
		switch r := rec.(type) {
		case persist.Projection:
			mediaErr, err := s.restoreProjection(e.ID, r)
			if err != nil {
				rep.Failed = append(rep.Failed, fmt.Errorf("scene: restore %s: %w", e.ID, err))
				continue
			}
			rep.Surfaces++
			if mediaErr != nil {
				rep.Failed = append(rep.Failed, fmt.Errorf("scene: media of %s: %w", e.ID, mediaErr))
			}
		case persist.CameraView:
			s.views[r.Name] = viewOf(r)
			if r.Name == CurrentView {
				s.Camera.RestoreView(viewOf(r))
			}
			rep.Views++
		}
	}
	for _, err := range rep.Failed {
		logx.Logger().Warn("scene: record skipped", "err", err)
	}
	s.syncHandles()
	return rep, errors.Join(rep.Failed...)
}

// restoreProjection applies r. A bad media reference does not stop the
// geometry from loading; it is returned separately.
func (s *Scene) restoreProjection(id string, r persist.Projection) (mediaErr, err error) {
	tr := mathutil.Transform{Position: r.Position, Rotation: r.Rotation.Normalize(), Scale: r.Scale}
	if tr.Scale == (mathutil.Vec3{}) {
		tr.Scale = mathutil.Vec3One
	}
	if r.Tiling == (mathutil.Vec2{}) {
		r.Tiling = mathutil.Vec2{1, 1}
	}

	media, mediaErr := mediaOf(r.Media)

	if sf, ok := s.Surface(id); ok {
		err := sf.Editor.RestoreState(quad.State{Vertices: r.Vertices, Tiling: r.Tiling, Offset: r.Offset})
		if err != nil {
			return nil, err
		}
		sf.Quad.Transform = tr
		if r.Name != "" {
			sf.Quad.Name = r.Name
		}
		sf.Editor.RefreshHandles()
		if mediaErr == nil {
			sf.Material.SetMedia(media)
		}
		return mediaErr, nil
	}

	q, err := quad.FromLocal(id, r.Vertices, r.UVs, tr)
	if err != nil {
		return nil, err
	}
	if r.Name != "" {
		q.Name = r.Name
	}
	q.Tiling = r.Tiling
	q.Offset = r.Offset
	sf := s.AddQuad(q, r.Static)
	if mediaErr == nil {
		sf.Material.SetMedia(media)
	}
	return mediaErr, nil
}

func mediaOf(ref *persist.MediaRef) (*texture.Media, error) {
	if ref == nil {
		return nil, nil
	}
	k, err := texture.ParseKind(ref.Kind)
	if err != nil {
		return nil, err
	}
	return &texture.Media{Kind: k, Path: ref.Path}, nil
}

func viewOf(r persist.CameraView) camera.View {
	return camera.View{Position: r.Position, Rotation: r.Rotation, FOV: r.FOV}
}

// SaveFile snapshots the scene into path.
func (s *Scene) SaveFile(path string) error {
	f, err := s.Snapshot()
	if err != nil {
		return err
	}
	return persist.Save(path, f)
}

// LoadFile restores the scene from path. Open and parse failures are returned
// without a report; per-record failures come back as in Restore.
func (s *Scene) LoadFile(path string) (Report, error) {
	f, err := persist.Load(path)
	if err != nil {
		return Report{}, err
	}
	return s.Restore(f)
}
