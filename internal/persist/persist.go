// Package persist reads and writes scene files: a flat list of records, each
// tagged with a kind that selects how its payload is decoded.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"projmap/internal/mathutil"
)

// Version is the current file format version.
const Version = 1

// Kind tags a record.
type Kind string

const (
	KindProjection Kind = "projection"
	KindCameraView Kind = "camera_view"
)

// ErrUnknownKind is returned for a record whose kind has no decoder.
var ErrUnknownKind = errors.New("persist: unknown record kind")

// Record is a decodable payload.
type Record interface {
	Kind() Kind
}

// Entry is one stored record.
type Entry struct {
	ID   string          `json:"id"`
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// File is the on-disk scene.
type File struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// MediaRef points at a media file.
type MediaRef struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// Projection is the editable state of one surface.
type Projection struct {
	Name     string          `json:"name"`
	Vertices []mathutil.Vec3 `json:"vertices"`
	UVs      []mathutil.Vec2 `json:"uvs,omitempty"`
	Position mathutil.Vec3   `json:"position"`
	Rotation mathutil.Quat   `json:"rotation"`
	Scale    mathutil.Vec3   `json:"scale"`
	Tiling   mathutil.Vec2   `json:"tiling"`
	Offset   mathutil.Vec2   `json:"offset"`
	Static   bool            `json:"static,omitempty"`
	Media    *MediaRef       `json:"media,omitempty"`
}

func (Projection) Kind() Kind { return KindProjection }

// CameraView is a saved observing camera pose.
type CameraView struct {
	Name     string        `json:"name"`
	Position mathutil.Vec3 `json:"position"`
	Rotation mathutil.Quat `json:"rotation"`
	FOV      float64       `json:"fov"`
}

func (CameraView) Kind() Kind { return KindCameraView }

// New returns an empty file at the current version.
func New() *File {
	return &File{Version: Version}
}

// Add encodes r as a new entry. An empty id gets a fresh UUID. Adding an id
// that already exists replaces that entry in place.
func (f *File) Add(id string, r Record) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("persist: encode %s: %w", r.Kind(), err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	e := Entry{ID: id, Kind: r.Kind(), Data: data}
	for i := range f.Entries {
		if f.Entries[i].ID == id {
			f.Entries[i] = e
			return id, nil
		}
	}
	f.Entries = append(f.Entries, e)
	return id, nil
}

// Remove drops the entry with id and reports whether it existed.
func (f *File) Remove(id string) bool {
	for i := range f.Entries {
		if f.Entries[i].ID == id {
			f.Entries = append(f.Entries[:i], f.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Decode selects the payload type from the entry's kind.
func (e Entry) Decode() (Record, error) {
	switch e.Kind {
	case KindProjection:
		var p Projection
		if err := json.Unmarshal(e.Data, &p); err != nil {
			return nil, fmt.Errorf("persist: decode %s %s: %w", e.Kind, e.ID, err)
		}
		return p, nil
	case KindCameraView:
		var v CameraView
		if err := json.Unmarshal(e.Data, &v); err != nil {
			return nil, fmt.Errorf("persist: decode %s %s: %w", e.Kind, e.ID, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q (entry %s)", ErrUnknownKind, e.Kind, e.ID)
}

// Decoded pairs a record with its entry id.
type Decoded struct {
	ID     string
	Record Record
}

// Records decodes every entry. Entries that fail are skipped; their errors
// are joined into the returned error.
func (f *File) Records() ([]Decoded, error) {
	out := make([]Decoded, 0, len(f.Entries))
	var errs []error
	for _, e := range f.Entries {
		r, err := e.Decode()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, Decoded{ID: e.ID, Record: r})
	}
	return out, errors.Join(errs...)
}

// Write encodes f as indented JSON.
func Write(w io.Writer, f *File) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("persist: encode: %w", err)
	}
	return nil
}

// Read decodes a file. Newer format versions are rejected.
func Read(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("persist: decode: %w", err)
	}
	if f.Version > Version {
		return nil, fmt.Errorf("persist: unsupported version %d", f.Version)
	}
	if f.Version == 0 {
		f.Version = Version
	}
	return &f, nil
}

// Save writes f to path through a temporary file.
func Save(path string, f *File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("persist: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".scene-*.json")
	if err != nil {
		return fmt.Errorf("persist: create temp: %w", err)
	}
	if err := Write(tmp, f); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist: close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist: save %s: %w", path, err)
	}
	return nil
}

// Load reads path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("persist: open %s: %w", path, err)
	}
	defer fh.Close()
	return Read(fh)
}
