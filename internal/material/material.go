// Package material holds the named shader vectors and media reference of a
// projection surface.
package material

import (
	"sort"

	"projmap/internal/mathutil"
	"projmap/internal/texture"
)

// Material is a set of named vector parameters plus the media shown on the
// surface. The zero value is ready to use.
type Material struct {
	Name  string
	Media *texture.Media

	params map[string]mathutil.Vec4
	writes int
}

// New returns an empty material.
func New(name string) *Material {
	return &Material{Name: name}
}

// SetVector stores a named vector.
func (m *Material) SetVector(name string, v mathutil.Vec4) {
	if m.params == nil {
		m.params = make(map[string]mathutil.Vec4)
	}
	m.params[name] = v
	m.writes++
}

// Vector returns a named vector and whether it was ever set.
func (m *Material) Vector(name string) (mathutil.Vec4, bool) {
	v, ok := m.params[name]
	return v, ok
}

// Names lists the set parameters in sorted order.
func (m *Material) Names() []string {
	names := make([]string, 0, len(m.params))
	for k := range m.params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Writes counts SetVector calls since creation.
func (m *Material) Writes() int {
	return m.writes
}

// SetMedia assigns the media handle; nil clears it.
func (m *Material) SetMedia(media *texture.Media) {
	m.Media = media
}
