package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// Index maps lowercase file stems to media paths below a root directory.
// Lossless images take priority over lossy ones with the same stem.
type Index struct {
	entries map[string]string
}

var extRank = map[string]int{".png": 3, ".tga": 3, ".bmp": 2, ".webp": 1}

// BuildIndex walks dir for supported media files.
func BuildIndex(dir string) *Index {
	idx := &Index{entries: make(map[string]string)}
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if _, ok := KindOf(path); !ok {
			return nil
		}
		stem := stemOf(path)
		existing, exists := idx.entries[stem]
		if !exists || rank(path) > rank(existing) {
			idx.entries[stem] = path
		}
		return nil
	})
	return idx
}

// ResolvePath returns the indexed path for a name or path, matched by stem.
func (idx *Index) ResolvePath(name string) (string, bool) {
	path, ok := idx.entries[stemOf(strings.ReplaceAll(name, "\\", "/"))]
	return path, ok
}

// Len returns the number of indexed files.
func (idx *Index) Len() int {
	return len(idx.entries)
}

func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func rank(path string) int {
	return extRank[strings.ToLower(filepath.Ext(path))]
}
