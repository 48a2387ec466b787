package texture

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Kind is the type of a media resource.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// ParseKind accepts "image" and "video".
func ParseKind(s string) (Kind, error) {
	switch s {
	case "image":
		return KindImage, nil
	case "video":
		return KindVideo, nil
	}
	return 0, fmt.Errorf("texture: unknown media kind %q", s)
}

// Media is an opaque handle to an image or video resource. Image holds the
// decoded pixels once loaded; video frames are decoded elsewhere.
type Media struct {
	Kind  Kind
	Path  string
	Image *image.NRGBA
}

// Name is the file name without directory.
func (m *Media) Name() string {
	return filepath.Base(m.Path)
}

// Open returns a handle for path, classified by extension. Images are not
// decoded until Load.
func Open(path string) (*Media, error) {
	k, ok := KindOf(path)
	if !ok {
		return nil, fmt.Errorf("texture: unsupported media %s", path)
	}
	return &Media{Kind: k, Path: path}, nil
}

// Load decodes an image, through c when it is not nil. Videos are left untouched.
func (m *Media) Load(c *Cache) error {
	if m.Kind != KindImage || m.Image != nil {
		return nil
	}
	var img *image.NRGBA
	var err error
	if c != nil {
		img, err = c.Load(m.Path)
	} else {
		img, err = LoadImage(m.Path)
	}
	if err != nil {
		return err
	}
	m.Image = img
	return nil
}

// Import copies src into dir under a unique name (stem_<uuid>.ext) and
// returns a handle to the copy.
func Import(src, dir string) (*Media, error) {
	if _, ok := KindOf(src); !ok {
		return nil, fmt.Errorf("texture: unsupported media %s", src)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("texture: create %s: %w", dir, err)
	}
	ext := filepath.Ext(src)
	stem := strings.TrimSuffix(filepath.Base(src), ext)
	dst := filepath.Join(dir, fmt.Sprintf("%s_%s%s", stem, uuid.NewString(), strings.ToLower(ext)))

	if err := copyFile(src, dst); err != nil {
		return nil, err
	}
	return Open(dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("texture: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("texture: create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("texture: copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("texture: close %s: %w", dst, err)
	}
	return nil
}
