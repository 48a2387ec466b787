package texture

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func TestKindOf(t *testing.T) {
	cases := map[string]struct {
		kind Kind
		ok   bool
	}{
		"a.PNG":     {KindImage, true},
		"b.tga":     {KindImage, true},
		"c.webp":    {KindImage, true},
		"d.mp4":     {KindVideo, true},
		"e.MOV":     {KindVideo, true},
		"f.txt":     {0, false},
		"noext":     {0, false},
		"dir/g.bmp": {KindImage, true},
	}
	for name, want := range cases {
		k, ok := KindOf(name)
		assert.Equal(t, want.ok, ok, name)
		if ok {
			assert.Equal(t, want.kind, k, name)
		}
	}
}

func TestLoadImageConvertsToNRGBA(t *testing.T) {
	dir := t.TempDir()
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	src.SetGray(1, 1, color.Gray{Y: 200})
	path := filepath.Join(dir, "gray.png")
	writePNG(t, path, src)

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{200, 200, 200, 255}, img.NRGBAAt(1, 1))
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).A)
}

func TestLoadImageErrors(t *testing.T) {
	_, err := LoadImage("clip.mp4")
	assert.Error(t, err)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCacheLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tex.png")
	writePNG(t, path, Checker(8, 8, 2, 2))

	c := NewCache(nil)
	var wg sync.WaitGroup
	imgs := make([]*image.NRGBA, 8)
	for i := range imgs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := c.Load(path)
			assert.NoError(t, err)
			imgs[i] = img
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
	for _, img := range imgs[1:] {
		assert.Same(t, imgs[0], img)
	}
}

func TestCacheResolvesMovedFileThroughIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	writePNG(t, filepath.Join(dir, "sub", "wall.png"), Checker(4, 4, 2, 2))
	writePNG(t, filepath.Join(dir, "wall.webp.png"), Checker(2, 2, 1, 1))

	idx := BuildIndex(dir)
	assert.Equal(t, 2, idx.Len())
	p, ok := idx.ResolvePath(`C:\old\place\Wall.jpg`)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "sub", "wall.png"), p)

	c := NewCache(idx)
	img, err := c.Load("/nowhere/wall.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}

func TestImportCopiesUnderUniqueName(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Poster.PNG")
	writePNG(t, src, Checker(4, 4, 2, 2))
	dir := filepath.Join(t.TempDir(), "media")

	a, err := Import(src, dir)
	require.NoError(t, err)
	b, err := Import(src, dir)
	require.NoError(t, err)

	assert.NotEqual(t, a.Path, b.Path)
	assert.Equal(t, dir, filepath.Dir(a.Path))
	assert.True(t, strings.HasPrefix(a.Name(), "Poster_"))
	assert.True(t, strings.HasSuffix(a.Name(), ".png"))
	assert.Equal(t, KindImage, a.Kind)

	require.NoError(t, a.Load(nil))
	assert.Equal(t, 4, a.Image.Bounds().Dx())

	_, err = Import(filepath.Join(t.TempDir(), "notes.txt"), dir)
	assert.Error(t, err)
}

func TestImportFailureLeavesNoPartialCopy(t *testing.T) {
	// a directory opens fine but cannot be read
	src := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.Mkdir(src, 0o755))
	dir := filepath.Join(t.TempDir(), "media")

	_, err := Import(src, dir)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestVideoLoadIsNoop(t *testing.T) {
	m, err := Open("show.mp4")
	require.NoError(t, err)
	assert.Equal(t, KindVideo, m.Kind)
	require.NoError(t, m.Load(NewCache(nil)))
	assert.Nil(t, m.Image)
}

func TestChecker(t *testing.T) {
	img := Checker(40, 20, 4, 2)
	assert.Equal(t, color.NRGBA{220, 40, 40, 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{30, 30, 30, 255}, img.NRGBAAt(15, 5))
	assert.Equal(t, color.NRGBA{235, 235, 235, 255}, img.NRGBAAt(25, 5))
}

func TestFit(t *testing.T) {
	img := Checker(400, 200, 4, 2)
	out := Fit(img, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 50), out.Bounds())
	assert.Same(t, img, Fit(img, 1000))
	assert.Same(t, img, Fit(img, 0))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("video")
	require.NoError(t, err)
	assert.Equal(t, KindVideo, k)
	assert.Equal(t, "video", k.String())
	_, err = ParseKind("audio")
	assert.Error(t, err)
}
