package batch

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/webp"

	"projmap/internal/camera"
	"projmap/internal/mathutil"
	"projmap/internal/quad"
	"projmap/internal/raster"
	"projmap/internal/scene"
	"projmap/internal/texture"
)

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := webp.Decode(f)
	require.NoError(t, err)
	return img
}

func halfFrame() Job {
	return Job{
		ID:   "left",
		Name: "left",
		Warp: warp(0, 0.5),
	}
}

func warp(x0, x1 float64) (w raster.Warp) {
	w.Corners = [4]mathutil.Vec3{{x0, 0, 1}, {x1, 0, 1}, {x1, 1, 1}, {x0, 1, 1}}
	w.Tiling = mathutil.Vec2{1, 1}
	return w
}

func TestRunWritesPreviews(t *testing.T) {
	dir := t.TempDir()
	texPath := filepath.Join(dir, "red.png")
	red := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(red.Pix); i += 4 {
		copy(red.Pix[i:i+4], []uint8{255, 0, 0, 255})
	}
	f, err := os.Create(texPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, red))
	require.NoError(t, f.Close())

	media, err := texture.Open(texPath)
	require.NoError(t, err)

	cfg := Config{
		OutputDir:   filepath.Join(dir, "out"),
		Width:       20,
		Height:      10,
		Supersample: 2,
		Workers:     2,
		Cache:       texture.NewCache(nil),
	}
	jobs := []Job{
		halfFrame(),
		{ID: "right", Name: "right", Warp: warp(0.5, 1), Media: media},
		{ID: "broken", Name: "broken", Warp: warp(0, 1), Media: &texture.Media{Kind: texture.KindImage, Path: filepath.Join(dir, "none.png")}},
	}
	results := Run(cfg, jobs)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	assert.InDelta(t, 0.5, results[0].Coverage, 0.1)
	img := decode(t, filepath.Join(cfg.OutputDir, results[0].Image))
	assert.Equal(t, image.Rect(0, 0, 20, 10), img.Bounds())

	assert.True(t, results[1].Success)
	img = decode(t, filepath.Join(cfg.OutputDir, "right.webp"))
	r, g, b, a := img.At(15, 5).RGBA()
	assert.Greater(t, r, uint32(0xf000))
	assert.Less(t, g, uint32(0x1000))
	assert.Less(t, b, uint32(0x1000))
	assert.Equal(t, uint32(0xffff), a)
	_, _, _, a = img.At(2, 5).RGBA()
	assert.Zero(t, a)

	assert.False(t, results[2].Success)
	assert.NotEmpty(t, results[2].Error)

	manifest := filepath.Join(cfg.OutputDir, "manifest.json")
	require.NoError(t, WriteManifest(manifest, results))
	entries, err := ReadManifest(manifest)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "right.webp", entries[1].Image)
	assert.Equal(t, 20, entries[1].Bounds[2])
	assert.Equal(t, 10, entries[1].Bounds[3])
	assert.Empty(t, entries[2].Image)
	assert.NotEmpty(t, entries[2].Error)
}

func TestCompositeAndMirror(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{OutputDir: dir, Width: 16, Height: 8, Supersample: 1, Workers: 1, Mirror: "horizontal", Outline: true}
	require.NoError(t, Composite(cfg, []Job{halfFrame()}))

	img := decode(t, filepath.Join(dir, CompositeName))
	// the left half lands on the right once mirrored
	_, _, _, a := img.At(12, 4).RGBA()
	assert.NotZero(t, a)
	_, _, _, a = img.At(3, 4).RGBA()
	assert.Zero(t, a)
}

func TestJobsFromScene(t *testing.T) {
	cam := camera.New()
	cam.FOV = 90
	cam.Aspect = 1
	s := scene.New(cam, scene.Options{})
	tr := mathutil.NewTransform()
	tr.Position = mathutil.Vec3{0, 0, -2}
	q, err := quad.FromLocal("", []mathutil.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}}, nil, tr)
	require.NoError(t, err)
	sf := s.AddQuad(q, false)

	assert.Empty(t, Jobs(s))
	s.Update(quad.Pointer{})
	jobs := Jobs(s)
	require.Len(t, jobs, 1)
	assert.Equal(t, sf.ID(), jobs[0].ID)
	assert.InDelta(t, 0.25, jobs[0].Warp.Corners[0][0], 1e-9)
}
