// Package batch renders warp previews of many surfaces concurrently and
// writes them as WebP files.
package batch

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"projmap/internal/logx"
	"projmap/internal/postprocess"
	"projmap/internal/raster"
	"projmap/internal/scene"
	"projmap/internal/texture"
	"projmap/internal/tracker"
)

// CompositeName is the file name of the all-surfaces preview.
const CompositeName = "composite.webp"

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir   string
	Width       int
	Height      int
	Supersample int
	Workers     int
	Tracker     tracker.Options
	Mirror      string // "", horizontal, vertical, both
	Outline     bool
	MaxTexture  int
	Cache       *texture.Cache
}

// Job is one surface to render.
type Job struct {
	ID    string
	Name  string
	Warp  raster.Warp
	Media *texture.Media
}

// Result holds the outcome of processing one job.
type Result struct {
	ID       string
	Name     string
	Image    string
	Coverage float64
	Bounds   image.Rectangle
	Success  bool
	Error    string
}

// Jobs collects the surfaces whose trackers have published parameters.
func Jobs(s *scene.Scene) []Job {
	var jobs []Job
	for _, sf := range s.Surfaces() {
		w, ok := raster.ReadWarp(sf.Material)
		if !ok {
			continue
		}
		jobs = append(jobs, Job{ID: sf.ID(), Name: sf.Quad.Name, Warp: w, Media: sf.Material.Media})
	}
	return jobs
}

// Run processes all jobs using a worker pool.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					logx.Logger().Info("batch: progress", "done", p, "total", total, "per_sec", rate)
				}
			}
		}
	}()

	workers := max(cfg.Workers, 1)
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job Job) Result {
	res := Result{ID: job.ID, Name: job.Name}

	tex, err := textureFor(cfg, job.Media)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	fb := newBuffer(cfg)
	raster.RenderWarp(fb, job.Warp, tex, cfg.Tracker)
	if cfg.Outline {
		raster.DrawOutline(fb, job.Warp, cfg.Tracker, float64(3*scale(cfg)), outlineColor)
	}
	img := finish(cfg, fb)

	res.Coverage, res.Bounds = postprocess.Coverage(img)
	res.Image = job.ID + ".webp"
	if err := writeWebP(filepath.Join(cfg.OutputDir, res.Image), img); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

// Composite renders every job into one depth-tested frame and writes
// CompositeName.
func Composite(cfg Config, jobs []Job) error {
	fb := newBuffer(cfg)
	for _, job := range jobs {
		tex, err := textureFor(cfg, job.Media)
		if err != nil {
			return err
		}
		raster.RenderWarp(fb, job.Warp, tex, cfg.Tracker)
	}
	if cfg.Outline {
		for _, job := range jobs {
			raster.DrawOutline(fb, job.Warp, cfg.Tracker, float64(3*scale(cfg)), outlineColor)
		}
	}
	return writeWebP(filepath.Join(cfg.OutputDir, CompositeName), finish(cfg, fb))
}

var outlineColor = color.NRGBA{255, 200, 0, 220}

// textureFor decodes image media. Surfaces without image media (none, or a
// video whose frames are decoded elsewhere) show the calibration pattern.
func textureFor(cfg Config, m *texture.Media) (*image.NRGBA, error) {
	if m == nil || m.Kind != texture.KindImage {
		return texture.Checker(512, 512, 8, 8), nil
	}
	img := m.Image
	if img == nil {
		var err error
		if cfg.Cache != nil {
			img, err = cfg.Cache.Load(m.Path)
		} else {
			img, err = texture.LoadImage(m.Path)
		}
		if err != nil {
			return nil, err
		}
	}
	return texture.Fit(img, cfg.MaxTexture), nil
}

func scale(cfg Config) int {
	return max(cfg.Supersample, 1)
}

func newBuffer(cfg Config) *raster.FrameBuffer {
	s := scale(cfg)
	return raster.NewFrameBuffer(cfg.Width*s, cfg.Height*s)
}

func finish(cfg Config, fb *raster.FrameBuffer) *image.NRGBA {
	img := fb.Image()
	if scale(cfg) > 1 {
		img = postprocess.Downsample(img, cfg.Width, cfg.Height)
	}
	switch cfg.Mirror {
	case "horizontal":
		img = postprocess.FlipHorizontal(img)
	case "vertical":
		img = postprocess.FlipVertical(img)
	case "both":
		img = postprocess.FlipVertical(postprocess.FlipHorizontal(img))
	}
	return img
}

func writeWebP(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("batch: create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: create %s: %w", path, err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("batch: webp encode %s: %w", path, err)
	}
	return f.Close()
}
