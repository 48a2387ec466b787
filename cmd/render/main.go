package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"projmap/internal/batch"
	"projmap/internal/config"
	"projmap/internal/logx"
	"projmap/internal/quad"
	"projmap/internal/scene"
	"projmap/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json, .toml, .yaml)")
	scenePath := flag.String("scene", "", "Scene file (default: scene.json)")
	outputDir := flag.String("output", "", "Output directory (default: <scene dir>/previews)")
	mediaDir := flag.String("media-dir", "", "Media directory searched for moved files")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	width := flag.Int("width", 0, "Preview width in pixels")
	height := flag.Int("height", 0, "Preview height in pixels")
	space := flag.String("space", "", "Warp parameter space: viewport or ndc")
	watch := flag.Bool("watch", false, "Re-export whenever the scene file changes")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *verbose {
		logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Scene:     *scenePath,
		OutputDir: *outputDir,
		MediaDir:  *mediaDir,
		Workers:   *workers,
		Width:     *width,
		Height:    *height,
		Space:     *space,
	})

	// Build media index
	texIndex := texture.BuildIndex(cfg.MediaDir)
	fmt.Printf("Media: %d indexed in %s\n", texIndex.Len(), cfg.MediaDir)

	if !*watch {
		if !export(cfg, texture.NewCache(texIndex)) {
			os.Exit(1)
		}
		return
	}

	if err := watchScene(cfg, texIndex); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// export runs one frame of the scene and writes every preview, the composite
// and the manifest. It reports whether everything succeeded.
func export(cfg config.Config, cache *texture.Cache) bool {
	opts, err := cfg.TrackerOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	sc := scene.New(cfg.NewCamera(), scene.Options{Tracker: opts, HandleRadius: cfg.Edit.HandleRadius})
	rep, err := sc.LoadFile(cfg.Scene)
	if err != nil {
		if rep.Surfaces == 0 && rep.Views == 0 && len(rep.Failed) == 0 {
			fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
			return false
		}
		fmt.Fprintf(os.Stderr, "Warning: %d record(s) skipped\n", len(rep.Failed))
		for _, e := range rep.Failed {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
	}
	sc.Update(quad.Pointer{})

	jobs := batch.Jobs(sc)
	if skipped := len(sc.Surfaces()) - len(jobs); skipped > 0 {
		fmt.Printf("Skipped %d surface(s) with no warp this frame\n", skipped)
	}
	if len(jobs) == 0 {
		fmt.Println("No surfaces to render.")
		return true
	}

	fmt.Printf("Projection previews → WebP\n")
	fmt.Printf("Surfaces: %d, Workers: %d, Size: %dx%d\n", len(jobs), cfg.Render.Workers, cfg.Camera.Width, cfg.Camera.Height)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	start := time.Now()
	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Width:       cfg.Camera.Width,
		Height:      cfg.Camera.Height,
		Supersample: cfg.Render.Supersample,
		Workers:     cfg.Render.Workers,
		Tracker:     opts,
		Mirror:      cfg.Render.Mirror,
		Outline:     cfg.Render.Outline,
		MaxTexture:  cfg.Render.MaxTexture,
		Cache:       cache,
	}
	results := batch.Run(batchCfg, jobs)
	compErr := batch.Composite(batchCfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	var failed []batch.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failed), len(results))
	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed[:min(len(failed), 20)] {
			fmt.Printf("  %s %s: %s\n", r.ID, r.Name, r.Error)
		}
	}
	if compErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: composite failed: %v\n", compErr)
	} else {
		fmt.Printf("Composite: %s\n", filepath.Join(cfg.OutputDir, batch.CompositeName))
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	return len(failed) == 0 && compErr == nil
}

// watchScene exports once, then again after each change to the scene file.
// The scene's directory is watched and events for other files ignored. Each
// run gets a fresh cache.
func watchScene(cfg config.Config, index *texture.Index) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(cfg.Scene)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	export(cfg, texture.NewCache(index))
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", target)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	const settle = 200 * time.Millisecond
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Rename == fsnotify.Rename:
				logx.Logger().Debug("render: scene changed", "op", event.Op.String())
				pending = time.After(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watch: %v\n", err)
		case <-pending:
			pending = nil
			export(cfg, texture.NewCache(index))
		case <-interrupt:
			return nil
		}
	}
}
