package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"projmap/internal/config"
	"projmap/internal/logx"
	"projmap/internal/quad"
	"projmap/internal/scene"
	"projmap/internal/tracker"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json, .toml, .yaml)")
	scenePath := flag.String("scene", "", "Scene file (default: scene.json)")
	space := flag.String("space", "", "Output space: viewport or ndc")
	width := flag.Int("width", 0, "View width in pixels")
	height := flag.Int("height", 0, "View height in pixels")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	if *verbose {
		logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{Scene: *scenePath, Space: *space, Width: *width, Height: *height})

	opts, err := cfg.TrackerOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sc := scene.New(cfg.NewCamera(), scene.Options{Tracker: opts, HandleRadius: cfg.Edit.HandleRadius})
	rep, err := sc.LoadFile(cfg.Scene)
	if err != nil {
		if rep.Surfaces == 0 && rep.Views == 0 && len(rep.Failed) == 0 {
			fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
			os.Exit(1)
		}
		for _, e := range rep.Failed {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", e)
		}
	}

	sc.Update(quad.Pointer{})

	cam := sc.Camera
	fmt.Printf("Scene: %s\n", cfg.Scene)
	fmt.Printf("Camera: pos=(%.3f, %.3f, %.3f) fov=%.1f %dx%d\n",
		cam.Position[0], cam.Position[1], cam.Position[2], cam.FOV, cam.Width, cam.Height)
	fmt.Printf("Space: %s flipY=%v\n", opts.Space, opts.FlipY)
	fmt.Printf("Surfaces: %d, Views: %d\n", len(sc.Surfaces()), len(sc.Views()))

	for _, sf := range sc.Surfaces() {
		fmt.Println("------------------------------------------------------------")
		fmt.Printf("%s", sf.ID())
		if sf.Quad.Name != "" {
			fmt.Printf("  %q", sf.Quad.Name)
		}
		if sf.Static {
			fmt.Print("  [static]")
		}
		fmt.Println()
		if m := sf.Material.Media; m != nil {
			fmt.Printf("  media: %s %s\n", m.Kind, m.Path)
		}
		for i, v := range sf.Quad.WorldVertices() {
			fmt.Printf("  v%d world=(%.4f, %.4f, %.4f)\n", i, v[0], v[1], v[2])
		}

		if _, ok := sf.Tracker.Last(); !ok {
			fmt.Println("  warp: none (a corner is behind the camera)")
			continue
		}
		for i := range 4 {
			v, _ := sf.Material.Vector(tracker.CornerParam(i))
			fmt.Printf("  %s = (%.4f, %.4f) depth=%.4f\n", tracker.CornerParam(i), v[0], v[1], v[2])
		}
		for _, name := range []string{tracker.ParamTiling, tracker.ParamOffset} {
			v, _ := sf.Material.Vector(name)
			fmt.Printf("  %s = (%.4f, %.4f)\n", name, v[0], v[1])
		}
	}
}
