package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"projmap/internal/config"
	"projmap/internal/logx"
	"projmap/internal/mathutil"
	"projmap/internal/scene"
	"projmap/internal/texture"
)

// vec3List collects repeated -p x,y,z flags.
type vec3List []mathutil.Vec3

func (l *vec3List) String() string {
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = formatVec3(v)
	}
	return strings.Join(parts, " ")
}

func (l *vec3List) Set(s string) error {
	v, err := parseVec3(s)
	if err != nil {
		return err
	}
	*l = append(*l, v)
	return nil
}

func parseVec3(s string) (mathutil.Vec3, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return mathutil.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v mathutil.Vec3
	for i, f := range fields {
		x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return mathutil.Vec3{}, fmt.Errorf("bad coordinate %q: %w", f, err)
		}
		v[i] = x
	}
	return v, nil
}

func formatVec3(v mathutil.Vec3) string {
	return fmt.Sprintf("%g,%g,%g", v[0], v[1], v[2])
}

func main() {
	var points vec3List
	flag.Var(&points, "p", "Picked point x,y,z (repeat 4 times)")
	configFile := flag.String("config", "", "Path to config file (.json, .toml, .yaml)")
	scenePath := flag.String("scene", "", "Scene file to append to (default: scene.json)")
	mediaDir := flag.String("media-dir", "", "Directory imported media is copied to")
	name := flag.String("name", "", "Surface name")
	media := flag.String("media", "", "Image or video to import and assign")
	eye := flag.String("eye", "", "Viewer position x,y,z the surface should face")
	static := flag.Bool("static", false, "Track mesh vertices and never show handles")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Parse()

	if *verbose {
		logx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if len(points) != 4 {
		fmt.Fprintf(os.Stderr, "Error: need exactly 4 -p points, got %d\n", len(points))
		os.Exit(2)
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
	cfg.Resolve(config.Flags{Scene: *scenePath, MediaDir: *mediaDir})

	opts, err := cfg.TrackerOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	sc := scene.New(cfg.NewCamera(), scene.Options{Tracker: opts, HandleRadius: cfg.Edit.HandleRadius})

	rep, err := sc.LoadFile(cfg.Scene)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Printf("Creating %s\n", cfg.Scene)
	case err != nil && rep.Surfaces == 0 && rep.Views == 0 && len(rep.Failed) == 0:
		fmt.Fprintf(os.Stderr, "Error loading scene: %v\n", err)
		os.Exit(1)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Warning: %d record(s) skipped: %v\n", len(rep.Failed), err)
	}

	if *eye != "" {
		v, err := parseVec3(*eye)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: -eye: %v\n", err)
			os.Exit(2)
		}
		sc.Selection.SetViewer(v)
	}

	var sf *scene.Surface
	for _, p := range points {
		q, err := sc.Selection.AddPoint(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if q != nil {
			sf = sc.AddQuad(q, *static)
		}
	}
	if *name != "" {
		sf.Quad.Name = *name
	}

	if *media != "" {
		m, err := texture.Import(*media, cfg.MediaDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error importing media: %v\n", err)
			os.Exit(1)
		}
		sf.Material.SetMedia(m)
		fmt.Printf("Media: %s (%s)\n", m.Path, m.Kind)
	}

	if err := sc.SaveFile(cfg.Scene); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving scene: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Surface %s", sf.ID())
	if sf.Quad.Name != "" {
		fmt.Printf(" %q", sf.Quad.Name)
	}
	fmt.Println()
	for i, v := range sf.Quad.WorldVertices() {
		fmt.Printf("  v%d  %s\n", i, formatVec3(v))
	}
	n := sf.Quad.Normal()
	fmt.Printf("  normal %s\n", formatVec3(n))
	fmt.Printf("Scene: %s (%d surfaces)\n", cfg.Scene, len(sc.Surfaces()))
}
