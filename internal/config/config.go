// Package config loads projmap settings from JSON, TOML or YAML files.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"projmap/internal/camera"
	"projmap/internal/tracker"
)

// Config holds all configurable paths and settings.
type Config struct {
	// Paths
	Scene     string `json:"scene" toml:"scene" yaml:"scene"`
	OutputDir string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	MediaDir  string `json:"media_dir" toml:"media_dir" yaml:"media_dir"`

	Camera  Camera  `json:"camera" toml:"camera" yaml:"camera"`
	Render  Render  `json:"render" toml:"render" yaml:"render"`
	Tracker Tracker `json:"tracker" toml:"tracker" yaml:"tracker"`
	Edit    Edit    `json:"edit" toml:"edit" yaml:"edit"`
}

// Camera holds projection settings of the observing camera.
type Camera struct {
	FOV    float64 `json:"fov" toml:"fov" yaml:"fov"`
	Near   float64 `json:"near" toml:"near" yaml:"near"`
	Far    float64 `json:"far" toml:"far" yaml:"far"`
	Width  int     `json:"width" toml:"width" yaml:"width"`
	Height int     `json:"height" toml:"height" yaml:"height"`
}

// Render holds preview export settings.
type Render struct {
	Supersample int    `json:"supersample" toml:"supersample" yaml:"supersample"`
	Workers     int    `json:"workers" toml:"workers" yaml:"workers"`
	Mirror      string `json:"mirror" toml:"mirror" yaml:"mirror"` // "", horizontal, vertical, both
	Outline     bool   `json:"outline" toml:"outline" yaml:"outline"`
	MaxTexture  int    `json:"max_texture" toml:"max_texture" yaml:"max_texture"`
}

// Tracker holds the warp parameter conventions.
type Tracker struct {
	Space string `json:"space" toml:"space" yaml:"space"` // viewport or ndc
	FlipY *bool  `json:"flip_y" toml:"flip_y" yaml:"flip_y"`
}

// Edit holds interactive editing settings.
type Edit struct {
	HandleRadius float64 `json:"handle_radius" toml:"handle_radius" yaml:"handle_radius"`
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scene     string
	OutputDir string
	MediaDir  string
	Workers   int
	Width     int
	Height    int
	Space     string
}

// Load reads a config file; the format follows the extension (.json, .toml,
// .yaml or .yml). Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: unsupported format %q", ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve applies flag overrides, then fills empty fields with defaults.
// Relative output and media dirs are resolved against the scene's directory.
func (c *Config) Resolve(flags Flags) {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.MediaDir != "" {
		c.MediaDir = flags.MediaDir
	}
	if flags.Workers > 0 {
		c.Render.Workers = flags.Workers
	}
	if flags.Width > 0 {
		c.Camera.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Camera.Height = flags.Height
	}
	if flags.Space != "" {
		c.Tracker.Space = flags.Space
	}

	if c.Scene == "" {
		c.Scene = "scene.json"
	}
	base := filepath.Dir(c.Scene)
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(base, "previews")
	} else if !filepath.IsAbs(c.OutputDir) && flags.OutputDir == "" {
		c.OutputDir = filepath.Join(base, c.OutputDir)
	}
	if c.MediaDir == "" {
		c.MediaDir = filepath.Join(base, "media")
	} else if !filepath.IsAbs(c.MediaDir) && flags.MediaDir == "" {
		c.MediaDir = filepath.Join(base, c.MediaDir)
	}

	if c.Camera.FOV <= 0 {
		c.Camera.FOV = 60
	}
	if c.Camera.Near <= 0 {
		c.Camera.Near = 0.01
	}
	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = 1000
	}
	if c.Camera.Width <= 0 {
		c.Camera.Width = 1280
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = 720
	}

	if c.Render.Supersample <= 0 {
		c.Render.Supersample = 2
	}
	if c.Render.Workers <= 0 {
		c.Render.Workers = runtime.NumCPU()
	}
	if c.Render.MaxTexture <= 0 {
		c.Render.MaxTexture = 2048
	}

	if c.Tracker.Space == "" {
		c.Tracker.Space = "viewport"
	}
	if c.Tracker.FlipY == nil {
		flip := true
		c.Tracker.FlipY = &flip
	}

	if c.Edit.HandleRadius <= 0 {
		c.Edit.HandleRadius = 0.05
	}
}

// NewCamera returns an observing camera with the configured projection.
func (c *Config) NewCamera() *camera.Camera {
	cam := camera.New()
	cam.FOV = c.Camera.FOV
	cam.Near = c.Camera.Near
	cam.Far = c.Camera.Far
	cam.Width = c.Camera.Width
	cam.Height = c.Camera.Height
	return cam
}

// TrackerOptions converts the tracker section. Call after Resolve.
func (c *Config) TrackerOptions() (tracker.Options, error) {
	space, err := tracker.ParseSpace(c.Tracker.Space)
	if err != nil {
		return tracker.Options{}, fmt.Errorf("config: %w", err)
	}
	return tracker.Options{Space: space, FlipY: c.Tracker.FlipY == nil || *c.Tracker.FlipY}, nil
}
