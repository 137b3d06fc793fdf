package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location, relative to the process working directory.
const DefaultPath = "config/terrain.yaml"

// Regeneration policies for the terrain mesh.
const (
	RegenPerFrame = "per_frame"
	RegenPerEvent = "per_event"
)

type Window struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// Camera holds the initial orbit pose and the interaction constants.
// Angles are whole degrees; pitch is negated into elevation, so negative pitch looks down.
type Camera struct {
	YawDeg      int        `yaml:"yaw_deg"`
	PitchDeg    int        `yaml:"pitch_deg"`
	Radius      float32    `yaml:"radius"`
	MinRadius   float32    `yaml:"min_radius"`
	ZoomStep    float32    `yaml:"zoom_step"`
	Sensitivity float32    `yaml:"sensitivity"`
	FovDeg      float32    `yaml:"fov_deg"`
	Near        float32    `yaml:"near"`
	Far         float32    `yaml:"far"`
	LookAt      [3]float32 `yaml:"look_at"`
}

type Markers struct {
	DefaultHeight float32 `yaml:"default_height"`
	DefaultWidth  float32 `yaml:"default_width"`
	MinSize       float32 `yaml:"min_size"`
	SizeStep      float32 `yaml:"size_step"`
}

type Terrain struct {
	BaseElevation float32 `yaml:"base_elevation"`
	GridSize      int     `yaml:"grid_size"`
	Width         float32 `yaml:"width"`
	Length        float32 `yaml:"length"`
}

// Bindings names the mouse buttons driving each drag mode: "left", "middle" or "right".
type Bindings struct {
	Rotate string `yaml:"rotate"`
	Place  string `yaml:"place"`
	Move   string `yaml:"move"`
}

type Config struct {
	Window   Window   `yaml:"window"`
	Camera   Camera   `yaml:"camera"`
	Markers  Markers  `yaml:"markers"`
	Terrain  Terrain  `yaml:"terrain"`
	Bindings Bindings `yaml:"bindings"`
	Regen    string   `yaml:"regen"`
	Debug    bool     `yaml:"debug"`
	FontPath string   `yaml:"font_path,omitempty"`
}

// Default returns the configuration of the original scene: a 1000x800 window, a 32x32 quad
// terrain and a camera 30 units out, tilted 20 degrees down.
func Default() Config {
	return Config{
		Window: Window{
			Width:  1000,
			Height: 800,
			Title:  "Blob Terrain",
		},
		Camera: Camera{
			YawDeg:      0,
			PitchDeg:    -20,
			Radius:      30,
			MinRadius:   0.5,
			ZoomStep:    0.5,
			Sensitivity: 1,
			FovDeg:      45,
			Near:        0.2,
			Far:         300,
		},
		Markers: Markers{
			DefaultHeight: 3,
			DefaultWidth:  3,
			MinSize:       0.1,
			SizeStep:      0.5,
		},
		Terrain: Terrain{
			BaseElevation: 0,
			GridSize:      32,
			Width:         32,
			Length:        32,
		},
		Bindings: Bindings{
			Rotate: "middle",
			Place:  "left",
			Move:   "right",
		},
		Regen: RegenPerFrame,
	}
}

// Load reads the YAML config at path. A missing file yields Default() without error;
// a malformed file is an error. Fields left out of the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize replaces values that would break the scene with their defaults.
func (c *Config) Sanitize() {
	def := Default()

	if c.Window.Width <= 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height <= 0 {
		c.Window.Height = def.Window.Height
	}
	if c.Window.Title == "" {
		c.Window.Title = def.Window.Title
	}

	if c.Camera.MinRadius <= 0 {
		c.Camera.MinRadius = def.Camera.MinRadius
	}
	if c.Camera.Radius < c.Camera.MinRadius {
		c.Camera.Radius = c.Camera.MinRadius
	}
	if c.Camera.ZoomStep <= 0 {
		c.Camera.ZoomStep = def.Camera.ZoomStep
	}
	if c.Camera.Sensitivity == 0 {
		c.Camera.Sensitivity = def.Camera.Sensitivity
	}
	if c.Camera.FovDeg <= 0 || c.Camera.FovDeg >= 180 {
		c.Camera.FovDeg = def.Camera.FovDeg
	}
	if c.Camera.Near <= 0 {
		c.Camera.Near = def.Camera.Near
	}
	if c.Camera.Far <= c.Camera.Near {
		c.Camera.Far = def.Camera.Far
	}

	if c.Markers.MinSize <= 0 {
		c.Markers.MinSize = def.Markers.MinSize
	}
	if c.Markers.DefaultHeight < c.Markers.MinSize {
		c.Markers.DefaultHeight = def.Markers.DefaultHeight
	}
	if c.Markers.DefaultWidth < c.Markers.MinSize {
		c.Markers.DefaultWidth = def.Markers.DefaultWidth
	}
	if c.Markers.SizeStep <= 0 {
		c.Markers.SizeStep = def.Markers.SizeStep
	}

	if c.Terrain.GridSize <= 0 {
		c.Terrain.GridSize = def.Terrain.GridSize
	}
	if c.Terrain.Width <= 0 {
		c.Terrain.Width = def.Terrain.Width
	}
	if c.Terrain.Length <= 0 {
		c.Terrain.Length = def.Terrain.Length
	}

	c.Bindings.Rotate = sanitizeButton(c.Bindings.Rotate, def.Bindings.Rotate)
	c.Bindings.Place = sanitizeButton(c.Bindings.Place, def.Bindings.Place)
	c.Bindings.Move = sanitizeButton(c.Bindings.Move, def.Bindings.Move)

	switch c.Regen {
	case RegenPerFrame, RegenPerEvent:
	default:
		c.Regen = def.Regen
	}
}

func sanitizeButton(name, fallback string) string {
	switch strings.ToLower(name) {
	case "left", "middle", "right":
		return strings.ToLower(name)
	default:
		return fallback
	}
}
