package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesAndKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terrain.yaml")
	data := `
camera:
  pitch_deg: 0
  radius: 12.5
  look_at: [1, 0, -2]
markers:
  default_width: 5
bindings:
  rotate: Right
  move: middle
regen: per_event
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Camera.PitchDeg)
	assert.Equal(t, float32(12.5), cfg.Camera.Radius)
	assert.Equal(t, [3]float32{1, 0, -2}, cfg.Camera.LookAt)
	assert.Equal(t, float32(5), cfg.Markers.DefaultWidth)
	assert.Equal(t, "right", cfg.Bindings.Rotate)
	assert.Equal(t, "middle", cfg.Bindings.Move)
	assert.Equal(t, RegenPerEvent, cfg.Regen)
	assert.True(t, cfg.Debug)

	// untouched sections keep defaults
	assert.Equal(t, 1000, cfg.Window.Width)
	assert.Equal(t, float32(3), cfg.Markers.DefaultHeight)
	assert.Equal(t, 32, cfg.Terrain.GridSize)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("camera: [not, a, map"), 0644))

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSanitize(t *testing.T) {
	cfg := Config{
		Camera: Camera{
			Radius:    -4,
			MinRadius: 0,
			Near:      1,
			Far:       0.5,
		},
		Markers:  Markers{DefaultHeight: 0.01},
		Bindings: Bindings{Rotate: "thumb"},
		Regen:    "sometimes",
	}
	cfg.Sanitize()

	def := Default()
	assert.Equal(t, def.Camera.MinRadius, cfg.Camera.MinRadius)
	assert.Equal(t, cfg.Camera.MinRadius, cfg.Camera.Radius, "radius is clamped to the floor")
	assert.Equal(t, def.Camera.Far, cfg.Camera.Far)
	assert.Equal(t, def.Markers.DefaultHeight, cfg.Markers.DefaultHeight)
	assert.Equal(t, "middle", cfg.Bindings.Rotate)
	assert.Equal(t, RegenPerFrame, cfg.Regen)
	assert.Equal(t, def.Window, cfg.Window)
	assert.Equal(t, def.Terrain, cfg.Terrain)
}

func TestLoad_SampleConfigMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
