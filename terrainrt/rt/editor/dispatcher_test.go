package editor

import (
	"testing"

	"github.com/gekko3d/blobterrain/terrainrt/rt/config"
	"github.com/gekko3d/blobterrain/terrainrt/rt/core"
	"github.com/gekko3d/blobterrain/terrainrt/rt/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	calls int
	last  []core.Marker
}

func (g *fakeGenerator) Regenerate(markers []core.Marker) *mesh.Mesh {
	g.calls++
	g.last = markers
	return &mesh.Mesh{Size: len(markers)}
}

const (
	testW = 1000
	testH = 800
)

func newTestDispatcher(t *testing.T, mutate func(cfg *config.Config)) (*Dispatcher, *fakeGenerator) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	cam, err := core.NewOrbitCamera(cfg.Camera)
	require.NoError(t, err)
	markers := core.NewMarkerRegistry(cfg.Terrain.BaseElevation, cfg.Markers.MinSize)
	gen := &fakeGenerator{}

	d := NewDispatcher(cfg, cam, markers, gen, core.NewNopLogger())
	proj, err := core.Projection(cfg.Camera.FovDeg, testW, testH, cfg.Camera.Near, cfg.Camera.Far)
	require.NoError(t, err)
	d.SetViewport(testW, testH, proj)
	return d, gen
}

func TestDispatcher_InitialMesh(t *testing.T) {
	d, gen := newTestDispatcher(t, nil)
	assert.Equal(t, 1, gen.calls)
	assert.NotNil(t, d.Mesh())
	assert.Equal(t, ModeIdle, d.Mode())
}

func TestDispatcher_RotateDrag(t *testing.T) {
	d, gen := newTestDispatcher(t, nil)
	cam := d.Camera

	d.PointerDown(ButtonMiddle, 100, 100)
	assert.Equal(t, ModeRotatingCamera, d.Mode())

	d.PointerMove(130, 90)
	assert.Equal(t, -30, cam.EffectiveYaw())
	assert.Equal(t, -10, cam.EffectivePitch())
	assert.Equal(t, 0, cam.CommittedYaw, "not committed during the drag")

	d.PointerUp(ButtonMiddle, 130, 90)
	assert.Equal(t, ModeIdle, d.Mode())
	assert.Equal(t, -30, cam.CommittedYaw)
	assert.Equal(t, -10, cam.CommittedPitch)
	assert.Zero(t, cam.DragYaw)

	// a stray release does not commit again
	d.PointerUp(ButtonMiddle, 0, 0)
	assert.Equal(t, -30, cam.CommittedYaw)
	assert.Equal(t, 1, gen.calls, "camera motion never regenerates")
}

func TestDispatcher_FirstButtonWins(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	d.PointerDown(ButtonMiddle, 100, 100)
	d.PointerDown(ButtonLeft, testW/2, testH/2)
	assert.Zero(t, d.Markers.Len(), "place ignored while rotating")

	d.PointerUp(ButtonLeft, testW/2, testH/2)
	assert.Equal(t, ModeRotatingCamera, d.Mode(), "release of another button is ignored")

	d.PointerUp(ButtonMiddle, 100, 100)
	assert.Equal(t, ModeIdle, d.Mode())

	d.PointerDown(ButtonLeft, testW/2, testH/2)
	d.PointerDown(ButtonMiddle, 0, 0)
	assert.False(t, d.Camera.Rotating(), "rotate ignored while placing")
	d.PointerUp(ButtonLeft, testW/2, testH/2)
	assert.Equal(t, ModeIdle, d.Mode())
	assert.Equal(t, 1, d.Markers.Len())
}

func TestDispatcher_PlaceAndDrag(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	d.PointerDown(ButtonLeft, testW/2, testH/2)
	require.Equal(t, 1, d.Markers.Len())
	assert.Equal(t, ModePlacingOrMoving, d.Mode())
	assert.Equal(t, 0, d.Target())

	m, err := d.Markers.At(0)
	require.NoError(t, err)
	assert.InDelta(t, 0, m.Position.X(), 1e-2)
	assert.InDelta(t, 0, m.Position.Z(), 1e-2)
	assert.Equal(t, float32(3), m.Height)
	assert.Equal(t, float32(3), m.Width)

	d.PointerMove(testW/2+100, testH/2+50)
	moved, _ := d.Markers.At(0)
	assert.Greater(t, moved.Position.X(), float32(0), "right of center")
	assert.Greater(t, moved.Position.Z(), float32(0), "below center is nearer the camera")
	assert.Equal(t, float32(0), moved.Position.Y())

	d.PointerUp(ButtonLeft, testW/2+100, testH/2+50)
	assert.Equal(t, ModeIdle, d.Mode())
	assert.Equal(t, -1, d.Target())

	kept, _ := d.Markers.At(0)
	assert.Equal(t, moved.Position, kept.Position)
}

func TestDispatcher_PlaceMissKeepsMode(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	// the top edge looks above the horizon at the default pitch
	d.PointerDown(ButtonLeft, testW/2, 0)
	assert.Zero(t, d.Markers.Len())
	assert.Equal(t, ModePlacingOrMoving, d.Mode())

	d.PointerMove(testW/2, testH/2)
	assert.Zero(t, d.Markers.Len(), "no target to move")

	d.PointerUp(ButtonLeft, testW/2, testH/2)
	assert.Equal(t, ModeIdle, d.Mode())
}

func TestDispatcher_NoViewportNoPick(t *testing.T) {
	cfg := config.Default()
	cam, err := core.NewOrbitCamera(cfg.Camera)
	require.NoError(t, err)
	d := NewDispatcher(cfg, cam, core.NewMarkerRegistry(0, 0.1), &fakeGenerator{}, nil)

	d.PointerDown(ButtonLeft, 10, 10)
	assert.Zero(t, d.Markers.Len())
}

func TestDispatcher_MoveButtonDragsActiveMarker(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)

	d.PointerDown(ButtonRight, testW/2, testH/2)
	assert.Equal(t, -1, d.Target(), "nothing to move yet")
	d.PointerUp(ButtonRight, testW/2, testH/2)

	d.PointerDown(ButtonLeft, testW/2, testH/2)
	d.PointerUp(ButtonLeft, testW/2, testH/2)
	d.PointerDown(ButtonLeft, testW/2+200, testH/2)
	d.PointerUp(ButtonLeft, testW/2+200, testH/2)
	require.Equal(t, 2, d.Markers.Len())

	d.KeyDown(KeySelectPrevious)
	d.PointerDown(ButtonRight, testW/2-200, testH/2)
	assert.Equal(t, 0, d.Target())
	d.PointerUp(ButtonRight, testW/2-200, testH/2)

	first, _ := d.Markers.At(0)
	second, _ := d.Markers.At(1)
	assert.Less(t, first.Position.X(), float32(0))
	assert.Greater(t, second.Position.X(), float32(0))
}

func TestDispatcher_IdleMotionIgnored(t *testing.T) {
	d, gen := newTestDispatcher(t, func(cfg *config.Config) { cfg.Regen = config.RegenPerEvent })
	d.PointerDown(ButtonLeft, testW/2, testH/2)
	d.PointerUp(ButtonLeft, testW/2, testH/2)
	calls := gen.calls
	before, _ := d.Markers.At(0)

	d.PointerMove(0, testH-1)
	after, _ := d.Markers.At(0)
	assert.Equal(t, before, after)
	assert.Equal(t, calls, gen.calls)
}

func TestDispatcher_Keys(t *testing.T) {
	d, gen := newTestDispatcher(t, nil)

	// editing an empty registry is declined
	d.KeyDown(KeyWiden)
	d.KeyDown(KeySelectNext)
	assert.False(t, d.Pending())

	d.PointerDown(ButtonLeft, testW/2, testH/2)
	d.PointerUp(ButtonLeft, testW/2, testH/2)
	d.Flush()

	d.KeyDown(KeyWiden)
	d.KeyDown(KeyRaise)
	d.KeyDown(KeyRaise)
	m, _ := d.Markers.At(0)
	assert.InDelta(t, 3.5, m.Width, 1e-6)
	assert.InDelta(t, 4, m.Height, 1e-6)

	for i := 0; i < 20; i++ {
		d.KeyDown(KeyNarrow)
		d.KeyDown(KeyLower)
	}
	m, _ = d.Markers.At(0)
	assert.Greater(t, m.Width, float32(0))
	assert.Greater(t, m.Height, float32(0))

	require.True(t, d.Flush())
	assert.Equal(t, m, gen.last[0])

	r := d.Camera.Radius
	d.KeyDown(KeyZoomIn)
	assert.InDelta(t, r-0.5, d.Camera.Radius, 1e-6)
	d.KeyDown(KeyZoomOut)
	assert.InDelta(t, r, d.Camera.Radius, 1e-6)
}

func TestDispatcher_Scroll(t *testing.T) {
	d, _ := newTestDispatcher(t, nil)
	r := d.Camera.Radius

	d.Handle(Event{Kind: EventScroll, Steps: 2})
	assert.InDelta(t, r-1, d.Camera.Radius, 1e-6)

	for i := 0; i < 200; i++ {
		d.Scroll(10)
	}
	assert.Equal(t, d.Camera.MinRadius, d.Camera.Radius)
}

func TestDispatcher_RegenPerFrameCoalesces(t *testing.T) {
	d, gen := newTestDispatcher(t, nil)
	require.Equal(t, RegenPerFrame, d.Policy)

	d.PointerDown(ButtonLeft, testW/2, testH/2)
	for i := 0; i < 25; i++ {
		d.PointerMove(testW/2+i, testH/2+i)
	}
	assert.Equal(t, 1, gen.calls, "nothing regenerated before the frame")
	assert.True(t, d.Pending())

	assert.True(t, d.Flush())
	assert.Equal(t, 2, gen.calls)
	assert.False(t, d.Flush())
	assert.Equal(t, 2, gen.calls)
	assert.Len(t, gen.last, 1)
}

func TestDispatcher_RegenPerEvent(t *testing.T) {
	d, gen := newTestDispatcher(t, func(cfg *config.Config) { cfg.Regen = config.RegenPerEvent })

	d.PointerDown(ButtonLeft, testW/2, testH/2)
	assert.Equal(t, 2, gen.calls)
	d.PointerMove(testW/2+10, testH/2)
	d.PointerMove(testW/2+20, testH/2)
	assert.Equal(t, 4, gen.calls)
	d.PointerUp(ButtonLeft, testW/2+20, testH/2)
	assert.Equal(t, 4, gen.calls, "release changes nothing")
	assert.False(t, d.Flush())
}

func TestDispatcher_CustomBindings(t *testing.T) {
	d, _ := newTestDispatcher(t, func(cfg *config.Config) {
		cfg.Bindings = config.Bindings{Rotate: "left", Place: "right", Move: "middle"}
	})

	d.Handle(Event{Kind: EventPointerDown, Button: ButtonLeft, X: 10, Y: 10})
	assert.Equal(t, ModeRotatingCamera, d.Mode())
	d.Handle(Event{Kind: EventPointerUp, Button: ButtonLeft, X: 10, Y: 10})

	d.Handle(Event{Kind: EventPointerDown, Button: ButtonRight, X: testW / 2, Y: testH / 2})
	assert.Equal(t, 1, d.Markers.Len())
}

func TestParseButton(t *testing.T) {
	assert.Equal(t, ButtonLeft, ParseButton("Left"))
	assert.Equal(t, ButtonMiddle, ParseButton("middle"))
	assert.Equal(t, ButtonNone, ParseButton("thumb"))
	assert.Equal(t, "right", ButtonRight.String())
}

func TestParseRegenPolicy(t *testing.T) {
	assert.Equal(t, RegenPerEvent, ParseRegenPolicy(config.RegenPerEvent))
	assert.Equal(t, RegenPerFrame, ParseRegenPolicy(config.RegenPerFrame))
	assert.Equal(t, RegenPerFrame, ParseRegenPolicy(""))
}
