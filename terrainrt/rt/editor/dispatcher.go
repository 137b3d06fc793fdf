package editor

import (
	"github.com/gekko3d/blobterrain/terrainrt/rt/config"
	"github.com/gekko3d/blobterrain/terrainrt/rt/core"
	"github.com/gekko3d/blobterrain/terrainrt/rt/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeRotatingCamera
	ModePlacingOrMoving
)

func (m Mode) String() string {
	switch m {
	case ModeRotatingCamera:
		return "rotating"
	case ModePlacingOrMoving:
		return "placing"
	default:
		return "idle"
	}
}

// MeshGenerator rebuilds terrain geometry from the current markers.
type MeshGenerator interface {
	Regenerate(markers []core.Marker) *mesh.Mesh
}

// Dispatcher routes window input to the camera and the marker registry. The first button
// pressed owns the drag until it is released; other buttons are ignored meanwhile.
// It is not safe for concurrent use; all events arrive on the window thread.
type Dispatcher struct {
	Camera    *core.OrbitCamera
	Markers   *core.MarkerRegistry
	Generator MeshGenerator
	Bindings  Bindings
	Policy    RegenPolicy
	Logger    core.Logger

	DefaultHeight float32
	DefaultWidth  float32
	SizeStep      float32
	PlaneHeight   float32

	mode   Mode
	owner  Button
	target int

	width, height int
	proj          mgl32.Mat4

	mesh       *mesh.Mesh
	pending    bool
	regenCount int
}

func NewDispatcher(cfg config.Config, camera *core.OrbitCamera, markers *core.MarkerRegistry, gen MeshGenerator, logger core.Logger) *Dispatcher {
	if logger == nil {
		logger = core.NewNopLogger()
	}
	d := &Dispatcher{
		Camera:        camera,
		Markers:       markers,
		Generator:     gen,
		Bindings:      BindingsFromConfig(cfg.Bindings),
		Policy:        ParseRegenPolicy(cfg.Regen),
		Logger:        logger,
		DefaultHeight: cfg.Markers.DefaultHeight,
		DefaultWidth:  cfg.Markers.DefaultWidth,
		SizeStep:      cfg.Markers.SizeStep,
		PlaneHeight:   cfg.Terrain.BaseElevation,
		target:        -1,
	}
	d.regenerate()
	return d
}

func (d *Dispatcher) Mode() Mode { return d.mode }

// Target is the marker being dragged, or -1.
func (d *Dispatcher) Target() int { return d.target }

// Mesh returns the most recently generated terrain.
func (d *Dispatcher) Mesh() *mesh.Mesh { return d.mesh }

func (d *Dispatcher) RegenCount() int { return d.regenCount }

// Pending reports whether marker changes are waiting for Flush.
func (d *Dispatcher) Pending() bool { return d.pending }

// SetViewport sets the raster size of pointer coordinates and the projection used for picking.
func (d *Dispatcher) SetViewport(width, height int, proj mgl32.Mat4) {
	d.width, d.height = width, height
	d.proj = proj
}

func (d *Dispatcher) Handle(ev Event) {
	switch ev.Kind {
	case EventPointerDown:
		d.PointerDown(ev.Button, ev.X, ev.Y)
	case EventPointerUp:
		d.PointerUp(ev.Button, ev.X, ev.Y)
	case EventPointerMove:
		d.PointerMove(ev.X, ev.Y)
	case EventKeyDown:
		d.KeyDown(ev.Key)
	case EventScroll:
		d.Scroll(ev.Steps)
	}
}

func (d *Dispatcher) PointerDown(b Button, x, y int) {
	if d.mode != ModeIdle {
		d.Logger.Debugf("ignoring %s press while %s", b, d.mode)
		return
	}

	switch b {
	case ButtonNone:
		return
	case d.Bindings.Rotate:
		d.Camera.BeginRotateDrag(x, y)
		d.enter(ModeRotatingCamera, b)
	case d.Bindings.Place:
		d.enter(ModePlacingOrMoving, b)
		p, err := d.pick(x, y)
		if err != nil {
			d.Logger.Debugf("place at (%d,%d) declined: %v", x, y, err)
			break
		}
		d.target = d.Markers.Insert(p, d.DefaultHeight, d.DefaultWidth)
		m, _ := d.Markers.At(d.target)
		d.Logger.Infof("marker %d (%s) placed at (%.2f, %.2f)", d.target, m.ID, p.X(), p.Z())
	case d.Bindings.Move:
		d.enter(ModePlacingOrMoving, b)
		if idx, ok := d.Markers.Active(); ok {
			d.target = idx
			d.moveTarget(x, y)
		}
	}
	d.afterEvent()
}

func (d *Dispatcher) PointerUp(b Button, x, y int) {
	if d.mode == ModeIdle || b != d.owner {
		return
	}
	if d.mode == ModeRotatingCamera {
		d.Camera.EndRotateDrag()
		d.Logger.Debugf("camera yaw %d pitch %d", d.Camera.CommittedYaw, d.Camera.CommittedPitch)
	}
	d.mode = ModeIdle
	d.owner = ButtonNone
	d.target = -1
	d.afterEvent()
}

func (d *Dispatcher) PointerMove(x, y int) {
	switch d.mode {
	case ModeRotatingCamera:
		d.Camera.UpdateRotateDrag(x, y)
	case ModePlacingOrMoving:
		if d.target >= 0 {
			d.moveTarget(x, y)
		}
	}
	d.afterEvent()
}

func (d *Dispatcher) KeyDown(k Key) {
	active, _ := d.Markers.Active()
	var err error

	switch k {
	case KeySelectPrevious:
		d.Markers.SelectPrevious()
	case KeySelectNext:
		d.Markers.SelectNext()
	case KeyWiden:
		err = d.Markers.AdjustSize(active, d.SizeStep, 0)
	case KeyNarrow:
		err = d.Markers.AdjustSize(active, -d.SizeStep, 0)
	case KeyRaise:
		err = d.Markers.AdjustSize(active, 0, d.SizeStep)
	case KeyLower:
		err = d.Markers.AdjustSize(active, 0, -d.SizeStep)
	case KeyZoomIn:
		d.Camera.Zoom(-1)
	case KeyZoomOut:
		d.Camera.Zoom(1)
	}
	if err != nil {
		d.Logger.Debugf("resize declined: %v", err)
	}
	d.afterEvent()
}

// Scroll zooms the camera; scrolling up moves it closer.
func (d *Dispatcher) Scroll(steps float32) {
	if steps == 0 {
		return
	}
	if d.Camera.Zoom(-steps) {
		d.Logger.Debugf("zoom clamped at radius %.2f", d.Camera.Radius)
	}
}

// Flush regenerates the terrain if markers changed since the last regeneration.
// Call it once per rendered frame.
func (d *Dispatcher) Flush() bool {
	if !d.pending {
		return false
	}
	d.regenerate()
	return true
}

func (d *Dispatcher) enter(mode Mode, owner Button) {
	d.mode = mode
	d.owner = owner
	d.target = -1
}

func (d *Dispatcher) moveTarget(x, y int) {
	p, err := d.pick(x, y)
	if err != nil {
		d.Logger.Debugf("move to (%d,%d) declined: %v", x, y, err)
		return
	}
	if err := d.Markers.SetPosition(d.target, p); err != nil {
		d.Logger.Debugf("move declined: %v", err)
	}
}

func (d *Dispatcher) pick(x, y int) (mgl32.Vec3, error) {
	return core.PickGround(float32(x), float32(y), d.width, d.height,
		d.proj, d.Camera.ViewMatrix(), d.Camera.EyePosition(), d.PlaneHeight)
}

func (d *Dispatcher) afterEvent() {
	if d.Markers.TakeDirty() {
		d.pending = true
	}
	if d.pending && d.Policy == RegenPerEvent {
		d.regenerate()
	}
}

func (d *Dispatcher) regenerate() {
	d.pending = false
	if d.Generator == nil {
		return
	}
	d.mesh = d.Generator.Regenerate(d.Markers.Markers())
	d.regenCount++
}
