package editor

import (
	"strings"

	"github.com/gekko3d/blobterrain/terrainrt/rt/config"
)

type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

func ParseButton(name string) Button {
	switch strings.ToLower(name) {
	case "left":
		return ButtonLeft
	case "middle":
		return ButtonMiddle
	case "right":
		return ButtonRight
	default:
		return ButtonNone
	}
}

// Key is an editing command. The window layer decides which physical keys produce it.
type Key int

const (
	KeyUnknown Key = iota
	KeySelectPrevious
	KeySelectNext
	KeyWiden
	KeyNarrow
	KeyRaise
	KeyLower
	KeyZoomIn
	KeyZoomOut
)

type EventKind int

const (
	EventPointerDown EventKind = iota
	EventPointerUp
	EventPointerMove
	EventKeyDown
	EventScroll
)

// Event is one input from the window, in raster pixels with the origin at the top-left.
type Event struct {
	Kind   EventKind
	Button Button
	Key    Key
	X, Y   int
	Steps  float32 // scroll only; positive is away from the user
}

// Bindings maps drag modes to mouse buttons.
type Bindings struct {
	Rotate Button
	Place  Button
	Move   Button
}

func BindingsFromConfig(cfg config.Bindings) Bindings {
	return Bindings{
		Rotate: ParseButton(cfg.Rotate),
		Place:  ParseButton(cfg.Place),
		Move:   ParseButton(cfg.Move),
	}
}

type RegenPolicy int

const (
	// RegenPerFrame records pending changes; Flush regenerates at most once per frame.
	RegenPerFrame RegenPolicy = iota
	// RegenPerEvent regenerates at the end of every event that changed the markers.
	RegenPerEvent
)

func ParseRegenPolicy(s string) RegenPolicy {
	if s == config.RegenPerEvent {
		return RegenPerEvent
	}
	return RegenPerFrame
}
