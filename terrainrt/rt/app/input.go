package app

import (
	"github.com/gekko3d/blobterrain/terrainrt/rt/editor"
	"github.com/go-gl/glfw/v3.3/glfw"
)

var mouseButtons = map[glfw.MouseButton]editor.Button{
	glfw.MouseButtonLeft:   editor.ButtonLeft,
	glfw.MouseButtonMiddle: editor.ButtonMiddle,
	glfw.MouseButtonRight:  editor.ButtonRight,
}

var editorKeys = map[glfw.Key]editor.Key{
	glfw.KeyLeft:         editor.KeySelectPrevious,
	glfw.KeyRight:        editor.KeySelectNext,
	glfw.KeyRightBracket: editor.KeyWiden,
	glfw.KeyLeftBracket:  editor.KeyNarrow,
	glfw.KeyUp:           editor.KeyRaise,
	glfw.KeyDown:         editor.KeyLower,
	glfw.KeyEqual:        editor.KeyZoomIn,
	glfw.KeyKPAdd:        editor.KeyZoomIn,
	glfw.KeyMinus:        editor.KeyZoomOut,
	glfw.KeyKPSubtract:   editor.KeyZoomOut,
}

func (a *App) HandleMouseButton(button glfw.MouseButton, action glfw.Action) {
	b, ok := mouseButtons[button]
	if !ok {
		return
	}
	x, y := a.Window.GetCursorPos()
	ev := editor.Event{Button: b, X: int(x), Y: int(y)}
	switch action {
	case glfw.Press:
		ev.Kind = editor.EventPointerDown
	case glfw.Release:
		ev.Kind = editor.EventPointerUp
	default:
		return
	}
	a.Dispatcher.Handle(ev)
}

func (a *App) HandleCursor(x, y float64) {
	a.Dispatcher.Handle(editor.Event{Kind: editor.EventPointerMove, X: int(x), Y: int(y)})
}

func (a *App) HandleScroll(yoff float64) {
	a.Dispatcher.Handle(editor.Event{Kind: editor.EventScroll, Steps: float32(yoff)})
}

func (a *App) HandleKey(key glfw.Key, action glfw.Action) {
	if action != glfw.Press && action != glfw.Repeat {
		return
	}
	switch key {
	case glfw.KeyEscape:
		a.Window.SetShouldClose(true)
		return
	case glfw.KeyF3:
		if action == glfw.Press {
			a.DebugMode = !a.DebugMode
			a.Logger.SetDebug(a.DebugMode)
		}
		return
	}
	if k, ok := editorKeys[key]; ok {
		a.Dispatcher.Handle(editor.Event{Kind: editor.EventKeyDown, Key: k})
	}
}
