package main

import (
	"flag"
	"runtime"

	"github.com/gekko3d/blobterrain/terrainrt/rt/app"
	"github.com/gekko3d/blobterrain/terrainrt/rt/config"
	"github.com/gekko3d/blobterrain/terrainrt/rt/core"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML config")
	debug := flag.Bool("debug", false, "Enable debug logging and HUD stats")
	flag.Parse()

	logger := core.NewDefaultLogger("terrain", *debug)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warnf("using defaults: %v", err)
	}
	if *debug {
		cfg.Debug = true
	}
	logger.SetDebug(cfg.Debug)

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	application, err := app.NewApp(window, cfg, logger)
	if err != nil {
		panic(err)
	}
	if err := application.Init(); err != nil {
		panic(err)
	}

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})
	window.SetSizeCallback(func(w *glfw.Window, width, height int) {
		application.UpdateViewport()
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleMouseButton(button, action)
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.HandleCursor(xpos, ypos)
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		application.HandleScroll(yoff)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		application.HandleKey(key, action)
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}
