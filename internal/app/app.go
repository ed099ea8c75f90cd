package app

import (
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/rajveermalviya/go-webgpu/wgpu"

	"meshviewer/internal/camera"
	"meshviewer/internal/config"
	"meshviewer/internal/controls"
	"meshviewer/internal/renderer"
	"meshviewer/internal/scene"
)

const (
	WindowedWidth  = 500
	WindowedHeight = 500

	// DefaultRefreshRate tunes the camera spring when the monitor reports none
	DefaultRefreshRate = 60
)

type App struct {
	window   *glfw.Window
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	renderer *renderer.Renderer
	camera   *camera.Camera
	state    *scene.State
	cfg      *config.Config

	fullscreen bool
	width      int
	height     int
}

// New opens the window and sets up WebGPU. texture may be nil.
func New(cfg *config.Config, state *scene.State, texture image.Image) (*App, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("GLFW init failed: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("window creation failed: %w", err)
	}

	app := &App{
		window: window,
		state:  state,
		cfg:    cfg,
	}
	app.width, app.height = window.GetFramebufferSize()

	if err := app.initWebGPU(); err != nil {
		app.Cleanup()
		return nil, err
	}

	app.camera = camera.NewCamera(mgl32.Vec3(cfg.Camera.Position), app.width, app.height)
	app.camera.FOVY = cfg.Camera.FOVY
	app.camera.Near = cfg.Camera.Near
	app.camera.Far = cfg.Camera.Far
	app.camera.DragSpeed = cfg.Camera.DragSpeed
	// Fifo presentation paces frames at the refresh rate
	app.camera.SetSmoothing(cfg.Camera.Smooth, refreshRate())

	app.renderer, err = renderer.NewRenderer(app.adapter, app.device, app.queue, app.surface, uint32(app.width), uint32(app.height), renderer.Options{
		PointSize:      cfg.Rendering.PointSize,
		LightPosition:  mgl32.Vec3(cfg.Rendering.LightPosition),
		MaxTextureSize: cfg.Rendering.MaxTextureSize,
	})
	if err != nil {
		app.Cleanup()
		return nil, fmt.Errorf("renderer creation failed: %w", err)
	}

	if texture != nil {
		if err := app.renderer.SetTexture(texture); err != nil {
			app.Cleanup()
			return nil, err
		}
		b := texture.Bounds()
		fmt.Printf("Texture uploaded (%dx%d)\n", b.Dx(), b.Dy())
	}
	if state.HasMesh() {
		verts := state.MeshVertices()
		if err := app.renderer.SetMesh(verts); err != nil {
			app.Cleanup()
			return nil, err
		}
		fmt.Printf("Mesh uploaded (%d triangles)\n", len(verts)/3)
	}

	app.setupCallbacks()

	if cfg.Window.FullScreen {
		app.setFullscreen(true)
	}

	return app, nil
}

func (app *App) initWebGPU() error {
	app.instance = wgpu.CreateInstance(&wgpu.InstanceDescriptor{
		Backends: instanceBackends,
	})
	if app.instance == nil {
		return fmt.Errorf("failed to create WebGPU instance")
	}

	app.surface = CreateSurface(app.instance, app.window)
	if app.surface == nil {
		return fmt.Errorf("surface creation failed")
	}

	// Request adapter - try with surface first, then without
	var err error
	app.adapter, err = app.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: app.surface,
		PowerPreference:   wgpu.PowerPreference_HighPerformance,
	})
	if err != nil {
		fmt.Println("Trying adapter without surface constraint...")
		app.adapter, err = app.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
			PowerPreference: wgpu.PowerPreference_HighPerformance,
		})
		if err != nil {
			return fmt.Errorf("adapter request failed: %w", err)
		}
	}

	props := app.adapter.GetProperties()
	fmt.Printf("GPU: %s (%s)\n", props.Name, props.DriverDescription)

	app.device, err = app.adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "MeshViewerDevice",
	})
	if err != nil {
		return fmt.Errorf("device request failed: %w", err)
	}

	app.queue = app.device.GetQueue()
	return nil
}

func refreshRate() int {
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		if mode := monitor.GetVideoMode(); mode != nil && mode.RefreshRate > 0 {
			return mode.RefreshRate
		}
	}
	return DefaultRefreshRate
}

// translateKey maps a GLFW key to the controls' key space
func translateKey(key glfw.Key) controls.Key {
	switch {
	case key >= glfw.KeyA && key <= glfw.KeyZ:
		return controls.Key('a' + rune(key-glfw.KeyA))
	case key == glfw.KeyEscape:
		return controls.KeyEscape
	case key == glfw.KeyUp:
		return controls.KeyUp
	case key == glfw.KeyDown:
		return controls.KeyDown
	}
	return controls.KeyUnknown
}

func (app *App) setupCallbacks() {
	app.window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			// Minimized
			return
		}
		app.width = width
		app.height = height
		app.camera.SetViewport(width, height)
		app.renderer.Resize(uint32(width), uint32(height))
	})

	app.window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button == glfw.MouseButtonLeft {
			x, y := w.GetCursorPos()
			if action == glfw.Press {
				app.camera.StartDrag(x, y)
			} else {
				app.camera.EndDrag()
			}
		}
	})

	app.window.SetCursorPosCallback(func(w *glfw.Window, x, y float64) {
		if app.camera.IsDragging() {
			app.camera.Drag(x, y)
		}
	})

	app.window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		switch controls.Apply(translateKey(key), app.camera, app.state) {
		case controls.Quit:
			w.SetShouldClose(true)
		case controls.Fullscreen:
			app.setFullscreen(true)
		case controls.Windowed:
			app.setFullscreen(false)
		}
	})
}

// setFullscreen moves the window onto the primary monitor at its current
// video mode, or back to a WindowedWidth x WindowedHeight window
func (app *App) setFullscreen(on bool) {
	if on {
		if app.fullscreen {
			return
		}
		monitor := glfw.GetPrimaryMonitor()
		if monitor == nil {
			fmt.Println("No primary monitor; staying windowed")
			return
		}
		mode := monitor.GetVideoMode()
		app.window.SetMonitor(monitor, 0, 0, mode.Width, mode.Height, mode.RefreshRate)
		app.fullscreen = true
		return
	}

	if app.fullscreen {
		app.window.SetMonitor(nil, 100, 100, WindowedWidth, WindowedHeight, 0)
		app.fullscreen = false
		return
	}
	app.window.SetSize(WindowedWidth, WindowedHeight)
}

func (app *App) Run() error {
	lastTime := time.Now()
	frames := 0

	for !app.window.ShouldClose() {
		glfw.PollEvents()
		app.camera.Update()

		if err := app.renderer.Render(app.state.Build(), app.camera); err != nil {
			fmt.Printf("Render error: %v\n", err)
		}

		frames++
		if time.Since(lastTime) >= time.Second {
			app.window.SetTitle(fmt.Sprintf("%s | Mode: %s | FPS: %d", app.cfg.Window.Title, app.state.Mode, frames))
			frames = 0
			lastTime = time.Now()
		}
	}

	return nil
}

func (app *App) Cleanup() {
	if app.renderer != nil {
		app.renderer.Release()
		app.renderer = nil
	}
	if app.queue != nil {
		app.queue.Release()
		app.queue = nil
	}
	if app.device != nil {
		app.device.Release()
		app.device = nil
	}
	if app.adapter != nil {
		app.adapter.Release()
		app.adapter = nil
	}
	if app.surface != nil {
		app.surface.Release()
		app.surface = nil
	}
	if app.instance != nil {
		app.instance.Release()
		app.instance = nil
	}
	if app.window != nil {
		app.window.Destroy()
		app.window = nil
	}
	glfw.Terminate()
}
