// Package viewer wires the window, renderer and display loop together.
package viewer

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/assets"
	"github.com/Faultbox/pbr-viewer/internal/config"
	"github.com/Faultbox/pbr-viewer/internal/engine/camera"
	"github.com/Faultbox/pbr-viewer/internal/engine/display"
	"github.com/Faultbox/pbr-viewer/internal/engine/gpu"
	"github.com/Faultbox/pbr-viewer/internal/engine/gpu/glgpu"
	"github.com/Faultbox/pbr-viewer/internal/engine/input"
	"github.com/Faultbox/pbr-viewer/internal/engine/renderer"
	"github.com/Faultbox/pbr-viewer/internal/engine/screenshot"
	"github.com/Faultbox/pbr-viewer/internal/engine/shader"
	"github.com/Faultbox/pbr-viewer/internal/engine/texture"
	"github.com/Faultbox/pbr-viewer/internal/engine/window"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

// Viewer is the main viewer instance.
type Viewer struct {
	config   *config.Config
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	assets   *assets.Manager
	loop     *display.Loop
	shots    *screenshot.Capture
	dev      gpu.Device
}

// New creates the window, GL device and renderer.
func New(cfg *config.Config) (*Viewer, error) {
	logger.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("assets", cfg.Scene.AssetDir),
	)

	v := &Viewer{
		config: cfg,
		input:  input.New(),
		assets: assets.NewManager(cfg.Scene.AssetDir),
		shots:  screenshot.New(cfg.Window.ScreenshotDir, "pbrviewer"),
	}

	// Create window (this also creates OpenGL context)
	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	dev, err := glgpu.New()
	if err != nil {
		v.window.Close()
		return nil, err
	}

	sources, err := shader.LoadSources(cfg.Shaders.Dir)
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to load shaders: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	width, height := v.window.DrawableSize()
	v.renderer, err = renderer.New(dev, renderer.Config{
		Width:      width,
		Height:     height,
		Shaders:    sources,
		Placements: Placements(cfg.Scene.Placements),
	}, v.assets, texture.NewLoader(dev))
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	v.dev = dev
	fps := v.window.RefreshRate(cfg.Window.FPS)
	v.loop = display.New(v.renderer, v.window, float64(fps))

	logger.Info("viewer initialized successfully", zap.Int("fps", fps))
	return v, nil
}

// Placements converts configured placements for the renderer.
func Placements(in []config.Placement) []renderer.Placement {
	out := make([]renderer.Placement, len(in))
	for i, p := range in {
		out[i] = renderer.Placement{
			Asset:        p.Asset,
			Position:     mgl32.Vec3(p.Position),
			Scale:        p.Scale,
			RotationAxis: mgl32.Vec3(p.RotationAxis),
			Angle:        p.Angle,
		}
	}
	return out
}

// Run drives the display loop until the window closes or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	return v.loop.Run(ctx, v.poll)
}

func (v *Viewer) poll() bool {
	if v.input.Update() {
		return true
	}
	h := handler{
		loop:       v.loop,
		scale:      pointerScale(v.window),
		size:       v.window.DrawableSize,
		screenshot: v.screenshot,
	}
	for _, e := range v.input.Events() {
		if h.handle(e) {
			return true
		}
	}
	return false
}

// screenshot saves the frame in the back buffer. It runs inside
// Loop.Frame, which already holds the context.
func (v *Viewer) screenshot() {
	width, height := v.window.DrawableSize()
	name, err := v.shots.Take(v.dev, width, height)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

// pointerScale maps window coordinates to drawable pixels.
func pointerScale(w *window.Window) float32 {
	ww, _ := w.GetSize()
	dw, _ := w.DrawableSize()
	if ww <= 0 || dw <= 0 {
		return 1
	}
	return float32(dw) / float32(ww)
}

// Sink receives translated input.
type Sink interface {
	Resize(width, height int)
	PointerDown(p camera.Point)
	PointerDrag(p camera.Point)
	PointerUp()
	Scroll(amount float32)
	Pause()
	Resume()
	Capture(fn func())
}

var _ Sink = (*display.Loop)(nil)

type handler struct {
	loop  Sink
	scale float32
	// size returns the drawable size after a resize.
	size func() (int, int)
	// screenshot is scheduled on F12.
	screenshot func()
}

// handle forwards one event. It reports whether to quit.
func (h handler) handle(e input.Event) bool {
	point := camera.Point{X: float32(e.MouseX) * h.scale, Y: float32(e.MouseY) * h.scale}
	switch e.Type {
	case input.EventQuit:
		return true
	case input.EventKeyDown:
		switch e.Key {
		case sdl.SCANCODE_ESCAPE:
			return true
		case sdl.SCANCODE_F12:
			if h.screenshot != nil {
				h.loop.Capture(h.screenshot)
			}
		}
	case input.EventWindowResize:
		width, height := e.Width, e.Height
		if h.size != nil {
			width, height = h.size()
		}
		h.loop.Resize(width, height)
	case input.EventWindowHidden:
		h.loop.Pause()
	case input.EventWindowShown:
		h.loop.Resume()
	case input.EventMouseDown:
		if e.Button == sdl.BUTTON_LEFT {
			h.loop.PointerDown(point)
		}
	case input.EventMouseMove:
		h.loop.PointerDrag(point)
	case input.EventMouseUp:
		if e.Button == sdl.BUTTON_LEFT {
			h.loop.PointerUp()
		}
	case input.EventMouseWheel:
		h.loop.Scroll(e.Wheel)
	}
	return false
}

// Close cleans up viewer resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.assets != nil {
		v.assets.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
}
