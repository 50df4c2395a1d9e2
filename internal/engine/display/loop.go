// Package display paces frames and serialises input against drawing.
//
// A Loop owns one coarse mutex. Every frame and every input adapter call
// takes it, so a frame never observes a half-applied camera update.
package display

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/pbr-viewer/internal/engine/camera"
	"github.com/Faultbox/pbr-viewer/internal/logger"
)

// DefaultFPS is used when no refresh rate is known.
const DefaultFPS = 60

// Scene is what the loop draws.
type Scene interface {
	Draw(fps float64)
	Resize(width, height int)
	Camera() *camera.VirtualCamera
}

// Presenter shows the finished frame, e.g. by swapping buffers.
type Presenter interface {
	SwapBuffers()
}

// PollFunc drains pending platform events and reports whether to quit.
type PollFunc func() (quit bool)

// Loop drives a Scene at a fixed frame rate.
type Loop struct {
	mu      sync.Mutex
	scene   Scene
	present Presenter
	fps     float64
	paused  bool
	frames  uint64
	capture []func()
}

// New creates a loop drawing scene at fps frames per second. Non-positive
// rates fall back to DefaultFPS.
func New(scene Scene, present Presenter, fps float64) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{scene: scene, present: present, fps: fps}
}

// FPS returns the frame rate.
func (l *Loop) FPS() float64 { return l.fps }

// Frame draws and presents one frame. It reports false when paused.
func (l *Loop) Frame() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.paused {
		return false
	}
	l.scene.Draw(l.fps)
	for _, fn := range l.capture {
		fn()
	}
	l.capture = nil
	if l.present != nil {
		l.present.SwapBuffers()
	}
	l.frames++
	return true
}

// Capture runs fn once after the next frame is drawn and before it is
// presented, while the frame is still in the back buffer.
func (l *Loop) Capture(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.capture = append(l.capture, fn)
}

// Frames returns the number of frames drawn.
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// Resize forwards a new drawable size.
func (l *Loop) Resize(width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scene.Resize(width, height)
}

// PointerDown starts a camera drag at p.
func (l *Loop) PointerDown(p camera.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scene.Camera().StartDrag(p)
}

// PointerDrag moves an active drag to p. Motion without a drag is ignored.
func (l *Loop) PointerDrag(p camera.Point) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cam := l.scene.Camera()
	if !cam.Dragging() {
		return
	}
	cam.Drag(p)
}

// PointerUp ends the drag; the camera keeps spinning with inertia.
func (l *Loop) PointerUp() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scene.Camera().EndDrag()
}

// Scroll zooms the camera.
func (l *Loop) Scroll(amount float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scene.Camera().Zoom(amount)
}

// Pause stops drawing until Resume.
func (l *Loop) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.paused {
		l.paused = true
		logger.Debug("display paused")
	}
}

// Resume restarts drawing.
func (l *Loop) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paused {
		l.paused = false
		logger.Debug("display resumed")
	}
}

// Paused reports whether drawing is stopped.
func (l *Loop) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// Run polls events and draws one frame per tick until poll reports quit
// (nil error) or ctx is done (ctx.Err()).
// IMPORTANT: call from the goroutine that owns the GL context.
func (l *Loop) Run(ctx context.Context, poll PollFunc) error {
	ticker := time.NewTicker(time.Duration(float64(time.Second) / l.fps))
	defer ticker.Stop()

	logger.Info("starting display loop", zap.Float64("fps", l.fps))

	frameCount := 0
	fpsTimer := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if poll != nil && poll() {
			logger.Info("display loop stopped")
			return nil
		}
		if l.Frame() {
			frameCount++
		}

		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}
