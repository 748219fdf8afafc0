//go:build !headless

package video

import (
	"image"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenSink presents decoded movie frames onto an ebiten.Image,
// adapted from the teacher's EbitenOutput: a mutex-guarded frame
// buffer fed by UpdateFrame and consumed by Draw on ebiten's own
// render goroutine.
type EbitenSink struct {
	mu          sync.RWMutex
	frameBuffer []byte
	width       int
	height      int
	img         *ebiten.Image

	started    bool
	frameCount uint64
}

func NewEbitenSink() *EbitenSink {
	return &EbitenSink{width: 640, height: 480}
}

func (e *EbitenSink) Start() error { e.started = true; return nil }
func (e *EbitenSink) Stop() error  { e.started = false; return nil }
func (e *EbitenSink) Close() error { e.started = false; return nil }
func (e *EbitenSink) IsStarted() bool { return e.started }

func (e *EbitenSink) UpdateFrame(buf []byte, width, height int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.width != width || e.height != height || e.img == nil {
		e.width, e.height = width, height
		e.img = ebiten.NewImage(width, height)
	}
	e.frameBuffer = append(e.frameBuffer[:0], buf...)
	e.img.WritePixels(e.frameBuffer)
	atomic.AddUint64(&e.frameCount, 1)
	return nil
}

func (e *EbitenSink) GetFrameCount() uint64 {
	return atomic.LoadUint64(&e.frameCount)
}

// Image returns the currently presented frame for a host ebiten.Game's
// Draw call to blit (e.g. via Image.DrawImage on the screen).
func (e *EbitenSink) Image() *ebiten.Image {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.img
}

// Bounds reports the current frame's pixel dimensions.
func (e *EbitenSink) Bounds() image.Rectangle {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return image.Rect(0, 0, e.width, e.height)
}
