package motion

import "github.com/rfvp-go/vnengine/internal/prim"

// RotatePoolSize matches the data model's 512-slot rotate motion pool.
const RotatePoolSize = 512

// RotateMotion animates a prim's Rotation between two angles.
type RotateMotion struct {
	Base
	Src, Dst float32
}

func (m *RotateMotion) BasePtr() *Base { return &m.Base }

type RotateEngine struct {
	*Engine[*RotateMotion]
}

func NewRotateEngine() *RotateEngine {
	return &RotateEngine{NewEngine[*RotateMotion](RotatePoolSize, func() *RotateMotion { return &RotateMotion{} })}
}

func (e *RotateEngine) Push(primID int, src, dst float32, durationMs float64, easing Easing, reverse, global bool) bool {
	idx := e.alloc(primID)
	if idx < 0 {
		return false
	}
	rec := e.Slot(idx)
	rec.Base = Base{Running: true, Reverse: reverse, Global: global, PrimID: primID, Duration: durationMs, Easing: easing}
	rec.Src, rec.Dst = src, dst
	return true
}

func (e *RotateEngine) Tick(pool *prim.Pool, elapsedMs float64, isPaused func(int) bool, parentOf func(int) int, customRoot int) {
	e.ForEachRunning(func(idx int, rec *RotateMotion) {
		if PauseGate(rec.Global, rec.PrimID, customRoot, isPaused, parentOf) {
			return
		}
		if !rec.Reverse && elapsedMs < 0 {
			return
		}
		rec.Elapsed += absf(elapsedMs)

		if !pool.Valid(rec.PrimID) {
			e.retire(idx)
			return
		}
		p := pool.Get(rec.PrimID)

		if rec.Duration <= 0 || rec.Elapsed >= rec.Duration {
			p.Rotation = rec.Dst
			p.Attr |= prim.DirtyBit
			e.retire(idx)
			return
		}
		frac := Interpolate(rec.Easing, rec.Elapsed, rec.Duration)
		p.Rotation = float32(Lerp(float64(rec.Src), float64(rec.Dst), frac))
		p.Attr |= prim.DirtyBit
	})
}
