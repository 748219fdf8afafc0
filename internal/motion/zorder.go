package motion

import "github.com/rfvp-go/vnengine/internal/prim"

// ZPoolSize matches the data model's 512-slot z-order motion pool.
const ZPoolSize = 512

// ZMotion animates a prim's Z between two draw-order values.
type ZMotion struct {
	Base
	Src, Dst int32
}

func (m *ZMotion) BasePtr() *Base { return &m.Base }

type ZEngine struct {
	*Engine[*ZMotion]
}

func NewZEngine() *ZEngine {
	return &ZEngine{NewEngine[*ZMotion](ZPoolSize, func() *ZMotion { return &ZMotion{} })}
}

func (e *ZEngine) Push(primID int, src, dst int32, durationMs float64, easing Easing, reverse, global bool) bool {
	idx := e.alloc(primID)
	if idx < 0 {
		return false
	}
	rec := e.Slot(idx)
	rec.Base = Base{Running: true, Reverse: reverse, Global: global, PrimID: primID, Duration: durationMs, Easing: easing}
	rec.Src, rec.Dst = src, dst
	return true
}

func (e *ZEngine) Tick(pool *prim.Pool, elapsedMs float64, isPaused func(int) bool, parentOf func(int) int, customRoot int) {
	e.ForEachRunning(func(idx int, rec *ZMotion) {
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
			p.Z = rec.Dst
			p.Attr |= prim.DirtyBit
			e.retire(idx)
			return
		}
		frac := Interpolate(rec.Easing, rec.Elapsed, rec.Duration)
		p.Z = int32(Lerp(float64(rec.Src), float64(rec.Dst), frac))
		p.Attr |= prim.DirtyBit
	})
}
