package motion

import "github.com/rfvp-go/vnengine/internal/prim"

// ScalePoolSize matches the data model's 512-slot scale motion pool.
const ScalePoolSize = 512

// ScaleMotion animates a prim's milli-unit ScaleX/ScaleY pair.
type ScaleMotion struct {
	Base
	SrcX, SrcY int32
	DstX, DstY int32
}

func (m *ScaleMotion) BasePtr() *Base { return &m.Base }

type ScaleEngine struct {
	*Engine[*ScaleMotion]
}

func NewScaleEngine() *ScaleEngine {
	return &ScaleEngine{NewEngine[*ScaleMotion](ScalePoolSize, func() *ScaleMotion { return &ScaleMotion{} })}
}

func (e *ScaleEngine) Push(primID int, srcX, srcY, dstX, dstY int32, durationMs float64, easing Easing, reverse, global bool) bool {
	idx := e.alloc(primID)
	if idx < 0 {
		return false
	}
	rec := e.Slot(idx)
	rec.Base = Base{Running: true, Reverse: reverse, Global: global, PrimID: primID, Duration: durationMs, Easing: easing}
	rec.SrcX, rec.SrcY, rec.DstX, rec.DstY = srcX, srcY, dstX, dstY
	return true
}

func (e *ScaleEngine) Tick(pool *prim.Pool, elapsedMs float64, isPaused func(int) bool, parentOf func(int) int, customRoot int) {
	e.ForEachRunning(func(idx int, rec *ScaleMotion) {
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
			p.ScaleX, p.ScaleY = rec.DstX, rec.DstY
			p.Attr |= prim.DirtyBit
			e.retire(idx)
			return
		}
		frac := Interpolate(rec.Easing, rec.Elapsed, rec.Duration)
		p.ScaleX = int32(Lerp(float64(rec.SrcX), float64(rec.DstX), frac))
		p.ScaleY = int32(Lerp(float64(rec.SrcY), float64(rec.DstY), frac))
		p.Attr |= prim.DirtyBit
	})
}
