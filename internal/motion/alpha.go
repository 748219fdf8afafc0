package motion

import "github.com/rfvp-go/vnengine/internal/prim"

// AlphaPoolSize matches the data model's 256-slot alpha motion pool.
const AlphaPoolSize = 256

// AlphaMotion animates a prim's Alpha field between Src and Dst.
type AlphaMotion struct {
	Base
	Src, Dst uint8
}

func (m *AlphaMotion) BasePtr() *Base { return &m.Base }

// AlphaEngine drives AlphaMotion records against a prim pool.
type AlphaEngine struct {
	*Engine[*AlphaMotion]
}

func NewAlphaEngine() *AlphaEngine {
	return &AlphaEngine{NewEngine[*AlphaMotion](AlphaPoolSize, func() *AlphaMotion { return &AlphaMotion{} })}
}

// Push starts (or restarts, recycling the existing slot) an alpha motion
// on primID.
func (e *AlphaEngine) Push(primID int, src, dst uint8, durationMs float64, easing Easing, reverse, global bool) bool {
	idx := e.alloc(primID)
	if idx < 0 {
		return false
	}
	rec := e.Slot(idx)
	rec.Base = Base{Running: true, Reverse: reverse, Global: global, PrimID: primID, Duration: durationMs, Elapsed: 0, Easing: easing}
	rec.Src, rec.Dst = src, dst
	return true
}

// Tick advances every running alpha motion by elapsedMs (signed, per the
// motion-engine design: a negative elapsed is ignored unless Reverse).
func (e *AlphaEngine) Tick(pool *prim.Pool, elapsedMs float64, isPaused func(int) bool, parentOf func(int) int, customRoot int) {
	e.ForEachRunning(func(idx int, rec *AlphaMotion) {
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
			p.Alpha = rec.Dst
			p.Attr |= prim.DirtyBit
			e.retire(idx)
			return
		}
		frac := Interpolate(rec.Easing, rec.Elapsed, rec.Duration)
		v := Lerp(float64(rec.Src), float64(rec.Dst), frac)
		p.Alpha = clampU8(v)
		p.Attr |= prim.DirtyBit
	})
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
