package motion

import "github.com/rfvp-go/vnengine/internal/prim"

// MovePoolSize matches the data model's 4096-slot move motion pool —
// one per prim at most, matching the prim pool size.
const MovePoolSize = 4096

// MoveMotion animates a prim's X/Y between a source and destination
// point.
type MoveMotion struct {
	Base
	SrcX, SrcY float32
	DstX, DstY float32
}

func (m *MoveMotion) BasePtr() *Base { return &m.Base }

type MoveEngine struct {
	*Engine[*MoveMotion]
}

func NewMoveEngine() *MoveEngine {
	return &MoveEngine{NewEngine[*MoveMotion](MovePoolSize, func() *MoveMotion { return &MoveMotion{} })}
}

func (e *MoveEngine) Push(primID int, srcX, srcY, dstX, dstY float32, durationMs float64, easing Easing, reverse, global bool) bool {
	idx := e.alloc(primID)
	if idx < 0 {
		return false
	}
	rec := e.Slot(idx)
	rec.Base = Base{Running: true, Reverse: reverse, Global: global, PrimID: primID, Duration: durationMs, Easing: easing}
	rec.SrcX, rec.SrcY, rec.DstX, rec.DstY = srcX, srcY, dstX, dstY
	return true
}

func (e *MoveEngine) Tick(pool *prim.Pool, elapsedMs float64, isPaused func(int) bool, parentOf func(int) int, customRoot int) {
	e.ForEachRunning(func(idx int, rec *MoveMotion) {
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
			p.X, p.Y = rec.DstX, rec.DstY
			p.Attr |= prim.DirtyBit
			e.retire(idx)
			return
		}
		frac := Interpolate(rec.Easing, rec.Elapsed, rec.Duration)
		p.X = float32(Lerp(float64(rec.SrcX), float64(rec.DstX), frac))
		p.Y = float32(Lerp(float64(rec.SrcY), float64(rec.DstY), frac))
		p.Attr |= prim.DirtyBit
	})
}
