package motion

// Vec3 is a 3D vector value, used only by the v3d motion singleton
// (a camera/viewpoint vector, not a per-prim field).
type Vec3 struct {
	X, Y, Z float32
}

// V3DEngine is the singleton 3D-vector motion container: unlike the
// per-prim engines it drives exactly one value and takes no prim
// handle or id at all.
type V3DEngine struct {
	running  bool
	src, dst Vec3
	duration float64
	elapsed  float64
	easing   Easing
	current  Vec3
}

func NewV3DEngine() *V3DEngine {
	return &V3DEngine{}
}

// Push starts (replacing any in-flight) a 3D vector motion.
func (e *V3DEngine) Push(src, dst Vec3, durationMs float64, easing Easing) {
	e.running = true
	e.src, e.dst = src, dst
	e.duration = durationMs
	e.elapsed = 0
	e.easing = easing
	e.current = src
}

// Tick advances the singleton motion by elapsedMs; v3d has no prim to
// pause against, so it ignores the pause-gate entirely.
func (e *V3DEngine) Tick(elapsedMs float64) {
	if !e.running {
		return
	}
	if elapsedMs < 0 {
		return
	}
	e.elapsed += elapsedMs
	if e.duration <= 0 || e.elapsed >= e.duration {
		e.current = e.dst
		e.running = false
		return
	}
	frac := Interpolate(e.easing, e.elapsed, e.duration)
	e.current = Vec3{
		X: float32(Lerp(float64(e.src.X), float64(e.dst.X), frac)),
		Y: float32(Lerp(float64(e.src.Y), float64(e.dst.Y), frac)),
		Z: float32(Lerp(float64(e.src.Z), float64(e.dst.Z), frac)),
	}
}

// Value returns the current interpolated vector.
func (e *V3DEngine) Value() Vec3 { return e.current }

// Running reports whether a motion is still in flight.
func (e *V3DEngine) Running() bool { return e.running }

// Stop halts any in-flight motion in place, leaving Value() at its
// last-interpolated position.
func (e *V3DEngine) Stop() { e.running = false }
