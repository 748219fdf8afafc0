package motion

import "math/rand/v2"

// SnowPoolSize is the number of independent snow containers, matching
// the data model's 2-slot snow motion pool.
const SnowPoolSize = 2

// flakesPerContainer is the fixed flake sub-pool size per container.
const flakesPerContainer = 1024

// SnowFlake is one particle: a variant selector plus a period (its
// fall cycle length in ms) and current position.
type SnowFlake struct {
	VariantIdx uint32
	Period     float32
	X, Y       float32
}

// SnowParams configures a snow container's emission behavior.
type SnowParams struct {
	GameWOverride, GameHOverride int32
	TextureID                   int32
	FlakeW, FlakeH               int32
	VariantCount                 int32
	PeriodMin, PeriodMax          int32
	TimeOverride                  int32
	FlakeCount                    int32
	BaseYPerPeriod, BaseXPerPeriod int32
	AccelParam                    int32
	JitterAmplitude               int32
	ColorR, ColorG, ColorB         int32
}

// SnowContainer drives one independent snow effect: a fixed 1024-flake
// pool, a draw-order index reshuffled each tick by ascending period,
// and an RNG private to this container so its emission sequence is
// reproducible for a given seed. The seeds are not part of the engine's
// save state, so a load does not reseed the container.
type SnowContainer struct {
	Enabled bool
	Params  SnowParams
	Flakes  [flakesPerContainer]SnowFlake
	Order   [flakesPerContainer]int
	rng     *rand.Rand
}

func newSnowContainer() SnowContainer {
	return SnowContainer{
		Params: SnowParams{VariantCount: 1, PeriodMin: 1, PeriodMax: 1, ColorR: 255, ColorG: 255, ColorB: 255},
		rng:    rand.New(rand.NewPCG(1, 1)),
	}
}

// Seed reseeds this container's RNG; two containers given the same
// seeds emit the same flake sequence.
func (c *SnowContainer) Seed(seed1, seed2 uint64) {
	c.rng = rand.New(rand.NewPCG(seed1, seed2))
}

func (c *SnowContainer) effectiveGameSize(ambientW, ambientH int32) (int32, int32) {
	w, h := c.Params.GameWOverride, c.Params.GameHOverride
	if w == 0 {
		w = ambientW
	}
	if h == 0 {
		h = ambientH
	}
	return w, h
}

// resetFlake reassigns a flake's variant, period and position, drawn
// fresh from the container's RNG, keeping it within the emission area
// inflated by a margin derived from the flake size and period.
func (c *SnowContainer) resetFlake(idx int, ambientW, ambientH int32) {
	gw, gh := c.effectiveGameSize(ambientW, ambientH)

	spread := c.Params.PeriodMax - c.Params.PeriodMin
	period := float32(c.Params.PeriodMin)
	if spread != 0 {
		whole := c.Params.PeriodMin + int32(c.rng.IntN(int(spread)))
		frac := float32(c.rng.IntN(256)) * (1.0 / 256.0)
		period = float32(whole) + frac
	}

	invPeriod := 1000.0 / period
	marginX := float32(c.Params.FlakeW) * 0.5 * invPeriod
	marginY := float32(c.Params.FlakeH) * 0.5 * invPeriod

	left, right := -marginX, float32(gw)+marginX
	top, bottom := -marginY, float32(gh)+marginY

	x := left + c.rng.Float32()*(right-left)
	y := top + c.rng.Float32()*(bottom-top)

	variantCount := c.Params.VariantCount
	if variantCount < 1 {
		variantCount = 1
	}
	variant := uint32(c.rng.IntN(int(variantCount)))

	c.Flakes[idx] = SnowFlake{VariantIdx: variant, Period: period, X: x, Y: y}
}

// applyAccel folds a period delta into a flake, rescaling its offset
// from the emission area's center so acceleration reads as a change
// in apparent fall speed rather than a position jump.
func (c *SnowContainer) applyAccel(idx int, delta float32, ambientW, ambientH int32) {
	if idx >= int(c.Params.FlakeCount) || delta == 0 {
		return
	}
	gw, gh := c.effectiveGameSize(ambientW, ambientH)
	halfW, halfH := float32(gw)*0.5, float32(gh)*0.5

	f := &c.Flakes[idx]
	oldInv := 1000.0 / f.Period
	newPeriod := f.Period + delta
	f.Period = newPeriod
	newInv := 1000.0 / newPeriod
	scale := newInv / oldInv

	f.X = halfW + (f.X-halfW)*scale
	f.Y = halfH + (f.Y-halfH)*scale
}

// Configure loads new emission parameters, repopulates every active
// flake from scratch and leaves the container disabled, matching the
// "set then explicitly start" control surface.
func (c *SnowContainer) Configure(p SnowParams, ambientW, ambientH int32) {
	c.Params = p
	for i := 0; i < int(c.Params.FlakeCount) && i < flakesPerContainer; i++ {
		c.resetFlake(i, ambientW, ambientH)
	}
	c.reorder()
	c.Enabled = false
}

func (c *SnowContainer) reorder() {
	count := int(c.Params.FlakeCount)
	if count > flakesPerContainer {
		count = flakesPerContainer
	}
	if count <= 0 {
		return
	}
	for i := 0; i < count; i++ {
		c.Order[i] = i
	}
	order := c.Order[:count]
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && c.Flakes[order[j-1]].Period > c.Flakes[order[j]].Period; j-- {
			order[j-1], order[j] = order[j], order[j-1]
		}
	}
}

// Tick advances every active flake by elapsedMs: applies acceleration
// and per-period drift (with optional jitter), then resets any flake
// that has fallen outside the emission area or outlived its period
// bounds. A no-op when the container is disabled.
func (c *SnowContainer) Tick(elapsedMs float64, ambientW, ambientH int32) {
	if !c.Enabled {
		return
	}
	elapsed := float32(absf(elapsedMs))
	gw, gh := c.effectiveGameSize(ambientW, ambientH)
	halfFlakeW := float32(c.Params.FlakeW) * 0.5
	halfFlakeH := float32(c.Params.FlakeH) * 0.5
	periodMin := float32(c.Params.PeriodMin)
	periodMax := float32(c.Params.PeriodMax)

	count := int(c.Params.FlakeCount)
	if count > flakesPerContainer {
		count = flakesPerContainer
	}

	for i := 0; i < count; i++ {
		oldX, oldY, oldPeriod := c.Flakes[i].X, c.Flakes[i].Y, c.Flakes[i].Period

		accelDelta := float32(c.Params.AccelParam) * elapsed / 1000.0
		c.applyAccel(i, accelDelta, ambientW, ambientH)

		driftX := float32(c.Params.BaseXPerPeriod)
		driftY := float32(c.Params.BaseYPerPeriod)
		if c.Params.JitterAmplitude > 0 {
			j := int(c.Params.JitterAmplitude)
			driftX += float32(c.rng.IntN(2*j+1) - j)
			driftY += float32(c.rng.IntN(2*j+1) - j)
		}

		f := &c.Flakes[i]
		cyclesElapsed := elapsed * (1000.0 / f.Period) / 1000.0
		f.X += driftX * cyclesElapsed
		f.Y += driftY * cyclesElapsed

		invPeriod := 1000.0 / f.Period
		outOfBounds := (oldX >= f.X && -halfFlakeW*invPeriod > f.X) ||
			(f.X > oldX && halfFlakeW*invPeriod+float32(gw) < f.X) ||
			(oldY > f.Y && -halfFlakeH*invPeriod > f.Y) ||
			(f.Y > oldY && f.Y > halfFlakeH*invPeriod+float32(gh)) ||
			(oldPeriod > f.Period && periodMin > f.Period) ||
			(f.Period > oldPeriod && periodMax < f.Period)

		if outOfBounds {
			c.resetFlake(i, ambientW, ambientH)
			accelDelta2 := -float32(c.Params.AccelParam) * 13.0 / 1000.0
			c.applyAccel(i, accelDelta2, ambientW, ambientH)
		}
	}

	c.reorder()
}

// SnowEngine owns every snow container; unlike the pooled per-prim
// engines it is addressed by container id rather than a prim handle.
type SnowEngine struct {
	containers [SnowPoolSize]SnowContainer
}

func NewSnowEngine() *SnowEngine {
	e := &SnowEngine{}
	for i := range e.containers {
		e.containers[i] = newSnowContainer()
	}
	return e
}

func (e *SnowEngine) Container(id int) *SnowContainer { return &e.containers[id] }

func (e *SnowEngine) Configure(id int, p SnowParams, ambientW, ambientH int32) {
	e.containers[id].Configure(p, ambientW, ambientH)
}

func (e *SnowEngine) Start(id int) { e.containers[id].Enabled = true }
func (e *SnowEngine) Stop(id int)  { e.containers[id].Enabled = false }
func (e *SnowEngine) Test(id int) bool { return e.containers[id].Enabled }

func (e *SnowEngine) Tick(elapsedMs float64, ambientW, ambientH int32) {
	for i := range e.containers {
		e.containers[i].Tick(elapsedMs, ambientW, ambientH)
	}
}
