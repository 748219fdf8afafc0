// Package motion implements the fixed-size motion-record pools that
// drive prim animation: alpha, move, rotate, scale, z-order, a 3D vector
// singleton, snow particles, and parts overlays, each interpolating
// through one of a small set of easing curves.
package motion

// Easing selects the interpolation curve a motion uses between its
// source and destination values.
type Easing uint8

const (
	EaseLinear Easing = iota
	EaseAccelerate
	EaseDecelerate
	EaseRebound
	EaseBounce
)

// Interpolate returns the fraction-of-distance-travelled in [0,1] for
// elapsed out of duration under easing e. Both are > 0 by the time this
// is called (duration == 0 motions retire immediately in the caller).
func Interpolate(e Easing, elapsed, duration float64) float64 {
	t := elapsed / duration
	switch e {
	case EaseAccelerate:
		return t * t
	case EaseDecelerate:
		d := 1 - t
		return 1 - d*d
	case EaseRebound:
		return reboundCurve(t)
	case EaseBounce:
		return bounceCurve(t)
	default:
		return t
	}
}

// reboundCurve overshoots past 1.0 then settles back, in two quadratic
// phases split at the midpoint (matching the original's elapsed >
// duration/2 branch point): an accelerate phase up to a peak one
// half-delta past the target, then a decelerate phase back down to 1.0.
func reboundCurve(t float64) float64 {
	const peak = 1.5 // 1.0 plus half_delta's 0.5 fraction of the total distance
	if t <= 0.5 {
		phase := t / 0.5
		return peak * (phase * phase)
	}
	phase := (t - 0.5) / 0.5
	d := 1 - phase
	return peak - (peak-1)*(1-d*d)
}

// bounceCurve undershoots before settling, the mirror-image companion
// to reboundCurve: it troughs one half-delta short of the target at
// the midpoint, then decelerates up to 1.0.
func bounceCurve(t float64) float64 {
	const trough = 0.5 // 1.0 minus half_delta's 0.5 fraction of the total distance
	if t <= 0.5 {
		phase := t / 0.5
		return trough * (phase * phase)
	}
	phase := (t - 0.5) / 0.5
	d := 1 - phase
	return trough + (1-trough)*(1-d*d)
}

// Lerp applies fraction frac to the [src,dst] interval.
func Lerp(src, dst, frac float64) float64 {
	return src + (dst-src)*frac
}
