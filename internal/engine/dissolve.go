package engine

import "github.com/rfvp-go/vnengine/internal/vm"

// dissolveState tracks the single global dissolve transition's timer so
// TickDissolve can flip the scheduler back to DissolveNone once it
// completes, and fade the audio player's master volume in step, mirroring
// how a visual dissolve and a BGM crossfade are driven by the same
// duration in the teacher's transition handling.
type dissolveState struct {
	elapsed, duration float64
}

// StartDissolve begins a durationMs transition: the scheduler is put in
// DissolveRunning (gating any thread_next-waiting context) and, if an
// audio player is present, its volume is tweened to targetVolume across
// the same window.
func (e *Engine) StartDissolve(durationMs float64, targetVolume float32) {
	e.dissolve = dissolveState{duration: durationMs}
	e.Sched.SetDissolveState(vm.DissolveRunning)
	if e.Audio != nil {
		e.Audio.Dissolve(targetVolume, int(durationMs))
	}
}

// TickDissolve advances the dissolve timer; once it elapses the
// scheduler flips to DissolveStatic so waiting contexts resume next
// Scheduler.Tick (DissolveStatic still releases a StatusDissolveWait
// context per Scheduler.Tick's gating rule, matching DissolveNone).
func (e *Engine) TickDissolve(elapsedMs float64) {
	if e.dissolve.duration <= 0 {
		return
	}
	e.dissolve.elapsed += elapsedMs
	if e.dissolve.elapsed >= e.dissolve.duration {
		e.dissolve.duration = 0
		e.Sched.SetDissolveState(vm.DissolveStatic)
	}
}
