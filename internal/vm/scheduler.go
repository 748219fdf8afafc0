package vm

import (
	"github.com/rfvp-go/vnengine/internal/elog"
	"github.com/rfvp-go/vnengine/internal/store"
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/threadreq"
)

// DissolveState is the global visual-transition state that gates
// dissolve-wait contexts, per the glossary's definition of "dissolve".
type DissolveState int

const (
	DissolveNone DissolveState = iota
	DissolveStatic
	DissolveRunning
)

const maxContexts = 64

// Scheduler is the single-threaded cooperative multi-context scheduler:
// it owns every Context, advances wait timers, and dispatches opcodes in
// index order within a frame, exactly per the ordering guarantee that a
// lower-indexed context that does not yield runs to completion before
// any higher-indexed context runs at all.
type Scheduler struct {
	contexts []*Context
	globals  *store.GlobalStore
	registry *syscall.Registry

	dissolve DissolveState

	// controlPulse is the one-shot ControlPulse flag: when set, the
	// remainder of the current frame's contexts are skipped, and the
	// flag is cleared at the start of the next frame.
	controlPulse bool
}

// NewScheduler creates a scheduler bound to a global store and syscall
// registry; contexts are added with AddContext (slot 0 is conventionally
// the root script context).
func NewScheduler(globals *store.GlobalStore, registry *syscall.Registry) *Scheduler {
	return &Scheduler{globals: globals, registry: registry}
}

// AddContext registers ctx at the next free index, matching the "index
// order" ordering guarantee.
func (s *Scheduler) AddContext(ctx *Context) {
	s.contexts = append(s.contexts, ctx)
}

// Context returns the context at id, or nil if out of range.
func (s *Scheduler) Context(id int) *Context {
	if id < 0 || id >= len(s.contexts) {
		return nil
	}
	return s.contexts[id]
}

// SetDissolveState updates the global dissolve state consulted by
// dissolve-wait contexts.
func (s *Scheduler) SetDissolveState(d DissolveState) { s.dissolve = d }

// PulseControl sets the one-shot ControlPulse flag, causing the
// remainder of the current frame to yield.
func (s *Scheduler) PulseControl() { s.controlPulse = true }

// Tick advances the scheduler by one host frame: wait timers first, then
// dispatch each still-runnable context in index order until it yields or
// halts, draining its mailbox after every opcode burst.
func (s *Scheduler) Tick(elapsedUs int64) {
	s.controlPulse = false

	for _, ctx := range s.contexts {
		if ctx == nil || ctx.IsTerminated() {
			continue
		}
		if s.controlPulse {
			break
		}

		ctx.TickWait(elapsedUs)
		if ctx.HasStatus(StatusDissolveWait) {
			if s.dissolve == DissolveNone || s.dissolve == DissolveStatic {
				ctx.ClearStatus(StatusDissolveWait)
			}
		}
		if ctx.HasStatus(StatusWait | StatusSleep | StatusDissolveWait) {
			continue
		}
		if !ctx.HasStatus(StatusRunning) {
			continue
		}

		if err := ctx.RunUntilYield(s.globals, s.registry); err != nil {
			elog.Errorf("context %d halted: %v", ctx.ID(), err)
		}
		s.drainMailbox(ctx)
	}
}

// drainMailbox processes the thread-control requests a context's
// syscalls posted during this burst: Start/Wait/Sleep/Raise/Next/Exit/
// ShouldBreak.
func (s *Scheduler) drainMailbox(ctx *Context) {
	for _, req := range ctx.DrainMailbox() {
		switch req.Kind {
		case threadreq.KindStart:
			if target := s.Context(req.ContextID); target != nil {
				target.pc = int(req.Addr)
				target.SetStatus(StatusRunning)
			}
		case threadreq.KindWait:
			ctx.BeginWait(req.Micros)
		case threadreq.KindSleep:
			ctx.waitUntil = req.Micros
			ctx.AddStatus(StatusSleep)
		case threadreq.KindRaise:
			if req.Micros <= 0 {
				ctx.ClearStatus(StatusSleep)
			} else {
				ctx.waitUntil = req.Micros
			}
		case threadreq.KindNext:
			ctx.AddStatus(StatusDissolveWait)
		case threadreq.KindExit:
			if target := s.Context(req.ContextID); target != nil {
				target.SetStatus(StatusTerminated)
			}
		case threadreq.KindShouldBreak:
			s.PulseControl()
		}
	}
}

// TickSleep decrements every sleeping context's timer by elapsedUs,
// clearing StatusSleep once exhausted; called once per frame alongside
// Tick, kept separate because sleep (unlike wait) is not gated by
// opcode-local semantics and must progress even for a context the
// current Tick call skipped entirely.
func (s *Scheduler) TickSleep(elapsedUs int64) {
	for _, ctx := range s.contexts {
		if ctx == nil || !ctx.HasStatus(StatusSleep) {
			continue
		}
		ctx.waitUntil -= elapsedUs
		if ctx.waitUntil <= 0 {
			ctx.ClearStatus(StatusSleep)
		}
	}
}

// ActiveCount reports how many non-terminated contexts remain, used by
// host status lines and tests.
func (s *Scheduler) ActiveCount() int {
	n := 0
	for _, ctx := range s.contexts {
		if ctx != nil && !ctx.IsTerminated() {
			n++
		}
	}
	return n
}
