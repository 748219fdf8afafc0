// Package engine wires together every subsystem package into the single
// running instance a host frontend drives one frame at a time: the
// bytecode scheduler and its global banks, the prim scene graph, the
// motion engines, the graph-buffer/texture pool, input, save/load, and
// the ASF/WMV2/WMA media pipeline, all bound to the syscall registry the
// scenario's bytecode calls into.
package engine

import (
	"github.com/rfvp-go/vnengine/internal/audio"
	"github.com/rfvp-go/vnengine/internal/config"
	"github.com/rfvp-go/vnengine/internal/input"
	"github.com/rfvp-go/vnengine/internal/motion"
	"github.com/rfvp-go/vnengine/internal/prim"
	"github.com/rfvp-go/vnengine/internal/save"
	"github.com/rfvp-go/vnengine/internal/store"
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/texture"
	"github.com/rfvp-go/vnengine/internal/video"
	"github.com/rfvp-go/vnengine/internal/vm"
)

// ScenarioHeader is the subset of the bytecode binary's scenario header
// needed to boot an Engine, decoded by the caller from the binary's file
// header before constructing the Engine.
type ScenarioHeader struct {
	EntryPC          uint32
	NonVolatileCount int
	VolatileCount    int
	GameMode         uint16
	Title            string
	Syscalls         []SyscallDecl
}

// SyscallDecl is one (id, name, argc) triple declared by the scenario
// header, consumed by Registry.Declare before Bind attaches host
// handlers by name.
type SyscallDecl struct {
	ID   uint16
	Name string
	Argc int
}

// Engine owns every subsystem and the glue between them: prim pool <->
// motion engines <-> graph buffers <-> the VM's syscall registry.
type Engine struct {
	Config config.EngineConfig

	Globals  *store.GlobalStore
	Registry *syscall.Registry
	Sched    *vm.Scheduler

	Prims    *prim.Pool
	Textures *texture.Pool

	Alpha  *motion.AlphaEngine
	Move   *motion.MoveEngine
	Rotate *motion.RotateEngine
	Scale  *motion.ScaleEngine
	Z      *motion.ZEngine
	V3D    *motion.V3DEngine
	Snow   *motion.SnowEngine
	Parts  *motion.PartsManager

	Input *input.Manager
	Audio *audio.Player
	Video *video.Orchestrator

	code []byte

	dissolve dissolveState

	// pending is the in-progress save payload between save_create and
	// save_write, or the most recently loaded payload after save_load.
	pending *save.Payload

	// AmbientWidth/AmbientHeight feed the snow engine's default emission
	// area when a container has no per-container size override.
	AmbientWidth  int32
	AmbientHeight int32
}

// New constructs every subsystem, declares the scenario's syscalls
// against a fresh Registry, binds every host handler this package
// implements, and seeds context 0 (the root script context) at the
// scenario's entry point.
func New(cfg config.EngineConfig, code []byte, header ScenarioHeader) *Engine {
	e := &Engine{
		Config:        cfg,
		Globals:       store.New(header.NonVolatileCount, header.VolatileCount),
		Registry:      syscall.NewRegistry(),
		Prims:         prim.NewPool(),
		Textures:      texture.NewPool(),
		Alpha:         motion.NewAlphaEngine(),
		Move:          motion.NewMoveEngine(),
		Rotate:        motion.NewRotateEngine(),
		Scale:         motion.NewScaleEngine(),
		Z:             motion.NewZEngine(),
		V3D:           motion.NewV3DEngine(),
		Snow:          motion.NewSnowEngine(),
		Parts:         motion.NewPartsManager(),
		Input:         input.NewManager(),
		code:          code,
		AmbientWidth:  int32(cfg.ScreenWidth),
		AmbientHeight: int32(cfg.ScreenHeight),
	}

	for _, d := range header.Syscalls {
		e.Registry.Declare(d.ID, d.Name, d.Argc)
	}
	e.bindSyscalls()

	e.Sched = vm.NewScheduler(e.Globals, e.Registry)
	e.Sched.AddContext(vm.NewContextWithDecoder(0, code, int(header.EntryPC), localeDecoder(cfg.Locale)))

	if cfg.AudioBackend != "none" {
		if p, err := audio.NewPlayer(44100, 2); err == nil {
			e.Audio = p
		}
	}

	return e
}

// isPaused/parentOf/customRoot adapt the prim pool to the motion
// package's pause-gate callbacks.
func (e *Engine) isPaused(id int) bool    { return e.Prims.Get(id).Paused }
func (e *Engine) parentOf(id int) int     { return e.Prims.Get(id).Parent }
func (e *Engine) customRoot() int         { return e.Prims.CustomRoot() }

// TickMotions advances every motion engine by elapsedMs, in the fixed
// order alpha/move/rotate/scale/z/v3d/snow/parts, matching the
// teacher's single-pass-per-engine frame update convention.
func (e *Engine) TickMotions(elapsedMs float64) {
	cr := e.customRoot()
	e.Alpha.Tick(e.Prims, elapsedMs, e.isPaused, e.parentOf, cr)
	e.Move.Tick(e.Prims, elapsedMs, e.isPaused, e.parentOf, cr)
	e.Rotate.Tick(e.Prims, elapsedMs, e.isPaused, e.parentOf, cr)
	e.Scale.Tick(e.Prims, elapsedMs, e.isPaused, e.parentOf, cr)
	e.Z.Tick(e.Prims, elapsedMs, e.isPaused, e.parentOf, cr)
	e.V3D.Tick(elapsedMs)
	e.Snow.Tick(elapsedMs, e.AmbientWidth, e.AmbientHeight)
	e.tickParts(elapsedMs)
}

// tickParts advances every in-flight parts substitution, a
// responsibility the generic motion.Engine pool doesn't cover since
// PartsManager owns its own small fixed pool rather than using the
// shared Engine[T] machinery (its payload, an entry-id substitution,
// has no interpolated value to Lerp). The completions TickMotions
// returns are discarded here; no entry is applied to a graph buffer.
func (e *Engine) tickParts(elapsedMs float64) {
	delta := elapsedMs
	if delta < 0 {
		delta = 0
	}
	for _, c := range e.Parts.TickMotions(uint32(delta)) {
		_ = c
	}
}

// Tick advances the motion engines one frame, then the scheduler (wait
// timers and opcode dispatch), then the dissolve, then clears the input
// manager's per-frame edges, matching the per-frame order: motions
// advance before any script context runs.
func (e *Engine) Tick(elapsedUs int64) {
	elapsedMs := float64(elapsedUs) / 1000.0
	e.TickMotions(elapsedMs)
	e.Sched.Tick(elapsedUs)
	e.Sched.TickSleep(elapsedUs)
	e.TickDissolve(elapsedMs)
	e.Input.FrameReset()
}
