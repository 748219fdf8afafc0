package motion

// Base holds the fields common to every per-prim motion record: which
// prim it drives, its running/reverse flags, the easing curve, and the
// elapsed/duration timers the per-frame tick advances.
type Base struct {
	Running bool
	Reverse bool
	Global  bool // if set, a paused ancestor only blocks the motion up to CustomRoot
	PrimID  int
	Duration float64
	Elapsed  float64
	Easing   Easing
}

// Record is implemented by every pooled per-prim motion payload so the
// generic Engine can manipulate the shared Base fields without knowing
// the engine-specific value fields (alpha, x/y, angle, factor, z).
type Record interface {
	BasePtr() *Base
}

// Engine is the fixed-size pool + free-stack shared by the alpha, move,
// rotate, scale, and z-order motion engines: Push recycles any existing
// motion already targeting the same prim, then allocates the next free
// slot; Tick iterates every running record.
type Engine[T Record] struct {
	records []T
	free     []int
	byPrim   map[int]int
}

// NewEngine preallocates size slots, matching the data model's
// per-engine pool sizes (alpha 256, move 4096, rotate 512, scale 512,
// z 512).
func NewEngine[T Record](size int, zero func() T) *Engine[T] {
	e := &Engine[T]{
		records: make([]T, size),
		free:    make([]int, size),
		byPrim:  make(map[int]int),
	}
	for i := 0; i < size; i++ {
		e.records[i] = zero()
		e.free[i] = size - 1 - i
	}
	return e
}

// alloc recycles any motion already running on primID, else pops the
// next free slot. It returns -1 if the pool is exhausted.
func (e *Engine[T]) alloc(primID int) int {
	if idx, ok := e.byPrim[primID]; ok {
		return idx
	}
	if len(e.free) == 0 {
		return -1
	}
	idx := e.free[len(e.free)-1]
	e.free = e.free[:len(e.free)-1]
	e.byPrim[primID] = idx
	return idx
}

// retire returns idx to the free stack and forgets its prim mapping.
func (e *Engine[T]) retire(idx int) {
	base := e.records[idx].BasePtr()
	delete(e.byPrim, base.PrimID)
	base.Running = false
	e.free = append(e.free, idx)
}

// Slot exposes record idx for in-place mutation by the concrete wrapper
// (AlphaEngine.Push et al.) after Engine.alloc has claimed it.
func (e *Engine[T]) Slot(idx int) T { return e.records[idx] }

// Active reports whether primID currently has a running motion in this
// engine.
func (e *Engine[T]) Active(primID int) (int, bool) {
	idx, ok := e.byPrim[primID]
	return idx, ok
}

// Stop retires the motion targeting primID, if any.
func (e *Engine[T]) Stop(primID int) {
	if idx, ok := e.byPrim[primID]; ok {
		e.retire(idx)
	}
}

// ForEachRunning calls fn for every slot currently running, in pool
// index order (lowest prim-id-allocated-first is not guaranteed, but
// index order is deterministic run to run, which is what the save/load
// round-trip law needs).
func (e *Engine[T]) ForEachRunning(fn func(idx int, rec T)) {
	for idx, rec := range e.records {
		if rec.BasePtr().Running {
			fn(idx, rec)
		}
	}
}

// PauseGate reports whether this prim's ancestor chain blocks the
// motion: a paused prim blocks unless Base.Global is set, in which case
// the pause only counts if it occurs at-or-below customRoot in the
// ancestor walk. isPaused/parentOf are host-provided accessors into the
// prim pool.
func PauseGate(global bool, primID, customRoot int, isPaused func(int) bool, parentOf func(int) int) bool {
	if !global {
		return isPaused(primID)
	}
	id := primID
	for id != -1 {
		if isPaused(id) {
			return true
		}
		if id == customRoot {
			return false
		}
		id = parentOf(id)
	}
	return false
}
