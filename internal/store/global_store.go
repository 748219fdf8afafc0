// Package store implements the VM's global variable banks: two
// contiguous arrays of Variants, non-volatile (persisted across
// save/load) and volatile (reset on load), sized by the scenario header.
package store

import (
	"fmt"

	"github.com/rfvp-go/vnengine/internal/variant"
	"github.com/rfvp-go/vnengine/internal/verr"
)

// GlobalStore owns the two banks. It is created once per loaded
// scenario and is exclusively owned by the scheduler thread; syscalls
// that touch globals receive a reference for the duration of their call
// (see the concurrency design notes).
type GlobalStore struct {
	nonVolatile []variant.Variant
	volatile    []variant.Variant
}

// New allocates a store with the given bank sizes, every slot starting
// as Nil.
func New(nonVolatileCount, volatileCount int) *GlobalStore {
	return &GlobalStore{
		nonVolatile: make([]variant.Variant, nonVolatileCount),
		volatile:    make([]variant.Variant, volatileCount),
	}
}

// Get reads global index idx, where indices [0, nonVolatileCount) address
// the non-volatile bank and the remainder address the volatile bank, per
// the bytecode's flat global address space (push-global/pop-global).
func (g *GlobalStore) Get(idx uint16) (variant.Variant, error) {
	i := int(idx)
	if i < len(g.nonVolatile) {
		return g.nonVolatile[i], nil
	}
	i -= len(g.nonVolatile)
	if i < len(g.volatile) {
		return g.volatile[i], nil
	}
	return variant.Nil(), fmt.Errorf("global index %d: %w", idx, verr.ErrGlobalOutOfBounds)
}

// Set writes global index idx.
func (g *GlobalStore) Set(idx uint16, v variant.Variant) error {
	i := int(idx)
	if i < len(g.nonVolatile) {
		g.nonVolatile[i] = v
		return nil
	}
	i -= len(g.nonVolatile)
	if i < len(g.volatile) {
		g.volatile[i] = v
		return nil
	}
	return fmt.Errorf("global index %d: %w", idx, verr.ErrGlobalOutOfBounds)
}

// ResetVolatile clears the volatile bank to Nil; called on Load before
// the state chunk is applied, matching the data model's "reset on load"
// invariant for volatile globals.
func (g *GlobalStore) ResetVolatile() {
	for i := range g.volatile {
		g.volatile[i] = variant.Nil()
	}
}

// NonVolatileSnapshot returns a copy of the non-volatile bank for save
// capture.
func (g *GlobalStore) NonVolatileSnapshot() []variant.Variant {
	out := make([]variant.Variant, len(g.nonVolatile))
	copy(out, g.nonVolatile)
	return out
}

// RestoreNonVolatile replaces the non-volatile bank wholesale on load.
func (g *GlobalStore) RestoreNonVolatile(bank []variant.Variant) {
	g.nonVolatile = make([]variant.Variant, len(g.nonVolatile))
	copy(g.nonVolatile, bank)
}

// NonVolatileCount and VolatileCount report the fixed bank sizes.
func (g *GlobalStore) NonVolatileCount() int { return len(g.nonVolatile) }
func (g *GlobalStore) VolatileCount() int    { return len(g.volatile) }
