// Package syscall implements the VM's host-effect dispatch table: a
// name/id/argc registry built from the scenario header, plus the
// handler functions engine components register against it. This
// mirrors the teacher's MMIO dispatch convention (an id indexes a
// fixed-shape handler) applied to the bytecode's syscall opcode instead
// of a memory-mapped register.
package syscall

import (
	"fmt"

	"github.com/rfvp-go/vnengine/internal/threadreq"
	"github.com/rfvp-go/vnengine/internal/variant"
	"github.com/rfvp-go/vnengine/internal/verr"
)

// VM is the minimal surface a syscall handler needs from the calling
// context: its identity for self-targeted requests, a way to post a
// mailbox request (Start/Wait/Sleep/Raise/Next/Exit), and a way to set
// the one-shot should-break pulse described in the thread-manager design.
type VM interface {
	ContextID() int
	Post(threadreq.Request)
	SetShouldBreak()
}

// HandlerFunc implements one syscall's host-side effect. It receives the
// calling context and its popped arguments (already argc-checked by the
// registry) and returns the value stored in the context's return-value
// slot.
type HandlerFunc func(vm VM, args []variant.Variant) (variant.Variant, error)

// Descriptor is one registered syscall: its declared name (informational,
// taken from the scenario header), its fixed argument count, and its
// host-side handler.
type Descriptor struct {
	Name    string
	Argc    int
	Handler HandlerFunc
}

// Registry is the id -> Descriptor table. It is built in two steps: the
// scenario header declares (id, name, argc) triples via Declare, and the
// engine wires a Handler for each name it knows via Bind. A syscall with
// no bound handler fails with ErrSyscallFailed when invoked, matching
// the "unregistered syscall id" halt condition in the failure-modes
// section.
type Registry struct {
	byID map[uint16]*Descriptor
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[uint16]*Descriptor)}
}

// Declare records a syscall id's name and argc from the scenario header,
// without yet attaching a handler.
func (r *Registry) Declare(id uint16, name string, argc int) {
	r.byID[id] = &Descriptor{Name: name, Argc: argc}
}

// Bind attaches a handler to every declared id whose name matches.
// Returns the number of ids bound, so callers can detect a stale name.
func (r *Registry) Bind(name string, handler HandlerFunc) int {
	n := 0
	for _, d := range r.byID {
		if d.Name == name {
			d.Handler = handler
			n++
		}
	}
	return n
}

// Lookup returns the descriptor for id, or an error wrapping
// ErrSyscallFailed if the id was never declared.
func (r *Registry) Lookup(id uint16) (*Descriptor, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("syscall id %d not registered: %w", id, verr.ErrSyscallFailed)
	}
	return d, nil
}

// Invoke calls the handler for id with args, enforcing the declared argc
// and the "unregistered syscall id" / "missing handler" failure modes.
func (r *Registry) Invoke(vm VM, id uint16, args []variant.Variant) (variant.Variant, error) {
	d, err := r.Lookup(id)
	if err != nil {
		return variant.Nil(), err
	}
	if len(args) != d.Argc {
		return variant.Nil(), fmt.Errorf("syscall %q expects %d args, got %d: %w", d.Name, d.Argc, len(args), verr.ErrSyscallArgcMissing)
	}
	if d.Handler == nil {
		return variant.Nil(), fmt.Errorf("syscall %q (id %d) has no bound handler: %w", d.Name, id, verr.ErrSyscallFailed)
	}
	return d.Handler(vm, args)
}

// Argc returns the declared argument count for id, used by the VM's
// syscall opcode to know how many stack slots to pop before Invoke.
func (r *Registry) Argc(id uint16) (int, error) {
	d, err := r.Lookup(id)
	if err != nil {
		return 0, err
	}
	return d.Argc, nil
}
