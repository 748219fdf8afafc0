package engine

import (
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/threadreq"
	"github.com/rfvp-go/vnengine/internal/variant"
)

// bindThreadSyscalls attaches the thread-manager's mailbox-posting
// syscalls (start/wait/sleep/next/exit) plus the input-facing control
// mask/pulse pair, per the external interfaces list.
func (e *Engine) bindThreadSyscalls() {
	e.Registry.Bind("thread_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		vm.Post(threadreq.Request{Kind: threadreq.KindStart, ContextID: int(argInt(a[0])), Addr: uint32(argInt(a[1]))})
		return variant.Nil(), nil
	})

	e.Registry.Bind("thread_wait", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		vm.Post(threadreq.Request{Kind: threadreq.KindWait, ContextID: vm.ContextID(), Micros: int64(argInt(a[0]))})
		vm.SetShouldBreak()
		return variant.Nil(), nil
	})

	e.Registry.Bind("thread_sleep", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		vm.Post(threadreq.Request{Kind: threadreq.KindSleep, ContextID: vm.ContextID(), Micros: int64(argInt(a[0]))})
		vm.SetShouldBreak()
		return variant.Nil(), nil
	})

	e.Registry.Bind("thread_next", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		vm.Post(threadreq.Request{Kind: threadreq.KindNext, ContextID: vm.ContextID()})
		vm.SetShouldBreak()
		return variant.Nil(), nil
	})

	e.Registry.Bind("thread_exit", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		target := int(argInt(a[0]))
		vm.Post(threadreq.Request{Kind: threadreq.KindExit, ContextID: target})
		if target == vm.ContextID() {
			vm.SetShouldBreak()
		}
		return variant.Nil(), nil
	})

	e.Registry.Bind("control_mask", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.Input.SetControlMask(argBool(a[0]))
		return variant.Nil(), nil
	})

	e.Registry.Bind("control_pulse", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		vm.Post(threadreq.Request{Kind: threadreq.KindShouldBreak, ContextID: vm.ContextID()})
		vm.SetShouldBreak()
		return variant.Nil(), nil
	})
}
