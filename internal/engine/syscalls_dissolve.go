package engine

import (
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/variant"
)

// bindDissolveSyscalls attaches dissolve_start, the single entry point
// the external interfaces list names for the global visual transition.
func (e *Engine) bindDissolveSyscalls() {
	e.Registry.Bind("dissolve_start", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		durationMs := float64(argFloat(a[0]))
		targetVolume := argFloat(a[1])
		e.StartDissolve(durationMs, targetVolume)
		return variant.Nil(), nil
	})
}
