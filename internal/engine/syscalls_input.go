package engine

import (
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/variant"
)

// Input query selectors, the first argument to the input_query syscall.
const (
	inputQueryState = iota
	inputQueryDown
	inputQueryUp
	inputQueryRepeat
	inputQueryWheel
	inputQueryCursorX
	inputQueryCursorY
)

// bindInputSyscalls attaches the single input_query syscall the
// external interfaces list names, selector-dispatched so the scenario
// header only needs to declare one syscall id for every input read.
func (e *Engine) bindInputSyscalls() {
	e.Registry.Bind("input_query", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		switch argInt(a[0]) {
		case inputQueryState:
			return variant.Int(int32(e.Input.InputState())), nil
		case inputQueryDown:
			return variant.Int(int32(e.Input.InputDown())), nil
		case inputQueryUp:
			return variant.Int(int32(e.Input.InputUp())), nil
		case inputQueryRepeat:
			return variant.Int(int32(e.Input.InputRepeat())), nil
		case inputQueryWheel:
			return variant.Int(e.Input.WheelValue()), nil
		case inputQueryCursorX:
			x, _ := e.Input.CursorPosition()
			return variant.Int(x), nil
		case inputQueryCursorY:
			_, y := e.Input.CursorPosition()
			return variant.Int(y), nil
		default:
			return variant.Nil(), nil
		}
	})
}
