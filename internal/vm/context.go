package vm

import (
	"fmt"

	"github.com/rfvp-go/vnengine/internal/store"
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/threadreq"
	"github.com/rfvp-go/vnengine/internal/variant"
	"github.com/rfvp-go/vnengine/internal/verr"
)

const maxOperandStack = 256

// Status is the context's suspension state, a small set of independent
// bits rather than a single enum, since wait/sleep/dissolve-wait can
// overlap in principle even though the scheduler only ever sets one at a
// time today.
type Status uint8

const (
	StatusRunning Status = 1 << iota
	StatusWait
	StatusSleep
	StatusDissolveWait
	StatusTerminated
)

// Frame records what a callee's InitStack needs to tear down correctly
// on ret/retv: where to resume the caller, what the caller's stack base
// was, and how long the operand stack was right before the call's
// arguments were pushed.
type Frame struct {
	ReturnPC      int
	PrevStackBase int
	PrevStackLen  int
	Argc          int
}

// Context is one cooperatively-scheduled script execution state: a
// program counter into shared bytecode, a bounded operand stack, a call
// stack of frames, and the suspension bookkeeping the scheduler reads
// every frame.
type Context struct {
	id   int
	code []byte

	pc         int
	stack      []variant.Variant
	callStack  []Frame
	stackBase  int
	returnVal  variant.Variant
	status     Status
	waitUntil  int64 // accumulated elapsed microseconds remaining
	shouldStop bool  // should_break, consumed once per opcode loop

	mailbox threadreq.Mailbox

	// decode converts push-string's raw locale bytes to UTF-8; nil means
	// pass the bytes through unchanged (the UTF-8 locale's behavior).
	decode func([]byte) string
}

// NewContext creates a context in the Running state that starts
// executing at entryPC on its next scheduler turn.
func NewContext(id int, code []byte, entryPC int) *Context {
	return &Context{
		id:     id,
		code:   code,
		pc:     entryPC,
		status: StatusRunning,
	}
}

// NewContextWithDecoder is NewContext plus a locale decoder applied to
// every push-string immediate, for booting the root script context
// against a non-UTF-8 scenario.
func NewContextWithDecoder(id int, code []byte, entryPC int, decode func([]byte) string) *Context {
	c := NewContext(id, code, entryPC)
	c.decode = decode
	return c
}

func (c *Context) ID() int          { return c.id }
func (c *Context) Status() Status   { return c.status }
func (c *Context) PC() int          { return c.pc }
func (c *Context) ReturnValue() variant.Variant { return c.returnVal }
func (c *Context) StackLen() int    { return len(c.stack) }
func (c *Context) IsTerminated() bool { return c.status&StatusTerminated != 0 }

// ContextID/Post/SetShouldBreak implement syscall.VM.
func (c *Context) ContextID() int { return c.id }
func (c *Context) Post(r threadreq.Request) { c.mailbox.Post(r) }
func (c *Context) SetShouldBreak() { c.shouldStop = true }

func (c *Context) push(v variant.Variant) error {
	if len(c.stack) >= maxOperandStack {
		return fmt.Errorf("context %d: %w", c.id, verr.ErrStackOverflow)
	}
	c.stack = append(c.stack, v)
	return nil
}

func (c *Context) pop() (variant.Variant, error) {
	if len(c.stack) == 0 {
		return variant.Nil(), fmt.Errorf("context %d: %w", c.id, verr.ErrStackUnderflow)
	}
	v := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return v, nil
}

func (c *Context) top() (variant.Variant, error) {
	if len(c.stack) == 0 {
		return variant.Nil(), fmt.Errorf("context %d: %w", c.id, verr.ErrStackUnderflow)
	}
	return c.stack[len(c.stack)-1], nil
}

// frameSlot resolves push-stack/pop-stack addressing: a non-negative
// offset is frame-relative (argument if < argc, local otherwise);
// a negative offset addresses arguments pushed before the frame base,
// using abs = (-off) - 2, idx = stackBase - abs.
func (c *Context) frameSlot(off int8) (int, error) {
	if off >= 0 {
		idx := c.stackBase + int(off)
		if idx < 0 || idx >= len(c.stack) {
			return 0, fmt.Errorf("context %d: frame offset %d out of range: %w", c.id, off, verr.ErrStackUnderflow)
		}
		return idx, nil
	}
	abs := int(-off) - 2
	idx := c.stackBase - abs
	if idx < 0 || idx >= len(c.stack) {
		return 0, fmt.Errorf("context %d: frame offset %d out of range: %w", c.id, off, verr.ErrStackUnderflow)
	}
	return idx, nil
}

// StepResult tells the scheduler what happened after one opcode.
type StepResult int

const (
	StepContinue StepResult = iota
	StepYield
	StepHalted
)

// RunUntilYield dispatches opcodes in a tight loop, exactly as the
// thread-manager design specifies, until should_break is set by a
// yielding syscall or the context halts (ret from the root frame, or an
// unrecoverable fault). A fault halts only this context; the error is
// returned for the caller to log, never panicked.
func (c *Context) RunUntilYield(globals *store.GlobalStore, registry *syscall.Registry) error {
	if c.status&(StatusRunning) == 0 {
		return nil
	}
	c.shouldStop = false
	for !c.shouldStop {
		outcome, err := c.step(globals, registry)
		if err != nil {
			c.status = StatusTerminated
			return err
		}
		if outcome == StepHalted {
			c.status = StatusTerminated
			return nil
		}
	}
	return nil
}

// step executes exactly one instruction.
func (c *Context) step(globals *store.GlobalStore, registry *syscall.Registry) (StepResult, error) {
	ins, err := Decode(c.code, c.pc)
	if err != nil {
		return StepHalted, err
	}
	c.pc += ins.Size

	switch ins.Op {
	case OpNop:
		// no-op

	case OpInitStack:
		argc := int(ins.Argc)
		locals := int(ins.Locals)
		if locals < 0 {
			locals = 0
		}
		if len(c.stack) < argc {
			return StepHalted, fmt.Errorf("context %d: init-stack argc=%d: %w", c.id, argc, verr.ErrStackUnderflow)
		}
		argsStart := len(c.stack) - argc
		if len(c.callStack) == 0 {
			c.callStack = append(c.callStack, Frame{ReturnPC: 0, PrevStackBase: 0, PrevStackLen: argsStart, Argc: argc})
		} else {
			c.callStack[len(c.callStack)-1].PrevStackLen = argsStart
			c.callStack[len(c.callStack)-1].Argc = argc
		}
		c.stackBase = argsStart
		for i := 0; i < locals; i++ {
			if err := c.push(variant.Nil()); err != nil {
				return StepHalted, err
			}
		}

	case OpCall:
		c.callStack = append(c.callStack, Frame{ReturnPC: c.pc, PrevStackBase: c.stackBase})
		c.pc = int(ins.Target)

	case OpSyscall:
		argc, err := registry.Argc(ins.SysID)
		if err != nil {
			return StepHalted, err
		}
		if len(c.stack) < argc {
			return StepHalted, fmt.Errorf("context %d: %w", c.id, verr.ErrStackUnderflow)
		}
		start := len(c.stack) - argc
		args := make([]variant.Variant, argc)
		copy(args, c.stack[start:])
		c.stack = c.stack[:start]
		ret, err := registry.Invoke(c, ins.SysID, args)
		if err != nil {
			return StepHalted, err
		}
		c.returnVal = ret

	case OpRet, OpRetv:
		var rv variant.Variant
		if ins.Op == OpRetv {
			v, err := c.pop()
			if err != nil {
				rv = variant.Nil()
			} else {
				rv = v
			}
		}
		if len(c.callStack) == 0 {
			return StepHalted, fmt.Errorf("context %d: %w", c.id, verr.ErrCallStackUnderflow)
		}
		frame := c.callStack[len(c.callStack)-1]
		c.callStack = c.callStack[:len(c.callStack)-1]
		if frame.PrevStackLen < len(c.stack) {
			c.stack = c.stack[:frame.PrevStackLen]
		}
		c.stackBase = frame.PrevStackBase
		if ins.Op == OpRetv {
			c.returnVal = rv
		}
		if len(c.callStack) == 0 {
			return StepHalted, nil
		}
		c.pc = frame.ReturnPC

	case OpJmp:
		c.pc = int(ins.Target)

	case OpJz:
		v, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		if !v.CanBeTrue() {
			c.pc = int(ins.Target)
		}

	case OpPushNil:
		return c.pushStep(variant.Nil())
	case OpPushTrue:
		return c.pushStep(variant.True())
	case OpPushI32, OpPushI16, OpPushI8:
		return c.pushStep(variant.Int(ins.I32))
	case OpPushF32:
		return c.pushStep(variant.Float(ins.F32()))
	case OpPushString:
		s := ins.Str
		if c.decode != nil {
			s = c.decode([]byte(ins.Str))
		}
		return c.pushStep(variant.ConstString(s, uint32(c.pc-ins.Size)))

	case OpPushGlobal:
		v, err := globals.Get(ins.GIdx)
		if err != nil {
			return StepHalted, err
		}
		return c.pushStep(v)

	case OpPushStack:
		idx, err := c.frameSlot(ins.SOff)
		if err != nil {
			return StepHalted, err
		}
		return c.pushStep(c.stack[idx])

	case OpPushGlobalTable:
		key, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		tv, err := globals.Get(ins.GIdx)
		if err != nil {
			return c.pushStep(variant.Nil())
		}
		return c.pushTableLookup(tv, key)

	case OpPushLocalTable:
		key, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		idx, err := c.frameSlot(ins.SOff)
		if err != nil {
			return c.pushStep(variant.Nil())
		}
		return c.pushTableLookup(c.stack[idx], key)

	case OpPushTop:
		v, err := c.top()
		if err != nil {
			return StepHalted, err
		}
		return c.pushStep(v)

	case OpPushReturn:
		return c.pushStep(c.returnVal)

	case OpPopGlobal:
		v, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		if err := globals.Set(ins.GIdx, v); err != nil {
			return StepHalted, err
		}

	case OpPopStack:
		v, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		idx, err := c.frameSlot(ins.SOff)
		if err != nil {
			return StepHalted, err
		}
		c.stack[idx] = v

	case OpPopGlobalTable:
		v, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		key, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		tv, err := globals.Get(ins.GIdx)
		if err == nil {
			if t, ok := tv.AsTable(); ok {
				if k, ok := key.AsInt(); ok {
					t.Insert(uint32(k), v)
				}
			}
		}

	case OpPopLocalTable:
		v, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		key, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		idx, err := c.frameSlot(ins.SOff)
		if err == nil {
			if t, ok := c.stack[idx].AsTable(); ok {
				if k, ok := key.AsInt(); ok {
					t.Insert(uint32(k), v)
				}
			}
		}

	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpAnd, OpOr,
		OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		b, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		a, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		return c.pushStep(binOp(ins.Op, a, b))

	case OpNeg:
		a, err := c.pop()
		if err != nil {
			return StepHalted, err
		}
		a.Neg()
		return c.pushStep(a)

	case OpCastTable:
		return c.pushStep(variant.NewTableVariant())

	default:
		return StepHalted, fmt.Errorf("context %d: unhandled opcode %s: %w", c.id, ins.Op.Name(), verr.ErrInvalidBytecode)
	}

	if c.shouldStop {
		return StepYield, nil
	}
	return StepContinue, nil
}

func (c *Context) pushStep(v variant.Variant) (StepResult, error) {
	if err := c.push(v); err != nil {
		return StepHalted, err
	}
	if c.shouldStop {
		return StepYield, nil
	}
	return StepContinue, nil
}

func (c *Context) pushTableLookup(tv, key variant.Variant) (StepResult, error) {
	t, ok := tv.AsTable()
	if !ok {
		return c.pushStep(variant.Nil())
	}
	k, ok := key.AsInt()
	if !ok {
		return c.pushStep(variant.Nil())
	}
	v, ok := t.Get(uint32(k))
	if !ok {
		return c.pushStep(variant.Nil())
	}
	return c.pushStep(v)
}

func binOp(op Op, a, b variant.Variant) variant.Variant {
	switch op {
	case OpAdd:
		return variant.Add(a, b)
	case OpSub:
		return variant.Sub(a, b)
	case OpMul:
		return variant.Mul(a, b)
	case OpDiv:
		return variant.Div(a, b)
	case OpMod:
		return variant.Mod(a, b)
	case OpAnd:
		return variant.And(a, b)
	case OpOr:
		return variant.Or(a, b)
	case OpEqual:
		return variant.Equal(a, b)
	case OpNotEqual:
		return variant.NotEqual(a, b)
	case OpGreater:
		return variant.Greater(a, b)
	case OpLess:
		return variant.Less(a, b)
	case OpGreaterEqual:
		return variant.GreaterEqual(a, b)
	case OpLessEqual:
		return variant.LessEqual(a, b)
	default:
		return variant.Nil()
	}
}

// DrainMailbox returns and clears the requests this context's syscalls
// posted since the last drain.
func (c *Context) DrainMailbox() []threadreq.Request {
	return c.mailbox.Drain()
}

// SetStatus lets the scheduler transition wait/sleep/dissolve bits.
func (c *Context) SetStatus(s Status) { c.status = s }

// AddStatus/ClearStatus toggle individual bits without disturbing the
// others.
func (c *Context) AddStatus(s Status)   { c.status |= s }
func (c *Context) ClearStatus(s Status) { c.status &^= s }
func (c *Context) HasStatus(s Status) bool { return c.status&s != 0 }

// TickWait decrements the accumulated wait budget by elapsedUs, clearing
// StatusWait once the budget is exhausted.
func (c *Context) TickWait(elapsedUs int64) {
	if !c.HasStatus(StatusWait) {
		return
	}
	c.waitUntil -= elapsedUs
	if c.waitUntil <= 0 {
		c.ClearStatus(StatusWait)
	}
}

// BeginWait puts the context into a wait state for the given duration.
func (c *Context) BeginWait(micros int64) {
	c.waitUntil = micros
	c.AddStatus(StatusWait)
}
