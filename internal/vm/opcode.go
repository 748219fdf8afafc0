// Package vm implements the bytecode virtual machine: decoder, per-
// context operand/call stack dispatch, frame-relative addressing, and
// the cooperative multi-context scheduler described in the design's
// thread-manager section.
package vm

// Op is one of the canonical 0x00-0x27 opcodes.
type Op byte

const (
	OpNop             Op = 0x00
	OpInitStack       Op = 0x01
	OpCall            Op = 0x02
	OpSyscall         Op = 0x03
	OpRet             Op = 0x04
	OpRetv            Op = 0x05
	OpJmp             Op = 0x06
	OpJz              Op = 0x07
	OpPushNil         Op = 0x08
	OpPushTrue        Op = 0x09
	OpPushI32         Op = 0x0A
	OpPushI16         Op = 0x0B
	OpPushI8          Op = 0x0C
	OpPushF32         Op = 0x0D
	OpPushString      Op = 0x0E
	OpPushGlobal      Op = 0x0F
	OpPushStack       Op = 0x10
	OpPushGlobalTable Op = 0x11
	OpPushLocalTable  Op = 0x12
	OpPushTop         Op = 0x13
	OpPushReturn      Op = 0x14
	OpPopGlobal       Op = 0x15
	OpPopStack        Op = 0x16
	OpPopGlobalTable  Op = 0x17
	OpPopLocalTable   Op = 0x18

	// 0x19..0x27: arithmetic/logical/comparison, one opcode per Variant
	// operation, in the same order the Variant package exposes them.
	OpAdd          Op = 0x19
	OpSub          Op = 0x1A
	OpMul          Op = 0x1B
	OpDiv          Op = 0x1C
	OpMod          Op = 0x1D
	OpNeg          Op = 0x1E
	OpAnd          Op = 0x1F
	OpOr           Op = 0x20
	OpEqual        Op = 0x21
	OpNotEqual     Op = 0x22
	OpGreater      Op = 0x23
	OpLess         Op = 0x24
	OpGreaterEqual Op = 0x25
	OpLessEqual    Op = 0x26
	OpCastTable    Op = 0x27
)

// Name returns a human-readable mnemonic, used by the disassembler and
// by error messages on InvalidBytecode faults.
func (o Op) Name() string {
	switch o {
	case OpNop:
		return "nop"
	case OpInitStack:
		return "init-stack"
	case OpCall:
		return "call"
	case OpSyscall:
		return "syscall"
	case OpRet:
		return "ret"
	case OpRetv:
		return "retv"
	case OpJmp:
		return "jmp"
	case OpJz:
		return "jz"
	case OpPushNil:
		return "push-nil"
	case OpPushTrue:
		return "push-true"
	case OpPushI32:
		return "push-i32"
	case OpPushI16:
		return "push-i16"
	case OpPushI8:
		return "push-i8"
	case OpPushF32:
		return "push-f32"
	case OpPushString:
		return "push-string"
	case OpPushGlobal:
		return "push-global"
	case OpPushStack:
		return "push-stack"
	case OpPushGlobalTable:
		return "push-global-table"
	case OpPushLocalTable:
		return "push-local-table"
	case OpPushTop:
		return "push-top"
	case OpPushReturn:
		return "push-return"
	case OpPopGlobal:
		return "pop-global"
	case OpPopStack:
		return "pop-stack"
	case OpPopGlobalTable:
		return "pop-global-table"
	case OpPopLocalTable:
		return "pop-local-table"
	case OpAdd:
		return "vm-add"
	case OpSub:
		return "vm-sub"
	case OpMul:
		return "vm-mul"
	case OpDiv:
		return "vm-div"
	case OpMod:
		return "vm-mod"
	case OpNeg:
		return "vm-neg"
	case OpAnd:
		return "vm-and"
	case OpOr:
		return "vm-or"
	case OpEqual:
		return "vm-eq"
	case OpNotEqual:
		return "vm-ne"
	case OpGreater:
		return "vm-gt"
	case OpLess:
		return "vm-lt"
	case OpGreaterEqual:
		return "vm-ge"
	case OpLessEqual:
		return "vm-le"
	case OpCastTable:
		return "cast-table"
	default:
		return "unknown"
	}
}
