package vm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/rfvp-go/vnengine/internal/verr"
)

// Instruction is one decoded opcode plus its immediates. Only the
// fields relevant to the opcode are populated; callers switch on Op.
type Instruction struct {
	Op     Op
	Size   int // total encoded size in bytes, including the opcode byte
	Target uint32
	Argc   uint8
	Locals int8
	SysID  uint16
	I32    int32
	Str    string
	GIdx   uint16
	SOff   int8
}

// Decode reads one instruction from code starting at pc. It returns
// ErrInvalidBytecode if pc is out of range or the opcode is unknown, or
// if an immediate would read past the end of code.
func Decode(code []byte, pc int) (Instruction, error) {
	if pc < 0 || pc >= len(code) {
		return Instruction{}, fmt.Errorf("pc %d out of range (len %d): %w", pc, len(code), verr.ErrInvalidBytecode)
	}
	op := Op(code[pc])
	need := func(n int) error {
		if pc+1+n > len(code) {
			return fmt.Errorf("truncated immediate for %s at pc %d: %w", op.Name(), pc, verr.ErrInvalidBytecode)
		}
		return nil
	}

	switch op {
	case OpNop, OpRet, OpRetv, OpPushNil, OpPushTrue, OpPushTop, OpPushReturn, OpCastTable,
		OpAdd, OpSub, OpMul, OpDiv, OpMod, OpNeg, OpAnd, OpOr,
		OpEqual, OpNotEqual, OpGreater, OpLess, OpGreaterEqual, OpLessEqual:
		return Instruction{Op: op, Size: 1}, nil

	case OpInitStack:
		if err := need(2); err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Size: 3, Argc: code[pc+1], Locals: int8(code[pc+2])}, nil

	case OpCall, OpJmp, OpJz:
		if err := need(4); err != nil {
			return Instruction{}, err
		}
		target := binary.LittleEndian.Uint32(code[pc+1 : pc+5])
		return Instruction{Op: op, Size: 5, Target: target}, nil

	case OpSyscall:
		if err := need(2); err != nil {
			return Instruction{}, err
		}
		id := binary.LittleEndian.Uint16(code[pc+1 : pc+3])
		return Instruction{Op: op, Size: 3, SysID: id}, nil

	case OpPushI32:
		if err := need(4); err != nil {
			return Instruction{}, err
		}
		v := int32(binary.LittleEndian.Uint32(code[pc+1 : pc+5]))
		return Instruction{Op: op, Size: 5, I32: v}, nil

	case OpPushI16:
		if err := need(2); err != nil {
			return Instruction{}, err
		}
		v := int32(int16(binary.LittleEndian.Uint16(code[pc+1 : pc+3])))
		return Instruction{Op: op, Size: 3, I32: v}, nil

	case OpPushI8:
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		v := int32(int8(code[pc+1]))
		return Instruction{Op: op, Size: 2, I32: v}, nil

	case OpPushF32:
		if err := need(4); err != nil {
			return Instruction{}, err
		}
		bits := binary.LittleEndian.Uint32(code[pc+1 : pc+5])
		_ = math.Float32frombits(bits)
		return Instruction{Op: op, Size: 5, I32: int32(bits)}, nil

	case OpPushString:
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		n := int(code[pc+1])
		if err := need(1 + n); err != nil {
			return Instruction{}, err
		}
		raw := code[pc+2 : pc+2+n]
		// The caller decodes raw into the active locale; Decode hands
		// back the raw bytes verbatim via Str using a lossless Latin-1
		// style pass-through so multi-byte locale handling happens in
		// one place (internal/vm's locale-aware caller), not here.
		return Instruction{Op: op, Size: 2 + n, Str: string(raw)}, nil

	case OpPushGlobal, OpPopGlobal, OpPushGlobalTable, OpPopGlobalTable:
		if err := need(2); err != nil {
			return Instruction{}, err
		}
		idx := binary.LittleEndian.Uint16(code[pc+1 : pc+3])
		return Instruction{Op: op, Size: 3, GIdx: idx}, nil

	case OpPushStack, OpPopStack, OpPushLocalTable, OpPopLocalTable:
		if err := need(1); err != nil {
			return Instruction{}, err
		}
		return Instruction{Op: op, Size: 2, SOff: int8(code[pc+1])}, nil

	default:
		return Instruction{}, fmt.Errorf("unknown opcode 0x%02X at pc %d: %w", byte(op), pc, verr.ErrInvalidBytecode)
	}
}

// F32 decodes the bit-pattern carried in I32 back to a float32 for
// push-f32 instructions.
func (ins Instruction) F32() float32 {
	return math.Float32frombits(uint32(ins.I32))
}
