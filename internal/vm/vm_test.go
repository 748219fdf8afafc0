package vm

import (
	"encoding/binary"
	"testing"

	"github.com/rfvp-go/vnengine/internal/store"
	"github.com/rfvp-go/vnengine/internal/syscall"
)

func assembleU32(b *[]byte, op Op, v uint32) {
	*b = append(*b, byte(op))
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	*b = append(*b, buf[:]...)
}

func assembleI32(b *[]byte, op Op, v int32) {
	assembleU32(b, op, uint32(v))
}

// TestBytecodeRoundTripAdd implements concrete scenario 1: push-i32 7,
// push-i32 35, vm-add, retv -> returning frame top is 42, stack empty.
func TestBytecodeRoundTripAdd(t *testing.T) {
	var code []byte
	code = append(code, byte(OpInitStack), 0, 0)
	assembleI32(&code, OpPushI32, 7)
	assembleI32(&code, OpPushI32, 35)
	code = append(code, byte(OpAdd))
	code = append(code, byte(OpRetv))

	globals := store.New(0, 0)
	registry := syscall.NewRegistry()
	ctx := NewContext(0, code, 0)

	if err := ctx.RunUntilYield(globals, registry); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	rv, ok := ctx.ReturnValue().AsInt()
	if !ok || rv != 42 {
		t.Fatalf("return value = %#v, want Int(42)", ctx.ReturnValue())
	}
	if ctx.StackLen() != 0 {
		t.Fatalf("stack length after retv = %d, want 0", ctx.StackLen())
	}
	if !ctx.IsTerminated() {
		t.Fatalf("root ret must terminate the context")
	}
}

// TestFrameTeardown implements concrete scenario 2: caller pushes 3
// args, calls a function with init-stack argc=3 locals=2; callee does
// ret; the operand stack must return to its pre-call length.
func TestFrameTeardown(t *testing.T) {
	var code []byte
	// main: push 1, 2, 3; call calleeAddr
	assembleI32(&code, OpPushI32, 1)
	assembleI32(&code, OpPushI32, 2)
	assembleI32(&code, OpPushI32, 3)
	callInsnOffset := len(code)
	assembleU32(&code, OpCall, 0) // patched below
	code = append(code, byte(OpNop))

	calleeAddr := uint32(len(code))
	binary.LittleEndian.PutUint32(code[callInsnOffset+1:callInsnOffset+5], calleeAddr)

	code = append(code, byte(OpInitStack), 3, 2)
	code = append(code, byte(OpRet))

	globals := store.New(0, 0)
	registry := syscall.NewRegistry()
	ctx := NewContext(0, code, 0)

	if err := ctx.RunUntilYield(globals, registry); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ctx.StackLen() != 0 {
		t.Fatalf("stack length after callee ret = %d, want 0 (caller's pre-push length)", ctx.StackLen())
	}
}

func TestDecodeUnknownOpcodeIsInvalidBytecode(t *testing.T) {
	_, err := Decode([]byte{0xFF}, 0)
	if err == nil {
		t.Fatalf("expected an error for unknown opcode")
	}
}

func TestDecodeOutOfRangePC(t *testing.T) {
	_, err := Decode([]byte{0x00}, 5)
	if err == nil {
		t.Fatalf("expected an error for out-of-range pc")
	}
}

func TestRetvOnEmptyStackYieldsNilReturn(t *testing.T) {
	var code []byte
	code = append(code, byte(OpInitStack), 0, 0)
	code = append(code, byte(OpRetv))

	globals := store.New(0, 0)
	registry := syscall.NewRegistry()
	ctx := NewContext(0, code, 0)
	if err := ctx.RunUntilYield(globals, registry); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !ctx.ReturnValue().IsNil() {
		t.Fatalf("retv on empty stack must yield Nil, got %#v", ctx.ReturnValue())
	}
}

func TestJumpToOutOfRangePCHaltsOnlyThisContext(t *testing.T) {
	var code []byte
	assembleU32(&code, OpJmp, 9999)

	globals := store.New(0, 0)
	registry := syscall.NewRegistry()
	ctx := NewContext(0, code, 0)
	err := ctx.RunUntilYield(globals, registry)
	if err == nil {
		t.Fatalf("expected an error from an out-of-range jump target")
	}
	if !ctx.IsTerminated() {
		t.Fatalf("the faulting context must be terminated")
	}
}
