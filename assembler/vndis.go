// vndis.go

//go:build vndis

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rfvp-go/vnengine/internal/vm"
)

// Disassemble walks code linearly via vm.Decode, the same decoder the
// runtime uses, so a disassembly never drifts from actual execution
// semantics. Branch targets are collected up front so they can be
// rendered as L<addr> labels instead of raw offsets.
func Disassemble(code []byte) (string, error) {
	targets := map[uint32]bool{}
	for pc := 0; pc < len(code); {
		ins, err := vm.Decode(code, pc)
		if err != nil {
			return "", fmt.Errorf("pc %d: %w", pc, err)
		}
		if ins.Op == vm.OpCall || ins.Op == vm.OpJmp || ins.Op == vm.OpJz {
			targets[ins.Target] = true
		}
		pc += ins.Size
	}

	var b strings.Builder
	for pc := 0; pc < len(code); {
		if targets[uint32(pc)] {
			fmt.Fprintf(&b, "L%d:\n", pc)
		}
		ins, err := vm.Decode(code, pc)
		if err != nil {
			return "", fmt.Errorf("pc %d: %w", pc, err)
		}
		fmt.Fprintf(&b, "    %s\n", formatInstruction(ins))
		pc += ins.Size
	}
	return b.String(), nil
}

func formatInstruction(ins vm.Instruction) string {
	name := ins.Op.Name()
	switch ins.Op {
	case vm.OpInitStack:
		return fmt.Sprintf("%s %d, %d", name, ins.Argc, ins.Locals)
	case vm.OpCall, vm.OpJmp, vm.OpJz:
		return fmt.Sprintf("%s L%d", name, ins.Target)
	case vm.OpSyscall:
		return fmt.Sprintf("%s %d", name, ins.SysID)
	case vm.OpPushI32, vm.OpPushI16, vm.OpPushI8:
		return fmt.Sprintf("%s %d", name, ins.I32)
	case vm.OpPushF32:
		return fmt.Sprintf("%s %g", name, ins.F32())
	case vm.OpPushString:
		return fmt.Sprintf("%s %q", name, ins.Str)
	case vm.OpPushGlobal, vm.OpPopGlobal, vm.OpPushGlobalTable, vm.OpPopGlobalTable:
		return fmt.Sprintf("%s %d", name, ins.GIdx)
	case vm.OpPushStack, vm.OpPopStack, vm.OpPushLocalTable, vm.OpPopLocalTable:
		return fmt.Sprintf("%s %d", name, ins.SOff)
	default:
		return name
	}
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vndis input.bin")
		os.Exit(1)
	}
	code, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
		os.Exit(1)
	}
	out, err := Disassemble(code)
	if err != nil {
		fmt.Fprintf(os.Stderr, "disassembly error: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}
