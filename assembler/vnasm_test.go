// vnasm_test.go

//go:build vnasm

package main

import (
	"bytes"
	"testing"
)

func TestAssembleSimpleSequence(t *testing.T) {
	src := `
		init-stack 0, 0
		push-i32 42
		push-string "hi"
		ret
	`
	asm := NewAssembler()
	out, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []byte{
		0x01, 0x00, 0x00, // init-stack 0,0
		0x0A, 42, 0, 0, 0, // push-i32 42
		0x0E, 2, 'h', 'i', // push-string "hi"
		0x04, // ret
	}
	if !bytes.Equal(out, want) {
		t.Fatalf("encoded = % x, want % x", out, want)
	}
}

func TestAssembleForwardAndBackwardLabels(t *testing.T) {
	src := `
	loop:
		push-i8 1
		jz loop
		jmp done
	done:
		ret
	`
	asm := NewAssembler()
	out, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// push-i8(2) + jz(5) + jmp(5) + ret(1) = 13 bytes; loop at 0, done at 12.
	if len(out) != 13 {
		t.Fatalf("len(out) = %d, want 13", len(out))
	}
	if out[2] != byte(0x07) { // jz opcode
		t.Fatalf("expected jz at offset 2, got 0x%02x", out[2])
	}
	jzTarget := uint32(out[3]) | uint32(out[4])<<8 | uint32(out[5])<<16 | uint32(out[6])<<24
	if jzTarget != 0 {
		t.Fatalf("jz target = %d, want 0 (loop)", jzTarget)
	}
	jmpTarget := uint32(out[8]) | uint32(out[9])<<8 | uint32(out[10])<<16 | uint32(out[11])<<24
	if jmpTarget != 12 {
		t.Fatalf("jmp target = %d, want 12 (done)", jmpTarget)
	}
}

func TestAssembleUndefinedLabelFails(t *testing.T) {
	asm := NewAssembler()
	if _, err := asm.Assemble("call nowhere\nret\n"); err == nil {
		t.Fatalf("expected an error for an undefined label")
	}
}

func TestAssembleUnknownMnemonicFails(t *testing.T) {
	asm := NewAssembler()
	if _, err := asm.Assemble("bogus-op 1\n"); err == nil {
		t.Fatalf("expected an error for an unknown mnemonic")
	}
}
