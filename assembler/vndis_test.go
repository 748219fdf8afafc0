// vndis_test.go

//go:build vnasm && vndis

package main

import (
	"bytes"
	"testing"
)

// TestRoundTrip assembles a small program, disassembles it back to
// text, then reassembles that text: the final bytes must match the
// first assembly exactly, the round-trip law any bytecode assembler
// and disassembler pair must satisfy.
func TestRoundTrip(t *testing.T) {
	src := `
		init-stack 1, 2
	start:
		push-stack 0
		push-i32 100
		vm-lt
		jz start
		push-global 5
		syscall 7
		pop-global 5
		jmp start
	`
	first, err := NewAssembler().Assemble(src)
	if err != nil {
		t.Fatalf("first Assemble: %v", err)
	}

	text, err := Disassemble(first)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}

	second, err := NewAssembler().Assemble(text)
	if err != nil {
		t.Fatalf("second Assemble: %v\ndisassembly:\n%s", err, text)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("round trip mismatch:\nfirst:  % x\nsecond: % x\ndisassembly:\n%s", first, second, text)
	}
}
