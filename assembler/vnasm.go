// vnasm.go

//go:build vnasm

package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rfvp-go/vnengine/internal/vm"
)

// mnemonics maps every assembler-surface name back to its opcode, the
// inverse of vm.Op.Name(), built once at package init so a stale
// mnemonic list can never drift from the decoder's own opcode table.
var mnemonics = buildMnemonicTable()

func buildMnemonicTable() map[string]vm.Op {
	m := make(map[string]vm.Op, 0x28)
	for op := vm.Op(0); op <= vm.OpCastTable; op++ {
		if name := op.Name(); name != "unknown" {
			m[name] = op
		}
	}
	return m
}

// operandKind classifies how an opcode's single operand (if any) is
// encoded, mirroring Decode's own opcode grouping in internal/vm/decoder.go.
type operandKind int

const (
	operandNone operandKind = iota
	operandInitStack
	operandBranchTarget // call/jmp/jz: 4-byte label address
	operandSyscallID    // 2-byte syscall id
	operandI32          // 4-byte signed immediate
	operandI16          // 2-byte signed immediate
	operandI8           // 1-byte signed immediate
	operandF32          // 4-byte float bits
	operandString       // length-prefixed raw bytes
	operandGlobalIndex  // 2-byte unsigned global index
	operandFrameOffset  // 1-byte signed frame offset
)

func kindOf(op vm.Op) operandKind {
	switch op {
	case vm.OpInitStack:
		return operandInitStack
	case vm.OpCall, vm.OpJmp, vm.OpJz:
		return operandBranchTarget
	case vm.OpSyscall:
		return operandSyscallID
	case vm.OpPushI32:
		return operandI32
	case vm.OpPushI16:
		return operandI16
	case vm.OpPushI8:
		return operandI8
	case vm.OpPushF32:
		return operandF32
	case vm.OpPushString:
		return operandString
	case vm.OpPushGlobal, vm.OpPopGlobal, vm.OpPushGlobalTable, vm.OpPopGlobalTable:
		return operandGlobalIndex
	case vm.OpPushStack, vm.OpPopStack, vm.OpPushLocalTable, vm.OpPopLocalTable:
		return operandFrameOffset
	default:
		return operandNone
	}
}

func instructionSize(op vm.Op, operands []string) (int, error) {
	switch kindOf(op) {
	case operandNone:
		return 1, nil
	case operandInitStack:
		return 3, nil
	case operandBranchTarget:
		return 5, nil
	case operandSyscallID, operandGlobalIndex:
		return 3, nil
	case operandI32, operandF32:
		return 5, nil
	case operandI16:
		return 3, nil
	case operandI8, operandFrameOffset:
		return 2, nil
	case operandString:
		raw, err := unquote(strings.Join(operands, " "))
		if err != nil {
			return 0, err
		}
		return 2 + len(raw), nil
	default:
		return 1, nil
	}
}

// asmLine is one parsed source line: an optional label definition and
// an optional instruction.
type asmLine struct {
	label    string
	mnemonic string
	operands []string
	lineNo   int
}

// Assembler performs the classic two-pass assembly this package's
// corpus-mate disassembler/CPU assemblers use: a first pass that walks
// every line to build the label->address table from instruction sizes
// alone, then a second pass that encodes each instruction now that every
// forward reference is resolvable.
type Assembler struct {
	labels   map[string]uint32
	warnings []string
}

func NewAssembler() *Assembler {
	return &Assembler{labels: make(map[string]uint32)}
}

func (a *Assembler) Warnings() []string { return a.warnings }

func (a *Assembler) warnf(format string, args ...any) {
	a.warnings = append(a.warnings, fmt.Sprintf(format, args...))
}

// Assemble parses source into asmLines, resolves every label to an
// address in a size-only first pass, then encodes the full byte stream
// in a second pass.
func (a *Assembler) Assemble(source string) ([]byte, error) {
	lines, err := parseLines(source)
	if err != nil {
		return nil, err
	}

	pc := uint32(0)
	for _, ln := range lines {
		if ln.label != "" {
			if _, exists := a.labels[ln.label]; exists {
				return nil, fmt.Errorf("line %d: duplicate label %q", ln.lineNo, ln.label)
			}
			a.labels[ln.label] = pc
		}
		if ln.mnemonic == "" {
			continue
		}
		op, ok := mnemonics[ln.mnemonic]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown mnemonic %q", ln.lineNo, ln.mnemonic)
		}
		size, err := instructionSize(op, ln.operands)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln.lineNo, err)
		}
		pc += uint32(size)
	}

	var out []byte
	for _, ln := range lines {
		if ln.mnemonic == "" {
			continue
		}
		op := mnemonics[ln.mnemonic]
		enc, err := a.encode(op, ln)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", ln.lineNo, err)
		}
		out = append(out, enc...)
	}
	return out, nil
}

func (a *Assembler) encode(op vm.Op, ln asmLine) ([]byte, error) {
	buf := []byte{byte(op)}

	switch kindOf(op) {
	case operandNone:
		return buf, nil

	case operandInitStack:
		if len(ln.operands) != 2 {
			return nil, fmt.Errorf("%s requires argc, locals", ln.mnemonic)
		}
		argc, err := parseIntOperand(ln.operands[0], nil)
		if err != nil {
			return nil, err
		}
		locals, err := parseIntOperand(ln.operands[1], nil)
		if err != nil {
			return nil, err
		}
		return append(buf, byte(argc), byte(int8(locals))), nil

	case operandBranchTarget:
		if len(ln.operands) != 1 {
			return nil, fmt.Errorf("%s requires one label or address operand", ln.mnemonic)
		}
		target, err := a.resolveTarget(ln.operands[0])
		if err != nil {
			return nil, err
		}
		return appendU32(buf, target), nil

	case operandSyscallID:
		v, err := parseIntOperand(single(ln.operands), nil)
		if err != nil {
			return nil, err
		}
		return appendU16(buf, uint16(v)), nil

	case operandGlobalIndex:
		v, err := parseIntOperand(single(ln.operands), nil)
		if err != nil {
			return nil, err
		}
		return appendU16(buf, uint16(v)), nil

	case operandI32:
		v, err := parseIntOperand(single(ln.operands), nil)
		if err != nil {
			return nil, err
		}
		return appendU32(buf, uint32(int32(v))), nil

	case operandI16:
		v, err := parseIntOperand(single(ln.operands), nil)
		if err != nil {
			return nil, err
		}
		return appendU16(buf, uint16(int16(v))), nil

	case operandI8, operandFrameOffset:
		v, err := parseIntOperand(single(ln.operands), nil)
		if err != nil {
			return nil, err
		}
		return append(buf, byte(int8(v))), nil

	case operandF32:
		f, err := strconv.ParseFloat(single(ln.operands), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float operand %q: %w", single(ln.operands), err)
		}
		return appendU32(buf, math.Float32bits(float32(f))), nil

	case operandString:
		raw, err := unquote(strings.Join(ln.operands, " "))
		if err != nil {
			return nil, err
		}
		if len(raw) > 0xFF {
			return nil, fmt.Errorf("push-string operand too long (%d bytes, max 255)", len(raw))
		}
		buf = append(buf, byte(len(raw)))
		return append(buf, raw...), nil

	default:
		return buf, nil
	}
}

func (a *Assembler) resolveTarget(operand string) (uint32, error) {
	if addr, ok := a.labels[operand]; ok {
		return addr, nil
	}
	v, err := parseIntOperand(operand, nil)
	if err != nil {
		return 0, fmt.Errorf("undefined label %q", operand)
	}
	return uint32(v), nil
}

func single(operands []string) string {
	if len(operands) == 0 {
		return ""
	}
	return operands[0]
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU16(buf []byte, v uint16) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return append(buf, b[:]...)
}

// parseIntOperand parses a decimal, $hex, or 0x-hex integer literal.
// The labels map is accepted for symmetry with resolveTarget callers but
// is unused by plain integer operands.
func parseIntOperand(s string, _ map[string]uint32) (int64, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var v int64
	var err error
	switch {
	case strings.HasPrefix(s, "$"):
		v, err = strconv.ParseInt(s[1:], 16, 64)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseInt(s[2:], 16, 64)
	default:
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid integer operand %q", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

func unquote(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return nil, fmt.Errorf("push-string operand must be a quoted string, got %q", s)
	}
	inner := s[1 : len(s)-1]
	out := make([]byte, 0, len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			default:
				out = append(out, inner[i])
			}
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// parseLines strips comments and blank lines, splits an optional
// "label:" prefix from the instruction body, and tokenizes operands on
// commas.
func parseLines(source string) ([]asmLine, error) {
	var out []asmLine
	for i, raw := range strings.Split(source, "\n") {
		lineNo := i + 1
		line := stripComment(raw)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var label string
		if idx := strings.Index(line, ":"); idx >= 0 && !strings.Contains(line[:idx], " ") {
			label = line[:idx]
			line = strings.TrimSpace(line[idx+1:])
		}

		if line == "" {
			out = append(out, asmLine{label: label, lineNo: lineNo})
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		mnemonic := strings.ToLower(fields[0])
		var operands []string
		if len(fields) == 2 {
			operands = splitOperands(fields[1])
		}
		out = append(out, asmLine{label: label, mnemonic: mnemonic, operands: operands, lineNo: lineNo})
	}
	return out, nil
}

func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inString = !inString
		case ';':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// splitOperands splits on top-level commas, leaving quoted strings and
// their embedded commas untouched.
func splitOperands(s string) []string {
	var out []string
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inString = !inString
		case ',':
			if !inString {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	out = append(out, strings.TrimSpace(s[start:]))
	return out
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vnasm input.vnasm")
		os.Exit(1)
	}
	source, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
		os.Exit(1)
	}

	asm := NewAssembler()
	out, err := asm.Assemble(string(source))
	if err != nil {
		fmt.Fprintf(os.Stderr, "assembly error: %v\n", err)
		os.Exit(1)
	}
	for _, w := range asm.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	outPath := strings.TrimSuffix(os.Args[1], ".vnasm") + ".bin"
	if err := os.WriteFile(outPath, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("assembled %s (%d bytes)\n", outPath, len(out))
}
