package engine

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rfvp-go/vnengine/internal/verr"
)

// LoadScenario decodes the bytecode binary's file header: a little
// endian u32 code-section size, the code bytes themselves, then the
// scenario header (entry pc, global bank sizes, game mode, title, and
// the declared syscall table). custom_syscall_count must be 0 in this
// format; a nonzero value means a binary built for an extension this
// engine does not support.
func LoadScenario(r io.Reader) ([]byte, ScenarioHeader, error) {
	var codeLen uint32
	if err := binary.Read(r, binary.LittleEndian, &codeLen); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading code length: %v", verr.ErrInvalidBytecode, err)
	}
	code := make([]byte, codeLen)
	if _, err := io.ReadFull(r, code); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading code section: %v", verr.ErrInvalidBytecode, err)
	}

	var h ScenarioHeader
	if err := binary.Read(r, binary.LittleEndian, &h.EntryPC); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading entry pc: %v", verr.ErrInvalidBytecode, err)
	}
	var nonVolatile, volatile, gameMode uint16
	if err := binary.Read(r, binary.LittleEndian, &nonVolatile); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading non-volatile count: %v", verr.ErrInvalidBytecode, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &volatile); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading volatile count: %v", verr.ErrInvalidBytecode, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &gameMode); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading game mode: %v", verr.ErrInvalidBytecode, err)
	}
	h.NonVolatileCount = int(nonVolatile)
	h.VolatileCount = int(volatile)
	h.GameMode = gameMode

	titleLen, err := readByte(r)
	if err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading title length: %v", verr.ErrInvalidBytecode, err)
	}
	titleBytes := make([]byte, titleLen)
	if _, err := io.ReadFull(r, titleBytes); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading title: %v", verr.ErrInvalidBytecode, err)
	}
	h.Title = string(titleBytes)

	var syscallCount uint16
	if err := binary.Read(r, binary.LittleEndian, &syscallCount); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading syscall count: %v", verr.ErrInvalidBytecode, err)
	}
	h.Syscalls = make([]SyscallDecl, syscallCount)
	for i := range h.Syscalls {
		argc, err := readByte(r)
		if err != nil {
			return nil, ScenarioHeader{}, fmt.Errorf("%w: reading syscall %d argc: %v", verr.ErrInvalidBytecode, i, err)
		}
		nameLen, err := readByte(r)
		if err != nil {
			return nil, ScenarioHeader{}, fmt.Errorf("%w: reading syscall %d name length: %v", verr.ErrInvalidBytecode, i, err)
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, ScenarioHeader{}, fmt.Errorf("%w: reading syscall %d name: %v", verr.ErrInvalidBytecode, i, err)
		}
		h.Syscalls[i] = SyscallDecl{ID: uint16(i), Name: string(nameBytes), Argc: int(argc)}
	}

	var customCount uint16
	if err := binary.Read(r, binary.LittleEndian, &customCount); err != nil {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: reading custom syscall count: %v", verr.ErrInvalidBytecode, err)
	}
	if customCount != 0 {
		return nil, ScenarioHeader{}, fmt.Errorf("%w: custom syscall count %d unsupported in this format", verr.ErrUnsupported, customCount)
	}

	return code, h, nil
}

func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}
