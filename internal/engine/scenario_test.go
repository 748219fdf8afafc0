package engine

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeScenario builds a minimal well-formed scenario binary by hand,
// mirroring the layout LoadScenario decodes, for round-trip testing.
func encodeScenario(t *testing.T, code []byte, entryPC uint32, nonVolatile, volatile, gameMode uint16, title string, syscalls []SyscallDecl) []byte {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(code)))
	buf.Write(code)
	binary.Write(&buf, binary.LittleEndian, entryPC)
	binary.Write(&buf, binary.LittleEndian, nonVolatile)
	binary.Write(&buf, binary.LittleEndian, volatile)
	binary.Write(&buf, binary.LittleEndian, gameMode)
	buf.WriteByte(byte(len(title)))
	buf.WriteString(title)
	binary.Write(&buf, binary.LittleEndian, uint16(len(syscalls)))
	for _, s := range syscalls {
		buf.WriteByte(byte(s.Argc))
		buf.WriteByte(byte(len(s.Name)))
		buf.WriteString(s.Name)
	}
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // custom_syscall_count
	return buf.Bytes()
}

func TestLoadScenarioRoundTrip(t *testing.T) {
	code := []byte{0x01, 0x00, 0x00, 0x04} // init-stack 0,0; ret
	want := []SyscallDecl{
		{Name: "prim_init_with_type", Argc: 2},
		{Name: "set_prim_pos", Argc: 3},
	}
	raw := encodeScenario(t, code, 2, 4, 8, 1, "demo", want)

	gotCode, header, err := LoadScenario(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, code, gotCode)
	require.EqualValues(t, 2, header.EntryPC)
	require.Equal(t, 4, header.NonVolatileCount)
	require.Equal(t, 8, header.VolatileCount)
	require.EqualValues(t, 1, header.GameMode)
	require.Equal(t, "demo", header.Title)
	require.Len(t, header.Syscalls, 2)

	for i, s := range want {
		got := header.Syscalls[i]
		require.Equal(t, s.Name, got.Name, "syscall[%d] name", i)
		require.Equal(t, s.Argc, got.Argc, "syscall[%d] argc", i)
		require.EqualValues(t, i, got.ID, "syscall[%d] id", i)
	}
}

func TestLoadScenarioRejectsCustomSyscalls(t *testing.T) {
	raw := encodeScenario(t, nil, 0, 0, 0, 0, "", nil)
	raw[len(raw)-2] = 1 // set custom_syscall_count to 1
	_, _, err := LoadScenario(bytes.NewReader(raw))
	require.Error(t, err)
}

func TestLoadScenarioTruncatedFails(t *testing.T) {
	raw := encodeScenario(t, []byte{0x04}, 0, 0, 0, 0, "x", nil)
	_, _, err := LoadScenario(bytes.NewReader(raw[:len(raw)-3]))
	require.Error(t, err)
}
