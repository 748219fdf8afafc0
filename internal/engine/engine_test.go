package engine

import (
	"bytes"
	"os"
	"testing"

	"github.com/rfvp-go/vnengine/internal/config"
	"github.com/rfvp-go/vnengine/internal/prim"
	"github.com/rfvp-go/vnengine/internal/variant"
	"github.com/rfvp-go/vnengine/internal/vm"
)

// decl builds a ScenarioHeader whose syscall table declares exactly the
// names under test, each with the given argc, ids assigned in order.
func decl(names map[string]int) []SyscallDecl {
	var out []SyscallDecl
	var id uint16
	for name, argc := range names {
		out = append(out, SyscallDecl{ID: id, Name: name, Argc: argc})
		id++
	}
	return out
}

func newTestEngine(t *testing.T, syscalls map[string]int) *Engine {
	t.Helper()
	cfg := config.Default()
	cfg.AudioBackend = "none"
	cfg.SaveDirectory = t.TempDir()
	header := ScenarioHeader{
		EntryPC:  0,
		Syscalls: decl(syscalls),
	}
	return New(cfg, []byte{byte(vm.OpRet)}, header)
}

// invoke finds name's declared id (decl assigns ids contiguously from 0)
// and calls its bound handler directly, standing in for the bytecode
// interpreter's syscall opcode dispatch.
func invoke(t *testing.T, e *Engine, name string, args ...variant.Variant) variant.Variant {
	t.Helper()
	for id := uint16(0); id < 64; id++ {
		d, err := e.Registry.Lookup(id)
		if err != nil {
			break
		}
		if d.Name != name {
			continue
		}
		v, err := e.Registry.Invoke(vm.NewContext(999, nil, 0), id, args)
		if err != nil {
			t.Fatalf("invoke %s: %v", name, err)
		}
		return v
	}
	t.Fatalf("syscall %q not declared in this test engine", name)
	return variant.Nil()
}

func TestPrimLinkingAndFieldSetters(t *testing.T) {
	e := newTestEngine(t, map[string]int{
		"prim_init_with_type": 2,
		"set_prim_group_in":   2,
		"set_prim_pos":        3,
		"set_prim_alpha":      2,
	})

	invoke(t, e, "prim_init_with_type", variant.Int(1), variant.Int(int32(prim.TypeSprt)))
	invoke(t, e, "set_prim_group_in", variant.Int(0), variant.Int(1))
	invoke(t, e, "set_prim_pos", variant.Int(1), variant.Float(10), variant.Float(20))
	invoke(t, e, "set_prim_alpha", variant.Int(1), variant.Int(128))

	p := e.Prims.Get(1)
	if p.Type != prim.TypeSprt {
		t.Fatalf("type = %v, want TypeSprt", p.Type)
	}
	if p.Parent != prim.RootID {
		t.Fatalf("parent = %d, want root", p.Parent)
	}
	if p.X != 10 || p.Y != 20 {
		t.Fatalf("pos = (%v,%v), want (10,20)", p.X, p.Y)
	}
	if p.Alpha != 128 {
		t.Fatalf("alpha = %d, want 128", p.Alpha)
	}
}

func TestAlphaMotionStartTickTest(t *testing.T) {
	e := newTestEngine(t, map[string]int{
		"prim_init_with_type": 2,
		"alpha_motion_start":  7,
		"alpha_motion_test":   1,
	})

	invoke(t, e, "prim_init_with_type", variant.Int(1), variant.Int(int32(prim.TypeSprt)))
	ok := invoke(t, e, "alpha_motion_start",
		variant.Int(1), variant.Int(0), variant.Int(255), variant.Float(100),
		variant.Int(0), variant.Nil(), variant.Nil())
	if !ok.CanBeTrue() {
		t.Fatalf("alpha_motion_start returned false")
	}

	active := invoke(t, e, "alpha_motion_test", variant.Int(1))
	if !active.CanBeTrue() {
		t.Fatalf("alpha motion not reported active right after start")
	}

	e.TickMotions(200) // past the 100ms duration
	active = invoke(t, e, "alpha_motion_test", variant.Int(1))
	if active.CanBeTrue() {
		t.Fatalf("alpha motion still active after its duration elapsed")
	}
	if e.Prims.Get(1).Alpha != 255 {
		t.Fatalf("alpha = %d, want 255 at motion end", e.Prims.Get(1).Alpha)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	e := newTestEngine(t, map[string]int{
		"prim_init_with_type": 2,
		"set_prim_group_in":   2,
		"set_prim_pos":        3,
		"save_create":         0,
		"save_data":           3,
		"save_write":          1,
	})

	invoke(t, e, "prim_init_with_type", variant.Int(1), variant.Int(int32(prim.TypeSprt)))
	invoke(t, e, "set_prim_group_in", variant.Int(0), variant.Int(1))
	invoke(t, e, "set_prim_pos", variant.Int(1), variant.Float(42), variant.Float(7))

	invoke(t, e, "save_create")
	invoke(t, e, "save_data", variant.String("title"), variant.String("scene"), variant.String("script"))
	ok := invoke(t, e, "save_write", variant.Int(0))
	if !ok.CanBeTrue() {
		t.Fatalf("save_write reported failure")
	}

	path, err := e.slotPath(0)
	if err != nil {
		t.Fatalf("slotPath: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("save slot file missing: %v", err)
	}

	e2 := newTestEngine(t, map[string]int{"save_load": 1})
	e2.Config.SaveDirectory = e.Config.SaveDirectory
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading save file: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("RFSV")) {
		t.Fatalf("save file missing RFSV magic")
	}

	invoke(t, e2, "save_load", variant.Int(0))
	if e2.Prims.Get(1).X != 42 || e2.Prims.Get(1).Y != 7 {
		t.Fatalf("restored pos = (%v,%v), want (42,7)", e2.Prims.Get(1).X, e2.Prims.Get(1).Y)
	}
	if e2.Prims.Get(1).Parent != prim.RootID {
		t.Fatalf("restored parent = %d, want root", e2.Prims.Get(1).Parent)
	}
}
