package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rfvp-go/vnengine/internal/elog"
	"github.com/rfvp-go/vnengine/internal/prim"
	"github.com/rfvp-go/vnengine/internal/save"
	"github.com/rfvp-go/vnengine/internal/syscall"
	"github.com/rfvp-go/vnengine/internal/texture"
	"github.com/rfvp-go/vnengine/internal/threadreq"
	"github.com/rfvp-go/vnengine/internal/variant"
)

// graphBufferDecodeConcurrency bounds how many graph buffers save_load
// re-decodes from disk at once; each buffer's image decode is
// independent work, but an unbounded fan-out over 4096 slots would
// open that many files at once.
const graphBufferDecodeConcurrency = 8

// loadDissolveDurationMs is the fixed engine-internal dissolve-in/out
// window a successful load triggers around the post-load rebuild,
// matching the original's fixed post-load transition duration.
const loadDissolveDurationMs = 600

// bindSaveSyscalls attaches the four save/load entry points the
// external interfaces list names: save_create opens a pending payload,
// save_data fills its text fields, save_write captures live state and
// commits it to a slot file, and save_load reverses the process.
func (e *Engine) bindSaveSyscalls() {
	e.Registry.Bind("save_create", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		e.pending = &save.Payload{}
		return variant.Nil(), nil
	})

	e.Registry.Bind("save_data", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		if e.pending == nil {
			e.pending = &save.Payload{}
		}
		e.pending.Title = argString(a[0])
		e.pending.SceneTitle = argString(a[1])
		e.pending.ScriptText = argString(a[2])
		return variant.Nil(), nil
	})

	e.Registry.Bind("save_write", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		slot := int(argInt(a[0]))
		if e.pending == nil {
			e.pending = &save.Payload{}
		}
		e.pending.Date = stampDate(time.Now())
		e.pending.HasState = true
		e.pending.State = e.captureState()

		path, err := e.slotPath(slot)
		if err != nil {
			return variant.Nil(), err
		}
		f, err := os.Create(path)
		if err != nil {
			return variant.Nil(), fmt.Errorf("save_write: creating slot %d: %w", slot, err)
		}
		defer f.Close()
		if err := save.Write(f, e.pending); err != nil {
			return variant.Nil(), fmt.Errorf("save_write: slot %d: %w", slot, err)
		}
		return variant.True(), nil
	})

	e.Registry.Bind("save_load", func(vm syscall.VM, a []variant.Variant) (variant.Variant, error) {
		slot := int(argInt(a[0]))
		path, err := e.slotPath(slot)
		if err != nil {
			return variant.Nil(), err
		}
		f, err := os.Open(path)
		if err != nil {
			return variant.Nil(), fmt.Errorf("save_load: opening slot %d: %w", slot, err)
		}
		defer f.Close()
		p, err := save.Load(f)
		if err != nil {
			return variant.Nil(), fmt.Errorf("save_load: slot %d: %w", slot, err)
		}
		e.pending = p
		if p.HasState {
			e.restoreState(p.State)
		}

		targetVolume := float32(1)
		if e.Audio != nil {
			targetVolume = e.Audio.Volume()
		}
		e.StartDissolve(loadDissolveDurationMs, targetVolume)
		vm.Post(threadreq.Request{Kind: threadreq.KindNext, ContextID: vm.ContextID()})
		vm.SetShouldBreak()
		return variant.True(), nil
	})
}

func (e *Engine) slotPath(slot int) (string, error) {
	dir := e.Config.SaveDirectory
	if dir == "" {
		return "", fmt.Errorf("save slot %d: no save directory configured", slot)
	}
	return filepath.Join(dir, fmt.Sprintf("save%03d.sav", slot)), nil
}

func stampDate(t time.Time) save.Date {
	return save.Date{
		Year: int32(t.Year()), Month: int32(t.Month()), Day: int32(t.Day()),
		Hour: int32(t.Hour()), Minute: int32(t.Minute()), Second: int32(t.Second()),
		Weekday: int32(t.Weekday()),
	}
}

// captureState snapshots the prim graph, non-volatile globals,
// graph-buffer load metadata, and the audio master volume and playing
// flag. Motion engine state (running motions, snow RNG seeds), table
// ids, and the audio track and position are not captured, so a load
// does not restore them.
func (e *Engine) captureState() save.StateChunk {
	var s save.StateChunk

	s.Prims = make([]save.PrimSnapshot, prim.PoolSize)
	for i := 0; i < prim.PoolSize; i++ {
		p := e.Prims.Get(i)
		s.Prims[i] = save.PrimSnapshot{
			Type: uint8(p.Type), Draw: p.Draw, Blend: p.Blend, Paused: p.Paused,
			Alpha:       p.Alpha,
			Parent:      int32(p.Parent),
			PrevSibling: int32(p.PrevSibling),
			NextSibling: int32(p.NextSibling),
			FirstChild:  int32(p.FirstChild),
			LastChild:   int32(p.LastChild),
			Z:           p.Z,
			X:           p.X, Y: p.Y, W: p.W, H: p.H, U: p.U, V: p.V,
			OpX: p.OpX, OpY: p.OpY, Rotation: p.Rotation,
			ScaleX: p.ScaleX, ScaleY: p.ScaleY,
			TextureID: int32(p.TextureID), TileID: int32(p.TileID), TextIndex: int32(p.TextIndex),
			Attr: p.Attr,
		}
	}

	for _, v := range e.Globals.NonVolatileSnapshot() {
		s.Globals = append(s.Globals, toGlobalSnapshot(v))
	}

	s.GraphBuffers = make([]save.GraphBufferSnapshot, texture.PoolSize)
	for i := 0; i < texture.PoolSize; i++ {
		g := e.Textures.Get(i)
		s.GraphBuffers[i] = save.GraphBufferSnapshot{
			LoadKind: uint8(g.LoadKind), Path: g.Path,
			R: g.R, G: g.G, B: g.B,
			OffsetX: g.OffsetX, OffsetY: g.OffsetY, Width: g.Width, Height: g.Height,
			U: g.U, V: g.V,
		}
	}

	if e.Audio != nil {
		s.Audio = save.AudioSnapshot{MasterVolume: e.Audio.Volume(), Playing: e.Audio.IsStarted()}
	}

	return s
}

// restoreState reverses captureState: the prim pool and non-volatile
// globals are overwritten wholesale, and every graph buffer whose load
// kind implies a reloadable file is re-decoded from Path (raw-RGBA
// buffers, which have no backing path, are left unloaded for the video
// pipeline to repopulate).
func (e *Engine) restoreState(s save.StateChunk) {
	for i := 0; i < prim.PoolSize && i < len(s.Prims); i++ {
		ps := s.Prims[i]
		*e.Prims.Get(i) = prim.Prim{
			Type: prim.Type(ps.Type), Draw: ps.Draw, Blend: ps.Blend, Paused: ps.Paused,
			Alpha:       ps.Alpha,
			Parent:      int(ps.Parent),
			PrevSibling: int(ps.PrevSibling),
			NextSibling: int(ps.NextSibling),
			FirstChild:  int(ps.FirstChild),
			LastChild:   int(ps.LastChild),
			Z:           ps.Z,
			X:           ps.X, Y: ps.Y, W: ps.W, H: ps.H, U: ps.U, V: ps.V,
			OpX: ps.OpX, OpY: ps.OpY, Rotation: ps.Rotation,
			ScaleX: ps.ScaleX, ScaleY: ps.ScaleY,
			TextureID: int(ps.TextureID), TileID: int(ps.TileID), TextIndex: int(ps.TextIndex),
			Attr: ps.Attr,
		}
	}

	bank := make([]variant.Variant, len(s.Globals))
	for i, gs := range s.Globals {
		bank[i] = fromGlobalSnapshot(gs)
	}
	e.Globals.RestoreNonVolatile(bank)
	e.Globals.ResetVolatile()

	var eg errgroup.Group
	eg.SetLimit(graphBufferDecodeConcurrency)
	for i := 0; i < texture.PoolSize && i < len(s.GraphBuffers); i++ {
		i, gb := i, s.GraphBuffers[i]
		e.Textures.Get(i).Unload()
		if gb.Path == "" {
			continue
		}
		eg.Go(func() error {
			buf, err := os.ReadFile(gb.Path)
			if err != nil {
				elog.Warnf("save_load: re-decoding %s: %v", gb.Path, err)
				return nil
			}
			tex := e.Textures.Get(i)
			switch texture.LoadKind(gb.LoadKind) {
			case texture.LoadKindTexture:
				_ = tex.LoadTexture(gb.Path, buf)
			case texture.LoadKindMask:
				_ = tex.LoadMask(gb.Path, buf)
			case texture.LoadKindGaijiGlyph:
				_ = tex.LoadGaijiGlyph(gb.Path, buf)
			}
			return nil
		})
	}
	eg.Wait()

	if e.Audio != nil {
		e.Audio.Dissolve(s.Audio.MasterVolume, 0)
	}
}

func toGlobalSnapshot(v variant.Variant) save.GlobalSnapshot {
	switch v.Kind() {
	case variant.KindInt:
		i, _ := v.AsInt()
		return save.GlobalSnapshot{Kind: 1, I: i}
	case variant.KindFloat:
		f, _ := v.AsFloat()
		return save.GlobalSnapshot{Kind: 2, F: f}
	case variant.KindString, variant.KindConstString:
		str, _ := v.AsString()
		return save.GlobalSnapshot{Kind: 3, S: str}
	case variant.KindTable:
		t, _ := v.AsTable()
		return save.GlobalSnapshot{Kind: 4, TableID: t.ID()}
	case variant.KindTrue:
		return save.GlobalSnapshot{Kind: 5}
	default:
		return save.GlobalSnapshot{Kind: 0}
	}
}

func fromGlobalSnapshot(g save.GlobalSnapshot) variant.Variant {
	switch g.Kind {
	case 1:
		return variant.Int(g.I)
	case 2:
		return variant.Float(g.F)
	case 3:
		return variant.String(g.S)
	case 4:
		return variant.NewTableVariant()
	case 5:
		return variant.True()
	default:
		return variant.Nil()
	}
}
