// Package save implements the engine's save-file envelope: a little
// endian payload of date fields, length-prefixed text, an optional
// state chunk, and an RGBA thumbnail, wrapped in a magic+version+gzip
// container mirroring the teacher's own snapshot format.
package save

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rfvp-go/vnengine/internal/verr"
)

const (
	magic            = "RFSV"
	containerVersion = uint32(1)
)

// Date is the 7-field signed date stamp recorded at save time.
type Date struct {
	Year, Month, Day     int32
	Hour, Minute, Second int32
	Weekday              int32
}

// StateChunk carries the cross-subsystem snapshot stored with a save:
// motion engine state (snow RNG seeds), audio state, the prim scene
// graph, the non-volatile global bank, graph-buffer load metadata, and
// a list of table ids. The engine's capture fills the prim, global,
// graph-buffer and audio volume/playing parts; it leaves Motion, the
// audio track/position and TableIDs empty, and its restore does not
// read them.
type StateChunk struct {
	Motion       MotionSnapshot
	Audio        AudioSnapshot
	Prims        []PrimSnapshot
	Globals      []GlobalSnapshot
	GraphBuffers []GraphBufferSnapshot
	// TableIDs is a list of table ids carried by the format.
	TableIDs []uint64
}

// PrimSnapshot mirrors the prim package's Prim fields in a package-
// neutral shape, so save stays decoupled from the scene-graph package
// and the engine layer does the field-by-field conversion on both
// capture and restore.
type PrimSnapshot struct {
	Type                                     uint8
	Draw, Blend, Paused                      bool
	Alpha                                    uint8
	Parent, PrevSibling, NextSibling          int32
	FirstChild, LastChild                     int32
	Z                                         int32
	X, Y, W, H, U, V, OpX, OpY, Rotation      float32
	ScaleX, ScaleY                            int32
	TextureID, TileID, TextIndex              int32
	Attr                                      uint32
}

// GlobalSnapshot is one non-volatile global slot's value, tagged by a
// small kind byte rather than reusing the variant package's Kind so
// save has no import dependency on it; Kind 0 nil, 1 int, 2 float, 3
// string, 4 table, 5 true. A table is captured by TableID only; its
// contents are not persisted, and the engine restores it as a new
// empty table with a fresh id rather than the recorded one.
type GlobalSnapshot struct {
	Kind    uint8
	I       int32
	F       float32
	S       string
	TableID uint64
}

// GraphBufferSnapshot is one graph buffer's placement/load metadata
// (not its decoded pixels, which are reloaded from Path on restore).
type GraphBufferSnapshot struct {
	LoadKind                          uint8
	Path                               string
	R, G, B                            uint8
	OffsetX, OffsetY, Width, Height    uint16
	U, V                               uint16
}

// MotionSnapshot is intentionally narrow: the per-container snow RNG
// seeds, which is the only motion state that is not purely a function
// of prim fields already captured by the scene-graph snapshot.
type MotionSnapshot struct {
	SnowSeeds [][2]uint64
}

// AudioSnapshot records enough of the audio subsystem to resume
// dissolve-in/out and playback position across a load.
type AudioSnapshot struct {
	MasterVolume float32
	Playing      bool
	TrackPath    string
	PositionMs   int64
}

// Payload is the decoded contents of one save slot.
type Payload struct {
	Date         Date
	Title        string
	SceneTitle   string
	ScriptText    string
	HasState      bool
	State         StateChunk
	ThumbnailW    int32
	ThumbnailH    int32
	ThumbnailRGBA []byte
}

// Write serializes p and gzip-compresses it behind the magic+version
// container, matching the teacher's snapshot envelope.
func Write(w io.Writer, p *Payload) error {
	var buf bytes.Buffer

	writeI32 := func(v int32) { binary.Write(&buf, binary.LittleEndian, v) }
	writeString := func(s string) {
		b := []byte(s)
		binary.Write(&buf, binary.LittleEndian, uint32(len(b)))
		buf.Write(b)
	}

	writeI32(p.Date.Year)
	writeI32(p.Date.Month)
	writeI32(p.Date.Day)
	writeI32(p.Date.Hour)
	writeI32(p.Date.Minute)
	writeI32(p.Date.Second)
	writeI32(p.Date.Weekday)

	writeString(p.Title)
	writeString(p.SceneTitle)
	writeString(p.ScriptText)

	if p.HasState {
		buf.WriteByte(1)
		writeStateChunk(&buf, &p.State)
	} else {
		buf.WriteByte(0)
	}

	binary.Write(&buf, binary.LittleEndian, p.ThumbnailW)
	binary.Write(&buf, binary.LittleEndian, p.ThumbnailH)
	binary.Write(&buf, binary.LittleEndian, uint32(len(p.ThumbnailRGBA)))
	buf.Write(p.ThumbnailRGBA)

	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, containerVersion); err != nil {
		return err
	}
	gz := gzip.NewWriter(w)
	if _, err := gz.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: compressing save payload: %v", verr.ErrIO, err)
	}
	return gz.Close()
}

func writeStateChunk(buf *bytes.Buffer, s *StateChunk) {
	binary.Write(buf, binary.LittleEndian, uint32(len(s.Motion.SnowSeeds)))
	for _, seed := range s.Motion.SnowSeeds {
		binary.Write(buf, binary.LittleEndian, seed[0])
		binary.Write(buf, binary.LittleEndian, seed[1])
	}

	binary.Write(buf, binary.LittleEndian, s.Audio.MasterVolume)
	if s.Audio.Playing {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	trackBytes := []byte(s.Audio.TrackPath)
	binary.Write(buf, binary.LittleEndian, uint32(len(trackBytes)))
	buf.Write(trackBytes)
	binary.Write(buf, binary.LittleEndian, s.Audio.PositionMs)

	binary.Write(buf, binary.LittleEndian, uint32(len(s.Prims)))
	for _, pr := range s.Prims {
		buf.WriteByte(pr.Type)
		writeBool(buf, pr.Draw)
		writeBool(buf, pr.Blend)
		writeBool(buf, pr.Paused)
		buf.WriteByte(pr.Alpha)
		binary.Write(buf, binary.LittleEndian, pr.Parent)
		binary.Write(buf, binary.LittleEndian, pr.PrevSibling)
		binary.Write(buf, binary.LittleEndian, pr.NextSibling)
		binary.Write(buf, binary.LittleEndian, pr.FirstChild)
		binary.Write(buf, binary.LittleEndian, pr.LastChild)
		binary.Write(buf, binary.LittleEndian, pr.Z)
		binary.Write(buf, binary.LittleEndian, pr.X)
		binary.Write(buf, binary.LittleEndian, pr.Y)
		binary.Write(buf, binary.LittleEndian, pr.W)
		binary.Write(buf, binary.LittleEndian, pr.H)
		binary.Write(buf, binary.LittleEndian, pr.U)
		binary.Write(buf, binary.LittleEndian, pr.V)
		binary.Write(buf, binary.LittleEndian, pr.OpX)
		binary.Write(buf, binary.LittleEndian, pr.OpY)
		binary.Write(buf, binary.LittleEndian, pr.Rotation)
		binary.Write(buf, binary.LittleEndian, pr.ScaleX)
		binary.Write(buf, binary.LittleEndian, pr.ScaleY)
		binary.Write(buf, binary.LittleEndian, pr.TextureID)
		binary.Write(buf, binary.LittleEndian, pr.TileID)
		binary.Write(buf, binary.LittleEndian, pr.TextIndex)
		binary.Write(buf, binary.LittleEndian, pr.Attr)
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(s.Globals)))
	for _, g := range s.Globals {
		buf.WriteByte(g.Kind)
		binary.Write(buf, binary.LittleEndian, g.I)
		binary.Write(buf, binary.LittleEndian, g.F)
		writeLenString(buf, g.S)
		binary.Write(buf, binary.LittleEndian, g.TableID)
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(s.GraphBuffers)))
	for _, gb := range s.GraphBuffers {
		buf.WriteByte(gb.LoadKind)
		writeLenString(buf, gb.Path)
		buf.WriteByte(gb.R)
		buf.WriteByte(gb.G)
		buf.WriteByte(gb.B)
		binary.Write(buf, binary.LittleEndian, gb.OffsetX)
		binary.Write(buf, binary.LittleEndian, gb.OffsetY)
		binary.Write(buf, binary.LittleEndian, gb.Width)
		binary.Write(buf, binary.LittleEndian, gb.Height)
		binary.Write(buf, binary.LittleEndian, gb.U)
		binary.Write(buf, binary.LittleEndian, gb.V)
	}

	binary.Write(buf, binary.LittleEndian, uint32(len(s.TableIDs)))
	for _, id := range s.TableIDs {
		binary.Write(buf, binary.LittleEndian, id)
	}
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func writeLenString(buf *bytes.Buffer, s string) {
	b := []byte(s)
	binary.Write(buf, binary.LittleEndian, uint32(len(b)))
	buf.Write(b)
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	return b == 1, err
}

func readLenString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// Load decompresses and decodes a save payload written by Write.
func Load(r io.Reader) (*Payload, error) {
	magicBuf := make([]byte, 4)
	if _, err := io.ReadFull(r, magicBuf); err != nil {
		return nil, fmt.Errorf("%w: reading save magic: %v", verr.ErrInvalidMedia, err)
	}
	if string(magicBuf) != magic {
		return nil, fmt.Errorf("%w: bad save magic %q", verr.ErrInvalidMedia, magicBuf)
	}
	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: reading save version: %v", verr.ErrInvalidMedia, err)
	}
	if version != containerVersion {
		return nil, fmt.Errorf("%w: unsupported save version %d", verr.ErrUnsupported, version)
	}

	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: opening save gzip stream: %v", verr.ErrDecodeFailed, err)
	}
	defer gz.Close()
	raw, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("%w: decompressing save payload: %v", verr.ErrDecodeFailed, err)
	}

	return decodePayload(bytes.NewReader(raw))
}

func decodePayload(r *bytes.Reader) (*Payload, error) {
	p := &Payload{}

	readI32 := func(dst *int32) error { return binary.Read(r, binary.LittleEndian, dst) }
	readString := func() (string, error) {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return "", err
		}
		b := make([]byte, n)
		if _, err := io.ReadFull(r, b); err != nil {
			return "", err
		}
		return string(b), nil
	}

	fields := []*int32{
		&p.Date.Year, &p.Date.Month, &p.Date.Day,
		&p.Date.Hour, &p.Date.Minute, &p.Date.Second, &p.Date.Weekday,
	}
	for _, f := range fields {
		if err := readI32(f); err != nil {
			return nil, fmt.Errorf("%w: reading save date fields: %v", verr.ErrInvalidMedia, err)
		}
	}

	var err error
	if p.Title, err = readString(); err != nil {
		return nil, fmt.Errorf("%w: reading save title: %v", verr.ErrInvalidMedia, err)
	}
	if p.SceneTitle, err = readString(); err != nil {
		return nil, fmt.Errorf("%w: reading save scene title: %v", verr.ErrInvalidMedia, err)
	}
	if p.ScriptText, err = readString(); err != nil {
		return nil, fmt.Errorf("%w: reading save script text: %v", verr.ErrInvalidMedia, err)
	}

	hasState, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading save state flag: %v", verr.ErrInvalidMedia, err)
	}
	if hasState == 1 {
		p.HasState = true
		if p.State, err = readStateChunk(r); err != nil {
			return nil, err
		}
	}

	if err := readI32(&p.ThumbnailW); err != nil {
		return nil, fmt.Errorf("%w: reading thumbnail width: %v", verr.ErrInvalidMedia, err)
	}
	if err := readI32(&p.ThumbnailH); err != nil {
		return nil, fmt.Errorf("%w: reading thumbnail height: %v", verr.ErrInvalidMedia, err)
	}
	var thumbLen uint32
	if err := binary.Read(r, binary.LittleEndian, &thumbLen); err != nil {
		return nil, fmt.Errorf("%w: reading thumbnail length: %v", verr.ErrInvalidMedia, err)
	}
	p.ThumbnailRGBA = make([]byte, thumbLen)
	if _, err := io.ReadFull(r, p.ThumbnailRGBA); err != nil {
		return nil, fmt.Errorf("%w: reading thumbnail pixels: %v", verr.ErrInvalidMedia, err)
	}

	return p, nil
}

func readStateChunk(r *bytes.Reader) (StateChunk, error) {
	var s StateChunk

	var seedCount uint32
	if err := binary.Read(r, binary.LittleEndian, &seedCount); err != nil {
		return s, fmt.Errorf("%w: reading snow seed count: %v", verr.ErrInvalidMedia, err)
	}
	s.Motion.SnowSeeds = make([][2]uint64, seedCount)
	for i := range s.Motion.SnowSeeds {
		if err := binary.Read(r, binary.LittleEndian, &s.Motion.SnowSeeds[i][0]); err != nil {
			return s, fmt.Errorf("%w: reading snow seed: %v", verr.ErrInvalidMedia, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &s.Motion.SnowSeeds[i][1]); err != nil {
			return s, fmt.Errorf("%w: reading snow seed: %v", verr.ErrInvalidMedia, err)
		}
	}

	if err := binary.Read(r, binary.LittleEndian, &s.Audio.MasterVolume); err != nil {
		return s, fmt.Errorf("%w: reading audio volume: %v", verr.ErrInvalidMedia, err)
	}
	playing, err := r.ReadByte()
	if err != nil {
		return s, fmt.Errorf("%w: reading audio playing flag: %v", verr.ErrInvalidMedia, err)
	}
	s.Audio.Playing = playing == 1

	var trackLen uint32
	if err := binary.Read(r, binary.LittleEndian, &trackLen); err != nil {
		return s, fmt.Errorf("%w: reading audio track length: %v", verr.ErrInvalidMedia, err)
	}
	trackBytes := make([]byte, trackLen)
	if _, err := io.ReadFull(r, trackBytes); err != nil {
		return s, fmt.Errorf("%w: reading audio track path: %v", verr.ErrInvalidMedia, err)
	}
	s.Audio.TrackPath = string(trackBytes)

	if err := binary.Read(r, binary.LittleEndian, &s.Audio.PositionMs); err != nil {
		return s, fmt.Errorf("%w: reading audio position: %v", verr.ErrInvalidMedia, err)
	}

	var primCount uint32
	if err := binary.Read(r, binary.LittleEndian, &primCount); err != nil {
		return s, fmt.Errorf("%w: reading prim count: %v", verr.ErrInvalidMedia, err)
	}
	s.Prims = make([]PrimSnapshot, primCount)
	for i := range s.Prims {
		pr := &s.Prims[i]
		var err error
		if pr.Type, err = r.ReadByte(); err != nil {
			return s, fmt.Errorf("%w: reading prim type: %v", verr.ErrInvalidMedia, err)
		}
		if pr.Draw, err = readBool(r); err != nil {
			return s, fmt.Errorf("%w: reading prim draw flag: %v", verr.ErrInvalidMedia, err)
		}
		if pr.Blend, err = readBool(r); err != nil {
			return s, fmt.Errorf("%w: reading prim blend flag: %v", verr.ErrInvalidMedia, err)
		}
		if pr.Paused, err = readBool(r); err != nil {
			return s, fmt.Errorf("%w: reading prim paused flag: %v", verr.ErrInvalidMedia, err)
		}
		if pr.Alpha, err = r.ReadByte(); err != nil {
			return s, fmt.Errorf("%w: reading prim alpha: %v", verr.ErrInvalidMedia, err)
		}
		fields := []any{
			&pr.Parent, &pr.PrevSibling, &pr.NextSibling, &pr.FirstChild, &pr.LastChild,
			&pr.Z, &pr.X, &pr.Y, &pr.W, &pr.H, &pr.U, &pr.V, &pr.OpX, &pr.OpY, &pr.Rotation,
			&pr.ScaleX, &pr.ScaleY, &pr.TextureID, &pr.TileID, &pr.TextIndex, &pr.Attr,
		}
		for _, f := range fields {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return s, fmt.Errorf("%w: reading prim fields: %v", verr.ErrInvalidMedia, err)
			}
		}
	}

	var globalCount uint32
	if err := binary.Read(r, binary.LittleEndian, &globalCount); err != nil {
		return s, fmt.Errorf("%w: reading global count: %v", verr.ErrInvalidMedia, err)
	}
	s.Globals = make([]GlobalSnapshot, globalCount)
	for i := range s.Globals {
		g := &s.Globals[i]
		var err error
		if g.Kind, err = r.ReadByte(); err != nil {
			return s, fmt.Errorf("%w: reading global kind: %v", verr.ErrInvalidMedia, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &g.I); err != nil {
			return s, fmt.Errorf("%w: reading global int: %v", verr.ErrInvalidMedia, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &g.F); err != nil {
			return s, fmt.Errorf("%w: reading global float: %v", verr.ErrInvalidMedia, err)
		}
		if g.S, err = readLenString(r); err != nil {
			return s, fmt.Errorf("%w: reading global string: %v", verr.ErrInvalidMedia, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &g.TableID); err != nil {
			return s, fmt.Errorf("%w: reading global table id: %v", verr.ErrInvalidMedia, err)
		}
	}

	var graphCount uint32
	if err := binary.Read(r, binary.LittleEndian, &graphCount); err != nil {
		return s, fmt.Errorf("%w: reading graph buffer count: %v", verr.ErrInvalidMedia, err)
	}
	s.GraphBuffers = make([]GraphBufferSnapshot, graphCount)
	for i := range s.GraphBuffers {
		gb := &s.GraphBuffers[i]
		var err error
		if gb.LoadKind, err = r.ReadByte(); err != nil {
			return s, fmt.Errorf("%w: reading graph buffer kind: %v", verr.ErrInvalidMedia, err)
		}
		if gb.Path, err = readLenString(r); err != nil {
			return s, fmt.Errorf("%w: reading graph buffer path: %v", verr.ErrInvalidMedia, err)
		}
		if gb.R, err = r.ReadByte(); err != nil {
			return s, fmt.Errorf("%w: reading graph buffer color: %v", verr.ErrInvalidMedia, err)
		}
		if gb.G, err = r.ReadByte(); err != nil {
			return s, fmt.Errorf("%w: reading graph buffer color: %v", verr.ErrInvalidMedia, err)
		}
		if gb.B, err = r.ReadByte(); err != nil {
			return s, fmt.Errorf("%w: reading graph buffer color: %v", verr.ErrInvalidMedia, err)
		}
		fields := []any{&gb.OffsetX, &gb.OffsetY, &gb.Width, &gb.Height, &gb.U, &gb.V}
		for _, f := range fields {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return s, fmt.Errorf("%w: reading graph buffer fields: %v", verr.ErrInvalidMedia, err)
			}
		}
	}

	var idCount uint32
	if err := binary.Read(r, binary.LittleEndian, &idCount); err != nil {
		return s, fmt.Errorf("%w: reading table id count: %v", verr.ErrInvalidMedia, err)
	}
	s.TableIDs = make([]uint64, idCount)
	for i := range s.TableIDs {
		if err := binary.Read(r, binary.LittleEndian, &s.TableIDs[i]); err != nil {
			return s, fmt.Errorf("%w: reading table id: %v", verr.ErrInvalidMedia, err)
		}
	}

	return s, nil
}
