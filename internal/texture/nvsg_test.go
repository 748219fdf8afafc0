package texture

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"testing"
)

// buildNVSG assembles a minimal HZC1+NVSG buffer for one entry frame
// of raw pixel bytes, mirroring the on-disk layout Decode expects.
func buildNVSG(t *testing.T, kind Kind, width, height uint16, pixels []byte) []byte {
	t.Helper()

	var zbuf bytes.Buffer
	zw := zlib.NewWriter(&zbuf)
	if _, err := zw.Write(pixels); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	var sub bytes.Buffer
	sub.WriteString("NVSG")
	binary.Write(&sub, binary.LittleEndian, uint16(0)) // unknown1
	binary.Write(&sub, binary.LittleEndian, uint16(kind))
	binary.Write(&sub, binary.LittleEndian, width)
	binary.Write(&sub, binary.LittleEndian, height)
	binary.Write(&sub, binary.LittleEndian, uint16(0)) // offset_x
	binary.Write(&sub, binary.LittleEndian, uint16(0)) // offset_y
	binary.Write(&sub, binary.LittleEndian, uint16(0)) // u
	binary.Write(&sub, binary.LittleEndian, uint16(0)) // v
	binary.Write(&sub, binary.LittleEndian, uint32(1)) // entry_count
	binary.Write(&sub, binary.LittleEndian, uint32(0)) // unknown3
	binary.Write(&sub, binary.LittleEndian, uint32(0)) // unknown4
	sub.Write(zbuf.Bytes())

	var out bytes.Buffer
	out.WriteString("hzc1")
	binary.Write(&out, binary.LittleEndian, uint32(len(pixels)))
	binary.Write(&out, binary.LittleEndian, uint32(32)) // header_length: sub-header size, no extra padding
	out.Write(sub.Bytes())
	return out.Bytes()
}

func TestDecodeSingle32BitRoundTrips(t *testing.T) {
	pixels := []byte{
		10, 20, 30, 255,
		40, 50, 60, 128,
	}
	buf := buildNVSG(t, KindSingle32Bit, 2, 1, pixels)

	d, err := Decode(buf, func(k Kind) bool { return k == KindSingle32Bit })
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Width != 2 || d.Height != 1 {
		t.Fatalf("unexpected dims %dx%d", d.Width, d.Height)
	}
	if len(d.Entries) != 1 || len(d.Entries[0]) != len(pixels) {
		t.Fatalf("unexpected entries %+v", d.Entries)
	}

	img, err := d.ToImage(0)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	r, g, b, a := img.At(0, 0).RGBA()
	if r>>8 != 30 || g>>8 != 20 || b>>8 != 10 || a>>8 != 255 {
		t.Fatalf("expected BGR(A)->RGBA channel swap, got r=%d g=%d b=%d a=%d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestDecodeRejectsUnexpectedType(t *testing.T) {
	buf := buildNVSG(t, KindSingle8Bit, 1, 1, []byte{7})
	_, err := Decode(buf, func(k Kind) bool { return k == KindSingle32Bit })
	if err == nil {
		t.Fatalf("expected type mismatch to be rejected")
	}
}

func TestDecodeRejectsBadSignature(t *testing.T) {
	_, err := Decode([]byte("not an hzc1 buffer at all"), nil)
	if err == nil {
		t.Fatalf("expected invalid signature to error")
	}
}

func TestGraphBufferLoadTextureAndColorTone(t *testing.T) {
	pixels := []byte{
		200, 200, 200, 255,
	}
	buf := buildNVSG(t, KindSingle32Bit, 1, 1, pixels)

	g := &GraphBuffer{}
	if err := g.LoadTexture("bg.nvsg", buf); err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if !g.Ready || g.R != 100 || g.G != 100 || g.B != 100 {
		t.Fatalf("expected ready with identity tone, got %+v", g)
	}
	gen := g.Generation

	g.SetColorTone(100, 100, 100)
	if g.Generation != gen {
		t.Fatalf("expected no-op tone not to bump generation")
	}

	g.SetColorTone(50, 100, 100)
	if g.Generation == gen {
		t.Fatalf("expected darkening tone to bump generation")
	}
}

func TestGraphBufferUnloadResetsPlacementButKeepsGeneration(t *testing.T) {
	g := &GraphBuffer{}
	pixels := []byte{1, 2, 3, 255}
	buf := buildNVSG(t, KindSingle32Bit, 1, 1, pixels)
	if err := g.LoadTexture("x.nvsg", buf); err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	g.Unload()
	if g.Ready || g.Path != "" {
		t.Fatalf("expected unload to clear ready/path, got %+v", g)
	}
	if g.Generation == 0 {
		t.Fatalf("expected unload to bump generation")
	}
}

func TestPoolGetIsStable(t *testing.T) {
	p := NewPool()
	p.Get(10).Ready = true
	if !p.Get(10).Ready {
		t.Fatalf("expected slot 10 to retain mutation")
	}
	if p.Get(11).Ready {
		t.Fatalf("expected slot 11 untouched")
	}
}
