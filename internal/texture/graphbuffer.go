package texture

import "image"

// PoolSize matches the data model's 4096-slot graph-buffer pool. Ids
// 0..4062 are general purpose; 4063 is reserved for the movie
// texture; 4064..4095 are reserved for text buffers.
const PoolSize = 4096

const (
	MovieGraphID   = 4063
	TextBufferBase = 4064
)

// LoadKind records how a GraphBuffer was last populated, so save/load
// knows which decode path to replay on restore.
type LoadKind uint8

const (
	LoadKindUnknown LoadKind = iota
	LoadKindTexture
	LoadKindMask
	LoadKindGaijiGlyph
	LoadKindRawRGBA
)

// GraphBuffer is one decoded-texture slot. Image is exposed as a
// standard image.Image (*image.NRGBA for texture/raw-RGBA loads,
// *image.Alpha for mask/gaiji loads) so any Go image consumer in the
// domain stack can use it without a bespoke pixel type.
type GraphBuffer struct {
	Image      image.Image
	R, G, B    uint8
	Ready      bool
	Path       string
	OffsetX    uint16
	OffsetY    uint16
	Width      uint16
	Height     uint16
	U          uint16
	V          uint16
	Generation uint64
	LoadKind   LoadKind
}

func (g *GraphBuffer) markDirty() { g.Generation++ }

// Unload releases decoded state and resets placement metadata.
func (g *GraphBuffer) Unload() {
	*g = GraphBuffer{Generation: g.Generation}
	g.markDirty()
}

func (g *GraphBuffer) loadDecoded(path string, d *Decoded, kind LoadKind) error {
	img, err := d.ToImage(0)
	if err != nil {
		return err
	}
	g.Unload()
	g.Image = img
	g.R, g.G, g.B = 100, 100, 100
	g.Ready = true
	g.OffsetX, g.OffsetY = d.OffsetX, d.OffsetY
	g.Width, g.Height = d.Width, d.Height
	g.U, g.V = d.U, d.V
	g.Path = path
	g.LoadKind = kind
	g.markDirty()
	return nil
}

// LoadTexture decodes a standard 24/32-bit single-entry NVSG texture.
func (g *GraphBuffer) LoadTexture(path string, buf []byte) error {
	d, err := Decode(buf, func(k Kind) bool { return k == KindSingle24Bit || k == KindSingle32Bit })
	if err != nil {
		return err
	}
	return g.loadDecoded(path, d, LoadKindTexture)
}

// LoadMask decodes an 8-bit alpha mask NVSG texture.
func (g *GraphBuffer) LoadMask(path string, buf []byte) error {
	d, err := Decode(buf, func(k Kind) bool { return k == KindSingle8Bit })
	if err != nil {
		return err
	}
	return g.loadDecoded(path, d, LoadKindMask)
}

// LoadGaijiGlyph decodes a 1-bit gaiji glyph NVSG texture.
func (g *GraphBuffer) LoadGaijiGlyph(path string, buf []byte) error {
	d, err := Decode(buf, func(k Kind) bool { return k == KindSingle1Bit })
	if err != nil {
		return err
	}
	return g.loadDecoded(path, d, LoadKindGaijiGlyph)
}

// LoadRawRGBA installs a caller-decoded RGBA8 pixel buffer directly,
// used for movie frames and dynamically rendered text buffers.
func (g *GraphBuffer) LoadRawRGBA(pix []byte, width, height int) error {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pix)
	g.Unload()
	g.Image = img
	g.Ready = true
	g.Width, g.Height = uint16(width), uint16(height)
	g.LoadKind = LoadKindRawRGBA
	g.markDirty()
	return nil
}

// SetColorTone rescales the decoded image's RGB channels. A no-op if
// the buffer has no ready pixel data, matching the engine's silent
// ignore of color-tone requests on empty graphs.
func (g *GraphBuffer) SetColorTone(r, g2, b int32) {
	if !g.Ready {
		return
	}
	nrgba, ok := g.Image.(*image.NRGBA)
	if !ok {
		return
	}
	if r == 100 && g2 == 100 && b == 100 {
		g.R, g.G, g.B = 100, 100, 100
		return
	}
	ApplyColorTone(nrgba, r, g2, b)
	g.R, g.G, g.B = uint8(clamp(r, 0, 200)), uint8(clamp(g2, 0, 200)), uint8(clamp(b, 0, 200))
	g.markDirty()
}

// Pool is the fixed-size collection of graph buffers the engine's
// syscalls address by id.
type Pool struct {
	buffers [PoolSize]GraphBuffer
}

func NewPool() *Pool { return &Pool{} }

func (p *Pool) Get(id int) *GraphBuffer { return &p.buffers[id] }
