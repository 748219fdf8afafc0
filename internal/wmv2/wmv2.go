// Package wmv2 decodes the engine's WMV2 (Windows Media Video 8)
// video stream into planar YUV420 frames.
//
// The picture-header offset-locking and scoring strategy in Decode is
// ported from the teacher corpus's AsfWmv2Decoder/Wmv2Decoder
// orchestration. The corpus does not carry the codec's macroblock/DCT
// internals (no decoder.rs/wmv2.rs was retrieved for this pack), so
// the macroblock stage here implements a scoped DC-coefficient decode
// over the VLC/bitstream primitives ported from the rest of the pack,
// rather than a bit-exact port of the full inter/intra transform
// pipeline. See DESIGN.md.
package wmv2

import (
	"fmt"

	"github.com/rfvp-go/vnengine/internal/bitstream"
	"github.com/rfvp-go/vnengine/internal/verr"
	"github.com/rfvp-go/vnengine/internal/vlc"
)

// FrameType distinguishes an intra-coded picture from an inter-coded
// (predicted) one.
type FrameType int

const (
	FrameI FrameType = iota
	FrameP
)

// FrameHeader is one candidate picture header found at some byte
// offset within a payload.
type FrameHeader struct {
	FrameType    FrameType
	FrameSkipped bool
}

// Params freezes the decode-time geometry for a stream: WMV2 carries
// no per-frame resolution, so these are fixed once at construction
// from the ASF stream's type-specific data.
type Params struct {
	Width, Height   uint32
	WidthMB, HeightMB uint32
}

func NewParams(width, height uint32) Params {
	return Params{
		Width:     width,
		Height:    height,
		WidthMB:   (width + 15) / 16,
		HeightMB:  (height + 15) / 16,
	}
}

// YUVFrame is a planar YUV420 frame buffer sized to a Params' frozen
// geometry.
type YUVFrame struct {
	Width, Height int
	Y, U, V       []byte
	YStride       int
	CStride       int
}

func NewYUVFrame(width, height int) *YUVFrame {
	cw, ch := (width+1)/2, (height+1)/2
	return &YUVFrame{
		Width: width, Height: height,
		Y: make([]byte, width*height),
		U: make([]byte, cw*ch),
		V: make([]byte, cw*ch),
		YStride: width, CStride: cw,
	}
}

func (f *YUVFrame) clone() *YUVFrame {
	c := &YUVFrame{Width: f.Width, Height: f.Height, YStride: f.YStride, CStride: f.CStride}
	c.Y = append([]byte(nil), f.Y...)
	c.U = append([]byte(nil), f.U...)
	c.V = append([]byte(nil), f.V...)
	return c
}

// dcTable is a short canonical Huffman table for the DC-residual
// symbols this scoped decoder reads: a small escape-coded range
// sufficient to exercise the VLC table walker end to end.
var dcTable *vlc.Table

func init() {
	lens := []int8{2, 2, 3, 4, 5, 6, 7, 7}
	t, err := vlc.InitFromLengths(7, lens, nil, -4, 0)
	if err != nil {
		panic(fmt.Sprintf("wmv2: building DC table: %v", err))
	}
	dcTable = t
}

// macroblockDecoder walks one payload's bitstream and fills a YUVFrame
// with the scoped DC-only reconstruction described in the package doc.
type macroblockDecoder struct {
	widthMB, heightMB uint32
}

func newMacroblockDecoder(p Params) *macroblockDecoder {
	return &macroblockDecoder{widthMB: p.WidthMB, heightMB: p.HeightMB}
}

// parseCandidates returns plausible picture headers starting at the
// beginning of buf. WMV2's real picture header is a multi-field
// bit-packed structure (frame coding type, quantizer, loop-filter
// flags, ...); lacking that layout in the corpus, this reads a single
// leading bit as an intra/inter flag, which is enough to drive the
// locked-offset scoring loop in Decoder.DecodeFrame the way the
// teacher's decode_frame does.
func (m *macroblockDecoder) parseCandidates(buf []byte) []FrameHeader {
	if len(buf) == 0 {
		return nil
	}
	br := bitstream.NewReader(buf)
	bit, err := br.GetBits(1)
	if err != nil {
		return nil
	}
	ft := FrameP
	if bit == 0 {
		ft = FrameI
	}
	return []FrameHeader{{FrameType: ft, FrameSkipped: len(buf) < 2}}
}

// probePayload scores how plausible buf is as a macroblock stream for
// hdr by attempting a dry-run DC decode of every macroblock and
// counting how many VLC reads stayed in range.
func (m *macroblockDecoder) probePayload(buf []byte, hdr FrameHeader) int {
	br := bitstream.NewReader(buf)
	br.SkipBits(1)
	score := 0
	total := int(m.widthMB * m.heightMB)
	for i := 0; i < total && br.BitsLeft() >= 7; i++ {
		if _, err := vlc.GetVLC2(br, dcTable, 7, 2); err != nil {
			break
		}
		score++
	}
	return score
}

// decodeFrame performs the scoped DC-only reconstruction: each
// macroblock's luma/chroma blocks are painted as a flat value derived
// from its decoded DC coefficient, which exercises the full
// bitstream->VLC->pixel pipeline without claiming bit-exact fidelity
// to the real WMV2 transform/motion-compensation stage.
func (m *macroblockDecoder) decodeFrame(buf []byte, hdr FrameHeader, p Params, cur *YUVFrame) error {
	br := bitstream.NewReader(buf)
	br.SkipBits(1)

	for mbY := uint32(0); mbY < m.heightMB; mbY++ {
		for mbX := uint32(0); mbX < m.widthMB; mbX++ {
			dc := int32(128)
			if br.BitsLeft() >= 7 {
				if sym, err := vlc.GetVLC2(br, dcTable, 7, 2); err == nil {
					dc = clampByte(128 + sym*4)
				}
			}
			fillMacroblockLuma(cur, int(mbX), int(mbY), byte(dc))
			fillMacroblockChroma(cur, int(mbX), int(mbY), byte(dc))
		}
	}
	return nil
}

func clampByte(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func fillMacroblockLuma(f *YUVFrame, mbX, mbY int, v byte) {
	for y := 0; y < 16; y++ {
		py := mbY*16 + y
		if py >= f.Height {
			break
		}
		for x := 0; x < 16; x++ {
			px := mbX*16 + x
			if px >= f.Width {
				break
			}
			f.Y[py*f.YStride+px] = v
		}
	}
}

func fillMacroblockChroma(f *YUVFrame, mbX, mbY int, v byte) {
	cw, ch := (f.Width+1)/2, (f.Height+1)/2
	for y := 0; y < 8; y++ {
		py := mbY*8 + y
		if py >= ch {
			break
		}
		for x := 0; x < 8; x++ {
			px := mbX*8 + x
			if px >= cw {
				break
			}
			f.U[py*f.CStride+px] = v
			f.V[py*f.CStride+px] = v
		}
	}
}

// Decoder owns one WMV2 stream's frozen geometry and reconstructed
// frame buffer, and implements the offset-locking frame sync the
// teacher's Wmv2Decoder::decode_frame uses.
type Decoder struct {
	params      Params
	mb          *macroblockDecoder
	cur         *YUVFrame
	lockedOff   int
	haveLocked  bool
}

// NewDecoder creates a decoder for a fixed resolution. extradata is
// the WMV2 ext header carried in the ASF stream's type-specific data;
// this scoped decoder does not currently read any fields from it.
func NewDecoder(width, height uint32, extradata []byte) *Decoder {
	p := NewParams(width, height)
	return &Decoder{
		params: p,
		mb:     newMacroblockDecoder(p),
		cur:    NewYUVFrame(int(width), int(height)),
	}
}

func (d *Decoder) Width() uint32  { return d.params.Width }
func (d *Decoder) Height() uint32 { return d.params.Height }

// CurrentFrame borrows the internal frame buffer; valid until the
// next successful DecodeFrame call.
func (d *Decoder) CurrentFrame() *YUVFrame { return d.cur }

// DecodeFrame decodes one assembled WMV2 frame payload, probing the
// previously locked header offset first and falling back to offsets
// 0..16, exactly mirroring the teacher's scoring strategy: a skipped
// frame scores 1, an ASF-marked keyframe scores 2 (requiring an I
// picture), anything else scores by how far probePayload gets through
// the macroblock stream, and the locked offset gets a +64 bonus once
// established.
func (d *Decoder) DecodeFrame(payload []byte, isKeyFrame bool) (*YUVFrame, error) {
	if len(payload) == 0 {
		return nil, nil
	}

	bestScore := -1
	bestOff := 0
	var bestHdr *FrameHeader

	offs := make([]int, 0, 18)
	if d.haveLocked {
		offs = append(offs, d.lockedOff)
	}
	for o := 0; o <= 16; o++ {
		if d.haveLocked && o == d.lockedOff {
			continue
		}
		offs = append(offs, o)
	}

	for _, off := range offs {
		if off > len(payload) {
			continue
		}
		cands := d.mb.parseCandidates(payload[off:])
		for _, h := range cands {
			if isKeyFrame && h.FrameType != FrameI {
				continue
			}
			var sc int
			switch {
			case h.FrameSkipped:
				sc = 1
			case isKeyFrame:
				sc = 2
			default:
				sc = d.mb.probePayload(payload[off:], h)
			}
			if d.haveLocked && off == d.lockedOff {
				sc += 64
			}
			if sc > bestScore {
				bestScore = sc
				bestOff = off
				hCopy := h
				bestHdr = &hCopy
			}
		}
	}

	if bestHdr == nil {
		return nil, nil
	}
	if !d.haveLocked {
		d.lockedOff = bestOff
		d.haveLocked = true
	}

	frameData := payload[bestOff:]
	if err := d.mb.decodeFrame(frameData, *bestHdr, d.params, d.cur); err != nil {
		return nil, fmt.Errorf("%w: decoding WMV2 frame: %v", verr.ErrDecodeFailed, err)
	}
	return d.cur, nil
}

// DecodeFrameOwned decodes and returns an independent copy of the
// reconstructed frame, for callers that queue frames across ticks.
func (d *Decoder) DecodeFrameOwned(payload []byte, isKeyFrame bool) (*YUVFrame, error) {
	f, err := d.DecodeFrame(payload, isKeyFrame)
	if err != nil || f == nil {
		return nil, err
	}
	return f.clone(), nil
}
