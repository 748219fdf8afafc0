// Package texture decodes the engine's native NVSG image container and
// owns the graph-buffer pool that the VM's syscalls populate.
package texture

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"io"

	"github.com/rfvp-go/vnengine/internal/verr"
)

// Kind is the NVSG pixel format.
type Kind uint16

const (
	KindSingle24Bit Kind = 0
	KindSingle32Bit Kind = 1
	KindMulti32Bit  Kind = 2
	KindSingle8Bit  Kind = 3
	KindSingle1Bit  Kind = 4
)

func (k Kind) depth() int {
	switch k {
	case KindSingle24Bit:
		return 3
	case KindSingle32Bit, KindMulti32Bit:
		return 4
	case KindSingle8Bit, KindSingle1Bit:
		return 1
	default:
		return 0
	}
}

const (
	hzc1HeaderLen = 12
	nvsgSubHdrLen = 32
)

var hzc1Signature = [4]byte{'h', 'z', 'c', '1'}
var nvsgSignature = [4]byte{'N', 'V', 'S', 'G'}

// Decoded holds every entry frame of an NVSG container, still in its
// packed source channel order (BGR/BGRA/alpha-only), plus the header
// metadata the engine's graph buffers need.
type Decoded struct {
	Kind       Kind
	Width      uint16
	Height     uint16
	OffsetX    uint16
	OffsetY    uint16
	U          uint16
	V          uint16
	EntryCount uint32
	Entries    [][]byte
}

// Decode parses an HZC1-wrapped NVSG buffer. typeOK is consulted with
// the discovered pixel kind before the (potentially expensive) zlib
// inflate runs, so callers can reject an unexpected asset type (e.g.
// a mask loader fed a 32-bit texture) cheaply.
func Decode(buf []byte, typeOK func(Kind) bool) (*Decoded, error) {
	if len(buf) < hzc1HeaderLen || !bytes.Equal(buf[:4], hzc1Signature[:]) {
		return nil, fmt.Errorf("%w: missing HZC1 signature", verr.ErrInvalidMedia)
	}
	originalLen := binary.LittleEndian.Uint32(buf[4:8])
	headerLen := binary.LittleEndian.Uint32(buf[8:12])

	data := buf[hzc1HeaderLen:]
	if len(data) < nvsgSubHdrLen {
		return nil, fmt.Errorf("%w: truncated NVSG header", verr.ErrInvalidMedia)
	}
	if !bytes.Equal(data[:4], nvsgSignature[:]) {
		return nil, fmt.Errorf("%w: missing NVSG signature", verr.ErrInvalidMedia)
	}

	kind := Kind(binary.LittleEndian.Uint16(data[6:8]))
	d := &Decoded{
		Kind:       kind,
		Width:      binary.LittleEndian.Uint16(data[8:10]),
		Height:     binary.LittleEndian.Uint16(data[10:12]),
		OffsetX:    binary.LittleEndian.Uint16(data[12:14]),
		OffsetY:    binary.LittleEndian.Uint16(data[14:16]),
		U:          binary.LittleEndian.Uint16(data[16:18]),
		V:          binary.LittleEndian.Uint16(data[18:20]),
		EntryCount: binary.LittleEndian.Uint32(data[20:24]),
	}
	if d.EntryCount == 0 {
		d.EntryCount = 1
	}

	depth := d.Kind.depth()
	if depth == 0 {
		return nil, fmt.Errorf("%w: unrecognized NVSG pixel kind %d", verr.ErrInvalidMedia, kind)
	}
	if typeOK != nil && !typeOK(d.Kind) {
		return nil, fmt.Errorf("%w: unexpected NVSG pixel kind %d", verr.ErrInvalidMedia, kind)
	}

	if int(headerLen) > len(data) {
		return nil, fmt.Errorf("%w: HZC1 header_length overruns buffer", verr.ErrInvalidMedia)
	}
	payload := data[headerLen:]

	r, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib: %v", verr.ErrDecodeFailed, err)
	}
	defer r.Close()
	out := make([]byte, originalLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("%w: zlib inflate: %v", verr.ErrDecodeFailed, err)
	}

	if d.Kind == KindSingle1Bit {
		for i, b := range out {
			if b == 1 {
				out[i] = 0xFF
			}
		}
	}

	frameLen := int(d.Width) * int(d.Height) * depth
	for i := 0; i < int(d.EntryCount); i++ {
		start := i * frameLen
		end := start + frameLen
		if end > len(out) {
			break
		}
		d.Entries = append(d.Entries, out[start:end])
	}

	return d, nil
}

// ToImage converts entry frame index into a standard-library image,
// reordering the source's packed BGR(A) channels into the image
// package's RGBA convention so any downstream Go image consumer
// (ebiten upload, PNG debug dump, x/image/draw scaling) just works.
func (d *Decoded) ToImage(index int) (image.Image, error) {
	if index < 0 || index >= len(d.Entries) {
		return nil, fmt.Errorf("%w: entry index %d out of range", verr.ErrInvalidMedia, index)
	}
	slice := d.Entries[index]
	w, h := int(d.Width), int(d.Height)

	switch d.Kind {
	case KindSingle8Bit, KindSingle1Bit:
		img := image.NewAlpha(image.Rect(0, 0, w, h))
		copy(img.Pix, slice)
		return img, nil

	case KindSingle24Bit:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for p := 0; p < w*h; p++ {
			s := slice[p*3 : p*3+3]
			d := img.Pix[p*4 : p*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0xFF
		}
		return img, nil

	case KindSingle32Bit, KindMulti32Bit:
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for p := 0; p < w*h; p++ {
			s := slice[p*4 : p*4+4]
			d := img.Pix[p*4 : p*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
		}
		return img, nil

	default:
		return nil, fmt.Errorf("%w: unrecognized NVSG pixel kind %d", verr.ErrInvalidMedia, d.Kind)
	}
}
