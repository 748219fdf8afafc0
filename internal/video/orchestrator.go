package video

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"strings"

	"github.com/rfvp-go/vnengine/internal/asf"
	xdraw "golang.org/x/image/draw"

	"github.com/rfvp-go/vnengine/internal/verr"
	"github.com/rfvp-go/vnengine/internal/wmv2"
)

// Orchestrator owns a Read+Seek movie source, demuxes its ASF
// container, decodes its first WMV2/WMV1 stream, and presents frames
// to a Sink gated by PTS against a caller-supplied wall-clock reading,
// mirroring the teacher corpus's AsfWmv2Decoder orchestration loop in
// api.rs with the frame-timing policy added for this rework (the
// original crate is a one-shot decode library with no presentation
// clock of its own).
type Orchestrator struct {
	reader     io.ReadSeeker
	asfFile    *asf.File
	streamNum  uint8
	decoder    *wmv2.Decoder
	assembler  frameAssembler

	epochMs     int64
	haveEpoch   bool
	scaledW     int
	scaledH     int
	scratchRGBA *image.NRGBA
	scratchOut  *image.NRGBA
}

type fragKey struct {
	stream uint8
	object uint32
}

type fragAssembly struct {
	total   int
	pts     uint32
	isKey   bool
	data    []byte
	covered int
}

// frameAssembler reassembles ASF payloads into complete media objects,
// grounded on api.rs's FrameAssembler (a fast path for single-payload
// objects, with a simple contiguous-fill path for multi-payload ones).
type frameAssembler struct {
	inFlight map[fragKey]*fragAssembly
}

func newFrameAssembler() frameAssembler {
	return frameAssembler{inFlight: make(map[fragKey]*fragAssembly)}
}

func (a *frameAssembler) push(p asf.Payload) (uint32, bool, []byte, bool) {
	if len(p.Data) == 0 {
		return 0, false, nil, false
	}
	if p.ObjSize == 0 || int(p.ObjSize) == len(p.Data) {
		return p.PTSMillis, p.IsKeyFrame, p.Data, true
	}

	key := fragKey{stream: p.StreamNumber, object: p.ObjectID}
	entry, ok := a.inFlight[key]
	if !ok {
		entry = &fragAssembly{total: int(p.ObjSize), pts: p.PTSMillis, isKey: p.IsKeyFrame, data: make([]byte, p.ObjSize)}
		a.inFlight[key] = entry
	}
	entry.isKey = entry.isKey || p.IsKeyFrame
	n := copy(entry.data[min(entry.covered, entry.total):], p.Data)
	entry.covered += n

	if entry.covered >= entry.total {
		delete(a.inFlight, key)
		return entry.pts, entry.isKey, entry.data, true
	}
	return 0, false, nil, false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Open parses the ASF header, selects the first WMV2/WMV1 video
// stream, and constructs the WMV2 decoder at that stream's frozen
// geometry.
func Open(r io.ReadSeeker) (*Orchestrator, error) {
	f, err := asf.Open(r)
	if err != nil {
		return nil, err
	}
	var chosen *asf.VideoStreamInfo
	for i := range f.VideoStreams {
		v := &f.VideoStreams[i]
		cc := strings.ToUpper(strings.TrimRight(string(v.CodecFourCC[:]), "\x00"))
		if cc == "WMV2" || cc == "WMV1" {
			chosen = v
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: no WMV2/WMV1 video stream found", verr.ErrUnsupported)
	}
	if _, err := r.Seek(int64(f.DataOffset), io.SeekStart); err != nil {
		return nil, err
	}

	return &Orchestrator{
		reader:    r,
		asfFile:   f,
		streamNum: chosen.StreamNumber,
		decoder:   wmv2.NewDecoder(chosen.Width, chosen.Height, chosen.ExtraData),
		assembler: newFrameAssembler(),
	}, nil
}

// SetScale fixes the nearest-neighbor output size; zero means no scaling.
func (o *Orchestrator) SetScale(w, h int) {
	o.scaledW, o.scaledH = w, h
}

// Width/Height report the decoder's frozen source geometry.
func (o *Orchestrator) Width() int  { return int(o.decoder.Width()) }
func (o *Orchestrator) Height() int { return int(o.decoder.Height()) }

// Tick advances the pipeline by reading ASF packets until a complete
// video frame is decoded whose PTS has come due relative to nowMs (the
// caller's wall-clock reading, seeded against the first frame's PTS on
// the first call), or until end of stream. Returns presented=false at
// EOF.
func (o *Orchestrator) Tick(sink Sink, nowMs int64) (presented bool, err error) {
	for {
		payloads, err := o.asfFile.ReadPacket(o.reader)
		if err != nil {
			if err == asf.ErrEndOfStream {
				return false, nil
			}
			return false, err
		}

		for _, p := range payloads {
			if p.StreamNumber != o.streamNum {
				continue
			}
			ptsMs, isKey, data, ok := o.assembler.push(p)
			if !ok {
				continue
			}

			if !o.haveEpoch {
				o.epochMs = nowMs - int64(ptsMs)
				o.haveEpoch = true
			}
			dueAt := o.epochMs + int64(ptsMs)
			if dueAt > nowMs {
				// Not due yet: the frame is still decoded below
				// (keeping the frame buffer current) but not
				// presented; the loop moves on to the next payload.
			}

			frame, err := o.decoder.DecodeFrame(data, isKey)
			if err != nil {
				return false, err
			}
			if frame == nil {
				continue
			}
			if dueAt > nowMs {
				continue
			}

			rgba := yuv420ToRGBA(frame)
			out := rgba
			w, h := frame.Width, frame.Height
			if o.scaledW > 0 && o.scaledH > 0 && (o.scaledW != w || o.scaledH != h) {
				out = o.scaleNearest(rgba, o.scaledW, o.scaledH)
				w, h = o.scaledW, o.scaledH
			}
			if err := sink.UpdateFrame(out.Pix, w, h); err != nil {
				return false, err
			}
			return true, nil
		}
	}
}

func (o *Orchestrator) scaleNearest(src *image.NRGBA, w, h int) *image.NRGBA {
	if o.scratchOut == nil || o.scratchOut.Bounds().Dx() != w || o.scratchOut.Bounds().Dy() != h {
		o.scratchOut = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	xdraw.NearestNeighbor.Scale(o.scratchOut, o.scratchOut.Bounds(), src, src.Bounds(), draw.Src, nil)
	return o.scratchOut
}

// yuv420ToRGBA converts a planar YUV420 frame to RGBA using the BT.601
// full-range coefficients the engine's other texture-facing pixel math
// already assumes (see internal/texture's NRGBA convention).
func yuv420ToRGBA(f *wmv2.YUVFrame) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		cy := y / 2
		for x := 0; x < f.Width; x++ {
			cx := x / 2
			yy := int32(f.Y[y*f.YStride+x])
			u := int32(f.U[cy*f.CStride+cx]) - 128
			v := int32(f.V[cy*f.CStride+cx]) - 128

			r := yy + (91881*v)/65536
			g := yy - (22554*u+46802*v)/65536
			b := yy + (116130*u)/65536

			off := img.PixOffset(x, y)
			img.Pix[off] = clampByte(r)
			img.Pix[off+1] = clampByte(g)
			img.Pix[off+2] = clampByte(b)
			img.Pix[off+3] = 255
		}
	}
	return img
}

func clampByte(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
