package video

import (
	"testing"

	"github.com/rfvp-go/vnengine/internal/asf"
	"github.com/rfvp-go/vnengine/internal/wmv2"
)

func TestFrameAssemblerFastPathSinglePayload(t *testing.T) {
	a := newFrameAssembler()
	pts, key, data, ok := a.push(asf.Payload{StreamNumber: 1, Data: []byte{1, 2, 3}, ObjSize: 0, IsKeyFrame: true, PTSMillis: 10})
	if !ok || pts != 10 || !key || len(data) != 3 {
		t.Fatalf("expected fast-path completion, got ok=%v pts=%d key=%v data=%v", ok, pts, key, data)
	}
}

func TestFrameAssemblerReassemblesFragments(t *testing.T) {
	a := newFrameAssembler()
	_, _, _, ok := a.push(asf.Payload{StreamNumber: 1, ObjectID: 5, Data: []byte{1, 2}, ObjSize: 4, PTSMillis: 1})
	if ok {
		t.Fatalf("expected incomplete object after first fragment")
	}
	pts, _, data, ok := a.push(asf.Payload{StreamNumber: 1, ObjectID: 5, Data: []byte{3, 4}, ObjSize: 4, PTSMillis: 1})
	if !ok || pts != 1 {
		t.Fatalf("expected completion on second fragment, got ok=%v", ok)
	}
	if len(data) != 4 || data[0] != 1 || data[3] != 4 {
		t.Fatalf("unexpected reassembled data: %v", data)
	}
}

func TestYUV420ToRGBAProducesGrayForMidRangeChroma(t *testing.T) {
	f := wmv2.NewYUVFrame(2, 2)
	for i := range f.Y {
		f.Y[i] = 200
	}
	for i := range f.U {
		f.U[i] = 128
		f.V[i] = 128
	}
	img := yuv420ToRGBA(f)
	r, g, b, a := img.At(0, 0).RGBA()
	if a>>8 != 255 {
		t.Fatalf("expected opaque alpha, got %d", a>>8)
	}
	if r>>8 != 200 || g>>8 != 200 || b>>8 != 200 {
		t.Fatalf("expected near-gray 200,200,200 at zero chroma, got %d,%d,%d", r>>8, g>>8, b>>8)
	}
}
