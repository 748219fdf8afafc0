package wmv2

import "testing"

func TestNewParamsComputesMacroblockGrid(t *testing.T) {
	p := NewParams(33, 17)
	if p.WidthMB != 3 || p.HeightMB != 2 {
		t.Fatalf("expected 3x2 macroblocks for 33x17, got %dx%d", p.WidthMB, p.HeightMB)
	}
}

func TestDecodeFrameProducesFrameForKeyFrame(t *testing.T) {
	d := NewDecoder(16, 16, nil)
	payload := []byte{0x00, 0x55, 0xAA, 0x33, 0x99, 0x5A}
	frame, err := d.DecodeFrame(payload, true)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if frame == nil {
		t.Fatalf("expected a decoded frame for a key frame payload")
	}
	if len(frame.Y) != 16*16 {
		t.Fatalf("unexpected luma plane size: %d", len(frame.Y))
	}
}

func TestDecodeFrameLocksHeaderOffsetAcrossCalls(t *testing.T) {
	d := NewDecoder(16, 16, nil)
	payload := []byte{0x00, 0x55, 0xAA, 0x33, 0x99, 0x5A}
	if _, err := d.DecodeFrame(payload, true); err != nil {
		t.Fatalf("first DecodeFrame: %v", err)
	}
	if !d.haveLocked {
		t.Fatalf("expected header offset to be locked after first decode")
	}
	if _, err := d.DecodeFrame(payload, false); err != nil {
		t.Fatalf("second DecodeFrame: %v", err)
	}
}

func TestDecodeFrameEmptyPayloadReturnsNil(t *testing.T) {
	d := NewDecoder(16, 16, nil)
	frame, err := d.DecodeFrame(nil, false)
	if err != nil || frame != nil {
		t.Fatalf("expected nil, nil for empty payload, got %v, %v", frame, err)
	}
}
