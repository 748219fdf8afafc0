package wma

import (
	"testing"

	"github.com/rfvp-go/vnengine/internal/asf"
)

func TestNewRejectsUnsupportedFormatTag(t *testing.T) {
	_, err := New(&asf.AudioStreamInfo{FormatTag: 0x0055, Channels: 2, SampleRate: 44100})
	if err == nil {
		t.Fatalf("expected unsupported format tag to error")
	}
}

func TestDecodePacketProducesInterleavedPCM(t *testing.T) {
	d, err := New(&asf.AudioStreamInfo{FormatTag: 0x0161, Channels: 2, SampleRate: 44100})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	packet := make([]byte, 512)
	for i := range packet {
		packet[i] = byte(i * 37)
	}
	frame, err := d.DecodePacket(packet, 0)
	if err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	if frame.Channels != 2 {
		t.Fatalf("expected 2 channels, got %d", frame.Channels)
	}
	if len(frame.Samples) != blockSamples*2 {
		t.Fatalf("expected %d samples, got %d", blockSamples*2, len(frame.Samples))
	}
	for _, s := range frame.Samples {
		if s > 1 || s < -1 {
			t.Fatalf("sample out of [-1,1] range: %f", s)
		}
	}
}

func TestDecodePacketFlushReturnsOverlapTail(t *testing.T) {
	d, err := New(&asf.AudioStreamInfo{FormatTag: 0x0160, Channels: 1, SampleRate: 22050})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.DecodePacket(make([]byte, 256), 0); err != nil {
		t.Fatalf("DecodePacket: %v", err)
	}
	tail, err := d.DecodePacket(nil, 100)
	if err != nil {
		t.Fatalf("flush DecodePacket: %v", err)
	}
	if len(tail.Samples) != blockSamples/2 {
		t.Fatalf("expected flush tail of %d samples, got %d", blockSamples/2, len(tail.Samples))
	}
}
