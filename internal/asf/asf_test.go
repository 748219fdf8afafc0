package asf

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMinimalASF assembles a tiny ASF file with one video stream, one
// audio stream, and a Data object header announcing one packet; the
// packets themselves are built separately by buildPacket. Enough to
// exercise Open/ReadPacket without a real encoder.
func buildMinimalASF(t *testing.T, packetSize uint32) []byte {
	t.Helper()
	var buf bytes.Buffer

	writeObj := func(guid Guid, payload []byte) {
		buf.Write(guid[:])
		binary.Write(&buf, binary.LittleEndian, uint64(24+len(payload)))
		buf.Write(payload)
	}

	var fileProps bytes.Buffer
	fileProps.Write(make([]byte, 16+8+8)) // file_id, file_size, create_time
	binary.Write(&fileProps, binary.LittleEndian, uint64(1))
	fileProps.Write(make([]byte, 8+8)) // play_time, send_time
	binary.Write(&fileProps, binary.LittleEndian, uint32(0))
	binary.Write(&fileProps, binary.LittleEndian, uint32(0))
	binary.Write(&fileProps, binary.LittleEndian, uint32(0)) // flags
	binary.Write(&fileProps, binary.LittleEndian, uint32(packetSize))
	binary.Write(&fileProps, binary.LittleEndian, uint32(packetSize))
	binary.Write(&fileProps, binary.LittleEndian, uint32(0)) // max bitrate

	var videoProps bytes.Buffer
	videoProps.Write(guidStreamVideo[:])
	videoProps.Write(make([]byte, 16)) // error correction guid
	binary.Write(&videoProps, binary.LittleEndian, uint64(0))
	binary.Write(&videoProps, binary.LittleEndian, uint32(40))
	binary.Write(&videoProps, binary.LittleEndian, uint32(0))
	binary.Write(&videoProps, binary.LittleEndian, uint16(1)) // stream number 1
	binary.Write(&videoProps, binary.LittleEndian, uint32(0))
	videoProps.Write(make([]byte, 4+4+1))
	binary.Write(&videoProps, binary.LittleEndian, uint16(40)) // fmt_data_size
	binary.Write(&videoProps, binary.LittleEndian, uint32(40)) // bi_size
	binary.Write(&videoProps, binary.LittleEndian, uint32(64))
	binary.Write(&videoProps, binary.LittleEndian, int32(-48))
	videoProps.Write(make([]byte, 2+2))
	videoProps.WriteString("WMV2")
	videoProps.Write(make([]byte, 20))

	audioTypeSpecific := 16
	var audioProps bytes.Buffer
	audioProps.Write(guidStreamAudio[:])
	audioProps.Write(make([]byte, 16))
	binary.Write(&audioProps, binary.LittleEndian, uint64(0))
	binary.Write(&audioProps, binary.LittleEndian, uint32(audioTypeSpecific))
	binary.Write(&audioProps, binary.LittleEndian, uint32(0))
	binary.Write(&audioProps, binary.LittleEndian, uint16(2)) // stream number 2
	binary.Write(&audioProps, binary.LittleEndian, uint32(0))
	binary.Write(&audioProps, binary.LittleEndian, uint16(0x0161)) // WMA format tag
	binary.Write(&audioProps, binary.LittleEndian, uint16(2))      // channels
	binary.Write(&audioProps, binary.LittleEndian, uint32(44100))
	binary.Write(&audioProps, binary.LittleEndian, uint32(16000))
	binary.Write(&audioProps, binary.LittleEndian, uint16(2048))
	binary.Write(&audioProps, binary.LittleEndian, uint16(16))

	var headerBody bytes.Buffer
	binary.Write(&headerBody, binary.LittleEndian, uint32(2)) // num_headers placeholder, unused
	headerBody.WriteByte(0)
	headerBody.WriteByte(0)
	writeObjTo := func(dst *bytes.Buffer, guid Guid, payload []byte) {
		dst.Write(guid[:])
		binary.Write(dst, binary.LittleEndian, uint64(24+len(payload)))
		dst.Write(payload)
	}
	writeObjTo(&headerBody, guidFileProps, fileProps.Bytes())
	writeObjTo(&headerBody, guidStreamProps, videoProps.Bytes())
	writeObjTo(&headerBody, guidStreamProps, audioProps.Bytes())

	writeObj(guidHeader, headerBody.Bytes())

	var dataPayload bytes.Buffer
	dataPayload.Write(make([]byte, 16))
	binary.Write(&dataPayload, binary.LittleEndian, uint64(1))
	binary.Write(&dataPayload, binary.LittleEndian, uint16(0))
	writeObj(guidData, dataPayload.Bytes())

	return buf.Bytes()
}

func buildPacket(packetSize uint32, streamNum uint8, payload []byte) []byte {
	pkt := make([]byte, 0, packetSize)
	pkt = append(pkt, 0x82, 0, 0) // common error-correction prefix
	packetFlags := byte(0x00)     // single segment, no multi-payload bit
	packetProperty := byte(0x00)  // all 2-bit fields are "absent" (0)
	pkt = append(pkt, packetFlags, packetProperty)
	pkt = append(pkt, 0, 0, 0, 0, 0, 0) // send time (u32), duration (u16)

	frameHeader := byte(streamNum & 0x7f) // not a key frame
	pkt = append(pkt, frameHeader)
	pkt = append(pkt, payload...)

	for uint32(len(pkt)) < packetSize {
		pkt = append(pkt, 0)
	}
	return pkt[:packetSize]
}

func TestOpenParsesStreamsAndSetsPacketSize(t *testing.T) {
	const packetSize = 64
	raw := buildMinimalASF(t, packetSize)
	f, err := Open(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if f.PacketSize != packetSize {
		t.Fatalf("expected packet size %d, got %d", packetSize, f.PacketSize)
	}
	if len(f.VideoStreams) != 1 || f.VideoStreams[0].StreamNumber != 1 {
		t.Fatalf("expected one video stream numbered 1, got %+v", f.VideoStreams)
	}
	if len(f.AudioStreams) != 1 || f.AudioStreams[0].StreamNumber != 2 {
		t.Fatalf("expected one audio stream numbered 2, got %+v", f.AudioStreams)
	}
	if f.VideoStreams[0].CodecFourCC != [4]byte{'W', 'M', 'V', '2'} {
		t.Fatalf("expected WMV2 fourCC, got %q", f.VideoStreams[0].CodecFourCC)
	}
}

func TestReadPacketReassemblesSinglePayload(t *testing.T) {
	// With packet_obj_size == 0 (the common single-payload-per-packet
	// case with no replication data), the demuxer emits the rest of
	// the packet as-is, trailing padding included — matching upstream,
	// which leaves zero-length-object framing to the stream codec.
	const packetSize = 32
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	pkt := buildPacket(packetSize, 1, payload)

	f := &File{PacketSize: packetSize}
	payloads, err := f.ReadPacket(bytes.NewReader(pkt))
	if err != nil {
		t.Fatalf("ReadPacket: %v", err)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d: %+v", len(payloads), payloads)
	}
	if payloads[0].StreamNumber != 1 {
		t.Fatalf("expected stream number 1, got %d", payloads[0].StreamNumber)
	}
	if !bytes.HasPrefix(payloads[0].Data, payload) {
		t.Fatalf("payload prefix mismatch: got %v want prefix %v", payloads[0].Data, payload)
	}
}

func TestReadPacketReturnsEndOfStreamOnShortRead(t *testing.T) {
	f := &File{PacketSize: 64}
	_, err := f.ReadPacket(bytes.NewReader([]byte{1, 2, 3}))
	if err != ErrEndOfStream {
		t.Fatalf("expected ErrEndOfStream, got %v", err)
	}
}
