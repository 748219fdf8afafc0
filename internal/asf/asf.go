// Package asf demuxes the Advanced Systems Format container used to
// wrap the engine's WMV2 video and WMA audio streams: header object
// parsing followed by a stateful per-packet payload reassembler.
package asf

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rfvp-go/vnengine/internal/verr"
)

// Guid is a 128-bit ASF object identifier, stored in the file's own
// little-endian field order.
type Guid [16]byte

func readGuid(r io.Reader) (Guid, error) {
	var g Guid
	_, err := io.ReadFull(r, g[:])
	return g, err
}

var (
	guidHeader       = Guid{0x30, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C}
	guidData         = Guid{0x36, 0x26, 0xB2, 0x75, 0x8E, 0x66, 0xCF, 0x11, 0xA6, 0xD9, 0x00, 0xAA, 0x00, 0x62, 0xCE, 0x6C}
	guidFileProps    = Guid{0xA1, 0xDC, 0xAB, 0x8C, 0x47, 0xA9, 0xCF, 0x11, 0x8E, 0xE4, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65}
	guidStreamProps  = Guid{0x91, 0x07, 0xDC, 0xB7, 0xB7, 0xA9, 0xCF, 0x11, 0x8E, 0xE6, 0x00, 0xC0, 0x0C, 0x20, 0x53, 0x65}
	guidStreamVideo  = Guid{0xC0, 0xEF, 0x19, 0xBC, 0x4D, 0x5B, 0xCF, 0x11, 0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B}
	guidStreamAudio  = Guid{0x40, 0x9E, 0x69, 0xF8, 0x4D, 0x5B, 0xCF, 0x11, 0xA8, 0xFD, 0x00, 0x80, 0x5F, 0x5C, 0x44, 0x2B}
)

// objectHeader is the 24-byte GUID+size prefix every ASF object opens with.
type objectHeader struct {
	guid Guid
	size uint64
}

func readObjectHeader(r io.Reader) (objectHeader, error) {
	var h objectHeader
	g, err := readGuid(r)
	if err != nil {
		return h, err
	}
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return h, err
	}
	if size < 24 {
		return h, fmt.Errorf("%w: ASF object size < 24", verr.ErrInvalidMedia)
	}
	h.guid, h.size = g, size
	return h, nil
}

func (h objectHeader) payloadSize() uint64 { return h.size - 24 }

// VideoStreamInfo describes one video stream's type-specific properties.
type VideoStreamInfo struct {
	StreamNumber uint8
	Width        uint32
	Height       uint32
	CodecFourCC  [4]byte
	ExtraData    []byte
}

// AudioStreamInfo describes one audio stream's type-specific properties
// plus the ASF descrambling (interleaving) parameters, when present.
type AudioStreamInfo struct {
	StreamNumber   uint8
	FormatTag      uint16
	Channels       uint16
	SampleRate     uint32
	BitRate        uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	ExtraData      []byte
	DescrambleSpan uint8
	PacketSize     uint16
	ChunkSize      uint16
}

// Payload is one complete, reassembled media object extracted from the
// packet stream.
type Payload struct {
	StreamNumber uint8
	ObjectID     uint32
	ObjSize      uint32
	PTSMillis    uint32
	DurationMs   uint16
	IsKeyFrame   bool
	Data         []byte
}

type audioDescramble struct {
	span       uint8
	packetSize uint16
	chunkSize  uint16
}

// streamState is the per-stream fragment reassembly buffer.
type streamState struct {
	pkt           []byte
	fragOffsetSum int
	pktClean      bool
	seq           uint32
	ptsMs         uint32
	isKey         bool
}

const frameHeaderSize = 6

// File is a stateful ASF demuxer: Open parses the header once, then
// ReadPacket is called repeatedly to pull reassembled payloads.
type File struct {
	VideoStreams []VideoStreamInfo
	AudioStreams []AudioStreamInfo

	DataOffset  uint64
	PacketCount uint64

	PacketSize    uint32
	MinPacketSize uint32
	PrerollMs     uint32

	isAudioStream   [128]bool
	audioDescramble [128]audioDescramble
	streams         [128]streamState
}

// Open parses the ASF header object and positions the caller-supplied
// reader's logical offset at the start of the Data object's packets
// (the caller is expected to have already seeked to DataOffset, or to
// continue reading sequentially from wherever Open left r).
func Open(r io.ReadSeeker) (*File, error) {
	hdr, err := readObjectHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ASF header object: %v", verr.ErrInvalidMedia, err)
	}
	if hdr.guid != guidHeader {
		return nil, fmt.Errorf("%w: not an ASF file", verr.ErrInvalidMedia)
	}

	var numHeaders uint32
	if err := binary.Read(r, binary.LittleEndian, &numHeaders); err != nil {
		return nil, err
	}
	if _, err := io.CopyN(io.Discard, r, 2); err != nil {
		return nil, err
	}

	f := &File{}
	var minPktsize, maxPktsize uint32

	headerEnd := hdr.size
	pos := uint64(24 + 4 + 1 + 1)

	for pos < headerEnd {
		obj, err := readObjectHeader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading ASF sub-object: %v", verr.ErrInvalidMedia, err)
		}
		objEnd := pos + obj.size

		switch obj.guid {
		case guidFileProps:
			if err := f.readFileProperties(r, &minPktsize, &maxPktsize); err != nil {
				return nil, err
			}
		case guidStreamProps:
			if err := f.readStreamProperties(r, obj, pos+24); err != nil {
				return nil, err
			}
		}

		pos = objEnd
		if _, err := r.Seek(int64(objEnd), io.SeekStart); err != nil {
			return nil, err
		}
	}

	dataObj, err := readObjectHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading ASF data object: %v", verr.ErrInvalidMedia, err)
	}
	if dataObj.guid != guidData {
		return nil, fmt.Errorf("%w: expected ASF data object after header", verr.ErrInvalidMedia)
	}
	if _, err := io.CopyN(io.Discard, r, 16+8+2); err != nil {
		return nil, err
	}
	offset, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	f.DataOffset = uint64(offset)

	if maxPktsize == 0 {
		return nil, fmt.Errorf("%w: ASF max packet size is 0", verr.ErrInvalidMedia)
	}
	f.PacketSize = maxPktsize
	f.MinPacketSize = minPktsize
	return f, nil
}

func (f *File) readFileProperties(r io.ReadSeeker, minPktsize, maxPktsize *uint32) error {
	if _, err := r.Seek(16+8+8, io.SeekCurrent); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &f.PacketCount); err != nil {
		return err
	}
	if _, err := r.Seek(8+8, io.SeekCurrent); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &f.PrerollMs); err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, r, 4); err != nil { // preroll high dword, ignored
		return err
	}
	if _, err := io.CopyN(io.Discard, r, 4); err != nil { // flags
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, minPktsize); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, maxPktsize); err != nil {
		return err
	}
	if _, err := io.CopyN(io.Discard, r, 4); err != nil { // max bitrate
		return err
	}
	return nil
}

func (f *File) readStreamProperties(r io.ReadSeeker, obj objectHeader, payloadStart uint64) error {
	streamType, err := readGuid(r)
	if err != nil {
		return err
	}
	if _, err := readGuid(r); err != nil { // error-correction guid
		return err
	}
	if _, err := io.CopyN(io.Discard, r, 8); err != nil { // time offset
		return err
	}
	var typeSpecificLen, errCorrectLen uint32
	if err := binary.Read(r, binary.LittleEndian, &typeSpecificLen); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &errCorrectLen); err != nil {
		return err
	}
	var flags uint16
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return err
	}
	streamNumber := uint8(flags & 0x7F)
	if _, err := io.CopyN(io.Discard, r, 4); err != nil { // reserved
		return err
	}

	switch streamType {
	case guidStreamVideo:
		if _, err := io.CopyN(io.Discard, r, 4+4+1); err != nil {
			return err
		}
		var fmtDataSize uint16
		if err := binary.Read(r, binary.LittleEndian, &fmtDataSize); err != nil {
			return err
		}
		if _, err := io.CopyN(io.Discard, r, 4); err != nil { // bi_size
			return err
		}
		var width uint32
		var heightSigned int32
		if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &heightSigned); err != nil {
			return err
		}
		height := uint32(heightSigned)
		if heightSigned < 0 {
			height = uint32(-heightSigned)
		}
		if _, err := io.CopyN(io.Discard, r, 2+2); err != nil { // planes, bit count
			return err
		}
		var fourCC [4]byte
		if _, err := io.ReadFull(r, fourCC[:]); err != nil {
			return err
		}
		if _, err := r.Seek(20, io.SeekCurrent); err != nil {
			return err
		}
		extraLen := 0
		if int(fmtDataSize) > 40 {
			extraLen = int(fmtDataSize) - 40
		}
		extra := make([]byte, extraLen)
		if _, err := io.ReadFull(r, extra); err != nil {
			return err
		}
		f.VideoStreams = append(f.VideoStreams, VideoStreamInfo{
			StreamNumber: streamNumber,
			Width:        width,
			Height:       height,
			CodecFourCC:  fourCC,
			ExtraData:    extra,
		})

	case guidStreamAudio:
		f.isAudioStream[streamNumber] = true

		var formatTag, channels, blockAlign, bitsPerSample uint16
		var sampleRate, bitRate uint32
		if err := binary.Read(r, binary.LittleEndian, &formatTag); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &channels); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &sampleRate); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &bitRate); err != nil {
			return err
		}
		bitRate *= 8
		if err := binary.Read(r, binary.LittleEndian, &blockAlign); err != nil {
			return err
		}
		if err := binary.Read(r, binary.LittleEndian, &bitsPerSample); err != nil {
			return err
		}

		var cbSize, baseLen int
		if typeSpecificLen >= 18 {
			var v uint16
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return err
			}
			cbSize, baseLen = int(v), 18
		} else {
			cbSize, baseLen = 0, 16
		}
		extra := make([]byte, cbSize)
		if cbSize != 0 {
			if _, err := io.ReadFull(r, extra); err != nil {
				return err
			}
		}
		consumed := baseLen + cbSize
		if remain := int(typeSpecificLen) - consumed; remain > 0 {
			if _, err := r.Seek(int64(remain), io.SeekCurrent); err != nil {
				return err
			}
		}

		var ds audioDescramble
		objEnd := payloadStart + obj.payloadSize()
		pos2, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if int64(objEnd)-pos2 >= 8 {
			var dsSpan uint8
			var dsPacketSize, dsChunkSize, dsDataSize uint16
			var dsSilence uint8
			if err := binary.Read(r, binary.LittleEndian, &dsSpan); err != nil {
				return err
			}
			if err := binary.Read(r, binary.LittleEndian, &dsPacketSize); err != nil {
				return err
			}
			if err := binary.Read(r, binary.LittleEndian, &dsChunkSize); err != nil {
				return err
			}
			if err := binary.Read(r, binary.LittleEndian, &dsDataSize); err != nil {
				return err
			}
			if err := binary.Read(r, binary.LittleEndian, &dsSilence); err != nil {
				return err
			}
			if dsSpan > 1 {
				if dsChunkSize == 0 || dsPacketSize/dsChunkSize <= 1 || dsPacketSize%dsChunkSize != 0 {
					dsSpan = 0
				}
			}
			ds = audioDescramble{span: dsSpan, packetSize: dsPacketSize, chunkSize: dsChunkSize}
		}
		f.audioDescramble[streamNumber] = ds

		f.AudioStreams = append(f.AudioStreams, AudioStreamInfo{
			StreamNumber:   streamNumber,
			FormatTag:      formatTag,
			Channels:       channels,
			SampleRate:     sampleRate,
			BitRate:        bitRate,
			BlockAlign:     blockAlign,
			BitsPerSample:  bitsPerSample,
			ExtraData:      extra,
			DescrambleSpan: ds.span,
			PacketSize:     ds.packetSize,
			ChunkSize:      ds.chunkSize,
		})

	default:
		if _, err := r.Seek(int64(typeSpecificLen), io.SeekCurrent); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) descrambleAudioIfNeeded(streamNum uint8, data []byte) []byte {
	ds := f.audioDescramble[streamNum]
	if ds.span <= 1 {
		return data
	}
	span := int(ds.span)
	packetSize := int(ds.packetSize)
	chunkSize := int(ds.chunkSize)
	if chunkSize == 0 || len(data) != packetSize*span || packetSize%chunkSize != 0 {
		return data
	}
	chunksPerPacket := packetSize / chunkSize
	if chunksPerPacket <= 1 {
		return data
	}

	out := make([]byte, len(data))
	offset := 0
	for offset < len(data) {
		off := offset / chunkSize
		row := off / span
		col := off % span
		idx := row + col*chunksPerPacket
		src := idx * chunkSize
		if src+chunkSize > len(data) || offset+chunkSize > len(out) {
			return data
		}
		copy(out[offset:offset+chunkSize], data[src:src+chunkSize])
		offset += chunkSize
	}
	return out
}

// read2Bits decodes one of the ASF packet header's 2-bit length-coded
// fields: code selects among {0, u8, u16, u32} widths.
func read2Bits(buf []byte, i *int, code uint8, def uint32) (uint32, error) {
	switch code & 3 {
	case 0:
		return def, nil
	case 1:
		if *i+1 > len(buf) {
			return 0, fmt.Errorf("%w: ASF packet truncated", verr.ErrInvalidMedia)
		}
		v := uint32(buf[*i])
		*i++
		return v, nil
	case 2:
		if *i+2 > len(buf) {
			return 0, fmt.Errorf("%w: ASF packet truncated", verr.ErrInvalidMedia)
		}
		v := uint32(binary.LittleEndian.Uint16(buf[*i:]))
		*i += 2
		return v, nil
	default:
		if *i+4 > len(buf) {
			return 0, fmt.Errorf("%w: ASF packet truncated", verr.ErrInvalidMedia)
		}
		v := binary.LittleEndian.Uint32(buf[*i:])
		*i += 4
		return v, nil
	}
}

// ErrEndOfStream signals a clean end of packet data.
var ErrEndOfStream = fmt.Errorf("%w: end of ASF packet stream", verr.ErrIO)

// ReadPacket reads the next fixed-size ASF packet and returns every
// media object payload completed by it. Objects spanning multiple
// packets are reassembled internally and only emitted once complete.
func (f *File) ReadPacket(r io.Reader) ([]Payload, error) {
	pktSize := int(f.PacketSize)
	if pktSize == 0 {
		return nil, fmt.Errorf("%w: ASF packet size is 0", verr.ErrInvalidMedia)
	}

	buf := make([]byte, pktSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrEndOfStream
		}
		return nil, err
	}

	var out []Payload
	i := 0

	if len(buf) >= 3 && buf[0] == 0x82 && buf[1] == 0 && buf[2] == 0 {
		i = 3
	} else if buf[0]&0x80 != 0 {
		ecLen := int(buf[0] & 0x0F)
		i = 1 + ecLen
		if i > len(buf) {
			return out, nil
		}
	}

	if i+2 > len(buf) {
		return out, nil
	}
	packetFlags := buf[i]
	packetProperty := buf[i+1]
	i += 2

	packetLength, err := read2Bits(buf, &i, packetFlags>>5, f.PacketSize)
	if err != nil {
		return nil, err
	}
	if _, err := read2Bits(buf, &i, packetFlags>>1, 0); err != nil { // sequence, unused
		return nil, err
	}
	padsizeU, err := read2Bits(buf, &i, packetFlags>>3, 0)
	if err != nil {
		return nil, err
	}
	padsize := int32(padsizeU)

	if packetLength == 0 || packetLength >= (1<<29) {
		return out, nil
	}
	if uint32(padsize) >= packetLength {
		return out, nil
	}

	if i+6 > len(buf) {
		return out, nil
	}
	packetTimestamp := binary.LittleEndian.Uint32(buf[i:])
	i += 4
	i += 2 // duration, unused

	var packetSegsizetype uint8
	var packetSegments int32
	if packetFlags&0x01 != 0 {
		if i >= len(buf) {
			return out, nil
		}
		packetSegsizetype = buf[i]
		i++
		packetSegments = int32(packetSegsizetype & 0x3f)
	} else {
		packetSegsizetype, packetSegments = 0x80, 1
	}

	headerLen := int32(i)
	if uint32(headerLen) > packetLength-uint32(padsize) {
		return out, nil
	}

	packetSizeLeft := int32(packetLength) - padsize - headerLen

	if packetLength < f.MinPacketSize {
		padsize += int32(f.MinPacketSize - packetLength)
	}
	packetPadsize := padsize

	var packetTimeStart uint32
	var packetTimeDelta uint8
	var packetMultiSize int32

	var curStreamNum uint8
	var packetSeq uint32
	var packetFragOffset uint32
	var packetReplicSize uint32
	var packetKeyFrame bool
	var packetFragSize uint32
	var packetFragTimestamp uint32
	var packetObjSize uint32

	for {
		if packetSizeLeft < frameHeaderSize || (packetSegments < 1 && packetTimeStart == 0) {
			break
		}

		if packetTimeStart == 0 {
			if i >= len(buf) {
				break
			}
			num := buf[i]
			i++
			packetSizeLeft--

			packetSegments--
			packetKeyFrame = num&0x80 != 0
			curStreamNum = num & 0x7f

			before := i
			if packetSeq, err = read2Bits(buf, &i, packetProperty>>4, 0); err != nil {
				return nil, err
			}
			packetSizeLeft -= int32(i - before)

			before = i
			if packetFragOffset, err = read2Bits(buf, &i, packetProperty>>2, 0); err != nil {
				return nil, err
			}
			packetSizeLeft -= int32(i - before)

			before = i
			if packetReplicSize, err = read2Bits(buf, &i, packetProperty, 0); err != nil {
				return nil, err
			}
			packetSizeLeft -= int32(i - before)

			if int32(packetReplicSize) > packetSizeLeft {
				break
			}

			packetObjSize = 0

			switch {
			case packetReplicSize >= 8:
				if i+8 > len(buf) {
					goto done
				}
				packetObjSize = binary.LittleEndian.Uint32(buf[i:])
				i += 4
				packetFragTimestamp = binary.LittleEndian.Uint32(buf[i:])
				i += 4
				packetSizeLeft -= 8

				skip := int(packetReplicSize - 8)
				if i+skip > len(buf) {
					goto done
				}
				i += skip
				packetSizeLeft -= int32(skip)

			case packetReplicSize == 1:
				packetTimeStart = packetFragOffset
				packetFragOffset = 0
				packetFragTimestamp = packetTimestamp

				if i >= len(buf) {
					goto done
				}
				packetTimeDelta = buf[i]
				i++
				packetSizeLeft--

			case packetReplicSize != 0:
				goto done
			}

			if packetFlags&0x01 != 0 {
				before := i
				if packetFragSize, err = read2Bits(buf, &i, packetSegsizetype>>6, 0); err != nil {
					return nil, err
				}
				consumed := int32(i - before)
				packetSizeLeft -= consumed

				if packetFragSize == 0 {
					goto done
				}
				if int32(packetFragSize) > packetSizeLeft {
					if int32(packetFragSize) > packetSizeLeft+packetPadsize {
						goto done
					}
					diff := int32(packetFragSize) - packetSizeLeft
					packetSizeLeft += diff
					packetPadsize -= diff
				}
			} else {
				packetFragSize = uint32(packetSizeLeft)
			}

			if packetReplicSize == 1 {
				packetMultiSize = int32(packetFragSize)
				if packetMultiSize > packetSizeLeft {
					goto done
				}
			}
		}

		if packetReplicSize == 1 {
			packetFragTimestamp = packetTimeStart
			packetTimeStart += uint32(packetTimeDelta)

			if i >= len(buf) {
				break
			}
			sz := uint32(buf[i])
			i++
			packetSizeLeft--
			packetMultiSize--

			packetObjSize = sz
			packetFragSize = sz
			packetFragOffset = 0

			if packetMultiSize < int32(packetObjSize) {
				drop := packetMultiSize
				if drop < 0 {
					drop = 0
				}
				if i+int(drop) > len(buf) {
					break
				}
				i += int(drop)
				packetSizeLeft -= drop
				packetTimeStart = 0
				packetMultiSize = 0
				continue
			}

			packetMultiSize -= int32(packetObjSize)
			packetKeyFrame = true
		}

		{
			fragSize := int(packetFragSize)
			if fragSize == 0 {
				break
			}
			if packetSizeLeft < int32(fragSize) {
				break
			}
			if i+fragSize > len(buf) {
				break
			}

			data := buf[i : i+fragSize]
			i += fragSize
			packetSizeLeft -= int32(fragSize)

			if packetReplicSize != 1 {
				packetTimeStart = 0
			}

			ptsMs := packetFragTimestamp
			if ptsMs > f.PrerollMs {
				ptsMs -= f.PrerollMs
			} else {
				ptsMs = 0
			}

			if packetObjSize == 0 {
				cp := make([]byte, len(data))
				copy(cp, data)
				out = append(out, Payload{
					StreamNumber: curStreamNum,
					ObjectID:     packetSeq,
					ObjSize:      uint32(len(cp)),
					PTSMillis:    ptsMs,
					IsKeyFrame:   packetKeyFrame,
					Data:         cp,
				})
				continue
			}

			st := &f.streams[curStreamNum]

			if st.fragOffsetSum == 0 && packetFragOffset != 0 {
				continue
			}

			objSize := int(packetObjSize)
			fragOff := int(packetFragOffset)

			needNew := len(st.pkt) != objSize || st.fragOffsetSum+fragSize > len(st.pkt)
			if needNew {
				st.pkt = make([]byte, objSize)
				st.fragOffsetSum = 0
				st.pktClean = false
				st.seq = packetSeq
				st.ptsMs = ptsMs
				st.isKey = packetKeyFrame || f.isAudioStream[curStreamNum]
			}

			if fragOff >= len(st.pkt) || fragSize > len(st.pkt)-fragOff {
				continue
			}

			if fragOff != st.fragOffsetSum && !st.pktClean {
				for b := st.fragOffsetSum; b < len(st.pkt); b++ {
					st.pkt[b] = 0
				}
				st.pktClean = true
			}

			copy(st.pkt[fragOff:fragOff+fragSize], data)
			st.fragOffsetSum += fragSize

			if st.fragOffsetSum == len(st.pkt) {
				seq := st.seq
				ptsMsFull := st.ptsMs
				isKeyFull := st.isKey

				full := st.pkt
				st.pkt = nil
				st.fragOffsetSum = 0
				st.pktClean = false

				if f.isAudioStream[curStreamNum] {
					full = f.descrambleAudioIfNeeded(curStreamNum, full)
				}

				out = append(out, Payload{
					StreamNumber: curStreamNum,
					ObjectID:     seq,
					ObjSize:      uint32(len(full)),
					PTSMillis:    ptsMsFull,
					IsKeyFrame:   isKeyFull,
					Data:         full,
				})
			}
		}
	}
done:
	return out, nil
}
