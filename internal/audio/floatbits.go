package audio

import (
	"encoding/binary"
	"math"
)

func math32bits(v float32) uint32  { return math.Float32bits(v) }
func bitsToFloat32(b uint32) float32 { return math.Float32frombits(b) }

func packFloat32LE(dst []byte, samples []float32) {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
}
