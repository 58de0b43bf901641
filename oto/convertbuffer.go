package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferToBytes appends buff to dst as 32-bit little-endian floats,
// clamping the samples to [-1, 1].
func FloatBufferToBytes(buff []float32, dst []byte) []byte {
	for _, v := range buff {
		if v < -1.0 {
			v = -1.0
		} else if v > 1.0 {
			v = 1.0
		}
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
