// SPDX-License-Identifier: EPL-2.0

package render

import (
	"encoding/binary"
	"math"

	"github.com/ik5/modpbx/utils"
)

// ToPCM16 writes src as little-endian signed 16-bit PCM into dst, clamping
// to [-1, 1] and scaling by 32767. It returns the number of bytes written.
func ToPCM16(dst []byte, src []float32) (int, error) {
	if len(dst) < len(src)*2 {
		return 0, ErrShortPCMBuffer
	}

	for i, v := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(utils.Float32ToInt16(v)))
	}

	return len(src) * 2, nil
}

// ToFloat32LE writes src as little-endian IEEE 754 float32 into dst and
// returns the number of bytes written.
func ToFloat32LE(dst []byte, src []float32) (int, error) {
	if len(dst) < len(src)*4 {
		return 0, ErrShortPCMBuffer
	}

	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(v))
	}

	return len(src) * 4, nil
}
