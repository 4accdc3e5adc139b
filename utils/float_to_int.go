// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it by 32767, truncating
// toward zero. The scale is symmetric so -1 maps to -32767.
func Float32ToInt16(x float32) int16 {
	switch {
	case x > 1:
		x = 1
	case x < -1:
		x = -1
	case x != x: // NaN
		return 0
	}
	return int16(x * 32767)
}

// Int16ToFloat32 maps a 16-bit PCM sample onto [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768
}
