// SPDX-License-Identifier: EPL-2.0

package utils

// full-scale magnitudes per PCM bit depth; negative full scale is one more
// than positive
const (
	max8  = 1<<7 - 1
	max16 = 1<<15 - 1
	max24 = 1<<23 - 1
	max32 = 1<<31 - 1
)

// Float32ToInt converts a normalized sample to a signed PCM integer of the given
// bit depth, clamping to [-1, 1] and mapping NaN to 0. Unknown depths fall
// back to 16 bits.
func Float32ToInt(x float32, bitDepth int) int {
	x = Sanitize(Clip(x, -1, 1))

	switch bitDepth {
	case 8:
		return int(x * max8)
	case 24:
		return int(x * max24)
	case 32:
		return int(float64(x) * max32)
	default:
		return int(x * max16)
	}
}

// IntToFloat32 normalizes a signed PCM integer of the given bit depth to [-1, 1].
func IntToFloat32(v int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32(v) / (max8 + 1)
	case 24:
		return float32(v) / (max24 + 1)
	case 32:
		return float32(float64(v) / (max32 + 1))
	default:
		return float32(v) / (max16 + 1)
	}
}
