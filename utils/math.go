// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clip limits v to [lo, hi]. NaN is passed through; use Sanitize for that.
func Clip(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClipFloat64 is Clip for float64 positions.
func ClipFloat64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Map linearly maps v from [fromLo, fromHi] to [toLo, toHi].
// A degenerate source range maps everything to toLo.
func Map(v, fromLo, fromHi, toLo, toHi float64) float64 {
	if fromHi == fromLo {
		return toLo
	}
	return toLo + (v-fromLo)/(fromHi-fromLo)*(toHi-toLo)
}

// Sanitize replaces NaN and infinities with 0 so they never reach an output block.
func Sanitize(v float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return v
}
