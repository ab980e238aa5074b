// SPDX-License-Identifier: EPL-2.0

package buffer

import "math"

// DefaultEnvelopeLength is the frame count of envelope and waveshaper
// buffers when none is given.
const DefaultEnvelopeLength = 1024

// Shape selects a built-in envelope window.
type Shape int

const (
	ShapeFlat Shape = iota
	ShapeTriangle
	ShapeLinearDecay
	ShapeHanning
)

// NewEnvelope returns a mono buffer in the envelope domain, read with
// offsets in [0, 1]. Envelopes interpolate linearly.
func NewEnvelope(shape Shape, length int) *Buffer {
	if length <= 1 {
		length = DefaultEnvelopeLength
	}

	b, _ := New(1, length, DefaultSampleRate)
	b.domain = DomainEnvelope
	b.Interpolation = InterpolateLinear

	data := b.data[0]
	half := length / 2

	switch shape {
	case ShapeTriangle:
		for x := range half {
			data[x] = float32(x) / float32(half)
			data[half+x] = 1 - float32(x)/float32(half)
		}
		if length%2 == 1 {
			data[length-1] = 0
		}

	case ShapeLinearDecay:
		for x := range length {
			data[x] = 1 - float32(x)/float32(length)
		}

	case ShapeHanning:
		for x := range length {
			data[x] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(x)/float64(length-1))))
		}

	default:
		b.Fill(1)
	}

	return b
}

// NewWaveShaper returns a mono transfer-curve buffer read with input samples
// in [-1, 1]. A nil fn gives the identity curve.
func NewWaveShaper(length int, fn func(x float32) float32) *Buffer {
	if length <= 1 {
		length = DefaultEnvelopeLength
	}
	if fn == nil {
		fn = func(x float32) float32 { return x }
	}

	b, _ := New(1, length, DefaultSampleRate)
	b.domain = DomainWaveShaper
	b.Interpolation = InterpolateLinear
	b.FillFunc(func(offset float64) float32 { return fn(float32(offset)) })

	return b
}
