// SPDX-License-Identifier: EPL-2.0

package buffer

import (
	"fmt"
	"math"

	"github.com/ik5/audgraph/utils"
)

// DefaultSampleRate is used for buffers that are not backed by a file.
const DefaultSampleRate = 44100

// Interpolation selects how fractional frame positions are read.
type Interpolation int

const (
	InterpolateNone Interpolation = iota
	InterpolateLinear
	InterpolateCubic
)

func (i Interpolation) String() string {
	switch i {
	case InterpolateNone:
		return "none"
	case InterpolateLinear:
		return "linear"
	case InterpolateCubic:
		return "cubic"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// Domain defines what an offset passed to Get means.
type Domain int

const (
	// DomainFrames addresses the buffer by frame index.
	DomainFrames Domain = iota
	// DomainEnvelope maps [0, 1] across the whole buffer.
	DomainEnvelope
	// DomainWaveShaper maps an input sample in [-1, 1] across the whole buffer.
	DomainWaveShaper
)

// Buffer is planar multi-channel sample storage with a fixed frame count.
//
// Reads never go out of bounds: positions are clipped to the first and last
// frame. A Buffer may be shared by many nodes for reading; writing to one
// that is attached to a running graph races with the render loop.
type Buffer struct {
	// Interpolation applies to At, Get and GetChannel.
	Interpolation Interpolation

	data       [][]float32
	frames     int
	sampleRate int
	domain     Domain
}

// New allocates a silent buffer.
func New(channels, frames, sampleRate int) (*Buffer, error) {
	if channels <= 0 || frames <= 0 {
		return nil, fmt.Errorf("%d channels, %d frames: %w", channels, frames, ErrInvalidSize)
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
	}

	return &Buffer{
		data:       data,
		frames:     frames,
		sampleRate: sampleRate,
	}, nil
}

// FromPlanar wraps per-channel slices without copying. All channels must have
// the same, non-zero length.
func FromPlanar(data [][]float32, sampleRate int) (*Buffer, error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return nil, ErrInvalidSize
	}
	for c := range data {
		if len(data[c]) != len(data[0]) {
			return nil, fmt.Errorf("channel %d has %d frames, channel 0 has %d: %w",
				c, len(data[c]), len(data[0]), ErrInvalidSize)
		}
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	return &Buffer{
		data:       data,
		frames:     len(data[0]),
		sampleRate: sampleRate,
	}, nil
}

func (b *Buffer) Channels() int   { return len(b.data) }
func (b *Buffer) Frames() int     { return b.frames }
func (b *Buffer) SampleRate() int { return b.sampleRate }
func (b *Buffer) Domain() Domain  { return b.domain }

// Duration in seconds.
func (b *Buffer) Duration() float64 {
	return float64(b.frames) / float64(b.sampleRate)
}

// Channel returns the backing slice of channel ch.
func (b *Buffer) Channel(ch int) []float32 {
	return b.data[ch]
}

// OffsetToFrame maps an offset in the buffer's domain to a fractional frame.
func (b *Buffer) OffsetToFrame(offset float64) float64 {
	last := float64(b.frames - 1)

	switch b.domain {
	case DomainEnvelope:
		return utils.Map(offset, 0, 1, 0, last)
	case DomainWaveShaper:
		return utils.Map(offset, -1, 1, 0, last)
	default:
		return offset
	}
}

// FrameToOffset is the inverse of OffsetToFrame.
func (b *Buffer) FrameToOffset(frame float64) float64 {
	last := float64(b.frames - 1)

	switch b.domain {
	case DomainEnvelope:
		return utils.Map(frame, 0, last, 0, 1)
	case DomainWaveShaper:
		return utils.Map(frame, 0, last, -1, 1)
	default:
		return frame
	}
}

// Get reads channel 0 at offset.
func (b *Buffer) Get(offset float64) float32 {
	return b.At(0, b.OffsetToFrame(offset))
}

// GetChannel reads channel ch at offset.
func (b *Buffer) GetChannel(ch int, offset float64) float32 {
	return b.At(ch, b.OffsetToFrame(offset))
}

// At reads channel ch at a fractional frame position. Channels wrap, so a
// mono buffer answers for every channel. NaN positions read as 0.
func (b *Buffer) At(ch int, frame float64) float32 {
	if math.IsNaN(frame) {
		return 0
	}

	data := b.data[ch%len(b.data)]
	last := b.frames - 1
	frame = utils.ClipFloat64(frame, 0, float64(last))
	i := int(frame)

	switch b.Interpolation {
	case InterpolateLinear:
		next := min(i+1, last)
		return utils.Lerp(data[i], data[next], float32(frame-float64(i)))

	case InterpolateCubic:
		y0 := data[max(i-1, 0)]
		y1 := data[i]
		y2 := data[min(i+1, last)]
		y3 := data[min(i+2, last)]
		return utils.CubicInterpolate(y0, y1, y2, y3, float32(frame-float64(i)))

	default:
		return data[i]
	}
}

// Fill sets every sample of every channel to v.
func (b *Buffer) Fill(v float32) {
	for _, ch := range b.data {
		for i := range ch {
			ch[i] = v
		}
	}
}

// FillFunc sets each frame to fn(offset), where offset is the frame mapped
// into the buffer's domain.
func (b *Buffer) FillFunc(fn func(offset float64) float32) {
	for f := range b.frames {
		v := fn(b.FrameToOffset(float64(f)))
		for _, ch := range b.data {
			ch[f] = v
		}
	}
}

// Set writes a single sample.
func (b *Buffer) Set(ch, frame int, v float32) error {
	if ch < 0 || ch >= len(b.data) || frame < 0 || frame >= b.frames {
		return fmt.Errorf("channel %d frame %d: %w", ch, frame, ErrOutOfRange)
	}

	b.data[ch][frame] = v
	return nil
}

// Write copies samples into channel ch starting at frame and returns how many
// fit before the end of the buffer.
func (b *Buffer) Write(ch, frame int, samples []float32) (int, error) {
	if ch < 0 || ch >= len(b.data) || frame < 0 || frame > b.frames {
		return 0, fmt.Errorf("channel %d frame %d: %w", ch, frame, ErrOutOfRange)
	}

	return copy(b.data[ch][frame:], samples), nil
}
