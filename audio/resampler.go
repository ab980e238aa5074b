// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audgraph/utils"
)

// Resampler streams from src to a target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
// Applies a one-pole low-pass on the input when downsampling.
type Resampler struct {
	src      Source
	srcRate  int
	dstRate  int
	channels int

	// history of the last four source frames, frame j lives at hist[j&3]
	hist  [4][]float32
	total int // source frames read so far
	eof   bool

	produced int // output frames so far, the read position is produced*srcRate/dstRate
	srcBuf   []float32

	useFilter   bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:         src,
		srcRate:     src.SampleRate(),
		dstRate:     dstRate,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		useFilter:   src.SampleRate() > dstRate,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}

	for i := range r.hist {
		r.hist[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

// Frames scales the length of the wrapped source to the output rate.
func (r *Resampler) Frames() int64 {
	n := Frames(r.src)
	if n < 0 || r.srcRate <= 0 {
		return -1
	}

	// output frame i reads source position i*srcRate/dstRate, stopping past the last frame
	return (n*int64(r.dstRate) + int64(r.srcRate) - 1) / int64(r.srcRate)
}

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// readFrame pulls one source frame into the history ring.
func (r *Resampler) readFrame() error {
	n, err := r.src.ReadSamples(r.srcBuf)
	if n == r.channels {
		frame := r.hist[r.total&3]
		copy(frame, r.srcBuf)

		if r.useFilter {
			if r.total == 0 {
				copy(r.filterState, frame)
			}
			for c := range frame {
				frame[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
				r.filterState[c] = frame[c]
			}
		}
		r.total++
	}

	switch {
	case err == io.EOF:
		r.eof = true
	case err != nil:
		return fmt.Errorf("%w", err)
	case n < r.channels:
		// short read without error: the source has nothing more for now
		r.eof = true
	}

	return nil
}

// frame returns source frame j clamped to the frames read so far.
func (r *Resampler) frame(j int) []float32 {
	if j < 0 {
		j = 0
	}
	if j > r.total-1 {
		j = r.total - 1
	}
	return r.hist[j&3]
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		step := r.produced * r.srcRate
		i := step / r.dstRate
		for !r.eof && r.total <= i+2 {
			if err := r.readFrame(); err != nil {
				return written * r.channels, err
			}
		}

		if i >= r.total {
			return written * r.channels, io.EOF
		}

		x := float32(step%r.dstRate) / float32(r.dstRate)
		y0, y1, y2, y3 := r.frame(i-1), r.frame(i), r.frame(i+1), r.frame(i+2)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(y0[c], y1[c], y2[c], y3[c], x)
		}

		written++
		r.produced++
	}

	return written * r.channels, nil
}
