// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"fmt"
	"math"
)

// Onset detector defaults.
const (
	DefaultOnsetRatio      = 2.0
	DefaultOnsetFloor      = 0.02
	DefaultOnsetRefractory = 0.05 // seconds
)

func newEnergy(output string, sampleRate float64) (Analyzer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %v", sampleRate)
	}

	switch output {
	case "rms":
		return NewRMS(), nil
	case "onsets":
		return NewOnsets(sampleRate), nil
	default:
		return nil, fmt.Errorf("unknown output %q", output)
	}
}

// RMS reports the root mean square of every block, across all channels.
type RMS struct {
	out    [1]Feature
	values [1]float32
}

func NewRMS() *RMS {
	r := &RMS{}
	r.out[0].Values = r.values[:]

	return r
}

func (r *RMS) Process(samples [][]float32, frame uint64) []Feature {
	var sum float64
	var n int
	for _, ch := range samples {
		for _, v := range ch {
			sum += float64(v) * float64(v)
		}
		n += len(ch)
	}
	if n == 0 {
		return nil
	}

	r.values[0] = float32(math.Sqrt(sum / float64(n)))
	r.out[0].Frame = frame

	return r.out[:]
}

func (r *RMS) Reset() {}

// Onsets detects sudden rises in level. A fast peak follower is compared
// with a slow average; an onset is reported at the frame where the fast
// level exceeds Ratio times the slow one and Floor, at most once per
// refractory period.
type Onsets struct {
	Ratio float32
	Floor float32

	fast, slow  float32
	fastRelease float32
	slowCoef    float32
	refractory  uint64
	last        uint64
	fired       bool
	out         []Feature
	values      []float32
}

func NewOnsets(sampleRate float64) *Onsets {
	return &Onsets{
		Ratio:       DefaultOnsetRatio,
		Floor:       DefaultOnsetFloor,
		fastRelease: float32(math.Exp(-1 / (0.01 * sampleRate))),
		slowCoef:    float32(math.Exp(-1 / (0.1 * sampleRate))),
		refractory:  uint64(DefaultOnsetRefractory * sampleRate),
		out:         make([]Feature, 0, 16),
		values:      make([]float32, 16),
	}
}

func (o *Onsets) Process(samples [][]float32, frame uint64) []Feature {
	o.out = o.out[:0]
	if len(samples) == 0 {
		return o.out
	}

	frames := len(samples[0])
	for i := range frames {
		var level float32
		for _, ch := range samples {
			level = max(level, float32(math.Abs(float64(ch[i]))))
		}

		if level > o.fast {
			o.fast = level
		} else {
			o.fast *= o.fastRelease
		}

		at := frame + uint64(i)
		ready := !o.fired || at-o.last >= o.refractory
		if ready && o.fast > o.Floor && o.fast > o.Ratio*o.slow && len(o.out) < cap(o.out) {
			k := len(o.out)
			o.values[k] = o.fast
			o.out = append(o.out, Feature{Frame: at, Values: o.values[k : k+1]})
			o.last = at
			o.fired = true
		}

		o.slow = o.slowCoef*o.slow + (1-o.slowCoef)*level
	}

	return o.out
}

func (o *Onsets) Reset() {
	o.fast, o.slow = 0, 0
	o.fired = false
	o.last = 0
}
