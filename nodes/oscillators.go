// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"math"

	"github.com/ik5/audgraph/graph"
)

type waveform func(phase float64) float32

// oscillator keeps one phase per channel so that a stereo frequency input
// gives two independent voices.
type oscillator struct {
	shape waveform
	phase []float64
}

func (o *oscillator) Process(c *graph.Context, out [][]float32, frames int) {
	freq := c.Input(0)
	sr := c.SampleRate()

	for ch, dst := range out {
		f := freq[ch%len(freq)]
		ph := o.phase[ch]
		for i := range dst[:frames] {
			dst[i] = o.shape(ph)
			ph += float64(f[i]) / sr
			ph -= math.Floor(ph)
		}
		o.phase[ch] = ph
	}
}

// Trigger resets every phase to 0.
func (o *oscillator) Trigger(*graph.Context, int, float32) {
	clear(o.phase)
}

func newOscillator(g *graph.Graph, name string, shape waveform, frequency graph.Signal) (graph.Node, error) {
	def := graph.Def{
		Name:     name,
		Inputs:   []graph.Input{{Name: "frequency", Default: 440}},
		Triggers: []string{graph.DefaultTrigger},
		Channels: graph.Track(),
	}
	osc := &oscillator{
		shape: shape,
		phase: make([]float64, g.Config().MaxChannels),
	}

	return create(g, def, osc, binding{"frequency", frequency})
}

// NewSine creates a sine oscillator. A nil frequency uses 440 Hz.
func NewSine(g *graph.Graph, frequency graph.Signal) (graph.Node, error) {
	return newOscillator(g, "sine", func(ph float64) float32 {
		return float32(math.Sin(2 * math.Pi * ph))
	}, frequency)
}

// NewTriangle creates a triangle oscillator starting at -1.
func NewTriangle(g *graph.Graph, frequency graph.Signal) (graph.Node, error) {
	return newOscillator(g, "triangle", func(ph float64) float32 {
		if ph < 0.5 {
			return float32(4*ph - 1)
		}
		return float32(3 - 4*ph)
	}, frequency)
}

type impulse struct {
	remaining float64
}

func (p *impulse) Process(c *graph.Context, out [][]float32, frames int) {
	freq := c.Input(0)[0]
	sr := c.SampleRate()

	for i := range frames {
		var v float32
		if p.remaining <= 1e-9 {
			v = 1
			p.remaining += 1
		}
		p.remaining -= max(float64(freq[i]), 0) / sr
		fillFrame(out, i, v)
	}
}

func (p *impulse) Trigger(*graph.Context, int, float32) {
	p.remaining = 0
}

// NewImpulse creates a mono clock that outputs 1 on the first frame of
// every period and 0 otherwise. It fires on its first frame.
func NewImpulse(g *graph.Graph, frequency graph.Signal) (graph.Node, error) {
	def := graph.Def{
		Name:     "impulse",
		Inputs:   []graph.Input{{Name: "frequency", Default: 1}},
		Triggers: []string{graph.DefaultTrigger},
		Channels: mono(),
	}

	return create(g, def, &impulse{}, binding{"frequency", frequency})
}
