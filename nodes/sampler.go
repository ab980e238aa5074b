// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"math"

	"github.com/ik5/audgraph/buffer"
	"github.com/ik5/audgraph/graph"
)

const (
	samplerBuffer = 0
	samplerRate   = 0
	samplerLoop   = 0
)

type sampler struct {
	phase   float64
	playing bool
}

// Trigger restarts playback from the first frame.
func (s *sampler) Trigger(*graph.Context, int, float32) {
	s.phase = 0
	s.playing = true
}

func (s *sampler) Process(c *graph.Context, out [][]float32, frames int) {
	b := c.Buffer(samplerBuffer)
	rate := c.Input(samplerRate)[0]
	loop := c.Property(samplerLoop).Float != 0
	length := float64(b.Frames())
	// Rates are relative to the buffer's own sample rate.
	scale := float64(b.SampleRate()) / c.SampleRate()

	for i := range frames {
		if !s.playing {
			fillFrame(out, i, 0)
			continue
		}

		for ch, dst := range out {
			dst[i] = b.At(ch, s.phase)
		}

		s.phase += float64(rate[i]) * scale
		if s.phase >= length || s.phase < 0 {
			if !loop {
				s.playing = false
				continue
			}
			s.phase = math.Mod(s.phase, length)
			if s.phase < 0 {
				s.phase += length
			}
		}
	}
}

// NewSampler creates a node that plays b at the given rate, once per
// trigger or continuously when the "loop" property is non-zero. It plays
// from the start as soon as it is rendered. Its output width is the channel
// count of b; a nil b leaves a mono node whose "buffer" must be set before
// it is rendered. Negative rates play backwards.
func NewSampler(g *graph.Graph, b *buffer.Buffer, rate graph.Signal, loop bool) (graph.Node, error) {
	channels := 1
	if b != nil {
		channels = b.Channels()
	}

	var l float32
	if loop {
		l = 1
	}

	def := graph.Def{
		Name:       "sampler",
		Inputs:     []graph.Input{{Name: "rate", Default: 1}},
		Buffers:    []graph.BufferSlot{{Name: "buffer", Default: b}},
		Properties: []graph.PropertySlot{{Name: "loop", Initial: graph.Float(l)}},
		Triggers:   []string{graph.DefaultTrigger},
		Channels:   graph.Channels{MinIn: 1, MaxIn: 1, MinOut: channels, MaxOut: channels},
	}

	return create(g, def, &sampler{playing: true}, binding{"rate", rate})
}
