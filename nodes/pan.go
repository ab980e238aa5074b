// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"math"

	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/utils"
)

// PanGains returns the equal-power gains for a position in [0, 1] on a
// line of n speakers, 0 being the first and 1 the last. Only the two
// speakers around the position are non-zero: lo gets gLo and lo+1 gets gHi.
// With one speaker the gain is 1; with two this is the usual equal-power
// stereo law.
func PanGains(pan float32, n int) (lo int, gLo, gHi float32) {
	if n <= 1 {
		return 0, 1, 0
	}

	pos := float64(utils.Clip(utils.Sanitize(pan), 0, 1)) * float64(n-1)
	lo = min(int(pos), n-2)
	frac := (pos - float64(lo)) * math.Pi / 2

	return lo, float32(math.Cos(frac)), float32(math.Sin(frac))
}

type pan struct{}

func (pan) Process(c *graph.Context, out [][]float32, frames int) {
	in := c.Input(0)[0]
	position := c.Input(1)[0]

	for i := range frames {
		lo, gLo, gHi := PanGains(position[i], len(out))
		for ch, dst := range out {
			switch ch {
			case lo:
				dst[i] = in[i] * gLo
			case lo + 1:
				dst[i] = in[i] * gHi
			default:
				dst[i] = 0
			}
		}
	}
}

// NewPan spreads a mono input over channels outputs. A nil pan centres the
// signal.
func NewPan(g *graph.Graph, channels int, input, position graph.Signal) (graph.Node, error) {
	if channels <= 0 {
		return graph.Node{}, ErrInvalidChannels
	}

	def := graph.Def{
		Name: "pan",
		Inputs: []graph.Input{
			{Name: "input"},
			{Name: "pan", Default: 0.5},
		},
		Channels: graph.Channels{MinIn: 1, MaxIn: 1, MinOut: channels, MaxOut: channels},
	}

	return create(g, def, pan{}, binding{"input", input}, binding{"pan", position})
}
