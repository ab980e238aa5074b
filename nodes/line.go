// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"math"

	"github.com/ik5/audgraph/graph"
)

const (
	lineTime = iota
	lineFrom
	lineTo
)

type line struct {
	started  bool
	step     int
	target   int
	from, to float32
}

func (l *line) Process(c *graph.Context, out [][]float32, frames int) {
	for i := range frames {
		if !l.started {
			l.started = true
			l.step = 0
			l.from = c.InputValue(lineFrom, i)
			l.to = c.InputValue(lineTo, i)
			l.target = int(math.Round(float64(c.InputValue(lineTime, i)) * c.SampleRate()))
		}

		v := l.to
		if l.step < l.target {
			v = l.from + (l.to-l.from)*float32(l.step)/float32(l.target)
			l.step++
		}
		fillFrame(out, i, v)
	}
}

// Trigger restarts the ramp, sampling time, from and to again.
func (l *line) Trigger(*graph.Context, int, float32) {
	l.started = false
}

// NewLine creates a mono ramp from "from" to "to" over "time" seconds that
// then holds "to". Nil signals use time 1, from 0 and to 1.
func NewLine(g *graph.Graph, time, from, to graph.Signal) (graph.Node, error) {
	def := graph.Def{
		Name: "line",
		Inputs: []graph.Input{
			{Name: "time", Default: 1},
			{Name: "from", Default: 0},
			{Name: "to", Default: 1},
		},
		Triggers: []string{graph.DefaultTrigger},
		Channels: mono(),
	}

	return create(g, def, &line{},
		binding{"time", time},
		binding{"from", from},
		binding{"to", to},
	)
}
