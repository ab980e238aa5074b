// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"math"

	"github.com/ik5/audgraph/analysis"
	"github.com/ik5/audgraph/graph"
)

type analyzer struct {
	a    analysis.Analyzer
	hold float32
}

// Process outputs the first value of the latest feature, holding it until
// the next one. NaN values keep the previous value.
func (n *analyzer) Process(c *graph.Context, out [][]float32, frames int) {
	for _, f := range n.a.Process(c.Input(0), c.Clock()) {
		if len(f.Values) > 0 && !math.IsNaN(float64(f.Values[0])) {
			n.hold = f.Values[0]
		}
	}

	for _, ch := range out {
		for i := range ch[:frames] {
			ch[i] = n.hold
		}
	}
}

// NewAnalysis creates a mono node whose output follows the first value of
// the features produced by the analyzer named id, loaded from reg (the
// default registry when nil).
func NewAnalysis(g *graph.Graph, reg *analysis.Registry, id string, input graph.Signal) (graph.Node, error) {
	a, err := load(g, reg, id)
	if err != nil {
		return graph.Node{}, err
	}

	def := graph.Def{
		Name:       "analysis",
		Inputs:     []graph.Input{{Name: "input"}},
		Properties: []graph.PropertySlot{{Name: "plugin", Initial: graph.String(id)}},
		Channels:   mono(),
	}

	return create(g, def, &analyzer{a: a}, binding{"input", input})
}

type eventExtractor struct {
	a analysis.Analyzer
}

// Process queues the frame of every feature for the timestamps property.
// Features whose first value is NaN are dropped.
func (n *eventExtractor) Process(c *graph.Context, out [][]float32, frames int) {
	for _, f := range n.a.Process(c.Input(0), c.Clock()) {
		if len(f.Values) > 0 && math.IsNaN(float64(f.Values[0])) {
			continue
		}
		c.AppendProperty(0, float32(f.Frame))
	}

	for _, ch := range out {
		clear(ch[:frames])
	}
}

// NewEventExtractor creates a node that records the sample positions of
// the features produced by the analyzer named id in its "timestamps" array
// property. Its output is silent; add it to the output set so it runs.
func NewEventExtractor(g *graph.Graph, reg *analysis.Registry, id string, input graph.Signal) (graph.Node, error) {
	a, err := load(g, reg, id)
	if err != nil {
		return graph.Node{}, err
	}

	def := graph.Def{
		Name:       "events",
		Inputs:     []graph.Input{{Name: "input"}},
		Properties: []graph.PropertySlot{{Name: "timestamps", Initial: graph.Array()}},
		Channels:   mono(),
	}

	return create(g, def, &eventExtractor{a: a}, binding{"input", input})
}

func load(g *graph.Graph, reg *analysis.Registry, id string) (analysis.Analyzer, error) {
	if reg == nil {
		reg = analysis.DefaultRegistry()
	}

	return reg.Load(id, float64(g.Config().SampleRate))
}
