// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"math"
	"testing"

	"github.com/ik5/audgraph/graph"
)

func newGraph(t testing.TB, mods ...func(*graph.Config)) *graph.Graph {
	t.Helper()

	cfg := graph.DefaultConfig()
	cfg.OutputChannels = 1
	cfg.BlockSize = 64
	for _, m := range mods {
		m(&cfg)
	}

	g, err := graph.New(cfg)
	if err != nil {
		t.Fatalf("graph.New() error = %v", err)
	}

	return g
}

// render adds n to the outputs and renders frames of it.
func render(t testing.TB, g *graph.Graph, n graph.Node, frames int) [][]float32 {
	t.Helper()

	if err := g.AddOutput(n); err != nil {
		t.Fatalf("AddOutput() error = %v", err)
	}

	return renderMore(g, frames)
}

func renderMore(g *graph.Graph, frames int) [][]float32 {
	out := make([][]float32, g.Config().OutputChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	g.Render(out, frames)

	return out
}

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func property(t testing.TB, n graph.Node, name string) float32 {
	t.Helper()

	p, err := n.Property(name)
	if err != nil {
		t.Fatalf("Property(%q) error = %v", name, err)
	}

	return p.Float
}
