// SPDX-License-Identifier: EPL-2.0

package nodes

import "github.com/ik5/audgraph/graph"

type binding struct {
	name string
	s    graph.Signal
}

// create adds a node and connects the non-nil signals. The node is removed
// again if any connection fails.
func create(g *graph.Graph, def graph.Def, proc graph.Processor, inputs ...binding) (graph.Node, error) {
	n, err := g.NewNode(def, proc)
	if err != nil {
		return graph.Node{}, err
	}

	for _, in := range inputs {
		if in.s == nil {
			continue
		}
		if err := n.SetInput(in.name, in.s); err != nil {
			_ = n.Remove()
			return graph.Node{}, err
		}
	}

	return n, nil
}

func mono() graph.Channels {
	return graph.Channels{MinOut: 1, MaxOut: 1}
}

// fillFrame writes v to frame i of every channel.
func fillFrame(out [][]float32, i int, v float32) {
	for _, ch := range out {
		ch[i] = v
	}
}
