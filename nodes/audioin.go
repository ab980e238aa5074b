// SPDX-License-Identifier: EPL-2.0

package nodes

import "github.com/ik5/audgraph/graph"

type audioIn struct{}

func (audioIn) Process(c *graph.Context, out [][]float32, frames int) {
	in := c.Capture()
	for ch, dst := range out {
		copy(dst[:frames], in[ch%len(in)])
	}
}

// NewAudioIn creates a node that outputs the audio captured by the
// backend, one channel per graph input channel. It reads silence while the
// backend captures nothing.
func NewAudioIn(g *graph.Graph) (graph.Node, error) {
	channels := g.Config().InputChannels
	if channels <= 0 {
		return graph.Node{}, ErrNoInput
	}

	return create(g, graph.Def{
		Name:     "audio-in",
		Channels: graph.Channels{MinOut: channels, MaxOut: channels},
	}, audioIn{})
}
