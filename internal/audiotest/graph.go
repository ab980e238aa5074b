// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"

	"github.com/ik5/audgraph/graph"
)

// Backend is a graph.Backend driven by the test: nothing renders until
// Render is called. It captures Input on every channel.
type Backend struct {
	Input float32

	// InitErr and StartErr are returned by Init and Start when set.
	InitErr  error
	StartErr error

	mu     sync.Mutex
	cfg    graph.BackendConfig
	render graph.RenderFunc
	closed bool
}

func (b *Backend) Init(cfg graph.BackendConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cfg = cfg
	return b.InitErr
}

func (b *Backend) Start(render graph.RenderFunc) error {
	if b.StartErr != nil {
		return b.StartErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.render = render
	return nil
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

func (b *Backend) ReadInput(dst [][]float32, frames int) int {
	for _, ch := range dst {
		for i := range ch[:frames] {
			ch[i] = b.Input
		}
	}

	return frames
}

// Config returns what the graph passed to Init.
func (b *Backend) Config() graph.BackendConfig {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.cfg
}

func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}

// Render runs one callback of frames frames and returns the output. It
// returns nil when the backend was never started.
func (b *Backend) Render(frames int) [][]float32 {
	b.mu.Lock()
	render, cfg := b.render, b.cfg
	b.mu.Unlock()

	if render == nil {
		return nil
	}

	out := make([][]float32, cfg.OutputChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	render(out, frames)

	return out
}

// Recorder is a graph.Processor that passes its first input through and
// keeps a copy of channel 0 of every frame it processed.
type Recorder struct {
	mu      sync.Mutex
	samples []float32
}

func (r *Recorder) Process(c *graph.Context, out [][]float32, frames int) {
	in := c.Input(0)

	r.mu.Lock()
	r.samples = append(r.samples, in[0][:frames]...)
	r.mu.Unlock()

	for ch, dst := range out {
		copy(dst[:frames], in[ch%len(in)])
	}
}

// Samples returns a copy of everything recorded so far.
func (r *Recorder) Samples() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]float32(nil), r.samples...)
}

// RecorderDef declares a single "in" input whose width the output tracks.
func RecorderDef() graph.Def {
	return graph.Def{
		Name:     "recorder",
		Inputs:   []graph.Input{{Name: "in"}},
		Channels: graph.Track(),
	}
}
