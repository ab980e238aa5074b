// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func newTestGraph(t testing.TB, mods ...func(*Config)) *Graph {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BlockSize = 64
	cfg.MonitorInterval = 5 * time.Millisecond
	for _, m := range mods {
		m(&cfg)
	}

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return g
}

// fill outputs value+ch on channel ch.
type fill struct {
	value float32
}

func (f fill) Process(_ *Context, out [][]float32, frames int) {
	for ch, dst := range out {
		for i := range dst[:frames] {
			dst[i] = f.value + float32(ch)
		}
	}
}

// newSource creates a node with a fixed output width.
func newSource(t testing.TB, g *Graph, channels int, value float32) Node {
	t.Helper()

	n, err := g.NewNode(Def{
		Name:     "source",
		Channels: Channels{MinOut: channels, MaxOut: channels},
	}, fill{value: value})
	if err != nil {
		t.Fatalf("NewNode() error = %v", err)
	}

	return n
}

// probe passes input "in" through and records triggers and process calls.
type probe struct {
	mu       sync.Mutex
	triggers []uint64
	values   []float32
	parts    []int
}

func (p *probe) Process(c *Context, out [][]float32, frames int) {
	in := c.Input(0)
	for ch, dst := range out {
		copy(dst[:frames], in[ch%len(in)])
	}
	p.mu.Lock()
	p.parts = append(p.parts, frames)
	p.mu.Unlock()
}

func (p *probe) Trigger(c *Context, _ int, value float32) {
	p.mu.Lock()
	p.triggers = append(p.triggers, c.Clock())
	p.values = append(p.values, value)
	p.mu.Unlock()
}

func probeDef() Def {
	return Def{
		Name:       "probe",
		Inputs:     []Input{{Name: "in"}},
		Buffers:    []BufferSlot{{Name: "table", Optional: true}},
		Properties: []PropertySlot{{Name: "label", Initial: String("probe")}, {Name: "hits", Initial: Array()}},
		Triggers:   []string{DefaultTrigger, "reset"},
		Channels:   Track(),
	}
}

func newProbe(t testing.TB, g *Graph) (Node, *probe) {
	t.Helper()

	p := &probe{}
	n, err := g.NewNode(probeDef(), p)
	if err != nil {
		t.Fatalf("NewNode() error = %v", err)
	}

	return n, p
}

func planar(channels, frames int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}

	return out
}

// loopBackend renders blocks on its own goroutine as fast as a short sleep
// allows.
type loopBackend struct {
	initErr  error
	startErr error

	cfg    BackendConfig
	quit   chan struct{}
	done   chan struct{}
	closed int
}

func (b *loopBackend) Init(cfg BackendConfig) error {
	b.cfg = cfg
	return b.initErr
}

func (b *loopBackend) Start(render RenderFunc) error {
	if b.startErr != nil {
		return b.startErr
	}

	b.quit = make(chan struct{})
	b.done = make(chan struct{})
	out := planar(b.cfg.OutputChannels, b.cfg.BlockSize)

	go func() {
		defer close(b.done)
		for {
			select {
			case <-b.quit:
				return
			default:
			}
			render(out, b.cfg.BlockSize)
			time.Sleep(100 * time.Microsecond)
		}
	}()

	return nil
}

func (b *loopBackend) Close() error {
	b.closed++
	if b.quit != nil {
		close(b.quit)
		<-b.done
		b.quit = nil
	}

	return nil
}

// failingBackend reports an error through ErrorReporter.
type failingBackend struct {
	loopBackend
	errc chan error
}

func (b *failingBackend) Err() <-chan error { return b.errc }

// captureBackend feeds a constant into the graph input.
type captureBackend struct {
	loopBackend
	value float32
}

func (b *captureBackend) ReadInput(dst [][]float32, frames int) int {
	for _, ch := range dst {
		for i := range ch[:frames] {
			ch[i] = b.value
		}
	}

	return frames
}

var errBackendBroken = errors.New("backend broken")

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

// captureTap copies the captured input to its output.
type captureTap struct {
	mu   sync.Mutex
	last float32
}

func (c *captureTap) Process(ctx *Context, out [][]float32, frames int) {
	in := ctx.Capture()
	copy(out[0][:frames], in[0])
	c.mu.Lock()
	c.last = in[0][frames-1]
	c.mu.Unlock()
}
