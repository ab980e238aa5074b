// SPDX-License-Identifier: EPL-2.0

package nodes

import (
	"github.com/ik5/audgraph/buffer"
	"github.com/ik5/audgraph/graph"
	"github.com/ik5/audgraph/utils"
)

// DefaultMaxGrainPool is the grain capacity of a Granulator unless set
// otherwise.
const DefaultMaxGrainPool = 2048

const (
	granClock = iota
	granPos
	granDuration
	granRate
	granPan
	granMaxGrains
)

const (
	granBuffer = iota
	granEnvelope
)

const (
	granActive = iota
	granRefused
)

// grain reads length frames of buf starting at start, in the direction of
// rate. buf is the buffer bound when the grain spawned. Frozen grains
// (rate 0) still age one frame per frame.
type grain struct {
	buf    *buffer.Buffer
	start  float64
	length float64
	done   float64
	step   float64
	dir    float64
	lo     int
	gLo    float32
	gHi    float32
}

type granulator struct {
	pool     []grain
	free     []int32
	active   []int32
	edge     graph.EdgeDetector
	refused  uint64
	envelope *buffer.Buffer
}

func newGranulator(capacity int) *granulator {
	gr := &granulator{
		pool:   make([]grain, capacity),
		free:   make([]int32, capacity),
		active: make([]int32, 0, capacity),
	}
	// Pop from the end, so slot 0 is used first.
	for i := range gr.free {
		gr.free[i] = int32(capacity - 1 - i)
	}

	return gr
}

// spawn starts a grain with the inputs of frame i of the current part.
func (gr *granulator) spawn(c *graph.Context, i int, channels int) {
	limit := min(int(c.InputValue(granMaxGrains, i)), len(gr.pool))
	length := float64(utils.Sanitize(c.InputValue(granDuration, i))) * c.SampleRate()
	if len(gr.active) >= limit || length <= 0 || len(gr.free) == 0 {
		gr.refused++
		return
	}

	rate := float64(utils.Sanitize(c.InputValue(granRate, i)))
	step, dir := rate, 1.0
	if rate < 0 {
		step, dir = -rate, -1
	}
	if rate == 0 {
		step, dir = 1, 0
	}

	k := gr.free[len(gr.free)-1]
	gr.free = gr.free[:len(gr.free)-1]

	lo, gLo, gHi := PanGains(c.InputValue(granPan, i), channels)
	gr.pool[k] = grain{
		buf:    c.Buffer(granBuffer),
		start:  float64(utils.Sanitize(c.InputValue(granPos, i))),
		length: length,
		step:   step,
		dir:    dir,
		lo:     lo,
		gLo:    gLo,
		gHi:    gHi,
	}
	gr.active = append(gr.active, k)
}

// Trigger spawns a grain at the trigger's frame.
func (gr *granulator) Trigger(c *graph.Context, _ int, _ float32) {
	gr.spawn(c, 0, c.NumOutputChannels())
}

func (gr *granulator) Process(c *graph.Context, out [][]float32, frames int) {
	env := c.Buffer(granEnvelope)
	if env == nil {
		env = gr.envelope
	}
	clock := c.Input(granClock)[0]

	for _, ch := range out {
		clear(ch[:frames])
	}

	for i := range frames {
		if gr.edge.Rising(clock[i]) {
			gr.spawn(c, i, len(out))
		}

		for _, k := range gr.active {
			g := &gr.pool[k]
			if g.done >= g.length {
				continue
			}

			v := g.buf.At(0, g.start+g.done*g.dir) * env.Get(g.done/g.length)
			out[g.lo][i] += v * g.gLo
			if g.lo+1 < len(out) {
				out[g.lo+1][i] += v * g.gHi
			}
			g.done += g.step
		}
	}

	gr.reap()

	c.SetProperty(granActive, graph.Float(float32(len(gr.active))))
	c.SetProperty(granRefused, graph.Float(float32(gr.refused)))
}

// reap returns finished grains to the free list, keeping the order of the
// rest.
func (gr *granulator) reap() {
	live := gr.active[:0]
	for _, k := range gr.active {
		if gr.pool[k].done >= gr.pool[k].length {
			gr.pool[k].buf = nil
			gr.free = append(gr.free, k)
			continue
		}
		live = append(live, k)
	}
	gr.active = live
}

// GranulatorOptions configures NewGranulator.
type GranulatorOptions struct {
	// Channels is the output width.
	// Default: 2
	Channels int

	// MaxGrainPool is the number of grains that can ever be active at once.
	// The max_grains input can only lower it.
	// Default: DefaultMaxGrainPool
	MaxGrainPool int
}

// NewGranulator creates a granular player reading from b.
//
// A grain is spawned on every rising edge of clock and on every trigger. It
// captures pos (frames into b), duration (seconds), rate and pan at that
// frame, plays duration*sampleRate frames shaped by the "envelope" buffer
// (a Hanning window unless set) and is panned over the outputs with
// PanGains. Spawns beyond max_grains active grains are refused and counted.
//
// Properties "active" and "refused" report the live grain count and the
// total number of refused spawns after every block.
func NewGranulator(g *graph.Graph, b *buffer.Buffer, clock, pos, duration, rate graph.Signal, opts GranulatorOptions) (graph.Node, error) {
	if opts.Channels == 0 {
		opts.Channels = 2
	}
	if opts.MaxGrainPool == 0 {
		opts.MaxGrainPool = DefaultMaxGrainPool
	}
	if opts.Channels < 0 {
		return graph.Node{}, ErrInvalidChannels
	}
	if opts.MaxGrainPool < 0 {
		return graph.Node{}, ErrInvalidPool
	}

	gr := newGranulator(opts.MaxGrainPool)
	gr.envelope = buffer.NewEnvelope(buffer.ShapeHanning, buffer.DefaultEnvelopeLength)

	def := graph.Def{
		Name: "granulator",
		Inputs: []graph.Input{
			{Name: "clock"},
			{Name: "pos"},
			{Name: "duration", Default: 0.1},
			{Name: "rate", Default: 1},
			{Name: "pan", Default: 0.5},
			{Name: "max_grains", Default: float32(opts.MaxGrainPool)},
		},
		Buffers: []graph.BufferSlot{
			{Name: "buffer", Default: b},
			{Name: "envelope", Optional: true},
		},
		Properties: []graph.PropertySlot{
			{Name: "active", Initial: graph.Float(0)},
			{Name: "refused", Initial: graph.Float(0)},
		},
		Triggers: []string{graph.DefaultTrigger},
		Channels: graph.Channels{MinIn: 1, MaxIn: 1, MinOut: opts.Channels, MaxOut: opts.Channels},
	}

	return create(g, def, gr,
		binding{"clock", clock},
		binding{"pos", pos},
		binding{"duration", duration},
		binding{"rate", rate},
	)
}
