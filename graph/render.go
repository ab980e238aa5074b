// SPDX-License-Identifier: EPL-2.0

package graph

import "time"

type dfsFrame struct {
	n *node
	i int
}

type report struct {
	node   string
	buffer string
}

// Render computes frames of output into out, one slice per output bus
// channel, each at least frames long. Frame counts above the block size
// are rendered as consecutive blocks. Backends call Render from their
// audio callback; it may also be called directly while the graph is
// stopped, for offline rendering.
func (g *Graph) Render(out [][]float32, frames int) {
	for pos := 0; pos < frames; {
		n := min(frames-pos, g.cfg.BlockSize)
		g.renderBlock(out, pos, n)
		pos += n
	}
}

func (g *Graph) renderBlock(out [][]float32, pos, frames int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var started time.Time
	if g.running {
		started = time.Now()
	}

	g.drainEdits()
	g.negotiate()
	g.reorder()

	clock := g.clock.Load()
	g.dispatch(clock, frames)
	g.readCapture(frames)

	for _, n := range g.order {
		g.process(n, clock, frames)
	}
	g.commitAppends()

	for ch := range out {
		clear(out[ch][pos : pos+frames])
	}
	for _, id := range g.outputs {
		n := g.entries[id.index].n
		for ch := range min(len(out), n.numOut) {
			dst := out[ch][pos : pos+frames]
			src := n.storage[ch][:frames]
			for f := range dst {
				dst[f] += src[f]
			}
		}
	}

	g.clock.Add(uint64(frames))

	if g.running {
		deadline := time.Duration(frames) * time.Second / time.Duration(g.cfg.SampleRate)
		if time.Since(started) > deadline {
			g.dropouts.Add(1)
		}
	}
}

// commitAppends publishes the array values queued by processors during the
// block.
func (g *Graph) commitAppends() {
	for _, n := range g.appending {
		for _, a := range n.appended {
			p := &n.props[a.index]
			p.Kind = PropertyArray
			p.Array = append(p.Array, a.value)
		}
		n.appended = n.appended[:0]
	}
	clear(g.appending)
	g.appending = g.appending[:0]
}

// reorder recomputes the processing order when the topology changed: a
// depth-first post-order from the outputs, so producers come before their
// consumers. An edge back to a node that is still being visited closes a
// feedback loop and reads the previous block.
func (g *Graph) reorder() {
	if !g.orderDirty {
		return
	}
	g.orderDirty = false

	g.epoch++
	if g.epoch == 0 {
		g.epoch = 1
	}
	g.order = g.order[:0]

	for _, id := range g.outputs {
		if g.valid(id) {
			g.visit(g.entries[id.index].n)
		}
	}
}

func (g *Graph) visit(root *node) {
	if root.mark == g.epoch {
		return
	}
	root.mark = g.epoch
	g.stack = append(g.stack[:0], dfsFrame{n: root})

	for len(g.stack) > 0 {
		top := &g.stack[len(g.stack)-1]
		if top.i < len(top.n.slots) {
			src := top.n.slots[top.i].src
			top.i++
			if src.IsZero() || !g.valid(src) {
				continue
			}
			p := g.entries[src.index].n
			if p.mark == g.epoch {
				continue
			}
			p.mark = g.epoch
			g.stack = append(g.stack, dfsFrame{n: p})
			continue
		}

		g.order = append(g.order, top.n)
		g.stack = g.stack[:len(g.stack)-1]
	}
}

func (g *Graph) readCapture(frames int) {
	if len(g.capture) == 0 {
		return
	}

	got := 0
	if g.input != nil {
		g.captureSub = g.captureSub[:len(g.capture)]
		for ch, v := range g.capture {
			g.captureSub[ch] = v[:frames]
		}
		got = min(max(g.input.ReadInput(g.captureSub, frames), 0), frames)
	}
	for _, v := range g.capture {
		clear(v[got:frames])
	}
}

func (g *Graph) process(n *node, clock uint64, frames int) {
	c := &g.ctx
	c.n = n
	c.clock = clock

	if name, missing := n.missingBuffer(); missing {
		for ch := range n.numOut {
			clear(n.storage[ch][:frames])
		}
		n.events = n.events[:0]
		if !n.reported {
			n.reported = true
			select {
			case g.reports <- report{node: n.name, buffer: name}:
			default:
			}
		}
		return
	}

	g.prepareInputs(n, frames)

	start := 0
	for _, ev := range n.events {
		if ev.at < clock || ev.at >= clock+uint64(frames) {
			continue
		}
		at := int(ev.at - clock)
		if at > start {
			g.run(n, start, at)
			start = at
		}
		if n.trig != nil {
			c.offset, c.frames = start, frames-start
			n.trig.Trigger(c, ev.index, ev.value)
		}
	}
	n.events = n.events[:0]

	if start < frames {
		g.run(n, start, frames)
	}
}

func (g *Graph) run(n *node, from, to int) {
	c := &g.ctx
	c.offset, c.frames = from, to-from

	n.outSub = n.outSub[:n.numOut]
	for ch := range n.outSub {
		n.outSub[ch] = n.storage[ch][from:to]
	}
	n.proc.Process(c, n.outSub, to-from)
}
