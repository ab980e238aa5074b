// SPDX-License-Identifier: EPL-2.0

package graph

import "slices"

func (g *Graph) markDirty(n *node) {
	if n.inQueue || n.freed {
		return
	}
	n.inQueue = true
	g.work = append(g.work, n)
}

// negotiate recomputes channel widths for every dirty node, percolating
// output width changes to consumers. The pass is bounded so that feedback
// loops whose widths keep changing still terminate. The caller holds g.mu.
func (g *Graph) negotiate() {
	if len(g.work) == 0 {
		return
	}

	budget := (g.live + 1) * (g.cfg.MaxChannels + 1)
	head := 0
	for head < len(g.work) && budget > 0 {
		budget--

		n := g.work[head]
		head++
		n.inQueue = false
		if n.freed {
			continue
		}

		in, out := g.widths(n)
		if in == n.numIn && out == n.numOut {
			continue
		}
		changed := out != n.numOut
		n.numIn, n.numOut = in, out
		ensureStorage(n, g.block)

		if changed {
			for _, ref := range n.consumers {
				if c, err := g.lookup(ref.node); err == nil {
					g.markDirty(c)
				}
			}
		}
	}

	for _, n := range g.work[head:] {
		n.inQueue = false
	}
	clear(g.work)
	g.work = g.work[:0]
	g.orderDirty = true
}

func (g *Graph) width(id NodeID) int {
	if id.IsZero() || !g.valid(id) {
		return 1
	}

	return g.entries[id.index].n.numOut
}

// widths computes the input and output widths of n from its producers.
func (g *Graph) widths(n *node) (in, out int) {
	maxCh := g.cfg.MaxChannels

	if n.def.Multiplex {
		sum := 0
		for _, s := range n.slots {
			sum += g.width(s.src)
		}
		sum = clamp(sum, 1, maxCh)
		return sum, sum
	}

	widest := 1
	for _, s := range n.slots {
		widest = max(widest, g.width(s.src))
	}

	ch := n.def.Channels
	in = clamp(widest, lower(ch.MinIn), upper(ch.MaxIn, maxCh))
	out = clamp(in, lower(ch.MinOut), upper(ch.MaxOut, maxCh))

	return clamp(in, 1, maxCh), clamp(out, 1, maxCh)
}

func lower(v int) int {
	if v <= 0 {
		return 1
	}

	return v
}

func upper(v, maxCh int) int {
	if v <= 0 || v > maxCh {
		return maxCh
	}

	return v
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}

	return min(max(v, lo), hi)
}

// ensureStorage grows the output storage and down-mix scratch of n to its
// negotiated widths, taking each new block buffer from alloc.
func ensureStorage(n *node, alloc func() []float32) {
	for len(n.storage) < n.numOut {
		n.storage = append(n.storage, alloc())
	}

	// inputs of a node without automix are never down-mixed
	if n.def.NoAutomix {
		return
	}
	for i := range n.slots {
		s := &n.slots[i]
		for len(s.mix) < n.numIn {
			s.mix = append(s.mix, alloc())
		}
	}
}

func (g *Graph) newBlock() []float32 {
	return make([]float32, g.cfg.BlockSize)
}

// block hands out a spare block buffer, allocating only when the spares
// reserved by the control goroutines ran out. The caller holds g.mu.
func (g *Graph) block() []float32 {
	k := len(g.spare)
	if k == 0 {
		return g.newBlock()
	}
	b := g.spare[k-1]
	g.spare = g.spare[:k-1]

	return b
}

// recycle returns the buffers of a freed node to the spares. The caller
// holds g.mu.
func (g *Graph) recycle(n *node) {
	put := func(b []float32) {
		if len(g.spare) < cap(g.spare) {
			clear(b)
			g.spare = append(g.spare, b)
		}
	}
	for _, b := range n.storage {
		put(b)
	}
	for i := range n.slots {
		for _, b := range n.slots[i].mix {
			put(b)
		}
	}
}

// reserve tops up the spare block buffers and the pending trigger list so
// that the next block can apply queued edits and triggers without
// allocating. It runs on a control goroutine holding g.mu.
func (g *Graph) reserve() {
	for len(g.spare) < cap(g.spare) {
		g.spare = append(g.spare, g.newBlock())
	}
	if q := 2 * g.cfg.TriggerQueueSize; cap(g.pending)-len(g.pending) < q {
		g.pending = slices.Grow(g.pending, q)
	}
	g.work = slices.Grow(g.work, g.live+8)
}

// prepareInputs points every input view of n at the first frames samples
// of its producer, up-mixing or down-mixing to the node's input width.
func (g *Graph) prepareInputs(n *node, frames int) {
	for i := range n.slots {
		s := &n.slots[i]

		if s.src.IsZero() || !g.valid(s.src) {
			w := n.numIn
			if n.def.NoAutomix {
				w = 1
			}
			s.view = s.view[:w]
			for ch := range s.view {
				s.view[ch] = s.defaultBuf[:frames]
			}
			continue
		}

		p := g.entries[s.src.index].n
		pw := p.numOut
		rw := n.numIn
		if n.def.NoAutomix {
			rw = pw
		}
		s.view = s.view[:rw]

		switch {
		case pw == rw:
			for ch := range s.view {
				s.view[ch] = p.storage[ch][:frames]
			}
		case pw < rw:
			for ch := range s.view {
				s.view[ch] = p.storage[ch%pw][:frames]
			}
		default:
			for ch := range s.view {
				m := s.mix[ch][:frames]
				copy(m, p.storage[ch][:frames])
				count := float32(1)
				for pc := ch + rw; pc < pw; pc += rw {
					src := p.storage[pc][:frames]
					for f := range m {
						m[f] += src[f]
					}
					count++
				}
				if count > 1 {
					scale := 1 / count
					for f := range m {
						m[f] *= scale
					}
				}
				s.view[ch] = m
			}
		}
	}
}
