// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"fmt"
	"slices"
)

type edit struct {
	apply func() error
	done  chan error
}

type event struct {
	at    uint64
	node  NodeID
	index int
	value float32
}

// do applies fn under the graph lock. While running, fn is handed to the
// render goroutine and applied at the next block boundary.
func (g *Graph) do(fn func() error) error {
	g.mu.Lock()
	if !g.running {
		defer g.mu.Unlock()
		return fn()
	}
	stop := g.stop
	g.reserve()
	g.mu.Unlock()

	e := edit{apply: fn, done: make(chan error, 1)}
	select {
	case g.edits <- e:
	case <-stop:
		return g.do(fn)
	}

	select {
	case err := <-e.done:
		return err
	case <-stop:
		g.mu.Lock()
		g.drainEdits()
		g.mu.Unlock()
		return <-e.done
	}
}

// drainEdits applies every queued edit. The caller holds g.mu.
func (g *Graph) drainEdits() {
	for {
		select {
		case e := <-g.edits:
			e.done <- e.apply()
		default:
			return
		}
	}
}

// source is a resolved Signal. fresh is set for values that still need a
// constant node.
type source struct {
	id    NodeID
	fresh *node
}

// prepare resolves s on the calling goroutine so that any allocation
// happens outside the render path.
func (g *Graph) prepare(s Signal) (source, error) {
	switch v := s.(type) {
	case nil:
		return source{}, nil
	case Node:
		if err := g.owns(v); err != nil {
			return source{}, err
		}
		// room for the back-reference connect will add
		g.mu.Lock()
		if p, err := g.lookup(v.id); err == nil {
			p.consumers = slices.Grow(p.consumers, 1)
		}
		g.mu.Unlock()
		return source{id: v.id}, nil
	case Value:
		n, err := g.build(constantDef(float32(v)), constant{})
		if err != nil {
			return source{}, err
		}
		n.implicit = true
		n.consumers = make([]backRef, 0, 1)
		return source{fresh: n}, nil
	default:
		return source{}, fmt.Errorf("%w: unsupported signal %T", ErrInvalidDef, s)
	}
}

// attach makes src live in the arena and returns its ID. The caller holds
// g.mu.
func (g *Graph) attach(src source) (NodeID, error) {
	if src.fresh != nil {
		g.insert(src.fresh)
		return src.fresh.id, nil
	}
	if src.id.IsZero() {
		return NodeID{}, nil
	}
	if !g.valid(src.id) {
		return NodeID{}, fmt.Errorf("%w: %s", ErrStaleNode, src.id)
	}

	return src.id, nil
}

func (g *Graph) queueTrigger(h Node, name string, value float32, at uint64) error {
	if err := g.owns(h); err != nil {
		return err
	}

	g.mu.Lock()
	nd, err := g.lookup(h.id)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	idx, ok := nd.trigIndex[name]
	if !ok {
		g.mu.Unlock()
		return nil
	}
	ev := event{at: at, node: h.id, index: idx, value: value}
	if !g.running {
		g.schedule(ev)
		g.mu.Unlock()
		return nil
	}
	g.reserve()
	g.mu.Unlock()

	select {
	case g.triggers <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// schedule inserts ev into the pending list ordered by time. Events with
// equal times keep their arrival order. On the render goroutine the list
// has room reserved by queueTrigger.
func (g *Graph) schedule(ev event) {
	i, _ := slices.BinarySearchFunc(g.pending, ev.at, func(e event, at uint64) int {
		if e.at <= at {
			return -1
		}
		return 1
	})
	g.pending = slices.Insert(g.pending, i, ev)
}

// dispatch moves due triggers into the event lists of reachable nodes.
// Triggers for nodes that are not rendered are dropped. The caller holds
// g.mu.
func (g *Graph) dispatch(clock uint64, frames int) {
drain:
	for {
		select {
		case ev := <-g.triggers:
			g.schedule(ev)
		default:
			break drain
		}
	}

	end := clock + uint64(frames)
	k := 0
	for _, ev := range g.pending {
		if ev.at >= end {
			break
		}
		k++
		if !g.valid(ev.node) || g.entries[ev.node.index].n.mark != g.epoch {
			continue
		}
		if ev.at < clock {
			ev.at = clock
		}
		n := g.entries[ev.node.index].n
		n.events = append(n.events, ev)
	}
	g.pending = slices.Delete(g.pending, 0, k)
}
