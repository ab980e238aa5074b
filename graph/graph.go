// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audgraph/buffer"
)

// NodeID addresses a node in the arena. The generation makes IDs of freed
// slots detectable; the zero NodeID never refers to a node.
type NodeID struct {
	index uint32
	gen   uint32
}

func (id NodeID) IsZero() bool { return id.gen == 0 }

func (id NodeID) String() string { return fmt.Sprintf("%d.%d", id.index, id.gen) }

type entry struct {
	n   *node
	gen uint32
}

// Graph owns every node, the output set and the sample clock.
//
// Topology edits made while the graph is running are queued and applied by
// the render goroutine at the next block boundary; the calling goroutine
// waits until its edit has been applied. While stopped, edits apply
// immediately.
type Graph struct {
	cfg Config
	id  uuid.UUID
	log *slog.Logger

	mu      sync.Mutex
	entries []entry
	free    []uint32
	live    int
	outputs []NodeID

	order      []*node
	orderDirty bool
	stack      []dfsFrame
	epoch      uint32

	work      []*node
	spare     [][]float32
	appending []*node

	running bool
	stop    chan struct{}
	cancel  func()
	grp     *errgroup.Group
	input   InputSource

	edits    chan edit
	triggers chan event
	pending  []event
	reports  chan report

	capture    [][]float32
	captureSub [][]float32
	ctx        Context

	clock    atomic.Uint64
	dropouts atomic.Uint64
}

// New creates an empty graph.
func New(cfg Config) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Graph{
		cfg:       cfg,
		id:        uuid.New(),
		edits:     make(chan edit, cfg.EditQueueSize),
		triggers:  make(chan event, cfg.TriggerQueueSize),
		pending:   make([]event, 0, cfg.TriggerQueueSize),
		stop:      make(chan struct{}),
		reports:   make(chan report, 16),
		capture:   make([][]float32, cfg.InputChannels),
		spare:     make([][]float32, 0, 2*cfg.MaxChannels),
		appending: make([]*node, 0, 16),
		// node marks start at 0, so no node counts as reachable before the
		// first reorder
		epoch: 1,
	}
	close(g.stop)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g.log = logger.With("graph_id", g.id.String())

	for ch := range g.capture {
		g.capture[ch] = make([]float32, cfg.BlockSize)
	}
	g.captureSub = make([][]float32, 0, cfg.InputChannels)
	g.ctx.g = g

	return g, nil
}

func (g *Graph) ID() uuid.UUID { return g.id }

func (g *Graph) Config() Config { return g.cfg }

func (g *Graph) Logger() *slog.Logger { return g.log }

// Clock returns the number of frames rendered so far.
func (g *Graph) Clock() uint64 { return g.clock.Load() }

// Dropouts returns how many blocks missed their real-time deadline.
func (g *Graph) Dropouts() uint64 { return g.dropouts.Load() }

func (g *Graph) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.running
}

// Len returns the number of live nodes.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.live
}

// Stats is a snapshot of the graph state.
type Stats struct {
	Nodes     int
	Reachable int
	Outputs   int
	Running   bool
	Clock     uint64
	Dropouts  uint64
}

func (g *Graph) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reorder()

	return Stats{
		Nodes:     g.live,
		Reachable: len(g.order),
		Outputs:   len(g.outputs),
		Running:   g.running,
		Clock:     g.clock.Load(),
		Dropouts:  g.dropouts.Load(),
	}
}

// NewNode creates a node of the given kind. The node is not rendered until
// it is reachable from the output set.
func (g *Graph) NewNode(def Def, proc Processor) (Node, error) {
	n, err := g.build(def, proc)
	if err != nil {
		return Node{}, err
	}

	err = g.do(func() error {
		g.insert(n)
		return nil
	})
	if err != nil {
		return Node{}, err
	}

	return Node{g: g, id: n.id}, nil
}

// Remove disconnects the node in both directions, drops it from the output
// set and frees its slot. Handles to it become stale.
func (g *Graph) Remove(h Node) error {
	if err := g.owns(h); err != nil {
		return err
	}

	return g.do(func() error {
		n, err := g.lookup(h.id)
		if err != nil {
			return err
		}
		g.release(n)
		return nil
	})
}

// Prune frees every node that is not reachable from the output set and
// returns how many were freed.
func (g *Graph) Prune() (int, error) {
	var count int

	err := g.do(func() error {
		g.orderDirty = true
		g.reorder()
		reachable := g.epoch

		var dead []*node
		for _, e := range g.entries {
			if e.n != nil && e.n.mark != reachable {
				dead = append(dead, e.n)
			}
		}

		before := g.live
		for _, n := range dead {
			if !n.freed {
				g.release(n)
			}
		}
		count = before - g.live
		return nil
	})
	if err != nil {
		return 0, err
	}

	g.log.Debug("pruned unreachable nodes", "count", count)

	return count, nil
}

// AddOutput adds a node to the summed output set.
func (g *Graph) AddOutput(s Signal) error {
	src, err := g.prepare(s)
	if err != nil {
		return err
	}

	return g.do(func() error {
		id, err := g.attach(src)
		if err != nil {
			return err
		}
		n := g.entries[id.index].n
		if n.output {
			return nil
		}
		n.output = true
		g.outputs = append(g.outputs, id)
		g.orderDirty = true
		return nil
	})
}

// RemoveOutput removes a node from the summed output set. The node itself
// stays alive until it is removed or pruned.
func (g *Graph) RemoveOutput(h Node) error {
	if err := g.owns(h); err != nil {
		return err
	}

	return g.do(func() error {
		n, err := g.lookup(h.id)
		if err != nil {
			return err
		}
		g.dropOutput(n)
		g.collect(n)
		return nil
	})
}

func (g *Graph) Outputs() []Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]Node, len(g.outputs))
	for i, id := range g.outputs {
		out[i] = Node{g: g, id: id}
	}

	return out
}

// build allocates a node outside of the render path.
func (g *Graph) build(def Def, proc Processor) (*node, error) {
	if proc == nil {
		return nil, fmt.Errorf("%w: %s: nil processor", ErrInvalidDef, def.Name)
	}
	if def.Name == "" {
		def.Name = "node"
	}
	def.Inputs = slices.Clone(def.Inputs)
	def.Buffers = slices.Clone(def.Buffers)
	def.Properties = slices.Clone(def.Properties)
	def.Triggers = slices.Clone(def.Triggers)
	if def.Multiplex {
		def.NoAutomix = true
	}

	n := &node{
		def:       def,
		proc:      proc,
		slotIndex: make(map[string]int, len(def.Inputs)),
		propIndex: make(map[string]int, len(def.Properties)),
		bufIndex:  make(map[string]int, len(def.Buffers)),
		trigIndex: make(map[string]int, len(def.Triggers)),
		props:     make([]Property, len(def.Properties)),
		bufs:      make([]*buffer.Buffer, len(def.Buffers)),
		events:    make([]event, 0, 8),
		outSub:    make([][]float32, 0, g.cfg.MaxChannels),
		storage:   make([][]float32, 0, g.cfg.MaxChannels),
	}
	n.trig, _ = proc.(Triggerable)

	for _, in := range def.Inputs {
		if _, dup := n.slotIndex[in.Name]; dup || in.Name == "" {
			return nil, fmt.Errorf("%w: %s: bad input name %q", ErrInvalidDef, def.Name, in.Name)
		}
		n.slotIndex[in.Name] = len(n.slots)
		n.slots = append(n.slots, g.newSlot(in))
	}
	for i, p := range def.Properties {
		if _, dup := n.propIndex[p.Name]; dup || p.Name == "" {
			return nil, fmt.Errorf("%w: %s: bad property name %q", ErrInvalidDef, def.Name, p.Name)
		}
		n.propIndex[p.Name] = i
		n.props[i] = p.Initial.clone()
	}
	if slices.ContainsFunc(def.Properties, func(p PropertySlot) bool { return p.Initial.Kind == PropertyArray }) {
		n.appended = make([]appended, 0, 64)
	}
	for i, b := range def.Buffers {
		if _, dup := n.bufIndex[b.Name]; dup || b.Name == "" {
			return nil, fmt.Errorf("%w: %s: bad buffer name %q", ErrInvalidDef, def.Name, b.Name)
		}
		n.bufIndex[b.Name] = i
		n.bufs[i] = b.Default
	}
	for i, t := range def.Triggers {
		if _, dup := n.trigIndex[t]; dup || t == "" {
			return nil, fmt.Errorf("%w: %s: bad trigger name %q", ErrInvalidDef, def.Name, t)
		}
		n.trigIndex[t] = i
	}

	n.numIn, n.numOut = g.widths(n)
	ensureStorage(n, g.newBlock)

	return n, nil
}

func (g *Graph) newSlot(in Input) slot {
	s := slot{
		name:       in.Name,
		def:        in.Default,
		defaultBuf: make([]float32, g.cfg.BlockSize),
		view:       make([][]float32, 0, g.cfg.MaxChannels),
		sub:        make([][]float32, 0, g.cfg.MaxChannels),
		mix:        make([][]float32, 0, g.cfg.MaxChannels),
	}
	for i := range s.defaultBuf {
		s.defaultBuf[i] = in.Default
	}

	return s
}

func (g *Graph) insert(n *node) {
	var idx uint32
	if k := len(g.free); k > 0 {
		idx = g.free[k-1]
		g.free = g.free[:k-1]
	} else {
		idx = uint32(len(g.entries))
		g.entries = append(g.entries, entry{gen: 1})
	}

	g.entries[idx].n = n
	n.id = NodeID{index: idx, gen: g.entries[idx].gen}
	n.name = fmt.Sprintf("%s#%d", n.def.Name, idx)
	g.live++
}

func (g *Graph) valid(id NodeID) bool {
	return int(id.index) < len(g.entries) &&
		g.entries[id.index].gen == id.gen &&
		g.entries[id.index].n != nil
}

func (g *Graph) lookup(id NodeID) (*node, error) {
	if !g.valid(id) {
		return nil, fmt.Errorf("%w: %s", ErrStaleNode, id)
	}

	return g.entries[id.index].n, nil
}

func (g *Graph) owns(h Node) error {
	switch {
	case h.g == nil || h.id.IsZero():
		return ErrStaleNode
	case h.g != g:
		return ErrForeignNode
	}

	return nil
}

// release frees n after detaching it from producers, consumers and the
// output set.
func (g *Graph) release(n *node) {
	n.freed = true
	g.disconnectInputs(n)
	g.disconnectOutputs(n)
	g.dropOutput(n)

	e := &g.entries[n.id.index]
	e.n = nil
	e.gen++
	if e.gen == 0 {
		e.gen = 1
	}
	g.free = append(g.free, n.id.index)
	g.live--
	g.recycle(n)
	n.inQueue = false
	g.orderDirty = true
}

func (g *Graph) dropOutput(n *node) {
	if !n.output {
		return
	}
	n.output = false
	if i := slices.Index(g.outputs, n.id); i >= 0 {
		g.outputs = slices.Delete(g.outputs, i, i+1)
	}
	g.orderDirty = true
}

// collect frees an implicit constant once nothing references it.
func (g *Graph) collect(n *node) {
	if n.implicit && !n.freed && !n.output && len(n.consumers) == 0 {
		g.release(n)
	}
}

// connect points slot i of dst at src, keeping back-references mirrored.
func (g *Graph) connect(dst *node, i int, src NodeID) {
	s := &dst.slots[i]
	old := s.src
	if old == src {
		return
	}

	s.src = src
	if !old.IsZero() && g.valid(old) {
		p := g.entries[old.index].n
		p.removeConsumer(dst.id, i)
		g.collect(p)
	}
	if !src.IsZero() {
		p := g.entries[src.index].n
		p.consumers = append(p.consumers, backRef{node: dst.id, slot: i})
		g.markDirty(p)
	}

	g.markDirty(dst)
	g.orderDirty = true
}

func (g *Graph) disconnectInputs(n *node) {
	for {
		i := slices.IndexFunc(n.slots, func(s slot) bool { return !s.src.IsZero() })
		if i < 0 {
			return
		}
		g.connect(n, i, NodeID{})
	}
}

func (g *Graph) disconnectOutputs(n *node) {
	for len(n.consumers) > 0 {
		ref := n.consumers[0]
		c, err := g.lookup(ref.node)
		if err != nil || ref.slot >= len(c.slots) || c.slots[ref.slot].src != n.id {
			n.consumers = n.consumers[1:]
			continue
		}
		g.connect(c, ref.slot, NodeID{})
	}
}
