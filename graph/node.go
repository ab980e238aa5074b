// SPDX-License-Identifier: EPL-2.0

package graph

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/ik5/audgraph/buffer"
)

type backRef struct {
	node NodeID
	slot int
}

type slot struct {
	name string
	src  NodeID
	def  float32

	defaultBuf []float32
	view       [][]float32
	sub        [][]float32
	mix        [][]float32
}

type node struct {
	id   NodeID
	name string
	def  Def
	proc Processor
	trig Triggerable

	slots     []slot
	slotIndex map[string]int
	consumers []backRef

	props     []Property
	propIndex map[string]int
	bufs      []*buffer.Buffer
	bufIndex  map[string]int
	trigIndex map[string]int

	numIn, numOut int
	storage       [][]float32
	outSub        [][]float32
	events        []event
	appended      []appended

	output   bool
	implicit bool
	freed    bool
	inQueue  bool
	reported bool
	mark     uint32
}

// appended is an array property value queued by the processor during the
// current block.
type appended struct {
	index int
	value float32
}

func (n *node) removeConsumer(id NodeID, slot int) {
	i := slices.Index(n.consumers, backRef{node: id, slot: slot})
	if i >= 0 {
		n.consumers = slices.Delete(n.consumers, i, i+1)
	}
}

func (n *node) missingBuffer() (string, bool) {
	for i, b := range n.bufs {
		if b == nil && !n.def.Buffers[i].Optional {
			return n.def.Buffers[i].Name, true
		}
	}

	return "", false
}

// Signal is anything that can feed an input: a Node or a Value.
type Signal interface {
	signal()
}

// Value is a scalar signal. Connecting it creates a constant node that is
// freed once nothing reads it.
type Value float32

func (Value) signal() {}

// Node is a handle to a node in a Graph. Handles are plain values; they
// become stale once the node is removed or pruned.
type Node struct {
	g  *Graph
	id NodeID
}

func (Node) signal() {}

func (n Node) ID() NodeID { return n.id }

func (n Node) Graph() *Graph { return n.g }

// Valid reports whether the handle still refers to a live node.
func (n Node) Valid() bool {
	if n.g == nil {
		return false
	}
	n.g.mu.Lock()
	defer n.g.mu.Unlock()

	return n.g.valid(n.id)
}

// Connection is one end of an edge as seen from a node.
type Connection struct {
	Node  Node
	Input string
}

// view runs fn against the live node under the graph lock.
func (n Node) view(fn func(*node) error) error {
	if n.g == nil || n.id.IsZero() {
		return ErrStaleNode
	}
	n.g.mu.Lock()
	defer n.g.mu.Unlock()

	nd, err := n.g.lookup(n.id)
	if err != nil {
		return err
	}

	return fn(nd)
}

// edit runs fn against the live node at the next block boundary.
func (n Node) edit(fn func(*node) error) error {
	if n.g == nil || n.id.IsZero() {
		return ErrStaleNode
	}

	return n.g.do(n.bind(fn))
}

func (n Node) bind(fn func(*node) error) func() error {
	return func() error {
		nd, err := n.g.lookup(n.id)
		if err != nil {
			return err
		}
		return fn(nd)
	}
}

func (n Node) Name() string {
	var name string
	_ = n.view(func(nd *node) error {
		name = nd.name
		return nil
	})

	return name
}

func (n Node) NumInputChannels() int {
	var w int
	_ = n.view(func(nd *node) error {
		n.g.negotiate()
		w = nd.numIn
		return nil
	})

	return w
}

func (n Node) NumOutputChannels() int {
	var w int
	_ = n.view(func(nd *node) error {
		n.g.negotiate()
		w = nd.numOut
		return nil
	})

	return w
}

func unknown(nd *node, kind, name string) error {
	return fmt.Errorf("%w: %s %q on %s", ErrUnknownParameter, kind, name, nd.name)
}

// SetInput connects s to the named input, replacing any previous producer.
// A nil Signal disconnects the input so it reads its default value.
func (n Node) SetInput(name string, s Signal) error {
	if err := n.g.owns(n); err != nil {
		return err
	}
	src, err := n.g.prepare(s)
	if err != nil {
		return err
	}

	return n.edit(func(nd *node) error {
		i, ok := nd.slotIndex[name]
		if !ok {
			return unknown(nd, "input", name)
		}
		id, err := n.g.attach(src)
		if err != nil {
			return err
		}
		n.g.connect(nd, i, id)
		return nil
	})
}

// AddInput connects s to the named input. Variadic nodes register unknown
// names as new inputs; an empty name is replaced by the first unused
// input<N>. The name that was used is returned.
func (n Node) AddInput(name string, s Signal) (string, error) {
	add, apply, err := n.inputEdit(name, s)
	if err != nil {
		return "", err
	}
	if err := n.edit(apply); err != nil {
		return "", err
	}

	return add.name, nil
}

// inputEdit does the allocating part of AddInput on the calling goroutine
// and returns the edit that connects s. The planned input is updated with
// the name finally used.
func (n Node) inputEdit(name string, s Signal) (*newInput, func(*node) error, error) {
	if err := n.g.owns(n); err != nil {
		return nil, nil, err
	}
	src, err := n.g.prepare(s)
	if err != nil {
		return nil, nil, err
	}
	add, err := n.planInput(name)
	if err != nil {
		return nil, nil, err
	}

	apply := func(nd *node) error {
		if add.auto {
			if _, taken := nd.slotIndex[add.name]; taken {
				*add = newInput{name: freeInputName(nd), auto: true}
			}
		}
		i, ok := nd.slotIndex[add.name]
		if !ok {
			if !nd.def.Variadic {
				return unknown(nd, "input", add.name)
			}
			i = n.g.addSlot(nd, add)
		}
		id, err := n.g.attach(src)
		if err != nil {
			return err
		}
		n.g.connect(nd, i, id)
		return nil
	}

	return add, apply, nil
}

// newInput is a variadic input slot built on the calling goroutine, so
// that adding it at a block boundary does not allocate.
type newInput struct {
	name  string
	auto  bool
	at    int
	slot  slot
	index map[string]int
}

func (n Node) planInput(name string) (*newInput, error) {
	add := &newInput{name: name}
	err := n.view(func(nd *node) error {
		if !nd.def.Variadic {
			return nil
		}
		if name == "" {
			add.name, add.auto = freeInputName(nd), true
		}
		if _, ok := nd.slotIndex[add.name]; ok {
			return nil
		}

		add.at = len(nd.slots)
		add.slot = n.g.newSlot(Input{Name: add.name})
		for !nd.def.NoAutomix && len(add.slot.mix) < nd.numIn {
			add.slot.mix = append(add.slot.mix, n.g.newBlock())
		}
		add.index = maps.Clone(nd.slotIndex)
		add.index[add.name] = add.at
		nd.slots = slices.Grow(nd.slots, 1)
		return nil
	})

	return add, err
}

// addSlot appends the input planned by add to nd and returns its index. A
// plan that went stale while queued is rebuilt here. The caller holds g.mu.
func (g *Graph) addSlot(nd *node, add *newInput) int {
	i := len(nd.slots)
	if add.index == nil || add.at != i {
		add.slot = g.newSlot(Input{Name: add.name})
		nd.slotIndex[add.name] = i
	} else {
		nd.slotIndex = add.index
	}
	nd.slots = append(nd.slots, add.slot)
	ensureStorage(nd, g.block)
	g.markDirty(nd)

	return i
}

// freeInputName returns the first input<N>, counting up from the number of
// slots, that nd does not use yet.
func freeInputName(nd *node) string {
	for k := len(nd.slots); ; k++ {
		name := "input" + strconv.Itoa(k)
		if _, taken := nd.slotIndex[name]; !taken {
			return name
		}
	}
}

// Input returns the producer connected to the named input. An unconnected
// input yields a zero Node.
func (n Node) Input(name string) (Node, error) {
	var out Node
	err := n.view(func(nd *node) error {
		i, ok := nd.slotIndex[name]
		if !ok {
			return unknown(nd, "input", name)
		}
		if src := nd.slots[i].src; !src.IsZero() {
			out = Node{g: n.g, id: src}
		}
		return nil
	})

	return out, err
}

// Inputs lists every input slot in declaration order.
func (n Node) Inputs() []Connection {
	var out []Connection
	_ = n.view(func(nd *node) error {
		out = make([]Connection, len(nd.slots))
		for i, s := range nd.slots {
			out[i].Input = s.name
			if !s.src.IsZero() {
				out[i].Node = Node{g: n.g, id: s.src}
			}
		}
		return nil
	})

	return out
}

// Consumers lists the nodes and inputs reading this node.
func (n Node) Consumers() []Connection {
	var out []Connection
	_ = n.view(func(nd *node) error {
		out = make([]Connection, 0, len(nd.consumers))
		for _, ref := range nd.consumers {
			c, err := n.g.lookup(ref.node)
			if err != nil {
				continue
			}
			out = append(out, Connection{
				Node:  Node{g: n.g, id: ref.node},
				Input: c.slots[ref.slot].name,
			})
		}
		return nil
	})

	return out
}

func (n Node) DisconnectInputs() error {
	return n.edit(func(nd *node) error {
		n.g.disconnectInputs(nd)
		return nil
	})
}

func (n Node) DisconnectOutputs() error {
	return n.edit(func(nd *node) error {
		n.g.disconnectOutputs(nd)
		return nil
	})
}

// Trigger queues a trigger for the start of the next block. Names the node
// does not declare are ignored.
func (n Node) Trigger(name string, value float32) error {
	return n.TriggerAt(name, value, 0)
}

// TriggerAt queues a trigger for an absolute sample clock position. Past
// positions fire at the start of the next block.
func (n Node) TriggerAt(name string, value float32, at uint64) error {
	if n.g == nil {
		return ErrStaleNode
	}

	return n.g.queueTrigger(n, name, value, at)
}

func (n Node) SetProperty(name string, p Property) error {
	p = p.clone()

	return n.edit(func(nd *node) error {
		i, ok := nd.propIndex[name]
		if !ok {
			return unknown(nd, "property", name)
		}
		nd.props[i] = p
		return nil
	})
}

// Property returns a copy of the named property.
func (n Node) Property(name string) (Property, error) {
	var p Property
	err := n.view(func(nd *node) error {
		i, ok := nd.propIndex[name]
		if !ok {
			return unknown(nd, "property", name)
		}
		p = nd.props[i].clone()
		return nil
	})

	return p, err
}

// AppendProperty appends v to an array property.
func (n Node) AppendProperty(name string, v float32) error {
	return n.edit(func(nd *node) error {
		i, ok := nd.propIndex[name]
		if !ok {
			return unknown(nd, "property", name)
		}
		nd.props[i].Kind = PropertyArray
		nd.props[i].Array = append(nd.props[i].Array, v)
		return nil
	})
}

// SetBuffer attaches b to the named buffer slot. While running the swap
// takes effect on the next block.
func (n Node) SetBuffer(name string, b *buffer.Buffer) error {
	return n.edit(func(nd *node) error {
		i, ok := nd.bufIndex[name]
		if !ok {
			return unknown(nd, "buffer", name)
		}
		nd.bufs[i] = b
		nd.reported = false
		return nil
	})
}

func (n Node) Buffer(name string) (*buffer.Buffer, error) {
	var b *buffer.Buffer
	err := n.view(func(nd *node) error {
		i, ok := nd.bufIndex[name]
		if !ok {
			return unknown(nd, "buffer", name)
		}
		b = nd.bufs[i]
		return nil
	})

	return b, err
}

// Remove is shorthand for Graph.Remove.
func (n Node) Remove() error {
	if n.g == nil {
		return ErrStaleNode
	}

	return n.g.Remove(n)
}

func (n Node) Add(s Signal) (Node, error) { return n.binary(OpAdd, s) }
func (n Node) Sub(s Signal) (Node, error) { return n.binary(OpSub, s) }
func (n Node) Mul(s Signal) (Node, error) { return n.binary(OpMul, s) }
func (n Node) Div(s Signal) (Node, error) { return n.binary(OpDiv, s) }

func (n Node) binary(op Op, s Signal) (Node, error) {
	if n.g == nil {
		return Node{}, ErrStaleNode
	}

	return n.g.Binary(op, n, s)
}

func (n Node) String() string {
	if n.g == nil {
		return "<nil node>"
	}

	return n.Name()
}
