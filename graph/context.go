// SPDX-License-Identifier: EPL-2.0

package graph

import "github.com/ik5/audgraph/buffer"

// Context exposes the state of the node being processed. It is only valid
// for the duration of a Process or Trigger call.
//
// When a trigger splits a block, Process is called once per part; frame
// indices and Input views are then relative to the start of the part.
type Context struct {
	g      *Graph
	n      *node
	clock  uint64
	offset int
	frames int
}

func (c *Context) SampleRate() float64 { return float64(c.g.cfg.SampleRate) }

func (c *Context) BlockSize() int { return c.g.cfg.BlockSize }

// Frames returns the number of frames in the current part.
func (c *Context) Frames() int { return c.frames }

// Clock returns the sample clock at frame 0 of the current part.
func (c *Context) Clock() uint64 { return c.clock + uint64(c.offset) }

func (c *Context) NumInputChannels() int { return c.n.numIn }

func (c *Context) NumOutputChannels() int { return c.n.numOut }

// NumInputs returns the number of input slots, including ones added at
// runtime.
func (c *Context) NumInputs() int { return len(c.n.slots) }

// Connected reports whether the input slot has a producer.
func (c *Context) Connected(slot int) bool { return !c.n.slots[slot].src.IsZero() }

// Input returns the channels of an input slot. Unconnected slots read their
// default value.
func (c *Context) Input(slot int) [][]float32 {
	s := &c.n.slots[slot]
	s.sub = s.sub[:len(s.view)]
	for ch, v := range s.view {
		s.sub[ch] = v[c.offset : c.offset+c.frames]
	}

	return s.sub
}

// InputValue returns channel 0 of an input slot at frame.
func (c *Context) InputValue(slot, frame int) float32 {
	return c.n.slots[slot].view[0][c.offset+frame]
}

// Buffer returns the buffer attached to a slot, or nil.
func (c *Context) Buffer(i int) *buffer.Buffer { return c.n.bufs[i] }

// Property returns a property by index. Array contents must not be
// modified.
func (c *Context) Property(i int) Property { return c.n.props[i] }

func (c *Context) SetProperty(i int, p Property) { c.n.props[i] = p }

// AppendProperty queues v for an array property. Values appended during a
// block become visible once the whole block has rendered.
func (c *Context) AppendProperty(i int, v float32) {
	n := c.n
	if len(n.appended) == 0 {
		c.g.appending = append(c.g.appending, n)
	}
	n.appended = append(n.appended, appended{index: i, value: v})
}

// Capture returns the input captured by the backend for the current part,
// or nil when the graph has no input channels.
func (c *Context) Capture() [][]float32 {
	g := c.g
	if len(g.capture) == 0 {
		return nil
	}
	g.captureSub = g.captureSub[:len(g.capture)]
	for ch, v := range g.capture {
		g.captureSub[ch] = v[c.offset : c.offset+c.frames]
	}

	return g.captureSub
}
