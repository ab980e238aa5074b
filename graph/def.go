// SPDX-License-Identifier: EPL-2.0

package graph

import "github.com/ik5/audgraph/buffer"

// DefaultTrigger is the trigger name used when a node declares a single
// trigger.
const DefaultTrigger = "trigger"

// TrackInput as a channel bound leaves that side unbounded, so the width
// follows the widest connected input.
const TrackInput = -1

// Channels declares the preferred input and output widths of a node.
//
// The input width is the widest connected input clamped to [MinIn, MaxIn];
// the output width is the input width clamped to [MinOut, MaxOut]. Bounds of
// TrackInput or 0 are open. The zero value tracks its input on both sides.
type Channels struct {
	MinIn, MaxIn   int
	MinOut, MaxOut int
}

// Fixed returns bounds for a node with exact input and output widths.
func Fixed(in, out int) Channels {
	return Channels{MinIn: in, MaxIn: in, MinOut: out, MaxOut: out}
}

// Track returns bounds that follow the widest input on both sides.
func Track() Channels {
	return Channels{MinIn: TrackInput, MaxIn: TrackInput, MinOut: TrackInput, MaxOut: TrackInput}
}

// Input declares a named input slot and the value it reads while
// unconnected.
type Input struct {
	Name    string
	Default float32
}

// BufferSlot declares a named buffer attachment.
type BufferSlot struct {
	Name string
	// Optional slots may stay nil; required ones must be set before the
	// node is rendered.
	Optional bool
	Default  *buffer.Buffer
}

// PropertySlot declares a named property and its initial value.
type PropertySlot struct {
	Name    string
	Initial Property
}

// Def describes a node kind. Names are resolved to slot indices once, when
// the node is created; processors address inputs, buffers and properties by
// their position in these slices.
type Def struct {
	Name       string
	Inputs     []Input
	Buffers    []BufferSlot
	Properties []PropertySlot
	Triggers   []string
	Channels   Channels

	// Variadic nodes accept AddInput with names that were not declared.
	Variadic bool
	// Multiplex nodes output the concatenation of their inputs, so their
	// width is the sum of the input widths.
	Multiplex bool
	// NoAutomix hands inputs to the processor at their own width.
	NoAutomix bool
}

// Processor computes one block of a node.
//
// Process fills out, which has NumOutputChannels slices of frames samples,
// from the inputs exposed by c. It runs on the render goroutine and must
// not allocate, block or do I/O.
type Processor interface {
	Process(c *Context, out [][]float32, frames int)
}

// Triggerable processors receive triggers at their exact frame. index is
// the position of the trigger name in Def.Triggers.
type Triggerable interface {
	Trigger(c *Context, index int, value float32)
}
