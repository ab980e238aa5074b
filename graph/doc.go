// SPDX-License-Identifier: EPL-2.0

// Package graph is the real-time core of audgraph: an arena of processing
// nodes connected by named inputs, rendered block by block.
//
// # Nodes
//
// A node kind is described by a Def (named inputs, buffers, properties,
// triggers and channel bounds) and implemented by a Processor. Names are
// resolved to indices once, when the node is created, so Process addresses
// its inputs by position:
//
//	type gain struct{}
//
//	func (gain) Process(c *graph.Context, out [][]float32, frames int) {
//		in, amount := c.Input(0), c.Input(1)
//		for ch := range out {
//			for i := range frames {
//				out[ch][i] = in[ch][i] * amount[ch][i]
//			}
//		}
//	}
//
// Nodes are referenced through Node handles. A handle becomes stale when its
// node is removed or pruned, and every later use fails with ErrStaleNode.
// A node stays alive until it is removed explicitly or pruned while not
// reachable from the output set. Scalars passed as Value become constant
// nodes that are freed as soon as nothing reads them.
//
// # Channels
//
// Widths are negotiated after every connection change. By default a node
// adopts the widest connected input; Channels bounds clamp that. Inputs
// narrower than the reader are repeated (channel ch reads ch % width) and
// wider ones are averaged down. Multiplex nodes concatenate their inputs.
//
// # Concurrency
//
// While a graph is running, topology edits, property writes and buffer
// swaps are queued and applied by the render goroutine at the next block
// boundary; the caller blocks until the edit is applied. Triggers are
// queued without blocking and delivered to Triggerable processors at their
// exact frame, splitting that node's block in two.
package graph
