// SPDX-License-Identifier: EPL-2.0

// Package nodes provides the node kinds built on package graph: oscillators
// and clocks, a line ramp, an ASR envelope, a buffer sampler, an N-channel
// panner, a granular player, captured audio input and analysis nodes.
//
// Constructors take the graph and the signals to connect; nil signals leave
// an input at its default. Inputs can be reconnected later by name with
// graph.Node.SetInput.
package nodes
