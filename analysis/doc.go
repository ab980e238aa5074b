// SPDX-License-Identifier: EPL-2.0

// Package analysis defines the analyzer contract used by analysis nodes and
// a registry of analyzers addressed by library:plugin:output identifiers.
//
// Built-in analyzers live under the audgraph library:
//
//	audgraph:energy:rms     one RMS value per block
//	audgraph:energy:onsets  frame positions of sudden level rises
package analysis
