// SPDX-License-Identifier: EPL-2.0

package graph

import "errors"

var (
	// ErrUnknownParameter is returned for input, property, buffer or
	// trigger names a node does not declare.
	ErrUnknownParameter = errors.New("unknown parameter")

	ErrGraphNotRunning = errors.New("graph not running")
	ErrAlreadyRunning  = errors.New("graph already running")

	// ErrStaleNode is returned for handles whose node was removed or pruned.
	ErrStaleNode = errors.New("stale node handle")

	// ErrForeignNode is returned when a handle from another graph is used.
	ErrForeignNode = errors.New("node belongs to another graph")

	// ErrMissingBuffer is returned when a required buffer is unset.
	ErrMissingBuffer = errors.New("required buffer not set")

	ErrInvalidConfig = errors.New("invalid graph config")
	ErrInvalidDef    = errors.New("invalid node definition")

	ErrQueueFull = errors.New("trigger queue full")
)
