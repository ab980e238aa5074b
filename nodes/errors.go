// SPDX-License-Identifier: EPL-2.0

package nodes

import "errors"

var (
	// ErrNoInput is returned by NewAudioIn when the graph captures no
	// channels.
	ErrNoInput = errors.New("graph has no input channels")

	ErrInvalidChannels = errors.New("channel count must be positive")
	ErrInvalidPool     = errors.New("grain pool size must be positive")
)
