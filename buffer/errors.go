// SPDX-License-Identifier: EPL-2.0

package buffer

import "errors"

var (
	// ErrLoad wraps every failure to read a sound file into a Buffer.
	ErrLoad = errors.New("buffer load failed")

	ErrInvalidSize = errors.New("buffer channels and frames must be positive")
	ErrOutOfRange  = errors.New("buffer index out of range")
)
