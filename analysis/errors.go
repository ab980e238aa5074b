// SPDX-License-Identifier: EPL-2.0

package analysis

import "errors"

var (
	// ErrInvalidPluginIdentifier is returned for identifiers that are not of
	// the form [vamp:]library:plugin:output.
	ErrInvalidPluginIdentifier = errors.New("invalid plugin identifier")

	// ErrPluginLoad is returned when no analyzer matches an identifier.
	ErrPluginLoad = errors.New("failed to load plugin")
)
